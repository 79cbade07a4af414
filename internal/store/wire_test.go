package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mestawet/gebeya/app/models"
	"github.com/mestawet/gebeya/pkg/kvstore"
)

func TestNormalizePrecedence(t *testing.T) {
	ov := Overrides{
		1: {Colors: []string{"red"}, Sizes: []string{"M"}},
	}

	// server values win when present
	got := normalize(models.Product{ID: 1, Colors: []string{"blue"}}, ov)
	assert.Equal(t, []string{"blue"}, got.Colors)
	assert.Equal(t, []string{"M"}, got.Sizes)

	// empty server fields fall back to the override
	got = normalize(models.Product{ID: 1}, ov)
	assert.Equal(t, []string{"red"}, got.Colors)

	// products without an override pass through untouched
	got = normalize(models.Product{ID: 2}, ov)
	assert.Empty(t, got.Colors)
	assert.Empty(t, got.Sizes)
}

func TestNormalizeClampsPrice(t *testing.T) {
	got := normalize(models.Product{ID: 1, Price: -10}, nil)
	assert.Equal(t, 0.0, got.Price)
}

func TestOverridesRoundTrip(t *testing.T) {
	kv := kvstore.NewMemory()
	ov := Overrides{
		1:  {Colors: []string{"red", "green"}},
		42: {Sizes: []string{"XL"}},
	}

	assert.NoError(t, saveOverrides(kv, ov))
	assert.Equal(t, ov, loadOverrides(kv))
}

func TestLoadOverridesIgnoresGarbage(t *testing.T) {
	kv := kvstore.NewMemory()
	_ = kv.Put(OverridesKey, []byte(`{"not-a-number": {"colors": ["x"]}, "7": {"sizes": ["M"]}}`))

	ov := loadOverrides(kv)
	assert.Len(t, ov, 1)
	assert.Equal(t, []string{"M"}, ov[7].Sizes)
}

func TestLoadOverridesCorruptFallsBackEmpty(t *testing.T) {
	kv := kvstore.NewMemory()
	_ = kv.Put(OverridesKey, []byte("{corrupt"))
	assert.Empty(t, loadOverrides(kv))
}
