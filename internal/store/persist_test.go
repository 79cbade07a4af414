package store

import (
	"errors"
	"testing"

	"github.com/mestawet/gebeya/app/models"
	"github.com/mestawet/gebeya/pkg/event"
	"github.com/mestawet/gebeya/pkg/kvstore"
)

// flakyStore wraps a memory store and fails the first n Put calls,
// standing in for a storage backend that is full or unavailable.
type flakyStore struct {
	inner    *kvstore.Memory
	failPuts int
	puts     int
	deletes  int
}

func (f *flakyStore) Get(key string) ([]byte, bool, error) { return f.inner.Get(key) }
func (f *flakyStore) Exists(key string) bool               { return f.inner.Exists(key) }

func (f *flakyStore) Put(key string, value []byte) error {
	f.puts++
	if f.puts <= f.failPuts {
		return errors.New("quota exceeded")
	}
	return f.inner.Put(key, value)
}

func (f *flakyStore) Delete(key string) error {
	f.deletes++
	return f.inner.Delete(key)
}

func TestPersistRetriesAfterSingleFailure(t *testing.T) {
	kv := &flakyStore{inner: kvstore.NewMemory(), failPuts: 1}
	s := New(kv, WithBus(event.NewBus()), WithClock(testClock()))

	s.AddToCart(100, 1)

	if s.Degraded() {
		t.Error("one failed write should not degrade the store")
	}
	if kv.deletes != 1 {
		t.Errorf("expected the key to be cleared before the retry, got %d deletes", kv.deletes)
	}
	if !kv.inner.Exists(EnvelopeKey) {
		t.Error("expected the retry to land the envelope")
	}

	r := New(kv.inner, WithBus(event.NewBus()), WithClock(testClock()))
	if r.CartCount() != 1 {
		t.Errorf("expected the envelope to survive, got cart count %d", r.CartCount())
	}
}

func TestPersistDegradesToMemoryAfterRepeatedFailure(t *testing.T) {
	kv := &flakyStore{inner: kvstore.NewMemory(), failPuts: 1 << 30}
	s := New(kv, WithBus(event.NewBus()), WithClock(testClock()))

	s.AddToCart(100, 2)

	if !s.Degraded() {
		t.Fatal("expected the store to degrade after both writes failed")
	}

	// the session keeps working memory-only
	s.AddToCart(100, 1)
	if s.CartCount() != 3 {
		t.Errorf("expected in-memory state to keep accumulating, got %d", s.CartCount())
	}

	// the failing backend is no longer written to
	before := kv.puts
	s.AddToCart(100, 1)
	if kv.puts != before {
		t.Error("expected no further writes to the failed backend")
	}
}

func TestResetAllKeepsCartAndOrders(t *testing.T) {
	s, _ := newTestStore(t)

	user := s.RegisterUser(models.User{Name: "Almaz", Email: "a@example.com"})
	app := s.ApplyAsVendor(user.ID, "l", "i")
	s.ApproveVendor(app.ID)
	s.AddProductToStore(models.Product{ID: 100, Name: "Scarf", Price: 10})
	s.AddToCart(100, 2)
	s.Checkout()
	s.AddToCart(100, 1)

	s.ResetAll()

	if _, ok := s.CurrentUser(); ok {
		t.Error("expected session user cleared")
	}
	if len(s.ListVendorApplications()) != 0 {
		t.Error("expected applications cleared")
	}
	if len(s.ListProducts()) != 0 {
		t.Error("expected catalog cleared")
	}

	// cart and order history deliberately survive a reset; see DESIGN.md
	if s.CartCount() != 1 {
		t.Errorf("expected cart to survive reset, got %d", s.CartCount())
	}
	if len(s.ListOrders()) != 1 {
		t.Errorf("expected order history to survive reset, got %d", len(s.ListOrders()))
	}
}
