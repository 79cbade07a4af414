package store

import (
	"encoding/json"
	"strconv"

	"github.com/mestawet/gebeya/app/models"
	"github.com/mestawet/gebeya/pkg/kvstore"
)

// Overrides maps a product id to locally entered colors and sizes, kept
// under its own storage key so catalog refreshes cannot clobber it.
type Overrides map[int64]models.ColorSizeOverride

func loadOverrides(kv kvstore.Store) Overrides {
	out := Overrides{}

	raw, ok, err := kv.Get(OverridesKey)
	if err != nil || !ok {
		return out
	}

	// keys were written by a JSON object, so they arrive as strings
	var m map[string]models.ColorSizeOverride
	if err := json.Unmarshal(raw, &m); err != nil {
		return out
	}
	for k, v := range m {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		out[id] = v
	}
	return out
}

func saveOverrides(kv kvstore.Store, ov Overrides) error {
	m := make(map[string]models.ColorSizeOverride, len(ov))
	for id, v := range ov {
		m[strconv.FormatInt(id, 10)] = v
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return kv.Put(OverridesKey, raw)
}

// normalize applies the precedence rules for incoming products in one
// place: the server value wins unless it is empty, in which case the
// local override fills the gap. Price is coerced to a non-negative
// number.
func normalize(p models.Product, ov Overrides) models.Product {
	if p.Price < 0 {
		p.Price = 0
	}
	local, hasLocal := ov[p.ID]
	if len(p.Colors) == 0 && hasLocal {
		p.Colors = local.Colors
	}
	if len(p.Sizes) == 0 && hasLocal {
		p.Sizes = local.Sizes
	}
	return p
}
