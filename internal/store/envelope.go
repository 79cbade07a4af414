package store

import (
	"encoding/json"

	"github.com/mestawet/gebeya/app/models"
	"github.com/mestawet/gebeya/pkg/kvstore"
)

// Storage keys. EnvelopeKey holds the serialized state envelope,
// OverridesKey the product-id to color/size override map.
const (
	EnvelopeKey  = "gebeya_state"
	OverridesKey = "gebeya_product_overrides"
)

// Envelope is the full client state held in memory and, in pared-down
// form, persisted under EnvelopeKey.
type Envelope struct {
	User               *models.User               `json:"user"`
	VendorApplications []models.VendorApplication `json:"vendorApplications"`
	Products           []models.Product           `json:"products"`
	Cart               []models.CartItem          `json:"cart"`
	LastOrder          *models.Order              `json:"lastOrder"`
	Orders             []models.Order             `json:"orders"`
}

func defaultEnvelope() Envelope {
	return Envelope{
		VendorApplications: []models.VendorApplication{},
		Products:           []models.Product{},
		Cart:               []models.CartItem{},
		Orders:             []models.Order{},
	}
}

// loadEnvelope reads the persisted envelope and merges it over the
// defaults, so fields absent from old payloads come up sane. Any read or
// parse failure falls back to the defaults.
func loadEnvelope(kv kvstore.Store) Envelope {
	env := defaultEnvelope()

	raw, ok, err := kv.Get(EnvelopeKey)
	if err != nil || !ok {
		return env
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return defaultEnvelope()
	}
	if env.VendorApplications == nil {
		env.VendorApplications = []models.VendorApplication{}
	}
	if env.Products == nil {
		env.Products = []models.Product{}
	}
	if env.Cart == nil {
		env.Cart = []models.CartItem{}
	}
	if env.Orders == nil {
		env.Orders = []models.Order{}
	}
	return env
}

// persistedProduct is the bounded projection of a product written to
// storage. Catalog detail fields are dropped to keep the envelope small
// enough to stay clear of storage quotas.
type persistedProduct struct {
	ID           int64   `json:"id"`
	VendorUserID int64   `json:"vendorUserId"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	ImageURL     string  `json:"imageUrl"`
}

type persistedEnvelope struct {
	User               *models.User               `json:"user"`
	VendorApplications []models.VendorApplication `json:"vendorApplications"`
	Products           []persistedProduct         `json:"products"`
	Cart               []models.CartItem          `json:"cart"`
	LastOrder          *models.Order              `json:"lastOrder"`
	Orders             []models.Order             `json:"orders"`
}

// marshalEnvelope serializes the pared-down persisted subset.
func marshalEnvelope(env Envelope) ([]byte, error) {
	out := persistedEnvelope{
		User:               env.User,
		VendorApplications: env.VendorApplications,
		Products:           make([]persistedProduct, 0, len(env.Products)),
		Cart:               env.Cart,
		LastOrder:          env.LastOrder,
		Orders:             env.Orders,
	}
	for _, p := range env.Products {
		out.Products = append(out.Products, persistedProduct{
			ID:           p.ID,
			VendorUserID: p.VendorUserID,
			Name:         p.Name,
			Price:        p.Price,
			ImageURL:     p.ImageURL,
		})
	}
	return json.Marshal(out)
}
