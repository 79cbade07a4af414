package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mestawet/gebeya/app/models"
)

// The backend has gone through several field-naming generations, so reads
// tolerate both snake_case and camelCase plus a few scalar quirks (numeric
// strings, comma-joined lists). Writes always emit snake_case.

// ─── Tolerant scalars ─────────────────────────────────────────────────────────

// FlexInt64 decodes from a JSON number, a numeric string, or null.
type FlexInt64 int64

func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			// fractional ids have been observed from one backend build
			fl, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil {
				return err
			}
			*f = FlexInt64(fl)
			return nil
		}
		*f = FlexInt64(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexInt64(n)
	return nil
}

// FlexFloat64 decodes from a JSON number, a numeric string, or null.
type FlexFloat64 float64

func (f *FlexFloat64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = FlexFloat64(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexFloat64(n)
	return nil
}

// StringList decodes from a JSON array of strings or from a single
// comma-joined string. Entries are trimmed and empties dropped.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var raw []string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*l = cleanList(raw)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = cleanList(strings.Split(s, ","))
	return nil
}

func cleanList(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register, login and admin sign-in. Older
// backend builds wrap the account in {"token": ..., "user": {...}}; the
// current one returns the account fields flat at the top level, so
// UnmarshalJSON accepts both.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (r *AuthResponse) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	r.Token = wrapped.Token
	if len(wrapped.User) > 0 && !bytes.Equal(bytes.TrimSpace(wrapped.User), []byte("null")) {
		return json.Unmarshal(wrapped.User, &r.User)
	}
	// no "user" key: the account fields are the top-level object itself
	return json.Unmarshal(data, &r.User)
}

// User is the wire shape of an account. The backend splits the display
// name into first_name/last_name; older builds sent a single name field.
type User struct {
	ID            FlexInt64 `json:"id"`
	Name          string    `json:"name"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	AccountStatus string    `json:"account_status"`
}

// DisplayName coalesces the two naming generations: a plain name field
// when present, otherwise first and last name joined.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) ToModel() models.User {
	return models.User{
		ID:            int64(u.ID),
		Name:          u.DisplayName(),
		Email:         u.Email,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		AccountStatus: u.AccountStatus,
	}
}

// ─── Vendor applications ──────────────────────────────────────────────────────

type ApplyVendorRequest struct {
	UserID     int64  `json:"user_id"`
	LicenseURL string `json:"license_url"`
	IDCardURL  string `json:"id_card_url"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type VendorApplication struct {
	ID         FlexInt64 `json:"id"`
	UserID     FlexInt64 `json:"user_id"`
	LicenseURL string    `json:"license_url"`
	IDCardURL  string    `json:"id_card_url"`
	Status     string    `json:"status"`
}

func (a VendorApplication) ToModel() models.VendorApplication {
	return models.VendorApplication{
		ID:         int64(a.ID),
		UserID:     int64(a.UserID),
		LicenseURL: a.LicenseURL,
		IDCardURL:  a.IDCardURL,
		Status:     a.Status,
	}
}

// ─── Products ─────────────────────────────────────────────────────────────────

// Product tolerates both naming generations on reads. UnmarshalJSON
// coalesces the snake_case and camelCase spellings, snake_case winning
// when both are present.
type Product struct {
	ID           int64
	VendorUserID int64
	Name         string
	Description  string
	Price        float64
	ImageURL     string
	Colors       []string
	Sizes        []string
	Brand        string
	Made         string
	Stock        int
	Rating       float64
	IsFeatured   bool
}

type productWire struct {
	ID              FlexInt64    `json:"id"`
	VendorUserID    *FlexInt64   `json:"vendor_user_id"`
	VendorUserIDAlt *FlexInt64   `json:"vendorUserId"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	Price           FlexFloat64  `json:"price"`
	ImageURL        *string      `json:"image_url"`
	ImageURLAlt     *string      `json:"imageUrl"`
	Colors          StringList   `json:"colors"`
	Sizes           StringList   `json:"sizes"`
	Brand           string       `json:"brand"`
	Made            *string      `json:"made"`
	MadeAlt         *string      `json:"made_in"`
	Stock           *FlexInt64   `json:"stock"`
	Rating          *FlexFloat64 `json:"rating"`
	IsFeatured      *bool        `json:"is_featured"`
	IsFeaturedAlt   *bool        `json:"isFeatured"`
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var w productWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = Product{
		ID:          int64(w.ID),
		Name:        w.Name,
		Description: w.Description,
		Price:       float64(w.Price),
		Colors:      w.Colors,
		Sizes:       w.Sizes,
		Brand:       w.Brand,
	}
	if w.VendorUserID != nil {
		p.VendorUserID = int64(*w.VendorUserID)
	} else if w.VendorUserIDAlt != nil {
		p.VendorUserID = int64(*w.VendorUserIDAlt)
	}
	if w.ImageURL != nil {
		p.ImageURL = *w.ImageURL
	} else if w.ImageURLAlt != nil {
		p.ImageURL = *w.ImageURLAlt
	}
	if w.Made != nil {
		p.Made = *w.Made
	} else if w.MadeAlt != nil {
		p.Made = *w.MadeAlt
	}
	if w.Stock != nil {
		p.Stock = int(*w.Stock)
	}
	if w.Rating != nil {
		p.Rating = float64(*w.Rating)
	}
	if w.IsFeatured != nil {
		p.IsFeatured = *w.IsFeatured
	} else if w.IsFeaturedAlt != nil {
		p.IsFeatured = *w.IsFeaturedAlt
	}
	return nil
}

// MarshalJSON always emits the snake_case generation.
func (p Product) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":             p.ID,
		"vendor_user_id": p.VendorUserID,
		"name":           p.Name,
		"description":    p.Description,
		"price":          p.Price,
		"image_url":      p.ImageURL,
		"colors":         []string(p.Colors),
		"sizes":          []string(p.Sizes),
		"brand":          p.Brand,
		"made":           p.Made,
		"stock":          p.Stock,
		"rating":         p.Rating,
		"is_featured":    p.IsFeatured,
	}
	return json.Marshal(out)
}

func (p Product) ToModel() models.Product {
	return models.Product{
		ID:           p.ID,
		VendorUserID: p.VendorUserID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		ImageURL:     p.ImageURL,
		Colors:       p.Colors,
		Sizes:        p.Sizes,
		Brand:        p.Brand,
		Made:         p.Made,
		Stock:        p.Stock,
		Rating:       p.Rating,
		IsFeatured:   p.IsFeatured,
	}
}

func ProductFromModel(m models.Product) Product {
	return Product{
		ID:           m.ID,
		VendorUserID: m.VendorUserID,
		Name:         m.Name,
		Description:  m.Description,
		Price:        m.Price,
		ImageURL:     m.ImageURL,
		Colors:       m.Colors,
		Sizes:        m.Sizes,
		Brand:        m.Brand,
		Made:         m.Made,
		Stock:        m.Stock,
		Rating:       m.Rating,
		IsFeatured:   m.IsFeatured,
	}
}

// ─── Orders ───────────────────────────────────────────────────────────────────

type OrderItem struct {
	ProductID FlexInt64   `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Price     FlexFloat64 `json:"price"`
}

type CreateOrderRequest struct {
	UserID int64       `json:"user_id"`
	Items  []OrderItem `json:"items"`
	Total  float64     `json:"total"`
}

type Order struct {
	ID    FlexInt64   `json:"id"`
	Items []OrderItem `json:"items"`
	Total FlexFloat64 `json:"total"`
}
