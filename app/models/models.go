// Package models holds the client-side domain entities. JSON tags use the
// camelCase names the persisted envelope has always used, so old payloads
// keep loading; the snake_case wire shapes live in internal/api.
package models

// User roles.
const (
	RoleUser   = "user"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

// Vendor application statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ValidStatus reports whether s is one of the three application statuses.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// User is the session user: the currently authenticated identity held by
// the store, distinct from the backend's authoritative record.
type User struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified,omitempty"`
	AccountStatus string `json:"accountStatus,omitempty"`
}

// VendorApplication is one user's request to sell on the marketplace.
// At most one application exists per user; resubmission overwrites the
// document URLs and resets the status.
type VendorApplication struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"userId"`
	LicenseURL string `json:"licenseUrl"`
	IDCardURL  string `json:"idCardUrl"`
	Status     string `json:"status"`
}

// Product is a catalog entry, either created locally by a vendor or
// synced from the backend.
type Product struct {
	ID           int64    `json:"id"`
	VendorUserID int64    `json:"vendorUserId"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	ImageURL     string   `json:"imageUrl"`
	Colors       []string `json:"colors,omitempty"`
	Sizes        []string `json:"sizes,omitempty"`
	Brand        string   `json:"brand,omitempty"`
	Made         string   `json:"made,omitempty"`
	Stock        int      `json:"stock,omitempty"`
	Rating       float64  `json:"rating,omitempty"`
	IsFeatured   bool     `json:"isFeatured,omitempty"`
}

// PlaceholderProduct is returned when a cart line references a product
// that is not (or no longer) in the local catalog.
func PlaceholderProduct() Product {
	return Product{Name: "Unknown"}
}

// CartItem is one cart line. Lines are unique per ProductID; adding an
// existing product increments Quantity instead of appending.
type CartItem struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CartLine is a cart item joined against the catalog for display.
type CartLine struct {
	CartItem
	Product   Product `json:"product"`
	LineTotal float64 `json:"lineTotal"`
}

// Order is a checkout snapshot. Items and Total are frozen at checkout
// time and never recomputed.
type Order struct {
	ID    int64      `json:"id"`
	Items []CartLine `json:"items"`
	Total float64    `json:"total"`
}

// ColorSizeOverride carries locally entered colors/sizes for a product,
// used to fill gaps when the backend omits them.
type ColorSizeOverride struct {
	Colors []string `json:"colors,omitempty"`
	Sizes  []string `json:"sizes,omitempty"`
}
