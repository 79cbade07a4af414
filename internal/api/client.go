// Package api is the typed client for the Gebeya backend REST API.
// Every call is a single attempt; callers decide whether a failure is
// fatal or whether locally cached state is good enough.
package api

import (
	"context"
	"fmt"

	"github.com/mestawet/gebeya/app/models"
	"github.com/mestawet/gebeya/config"
	"github.com/mestawet/gebeya/pkg/auth"
	"github.com/mestawet/gebeya/pkg/http"
	"github.com/mestawet/gebeya/pkg/kvstore"
)

// Client talks to the backend. The zero base URL resolves through
// config.APIBaseURL at construction time.
type Client struct {
	base string
	kv   kvstore.Store
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.base = u }
}

// NewClient builds a Client that stores and reads the bearer token in kv.
func NewClient(kv kvstore.Store, opts ...Option) *Client {
	c := &Client{base: config.APIBaseURL(), kv: kv}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the resolved API base URL.
func (c *Client) BaseURL() string { return c.base }

func (c *Client) url(path string) string { return c.base + path }

// authed attaches the stored bearer token, when one exists.
func (c *Client) authed(r *http.Request) *http.Request {
	if token := auth.LoadToken(c.kv); token != "" {
		r = r.Bearer(token)
	}
	return r
}

// send executes the request and converts non-2xx statuses into errors.
func send(r *http.Request) (*http.Response, error) {
	resp, err := r.Send()
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, err
	}
	return resp, nil
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

// Register creates an account and returns the user plus the issued token.
// The backend requires both name parts to be non-empty.
func (c *Client) Register(ctx context.Context, firstName, lastName, email, password string) (models.User, string, error) {
	resp, err := send(c.authed(http.Post(c.url("/auth/register")).
		WithContext(ctx).
		Body(RegisterRequest{FirstName: firstName, LastName: lastName, Email: email, Password: password})))
	if err != nil {
		return models.User{}, "", err
	}

	var out AuthResponse
	if err := resp.JSON(&out); err != nil {
		return models.User{}, "", err
	}
	return out.User.ToModel(), out.Token, nil
}

// Login authenticates a regular user.
func (c *Client) Login(ctx context.Context, email, password string) (models.User, string, error) {
	return c.signIn(ctx, "/auth/login", email, password)
}

// SignInAdmin authenticates against the admin endpoint. Non-admin
// credentials are rejected by the backend.
func (c *Client) SignInAdmin(ctx context.Context, email, password string) (models.User, string, error) {
	return c.signIn(ctx, "/auth/admin", email, password)
}

func (c *Client) signIn(ctx context.Context, path, email, password string) (models.User, string, error) {
	resp, err := send(c.authed(http.Post(c.url(path)).
		WithContext(ctx).
		Body(LoginRequest{Email: email, Password: password})))
	if err != nil {
		return models.User{}, "", err
	}

	var out AuthResponse
	if err := resp.JSON(&out); err != nil {
		return models.User{}, "", err
	}
	return out.User.ToModel(), out.Token, nil
}

// GetUser fetches one account by id.
func (c *Client) GetUser(ctx context.Context, id int64) (models.User, error) {
	resp, err := send(c.authed(http.Get(c.url(fmt.Sprintf("/users/%d", id))).WithContext(ctx)))
	if err != nil {
		return models.User{}, err
	}

	var out User
	if err := resp.JSON(&out); err != nil {
		return models.User{}, err
	}
	return out.ToModel(), nil
}

// ─── Vendor applications ──────────────────────────────────────────────────────

// ApplyVendor submits (or resubmits) a vendor application for userID.
func (c *Client) ApplyVendor(ctx context.Context, userID int64, licenseURL, idCardURL string) (models.VendorApplication, error) {
	resp, err := send(c.authed(http.Post(c.url("/vendors/apply")).
		WithContext(ctx).
		Body(ApplyVendorRequest{UserID: userID, LicenseURL: licenseURL, IDCardURL: idCardURL})))
	if err != nil {
		return models.VendorApplication{}, err
	}

	var out VendorApplication
	if err := resp.JSON(&out); err != nil {
		return models.VendorApplication{}, err
	}
	return out.ToModel(), nil
}

// ListVendorApplications fetches every application. Admin only.
func (c *Client) ListVendorApplications(ctx context.Context) ([]models.VendorApplication, error) {
	resp, err := send(c.authed(http.Get(c.url("/vendors/applications")).WithContext(ctx)))
	if err != nil {
		return nil, err
	}

	var out []VendorApplication
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	apps := make([]models.VendorApplication, 0, len(out))
	for _, a := range out {
		apps = append(apps, a.ToModel())
	}
	return apps, nil
}

// SetVendorStatus moves an application to pending, approved or rejected.
// Admin only.
func (c *Client) SetVendorStatus(ctx context.Context, id int64, status string) (models.VendorApplication, error) {
	resp, err := send(c.authed(http.Post(c.url(fmt.Sprintf("/vendors/applications/%d/status", id))).
		WithContext(ctx).
		Body(SetStatusRequest{Status: status})))
	if err != nil {
		return models.VendorApplication{}, err
	}

	var out VendorApplication
	if err := resp.JSON(&out); err != nil {
		return models.VendorApplication{}, err
	}
	return out.ToModel(), nil
}

// ─── Products ─────────────────────────────────────────────────────────────────

// ListProducts fetches the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	resp, err := send(c.authed(http.Get(c.url("/products")).WithContext(ctx)))
	if err != nil {
		return nil, err
	}

	var out []Product
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(out))
	for _, p := range out {
		products = append(products, p.ToModel())
	}
	return products, nil
}

// GetProduct fetches one product by id.
func (c *Client) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	resp, err := send(c.authed(http.Get(c.url(fmt.Sprintf("/products/%d", id))).WithContext(ctx)))
	if err != nil {
		return models.Product{}, err
	}

	var out Product
	if err := resp.JSON(&out); err != nil {
		return models.Product{}, err
	}
	return out.ToModel(), nil
}

// CreateProduct publishes a vendor's product and returns the stored copy.
func (c *Client) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	resp, err := send(c.authed(http.Post(c.url("/products")).
		WithContext(ctx).
		Body(ProductFromModel(p))))
	if err != nil {
		return models.Product{}, err
	}

	var out Product
	if err := resp.JSON(&out); err != nil {
		return models.Product{}, err
	}
	return out.ToModel(), nil
}

// ─── Orders ───────────────────────────────────────────────────────────────────

// CreateOrder submits a checkout snapshot for userID and returns the
// stored order id.
func (c *Client) CreateOrder(ctx context.Context, userID int64, order models.Order) (int64, error) {
	req := CreateOrderRequest{UserID: userID, Total: order.Total}
	for _, line := range order.Items {
		req.Items = append(req.Items, OrderItem{
			ProductID: FlexInt64(line.ProductID),
			Quantity:  line.Quantity,
			Price:     FlexFloat64(line.Product.Price),
		})
	}

	resp, err := send(c.authed(http.Post(c.url("/orders")).WithContext(ctx).Body(req)))
	if err != nil {
		return 0, err
	}

	var out Order
	if err := resp.JSON(&out); err != nil {
		return 0, err
	}
	return int64(out.ID), nil
}

// ListOrders fetches the caller's order history.
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	resp, err := send(c.authed(http.Get(c.url("/orders")).WithContext(ctx)))
	if err != nil {
		return nil, err
	}

	var out []Order
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(out))
	for _, o := range out {
		order := models.Order{ID: int64(o.ID), Total: float64(o.Total)}
		for _, it := range o.Items {
			order.Items = append(order.Items, models.CartLine{
				CartItem:  models.CartItem{ProductID: int64(it.ProductID), Quantity: it.Quantity},
				LineTotal: float64(it.Price) * float64(it.Quantity),
			})
		}
		orders = append(orders, order)
	}
	return orders, nil
}
