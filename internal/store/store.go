// Package store is the client-side source of truth for session, vendor,
// catalog, cart and order state. State lives in a single envelope, is
// persisted through a kvstore driver after every mutation, and every
// persisted mutation is announced on an event bus.
//
//	s := store.New(kvstore.Default(),
//	    store.WithFetcher(api.NewClient(kvstore.Default())),
//	)
//	sub := s.Bus().Subscribe(store.ChannelUpdate, func(interface{}) { render() })
//	defer sub.Cancel()
//
//	s.AddToCart(productID, 1)
package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mestawet/gebeya/app/models"
	"github.com/mestawet/gebeya/pkg/collection"
	"github.com/mestawet/gebeya/pkg/event"
	"github.com/mestawet/gebeya/pkg/kvstore"
	"github.com/mestawet/gebeya/pkg/logger"
	"github.com/mestawet/gebeya/pkg/metrics"
)

// Event channels fired by the store.
const (
	// ChannelUpdate fires after every persisted mutation, with a nil
	// payload.
	ChannelUpdate = "store:update"
	// ChannelVendorApproved fires when an application is set to
	// approved. The payload is the applicant's user id (int64).
	ChannelVendorApproved = "vendor:approved"
)

// ProductFetcher resolves a single product from the backend. The API
// client satisfies this.
type ProductFetcher interface {
	GetProduct(ctx context.Context, id int64) (models.Product, error)
}

// Store holds the envelope and coordinates persistence and
// notifications. All methods are safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	kv        kvstore.Store
	bus       *event.Bus
	fetcher   ProductFetcher
	now       func() time.Time
	log       *slog.Logger
	env       Envelope
	overrides Overrides
	lastID    int64
	degraded  bool
}

// Option customises a Store.
type Option func(*Store)

// WithBus sets the event bus. Defaults to event.Default().
func WithBus(b *event.Bus) Option {
	return func(s *Store) { s.bus = b }
}

// WithFetcher sets the backend product fetcher used by
// RefreshMissingProducts. Without one, refresh is a no-op.
func WithFetcher(f ProductFetcher) Option {
	return func(s *Store) { s.fetcher = f }
}

// WithClock sets the time source used for id generation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New loads any previously persisted state from kv and returns a ready
// Store. A corrupt or missing envelope falls back to defaults.
func New(kv kvstore.Store, opts ...Option) *Store {
	s := &Store{
		kv:  kv,
		bus: event.Default(),
		now: time.Now,
		log: logger.L,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.env = loadEnvelope(s.kv)
	s.overrides = loadOverrides(s.kv)
	return s
}

// Bus returns the event bus mutations are announced on.
func (s *Store) Bus() *event.Bus { return s.bus }

// Degraded reports whether persistence has fallen back to memory-only
// storage after repeated write failures.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// ─── Mutation plumbing ────────────────────────────────────────────────────────

type eventMsg struct {
	channel string
	payload interface{}
}

// nextID derives ids from the wall clock in milliseconds, bumped when
// two ids land in the same millisecond.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// mutate runs fn under the lock, persists the envelope, and fires the
// update event plus any extra events fn returned. Events fire outside
// the lock so handlers can call back into the store.
func (s *Store) mutate(op string, fn func() []eventMsg) {
	s.mu.Lock()
	extra := fn()
	s.persistLocked(op)
	s.mu.Unlock()

	s.bus.Fire(ChannelUpdate, nil)
	for _, e := range extra {
		s.bus.Fire(e.channel, e.payload)
	}
}

// persistLocked writes the pared-down envelope. A failed write is
// retried once after deleting the key; a second failure swaps the
// backing storage for an in-memory driver so the session keeps working,
// accepting that state will not survive a restart.
func (s *Store) persistLocked(op string) {
	raw, err := marshalEnvelope(s.env)
	if err != nil {
		s.log.Error("store: marshal envelope", "error", err)
		return
	}

	if err := s.kv.Put(EnvelopeKey, raw); err != nil {
		metrics.PersistFailures.Inc()
		s.log.Warn("store: envelope write failed, clearing key and retrying", "error", err)
		_ = s.kv.Delete(EnvelopeKey)

		if err := s.kv.Put(EnvelopeKey, raw); err != nil {
			s.log.Error("store: envelope write failed twice, continuing memory-only", "error", err)
			s.kv = kvstore.NewMemory()
			s.degraded = true
			_ = s.kv.Put(EnvelopeKey, raw)
		}
	}

	metrics.StoreMutations.WithLabelValues(op).Inc()
	metrics.CartItems.Set(float64(countCart(s.env.Cart)))
}

func countCart(cart []models.CartItem) int {
	return collection.Reduce(cart, 0, func(n int, it models.CartItem) int {
		return n + it.Quantity
	})
}

// ─── Session ──────────────────────────────────────────────────────────────────

// RegisterUser replaces the session user. A user without an id is
// treated as a legacy partial shape and gets an id and the default role.
func (s *Store) RegisterUser(u models.User) models.User {
	s.mutate("register_user", func() []eventMsg {
		if u.ID == 0 {
			u.ID = s.nextID()
		}
		if u.Role == "" {
			u.Role = models.RoleUser
		}
		s.env.User = &u
		return nil
	})
	return u
}

// SignInAsAdmin sets the session to a fixed admin identity. Demo
// convenience, not authentication.
func (s *Store) SignInAsAdmin() models.User {
	admin := models.User{ID: 1, Name: "Admin", Email: "admin@gebeya.local", Role: models.RoleAdmin}
	s.mutate("sign_in_admin", func() []eventMsg {
		s.env.User = &admin
		return nil
	})
	return admin
}

// SignOut clears the session user.
func (s *Store) SignOut() {
	s.mutate("sign_out", func() []eventMsg {
		s.env.User = nil
		return nil
	})
}

// CurrentUser returns the session user, if any.
func (s *Store) CurrentUser() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.env.User == nil {
		return models.User{}, false
	}
	return *s.env.User, true
}

// ─── Vendor applications ──────────────────────────────────────────────────────

// ApplyAsVendor upserts the single application for userID. A
// resubmission keeps the application id but replaces the document URLs
// and resets the status to pending.
func (s *Store) ApplyAsVendor(userID int64, licenseURL, idCardURL string) models.VendorApplication {
	var app models.VendorApplication
	s.mutate("apply_vendor", func() []eventMsg {
		for i := range s.env.VendorApplications {
			if s.env.VendorApplications[i].UserID == userID {
				s.env.VendorApplications[i].LicenseURL = licenseURL
				s.env.VendorApplications[i].IDCardURL = idCardURL
				s.env.VendorApplications[i].Status = models.StatusPending
				app = s.env.VendorApplications[i]
				return nil
			}
		}
		app = models.VendorApplication{
			ID:         s.nextID(),
			UserID:     userID,
			LicenseURL: licenseURL,
			IDCardURL:  idCardURL,
			Status:     models.StatusPending,
		}
		s.env.VendorApplications = append(s.env.VendorApplications, app)
		return nil
	})
	return app
}

// SetVendorStatus moves an application to the given status. Unknown
// statuses and unknown application ids are ignored. When the applicant
// is the session user, the user's role tracks the status: vendor while
// approved, user otherwise.
func (s *Store) SetVendorStatus(applicationID int64, status string) {
	if !models.ValidStatus(status) {
		return
	}

	found := false
	s.mu.Lock()
	for i := range s.env.VendorApplications {
		if s.env.VendorApplications[i].ID == applicationID {
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}

	s.mutate("set_vendor_status", func() []eventMsg {
		var extra []eventMsg
		for i := range s.env.VendorApplications {
			app := &s.env.VendorApplications[i]
			if app.ID != applicationID {
				continue
			}
			app.Status = status

			if s.env.User != nil && s.env.User.ID == app.UserID {
				if status == models.StatusApproved {
					s.env.User.Role = models.RoleVendor
				} else {
					s.env.User.Role = models.RoleUser
				}
			}
			if status == models.StatusApproved {
				extra = append(extra, eventMsg{ChannelVendorApproved, app.UserID})
			}
			break
		}
		return extra
	})
}

// ApproveVendor is shorthand for SetVendorStatus(id, approved).
func (s *Store) ApproveVendor(applicationID int64) {
	s.SetVendorStatus(applicationID, models.StatusApproved)
}

// IsVendorApproved reports whether userID has an approved application.
func (s *Store) IsVendorApproved(userID int64) bool {
	app, ok := s.GetVendorApplication(userID)
	return ok && app.Status == models.StatusApproved
}

// HasVendorApplication reports whether userID has applied.
func (s *Store) HasVendorApplication(userID int64) bool {
	_, ok := s.GetVendorApplication(userID)
	return ok
}

// GetVendorApplication returns userID's application, if any.
func (s *Store) GetVendorApplication(userID int64) (models.VendorApplication, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return collection.First(s.env.VendorApplications, func(a models.VendorApplication) bool {
		return a.UserID == userID
	})
}

// ListVendorApplications returns all applications.
func (s *Store) ListVendorApplications() []models.VendorApplication {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.VendorApplication, len(s.env.VendorApplications))
	copy(out, s.env.VendorApplications)
	return out
}

// ─── Catalog ──────────────────────────────────────────────────────────────────

// AddProduct creates a product locally. A zero id gets generated; a zero
// vendor id is filled from the session user.
func (s *Store) AddProduct(p models.Product) models.Product {
	s.mutate("add_product", func() []eventMsg {
		if p.ID == 0 {
			p.ID = s.nextID()
		}
		if p.VendorUserID == 0 && s.env.User != nil {
			p.VendorUserID = s.env.User.ID
		}
		p = normalize(p, s.overrides)
		s.env.Products = append(s.env.Products, p)
		return nil
	})
	return p
}

// SetProducts replaces the whole catalog with the given list, typically
// fresh from the backend. Products absent from the list are dropped.
func (s *Store) SetProducts(list []models.Product) {
	s.mutate("set_products", func() []eventMsg {
		next := make([]models.Product, 0, len(list))
		for _, p := range list {
			next = append(next, normalize(p, s.overrides))
		}
		s.env.Products = next
		return nil
	})
}

// AddProductToStore upserts a single product by id without touching the
// rest of the catalog.
func (s *Store) AddProductToStore(p models.Product) {
	s.mutate("upsert_product", func() []eventMsg {
		p = normalize(p, s.overrides)
		for i := range s.env.Products {
			if s.env.Products[i].ID == p.ID {
				s.env.Products[i] = p
				return nil
			}
		}
		s.env.Products = append(s.env.Products, p)
		return nil
	})
}

// ListProducts returns the cached catalog.
func (s *Store) ListProducts() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, len(s.env.Products))
	copy(out, s.env.Products)
	return out
}

// GetProduct returns a cached product by id.
func (s *Store) GetProduct(id int64) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return collection.First(s.env.Products, func(p models.Product) bool { return p.ID == id })
}

// SetColorSizeOverride records locally entered colors and sizes for a
// product, used to fill gaps whenever the backend omits them. The
// override also fills gaps in the cached product immediately.
func (s *Store) SetColorSizeOverride(productID int64, colors, sizes []string) {
	s.mutate("set_override", func() []eventMsg {
		s.overrides[productID] = models.ColorSizeOverride{Colors: colors, Sizes: sizes}
		if err := saveOverrides(s.kv, s.overrides); err != nil {
			s.log.Warn("store: save overrides", "error", err)
		}
		for i := range s.env.Products {
			if s.env.Products[i].ID == productID {
				s.env.Products[i] = normalize(s.env.Products[i], s.overrides)
				break
			}
		}
		return nil
	})
}

// ─── Cart ─────────────────────────────────────────────────────────────────────

// AddToCart adds quantity of a product to the cart. An existing line for
// the product is incremented instead of duplicated. Quantities below 1
// count as 1.
func (s *Store) AddToCart(productID int64, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	s.mutate("add_to_cart", func() []eventMsg {
		for i := range s.env.Cart {
			if s.env.Cart[i].ProductID == productID {
				s.env.Cart[i].Quantity += quantity
				return nil
			}
		}
		s.env.Cart = append(s.env.Cart, models.CartItem{
			ID:        s.nextID(),
			ProductID: productID,
			Quantity:  quantity,
		})
		return nil
	})
}

// RemoveFromCart drops the cart line with the given item id. Unknown ids
// are ignored.
func (s *Store) RemoveFromCart(itemID int64) {
	s.mutate("remove_from_cart", func() []eventMsg {
		s.env.Cart = collection.Filter(s.env.Cart, func(it models.CartItem) bool {
			return it.ID != itemID
		})
		return nil
	})
}

// SetCartQuantity sets a line's quantity, clamped to a minimum of 1.
// Unknown ids are ignored.
func (s *Store) SetCartQuantity(itemID int64, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	found := false
	for i := range s.env.Cart {
		if s.env.Cart[i].ID == itemID {
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}

	s.mutate("set_cart_quantity", func() []eventMsg {
		for i := range s.env.Cart {
			if s.env.Cart[i].ID == itemID {
				s.env.Cart[i].Quantity = quantity
				break
			}
		}
		return nil
	})
}

// ClearCart empties the cart.
func (s *Store) ClearCart() {
	s.mutate("clear_cart", func() []eventMsg {
		s.env.Cart = []models.CartItem{}
		return nil
	})
}

// CartCount returns the sum of all line quantities.
func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countCart(s.env.Cart)
}

// ListCartItems joins the cart against the cached catalog. A line whose
// product is not cached gets the zero-priced "Unknown" placeholder.
func (s *Store) ListCartItems() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLinesLocked()
}

func (s *Store) cartLinesLocked() []models.CartLine {
	return collection.Map(s.env.Cart, func(it models.CartItem) models.CartLine {
		product, ok := collection.First(s.env.Products, func(p models.Product) bool {
			return p.ID == it.ProductID
		})
		if !ok {
			product = models.PlaceholderProduct()
		}
		return models.CartLine{
			CartItem:  it,
			Product:   product,
			LineTotal: product.Price * float64(it.Quantity),
		}
	})
}

// RefreshMissingProducts fetches, one by one, every cart line's product
// that is absent from the cached catalog and upserts it. Best effort:
// failures are logged and swallowed. Upserting by id keeps this safe
// even if the cart changed while a fetch was in flight.
func (s *Store) RefreshMissingProducts(ctx context.Context) {
	if s.fetcher == nil {
		return
	}

	s.mu.Lock()
	var missing []int64
	for _, it := range s.env.Cart {
		cached := collection.Contains(s.env.Products, func(p models.Product) bool {
			return p.ID == it.ProductID
		})
		if !cached {
			missing = append(missing, it.ProductID)
		}
	}
	s.mu.Unlock()

	for _, id := range missing {
		p, err := s.fetcher.GetProduct(ctx, id)
		if err != nil {
			s.log.Warn("store: refresh product", "product_id", id, "error", err)
			continue
		}
		s.AddProductToStore(p)
	}
}

// RemoveUnresolvableCartItems drops cart lines whose product is not in
// the cached catalog.
func (s *Store) RemoveUnresolvableCartItems() {
	s.mutate("prune_cart", func() []eventMsg {
		s.env.Cart = collection.Filter(s.env.Cart, func(it models.CartItem) bool {
			return collection.Contains(s.env.Products, func(p models.Product) bool {
				return p.ID == it.ProductID
			})
		})
		return nil
	})
}

// ─── Orders ───────────────────────────────────────────────────────────────────

// Checkout snapshots the cart into a new order, records it as the last
// order and at the head of the history, and clears the cart. Line totals
// and the order total are frozen at checkout time. Returns false when
// the cart is empty.
func (s *Store) Checkout() (models.Order, bool) {
	s.mu.Lock()
	empty := len(s.env.Cart) == 0
	s.mu.Unlock()
	if empty {
		return models.Order{}, false
	}

	var order models.Order
	s.mutate("checkout", func() []eventMsg {
		lines := s.cartLinesLocked()
		total := collection.Sum(lines, func(l models.CartLine) float64 { return l.LineTotal })
		order = models.Order{ID: s.nextID(), Items: lines, Total: total}

		s.env.Orders = append([]models.Order{order}, s.env.Orders...)
		s.env.LastOrder = &order
		s.env.Cart = []models.CartItem{}
		return nil
	})

	return order, true
}

// LastOrder returns the most recent checkout, if any.
func (s *Store) LastOrder() (models.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.env.LastOrder == nil {
		return models.Order{}, false
	}
	return *s.env.LastOrder, true
}

// ListOrders returns the order history, newest first.
func (s *Store) ListOrders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, len(s.env.Orders))
	copy(out, s.env.Orders)
	return out
}

// ─── Reset ────────────────────────────────────────────────────────────────────

// ResetAll restores the session, applications and catalog to defaults.
// Cart and order history are deliberately left alone.
func (s *Store) ResetAll() {
	s.mutate("reset_all", func() []eventMsg {
		s.env.User = nil
		s.env.VendorApplications = []models.VendorApplication{}
		s.env.Products = []models.Product{}
		return nil
	})
}
