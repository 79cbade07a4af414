package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mestawet/gebeya/app/models"
	"github.com/mestawet/gebeya/pkg/event"
	"github.com/mestawet/gebeya/pkg/kvstore"
)

func newTestStore(t *testing.T, opts ...Option) (*Store, kvstore.Store) {
	t.Helper()
	kv := kvstore.NewMemory()
	opts = append([]Option{
		WithBus(event.NewBus()),
		WithClock(testClock()),
	}, opts...)
	return New(kv, opts...), kv
}

// testClock advances one millisecond per call so generated ids are
// distinct and predictable.
func testClock() func() time.Time {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Millisecond)
	}
}

// ─── Cart ─────────────────────────────────────────────────────────────────────

func TestAddToCartAccumulatesOneLine(t *testing.T) {
	s, _ := newTestStore(t)

	s.AddToCart(100, 1)
	s.AddToCart(100, 2)
	s.AddToCart(100, 3)

	items := s.ListCartItems()
	if len(items) != 1 {
		t.Fatalf("expected a single cart line, got %d", len(items))
	}
	if items[0].Quantity != 6 {
		t.Errorf("expected quantity 6, got %d", items[0].Quantity)
	}
	if s.CartCount() != 6 {
		t.Errorf("expected cart count 6, got %d", s.CartCount())
	}
}

func TestSetCartQuantityClampsToOne(t *testing.T) {
	s, _ := newTestStore(t)

	s.AddToCart(100, 5)
	itemID := s.ListCartItems()[0].ID

	for _, q := range []int{0, -3} {
		s.SetCartQuantity(itemID, q)
		if got := s.ListCartItems()[0].Quantity; got != 1 {
			t.Errorf("SetCartQuantity(%d): expected clamp to 1, got %d", q, got)
		}
	}

	s.SetCartQuantity(itemID, 4)
	if got := s.ListCartItems()[0].Quantity; got != 4 {
		t.Errorf("expected quantity 4, got %d", got)
	}
}

func TestSetCartQuantityUnknownItemIsNoOp(t *testing.T) {
	s, _ := newTestStore(t)

	s.AddToCart(100, 2)
	s.SetCartQuantity(999999, 7)

	if got := s.ListCartItems()[0].Quantity; got != 2 {
		t.Errorf("expected untouched quantity 2, got %d", got)
	}
}

func TestListCartItemsLineTotals(t *testing.T) {
	s, _ := newTestStore(t)

	s.AddProductToStore(models.Product{ID: 100, Name: "Habesha dress", Price: 12.5})
	s.AddToCart(100, 3)
	s.AddToCart(200, 2) // never cached

	lines := s.ListCartItems()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	if lines[0].LineTotal != 37.5 {
		t.Errorf("expected line total 37.5, got %v", lines[0].LineTotal)
	}
	if lines[1].Product.Name != "Unknown" || lines[1].Product.Price != 0 {
		t.Errorf("expected zero-priced placeholder, got %+v", lines[1].Product)
	}
	if lines[1].LineTotal != 0 {
		t.Errorf("expected zero line total for placeholder, got %v", lines[1].LineTotal)
	}
}

func TestRemoveFromCart(t *testing.T) {
	s, _ := newTestStore(t)

	s.AddToCart(100, 1)
	s.AddToCart(200, 1)
	itemID := s.ListCartItems()[0].ID

	s.RemoveFromCart(itemID)
	s.RemoveFromCart(424242) // unknown id is ignored

	items := s.ListCartItems()
	if len(items) != 1 || items[0].ProductID != 200 {
		t.Errorf("unexpected cart after removal: %+v", items)
	}
}

// ─── Checkout ─────────────────────────────────────────────────────────────────

func TestCheckout(t *testing.T) {
	s, _ := newTestStore(t)

	s.AddProductToStore(models.Product{ID: 100, Name: "Scarf", Price: 10})
	s.AddProductToStore(models.Product{ID: 200, Name: "Coffee", Price: 5})
	s.AddToCart(100, 2)
	s.AddToCart(200, 1)

	order, ok := s.Checkout()
	if !ok {
		t.Fatal("expected checkout to succeed")
	}
	if order.Total != 25 {
		t.Errorf("expected total 25, got %v", order.Total)
	}
	if len(order.Items) != 2 {
		t.Errorf("expected 2 order lines, got %d", len(order.Items))
	}
	if s.CartCount() != 0 {
		t.Errorf("expected empty cart after checkout, got %d items", s.CartCount())
	}

	orders := s.ListOrders()
	if len(orders) == 0 || orders[0].ID != order.ID {
		t.Errorf("expected newest order first, got %+v", orders)
	}
	last, ok := s.LastOrder()
	if !ok || last.ID != order.ID {
		t.Errorf("expected last order %d, got %+v", order.ID, last)
	}
}

func TestCheckoutTotalsAreFrozen(t *testing.T) {
	s, _ := newTestStore(t)

	s.AddProductToStore(models.Product{ID: 100, Name: "Scarf", Price: 10})
	s.AddToCart(100, 1)
	order, _ := s.Checkout()

	// a later price change must not rewrite history
	s.AddProductToStore(models.Product{ID: 100, Name: "Scarf", Price: 99})

	got := s.ListOrders()[0]
	if got.Total != order.Total || got.Total != 10 {
		t.Errorf("expected frozen total 10, got %v", got.Total)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	s, _ := newTestStore(t)

	if _, ok := s.Checkout(); ok {
		t.Error("expected checkout on an empty cart to report failure")
	}
	if len(s.ListOrders()) != 0 {
		t.Error("expected no order to be recorded")
	}
}

// ─── Session ──────────────────────────────────────────────────────────────────

func TestSignInAsAdminAndSignOut(t *testing.T) {
	s, _ := newTestStore(t)

	admin := s.SignInAsAdmin()
	if admin.ID != 1 || admin.Role != models.RoleAdmin {
		t.Errorf("unexpected admin identity %+v", admin)
	}
	if u, ok := s.CurrentUser(); !ok || u.Role != models.RoleAdmin {
		t.Errorf("expected admin session, got %+v", u)
	}

	s.SignOut()
	if _, ok := s.CurrentUser(); ok {
		t.Error("expected no session user after sign-out")
	}
}

func TestRegisterUserLegacyShape(t *testing.T) {
	s, _ := newTestStore(t)

	u := s.RegisterUser(models.User{Name: "Almaz", Email: "a@example.com"})
	if u.ID == 0 {
		t.Error("expected a generated id for the legacy shape")
	}
	if u.Role != models.RoleUser {
		t.Errorf("expected default role user, got %q", u.Role)
	}

	// a server-shaped user keeps its id and role
	srv := s.RegisterUser(models.User{ID: 42, Name: "B", Email: "b@example.com", Role: models.RoleVendor})
	if srv.ID != 42 || srv.Role != models.RoleVendor {
		t.Errorf("expected server identity preserved, got %+v", srv)
	}
}

// ─── Vendor workflow ──────────────────────────────────────────────────────────

func TestVendorStatusSyncsSessionRole(t *testing.T) {
	s, _ := newTestStore(t)

	user := s.RegisterUser(models.User{Name: "Almaz", Email: "almaz@example.com"})
	app := s.ApplyAsVendor(user.ID, "https://cdn/license.pdf", "https://cdn/id.pdf")

	s.SetVendorStatus(app.ID, models.StatusApproved)
	if u, _ := s.CurrentUser(); u.Role != models.RoleVendor {
		t.Errorf("expected role vendor after approval, got %q", u.Role)
	}
	if !s.IsVendorApproved(user.ID) {
		t.Error("expected IsVendorApproved to be true")
	}

	s.SetVendorStatus(app.ID, models.StatusRejected)
	if u, _ := s.CurrentUser(); u.Role != models.RoleUser {
		t.Errorf("expected role user after rejection, got %q", u.Role)
	}
}

func TestSetVendorStatusBogusIsNoOp(t *testing.T) {
	s, _ := newTestStore(t)

	user := s.RegisterUser(models.User{Name: "Almaz", Email: "almaz@example.com"})
	app := s.ApplyAsVendor(user.ID, "l", "i")
	s.SetVendorStatus(app.ID, models.StatusApproved)

	s.SetVendorStatus(app.ID, "bogus")

	got, _ := s.GetVendorApplication(user.ID)
	if got.Status != models.StatusApproved {
		t.Errorf("expected status unchanged, got %q", got.Status)
	}
	if u, _ := s.CurrentUser(); u.Role != models.RoleVendor {
		t.Errorf("expected role unchanged, got %q", u.Role)
	}
}

func TestApplyAsVendorResubmissionKeepsID(t *testing.T) {
	s, _ := newTestStore(t)

	first := s.ApplyAsVendor(7, "old-license", "old-id")
	s.SetVendorStatus(first.ID, models.StatusRejected)

	second := s.ApplyAsVendor(7, "new-license", "new-id")
	if second.ID != first.ID {
		t.Errorf("expected resubmission to keep id %d, got %d", first.ID, second.ID)
	}
	if second.Status != models.StatusPending {
		t.Errorf("expected status reset to pending, got %q", second.Status)
	}
	if second.LicenseURL != "new-license" {
		t.Errorf("expected replaced license url, got %q", second.LicenseURL)
	}
	if len(s.ListVendorApplications()) != 1 {
		t.Errorf("expected a single application per user")
	}
}

func TestVendorApprovedEvent(t *testing.T) {
	bus := event.NewBus()
	kv := kvstore.NewMemory()
	s := New(kv, WithBus(bus), WithClock(testClock()))

	var approvedUser int64
	updates := 0
	bus.Subscribe(ChannelUpdate, func(interface{}) { updates++ })
	bus.Subscribe(ChannelVendorApproved, func(payload interface{}) {
		approvedUser = payload.(int64)
	})

	app := s.ApplyAsVendor(7, "l", "i")
	s.ApproveVendor(app.ID)

	if approvedUser != 7 {
		t.Errorf("expected approval payload 7, got %d", approvedUser)
	}
	if updates != 2 {
		t.Errorf("expected 2 update events (apply, approve), got %d", updates)
	}
}

// ─── Catalog ──────────────────────────────────────────────────────────────────

func TestSetProductsReplacesAndUpsertDoesNot(t *testing.T) {
	s, _ := newTestStore(t)

	s.SetProducts([]models.Product{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
	s.SetProducts([]models.Product{})
	if got := s.ListProducts(); len(got) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(got))
	}

	s.AddProductToStore(models.Product{ID: 3, Name: "c"})
	if got := s.ListProducts(); len(got) != 1 {
		t.Errorf("expected exactly one product after upsert, got %d", len(got))
	}

	s.AddProductToStore(models.Product{ID: 3, Name: "c2"})
	got := s.ListProducts()
	if len(got) != 1 || got[0].Name != "c2" {
		t.Errorf("expected upsert to replace in place, got %+v", got)
	}
}

func TestAddProductFillsVendorFromSession(t *testing.T) {
	s, _ := newTestStore(t)

	user := s.RegisterUser(models.User{Name: "Almaz", Email: "a@example.com"})
	p := s.AddProduct(models.Product{Name: "Basket", Price: 30})

	if p.ID == 0 {
		t.Error("expected generated product id")
	}
	if p.VendorUserID != user.ID {
		t.Errorf("expected vendor id %d, got %d", user.ID, p.VendorUserID)
	}
}

func TestNegativePriceIsCoercedToZero(t *testing.T) {
	s, _ := newTestStore(t)

	s.AddProductToStore(models.Product{ID: 1, Name: "x", Price: -4})
	if got, _ := s.GetProduct(1); got.Price != 0 {
		t.Errorf("expected price 0, got %v", got.Price)
	}
}

func TestColorSizeOverridesFillGapsOnly(t *testing.T) {
	s, _ := newTestStore(t)

	s.SetColorSizeOverride(1, []string{"red", "green"}, []string{"M"})

	// server omits colors and sizes: override fills both
	s.SetProducts([]models.Product{{ID: 1, Name: "Dress"}})
	got, _ := s.GetProduct(1)
	if len(got.Colors) != 2 || got.Colors[0] != "red" {
		t.Errorf("expected override colors, got %v", got.Colors)
	}
	if len(got.Sizes) != 1 || got.Sizes[0] != "M" {
		t.Errorf("expected override sizes, got %v", got.Sizes)
	}

	// server supplies colors: the server value wins, sizes still filled
	s.SetProducts([]models.Product{{ID: 1, Name: "Dress", Colors: []string{"blue"}}})
	got, _ = s.GetProduct(1)
	if len(got.Colors) != 1 || got.Colors[0] != "blue" {
		t.Errorf("expected server colors to win, got %v", got.Colors)
	}
	if len(got.Sizes) != 1 || got.Sizes[0] != "M" {
		t.Errorf("expected override sizes, got %v", got.Sizes)
	}
}

func TestOverridesSurviveReload(t *testing.T) {
	s, kv := newTestStore(t)
	s.SetColorSizeOverride(1, []string{"red"}, nil)

	reloaded := New(kv, WithBus(event.NewBus()), WithClock(testClock()))
	reloaded.SetProducts([]models.Product{{ID: 1, Name: "Dress"}})

	got, _ := reloaded.GetProduct(1)
	if len(got.Colors) != 1 || got.Colors[0] != "red" {
		t.Errorf("expected persisted override to apply, got %v", got.Colors)
	}
}

// ─── Refresh / pruning ────────────────────────────────────────────────────────

type fakeFetcher struct {
	products map[int64]models.Product
	calls    []int64
}

func (f *fakeFetcher) GetProduct(_ context.Context, id int64) (models.Product, error) {
	f.calls = append(f.calls, id)
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, errors.New("not found")
	}
	return p, nil
}

func TestRefreshMissingProducts(t *testing.T) {
	fetcher := &fakeFetcher{products: map[int64]models.Product{
		200: {ID: 200, Name: "Coffee", Price: 5},
	}}
	kv := kvstore.NewMemory()
	s := New(kv, WithBus(event.NewBus()), WithClock(testClock()), WithFetcher(fetcher))

	s.AddProductToStore(models.Product{ID: 100, Name: "Scarf", Price: 10})
	s.AddToCart(100, 1) // cached, must not be fetched
	s.AddToCart(200, 1) // fetchable
	s.AddToCart(300, 1) // fetch fails, swallowed

	s.RefreshMissingProducts(context.Background())

	if len(fetcher.calls) != 2 {
		t.Fatalf("expected 2 fetches, got %v", fetcher.calls)
	}
	if _, ok := s.GetProduct(200); !ok {
		t.Error("expected fetched product to be cached")
	}
	if _, ok := s.GetProduct(300); ok {
		t.Error("did not expect failed fetch to be cached")
	}
}

func TestRemoveUnresolvableCartItems(t *testing.T) {
	s, _ := newTestStore(t)

	s.AddProductToStore(models.Product{ID: 100, Name: "Scarf", Price: 10})
	s.AddToCart(100, 1)
	s.AddToCart(999, 1)

	s.RemoveUnresolvableCartItems()

	items := s.ListCartItems()
	if len(items) != 1 || items[0].ProductID != 100 {
		t.Errorf("expected only the resolvable line to remain, got %+v", items)
	}
}

// ─── Persistence round-trip ───────────────────────────────────────────────────

func TestEnvelopeRoundTrip(t *testing.T) {
	s, kv := newTestStore(t)

	user := s.RegisterUser(models.User{Name: "Almaz", Email: "almaz@example.com"})
	app := s.ApplyAsVendor(user.ID, "license", "idcard")
	s.ApproveVendor(app.ID)
	s.AddProductToStore(models.Product{ID: 100, VendorUserID: user.ID, Name: "Scarf", Price: 10, ImageURL: "https://cdn/scarf.png"})
	s.AddToCart(100, 2)
	order, _ := s.Checkout()
	s.AddToCart(100, 1)

	// a fresh store over the same storage simulates a reload
	r := New(kv, WithBus(event.NewBus()), WithClock(testClock()))

	u, ok := r.CurrentUser()
	want, _ := s.CurrentUser()
	if !ok || u != want {
		t.Errorf("user did not survive reload: %+v", u)
	}
	a, ok := r.GetVendorApplication(user.ID)
	if !ok || a.ID != app.ID || a.Status != models.StatusApproved || a.LicenseURL != "license" {
		t.Errorf("application did not survive reload: %+v", a)
	}
	p, ok := r.GetProduct(100)
	if !ok || p.Name != "Scarf" || p.Price != 10 || p.ImageURL != "https://cdn/scarf.png" || p.VendorUserID != user.ID {
		t.Errorf("product did not survive reload: %+v", p)
	}
	if r.CartCount() != 1 {
		t.Errorf("cart did not survive reload: %d", r.CartCount())
	}
	last, ok := r.LastOrder()
	if !ok || last.ID != order.ID || last.Total != order.Total {
		t.Errorf("last order did not survive reload: %+v", last)
	}
	orders := r.ListOrders()
	if len(orders) != 1 || orders[0].ID != order.ID {
		t.Errorf("order history did not survive reload: %+v", orders)
	}
}

func TestCorruptEnvelopeFallsBackToDefaults(t *testing.T) {
	kv := kvstore.NewMemory()
	_ = kv.Put(EnvelopeKey, []byte("{not json"))

	s := New(kv, WithBus(event.NewBus()), WithClock(testClock()))
	if _, ok := s.CurrentUser(); ok {
		t.Error("expected no session user from corrupt state")
	}
	if len(s.ListProducts()) != 0 || s.CartCount() != 0 {
		t.Error("expected default envelope")
	}
}
