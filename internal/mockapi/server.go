// Package mockapi is an in-memory implementation of the Gebeya backend
// REST API. It backs the client tests and the `gebeya mock-server`
// command, so the storefront can be exercised without the real backend.
package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mestawet/gebeya/app/models"
	"github.com/mestawet/gebeya/internal/api"
	"github.com/mestawet/gebeya/pkg/auth"
	"github.com/mestawet/gebeya/pkg/metrics"
)

// Seeded admin credentials.
const (
	AdminEmail    = "admin@gebeya.local"
	AdminPassword = "admin123"
)

type account struct {
	api.User
	passwordHash string
}

// Server holds all backend state in memory.
type Server struct {
	mu       sync.Mutex
	nextID   int64
	accounts []account
	apps     []api.VendorApplication
	products []api.Product
	orders   map[int64][]api.Order
}

// New returns a Server seeded with the admin account.
func New() *Server {
	s := &Server{nextID: 1000, orders: map[int64][]api.Order{}}
	hash, _ := auth.HashPassword(AdminPassword)
	s.accounts = append(s.accounts, account{
		User: api.User{
			ID:            1,
			Name:          "Admin",
			Email:         AdminEmail,
			Role:          models.RoleAdmin,
			EmailVerified: true,
			AccountStatus: "active",
		},
		passwordHash: hash,
	})
	return s
}

// Router builds the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/admin", s.handleAdminSignIn)

	r.Get("/products", s.handleListProducts)
	r.Get("/products/{id}", s.handleGetProduct)
	r.Get("/users/{id}", s.handleGetUser)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/vendors/apply", s.handleApplyVendor)
		r.Post("/products", s.handleCreateProduct)
		r.Post("/orders", s.handleCreateOrder)
		r.Get("/orders", s.handleListOrders)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/vendors/applications", s.handleListApplications)
			r.Post("/vendors/applications/{id}/status", s.handleSetStatus)
		})
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

func (s *Server) newID() int64 {
	s.nextID++
	return s.nextID
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

type ctxKey int

const claimsKey ctxKey = 0

func withClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func claimsFrom(r *http.Request) *auth.Claims {
	c, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return c
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// fail writes a plain-text error body, which the client surfaces as the
// error message verbatim.
func fail(w http.ResponseWriter, code int, msg string) {
	http.Error(w, msg, code)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			fail(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := auth.ValidateToken(token)
		if err != nil {
			fail(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims := claimsFrom(r); claims == nil || claims.Role != models.RoleAdmin {
			fail(w, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func urlID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		fail(w, http.StatusUnprocessableEntity, "first name, last name, email and password are required")
		return
	}

	s.mu.Lock()
	for _, a := range s.accounts {
		if a.Email == req.Email {
			s.mu.Unlock()
			fail(w, http.StatusConflict, "email already registered")
			return
		}
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.mu.Unlock()
		fail(w, http.StatusInternalServerError, "hash password")
		return
	}
	acct := account{
		User: api.User{
			ID:            api.FlexInt64(s.newID()),
			FirstName:     req.FirstName,
			LastName:      req.LastName,
			Email:         req.Email,
			Role:          models.RoleUser,
			AccountStatus: "active",
		},
		passwordHash: hash,
	}
	s.accounts = append(s.accounts, acct)
	s.mu.Unlock()

	// register responds with the account fields flat at the top level,
	// as the current backend build does
	token, err := auth.GenerateToken(int64(acct.ID), acct.Role)
	if err != nil {
		fail(w, http.StatusInternalServerError, "issue token")
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		api.User
		Token string `json:"token"`
	}{User: acct.User, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.signIn(w, r, "")
}

func (s *Server) handleAdminSignIn(w http.ResponseWriter, r *http.Request) {
	s.signIn(w, r, models.RoleAdmin)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request, requiredRole string) {
	var req api.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	var acct *account
	for i := range s.accounts {
		if s.accounts[i].Email == req.Email {
			acct = &s.accounts[i]
			break
		}
	}
	s.mu.Unlock()

	if acct == nil || !auth.CheckPassword(acct.passwordHash, req.Password) {
		fail(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if requiredRole != "" && acct.Role != requiredRole {
		fail(w, http.StatusForbidden, "not an admin account")
		return
	}
	s.respondAuth(w, http.StatusOK, acct.User)
}

func (s *Server) respondAuth(w http.ResponseWriter, code int, u api.User) {
	token, err := auth.GenerateToken(int64(u.ID), u.Role)
	if err != nil {
		fail(w, http.StatusInternalServerError, "issue token")
		return
	}
	writeJSON(w, code, api.AuthResponse{Token: token, User: u})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		fail(w, http.StatusBadRequest, "invalid user id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if int64(a.ID) == id {
			writeJSON(w, http.StatusOK, a.User)
			return
		}
	}
	fail(w, http.StatusNotFound, "user not found")
}

// ─── Vendor applications ──────────────────────────────────────────────────────

func (s *Server) handleApplyVendor(w http.ResponseWriter, r *http.Request) {
	var req api.ApplyVendorRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == 0 {
		fail(w, http.StatusUnprocessableEntity, "user id is required")
		return
	}
	if req.LicenseURL == "" || req.IDCardURL == "" {
		fail(w, http.StatusUnprocessableEntity, "license and id card documents are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.apps {
		if int64(s.apps[i].UserID) == req.UserID {
			s.apps[i].LicenseURL = req.LicenseURL
			s.apps[i].IDCardURL = req.IDCardURL
			s.apps[i].Status = models.StatusPending
			writeJSON(w, http.StatusOK, s.apps[i])
			return
		}
	}
	app := api.VendorApplication{
		ID:         api.FlexInt64(s.newID()),
		UserID:     api.FlexInt64(req.UserID),
		LicenseURL: req.LicenseURL,
		IDCardURL:  req.IDCardURL,
		Status:     models.StatusPending,
	}
	s.apps = append(s.apps, app)
	writeJSON(w, http.StatusCreated, app)
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.apps
	if out == nil {
		out = []api.VendorApplication{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		fail(w, http.StatusBadRequest, "invalid application id")
		return
	}
	var req api.SetStatusRequest
	if !decode(w, r, &req) {
		return
	}
	if !models.ValidStatus(req.Status) {
		fail(w, http.StatusUnprocessableEntity, "status must be pending, approved or rejected")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.apps {
		if int64(s.apps[i].ID) != id {
			continue
		}
		s.apps[i].Status = req.Status

		// the applicant's role tracks the application status
		role := models.RoleUser
		if req.Status == models.StatusApproved {
			role = models.RoleVendor
		}
		for j := range s.accounts {
			if s.accounts[j].ID == s.apps[i].UserID && s.accounts[j].Role != models.RoleAdmin {
				s.accounts[j].Role = role
			}
		}
		writeJSON(w, http.StatusOK, s.apps[i])
		return
	}
	fail(w, http.StatusNotFound, "application not found")
}

// ─── Products ─────────────────────────────────────────────────────────────────

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.products
	if out == nil {
		out = []api.Product{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		fail(w, http.StatusBadRequest, "invalid product id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	fail(w, http.StatusNotFound, "product not found")
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	var p api.Product
	if !decode(w, r, &p) {
		return
	}
	if p.Name == "" {
		fail(w, http.StatusUnprocessableEntity, "product name is required")
		return
	}
	if p.Price < 0 {
		p.Price = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.newID()
	}
	p.VendorUserID = claims.UserID
	s.products = append(s.products, p)
	writeJSON(w, http.StatusCreated, p)
}

// SeedProducts installs catalog entries directly, for tests and demos.
func (s *Server) SeedProducts(products ...api.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, products...)
}

// ─── Orders ───────────────────────────────────────────────────────────────────

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req api.CreateOrderRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == 0 {
		fail(w, http.StatusUnprocessableEntity, "user id is required")
		return
	}
	if len(req.Items) == 0 {
		fail(w, http.StatusUnprocessableEntity, "order has no items")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	order := api.Order{
		ID:    api.FlexInt64(s.newID()),
		Items: req.Items,
		Total: api.FlexFloat64(req.Total),
	}
	s.orders[req.UserID] = append([]api.Order{order}, s.orders[req.UserID]...)
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.orders[claims.UserID]
	if out == nil {
		out = []api.Order{}
	}
	writeJSON(w, http.StatusOK, out)
}
