// Package web serves the server-rendered UI on top of the same services
// as the JSON API. Sign-in state lives in a cookie session rather than a
// bearer token.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/harborpoint/customerd/internal/domain"
	"github.com/harborpoint/customerd/internal/service"
	"github.com/harborpoint/customerd/pkg/httpx"
	"github.com/harborpoint/customerd/pkg/slogx"
)

type Handler struct {
	auth      *service.AuthService
	customers *service.CustomerService
	sessions  *sessions.CookieStore
	renderer  *renderer
	logger    *slog.Logger
}

func NewHandler(
	auth *service.AuthService,
	customers *service.CustomerService,
	sessionKey []byte,
	logger *slog.Logger,
) *Handler {
	cookieStore := sessions.NewCookieStore(sessionKey)
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Handler{
		auth:      auth,
		customers: customers,
		sessions:  cookieStore,
		renderer:  newRenderer(),
		logger:    logger,
	}
}

// Routes returns the UI route table. The caller mounts it alongside the
// JSON API.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/customers", http.StatusSeeOther)
	})

	// The form login gets the same throttle as the API login endpoint.
	loginLimit := httpx.RateLimitByIP(httpx.StrictLimit)

	mux.HandleFunc("GET /login", h.handleLoginPage)
	mux.Handle("POST /login", loginLimit(http.HandlerFunc(h.handleLogin)))
	mux.HandleFunc("POST /logout", h.handleLogout)

	mux.HandleFunc("GET /customers", h.requireUser(h.handleCustomerList))
	mux.HandleFunc("GET /customers/new", h.requireAdmin(h.handleCustomerNewPage))
	mux.HandleFunc("POST /customers/new", h.requireAdmin(h.handleCustomerCreate))
	mux.HandleFunc("GET /customers/{id}/edit", h.requireAdmin(h.handleCustomerEditPage))
	mux.HandleFunc("POST /customers/{id}/edit", h.requireAdmin(h.handleCustomerUpdate))
	mux.HandleFunc("POST /customers/{id}/delete", h.requireAdmin(h.handleCustomerDelete))

	return slogx.HTTPMiddleware(h.logger)(mux)
}

// requireUser redirects to the login page when no account is signed in.
func (h *Handler) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := h.session(r)
		username, _ := session.Values["username"].(string)
		if username == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// requireAdmin additionally checks the session role.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return h.requireUser(func(w http.ResponseWriter, r *http.Request) {
		session := h.session(r)
		if role, _ := session.Values["role"].(string); role != domain.RoleAdmin {
			h.addFlash(w, r, "error", "You need administrator rights for that.")
			http.Redirect(w, r, "/customers", http.StatusSeeOther)
			return
		}
		next(w, r)
	})
}

func (h *Handler) viewData(w http.ResponseWriter, r *http.Request) viewData {
	session := h.session(r)
	username, _ := session.Values["username"].(string)
	role, _ := session.Values["role"].(string)
	return viewData{
		Username: username,
		Role:     role,
		IsAdmin:  role == domain.RoleAdmin,
		Flashes:  h.takeFlashes(w, r),
	}
}

func (h *Handler) renderPage(w http.ResponseWriter, page string, data viewData) {
	if err := h.renderer.render(w, page, data); err != nil {
		h.logger.Error("failed to render page", "page", page, "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, "login.html", h.viewData(w, r))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	username := r.FormValue("username")
	password := r.FormValue("password")

	if _, err := h.auth.Login(ctx, username, password); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.addFlash(w, r, "error", "Invalid username or password.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		slogx.FromContext(ctx).Error("login failed", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	user, err := h.auth.GetUser(ctx, username)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to load user after login", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	session := h.session(r)
	session.Values["username"] = user.Username
	session.Values["role"] = user.Role
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/customers", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	session.Options.MaxAge = -1
	_ = session.Save(r, w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) handleCustomerList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := domain.CustomerFilter{
		Name:   r.URL.Query().Get("name"),
		Region: r.URL.Query().Get("region"),
	}

	customers, err := h.customers.Filter(ctx, filter)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list customers", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := h.viewData(w, r)
	data.Customers = customers
	data.Filter = filter
	h.renderPage(w, "customers.html", data)
}

func (h *Handler) handleCustomerNewPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, "customer_form.html", h.viewData(w, r))
}

func (h *Handler) handleCustomerCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customer, ok := h.customerFromForm(w, r)
	if !ok {
		return
	}

	if _, err := h.customers.Create(ctx, customer); err != nil {
		slogx.FromContext(ctx).Error("failed to create customer", "err", err)
		h.addFlash(w, r, "error", "Failed to create the customer.")
		http.Redirect(w, r, "/customers", http.StatusSeeOther)
		return
	}

	h.addFlash(w, r, "success", "Customer created.")
	http.Redirect(w, r, "/customers", http.StatusSeeOther)
}

func (h *Handler) handleCustomerEditPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customer, err := h.customers.GetByID(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			h.addFlash(w, r, "error", "Customer not found.")
			http.Redirect(w, r, "/customers", http.StatusSeeOther)
			return
		}
		slogx.FromContext(ctx).Error("failed to load customer", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := h.viewData(w, r)
	data.Customer = customer
	h.renderPage(w, "customer_form.html", data)
}

func (h *Handler) handleCustomerUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customer, ok := h.customerFromForm(w, r)
	if !ok {
		return
	}
	customer.ID = r.PathValue("id")

	if _, err := h.customers.Update(ctx, customer); err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			h.addFlash(w, r, "error", "Customer not found.")
		} else {
			slogx.FromContext(ctx).Error("failed to update customer", "err", err)
			h.addFlash(w, r, "error", "Failed to update the customer.")
		}
		http.Redirect(w, r, "/customers", http.StatusSeeOther)
		return
	}

	h.addFlash(w, r, "success", "Customer updated.")
	http.Redirect(w, r, "/customers", http.StatusSeeOther)
}

func (h *Handler) handleCustomerDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.customers.Delete(ctx, r.PathValue("id")); err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			h.addFlash(w, r, "error", "Customer not found.")
		} else {
			slogx.FromContext(ctx).Error("failed to delete customer", "err", err)
			h.addFlash(w, r, "error", "Failed to delete the customer.")
		}
		http.Redirect(w, r, "/customers", http.StatusSeeOther)
		return
	}

	h.addFlash(w, r, "success", "Customer deleted.")
	http.Redirect(w, r, "/customers", http.StatusSeeOther)
}

// customerFromForm parses and validates the shared create/edit form.
// On validation failure it has already redirected with a flash message.
func (h *Handler) customerFromForm(w http.ResponseWriter, r *http.Request) (domain.Customer, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return domain.Customer{}, false
	}

	customer := domain.Customer{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Email:     r.FormValue("email"),
		Region:    r.FormValue("region"),
	}

	if customer.FirstName == "" || customer.LastName == "" || customer.Email == "" {
		h.addFlash(w, r, "error", "First name, last name, and email are required.")
		http.Redirect(w, r, "/customers", http.StatusSeeOther)
		return domain.Customer{}, false
	}

	registered, err := time.Parse("2006-01-02", r.FormValue("registration_date"))
	if err != nil {
		h.addFlash(w, r, "error", "Registration date must be a valid date.")
		http.Redirect(w, r, "/customers", http.StatusSeeOther)
		return domain.Customer{}, false
	}
	customer.RegistrationDate = registered.UTC()

	return customer, true
}
