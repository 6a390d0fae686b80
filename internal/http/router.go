package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/harborpoint/customerd/internal/domain"
	"github.com/harborpoint/customerd/internal/service"
	"github.com/harborpoint/customerd/internal/store"
	"github.com/harborpoint/customerd/pkg/httpx"
	"github.com/harborpoint/customerd/pkg/jwtx"
	"github.com/harborpoint/customerd/pkg/slogx"

	_ "github.com/harborpoint/customerd/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for the JSON API handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store           store.Store
	AuthService     *service.AuthService
	CustomerService *service.CustomerService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerCustomers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Customer Management Service API
//	@version		0.1.0
//	@description	Customer records with username/password accounts and JWT bearer tokens.
//	@description
//	@description				Tokens are signed using HS256 and expire seven days after issue.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	loginHandler := &LoginHandler{AuthService: r.AuthService}
	registerHandler := &RegisterHandler{AuthService: r.AuthService}

	// POST /login - strict rate limit by IP (authentication attempts)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /register - strict rate limit by IP (public signup endpoint)
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerCustomers() {
	h := &CustomersHandler{CustomerService: r.CustomerService}

	// Read endpoints - any authenticated user, lenient rate limit
	secureRead := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	// Write endpoints - admin role required, moderate rate limit
	secureWrite := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /api/customers", secureRead(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /api/customers/filter", secureRead(http.HandlerFunc(h.HandleFilter)))
	r.Mux.Handle("GET /api/customers/{id}", secureRead(http.HandlerFunc(h.HandleGet)))

	r.Mux.Handle("POST /api/customers", secureWrite(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("PUT /api/customers/{id}", secureWrite(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /api/customers/{id}", secureWrite(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
