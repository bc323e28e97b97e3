package server

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/backoffice-auth/internal/auth"
	"github.com/yasinhessnawi1/backoffice-auth/internal/config"
	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
	"github.com/yasinhessnawi1/backoffice-auth/internal/handlers"
	"github.com/yasinhessnawi1/backoffice-auth/internal/middleware"
	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
)

// SetupRoutes configures the router.
//
// The configured routes include:
// - Health check, version and route listing (unprotected)
// - Customer auth: register, login, logout, forgot, reset, me
// - Admin auth: the same without register
//
// Logout only verifies the token signature so that repeating it succeeds;
// me requires the token to still be persisted.
func (s *Server) SetupRoutes() {
	r := chi.NewRouter()

	r.Use(corsMiddleware(&s.Config.CORS))
	r.Use(chimiddleware.RequestID)
	if s.Config.Logging.RequestLog {
		r.Use(middleware.RequestLogging())
	}
	r.Use(middleware.Recovery())
	if s.Config.RateLimit.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.SecurityHeaders())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.NotFound(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.MethodNotAllowed(w)
	})

	r.Get(constants.HealthPath, s.handleHealth)
	r.Get(constants.VersionPath, s.handleVersion)
	r.Get(constants.APIBasePath+"/routes", s.GetAPIRoutes)

	r.Route(constants.CustomerAuthBasePath, func(r chi.Router) {
		s.mountAuthRoutes(r, models.KindCustomer, s.Handlers.CustomerAuth, true)
	})

	r.Route(constants.AdminAuthBasePath, func(r chi.Router) {
		s.mountAuthRoutes(r, models.KindAdmin, s.Handlers.AdminAuth, false)
	})

	s.router = r
}

// mountAuthRoutes registers the auth endpoints of one account kind. Admins
// are created by the console, so their group has no register route.
func (s *Server) mountAuthRoutes(r chi.Router, kind models.AccountKind, h *handlers.AuthHandler, withRegister bool) {
	r.Use(chimiddleware.NoCache)

	// Credential endpoints share one bucket per client
	r.Group(func(r chi.Router) {
		if s.rateLimiter != nil {
			r.Use(middleware.RateLimit(s.rateLimiter, kind.String()+"_auth"))
		}

		if withRegister {
			r.Post(constants.AuthRegisterPath, h.Register)
		}
		r.Post(constants.AuthLoginPath, h.Login)
		r.Post(constants.AuthForgotPath, h.Forgot)
		r.Post(constants.AuthResetPath, h.Reset)
	})

	r.With(auth.RequireSignedToken(kind, s.authProviders.JWTService)).
		Post(constants.AuthLogoutPath, h.Logout)
	r.With(auth.RequireToken(kind, s.services.tokens)).
		Get(constants.AuthMePath, h.Me)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.Db.HealthCheck(r.Context()); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		utils.Error(w, http.StatusServiceUnavailable, constants.MsgServiceUnavailable, nil)
		return
	}

	utils.JSON(w, http.StatusOK, "Service is healthy", map[string]string{
		"status":  "healthy",
		"version": s.Config.App.Version,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, s.Config.App.Name, map[string]string{
		"version":     s.Config.App.Version,
		"environment": s.Config.App.Environment,
	})
}

// GetRouter returns the router, mainly for tests.
func (s *Server) GetRouter() chi.Router {
	return s.router
}

// GetAPIRoutes lists every registered method and path.
func (s *Server) GetAPIRoutes(w http.ResponseWriter, r *http.Request) {
	routes := make([]map[string]string, 0)

	err := chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, map[string]string{
			"method": method,
			"path":   strings.TrimSuffix(route, "/"),
		})
		return nil
	})
	if err != nil {
		utils.InternalServerError(w, err)
		return
	}

	sort.Slice(routes, func(i, j int) bool {
		if routes[i]["path"] == routes[j]["path"] {
			return routes[i]["method"] < routes[j]["method"]
		}
		return routes[i]["path"] < routes[j]["path"]
	})

	utils.JSON(w, http.StatusOK, "API routes", routes)
}

// corsMiddleware adds CORS headers for the configured origins and answers
// preflight requests. Requests from other origins pass through untouched.
func corsMiddleware(settings *config.CORSSettings) func(http.Handler) http.Handler {
	allowedOrigins := settings.AllowedOrigins

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin == "" || !originAllowed(allowedOrigins, origin) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			if settings.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "300")
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func originAllowed(allowedOrigins []string, origin string) bool {
	for _, allowedOrigin := range allowedOrigins {
		if allowedOrigin == "*" || strings.EqualFold(allowedOrigin, origin) {
			return true
		}
	}
	return false
}
