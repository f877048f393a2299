// Package gateway es el BFF: reenvía /api/v2/gateway/* a los servicios
// según una tabla de rutas, aplica roles y agrega algunas vistas.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	_ "petclinic/internal/gateway/docs"
	"petclinic/internal/middleware"
	"petclinic/internal/platform/httpclient"
	"petclinic/internal/platform/jobs"
	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/respond"
	"petclinic/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	BasePath = "/api/v2/gateway"

	RateLimitCleanupJob = "gateway.ratelimit_cleanup"
)

type Config struct {
	// Services mapea nombre de servicio => base URL. Sin URL el servicio responde 503.
	Services map[string]string
	Timeout  time.Duration
	// Verifier nil => modo dev (headers X-Debug-*).
	Verifier       auth.AuthVerifier
	RateLimitRPS   int
	RateLimitBurst int
	Routes         []Route // vacío => DefaultRoutes()
}

type Gateway struct {
	clients  map[string]*httpclient.Client
	routes   []Route
	verifier auth.AuthVerifier
	limiter  *middleware.RateLimiter
	log      logger.Logger
}

func New(cfg Config, log logger.Logger) (*Gateway, error) {
	if log == nil {
		log = logger.Nop()
	}
	g := &Gateway{
		clients:  map[string]*httpclient.Client{},
		routes:   cfg.Routes,
		verifier: cfg.Verifier,
		log:      log.With(map[string]any{"component": "gateway"}),
	}
	if len(g.routes) == 0 {
		g.routes = DefaultRoutes()
	}
	if cfg.RateLimitRPS > 0 {
		g.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	for name, base := range cfg.Services {
		if strings.TrimSpace(base) == "" {
			continue
		}
		c, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("gateway: %s: %w", name, err)
		}
		g.clients[name] = c
	}
	return g, nil
}

// Routes devuelve la tabla efectiva.
func (g *Gateway) Routes() []Route { return g.routes }

// RegisterRoutes monta /api/v2/gateway y /swagger/* sobre r.
func (g *Gateway) RegisterRoutes(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route(BasePath, func(api chi.Router) {
		api.Use(middleware.AuthContext(g.verifier))
		if g.limiter != nil {
			api.Use(g.limiter.Middleware)
		}

		api.Post("/users/register", g.registerHandler)
		api.With(middleware.RequireRoles(owners...), requireSelf("ownerId")).
			Get("/owners/{ownerId}/overview", g.ownerOverviewHandler)
		api.With(middleware.RequireRoles(anyUser...)).
			Get("/vets/{vetId}/overview", g.vetOverviewHandler)

		for _, rt := range g.routes {
			api.With(guards(rt)...).Method(rt.Method, rt.Path, g.forward(rt))
		}
	})
}

func guards(rt Route) []func(http.Handler) http.Handler {
	if rt.Public {
		return nil
	}
	out := []func(http.Handler) http.Handler{middleware.RequireRoles(rt.Roles...)}
	if rt.UserParam != "" {
		out = append(out, requireSelf(rt.UserParam))
	}
	return out
}

// requireSelf corta con 403 si el path param no es el usuario del token (ADMIN pasa siempre).
// Va después de RequireRoles, así que los claims ya existen.
func requireSelf(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, _ := middleware.GetClaims(r.Context())
			if !c.IsAdmin() && chi.URLParam(r, param) != c.UserID {
				respond.Error(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterJobs agenda la limpieza de buckets del rate limiter.
func RegisterJobs(s *jobs.Scheduler, g *Gateway, spec string) error {
	if g.limiter == nil {
		return nil
	}
	return s.Add(RateLimitCleanupJob, spec, func(ctx context.Context) error {
		if n := g.limiter.Cleanup(); n > 0 {
			g.log.Debug("rate limit buckets removed", map[string]any{"count": n})
		}
		return nil
	})
}
