package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/celulas/celulas-api/internal/config"
	"github.com/celulas/celulas-api/internal/domain/admin"
	"github.com/celulas/celulas-api/internal/domain/convite"
	"github.com/celulas/celulas-api/internal/domain/credit"
	"github.com/celulas/celulas-api/internal/domain/featureflag"
	"github.com/celulas/celulas-api/internal/domain/igreja"
	"github.com/celulas/celulas-api/internal/domain/leitura"
	"github.com/celulas/celulas-api/internal/domain/notification"
	"github.com/celulas/celulas-api/internal/domain/trilha"
	"github.com/celulas/celulas-api/internal/domain/user"
	"github.com/celulas/celulas-api/internal/middleware"
	"github.com/celulas/celulas-api/internal/pkg/email"
	"github.com/celulas/celulas-api/internal/pkg/jwt"
	pkgresponse "github.com/celulas/celulas-api/internal/pkg/response"
)

type appDeps struct {
	Config   *config.Config
	DB       *sqlx.DB
	Redis    *redis.Client
	JWT      *jwt.Service
	Mirror   credit.MetadataClient
	Registry *prometheus.Registry
}

type app struct {
	router  http.Handler
	hub     *notification.Hub
	trilhas *trilha.Service
	mail    *email.Service
}

func newApp(d appDeps) *app {
	cfg := d.Config

	// ---------- Repositories ----------
	userRepo := user.NewRepository(d.DB)
	flagRepo := featureflag.NewRepository(d.DB)
	creditRepo := credit.NewRepository(d.DB)
	notificationRepo := notification.NewRepository(d.DB)

	// ---------- Services ----------
	hub := notification.NewHub(d.Redis, d.Registry)
	resolver := user.NewResolver(userRepo)
	flagService := featureflag.NewService(flagRepo)
	creditService := credit.NewService(creditRepo, d.Mirror)
	notificationService := notification.NewService(notificationRepo, hub)
	trilhaService := trilha.NewService(trilha.NewRepository(d.DB), userRepo, trilha.NewNotifier(notificationService))
	conviteService := convite.NewService(convite.NewRepository(d.DB))
	var mail *email.Service
	if cfg.SendGridAPIKey != "" {
		mail = email.NewService(email.NewSendGridClient(email.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}))
		conviteService.SetMailer(mail, cfg.PublicAppURL)
	}

	// ---------- Handlers ----------
	flagHandler := featureflag.NewHandler(flagService)
	creditHandler := credit.NewHandler(creditService, userRepo)
	notificationHandler := notification.NewHandler(notificationService, hub, cfg.AllowedOrigins)
	trilhaHandler := trilha.NewHandler(trilhaService)
	conviteHandler := convite.NewHandler(conviteService)
	leituraHandler := leitura.NewHandler(leitura.NewService(leitura.NewRepository(d.DB)))
	igrejaHandler := igreja.NewHandler(igreja.NewService(igreja.NewRepository(d.DB)))
	adminHandler := admin.NewHandler(admin.NewService(admin.NewRepository(d.DB), userRepo))

	authenticated := chi.Chain(middleware.Auth(d.JWT), middleware.ResolveUser(resolver))
	gate := middleware.RequireDomainMutations(flagService)
	limiter := middleware.NewRateLimiter(d.Redis, middleware.RateLimitConfig{
		Limit:   middleware.PerMinute(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
		KeyFunc: middleware.KeyByIP,
	})

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	if cfg.MetricsEnabled {
		r.Use(middleware.NewMetrics(d.Registry).Handler)
	}
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.With(middleware.Label("health")).Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{"status": "ok"})
	})
	if cfg.MetricsEnabled {
		r.With(middleware.Label("metrics")).Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	// WebSocket endpoint (no compression, token may come as ?token=)
	r.With(middleware.Label("notifications.ws"), authenticated.Handler).
		Get("/ws/notifications", notificationHandler.WebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.Handler)
		r.Use(chimw.Compress(5))

		// Public
		conviteHandler.PublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(authenticated.Handler)

			r.Mount("/credits", creditHandler.Routes(gate))
			r.Mount("/notifications", notificationHandler.Routes())
			r.Mount("/trilhas", trilhaHandler.Routes(gate))
			r.Mount("/leitura", leituraHandler.Routes(gate))
			r.Mount("/convites", conviteHandler.Routes(gate))
			r.Mount("/igrejas", igrejaHandler.Routes(gate))

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin())
				flagHandler.RegisterAdminRoutes(r)
				creditHandler.RegisterAdminRoutes(r)
				adminHandler.RegisterAdminRoutes(r)
			})
		})
	})

	return &app{router: r, hub: hub, trilhas: trilhaService, mail: mail}
}

// shutdown drains in-flight notice fan-outs and queued mail, then closes realtime connections
func (a *app) shutdown() {
	a.trilhas.Wait()
	if a.mail != nil {
		a.mail.Close()
	}
	a.hub.Shutdown()
}
