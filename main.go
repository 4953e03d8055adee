package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"omtours/config"
	"omtours/dashboard"
	"omtours/database"
	"omtours/handlers"
	"omtours/middleware"
	"omtours/services"
	"omtours/utils"
	"omtours/views"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.Load,
			utils.NewLogger,
			ProvideFormatter,
			ProvideSessionStore,
			ProvideArchive,
			ProvideItineraryClient,
			ProvideDirectionsClient,
			ProvideHandler,
			ProvideRouter,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func ProvideFormatter(cfg *config.Config, logger *zap.Logger) *views.Formatter {
	f := views.NewFormatter(cfg.DisplayLocale)
	if f.Locale() != cfg.DisplayLocale {
		logger.Warn("display locale normalised", zap.String("configured", cfg.DisplayLocale), zap.String("using", f.Locale()))
	}
	return f
}

func ProvideItineraryClient(cfg *config.Config, logger *zap.Logger) dashboard.Generator {
	return services.NewItineraryClient(cfg.ItineraryAPIURL, cfg.ItineraryTimeout, logger)
}

func ProvideDirectionsClient(cfg *config.Config, logger *zap.Logger) handlers.RouteFinder {
	if cfg.GoogleMapsAPIKey == "" {
		logger.Warn("GOOGLE_MAPS_API_KEY not set, route viewer will show an empty map")
	}
	return services.NewDirectionsClient(cfg.GoogleMapsAPIKey, logger)
}

// ProvideSessionStore keeps dashboard sessions in memory unless SESSION_STORE=redis.
func ProvideSessionStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (dashboard.Store, error) {
	switch strings.ToLower(cfg.SessionStore) {
	case "", "memory":
		logger.Info("using in-memory session store")
		return dashboard.NewMemoryStore(cfg.SessionTTL), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisSessionDB,
		})
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := client.Ping(ctx).Err(); err != nil {
					return fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
				}
				logger.Info("using redis session store", zap.String("addr", cfg.RedisAddr))
				return nil
			},
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		return dashboard.NewRedisStore(client, cfg.SessionTTL), nil
	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}
}

// ProvideArchive connects the itinerary archive when a database is configured. Without one the
// archive is nil and the archive endpoints answer 503.
func ProvideArchive(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (handlers.Archive, error) {
	if !cfg.ArchiveEnabled() {
		logger.Info("no database configured, itinerary archive disabled")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	archive, err := database.Open(ctx, cfg.DSN(), logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return archive.Close()
		},
	})
	return archive, nil
}

func ProvideHandler(
	cfg *config.Config,
	generator dashboard.Generator,
	routes handlers.RouteFinder,
	archive handlers.Archive,
	sessions dashboard.Store,
	formatter *views.Formatter,
	logger *zap.Logger,
) *handlers.Handler {
	return handlers.NewHandler(generator, routes, archive, sessions, formatter, handlers.Options{
		BrowserKey:   cfg.GoogleMapsBrowserKey,
		SignOutURL:   cfg.AuthSignOutURL,
		CookieSecure: cfg.CookieSecure,
		SessionTTL:   cfg.SessionTTL,
	}, logger)
}

func ProvideRouter(cfg *config.Config, h *handlers.Handler, logger *zap.Logger) (*gin.Engine, error) {
	switch {
	case cfg.GinMode != "":
		gin.SetMode(cfg.GinMode)
	case cfg.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	// Trusted proxies, so ClientIP (and with it the rate limiter) cannot be spoofed
	if err := r.SetTrustedProxies(cfg.TrustedProxyList()); err != nil {
		return nil, err
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader, "X-Itinerary-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	tmpl, err := views.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	limiter := middleware.NewRateLimiter(cfg.MaxRequestsPerMin, logger)
	h.Register(r, limiter)
	return r, nil
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("Om Tours dashboard starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("Failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server")
			err := srv.Shutdown(ctx)
			_ = logger.Sync()
			return err
		},
	})
}
