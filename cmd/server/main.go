package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/middleware"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/seed"
	"github.com/Skotchmaster/storefront/internal/service"
	httpserver "github.com/Skotchmaster/storefront/internal/transport/http"
	"github.com/Skotchmaster/storefront/internal/validation"
	"github.com/Skotchmaster/storefront/pkg/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.Env).With("service", cfg.ServiceName)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, log)

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close(log)

	if cfg.SeedData {
		if err := seed.Load(ctx, st.seedStores()); err != nil {
			return err
		}
	}

	rev, err := openRevocations(ctx, cfg, st)
	if err != nil {
		return err
	}
	defer rev.close(log)

	events, err := openEvents(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := events.Close(); err != nil {
			log.Error("kafka_close_error", "error", err)
		}
	}()

	index := openSearch(ctx, cfg, log)

	codec := auth.NewCodec([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	m := metrics.New()

	users := &service.UserService{Repo: st.users, Events: events}
	stock := &sync.Mutex{}
	orders := &service.OrderService{Orders: st.orders, Products: st.products, Events: events, Stock: stock}
	catalog := &service.CatalogService{
		Products:   st.products,
		Categories: st.categories,
		Orders:     st.orders,
		Events:     events,
		Stock:      stock,
	}
	if index != nil {
		catalog.Index = index
		n, err := catalog.Reindex(ctx)
		if err != nil {
			log.Warn("product_reindex_failed", "indexed", n, "error", err)
		} else {
			log.Info("products_indexed", "count", n)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpserver.ErrorHandler(cfg.IsProduction())
	e.Validator = validation.Echo{}

	e.Pre(ecM.RemoveTrailingSlash())
	e.Use(ecM.RequestID(), m.Middleware(), loggingmw.RequestLogger(log))
	e.Use(middleware.Common(middleware.CommonConfig{
		CORSOrigins:  cfg.CORSOrigins(),
		RateLimitRPS: cfg.HTTP.RateLimitRPS,
		BodyLimit:    cfg.HTTP.BodyLimit,
	})...)

	httpserver.Register(e, &httpserver.Deps{
		Gate: &authmw.Gate{
			Codec:       codec,
			Revocations: rev.set,
			Strict:      cfg.Auth.StrictBearer,
		},
		Metrics: m,
		Ready: func(ctx context.Context) error {
			if st.db == nil {
				return nil
			}
			return db.Ping(ctx, st.db)
		},
		Auth: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Credentials: &auth.Credentials{Accounts: users},
			Codec:       codec,
			Revocations: rev.set,
			Users:       users,
			Events:      events,
		}},
		Access:  &httpserver.AccessHTTP{Users: users},
		Tasks:   &httpserver.TaskHTTP{Svc: &service.TaskService{Repo: st.tasks}},
		Catalog: &httpserver.CatalogHTTP{Svc: catalog},
		Orders:  &httpserver.OrderHTTP{Svc: orders},
		Users:   &httpserver.UserHTTP{Svc: users, Orders: orders},
		Posts:   &httpserver.PostHTTP{Svc: &service.PostService{Repo: st.posts, Categories: seed.PostCategories()}},
		Admin: &httpserver.AdminHTTP{
			Svc: &service.AdminService{
				Users:      st.users,
				Products:   st.products,
				Categories: st.categories,
				Orders:     st.orders,
				Traffic:    m,
			},
			Orders: orders,
		},
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_started", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server_shutdown_error", "error", err)
	}
	log.Info("shutdown_complete")
	return nil
}
