package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/es"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/seed"
	"github.com/Skotchmaster/storefront/pkg/db"
)

type stores struct {
	db *gorm.DB

	users      repo.Repository[models.User]
	tasks      repo.Repository[models.Task]
	categories repo.Repository[models.Category]
	products   repo.Repository[models.Product]
	orders     repo.Repository[models.Order]
	posts      repo.Repository[models.Post]
}

func (s *stores) seedStores() seed.Stores {
	return seed.Stores{
		Users:      s.users,
		Categories: s.categories,
		Products:   s.products,
		Orders:     s.orders,
		Posts:      s.posts,
	}
}

func (s *stores) close(log *slog.Logger) {
	if s.db == nil {
		return
	}
	if err := db.Close(s.db); err != nil {
		log.Error("db_close_error", "error", err)
	}
}

// openStores uses gorm when DATABASE_URL is set and memory otherwise.
func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	if cfg.Database.URL == "" {
		return &stores{
			users:      repo.NewMemory[models.User](),
			tasks:      repo.NewMemory[models.Task](),
			categories: repo.NewMemory[models.Category](),
			products:   repo.NewMemory[models.Product](),
			orders:     repo.NewMemory[models.Order](),
			posts:      repo.NewMemory[models.Post](),
		}, nil
	}

	gdb, err := db.Open(ctx, cfg.Database.URL, cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	users := repo.NewGorm[models.User](gdb)
	tasks := repo.NewGorm[models.Task](gdb)
	categories := repo.NewGorm[models.Category](gdb)
	products := repo.NewGorm[models.Product](gdb)
	orders := repo.NewGorm[models.Order](gdb)
	posts := repo.NewGorm[models.Post](gdb)

	for _, m := range []interface{ Migrate(context.Context) error }{users, tasks, categories, products, orders, posts} {
		if err := m.Migrate(ctx); err != nil {
			_ = db.Close(gdb)
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &stores{
		db:         gdb,
		users:      users,
		tasks:      tasks,
		categories: categories,
		products:   products,
		orders:     orders,
		posts:      posts,
	}, nil
}

type revocations struct {
	set   auth.RevocationSet
	close func(log *slog.Logger)
}

func openRevocations(ctx context.Context, cfg config.Config, st *stores) (*revocations, error) {
	switch cfg.Auth.RevocationBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return &revocations{
			set: auth.NewRedisRevocations(client),
			close: func(log *slog.Logger) {
				if err := client.Close(); err != nil {
					log.Error("redis_close_error", "error", err)
				}
			},
		}, nil

	case "db":
		if st.db == nil {
			return nil, fmt.Errorf("REVOCATION_BACKEND=db requires DATABASE_URL")
		}
		g := auth.NewGormRevocations(st.db)
		if err := g.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate revoked tokens: %w", err)
		}
		return &revocations{set: g, close: func(*slog.Logger) {}}, nil

	default:
		m := auth.NewMemoryRevocations()
		jctx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			m.Run(jctx, cfg.Auth.RevocationSweep)
		}()
		return &revocations{
			set: m,
			close: func(*slog.Logger) {
				cancel()
				<-done
			},
		}, nil
	}
}

func openEvents(cfg config.Config, log *slog.Logger) (mykafka.Publisher, error) {
	brokers := cfg.KafkaBrokers()
	if len(brokers) == 0 {
		log.Info("kafka disabled, events are dropped")
		return mykafka.Noop{}, nil
	}
	p, err := mykafka.NewProducer(brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, err
	}
	log.Info("kafka producer ready", "brokers", brokers, "topic", cfg.Kafka.Topic)
	return p, nil
}

// openSearch returns nil when no cluster is configured or reachable; product
// search then falls back to scanning the store.
func openSearch(ctx context.Context, cfg config.Config, log *slog.Logger) *es.ProductIndex {
	if cfg.Search.URL == "" {
		return nil
	}
	client, err := es.NewClient(ctx, cfg.Search, log)
	if err != nil {
		log.Warn("elasticsearch unavailable, using store scan", "error", err)
		return nil
	}
	return es.NewProductIndex(client, cfg.Search.Index)
}
