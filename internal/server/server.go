package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alumnet/apiserver/config"
	"github.com/alumnet/apiserver/internal/auth"
	"github.com/alumnet/apiserver/internal/cache"
	"github.com/alumnet/apiserver/internal/db"
	"github.com/alumnet/apiserver/internal/handlers"
	"github.com/alumnet/apiserver/internal/logging"
	"github.com/alumnet/apiserver/internal/mq"
	"github.com/alumnet/apiserver/internal/services"
	"github.com/alumnet/apiserver/internal/storage"
	"github.com/alumnet/apiserver/internal/store"
	"github.com/alumnet/apiserver/internal/store/memory"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	cache      cache.Cache
	queue      *mq.MQ
	logger     *zap.Logger
}

type repositories struct {
	users     services.UserRepository
	jobs      services.JobRepository
	events    services.EventRepository
	posts     services.PostRepository
	messages  services.MessageRepository
	donations services.DonationRepository
}

// New constructs a Server with its backends, middleware and routes.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{logger: logger}

	repos, err := s.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s.cache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			s.close()
			return nil, err
		}
		s.cache = redisCache
	}

	objects, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("open object storage: %w", err)
	}
	s.queue, err = mq.Open(ctx, cfg.MQ)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("open message queue: %w", err)
	}

	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// A typed nil must not reach the services, they test for a nil interface.
	var objectStore services.ObjectStore
	if objects != nil {
		objectStore = objects
	} else {
		logger.Info("object storage disabled, avatar uploads unavailable")
	}
	var publisher services.Publisher
	if s.queue != nil {
		publisher = s.queue
	} else {
		logger.Info("message queue disabled, email campaigns unavailable")
	}

	userService := services.NewUserService(repos.users, tokens, s.cache, cfg.Redis.TTL, logger)
	jobService := services.NewJobService(repos.jobs)
	eventService := services.NewEventService(repos.events)
	newsService := services.NewNewsService(repos.posts)
	messageService := services.NewMessageService(repos.messages, repos.users)
	donationService := services.NewDonationService(repos.donations)
	campaignService := services.NewCampaignService(repos.users, publisher, s.cache, cfg.Redis.TTL, logger)
	avatarService := services.NewAvatarService(repos.users, objectStore, logger)
	exportService := services.NewExportService(repos.users, repos.events, logger)

	authMiddleware := handlers.RequireAuth(tokens, userService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		logging.RequestLogger(logger),
		middleware.Timeout(cfg.Server.RequestTimeout),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			handlers.UserRouter(r, userService, avatarService, exportService, authMiddleware, logger)
		})
		r.Route("/jobs", func(r chi.Router) {
			handlers.JobRouter(r, jobService, authMiddleware, logger)
		})
		r.Route("/events", func(r chi.Router) {
			handlers.EventRouter(r, eventService, exportService, authMiddleware, logger)
		})
		r.Route("/news", func(r chi.Router) {
			handlers.NewsRouter(r, newsService, authMiddleware, logger)
		})
		r.Route("/messages", func(r chi.Router) {
			handlers.MessageRouter(r, messageService, authMiddleware, logger)
		})
		r.Route("/campaigns", func(r chi.Router) {
			handlers.CampaignRouter(r, campaignService, authMiddleware, logger)
		})
		r.Route("/donations", func(r chi.Router) {
			handlers.DonationRouter(r, donationService, authMiddleware, logger)
		})
	})

	s.router = router
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) openStore(ctx context.Context, cfg config.Config) (repositories, error) {
	if cfg.Server.Store == config.StoreMemory {
		s.logger.Warn("using in-memory store, data is lost on restart")
		mem := memory.New()
		return repositories{
			users:     memory.NewUserRepository(mem),
			jobs:      memory.NewJobRepository(mem),
			events:    memory.NewEventRepository(mem),
			posts:     memory.NewPostRepository(mem),
			messages:  memory.NewMessageRepository(mem),
			donations: memory.NewDonationRepository(mem),
		}, nil
	}

	if cfg.Server.AutoMigrate {
		if err := db.MigrateUp(ctx, cfg.Database, s.logger); err != nil {
			return repositories{}, err
		}
	}
	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return repositories{}, err
	}
	s.db = conn
	return repositories{
		users:     store.NewUserRepository(conn),
		jobs:      store.NewJobRepository(conn),
		events:    store.NewEventRepository(conn),
		posts:     store.NewPostRepository(conn),
		messages:  store.NewMessageRepository(conn),
		donations: store.NewDonationRepository(conn),
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases every backend.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.close()
	return err
}

func (s *Server) close() {
	if s.queue != nil {
		if err := s.queue.Close(); err != nil {
			s.logger.Warn("close message queue", zap.Error(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn("close cache", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Warn("close database", zap.Error(err))
		}
	}
}
