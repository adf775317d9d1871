package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/meridiancap/cms-apiserver/config"
	"github.com/meridiancap/cms-apiserver/internal/db"
	"github.com/meridiancap/cms-apiserver/internal/handlers"
	"github.com/meridiancap/cms-apiserver/internal/logger"
	"github.com/meridiancap/cms-apiserver/internal/mq"
	"github.com/meridiancap/cms-apiserver/internal/services"
	"github.com/meridiancap/cms-apiserver/internal/storage"
	"github.com/meridiancap/cms-apiserver/internal/store"
	"github.com/meridiancap/cms-apiserver/types"
)

// resourceRoute binds one schema to its public path and its admin
// manager path. An empty public path means the entity has no public
// read endpoint.
type resourceRoute struct {
	public  string
	manager string
	schema  types.Schema
}

// resourceRoutes is the fixed, enumerable dispatch table for every
// schema-driven entity.
var resourceRoutes = []resourceRoute{
	{public: "/projects", manager: "/projects-manager", schema: types.ProjectSchema},
	{public: "/services", manager: "/services-manager", schema: types.ServiceSchema},
	{public: "/reports", manager: "/reports-manager", schema: types.ReportSchema},
	{public: "/faqs", manager: "/faqs-manager", schema: types.FAQSchema},
	{public: "/about", manager: "/about-manager", schema: types.AboutItemSchema},
	{public: "/process", manager: "/process-manager", schema: types.ProcessItemSchema},
	{public: "", manager: "/contact-manager", schema: types.ContactSchema},
	{public: "/media", manager: "/media-manager", schema: types.MediaSchema},
}

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
	log        *logger.Logger
}

// New constructs a Server with all repositories, services, and routes
// wired.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	log := logger.New("server")

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mediaStorage, err := newStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	broker, err := newBroker(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	adminRepo := store.NewAdminRepository(dbConn)
	sessionRepo := store.NewSessionRepository(dbConn)
	settingRepo := store.NewSettingRepository(dbConn)
	contentRepo := store.NewContentRepository(dbConn)

	authService := services.NewAuthService(adminRepo, sessionRepo, log, cfg.Session.TTL)
	settingsService := services.NewSettingsService(settingRepo)
	contentService := services.NewContentService(contentRepo)

	// One sweep at startup bounds the expired-session backlog; expiry
	// itself is still enforced lazily at validation time.
	if swept, err := authService.CleanupExpired(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to sweep expired sessions")
	} else if swept > 0 {
		log.Info().Int64("sessions", swept).Msg("swept expired sessions")
	}

	contactRepo := store.NewResourceRepository(dbConn, types.ContactSchema)
	mediaRepo := store.NewResourceRepository(dbConn, types.MediaSchema)

	contactService := services.NewContactService(contactRepo, broker, cfg.MQ.ContactQueue, log)
	mediaService := services.NewMediaService(mediaStorage, mediaRepo, cfg.Storage.PublicBaseURL)

	authHandler := handlers.NewAuthHandler(authService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	contentHandler := handlers.NewContentHandler(contentService)
	contactHandler := handlers.NewContactHandler(contactService)
	uploadHandler := handlers.NewUploadHandler(mediaService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		handlers.RequestLogger(log),
		handlers.CORS(cfg.CORS.AllowedOrigins),
		middleware.Timeout(60*time.Second),
	)
	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.MethodNotAllowed)

	router.Get("/healthz", handlers.Healthz)

	router.Route("/api", func(r chi.Router) {
		for _, route := range resourceRoutes {
			if route.public == "" {
				continue
			}
			repo := store.NewResourceRepository(dbConn, route.schema)
			handler := handlers.NewResourceHandler(services.NewResourceService(repo))
			r.Get(route.public, handler.Public)
		}

		r.Post("/contact", contactHandler.Submit)

		r.Route("/public", func(r chi.Router) {
			r.Get("/settings", settingsHandler.PublicMap)
			r.Get("/content", contentHandler.PublicPage)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(authHandler.RequireSession)
				r.Get("/check-auth", authHandler.CheckAuth)
				r.Post("/logout", authHandler.Logout)
				r.Post("/upload", uploadHandler.Upload)
				r.HandleFunc("/settings-manager", settingsHandler.Manage)
				r.HandleFunc("/content-manager", contentHandler.Manage)

				for _, route := range resourceRoutes {
					repo := store.NewResourceRepository(dbConn, route.schema)
					handler := handlers.NewResourceHandler(services.NewResourceService(repo))
					r.HandleFunc(route.manager, handler.Manage)
				}
			})
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
		log:        log,
	}, nil
}

// newStorage constructs the configured media storage backend, or nil
// when uploads are disabled.
func newStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Storage.Minio)
		if err != nil {
			return nil, err
		}
		st := storage.NewStorage(client)
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return st, nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.Storage.GCS)
		if err != nil {
			return nil, err
		}
		st := storage.NewStorage(client)
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newBroker constructs the configured notification broker, or nil when
// notifications are disabled.
func newBroker(ctx context.Context, cfg config.Config) (*mq.MQ, error) {
	switch cfg.MQ.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.MQ.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.MQ.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQ.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.broker != nil {
		_ = s.broker.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
