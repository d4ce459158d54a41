package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/danielokoye-py/Notestack/internal/api/handlers"
	appMiddleware "github.com/danielokoye-py/Notestack/internal/api/middlewares"
	"github.com/danielokoye-py/Notestack/internal/config"
	"github.com/danielokoye-py/Notestack/internal/core"
	ingestor "github.com/danielokoye-py/Notestack/internal/core/ingestion_engine"
	"github.com/danielokoye-py/Notestack/internal/metrics"
	"github.com/danielokoye-py/Notestack/internal/retrieval"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, obj core.ObjectClient, pipeline *ingestor.Pipeline, selector *retrieval.Selector, llm core.LLMProvider, log *zap.Logger) *Server {
	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret, log)
	notebookHandler := handlers.NewNotebookHandler(db, log)
	docHandler := handlers.NewDocumentHandler(db, obj, pipeline, cfg, log)
	chatHandler := handlers.NewChatHandler(db, selector, llm, cfg.IsDev(), log)
	quizHandler := handlers.NewQuizHandler(db, selector, llm, cfg.IsDev(), log)
	youtubeHandler := handlers.NewYouTubeHandler(llm, cfg.IsDev(), log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(metrics.Instrument)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWT(cfg.JWTSecret))

			protected.Post("/notebooks", notebookHandler.Create)
			protected.Get("/notebooks", notebookHandler.List)
			protected.Get("/notebooks/{id}", notebookHandler.Get)
			protected.Delete("/notebooks/{id}", notebookHandler.Delete)
			protected.Get("/notebooks/{id}/documents", notebookHandler.Documents)

			protected.Post("/upload", docHandler.Upload)
			protected.Get("/documents/{id}/status", docHandler.Status)
			protected.Get("/documents/{id}/pdf", docHandler.ServePDF)
			protected.Delete("/documents/{id}", docHandler.Delete)

			protected.Post("/youtube", youtubeHandler.Recommend)

			protected.Post("/chat", chatHandler.Query)
			protected.Get("/chat/history", chatHandler.History)

			protected.Post("/quiz/generate", quizHandler.Generate)
			protected.Post("/progress", quizHandler.SaveAttempt)
			protected.Get("/progress", quizHandler.ListAttempts)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, log: log}
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
