package mockapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pharmadash/pharmadash/pkg/config"
	"github.com/pharmadash/pharmadash/pkg/logger"
)

// Server is a self-contained inventory API for local development and demos.
// It serves the same wire contract as the production server from in-memory
// fixtures, so every dashboard command works offline.
type Server struct {
	cfg      *config.MockConfig
	store    *Store
	logger   *logger.Logger
	validate *validator.Validate
}

// NewServer creates a mock server with seeded fixtures.
func NewServer(cfg *config.MockConfig, log *logger.Logger) *Server {
	return &Server{
		cfg:      cfg,
		store:    NewStore(),
		logger:   log.WithComponent("mockapi"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Router builds the HTTP routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/auth/me", s.handleMe)

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/medicines", s.handleMedicines)
				r.Get("/medicines/{id}", s.handleMedicine)
				r.Get("/medicines/{id}/batches", s.handleBatches)
				r.Get("/stock-levels", s.handleStockLevels)
				r.Get("/categories", s.handleCategories)
				r.Get("/price-comparison", s.handlePriceComparison)
				r.Get("/analysis-report", s.handleAnalysisReport)
				r.Post("/upload", s.handleUpload)
				r.Post("/transactions", s.handleCreateTransaction)
			})

			r.Route("/forecasting", func(r chi.Router) {
				r.Get("/medicine/{id}", s.handleForecast)
				r.Get("/reorder-suggestions", s.handleReorderSuggestions)
				r.Post("/batch-forecast", s.handleBatchForecast)
			})

			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", s.handleAlerts)
				r.Get("/unacknowledged", s.handleUnacknowledgedAlerts)
				r.Get("/stats", s.handleAlertStats)
				r.Post("/{id}/acknowledge", s.handleAcknowledgeAlert)
				r.Post("/run-system-scan", s.handleRunScan)
			})

			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", s.handleSuppliers)
				r.Post("/", s.handleCreateSupplier)
				r.Get("/purchase-orders", s.handlePurchaseOrders)
				r.Post("/purchase-orders", s.handleCreatePurchaseOrder)
				r.Get("/ai-analysis", s.handleAIAnalysis)
				r.Get("/{id}", s.handleSupplier)
				r.Put("/{id}", s.handleUpdateSupplier)
				r.Delete("/{id}", s.handleDeleteSupplier)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", s.handleOrders)
				r.Post("/create", s.handleCreateOrder)
				r.Post("/upload-prescription", s.handleUploadPrescription)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", s.handleDashboardStats)
				r.Get("/expiry-timeline", s.handleExpiryTimeline)
				r.Get("/inventory-by-category", s.handleInventoryByCategory)
				r.Get("/sales-trends", s.handleSalesTrends)
				r.Get("/top-medicines", s.handleTopMedicines)
			})

			r.Route("/chatbot", func(r chi.Router) {
				r.Post("/chat", s.handleChat)
				r.Get("/suggestions", s.handleChatSuggestions)
			})

			r.Route("/waste", func(r chi.Router) {
				r.Get("/analytics", s.handleWasteAnalytics)
				r.Get("/top-waste-items", s.handleTopWasteItems)
				r.Get("/by-category", s.handleWasteByCategory)
				r.Post("/mark-expired/{id}", s.handleMarkExpired)
				r.Post("/mark-damaged/{id}", s.handleMarkDamaged)
			})
		})
	})

	return r
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.statusCode).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP request")
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error().
					Interface("panic", err).
					Str("path", r.URL.Path).
					Msg("panic recovered")
				writeDetail(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
