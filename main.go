package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/playfolio/backend/src/config"
	"github.com/username/playfolio/backend/src/database"
	"github.com/username/playfolio/backend/src/handlers"
	"github.com/username/playfolio/backend/src/logger"
	"github.com/username/playfolio/backend/src/processors"
	"github.com/username/playfolio/backend/src/security"
	"github.com/username/playfolio/backend/src/services"
	"github.com/username/playfolio/backend/src/utils"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Requested-With, Cookie, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Playfolio backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		stdlog.Fatal("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
	}

	logger.L.Info("Initializing data loaders...")
	if err := utils.InitCurrencyData(config.Cfg.CurrencyDataPath); err != nil {
		logger.L.Error("Failed to load currency symbol data", "error", err)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(config.Cfg.CacheExpiration, config.Cfg.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	sessionService := security.NewSessionService(config.Cfg.JWTSecret)
	sessionHandler := handlers.NewSessionHandler(sessionService)

	historyService := services.NewHistoryService(
		processors.NewBreakdownProcessor(),
		processors.NewTimelineProcessor(),
		processors.NewTotalProcessor(),
		reportCache,
	)

	uploadHandler := handlers.NewUploadHandler(historyService)
	purchaseHandler := handlers.NewPurchaseHandler(historyService)
	breakdownHandler := handlers.NewBreakdownHandler(historyService)
	timelineHandler := handlers.NewTimelineHandler(historyService)
	totalHandler := handlers.NewTotalHandler(historyService)
	rateHandler := handlers.NewRateHandler(historyService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	// Public routes: CSRF token and session creation need no prior session.
	apiRouter.HandleFunc("GET /api/auth/csrf", handlers.GetCSRFToken)
	apiRouter.HandleFunc("POST /api/session", sessionHandler.HandleCreateSession)

	csrfProtection := handlers.CSRFMiddleware()
	applyCsrfAndAuth := func(handler http.HandlerFunc) http.Handler {
		return csrfProtection(http.HandlerFunc(sessionHandler.AuthMiddleware(handler)))
	}

	apiRouter.Handle("POST /api/upload", applyCsrfAndAuth(uploadHandler.HandleUpload))
	apiRouter.Handle("POST /api/import", applyCsrfAndAuth(uploadHandler.HandleImport))
	apiRouter.Handle("GET /api/purchases", applyCsrfAndAuth(purchaseHandler.HandleGetPurchases))
	apiRouter.Handle("GET /api/currencies", applyCsrfAndAuth(purchaseHandler.HandleGetCurrencies))
	apiRouter.Handle("GET /api/breakdown", applyCsrfAndAuth(breakdownHandler.HandleGetBreakdown))
	apiRouter.Handle("GET /api/timeline", applyCsrfAndAuth(timelineHandler.HandleGetTimeline))
	apiRouter.Handle("GET /api/totals", applyCsrfAndAuth(totalHandler.HandleGetTotals))
	apiRouter.Handle("GET /api/rates", applyCsrfAndAuth(rateHandler.HandleGetRates))
	apiRouter.Handle("PUT /api/rates", applyCsrfAndAuth(rateHandler.HandleSetRate))
	apiRouter.Handle("DELETE /api/purchases/all", applyCsrfAndAuth(purchaseHandler.HandleDeleteAllPurchases))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Playfolio backend is running"})
		} else if !strings.HasPrefix(r.URL.Path, "/api/") {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	}
	logger.L.Info("Server stopped.")
}
