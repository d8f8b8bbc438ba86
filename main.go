package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"plantsched/internal/auth"
	"plantsched/internal/observability/metrics"
	readinessapp "plantsched/internal/readiness/application"
	readinessrepo "plantsched/internal/readiness/infrastructure/postgres"
	readinesshttp "plantsched/internal/readiness/interfaces/http"
	registryrepo "plantsched/internal/registry/infrastructure/postgres"
	signalsrepo "plantsched/internal/signals/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init()

	readinessCfg, err := readinessapp.LoadConfig()
	if err != nil {
		logger.Fatalf("readiness config error: %v", err)
	}

	plantRepo := registryrepo.NewPlantRepository(db)
	recordRepo := readinessrepo.NewRecordRepository(db)
	triggerRepo := readinessrepo.NewTriggerRepository(db)
	notificationRepo := readinessrepo.NewNotificationRepository(db)
	latestReader := signalsrepo.NewLatestReader(db)

	service, err := readinessapp.NewService(
		plantRepo,
		recordRepo,
		triggerRepo,
		notificationRepo,
		latestReader,
		latestReader,
		latestReader.FieldReports(),
		readinessCfg,
		readinessapp.WithLogger(logger),
	)
	if err != nil {
		logger.Fatalf("readiness service error: %v", err)
	}

	scheduler := readinessapp.NewScheduler(service, readinessCfg.SweepEvery(), logger)
	go scheduler.Start(context.Background())

	readinessHandler, err := readinesshttp.NewHandler(service)
	if err != nil {
		logger.Fatalf("readiness handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/readiness", readinessHandler)
	mux.Handle("/api/v1/readiness/", readinessHandler)
	mux.Handle("/api/v1/notifications", readinessHandler)
	mux.Handle("/api/v1/notifications/", readinessHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: authMiddleware.Wrap(loggingMiddleware(mux, logger))}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		if identity, ok := auth.IdentityFromContext(r.Context()); ok {
			logger.Printf("http %s %s %d %s user=%s role=%s", r.Method, r.URL.Path, resp.status, time.Since(start), identity.Subject, identity.Role)
			return
		}
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
