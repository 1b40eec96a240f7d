package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/websteralycia/WNBA-Lineup-Lab/internal/auth"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/handlers"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/logger"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/mocks"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/pubsub"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/session"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/sharing"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/store"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/warehouse"
)

var (
	snapshotStore store.SnapshotStore
	authProvider  auth.Provider
	sess          *session.Session
	ps            interface {
		Publish(pubsub.Event)
		Subscribe() chan pubsub.Event
		Unsubscribe(chan pubsub.Event)
	}
	whClient interface {
		GetAllPercentiles() (map[string]warehouse.Percentiles, error)
		SyncPercentiles(func(string, warehouse.Percentiles) error) error
		Close() error
	}
)

func main() {
	// Load .env if present, then initialize the logger first
	godotenv.Load()
	logger.Init()

	logger.Info("Starting WNBA Lineup Lab service")

	// Initialize snapshot store driver
	storeDriver := os.Getenv("STORE_DRIVER")
	if storeDriver == "" {
		storeDriver = "memory"
	}
	namespace := os.Getenv("STORE_NAMESPACE")
	if namespace == "" {
		namespace = "lineup-lab"
	}

	var err error
	switch storeDriver {
	case "memory":
		snapshotStore = store.NewMemoryStore(namespace)
		logger.Info("Using in-memory snapshot store")
	case "sqlite":
		sqliteFile := os.Getenv("SQLITE_FILE")
		if sqliteFile == "" {
			sqliteFile = "dev.sqlite"
		}
		snapshotStore, err = store.NewSQLiteStore(sqliteFile, namespace)
		if err != nil {
			logger.Error("Failed to initialize SQLite", "error", err)
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		logger.Info("Connected to SQLite snapshot store", "file", sqliteFile)
	case "postgres":
		dbConnString := os.Getenv("DATABASE_URL")
		if dbConnString == "" {
			if os.Getenv("ENVIRONMENT") == "production" {
				logger.Error("DATABASE_URL environment variable is required for postgres driver")
				log.Fatal("DATABASE_URL environment variable is required for postgres driver")
			}
			// Local development without a Postgres server
			snapshotStore, err = mocks.NewMockPostgresStore("dev.sqlite", namespace)
			if err != nil {
				logger.Error("Failed to initialize mock Postgres", "error", err)
				log.Fatalf("Failed to initialize mock Postgres: %v", err)
			}
			break
		}
		snapshotStore, err = store.NewPostgresStore(dbConnString, namespace)
		if err != nil {
			logger.Error("Failed to initialize Postgres", "error", err)
			log.Fatalf("Failed to initialize Postgres: %v", err)
		}
		logger.Info("Connected to Postgres snapshot store")
	default:
		logger.Error("Unknown STORE_DRIVER", "driver", storeDriver)
		log.Fatalf("Unknown STORE_DRIVER: %s (valid: memory, sqlite, postgres)", storeDriver)
	}

	// Initialize pub/sub (NATS JetStream or Embedded NATS for local development)
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	natsSubject := os.Getenv("NATS_SUBJECT")
	if natsSubject == "" {
		natsSubject = "lineup.events"
	}

	environment := os.Getenv("ENVIRONMENT")

	if environment == "" || environment == "development" {
		logger.Info("Starting embedded NATS server for local development")
		embeddedNats, err := pubsub.NewEmbeddedNATSPubSub(pubsub.EmbeddedNATSOptions{
			Port:       0, // Random available port
			Subject:    natsSubject,
			StreamName: pubsub.StreamName,
			StoreDir:   "", // In-memory storage
		})
		if err != nil {
			logger.Warn("Failed to start embedded NATS, falling back to in-memory pub/sub", "error", err)
			ps = mocks.NewMockNATSPubSub()
		} else {
			ps = embeddedNats
			logger.Info("Embedded NATS server ready", "url", embeddedNats.GetServerURL())
		}
	} else {
		logger.Info("Using real NATS JetStream for production")
		realNats, err := pubsub.NewNATSPubSub(natsURL, natsSubject)
		if err != nil {
			logger.Error("Failed to initialize NATS", "error", err)
			log.Fatalf("Failed to initialize NATS: %v", err)
		}
		ps = realNats
		logger.Info("Connected to NATS", "url", natsURL)
	}

	// Initialize ClickHouse warehouse client (mocked in development)
	if environment == "" || environment == "development" {
		whClient = mocks.NewMockWarehouse(nil)
	} else {
		chAddr := os.Getenv("CLICKHOUSE_ADDR")
		if chAddr == "" {
			chAddr = "localhost:9000"
		}
		chDB := os.Getenv("CLICKHOUSE_DB")
		if chDB == "" {
			chDB = "default"
		}
		chUser := os.Getenv("CLICKHOUSE_USER")
		if chUser == "" {
			chUser = "default"
		}
		chPass := os.Getenv("CLICKHOUSE_PASSWORD")

		client, chErr := warehouse.NewClient(chAddr, chDB, chUser, chPass)
		if chErr != nil {
			logger.Error("Failed to initialize ClickHouse", "error", chErr, "address", chAddr)
			log.Fatalf("Failed to initialize ClickHouse: %v", chErr)
		}
		whClient = client
		logger.Info("Connected to ClickHouse", "address", chAddr, "database", chDB)
	}

	// Initialize authentication: mock in development, OIDC in production
	if environment == "" || environment == "development" {
		logger.Info("Using mock authentication for local development (no identity provider required)")
		authProvider = auth.NewMockAuth()
	} else {
		oidcBaseURL := os.Getenv("OIDC_BASE_URL")
		oidcClientID := os.Getenv("OIDC_CLIENT_ID")
		oidcClientSecret := os.Getenv("OIDC_CLIENT_SECRET")
		oidcRedirectURL := os.Getenv("OIDC_REDIRECT_URL")

		if oidcBaseURL == "" || oidcClientID == "" || oidcClientSecret == "" {
			logger.Error("OIDC_BASE_URL, OIDC_CLIENT_ID, and OIDC_CLIENT_SECRET environment variables are required for production")
			log.Fatal("OIDC_BASE_URL, OIDC_CLIENT_ID, and OIDC_CLIENT_SECRET environment variables are required for production")
		}

		if oidcRedirectURL == "" {
			oidcRedirectURL = "http://localhost:3000/auth/callback"
		}

		authProvider = auth.NewOIDCAuth(&auth.Config{
			BaseURL:      oidcBaseURL,
			ClientID:     oidcClientID,
			ClientSecret: oidcClientSecret,
			RedirectURL:  oidcRedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
		})
		logger.Info("Connected to identity provider", "url", oidcBaseURL)
	}

	// Build the session over the sharing service
	origin := os.Getenv("SHARE_ORIGIN")
	if origin == "" {
		origin = "http://localhost:3000"
	}
	sharingService := sharing.NewService(snapshotStore, origin)
	sess = session.New(sharingService)

	// Deep link: an optional roster=<id> reference read at startup seeds the
	// initial roster. Resolution is a single non-blocking round trip.
	if ref := os.Getenv("ROSTER"); ref != "" {
		go func() {
			if err := sess.SeedFromReference(context.Background(), ref); err != nil {
				logger.Warn("Failed to seed roster from reference", "error", err, "ref", ref)
			}
		}()
	}

	// Periodic percentile sync from the warehouse (production only)
	if whClient != nil {
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()

			syncPercentiles()

			for range ticker.C {
				syncPercentiles()
			}
		}()
	} else {
		logger.Info("Skipping percentile sync (warehouse not configured)")
	}

	// Set up HTTP routes
	mux := http.NewServeMux()

	// Static files
	fs := http.FileServer(http.Dir("static"))
	mux.Handle("/static/", http.StripPrefix("/static/", fs))

	// Auth routes (public)
	mux.HandleFunc("/auth/login", authProvider.LoginHandler)
	mux.HandleFunc("/auth/callback", authProvider.CallbackHandler)
	mux.HandleFunc("/auth/logout", authProvider.LogoutHandler)

	// API routes
	api := handlers.NewAPIHandlers(sess, convertPubSub(ps))

	// Catalog API
	mux.HandleFunc("/api/catalog/import", api.ImportCatalog)
	mux.HandleFunc("/api/catalog", api.GetCatalog)
	mux.HandleFunc("/api/catalog/teams", api.ListTeams)

	// Roster API
	mux.HandleFunc("/api/roster", api.GetRoster)
	mux.HandleFunc("/api/roster/add", api.AddToRoster)
	mux.HandleFunc("/api/roster/remove", api.RemoveFromRoster)
	mux.HandleFunc("/api/roster/clear", api.ClearRoster)
	mux.HandleFunc("/api/roster/analytics", api.GetAnalytics)

	// Sharing API (publish requires a signed-in identity)
	mux.HandleFunc("/api/share", authProvider.Middleware(api.PublishShare))
	mux.HandleFunc("/api/share/resolve", api.ResolveShare)

	// SSE for realtime updates
	mux.HandleFunc("/api/events", api.EventsSSE)

	// Health check endpoints
	mux.HandleFunc("/api/health", healthHandler)
	mux.HandleFunc("/healthz", livenessHandler) // Kubernetes liveness probe
	mux.HandleFunc("/readyz", readinessHandler) // Kubernetes readiness probe

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	addr := "0.0.0.0:" + port
	logger.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Server failed", "error", err)
		log.Fatal(err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	// Check snapshot store connectivity with a probe read
	if snapshotStore != nil {
		_, _, err := snapshotStore.Get(r.Context(), "health-probe")
		if err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			checks["store"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			checks["store"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else {
		checks["store"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	// Check ClickHouse connectivity (only in production)
	environment := os.Getenv("ENVIRONMENT")
	if environment == "production" && whClient != nil {
		_, err := whClient.GetAllPercentiles()
		if err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			checks["clickhouse"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			checks["clickhouse"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else if environment == "production" {
		checks["clickhouse"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	// NATS connection health is handled internally by the client
	if environment == "production" && ps != nil {
		checks["nats"] = map[string]interface{}{
			"status": "healthy",
		}
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(response)
}

// livenessHandler handles Kubernetes liveness probes
// Returns 200 if the application is running (doesn't check dependencies)
func livenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// readinessHandler handles Kubernetes readiness probes
// Returns 200 if the application is ready to serve traffic (checks critical dependencies)
func readinessHandler(w http.ResponseWriter, r *http.Request) {
	if snapshotStore != nil {
		_, _, err := snapshotStore.Get(r.Context(), "health-probe")
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":    "not_ready",
				"reason":    "store_unavailable",
				"timestamp": time.Now().Unix(),
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}

// syncPercentiles pulls refreshed percentile metrics from the warehouse
// into the session catalog
func syncPercentiles() {
	logger.Info("Syncing percentile metrics from warehouse")

	err := whClient.SyncPercentiles(func(athleteID string, p warehouse.Percentiles) error {
		sess.ApplyPercentiles(athleteID, p.Ts, p.Usage, p.Def, p.Ast)
		return nil
	})
	if err != nil {
		logger.Error("Failed to sync percentile metrics", "error", err)
	} else {
		logger.Info("Percentile metrics synced successfully")
	}
}

// convertPubSub wraps the NATS pubsub to provide a local *pubsub.PubSub for
// the handlers. Publishes go to NATS, and NATS events come back to local
// subscribers.
func convertPubSub(ps interface {
	Publish(pubsub.Event)
	Subscribe() chan pubsub.Event
	Unsubscribe(chan pubsub.Event)
}) *pubsub.PubSub {
	return pubsub.NewWithUpstream(ps)
}
