package main

import (
	"log"
	"net/http"

	"pricelens/config"
	"pricelens/database"
	"pricelens/extractor"
	"pricelens/fetcher"
	"pricelens/handlers"
	"pricelens/llm"
	"pricelens/middleware"
	"pricelens/repository"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Locator store: postgres when configured, in-memory otherwise.
	var store repository.SelectorStore
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.CreateTables(db); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		store = repository.NewSelectorRepository(db)
		log.Println("Using postgres locator store")
	} else {
		store = repository.NewMemorySelectorStore()
		log.Println("DATABASE_URL not set, using in-memory locator store")
	}

	// Page fetcher: headless browser for JS-rendered storefronts, plain
	// HTTP otherwise.
	var pageFetcher fetcher.Fetcher
	if cfg.BrowserFetchEnabled {
		bf, err := fetcher.NewBrowserFetcher(cfg.FetchMinBodyBytes)
		if err != nil {
			log.Fatalf("Failed to start browser fetcher: %v", err)
		}
		defer bf.Close()
		pageFetcher = bf
		log.Println("Using headless browser fetcher")
	} else {
		pageFetcher = fetcher.NewHTTPFetcher(cfg.FetchTimeout, cfg.FetchUserAgent, cfg.FetchMinBodyBytes)
	}

	llmClient := llm.NewClient(cfg.LLMServiceURL, cfg.LLMTimeout)
	if err := llmClient.HealthCheck(); err != nil {
		log.Printf("Warning: %v (selector detection and AI fallback will use heuristics or fail)", err)
	}

	orchestrator := extractor.NewOrchestrator(pageFetcher, store, llmClient, cfg.DefaultCurrency)
	h := handlers.NewHandlers(orchestrator, cfg.DefaultCurrency)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	if cfg.RateLimitEnabled {
		r.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerSec))
	}

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/extract", h.ExtractProduct).Methods("POST")

	var handler http.Handler = r
	if cfg.CORSEnabled {
		c := cors.New(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		})
		handler = c.Handler(r)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	log.Printf("   GET  /health - Health check")
	log.Printf("   POST /api/v1/extract - Extract product record from URL")

	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
