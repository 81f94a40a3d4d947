// api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"funnelpulse/api/database"
	"funnelpulse/api/funnel"
	"funnelpulse/api/handlers"
	"funnelpulse/api/middleware"
	"funnelpulse/api/scheduler"
	"funnelpulse/api/store"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Funnel definition (configuration, not code) ---
	stages := funnel.DefaultStages()
	if path := os.Getenv("FUNNEL_CONFIG"); path != "" {
		loaded, err := funnel.LoadStages(path)
		if err != nil {
			log.Fatalf("Failed to load funnel definition: %v", err)
		}
		stages = loaded
		log.Printf("Loaded funnel definition from %s (%d stages)", path, len(stages))
	}

	// --- Initialize ClickHouse Database (for clickstream events) ---
	chClient, err := database.NewClickHouseDB()
	if err != nil {
		log.Fatalf("Failed to initialize ClickHouse database: %v", err)
	}
	defer chClient.Close()

	// --- Initialize PostgreSQL Database (for archived reports) ---
	dbClient, err := database.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	// --- Initialize Stores ---
	eventStore := store.NewEventStore(chClient)
	reportStore := store.NewReportStore(dbClient.DB)

	// --- Initialize Handlers ---
	trackHandlers := handlers.NewTrackHandlers(eventStore)
	reportHandlers := handlers.NewReportHandlers(eventStore, reportStore, stages)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		api.POST("/track", trackHandlers.TrackEvents)

		reports := api.Group("/reports")
		{
			reports.GET("/funnel", reportHandlers.GetFunnel)
			reports.GET("/bottlenecks", reportHandlers.GetBottlenecks)
			reports.GET("/segments", reportHandlers.GetSegments)
			reports.GET("/summary", reportHandlers.GetSummary)
			reports.GET("/archive", reportHandlers.GetArchivedReport)
		}
	}

	// --- Periodic reprocessing (optional) ---
	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	defer stopRefresh()
	if intervalStr := os.Getenv("REFRESH_INTERVAL"); intervalStr != "" {
		interval, err := time.ParseDuration(intervalStr)
		if err != nil {
			log.Fatalf("Invalid REFRESH_INTERVAL %q: %v", intervalStr, err)
		}
		outDir := os.Getenv("REPORT_DIR")
		if outDir == "" {
			outDir = "."
		}
		refresher := scheduler.NewRefresher(eventStore, reportStore, stages, outDir, interval)
		go refresher.Run(refreshCtx)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Funnel analytics API server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stopRefresh()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
