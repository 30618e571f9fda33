package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"campus-backend/internal/auth"
	"campus-backend/internal/cache"
	"campus-backend/internal/config"
	"campus-backend/internal/database"
	"campus-backend/internal/db"
	"campus-backend/internal/handlers"
	"campus-backend/internal/health"
	h "campus-backend/internal/http"
	"campus-backend/internal/mailer"
	"campus-backend/internal/middleware"
	"campus-backend/internal/monitoring"
	"campus-backend/internal/realtime"
	"campus-backend/internal/repositories"
	"campus-backend/internal/services"
	"campus-backend/internal/titlegen"
	"campus-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()
	log.Println("[DB] Connected successfully")

	// Initialize Redis cache (optional, graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (serving without cache)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations from the embedded filesystem
	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool, migrations.FS, ".")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Start monitoring dashboard server in background
	go monitoring.NewServer(pool, cfg.Server.MonitoringPort).Start()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	deptRepo := repositories.NewDepartmentRepository(pool)
	venueRepo := repositories.NewVenueRepository(pool)
	vehicleRepo := repositories.NewVehicleRepository(pool)
	inventoryRepo := repositories.NewInventoryRepository(pool)
	requestRepo := repositories.NewRequestRepository(pool)
	jobRepo := repositories.NewJobRequestRepository(pool)
	venueReqRepo := repositories.NewVenueRequestRepository(pool)
	transportRepo := repositories.NewTransportRequestRepository(pool)
	returnableRepo := repositories.NewReturnableRequestRepository(pool)
	supplyRepo := repositories.NewSupplyRequestRepository(pool)
	notifRepo := repositories.NewNotificationRepository(pool)
	auditRepo := repositories.NewAuditLogRepository(pool)

	// Realtime hub for browser push
	hub := realtime.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Email provider (mock when no SMTP host is configured)
	emailProvider := mailer.NewProvider(cfg)

	// Title generator (optional, submissions fall back to the request id)
	var titles services.TitleGenerator
	if gen, err := titlegen.NewGenerator(cfg); err != nil {
		log.Printf("[TitleGen] disabled: %v", err)
	} else {
		titles = gen
	}

	// Initialize services
	userService := services.NewUserService(userRepo, jwtManager)
	departmentService := services.NewDepartmentService(deptRepo, userRepo)
	resourceService := services.NewResourceService(venueRepo, vehicleRepo, inventoryRepo, deptRepo)
	notificationService := services.NewNotificationService(notifRepo, userRepo, emailProvider, hub)
	requestService := services.NewRequestService(
		pool, requestRepo, jobRepo, venueReqRepo, transportRepo, returnableRepo, supplyRepo,
		venueRepo, vehicleRepo, inventoryRepo, deptRepo, auditRepo, titles, notificationService)
	approvalService := services.NewApprovalService(
		pool, requestRepo, jobRepo, venueReqRepo, transportRepo, returnableRepo, supplyRepo,
		venueRepo, vehicleRepo, inventoryRepo, deptRepo, auditRepo, notificationService)
	jobService := services.NewJobService(pool, requestRepo, jobRepo, deptRepo, auditRepo, notificationService)
	transportService := services.NewTransportService(pool, requestRepo, transportRepo, vehicleRepo, deptRepo, auditRepo, notificationService)
	reportService := services.NewReportService(requestService, userRepo, deptRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	departmentHandler := handlers.NewDepartmentHandler(departmentService)
	requestHandler := handlers.NewRequestHandler(requestService, approvalService, jobService, transportService, auditRepo, deptRepo)
	resourceHandler := handlers.NewResourceHandler(resourceService, returnableRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Middleware and health checks
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)
	healthChecker := health.NewChecker(pool)

	router := h.NewRouter(
		authHandler, userHandler, departmentHandler, requestHandler,
		resourceHandler, notificationHandler, reportHandler,
		healthChecker, hub, authMiddleware)

	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
