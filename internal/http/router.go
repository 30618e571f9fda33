package http

import (
	"net/http"

	"campus-backend/internal/handlers"
	"campus-backend/internal/health"
	"campus-backend/internal/middleware"
	"campus-backend/internal/realtime"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	departmentHandler *handlers.DepartmentHandler,
	requestHandler *handlers.RequestHandler,
	resourceHandler *handlers.ResourceHandler,
	notificationHandler *handlers.NotificationHandler,
	reportHandler *handlers.ReportHandler,
	healthChecker *health.Checker,
	hub *realtime.Hub,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/health", healthChecker.Handler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Realtime updates
	r.HandleFunc("/ws", hub.HandleWS)

	// Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.ListUsers)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("/{id}/active", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.SetActive)).ServeHTTP).Methods("PATCH")
	usersAPI.HandleFunc("/{id}/role", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.UpdateRole)).ServeHTTP).Methods("PATCH")

	// Departments
	departmentsAPI := r.PathPrefix("/api/departments").Subrouter()
	departmentsAPI.Use(authMiddleware.Authenticate)
	departmentsAPI.HandleFunc("", departmentHandler.List).Methods("GET")
	departmentsAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(departmentHandler.Create)).ServeHTTP).Methods("POST")
	departmentsAPI.HandleFunc("/{id}", departmentHandler.Get).Methods("GET")
	departmentsAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(departmentHandler.Update)).ServeHTTP).Methods("PUT")
	departmentsAPI.HandleFunc("/{id}/members", departmentHandler.ListMembers).Methods("GET")
	departmentsAPI.HandleFunc("/{id}/members", authMiddleware.RequireAdmin(http.HandlerFunc(departmentHandler.AddMember)).ServeHTTP).Methods("POST")
	departmentsAPI.HandleFunc("/{id}/members/{userId}", authMiddleware.RequireAdmin(http.HandlerFunc(departmentHandler.RemoveMember)).ServeHTTP).Methods("DELETE")

	// Requests: submissions, listings and the lifecycle transitions.
	// Department-scoped permissions are enforced inside the handlers since a
	// caller's reviewing rights depend on the request's department.
	requestsAPI := r.PathPrefix("/api/requests").Subrouter()
	requestsAPI.Use(authMiddleware.Authenticate)
	requestsAPI.HandleFunc("", requestHandler.List).Methods("GET")
	requestsAPI.HandleFunc("/mine", requestHandler.ListMine).Methods("GET")
	requestsAPI.HandleFunc("/assigned", requestHandler.ListAssigned).Methods("GET")
	requestsAPI.HandleFunc("/job", requestHandler.SubmitJob).Methods("POST")
	requestsAPI.HandleFunc("/venue", requestHandler.SubmitVenue).Methods("POST")
	requestsAPI.HandleFunc("/transport", requestHandler.SubmitTransport).Methods("POST")
	requestsAPI.HandleFunc("/returnable", requestHandler.SubmitReturnable).Methods("POST")
	requestsAPI.HandleFunc("/supply", requestHandler.SubmitSupply).Methods("POST")
	requestsAPI.HandleFunc("/{id}", requestHandler.Get).Methods("GET")
	requestsAPI.HandleFunc("/{id}/history", requestHandler.History).Methods("GET")
	requestsAPI.HandleFunc("/{id}/cancel", requestHandler.Cancel).Methods("POST")
	requestsAPI.HandleFunc("/{id}/approve", requestHandler.Approve).Methods("POST")
	requestsAPI.HandleFunc("/{id}/reject", requestHandler.Reject).Methods("POST")
	requestsAPI.HandleFunc("/{id}/review", requestHandler.Review).Methods("POST")
	requestsAPI.HandleFunc("/{id}/reviewer-cancel", requestHandler.CancelByReviewer).Methods("POST")
	requestsAPI.HandleFunc("/{id}/complete", requestHandler.Complete).Methods("POST")
	requestsAPI.HandleFunc("/{id}/assign", requestHandler.AssignJob).Methods("POST")
	requestsAPI.HandleFunc("/{id}/start", requestHandler.StartJob).Methods("POST")
	requestsAPI.HandleFunc("/{id}/odometer-start", requestHandler.RecordOdometerStart).Methods("POST")
	requestsAPI.HandleFunc("/{id}/complete-transport", requestHandler.CompleteTransport).Methods("POST")

	// Venues
	venuesAPI := r.PathPrefix("/api/venues").Subrouter()
	venuesAPI.Use(authMiddleware.Authenticate)
	venuesAPI.HandleFunc("", resourceHandler.ListVenues).Methods("GET")
	venuesAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(resourceHandler.CreateVenue)).ServeHTTP).Methods("POST")
	venuesAPI.HandleFunc("/{id}", resourceHandler.GetVenue).Methods("GET")
	venuesAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(resourceHandler.UpdateVenue)).ServeHTTP).Methods("PUT")

	// Vehicles and their maintenance history
	vehiclesAPI := r.PathPrefix("/api/vehicles").Subrouter()
	vehiclesAPI.Use(authMiddleware.Authenticate)
	vehiclesAPI.HandleFunc("", resourceHandler.ListVehicles).Methods("GET")
	vehiclesAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(resourceHandler.CreateVehicle)).ServeHTTP).Methods("POST")
	vehiclesAPI.HandleFunc("/{id}", resourceHandler.GetVehicle).Methods("GET")
	vehiclesAPI.HandleFunc("/{id}/maintenance", resourceHandler.ListMaintenance).Methods("GET")
	vehiclesAPI.HandleFunc("/{id}/maintenance", resourceHandler.RecordMaintenance).Methods("POST")

	// Inventory
	inventoryAPI := r.PathPrefix("/api/inventory").Subrouter()
	inventoryAPI.Use(authMiddleware.Authenticate)
	inventoryAPI.HandleFunc("", resourceHandler.ListItems).Methods("GET")
	inventoryAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(resourceHandler.CreateItem)).ServeHTTP).Methods("POST")
	inventoryAPI.HandleFunc("/overdue", resourceHandler.ListOverdueLoans).Methods("GET")
	inventoryAPI.HandleFunc("/{id}", resourceHandler.GetItem).Methods("GET")
	inventoryAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(resourceHandler.UpdateItem)).ServeHTTP).Methods("PUT")

	// Notifications
	notificationsAPI := r.PathPrefix("/api/notifications").Subrouter()
	notificationsAPI.Use(authMiddleware.Authenticate)
	notificationsAPI.HandleFunc("", notificationHandler.List).Methods("GET")
	notificationsAPI.HandleFunc("/unread-count", notificationHandler.UnreadCount).Methods("GET")
	notificationsAPI.HandleFunc("/read-all", notificationHandler.MarkAllRead).Methods("POST")
	notificationsAPI.HandleFunc("/{id}/read", notificationHandler.MarkRead).Methods("POST")
	notificationsAPI.HandleFunc("/{id}", notificationHandler.Delete).Methods("DELETE")

	// Reports
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.Authenticate)
	reportsAPI.HandleFunc("/requests/{id}/pdf", reportHandler.GetRequestPDF).Methods("GET")
	reportsAPI.HandleFunc("/daily/pdf", reportHandler.GetDailySummaryPDF).Methods("GET")
	reportsAPI.HandleFunc("/daily/csv", reportHandler.GetDailySummaryCSV).Methods("GET")

	return r
}
