package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventboard/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(eventController *controllers.EventController, requestController *controllers.RequestController) *http.ServeMux {
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /events/{eventID}", eventController.GetPublished)

	// Initiator
	mux.HandleFunc("POST /users/{userID}/events", eventController.Create)
	mux.HandleFunc("GET /users/{userID}/events", eventController.ListByOwner)
	mux.HandleFunc("GET /users/{userID}/events/{eventID}", eventController.GetByOwner)
	mux.HandleFunc("PATCH /users/{userID}/events/{eventID}", eventController.UpdateByOwner)
	mux.HandleFunc("GET /users/{userID}/events/{eventID}/requests", requestController.ListForEvent)
	mux.HandleFunc("PATCH /users/{userID}/events/{eventID}/requests", requestController.Moderate)

	// Requester
	mux.HandleFunc("POST /users/{userID}/requests", requestController.Create)
	mux.HandleFunc("GET /users/{userID}/requests", requestController.ListMine)
	mux.HandleFunc("PATCH /users/{userID}/requests/{requestID}/cancel", requestController.Cancel)

	// Admin moderation
	mux.HandleFunc("PATCH /admin/events/{eventID}", eventController.UpdateByAdmin)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
