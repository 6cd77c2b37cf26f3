package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Dosada05/prize-engine/handlers"
	"github.com/Dosada05/prize-engine/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	allocationHandler *handlers.AllocationHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Route("/tournaments/{tournamentID}/allocation", func(r chi.Router) {
		// История версий доступна на чтение без роли органайзера
		r.Get("/versions", allocationHandler.ListVersionsHandler)
		r.Get("/versions/{version}", allocationHandler.GetVersionHandler)

		// Защищённые маршруты только для организаторов
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize("organizer", "admin"))

			r.Post("/preview", allocationHandler.PreviewHandler)
			r.Post("/commit", allocationHandler.CommitHandler)
			r.Put("/overrides", allocationHandler.ApplyOverrideHandler)
			r.Delete("/overrides/{prizeID}", allocationHandler.RemoveOverrideHandler)
			r.Post("/conflicts/accept", allocationHandler.AcceptSuggestionHandler)
			r.Post("/conflicts/accept-all", allocationHandler.AcceptAllHandler)
		})
	})

	// Лента событий распределения (превью/коммиты) для дашбордов
	router.Get("/ws/allocation/{tournamentID}", webSocketHandler.ServeWs)
}
