package internal

import (
	"bibled/internal/controllers"
	"bibled/internal/providers"
	"net/http"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/search", http.HandlerFunc(apiController.Search))
	routers.Get("/books", http.HandlerFunc(apiController.GetBooks))
	routers.Get("/chapter", http.HandlerFunc(apiController.GetChapter))
	routers.Post("/journal", http.HandlerFunc(apiController.SaveJournal))
	routers.Get("/journal", http.HandlerFunc(apiController.ListJournal))
	routers.Delete("/journal", http.HandlerFunc(apiController.DeleteJournal))
	routers.Get("/profile", http.HandlerFunc(apiController.GetProfile))
	routers.Delete("/streak", http.HandlerFunc(apiController.ResetStreak))
	routers.Delete("/cache", http.HandlerFunc(apiController.ClearCache))
	return routers
}
