package routes

import (
	"net/http"

	"wayfare/auth"
	"wayfare/collab"
	"wayfare/export"
	"wayfare/filemgr"
	"wayfare/itinerary"
	"wayfare/middleware"
	"wayfare/ratelim"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/activitypic/*filepath", http.Dir("static/activitypic"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.Register))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.LogoutUser))
	router.POST("/api/auth/token/refresh", rl.Limit(auth.RefreshToken))
}

func AddItineraryRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/itineraries", rl.Limit(middleware.Authenticate(itinerary.CreateItinerary)))
	router.GET("/api/itineraries", middleware.Authenticate(itinerary.GetItineraries))
	router.GET("/api/itineraries/recommended", itinerary.GetRecommended)
	router.GET("/api/itineraries/search", itinerary.SearchItineraries)
	router.GET("/api/itineraries/all/:id", middleware.OptionalAuth(itinerary.GetItinerary))
	router.PUT("/api/itineraries/:id", middleware.Authenticate(itinerary.UpdateItinerary))
	router.DELETE("/api/itineraries/:id", middleware.Authenticate(itinerary.DeleteItinerary))
	router.POST("/api/itineraries/:id/editors", middleware.Authenticate(itinerary.AddEditor))
	router.POST("/api/itineraries/:id/fork", rl.Limit(middleware.Authenticate(itinerary.ForkItinerary)))
	router.PATCH("/api/itineraries/:id/publish", middleware.Authenticate(itinerary.PublishItinerary))
}

func AddUploadRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/itineraries/:id/activities/:activityid/photo",
		rl.Limit(middleware.Authenticate(filemgr.UploadActivityPhoto)))
}

func AddExportRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/export/itinerary/:id", rl.Limit(middleware.OptionalAuth(export.ExportItineraryPDF)))
}

func AddCollabRoutes(router *httprouter.Router, hub *collab.Hub, gw *collab.Gateway) {
	router.GET("/ws/itinerary", collab.WebSocketHandler(hub, gw))
}
