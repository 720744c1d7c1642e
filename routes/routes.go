package routes

import (
	"github.com/gin-gonic/gin"

	"tabl/internal/handlers"
	"tabl/internal/identity"
	"tabl/internal/middleware"
	"tabl/pkg/logger"
)

type Handlers struct {
	Health    *handlers.HealthHandler
	Clubs     *handlers.ClubHandler
	Reviews   *handlers.ReviewHandler
	Photos    *handlers.PhotoHandler
	Favorites *handlers.FavoritesHandler
	Profile   *handlers.ProfileHandler
	// Places is nil when no maps provider is configured.
	Places *handlers.PlaceHandler
}

// SetupRoutes mounts the API under /api/v1. Club writes are limited to admins.
func SetupRoutes(r *gin.Engine, h *Handlers, verifier identity.TokenVerifier, policy identity.AdminPolicy, log *logger.Logger) {
	api := r.Group("/api/v1")
	api.GET("/health", h.Health.Health)

	auth := middleware.AuthRequired(verifier, log)
	admin := middleware.AdminRequired(policy)

	clubs := api.Group("/clubs")
	clubs.Use(auth)
	{
		clubs.GET("", h.Clubs.ListClubs)
		clubs.GET("/:id", h.Clubs.GetClub)
		clubs.POST("", admin, h.Clubs.CreateClub)
		clubs.PUT("/:id", admin, h.Clubs.UpdateClub)
		clubs.DELETE("/:id", admin, h.Clubs.DeleteClub)

		clubs.GET("/:id/reviews", h.Reviews.ListReviews)
		clubs.POST("/:id/reviews", h.Reviews.CreateReview)
		clubs.PUT("/:id/reviews/:review_id", h.Reviews.UpdateReview)
		clubs.DELETE("/:id/reviews/:review_id", h.Reviews.DeleteReview)

		clubs.GET("/:id/photos", h.Photos.ListPhotos)
		clubs.POST("/:id/photos", h.Photos.UploadPhoto)
	}

	me := api.Group("/me")
	me.Use(auth)
	{
		me.GET("/profile", h.Profile.GetProfile)
		me.POST("/profile", h.Profile.RegisterProfile)
		me.GET("/favorites", h.Favorites.GetFavorites)
		me.POST("/favorites/:club_id/toggle", h.Favorites.ToggleFavorite)
		me.GET("/favorites/stream", h.Favorites.StreamFavorites)
	}

	if h.Places != nil {
		places := api.Group("/places")
		places.Use(auth)
		{
			places.GET("/search", h.Places.SearchPlaces)
			places.GET("/reverse", h.Places.ReverseGeocode)
		}
	}
}
