package api

import (
	"net/http"

	authDelivery "remind-candles/internal/auth/delivery"
	birthdayDelivery "remind-candles/internal/birthday/delivery"
	wishDelivery "remind-candles/internal/wish/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	authHandler := authDelivery.NewAuthHandler(h.authUsecase, h.config.FirebaseVAPIDKey)
	birthdayHandler := birthdayDelivery.NewBirthdayHandler(h.birthdayUsecase, h.config.Location)
	wishHandler := wishDelivery.NewWishHandler(h.wishUsecase)
	settingsHandler := NewSettingsHandler(h.notifications)
	wishingHandler := NewWishingHandler(h.birthdayUsecase, h.wisher)
	requireAuth := authDelivery.AuthMiddleware(h.authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/google", authHandler.GoogleSignIn)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", requireAuth, authHandler.Me)
			auth.POST("/logout", authHandler.Logout)
		}

		// Push token routes (protected)
		push := api.Group("/push")
		push.Use(requireAuth)
		{
			push.GET("/config", authHandler.PushConfig)
			push.POST("/tokens", authHandler.RegisterPushToken)
			push.POST("/tokens/:token/deactivate", authHandler.DeactivatePushToken)
			push.DELETE("/tokens/:token", authHandler.DeletePushToken)
		}

		// Birthday routes (protected)
		birthdays := api.Group("/birthdays")
		birthdays.Use(requireAuth)
		{
			birthdays.GET("", birthdayHandler.GetBirthdays)
			birthdays.POST("", birthdayHandler.CreateBirthday)
			birthdays.GET("/upcoming", birthdayHandler.GetUpcoming)
			birthdays.GET("/search", birthdayHandler.SearchBirthdays)
			birthdays.GET("/calendar", birthdayHandler.GetOnDate)
			birthdays.GET("/:id", birthdayHandler.GetBirthdayByID)
			birthdays.PUT("/:id", birthdayHandler.UpdateBirthday)
			birthdays.DELETE("/:id", birthdayHandler.DeleteBirthday)
			birthdays.GET("/:id/deliveries", wishHandler.GetDeliveries)
			birthdays.GET("/:id/wish-link", wishingHandler.GetWishLink)
			birthdays.POST("/:id/wish", wishingHandler.SendWish)
		}

		// Wish template routes (protected)
		wishes := api.Group("/wishes")
		wishes.Use(requireAuth)
		{
			wishes.GET("", wishHandler.GetWishes)
			wishes.POST("", wishHandler.CreateWish)
			wishes.GET("/default", wishHandler.GetDefaultWish)
			wishes.PUT("/:id", wishHandler.UpdateWish)
			wishes.DELETE("/:id", wishHandler.DeleteWish)
			wishes.PUT("/:id/default", wishHandler.SetDefaultWish)
		}

		// Settings routes (protected)
		settings := api.Group("/settings")
		settings.Use(requireAuth)
		{
			settings.GET("/notifications", settingsHandler.GetNotificationSettings)
			settings.PUT("/notifications", settingsHandler.UpdateNotificationSettings)
		}

		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.POST("/test", settingsHandler.SendTestNotification)
			notifications.POST("/check", settingsHandler.CheckNow)
		}
	}
}
