package handler

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
func RegisterRoutes(e *echo.Echo, activity *ActivityHandler, hotel *HotelHandler, auth *AuthHandler, health *HealthHandler) {
	e.GET("/healthz", health.Healthz)
	e.GET("/proxy/status", health.Status)

	e.GET("/api/activities", activity.List)
	e.GET("/api/activities/categories", activity.Categories)
	e.POST("/api/activities/images/prefetch", activity.PrefetchImages)
	e.GET("/api/activities/:id", activity.Detail)
	e.GET("/api/activities/:id/image", activity.Image)

	e.GET("/api/hotel/search", hotel.Search)
	e.GET("/api/hotel/detail/:id", hotel.Detail)
	e.GET("/api/hotel/availability/:id", hotel.Availability)
	e.POST("/api/hotel/booking/addToCart", hotel.AddToCart)
	e.GET("/api/hotel/booking/:code", hotel.BookingDetail)

	e.POST("/api/auth/login", auth.Login)
	e.GET("/api/auth/me", auth.Me)
	e.POST("/api/auth/me", auth.Me)
	e.GET("/api/user/booking-history", auth.BookingHistory)
}
