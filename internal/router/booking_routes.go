package router

import (
	"github.com/labstack/echo/v4"

	"github.com/coworkhub/room-booking/internal/handler"
	"github.com/coworkhub/room-booking/internal/middleware"
	"github.com/coworkhub/room-booking/internal/model"
)

// RegisterRooms registers the room inventory endpoints under /v1.  Every
// authenticated role may browse the inventory; create, update and delete
// are admin operations.  Role checks happen here in middleware, never
// inside handlers.
func RegisterRooms(e *echo.Echo, h *handler.RoomHandler, jwtSecret string) {
	read := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleMember),
	)
	read.GET("/rooms", h.List)

	admin := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	admin.POST("/rooms", h.Create)
	admin.PUT("/rooms/:id", h.Update)
	admin.DELETE("/rooms/:id", h.Delete)
}

// RegisterReservations registers the reservation ledger endpoints under
// /v1.  Members and admins can list, book and cancel; ownership of a
// cancellation is enforced in the handler because it depends on the row
// being cancelled, not just the route.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleMember),
	)
	g.GET("/reservations", h.List)
	g.POST("/reservations", h.Create)
	g.DELETE("/reservations/:id", h.Delete)
}
