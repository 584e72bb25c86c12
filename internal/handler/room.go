package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/coworkhub/room-booking/internal/model"
	"github.com/coworkhub/room-booking/internal/repository"
)

// RoomHandler implements the admin-facing room inventory CRUD.  Reads are
// open to every authenticated role; the router restricts writes to ADMIN.
type RoomHandler struct {
	Rooms *repository.RoomRepo
}

// NewRoomHandler constructs a RoomHandler and panics on a nil dependency.
func NewRoomHandler(rooms *repository.RoomRepo) *RoomHandler {
	if rooms == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms}
}

// roomReq is the create/update payload.  Capacity is accepted as either a
// JSON number or a numeric string because the admin form submits strings.
type roomReq struct {
	Name      string      `json:"name"`
	Capacity  interface{} `json:"capacity"`
	Resources string      `json:"resources"`
}

// parseCapacity coerces the capacity field into a positive integer.
func parseCapacity(v interface{}) (uint32, bool) {
	switch t := v.(type) {
	case float64:
		if t > 0 && t == float64(uint32(t)) {
			return uint32(t), true
		}
	case string:
		if n, err := strconv.ParseUint(strings.TrimSpace(t), 10, 32); err == nil && n > 0 {
			return uint32(n), true
		}
	}
	return 0, false
}

// List handles GET /v1/rooms.  It returns the whole inventory; there is no
// filtering or pagination.
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.Rooms.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if rooms == nil {
		rooms = []*model.Room{}
	}
	return c.JSON(http.StatusOK, rooms)
}

// Create handles POST /v1/rooms.  Name must be non-empty and capacity a
// positive integer; violations are rejected with 400.
func (h *RoomHandler) Create(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	capacity, ok := parseCapacity(req.Capacity)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be a positive integer"})
	}

	room := &model.Room{Name: req.Name, Capacity: capacity, Resources: strings.TrimSpace(req.Resources)}
	if err := h.Rooms.Create(c.Request().Context(), room); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	return c.JSON(http.StatusCreated, room)
}

// Update handles PUT /v1/rooms/:id.  It replaces the mutable fields and
// returns the updated room, or 404 when the id is unknown.
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	capacity, ok := parseCapacity(req.Capacity)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be a positive integer"})
	}

	room := &model.Room{ID: id, Name: req.Name, Capacity: capacity, Resources: strings.TrimSpace(req.Resources)}
	if err := h.Rooms.Update(c.Request().Context(), room); err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update room failed"})
	}
	return c.JSON(http.StatusOK, room)
}

// Delete handles DELETE /v1/rooms/:id.  Deletion is blocked with 409 while
// reservations for the room exist, so the ledger can never hold a booking
// for a room that no longer exists.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	if err := h.Rooms.Delete(c.Request().Context(), id); err != nil {
		switch err {
		case repository.ErrRoomNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		case repository.ErrRoomInUse:
			return c.JSON(http.StatusConflict, echo.Map{"error": "room has active reservations"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete room failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "room deleted"})
}
