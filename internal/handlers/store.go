package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// StoreLocation is the physical shop shown on the map screen.
type StoreLocation struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type StoreHandler struct {
	Location StoreLocation
}

func (h *StoreHandler) GetLocation(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Location)
}
