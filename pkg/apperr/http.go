package apperr

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Respond writes err as {"error": "..."} with the matching status.
func Respond(c echo.Context, err error) error {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[http] %s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(status, map[string]string{"error": Message(err)})
}

func BadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}
