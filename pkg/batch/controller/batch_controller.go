package controller

import "github.com/labstack/echo/v4"

type BatchController interface {
	Create(c echo.Context) error
	Get(c echo.Context) error
	List(c echo.Context) error
	Delete(c echo.Context) error
	Progression(c echo.Context) error
}
