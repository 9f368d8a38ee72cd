package controller

import "github.com/labstack/echo/v4"

type ProgressController interface {
	Record(c echo.Context) error
	List(c echo.Context) error
	Get(c echo.Context) error
	Patch(c echo.Context) error
	Delete(c echo.Context) error
	HardDelete(c echo.Context) error
}
