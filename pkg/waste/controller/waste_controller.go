package controller

import "github.com/labstack/echo/v4"

type WasteController interface {
	Record(c echo.Context) error
	List(c echo.Context) error
	Dispose(c echo.Context) error
	Delete(c echo.Context) error
	Stats(c echo.Context) error
}
