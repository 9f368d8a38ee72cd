package controller

import "github.com/labstack/echo/v4"

type CatalogController interface {
	Stages(c echo.Context) error
	Stage(c echo.Context) error
}
