package controller

import "github.com/labstack/echo/v4"

type EvaluationController interface {
	Evaluate(c echo.Context) error
	List(c echo.Context) error
	Get(c echo.Context) error
	Patch(c echo.Context) error
	Delete(c echo.Context) error
	Restore(c echo.Context) error
	HardDelete(c echo.Context) error
	BulkHardDelete(c echo.Context) error
	Failure(c echo.Context) error
	DecodeFailure(c echo.Context) error
}
