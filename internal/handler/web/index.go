// Package web serves the embedded single-page chat UI.
package web

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed index.html
var indexHTML string

// Index serves the chat page.
func Index(c echo.Context) error {
	return c.HTML(http.StatusOK, indexHTML)
}
