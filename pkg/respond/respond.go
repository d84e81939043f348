// Package respond renders the API's response envelope:
// {success, data?, message?, error?, pagination?}.
package respond

import (
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/pkg/pagination"
)

// Envelope is the uniform response body for every endpoint.
type Envelope struct {
	Success    bool             `json:"success"`
	Data       interface{}      `json:"data,omitempty"`
	Message    string           `json:"message,omitempty"`
	Error      string           `json:"error,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

// JSON writes a successful response with data.
func JSON(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

// Message writes a successful response with a message and no data.
func Message(c echo.Context, status int, msg string) error {
	return c.JSON(status, Envelope{Success: true, Message: msg})
}

// List writes a successful paginated response.
func List(c echo.Context, status int, data interface{}, p pagination.Params, total int) error {
	return c.JSON(status, Envelope{
		Success:    true,
		Data:       data,
		Pagination: pagination.NewMeta(p, total),
	})
}

// Error writes a failed response.
func Error(c echo.Context, status int, msg string) error {
	return c.JSON(status, Envelope{Success: false, Error: msg})
}
