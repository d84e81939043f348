package apperror

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/pkg/respond"
)

// HTTPErrorHandler renders every error through the response envelope.
// Internal errors are logged with their cause but surface only a generic
// message to the client.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "internal server error"

		var httpErr *echo.HTTPError
		var kinded *Error
		switch {
		case errors.As(err, &kinded):
			status = Status(kinded)
			msg = kinded.Msg
			if kinded.Kind == KindInternal {
				msg = "internal server error"
			}
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if s, ok := httpErr.Message.(string); ok {
				msg = s
			} else {
				msg = http.StatusText(status)
			}
		}

		if status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().
				Err(err).
				Str("request_id", rid).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		if writeErr := respond.Error(c, status, msg); writeErr != nil {
			logger.Error().Err(writeErr).Msg("write error response")
		}
	}
}
