package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"consignment-service/internal/service"
)

// Kind classifies an error for API clients.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, service.ErrIneligible):
		return "ineligible"
	case errors.Is(err, service.ErrNotFound):
		return "not_found"
	case errors.Is(err, service.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, service.ErrDuplicateRequest):
		return "duplicate_request"
	case errors.Is(err, service.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, service.ErrForbidden):
		return "forbidden"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrIneligible):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Reason string `json:"reason,omitempty"`
}

func respondError(c echo.Context, err error) error {
	body := errorBody{Error: err.Error(), Kind: Kind(err)}

	var inel *service.IneligibleError
	if errors.As(err, &inel) {
		body.Reason = inel.Reason
	}
	if body.Kind == "internal" {
		// Internal details stay in the logs.
		body.Error = "internal error"
	}

	return c.JSON(HTTPStatus(err), body)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: msg, Kind: "invalid_argument"})
}
