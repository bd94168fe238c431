package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"accountd/internal/service"

	"github.com/labstack/echo/v4"
)

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// writeError emits the uniform failure body. Only the message crosses the
// wire; stack traces and driver errors stay in the logs.
func writeError(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]string{"error": err.Error()})
}

func writeInternalError(c echo.Context, err error) error {
	c.Logger().Error(err)
	return writeError(c, http.StatusInternalServerError, errors.New("internal server error"))
}

func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrEmailInUse),
		errors.Is(err, service.ErrEmailAlreadyAdded),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrEmailNotVerified),
		errors.Is(err, service.ErrPrimaryEmail),
		errors.Is(err, service.ErrAlreadyVerified):
		return writeError(c, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidSession):
		return writeError(c, http.StatusUnauthorized, err)
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUsernameTaken):
		return writeError(c, http.StatusConflict, err)
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrEmailNotFound):
		return writeError(c, http.StatusNotFound, err)
	}
	return writeInternalError(c, err)
}

func stringPtr(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
