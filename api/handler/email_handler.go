package handler

import (
	"errors"
	"net/http"

	"accountd/api/middleware"
	"accountd/internal/dto"
	"accountd/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type EmailHandler struct {
	Service  *service.EmailService
	Validate *validator.Validate
}

func NewEmailHandler(svc *service.EmailService, validate *validator.Validate) *EmailHandler {
	return &EmailHandler{Service: svc, Validate: validate}
}

func (h *EmailHandler) List(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("not authenticated"))
	}
	list, err := h.Service.List(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.EmailListResponseFromEntities(list.PrimaryEmail, list.AdditionalEmails))
}

func (h *EmailHandler) Add(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("not authenticated"))
	}
	var req dto.AddEmailRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	email, err := h.Service.Add(c.Request().Context(), userID, req.Email)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Email added successfully. Please check your email to verify.",
		"email":   dto.UserEmailResponseFromEntity(email),
	})
}

func (h *EmailHandler) Remove(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("not authenticated"))
	}
	emailID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid email id"))
	}
	if err := h.Service.Remove(c.Request().Context(), userID, emailID); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Email removed successfully"})
}

func (h *EmailHandler) SetPrimary(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("not authenticated"))
	}
	emailID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid email id"))
	}
	var req dto.SetPrimaryRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}

	email, err := h.Service.SetPrimary(c.Request().Context(), userID, emailID, *req.IsPrimary)
	if err != nil {
		return writeServiceError(c, err)
	}
	if *req.IsPrimary {
		return c.JSON(http.StatusOK, map[string]string{"message": "Primary email updated successfully"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Email updated successfully",
		"email":   dto.UserEmailResponseFromEntity(email),
	})
}

// VerifyByLink consumes the token from the mailed link.
func (h *EmailHandler) VerifyByLink(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return writeError(c, http.StatusBadRequest, errors.New("verification token is required"))
	}
	if _, err := h.Service.Verify(c.Request().Context(), token); err != nil {
		// The token was valid but its address is gone; the link is dead,
		// not the resource, so this stays a 400.
		if errors.Is(err, service.ErrEmailNotFound) {
			return writeError(c, http.StatusBadRequest, err)
		}
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Additional email verified successfully",
		"success": true,
	})
}

func (h *EmailHandler) ResendVerification(c echo.Context) error {
	var req dto.ResendVerificationRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.Service.Resend(c.Request().Context(), req.Email); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Verification email sent successfully"})
}

func (h *EmailHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}
