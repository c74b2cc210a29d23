package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evask/materialforge-backend/internal/types"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondMappedError translates service errors into the wire envelope.
// Unrecognized errors come back as a bare 500 so internals never leak.
func RespondMappedError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, types.ErrPricingUnavailable):
		RespondError(c, http.StatusBadRequest, "pricing_unavailable", err)
	case errors.Is(err, types.ErrUnknownFormat):
		RespondError(c, http.StatusBadRequest, "unknown_format", err)
	case errors.Is(err, types.ErrInvalidCredentials):
		RespondError(c, http.StatusUnauthorized, "invalid_credentials", err)
	case errors.Is(err, types.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, types.ErrGenerationPasswordInvalid):
		RespondError(c, http.StatusForbidden, "generation_password_invalid", err)
	case errors.Is(err, types.ErrMaterialNotFound):
		RespondError(c, http.StatusNotFound, "material_not_found", err)
	case errors.Is(err, types.ErrUserNotFound):
		RespondError(c, http.StatusNotFound, "user_not_found", err)
	case errors.Is(err, types.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, types.ErrEmailAlreadyExists):
		RespondError(c, http.StatusConflict, "email_exists", err)
	case errors.Is(err, types.ErrUsernameTaken):
		RespondError(c, http.StatusConflict, "username_taken", err)
	case errors.Is(err, types.ErrNoGeneratedContent):
		RespondError(c, http.StatusConflict, "no_generated_content", err)
	case errors.Is(err, types.ErrGenerationFailed):
		RespondError(c, http.StatusBadGateway, "generation_failed", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
	}
}
