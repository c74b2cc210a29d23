package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/evask/materialforge-backend/internal/types"
)

func TestRespondMappedError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid_input", types.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
		{"wrapped_invalid_input", fmt.Errorf("%w: no title", types.ErrInvalidInput), http.StatusBadRequest, "invalid_input"},
		{"pricing_unavailable", types.ErrPricingUnavailable, http.StatusBadRequest, "pricing_unavailable"},
		{"unknown_format", types.ErrUnknownFormat, http.StatusBadRequest, "unknown_format"},
		{"invalid_credentials", types.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"unauthorized", types.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"generation_password", types.ErrGenerationPasswordInvalid, http.StatusForbidden, "generation_password_invalid"},
		{"material_not_found", types.ErrMaterialNotFound, http.StatusNotFound, "material_not_found"},
		{"email_exists", types.ErrEmailAlreadyExists, http.StatusConflict, "email_exists"},
		{"no_generated_content", types.ErrNoGeneratedContent, http.StatusConflict, "no_generated_content"},
		{"generation_failed", types.ErrGenerationFailed, http.StatusBadGateway, "generation_failed"},
		{"unknown_error", fmt.Errorf("pq: connection refused"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			RespondMappedError(c, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status: want=%d got=%d", tc.wantStatus, rec.Code)
			}
			var envelope ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if envelope.Error.Code != tc.wantCode {
				t.Fatalf("code: want=%q got=%q", tc.wantCode, envelope.Error.Code)
			}
			if tc.wantCode == "internal_error" && envelope.Error.Message != "internal server error" {
				t.Fatalf("internal errors must not leak details, got %q", envelope.Error.Message)
			}
		})
	}
}
