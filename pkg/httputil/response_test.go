package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/clinicore/booking-api/pkg/errors"
)

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "not found", err: apperrors.NotFound("appointment", nil), wantStatus: http.StatusNotFound},
		{name: "bad request", err: apperrors.BadRequest("bad", nil), wantStatus: http.StatusBadRequest},
		{name: "invalid day of week", err: apperrors.InvalidDayOfWeek(7), wantStatus: http.StatusBadRequest},
		{name: "invalid interval", err: apperrors.InvalidInterval("inverted"), wantStatus: http.StatusBadRequest},
		{name: "slot conflict", err: apperrors.SlotConflict(), wantStatus: http.StatusConflict},
		{name: "invalid transition", err: apperrors.InvalidTransition("scheduled", "completed"), wantStatus: http.StatusConflict},
		{name: "duplicate special day", err: apperrors.DuplicateSpecialDay("2025-03-10"), wantStatus: http.StatusConflict},
		{name: "duplicate payment", err: apperrors.DuplicatePayment(uuid.NewString()), wantStatus: http.StatusConflict},
		{name: "outside working hours", err: apperrors.OutsideWorkingHours(), wantStatus: http.StatusUnprocessableEntity},
		{name: "unauthorized", err: apperrors.Unauthorized(nil), wantStatus: http.StatusUnauthorized},
		{name: "plain error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			RespondWithError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}
