package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"budgetly/internal/core"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", core.ErrFutureDate, http.StatusUnprocessableEntity, "future_date"},
		{"wrapped validation", fmt.Errorf("add: %w", core.ErrInvalidAmount), http.StatusUnprocessableEntity, "invalid_amount"},
		{"bad request", fmt.Errorf("%w: eof", errBadRequest), http.StatusBadRequest, "bad_request"},
		{"internal", errors.New("disk full"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.code, decodeBody[ErrorResponse](t, rec).Code)
		})
	}
}
