package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceSchema_ListsAllMissingColumns(t *testing.T) {
	err := SourceSchema("Facebook.csv", []string{"clicks", "spend"})

	assert.Equal(t, CodeSchema, err.Code)
	assert.Contains(t, err.Message, `"clicks"`)
	assert.Contains(t, err.Message, `"spend"`)
	assert.Equal(t, http.StatusServiceUnavailable, err.StatusCode)
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", SourceIO(os.ErrNotExist, "Google.csv"))

	assert.Equal(t, CodeIO, CodeOf(wrapped))
	assert.ErrorIs(t, wrapped, os.ErrNotExist)
	assert.Equal(t, CodeInternal, CodeOf(io.EOF))
}

func TestWriteError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   ErrorCode
	}{
		{"validation", Validation("bad filter"), http.StatusBadRequest, CodeValidation},
		{"plain error", io.ErrUnexpectedEOF, http.StatusInternalServerError, CodeInternal},
		{"wrapped app error", fmt.Errorf("ctx: %w", SourceParse(io.EOF, "Business.csv", 3, "date")), http.StatusServiceUnavailable, CodeParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, logger, tt.err, "req-1")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp struct {
				Error   AppError `json:"error"`
				Success bool     `json:"success"`
			}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestWriteSuccessWithHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessWithHeaders(w, []int{1, 2}, map[string]string{"Cache-Control": "no-store"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"data":[1,2],"success":true}`, w.Body.String())
}
