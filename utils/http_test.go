package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := WriteJSON(w, http.StatusOK, map[string]string{"login": "admin"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"login":"admin"}`, w.Body.String())
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, WriteJSON(w, http.StatusAccepted, nil))

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteOKAndCreated(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteOK(w, map[string]bool{"granted": true}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"granted":true}}`, w.Body.String())

	w = httptest.NewRecorder()
	require.NoError(t, WriteCreated(w, map[string]string{"login": "new"}))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"data":{"login":"new"}}`, w.Body.String())
}

func TestErrorWriters(t *testing.T) {
	tests := []struct {
		name        string
		write       func(w http.ResponseWriter) error
		wantStatus  int
		wantError   string
		wantMessage string
	}{
		{
			name:        "bad request",
			write:       func(w http.ResponseWriter) error { return WriteBadRequest(w, "Bad login", nil) },
			wantStatus:  http.StatusBadRequest,
			wantError:   "bad_request",
			wantMessage: "Bad login",
		},
		{
			name:        "unauthorized default message",
			write:       func(w http.ResponseWriter) error { return WriteUnauthorized(w, "") },
			wantStatus:  http.StatusUnauthorized,
			wantError:   "unauthorized",
			wantMessage: "Authentication required",
		},
		{
			name:        "forbidden default message",
			write:       func(w http.ResponseWriter) error { return WriteForbidden(w, "") },
			wantStatus:  http.StatusForbidden,
			wantError:   "forbidden",
			wantMessage: "Access forbidden",
		},
		{
			name:        "not found",
			write:       func(w http.ResponseWriter) error { return WriteNotFound(w, "user not found") },
			wantStatus:  http.StatusNotFound,
			wantError:   "not_found",
			wantMessage: "user not found",
		},
		{
			name:        "conflict",
			write:       func(w http.ResponseWriter) error { return WriteConflict(w, "login already exists", nil) },
			wantStatus:  http.StatusConflict,
			wantError:   "conflict",
			wantMessage: "login already exists",
		},
		{
			name:        "internal default message",
			write:       func(w http.ResponseWriter) error { return WriteInternalServerError(w, "") },
			wantStatus:  http.StatusInternalServerError,
			wantError:   "internal_error",
			wantMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, tt.write(w))

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Login string `json:"login"`
	}

	t.Run("decodes object", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"login":"admin"}`))
		var b body
		require.NoError(t, DecodeJSON(req, &b))
		assert.Equal(t, "admin", b.Login)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"login":"a","role":"x"}`))
		var b body
		assert.Error(t, DecodeJSON(req, &b))
	})

	t.Run("rejects empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var b body
		assert.EqualError(t, DecodeJSON(req, &b), "request body is empty")
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"login":"a"}{"login":"b"}`))
		var b body
		assert.Error(t, DecodeJSON(req, &b))
	})
}
