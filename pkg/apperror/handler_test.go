package apperror

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func callHandler(t *testing.T, method string, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	handler := HTTPErrorHandler(slog.New(slog.DiscardHandler))

	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	handler(err, e.NewContext(req, rec))
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("response %v missing error envelope", resp)
	}
	return errObj
}

func TestHTTPErrorHandler_Sentinels(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "property not found",
			err:        ErrPropertyNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "property_not_found",
			wantMsg:    "Property not found",
		},
		{
			name:       "derived copy keeps code",
			err:        ErrValidation.WithMessage("Password must be at least 6 characters"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_error",
			wantMsg:    "Password must be at least 6 characters",
		},
		{
			name:       "id exhaustion is a server error",
			err:        ErrIDExhausted,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "id_exhausted",
			wantMsg:    "Could not allocate a unique property id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := callHandler(t, http.MethodGet, tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			errObj := errorBody(t, rec)
			if errObj["code"] != tt.wantCode {
				t.Errorf("code = %v, want %v", errObj["code"], tt.wantCode)
			}
			if errObj["message"] != tt.wantMsg {
				t.Errorf("message = %v, want %q", errObj["message"], tt.wantMsg)
			}
		})
	}
}

func TestHTTPErrorHandler_EchoErrorStatusMapping(t *testing.T) {
	// Errors raised inside echo itself (binding, routing) arrive as
	// *echo.HTTPError and must map onto the same code vocabulary.
	tests := []struct {
		status   int
		wantCode string
	}{
		{http.StatusUnauthorized, "unauthorized"},
		{http.StatusNotFound, "not_found"},
		{http.StatusConflict, "conflict"},
		{http.StatusUnprocessableEntity, "validation_error"},
	}

	for _, tt := range tests {
		rec := callHandler(t, http.MethodGet, echo.NewHTTPError(tt.status, "boom"))
		if rec.Code != tt.status {
			t.Errorf("status = %d, want %d", rec.Code, tt.status)
		}
		errObj := errorBody(t, rec)
		if errObj["code"] != tt.wantCode {
			t.Errorf("status %d: code = %v, want %v", tt.status, errObj["code"], tt.wantCode)
		}
		if errObj["message"] != "boom" {
			t.Errorf("status %d: message = %v", tt.status, errObj["message"])
		}
	}
}

func TestHTTPErrorHandler_HeadRequestHasNoBody(t *testing.T) {
	rec := callHandler(t, http.MethodHead, ErrPropertyNotFound)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD response body = %d bytes, want empty", rec.Body.Len())
	}
}

func TestHTTPErrorHandler_CommittedResponseUntouched(t *testing.T) {
	e := echo.New()
	handler := HTTPErrorHandler(slog.New(slog.DiscardHandler))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte("already written"))

	handler(ErrBadRequest, c)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d after commit", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "already written" {
		t.Errorf("body = %q, want untouched", rec.Body.String())
	}
}
