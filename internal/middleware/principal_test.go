package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestPrincipal_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handlerCalled := false
	handler := func(c echo.Context) error {
		handlerCalled = true
		return c.String(http.StatusOK, "OK")
	}

	if err := Principal()(handler)(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
	if handlerCalled {
		t.Error("Handler should not be called without an identity header")
	}
}

func TestPrincipal_InvalidHeader(t *testing.T) {
	e := echo.New()

	for _, raw := range []string{"not-a-uuid", uuid.Nil.String()} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
		req.Header.Set(UserIDHeader, raw)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := func(c echo.Context) error {
			return c.String(http.StatusOK, "OK")
		}

		if err := Principal()(handler)(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Header %q: expected status 401, got %d", raw, rec.Code)
		}
	}
}

func TestPrincipal_ValidHeader(t *testing.T) {
	e := echo.New()
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set(UserIDHeader, userID.String())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen uuid.UUID
	handler := func(c echo.Context) error {
		seen = GetUserID(c)
		return c.String(http.StatusOK, "OK")
	}

	if err := Principal()(handler)(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if seen != userID {
		t.Errorf("Expected user ID %s in context, got %s", userID, seen)
	}
}

func TestGetUserID_Unset(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	if id := GetUserID(c); id != uuid.Nil {
		t.Errorf("Expected uuid.Nil for unauthenticated context, got %s", id)
	}
}
