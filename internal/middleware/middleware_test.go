package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/core"
	"github.com/fatbomb/MealManagement/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier map[string]*auth.Token

func (s stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if tok, ok := s[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("token rejected")
}

type stubUsers map[string]*models.User

func (s stubUsers) GetByID(_ context.Context, userID string) (*models.User, error) {
	if userID == "broken" {
		return nil, errors.New("store unavailable")
	}
	if u, ok := s[userID]; ok {
		return u, nil
	}
	return nil, core.ErrUserNotFound
}

type stubRoster models.RoleAssignments

func (s stubRoster) GetRoster(context.Context) (*models.RoleAssignments, error) {
	roles := models.RoleAssignments(s)
	return &roles, nil
}

func newAuthRouter() *gin.Engine {
	verifier := stubVerifier{
		"manager-token": {UID: "m1", Claims: map[string]interface{}{"email": "m1@example.com"}},
		"admin-token":   {UID: "a1", Claims: map[string]interface{}{"name": "Admin", "admin": true}},
		"new-token":     {UID: "n1", Claims: map[string]interface{}{"email": "n1@example.com"}},
		"broken-token":  {UID: "broken", Claims: map[string]interface{}{}},
	}
	users := stubUsers{"m1": {ID: "m1", Name: "Rahim", IsMessManager: true}}
	m := NewAuthMiddleware(verifier, users, nil, zap.NewNop())

	r := gin.New()
	r.Use(RequestID())
	authed := r.Group("/", m.VerifyToken())
	authed.GET("/whoami", func(c *gin.Context) {
		identity, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, identity)
	})
	authed.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestVerifyToken(t *testing.T) {
	r := newAuthRouter()

	tests := []struct {
		name       string
		header     string
		path       string
		wantStatus int
	}{
		{name: "missing header", path: "/whoami", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", path: "/whoami", wantStatus: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", path: "/whoami", wantStatus: http.StatusUnauthorized},
		{name: "manager", header: "Bearer manager-token", path: "/whoami", wantStatus: http.StatusOK},
		{name: "first sign-in", header: "bearer new-token", path: "/whoami", wantStatus: http.StatusOK},
		{name: "profile store down", header: "Bearer broken-token", path: "/whoami", wantStatus: http.StatusServiceUnavailable},
		{name: "admin route as manager", header: "Bearer manager-token", path: "/admin", wantStatus: http.StatusForbidden},
		{name: "admin route as admin", header: "Bearer admin-token", path: "/admin", wantStatus: http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestVerifyTokenResolvesMessManager(t *testing.T) {
	var got models.Identity
	verifier := stubVerifier{"t": {UID: "m1", Claims: map[string]interface{}{}}}
	m := NewAuthMiddleware(verifier, stubUsers{"m1": {ID: "m1", Name: "Rahim", IsMessManager: true}}, nil, zap.NewNop())

	r := gin.New()
	r.GET("/", m.VerifyToken(), func(c *gin.Context) {
		got, _ = IdentityFrom(c)
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer t")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if !got.IsMessManager || got.DisplayName != "Rahim" || got.IsAdmin {
		t.Fatalf("identity = %+v", got)
	}
}

func TestVerifyTokenResolvesManagedMonths(t *testing.T) {
	var got models.Identity
	verifier := stubVerifier{"t": {UID: "u1", Claims: map[string]interface{}{}}}
	roster := stubRoster{MessManager: []models.MonthManager{
		{MonthIndex: 2, Manager: "u1"},
		{MonthIndex: 2, Manager: "u2"},
		{MonthIndex: 0, Manager: "u1"},
	}}
	m := NewAuthMiddleware(verifier, stubUsers{"u1": {ID: "u1", Name: "Karim"}}, roster, zap.NewNop())

	r := gin.New()
	r.GET("/", m.VerifyToken(), func(c *gin.Context) {
		got, _ = IdentityFrom(c)
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer t")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if got.IsMessManager {
		t.Fatal("rostered user got the standing mess manager flag")
	}
	if len(got.ManagedMonths) != 2 || got.ManagedMonths[0] != time.January || got.ManagedMonths[1] != time.March {
		t.Fatalf("ManagedMonths = %v, want [January March]", got.ManagedMonths)
	}
	if !got.ManagesMonth(time.March) || got.ManagesMonth(time.April) {
		t.Fatalf("ManagesMonth mismatch for %v", got.ManagedMonths)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	if generated == "" || w.Body.String() != generated {
		t.Fatalf("generated id header %q body %q", generated, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("propagated id = %q, want abc-123", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}
