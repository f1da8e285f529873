package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"intranet-cesfam/backend/config"
	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRevocation struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevocation) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], s.err
}

type stubUsers struct {
	users map[int64]*model.User
	err   error
}

func (s *stubUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func deptPtr(id int64) *int64 { return &id }

func testManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:               "middleware-test-secret",
		AccessTokenTTL:          time.Minute,
		RefreshTokenTTLDefault:  time.Hour,
		RefreshTokenTTLRemember: 24 * time.Hour,
	})
}

// echoActor reports what JWTAuth injected
func echoActor(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id":       c.GetInt64("user_id"),
		"role":          c.GetString("role"),
		"department_id": c.GetInt64("department_id"),
	})
}

func doGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── JWTAuth ──

func TestJWTAuth_ValidToken(t *testing.T) {
	mgr := testManager()
	token, err := mgr.GenerateAccessToken(jwt.Subject{UserID: 7, Role: "department_head", DepartmentID: 3})
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.GET("/p", JWTAuth(mgr, nil, nil), echoActor)
	w := doGet(r, token)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`"user_id":7`, `"role":"department_head"`, `"department_id":3`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in %s", want, body)
		}
	}
}

func TestJWTAuth_Rejects(t *testing.T) {
	mgr := testManager()
	refresh, _ := mgr.GenerateRefreshToken(jwt.Subject{UserID: 7, Role: "staff"}, false)
	other := jwt.NewManager(&config.AuthConfig{JWTSecret: "some-other-secret-value", AccessTokenTTL: time.Minute})
	foreign, _ := other.GenerateAccessToken(jwt.Subject{UserID: 7, Role: "staff"})

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage", "Bearer not-a-token"},
		{"refresh token", "Bearer " + refresh},
		{"wrong secret", "Bearer " + foreign},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/p", JWTAuth(mgr, nil, nil), echoActor)
			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestJWTAuth_RevokedToken(t *testing.T) {
	mgr := testManager()
	token, _ := mgr.GenerateAccessToken(jwt.Subject{UserID: 7, Role: "staff"})
	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.GET("/p", JWTAuth(mgr, &stubRevocation{revoked: map[string]bool{claims.ID: true}}, nil), echoActor)
	w := doGet(r, token)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a revoked token, got %d", w.Code)
	}
}

func TestJWTAuth_RevocationLookupFailsOpen(t *testing.T) {
	mgr := testManager()
	token, _ := mgr.GenerateAccessToken(jwt.Subject{UserID: 7, Role: "staff"})

	r := gin.New()
	r.GET("/p", JWTAuth(mgr, &stubRevocation{err: errors.New("redis down")}, nil), echoActor)
	w := doGet(r, token)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 when the blacklist is unreachable, got %d", w.Code)
	}
}

func TestJWTAuth_StoredAccountWins(t *testing.T) {
	mgr := testManager()
	// issued while user 7 still headed department 3
	token, _ := mgr.GenerateAccessToken(jwt.Subject{UserID: 7, Role: "department_head", DepartmentID: 3})
	users := &stubUsers{users: map[int64]*model.User{
		7: {ID: 7, Role: model.RoleStaff, DepartmentID: deptPtr(3)},
	}}

	r := gin.New()
	r.GET("/p", JWTAuth(mgr, nil, users), echoActor)
	w := doGet(r, token)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, `"role":"staff"`) {
		t.Errorf("expected the stored role, got %s", body)
	}
}

func TestJWTAuth_DemotedHeadCannotReviewManagerStage(t *testing.T) {
	mgr := testManager()
	token, _ := mgr.GenerateAccessToken(jwt.Subject{UserID: 7, Role: "department_head", DepartmentID: 3})
	users := &stubUsers{users: map[int64]*model.User{
		7: {ID: 7, Role: model.RoleStaff, DepartmentID: deptPtr(3)},
	}}

	r := gin.New()
	r.GET("/p", JWTAuth(mgr, nil, users), func(c *gin.Context) {
		actor := policy.Actor{
			UserID:       c.GetInt64("user_id"),
			Role:         model.Role(c.GetString("role")),
			DepartmentID: c.GetInt64("department_id"),
		}
		if err := policy.CanReview(policy.StageManager, actor, 3); err != nil {
			c.Status(http.StatusForbidden)
			return
		}
		c.Status(http.StatusOK)
	})
	w := doGet(r, token)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for a demoted head at the manager stage, got %d", w.Code)
	}
}

func TestJWTAuth_DeletedAccount(t *testing.T) {
	mgr := testManager()
	token, _ := mgr.GenerateAccessToken(jwt.Subject{UserID: 7, Role: "staff"})

	r := gin.New()
	r.GET("/p", JWTAuth(mgr, nil, &stubUsers{users: map[int64]*model.User{}}), echoActor)
	w := doGet(r, token)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a deleted account, got %d", w.Code)
	}
}

func TestJWTAuth_AccountLookupFails(t *testing.T) {
	mgr := testManager()
	token, _ := mgr.GenerateAccessToken(jwt.Subject{UserID: 7, Role: "staff"})

	r := gin.New()
	r.GET("/p", JWTAuth(mgr, nil, &stubUsers{err: errors.New("connection refused")}), echoActor)
	w := doGet(r, token)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when the account cannot be loaded, got %d", w.Code)
	}
}

// ── RoleAuth ──

func TestRoleAuth(t *testing.T) {
	cases := []struct {
		role model.Role
		want int
	}{
		{model.RoleAdmin, http.StatusOK},
		{model.RoleDirector, http.StatusOK},
		{model.RoleDepartmentHead, http.StatusForbidden},
		{model.RoleStaff, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			r := gin.New()
			r.GET("/p", func(c *gin.Context) {
				c.Set("role", string(tc.role))
				c.Next()
			}, RoleAuth(model.RoleDirector, model.RoleAdmin), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			w := doGet(r, "")

			if w.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestRoleAuth_NoRole(t *testing.T) {
	r := gin.New()
	r.GET("/p", RoleAuth(model.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := doGet(r, "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ── BodyLimit ──

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/p", BodyLimit(8), func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/p", strings.NewReader("short")))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 under the limit, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/p", strings.NewReader("far too long for the limit")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 over the limit, got %d", w.Code)
	}
}

func TestBodyLimit_StreamedBody(t *testing.T) {
	r := gin.New()
	r.POST("/p", BodyLimit(8), func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/p", strings.NewReader("far too long for the limit"))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 for an unsized body, got %d", w.Code)
	}
}

// ── RequestID ──

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/p", RequestID(), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected propagated id, got %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
	if got := w.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Errorf("expected generated uuid, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("X-Request-ID", "abc\nforged log line")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); strings.Contains(got, "forged") {
		t.Errorf("expected unsafe id to be replaced, got %q", got)
	}
}

// ── CORS ──

func preflight(r *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/p", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://intranet.example.cl/"}))
	r.GET("/p", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.OPTIONS("/p", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := preflight(r, "https://intranet.example.cl")
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 for an allowed preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://intranet.example.cl" {
		t.Errorf("unexpected allow-origin %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected credentials to be allowed, got %q", got)
	}

	w = preflight(r, "https://evil.example.com")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for a foreign preflight, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected simple request to pass through, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin must not be echoed, got %q", got)
	}
}

// ── SecurityHeaders ──

func TestSecurityHeaders_HandlerMayOverrideCaching(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/json", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/avatar", func(c *gin.Context) {
		c.Header("Cache-Control", "private, max-age=300")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/json", nil))
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("expected no-store by default, got %q", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}
	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS must not be sent over plain http, got %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/avatar", nil))
	if got := w.Header().Get("Cache-Control"); got != "private, max-age=300" {
		t.Errorf("expected handler override, got %q", got)
	}
}
