package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/service/account"
)

func TestLoginHandler_Success(t *testing.T) {
	accounts := &stubAccountSvc{
		user:  &domain.User{ID: 1, Name: "Ada", Email: "ada@example.com", Phone: "0712345678"},
		token: "issued-token",
	}
	router := testRouter(t, Deps{AccountSvc: accounts})

	body := `{"email":"ada@example.com","password":"Secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token != "issued-token" || resp.User.Email != "ada@example.com" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	accounts := &stubAccountSvc{loginErr: account.ErrInvalidCredentials}
	router := testRouter(t, Deps{AccountSvc: accounts})

	body := `{"email":"ada@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["message"] != "Invalid credentials" {
		t.Fatalf("unexpected message %q", resp["message"])
	}
}

func TestRegisterHandler_FieldErrors(t *testing.T) {
	accounts := &stubAccountSvc{regErr: account.FieldErrors{"email": {"The email has already been taken."}}}
	router := testRouter(t, Deps{AccountSvc: accounts})

	body := `{"name":"Ada","email":"ada@example.com","password":"Secret123","password_confirmation":"Secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != 422 {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var resp struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Errors["email"]) != 1 {
		t.Fatalf("expected email error, got %+v", resp.Errors)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testRouter(t, Deps{})

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	accounts := &stubAccountSvc{lookupErr: account.ErrInvalidToken}
	router := testRouter(t, Deps{AccountSvc: accounts})

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCurrentUserHandler(t *testing.T) {
	accounts := &stubAccountSvc{user: &domain.User{ID: 9, Name: "Ada", Email: "ada@example.com", Phone: "0712345678"}}
	router := testRouter(t, Deps{AccountSvc: accounts})

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != 9 || resp.Phone != "0712345678" {
		t.Fatalf("unexpected user %+v", resp)
	}
}

func TestLogoutHandler_RevokesPresentedToken(t *testing.T) {
	accounts := &stubAccountSvc{user: &domain.User{ID: 1}}
	router := testRouter(t, Deps{AccountSvc: accounts})

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.Header.Set("Authorization", "Bearer session-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(accounts.loggedOut) != 1 || accounts.loggedOut[0] != "session-token" {
		t.Fatalf("expected presented token revoked, got %v", accounts.loggedOut)
	}
}
