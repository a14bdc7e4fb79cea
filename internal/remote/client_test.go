package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type staticToken string

func (s staticToken) Load(ctx context.Context) (string, error) {
	return string(s), nil
}

func testClient(t *testing.T, token string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := log.New(io.Discard, "", 0)
	return New(srv.URL, 5*time.Second, staticToken(token), logger)
}

func TestLoginSendsEmailOrPhone(t *testing.T) {
	var got map[string]string
	c := testClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(LoginResult{Token: "tok-1", User: User{ID: 7, Email: "a@b.c"}})
	})

	res, err := c.Login(context.Background(), "a@b.c", "", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token != "tok-1" || res.User.ID != 7 {
		t.Fatalf("unexpected result %+v", res)
	}
	if got["email"] != "a@b.c" || got["password"] != "secret" {
		t.Fatalf("unexpected payload %v", got)
	}
	if _, ok := got["phone_number"]; ok {
		t.Fatal("phone_number sent alongside email")
	}

	c = testClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(LoginResult{Token: "tok-2"})
	})
	if _, err := c.Login(context.Background(), "", "5551234", "secret"); err != nil {
		t.Fatalf("login by phone: %v", err)
	}
	if got["phone_number"] != "5551234" {
		t.Fatalf("unexpected payload %v", got)
	}
}

func TestBearerInjection(t *testing.T) {
	var header string
	c := testClient(t, "tok-9", func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(User{ID: 1})
	})

	if _, err := c.WhoAmI(context.Background()); err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if header != "Bearer tok-9" {
		t.Fatalf("authorization header = %q", header)
	}
}

func TestNoBearerWhenTokenAbsent(t *testing.T) {
	var header string
	c := testClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]Product{})
	})

	if _, err := c.Products(context.Background(), ""); err != nil {
		t.Fatalf("products: %v", err)
	}
	if header != "" {
		t.Fatalf("authorization header = %q, want empty", header)
	}
}

func TestRejectedCarriesServerMessage(t *testing.T) {
	c := testClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	})

	_, err := c.Login(context.Background(), "a@b.c", "", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsKind(err, KindRejected) {
		t.Fatalf("kind = %v, want rejected", err)
	}
	if got := UserMessage(err, "fallback"); got != "Invalid credentials" {
		t.Fatalf("message = %q", got)
	}
}

func TestValidationFlattensFieldErrors(t *testing.T) {
	c := testClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"message": "The given data was invalid.",
			"errors": map[string][]string{
				"email":    {"The email has already been taken."},
				"password": {"The password must be at least 8 characters."},
			},
		})
	})

	_, err := c.Register(context.Background(), RegisterInput{})
	if !IsKind(err, KindValidation) {
		t.Fatalf("kind = %v, want validation", err)
	}
	want := "The email has already been taken. The password must be at least 8 characters."
	if got := UserMessage(err, ""); got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
	var re *Error
	if !errors.As(err, &re) || len(re.Fields["email"]) != 1 {
		t.Fatalf("field errors not preserved: %+v", re)
	}
}

func TestSessionExpiredFiresHookOnce(t *testing.T) {
	c := testClient(t, "tok-stale", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Unauthenticated."})
	})
	fired := 0
	c.SetSessionExpiredHook(func() { fired++ })

	_, err := c.GetCart(context.Background())
	if !IsKind(err, KindSessionExpired) {
		t.Fatalf("kind = %v, want session expired", err)
	}
	if fired != 1 {
		t.Fatalf("hook fired %d times, want 1", fired)
	}
}

func TestUnauthenticatedEndpointNeverExpiresSession(t *testing.T) {
	c := testClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	})
	fired := 0
	c.SetSessionExpiredHook(func() { fired++ })

	_, err := c.Login(context.Background(), "a@b.c", "", "wrong")
	if !IsKind(err, KindRejected) {
		t.Fatalf("kind = %v, want rejected", err)
	}
	if fired != 0 {
		t.Fatalf("hook fired %d times, want 0", fired)
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := New(srv.URL, time.Second, staticToken(""), log.New(io.Discard, "", 0))

	_, err := c.Products(context.Background(), "")
	if !IsKind(err, KindNetwork) {
		t.Fatalf("kind = %v, want network", err)
	}
}
