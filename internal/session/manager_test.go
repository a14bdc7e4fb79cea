package session

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/remote"
	"storefront/internal/tokenstore"
)

type stubAPI struct {
	mu          sync.Mutex
	loginRes    remote.LoginResult
	loginErr    error
	loginCalls  int
	loginEmail  string
	loginPhone  string
	loginBlock  chan struct{}
	logoutErr   error
	logoutCalls int
	whoamiRes   remote.User
	whoamiErr   error
	whoamiCalls int
}

func (s *stubAPI) Login(ctx context.Context, email, phone, password string) (remote.LoginResult, error) {
	s.mu.Lock()
	s.loginCalls++
	s.loginEmail, s.loginPhone = email, phone
	block := s.loginBlock
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	return s.loginRes, s.loginErr
}

func (s *stubAPI) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutCalls++
	return s.logoutErr
}

func (s *stubAPI) WhoAmI(ctx context.Context) (remote.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.whoamiCalls++
	return s.whoamiRes, s.whoamiErr
}

func newTestManager(api *stubAPI, store *tokenstore.Memory) *Manager {
	return New(api, store, log.New(io.Discard, "", 0))
}

func TestBootstrapWithoutTokenStaysOffline(t *testing.T) {
	api := &stubAPI{}
	m := newTestManager(api, tokenstore.NewMemory())

	if got := m.Current().Status; got != domain.SessionBootstrapping {
		t.Fatalf("initial status = %v", got)
	}

	m.Bootstrap(context.Background())

	if got := m.Current().Status; got != domain.SessionAnonymous {
		t.Fatalf("status = %v, want anonymous", got)
	}
	if api.whoamiCalls != 0 {
		t.Fatalf("whoami called %d times without a token", api.whoamiCalls)
	}
}

func TestBootstrapRestoresValidToken(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemory()
	store.Save(ctx, "tok-1")
	api := &stubAPI{whoamiRes: remote.User{ID: 4, Name: "Dana", Email: "dana@example.com"}}
	m := newTestManager(api, store)

	m.Bootstrap(ctx)

	cur := m.Current()
	if cur.Status != domain.SessionAuthenticated {
		t.Fatalf("status = %v, want authenticated", cur.Status)
	}
	if cur.Token != "tok-1" || cur.User == nil || cur.User.ID != 4 {
		t.Fatalf("unexpected session %+v", cur)
	}
}

func TestBootstrapPurgesRejectedToken(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemory()
	store.Save(ctx, "tok-stale")
	api := &stubAPI{whoamiErr: &remote.Error{Kind: remote.KindSessionExpired, Status: 401}}
	m := newTestManager(api, store)

	m.Bootstrap(ctx)

	if got := m.Current().Status; got != domain.SessionAnonymous {
		t.Fatalf("status = %v, want anonymous", got)
	}
	if tok, _ := store.Load(ctx); tok != "" {
		t.Fatalf("token %q survived a failed bootstrap", tok)
	}
}

func TestLoginIdentifierRouting(t *testing.T) {
	ctx := context.Background()
	api := &stubAPI{loginRes: remote.LoginResult{Token: "tok-1", User: remote.User{ID: 1}}}
	m := newTestManager(api, tokenstore.NewMemory())

	if _, err := m.Login(ctx, "a@b.c", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if api.loginEmail != "a@b.c" || api.loginPhone != "" {
		t.Fatalf("identifier routed as email=%q phone=%q", api.loginEmail, api.loginPhone)
	}

	if _, err := m.Login(ctx, "5551234", "pw"); err != nil {
		t.Fatalf("login by phone: %v", err)
	}
	if api.loginEmail != "" || api.loginPhone != "5551234" {
		t.Fatalf("identifier routed as email=%q phone=%q", api.loginEmail, api.loginPhone)
	}
}

func TestLoginPersistsTokenAndNotifies(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemory()
	api := &stubAPI{loginRes: remote.LoginResult{Token: "tok-7", User: remote.User{ID: 7, Name: "Gil"}}}
	m := newTestManager(api, store)

	var seen []domain.SessionStatus
	m.Subscribe(func(s domain.Session) { seen = append(seen, s.Status) })

	user, err := m.Login(ctx, "gil@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != 7 {
		t.Fatalf("user = %+v", user)
	}
	if tok, _ := store.Load(ctx); tok != "tok-7" {
		t.Fatalf("stored token = %q", tok)
	}
	if len(seen) != 1 || seen[0] != domain.SessionAuthenticated {
		t.Fatalf("listener saw %v, want one authenticated transition", seen)
	}
}

func TestLoginFailureCarriesServerMessage(t *testing.T) {
	api := &stubAPI{loginErr: &remote.Error{Kind: remote.KindRejected, Status: 401, Message: "Invalid credentials"}}
	m := newTestManager(api, tokenstore.NewMemory())

	_, err := m.Login(context.Background(), "a@b.c", "wrong")
	var lf *LoginFailedError
	if !errors.As(err, &lf) {
		t.Fatalf("error = %v, want LoginFailedError", err)
	}
	if lf.Message != "Invalid credentials" {
		t.Fatalf("message = %q", lf.Message)
	}
	if !remote.IsKind(err, remote.KindRejected) {
		t.Fatalf("underlying kind lost: %v", err)
	}
	if got := m.Current().Status; got != domain.SessionBootstrapping {
		t.Fatalf("failed login changed status to %v", got)
	}
}

func TestLoginSingleFlight(t *testing.T) {
	block := make(chan struct{})
	api := &stubAPI{
		loginRes:   remote.LoginResult{Token: "tok-1"},
		loginBlock: block,
	}
	m := newTestManager(api, tokenstore.NewMemory())

	done := make(chan error, 1)
	go func() {
		_, err := m.Login(context.Background(), "a@b.c", "pw")
		done <- err
	}()

	// Wait for the first attempt to reach the remote call.
	deadline := time.After(2 * time.Second)
	for {
		api.mu.Lock()
		started := api.loginCalls > 0
		api.mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first login never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := m.Login(context.Background(), "a@b.c", "pw"); !errors.Is(err, ErrLoginInFlight) {
		t.Fatalf("second login = %v, want ErrLoginInFlight", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first login: %v", err)
	}
	if api.loginCalls != 1 {
		t.Fatalf("remote login called %d times, want 1", api.loginCalls)
	}
}

func TestLogoutClearsEvenWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemory()
	store.Save(ctx, "tok-1")
	api := &stubAPI{
		whoamiRes: remote.User{ID: 1},
		logoutErr: &remote.Error{Kind: remote.KindNetwork, Message: "could not reach the server"},
	}
	m := newTestManager(api, store)
	m.Bootstrap(ctx)

	m.Logout(ctx)

	if api.logoutCalls != 1 {
		t.Fatalf("remote logout called %d times", api.logoutCalls)
	}
	if got := m.Current().Status; got != domain.SessionAnonymous {
		t.Fatalf("status = %v, want anonymous", got)
	}
	if tok, _ := store.Load(ctx); tok != "" {
		t.Fatalf("token %q survived logout", tok)
	}
}

func TestLogoutWhileAnonymousSkipsRemote(t *testing.T) {
	api := &stubAPI{}
	m := newTestManager(api, tokenstore.NewMemory())
	m.Bootstrap(context.Background())

	m.Logout(context.Background())

	if api.logoutCalls != 0 {
		t.Fatalf("remote logout called %d times while anonymous", api.logoutCalls)
	}
}

func TestHandleSessionExpired(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemory()
	store.Save(ctx, "tok-1")
	api := &stubAPI{whoamiRes: remote.User{ID: 1}}
	m := newTestManager(api, store)
	m.Bootstrap(ctx)

	var notified int
	m.Subscribe(func(domain.Session) { notified++ })

	m.HandleSessionExpired()

	if got := m.Current().Status; got != domain.SessionAnonymous {
		t.Fatalf("status = %v, want anonymous", got)
	}
	if tok, _ := store.Load(ctx); tok != "" {
		t.Fatalf("token %q survived expiry", tok)
	}
	if api.logoutCalls != 0 {
		t.Fatal("expiry must not call remote logout")
	}
	if notified != 1 {
		t.Fatalf("listener notified %d times, want 1", notified)
	}
}
