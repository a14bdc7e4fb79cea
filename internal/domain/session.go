package domain

// SessionStatus tracks where the client session is in its lifecycle.
type SessionStatus int

const (
	// SessionBootstrapping is the initial state before the stored token
	// has been checked against the identity endpoint.
	SessionBootstrapping SessionStatus = iota
	// SessionAuthenticated means a validated user is attached.
	SessionAuthenticated
	// SessionAnonymous means no valid credential is held.
	SessionAnonymous
)

func (s SessionStatus) String() string {
	switch s {
	case SessionBootstrapping:
		return "bootstrapping"
	case SessionAuthenticated:
		return "authenticated"
	case SessionAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// Session is the single in-memory authentication state of a running client.
// User is non-nil exactly when Status is SessionAuthenticated.
type Session struct {
	Token  string
	User   *User
	Status SessionStatus
}

// IsAuthenticated reports whether the session carries a validated user.
func (s Session) IsAuthenticated() bool {
	return s.Status == SessionAuthenticated && s.User != nil
}
