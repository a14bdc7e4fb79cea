package account

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when the identifier/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

// FieldErrors maps request fields to validation messages, mirroring the
// 422 body shape the API returns.
type FieldErrors map[string][]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		parts = append(parts, strings.Join(fe[k], " "))
	}
	return strings.Join(parts, " ")
}

// Service handles register/login/profile flows.
type Service struct {
	users       userrepo.Repository
	tokens      *tokenManager
	tokenTTL    time.Duration
	passwordMin int
}

// New creates a Service with sane defaults.
func New(users userrepo.Repository, tokens tokenrepo.Repository) *Service {
	return &Service{
		users:       users,
		tokens:      newTokenManager(tokens),
		tokenTTL:    48 * time.Hour,
		passwordMin: 8,
	}
}

// RegisterInput captures fields expected by the register endpoint.
type RegisterInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Phone                string `json:"phone_number"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Register creates a new account after validating the payload.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	fe := FieldErrors{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		fe["name"] = append(fe["name"], "The name field is required.")
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		fe["email"] = append(fe["email"], "A valid email address is required.")
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		fe["password"] = append(fe["password"], err.Error())
	}
	if password != strings.TrimSpace(in.PasswordConfirmation) {
		fe["password_confirmation"] = append(fe["password_confirmation"], "The password confirmation does not match.")
	}
	if len(fe) > 0 {
		return nil, fe
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, domain.User{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hashed),
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, FieldErrors{"email": {"The email has already been taken."}}
		}
		return nil, err
	}
	return u, nil
}

// Login validates credentials and returns the user plus an issued token.
// The identifier is matched against email when it contains an '@',
// otherwise against the phone number.
func (s *Service) Login(ctx context.Context, identifier, password string) (*domain.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	password = strings.TrimSpace(password)
	if identifier == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	var (
		u   *domain.User
		err error
	)
	if strings.Contains(identifier, "@") {
		u, err = s.users.GetByEmail(ctx, identifier)
	} else {
		u, err = s.users.GetByPhone(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, u.ID, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Logout revokes the given token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// LookupByToken returns the user bound to a valid token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.User, error) {
	meta, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, meta.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile changes name and email for the given user.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, name, email string) (*domain.User, error) {
	fe := FieldErrors{}
	name = strings.TrimSpace(name)
	if name == "" {
		fe["name"] = append(fe["name"], "The name field is required.")
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		fe["email"] = append(fe["email"], "A valid email address is required.")
	}
	if len(fe) > 0 {
		return nil, fe
	}
	u, err := s.users.UpdateProfile(ctx, userID, name, email)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, FieldErrors{"email": {"The email has already been taken."}}
		}
		return nil, err
	}
	return u, nil
}

// ChangePassword verifies the current password and stores a new one.
// All other tokens for the user are revoked afterwards.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, newPassword, confirmation string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(strings.TrimSpace(current))); err != nil {
		return FieldErrors{"current_password": {"The current password is incorrect."}}
	}
	newPassword = strings.TrimSpace(newPassword)
	if err := validatePassword(newPassword, s.passwordMin); err != nil {
		return FieldErrors{"new_password": {err.Error()}}
	}
	if newPassword != strings.TrimSpace(confirmation) {
		return FieldErrors{"new_password_confirmation": {"The password confirmation does not match."}}
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return err
	}
	return s.tokens.RevokeAll(ctx, userID)
}

// TokenTTLSeconds exposes the token lifetime in seconds.
func (s *Service) TokenTTLSeconds() int {
	return int(s.tokenTTL.Seconds())
}

func validatePassword(p string, min int) error {
	if len(p) < min {
		return fmt.Errorf("password must be at least %d characters", min)
	}
	return nil
}
