package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"coliver/internal/middleware"
	"coliver/internal/models"
	"coliver/internal/observability"
	"coliver/internal/repository"
	"coliver/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for stored passwords.
const PasswordCost = 10

// Revoker records logged-out token IDs. It is optional; without one, logout only clears the cookie.
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthService struct {
	users    repository.UserRepository
	listings repository.ListingRepository
	tokens   *TokenManager
	revoker  Revoker
}

type RegisterInput struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	Bio         string `json:"bio"`
}

// Session is a freshly issued token for User.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// SessionState is the answer to "who is signed in".
type SessionState struct {
	Authenticated bool                  `json:"authenticated"`
	User          *models.PublicProfile `json:"user,omitempty"`
	SavedListings []string              `json:"savedListings"`
	Listings      []string              `json:"listings"`
}

func NewAuthService(
	users repository.UserRepository,
	listings repository.ListingRepository,
	tokens *TokenManager,
	revoker Revoker,
) *AuthService {
	return &AuthService{users: users, listings: listings, tokens: tokens, revoker: revoker}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = normalizeEmail(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Bio = strings.TrimSpace(in.Bio)

	errs := validation.Profile(in.FullName, in.Email, in.PhoneNumber, in.Bio)
	if err := validation.ValidatePassword(in.Password); err != nil {
		errs["password"] = err.Error()
	}
	if len(errs) > 0 {
		observability.AuthEvents.WithLabelValues("register", "invalid").Inc()
		return nil, models.NewFieldsValidationError(errs)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), PasswordCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		FullName:    in.FullName,
		Email:       in.Email,
		Password:    string(hash),
		PhoneNumber: in.PhoneNumber,
		Bio:         in.Bio,
	}
	if err := s.users.Create(ctx, user); err != nil {
		outcome := "error"
		if models.IsCode(err, models.CodeConflict) {
			outcome = "duplicate"
		}
		observability.AuthEvents.WithLabelValues("register", outcome).Inc()
		return nil, err
	}

	observability.AuthEvents.WithLabelValues("register", "success").Inc()
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		observability.AuthEvents.WithLabelValues("login", "unknown_email").Inc()
		return nil, models.NewCredentialError("email", "No account found with this email")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		observability.AuthEvents.WithLabelValues("login", "invalid_password").Inc()
		return nil, models.NewCredentialError("password", "Incorrect password")
	}

	observability.AuthEvents.WithLabelValues("login", "success").Inc()
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// Authenticate verifies token and returns its claims. Revocation lookups fail
// open: a Redis outage is logged and the token is accepted.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*SessionClaims, error) {
	if token == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid or expired session")
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "session revocation check failed",
				slog.String("error", err.Error()),
			)
		} else if revoked {
			return nil, models.NewUnauthorizedError("Session has been revoked")
		}
	}
	return claims, nil
}

// CheckSession reports the signed-in user. Token problems and vanished users
// yield an unauthenticated state; only store failures are returned as errors.
func (s *AuthService) CheckSession(ctx context.Context, token string) (*SessionState, error) {
	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return &SessionState{}, nil
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return &SessionState{}, nil
		}
		return nil, err
	}

	saved, err := s.users.SavedListingIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	owned, err := s.listings.IDsByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if saved == nil {
		saved = []string{}
	}
	if owned == nil {
		owned = []string{}
	}

	profile := user.Public()
	return &SessionState{
		Authenticated: true,
		User:          &profile,
		SavedListings: saved,
		Listings:      owned,
	}, nil
}

// Logout revokes token when a Revoker is configured. It never fails; the caller clears the cookie regardless.
func (s *AuthService) Logout(ctx context.Context, token string) {
	observability.AuthEvents.WithLabelValues("logout", "success").Inc()
	if s.revoker == nil || token == "" {
		return
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to revoke session",
			slog.String("error", err.Error()),
		)
	}
}
