package service

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"quartermaster/internal/access"
	"quartermaster/internal/auth"
	"quartermaster/internal/featureflags"
	"quartermaster/internal/models"
	"quartermaster/internal/repository"
	"quartermaster/internal/validation"
)

// errInvalidCredentials is shared by every sign-in failure so callers cannot
// tell an unknown email from a wrong password.
const errInvalidCredentials = "Invalid email or password"

const errGoogleAccountMismatch = "This account cannot sign in with Google"

type AuthService struct {
	userRepo    repository.UserRepository
	tokens      *auth.TokenManager
	revocations *auth.RevocationStore
	roles       *access.RoleAssigner
	flags       *featureflags.Manager
}

type SignInInput struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

type GoogleSignInInput struct {
	Email    string `json:"email" validate:"notblank"`
	FullName string `json:"full_name" validate:"max=200"`
	GoogleID string `json:"google_id" validate:"notblank,max=128"`
}

// AuthResult is a freshly issued session.
type AuthResult struct {
	Token string
	User  *models.User
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokens *auth.TokenManager,
	revocations *auth.RevocationStore,
	roles *access.RoleAssigner,
	flags *featureflags.Manager,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		tokens:      tokens,
		revocations: revocations,
		roles:       roles,
		flags:       flags,
	}
}

func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (*AuthResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	hash := ""
	if user != nil {
		hash = user.Password
	}
	if !auth.VerifyPassword(hash, in.Password) || user == nil {
		return nil, models.NewUnauthorizedError(errInvalidCredentials)
	}
	return s.issue(user)
}

// GoogleSignIn signs in with an identity-provider profile, provisioning the
// account on first use when the email is eligible.
func (s *AuthService) GoogleSignIn(ctx context.Context, in GoogleSignInInput) (*AuthResult, error) {
	if !s.flags.EnabledOrDefault(featureflags.GoogleSignIn, true) {
		return nil, models.NewForbiddenError("Google sign-in is disabled")
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	email := validation.NormalizeEmail(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	googleID := strings.TrimSpace(in.GoogleID)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if !linkedTo(user, googleID) {
			return nil, models.NewUnauthorizedError(errGoogleAccountMismatch)
		}
		return s.issue(user)
	}

	if !s.roles.Eligible(email) {
		return nil, models.NewValidationError("invalid email format")
	}

	placeholder, err := auth.UnusablePasswordHash()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user = &models.User{
		Email:    email,
		Password: placeholder,
		FullName: strings.TrimSpace(in.FullName),
		Role:     s.roles.Assign(email),
		GoogleID: &googleID,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if !models.HasCode(err, models.CodeConflict) {
			return nil, err
		}
		// Lost a race with a concurrent first sign-in; use the winner's row.
		user, err = s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, models.NewConflictError("User already exists")
		}
		if !linkedTo(user, googleID) {
			return nil, models.NewUnauthorizedError(errGoogleAccountMismatch)
		}
	}
	return s.issue(user)
}

// SignOut revokes the token until it would have expired.
func (s *AuthService) SignOut(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Me returns the caller's profile.
func (s *AuthService) Me(ctx context.Context, p *access.Principal) (*models.User, error) {
	if err := access.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, p.UserID)
}

// linkedTo reports whether user was provisioned by the provider under
// googleID. Password accounts carry no provider id and never match.
func linkedTo(user *models.User, googleID string) bool {
	if user.GoogleID == nil || googleID == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*user.GoogleID), []byte(googleID)) == 1
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
