package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"idcore/api/internal/apperr"
	"idcore/api/internal/cache"
	"idcore/api/internal/config"
	"idcore/api/internal/domain"
	"idcore/api/internal/ids"
	"idcore/api/internal/repository"
)

// AuthService orchestrates registration, both login surfaces, logout,
// and refresh-token rotation against the repository collaborators.
type AuthService struct {
	users       repository.UserRepository
	sessions    repository.SessionRepository
	tokens      repository.TokenRepository
	revocations *cache.RevocationCache
	cfg         *config.AuthConfig
	log         zerolog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tokens repository.TokenRepository,
	revocations *cache.RevocationCache,
	cfg *config.AuthConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		sessions:    sessions,
		tokens:      tokens,
		revocations: revocations,
		cfg:         cfg,
		log:         log,
	}
}

// UserView is the public projection of a user. It never carries the
// password hash.
type UserView struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Bio           *string   `json:"bio,omitempty"`
	AvatarURL     *string   `json:"avatar_url,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

func viewOf(user *domain.User) UserView {
	return UserView{
		ID:            user.ID,
		Email:         user.Email.String(),
		Name:          user.Name,
		Bio:           user.Bio,
		AvatarURL:     user.AvatarURL,
		EmailVerified: user.EmailVerified,
		IsActive:      user.IsActive,
		CreatedAt:     user.CreatedAt,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Register creates a new user. A duplicate email fails with a conflict
// whether it is caught by the lookup or by the database constraint.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (UserView, error) {
	email, err := domain.NewEmail(input.Email)
	if err != nil {
		return UserView{}, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return UserView{}, apperr.Conflict("Email already exists")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return UserView{}, apperr.Internal("failed to check email uniqueness", err)
	}

	user, err := domain.NewUser(email, input.Password, input.Name)
	if err != nil {
		return UserView{}, err
	}

	if err := s.users.Save(ctx, user); err != nil {
		// The lookup above races with concurrent registrations; the
		// unique constraint is the authoritative guard.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return UserView{}, apperr.Conflict("Email already exists")
		}
		return UserView{}, apperr.Internal("failed to save user", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return viewOf(user), nil
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// WebLoginResult carries the session whose id and CSRF token the web
// layer turns into cookies.
type WebLoginResult struct {
	User    UserView
	Session *domain.Session
}

// APILoginResult carries the freshly minted token pair.
type APILoginResult struct {
	User      UserView
	TokenPair domain.TokenPair
}

// authenticate resolves the shared credential path of both login
// surfaces. Unknown email and wrong password return the same error so
// accounts cannot be enumerated.
func (s *AuthService) authenticate(ctx context.Context, rawEmail, password string) (*domain.User, error) {
	email, err := domain.NewEmail(rawEmail)
	if err != nil {
		return nil, apperr.Authentication("Invalid email or password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.Authentication("Invalid email or password")
		}
		return nil, apperr.Internal("failed to look up user", err)
	}

	ok, err := user.VerifyPassword(password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Authentication("Invalid email or password")
	}

	if !user.CanLogin() {
		return nil, apperr.Authentication("Account is not active")
	}

	return user, nil
}

// LoginWeb authenticates and replaces any existing session for the
// user with a fresh one.
func (s *AuthService) LoginWeb(ctx context.Context, input LoginInput) (WebLoginResult, error) {
	user, err := s.authenticate(ctx, input.Email, input.Password)
	if err != nil {
		return WebLoginResult{}, err
	}

	if err := s.sessions.DeleteByUserID(ctx, user.ID); err != nil {
		return WebLoginResult{}, apperr.Internal("failed to delete prior sessions", err)
	}

	session, err := domain.NewSession(user.ID, input.IPAddress, input.UserAgent, s.cfg.SessionTTL)
	if err != nil {
		return WebLoginResult{}, apperr.Internal("failed to create session", err)
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return WebLoginResult{}, apperr.Internal("failed to save session", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("session_id", session.ID).Msg("web login")
	return WebLoginResult{User: viewOf(user), Session: session}, nil
}

// LoginAPI authenticates and issues a token pair, persisting both
// records to the revocation ledger.
func (s *AuthService) LoginAPI(ctx context.Context, input LoginInput) (APILoginResult, error) {
	user, err := s.authenticate(ctx, input.Email, input.Password)
	if err != nil {
		return APILoginResult{}, err
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return APILoginResult{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("api login")
	return APILoginResult{User: viewOf(user), TokenPair: pair}, nil
}

func (s *AuthService) issueTokens(ctx context.Context, userID string) (domain.TokenPair, error) {
	pair, access, refresh, err := domain.GenerateTokenPair(
		userID,
		[]byte(s.cfg.JWTSecret),
		s.cfg.JWTAccessTTL,
		s.cfg.JWTRefreshTTL,
	)
	if err != nil {
		return domain.TokenPair{}, err
	}

	if err := s.tokens.Save(ctx, access); err != nil {
		return domain.TokenPair{}, apperr.Internal("failed to save access token", err)
	}
	if err := s.tokens.Save(ctx, refresh); err != nil {
		return domain.TokenPair{}, apperr.Internal("failed to save refresh token", err)
	}
	return pair, nil
}

// LogoutWeb deletes the session. Deleting an absent session succeeds.
func (s *AuthService) LogoutWeb(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return apperr.Internal("failed to delete session", err)
	}
	return nil
}

// LogoutAPI revokes every outstanding token for the user, access and
// refresh alike.
func (s *AuthService) LogoutAPI(ctx context.Context, userID string) error {
	if err := s.tokens.RevokeAllUserTokens(ctx, userID); err != nil {
		return apperr.Internal("failed to revoke tokens", err)
	}
	s.log.Info().Str("user_id", userID).Msg("api logout, all tokens revoked")
	return nil
}

// LogoutAll terminates both surfaces: the web session and every token.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
		return apperr.Internal("failed to delete sessions", err)
	}
	return s.LogoutAPI(ctx, userID)
}

// Refresh rotates a refresh token: the old token is revoked before the
// new pair is minted, so a replayed token deterministically fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := domain.DecodeToken(refreshToken, []byte(s.cfg.JWTSecret))
	if err != nil {
		return domain.TokenPair{}, err
	}

	if claims.TokenType != string(domain.TokenTypeRefresh) {
		return domain.TokenPair{}, apperr.Authentication("Invalid token type, expected refresh token")
	}

	stored, err := s.tokens.FindByJTI(ctx, claims.JTI())
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return domain.TokenPair{}, apperr.Authentication("Token not found")
		}
		return domain.TokenPair{}, apperr.Internal("failed to look up token", err)
	}
	if stored.IsRevoked() {
		return domain.TokenPair{}, apperr.Authentication("Token has been revoked")
	}
	if stored.IsExpired() {
		return domain.TokenPair{}, apperr.Authentication("Token has expired")
	}

	// Rotation: revoke before minting. From here on the old refresh
	// token is unusable, so failures below must tell the client to
	// re-authenticate instead of retrying with it.
	if err := s.tokens.Revoke(ctx, claims.JTI()); err != nil {
		return domain.TokenPair{}, apperr.Internal("failed to revoke refresh token", err)
	}
	if err := s.revocations.MarkRevoked(ctx, claims.JTI(), stored.ExpiresAt); err != nil {
		s.log.Warn().Err(err).Str("jti", claims.JTI()).Msg("revocation cache write failed")
	}

	pair, err := s.issueTokens(ctx, claims.UserID())
	if err != nil {
		s.log.Error().Err(err).Str("user_id", claims.UserID()).Msg("mint after revoke failed")
		return domain.TokenPair{}, apperr.Authentication("Session refresh incomplete, please log in again")
	}

	return pair, nil
}

// CheckAccessToken verifies an access token end to end: signature and
// expiry from the claims, then revocation against the ledger. The
// redis cache short-circuits known-revoked JTIs; a miss always falls
// back to the store.
func (s *AuthService) CheckAccessToken(ctx context.Context, token string) (*domain.Claims, error) {
	claims, err := domain.DecodeToken(token, []byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}
	if claims.TokenType != string(domain.TokenTypeAccess) {
		return nil, apperr.Authentication("Invalid token type, expected access token")
	}
	if _, err := ids.Parse(claims.UserID()); err != nil {
		return nil, apperr.Authentication("Invalid token")
	}

	if s.revocations.IsRevoked(ctx, claims.JTI()) {
		return nil, apperr.Authentication("Token has been revoked")
	}

	stored, err := s.tokens.FindByJTI(ctx, claims.JTI())
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, apperr.Authentication("Token not found")
		}
		return nil, apperr.Internal("failed to look up token", err)
	}
	if stored.IsRevoked() {
		return nil, apperr.Authentication("Token has been revoked")
	}
	if stored.IsExpired() {
		return nil, apperr.Authentication("Token has expired")
	}

	return claims, nil
}
