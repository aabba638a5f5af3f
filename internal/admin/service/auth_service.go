package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fournil/internal/domain"
	apperrors "fournil/internal/errors"
)

const bcryptCost = 10

const (
	resetTokenTTL = time.Hour
	magicTokenTTL = 15 * time.Minute
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type RoleRepository interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
	Grant(ctx context.Context, userID, role string) error
}

type TokenRepository interface {
	Create(ctx context.Context, token domain.AuthToken) error
	Consume(ctx context.Context, token, purpose string) (*domain.AuthToken, error)
}

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
	SendMagicLink(ctx context.Context, to, token string) error
}

// Principal is the resolved identity behind a bearer token.
type Principal struct {
	UserID  string
	Email   string
	IsAdmin bool
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	Principal Principal
}

// AuthService authenticates principals and runs the role bootstrap. The
// admin role is only ever granted to emails on the configured allow-list;
// authentication alone elevates nobody.
type AuthService struct {
	users      UserRepository
	roles      RoleRepository
	tokens     TokenRepository
	mailer     Mailer
	logger     *zap.Logger
	jwtSecret  []byte
	sessionTTL time.Duration
	allowed    map[string]struct{}
}

func NewAuthService(
	users UserRepository,
	roles RoleRepository,
	tokens TokenRepository,
	mailer Mailer,
	logger *zap.Logger,
	jwtSecret string,
	sessionTTL time.Duration,
	allowedEmails []string,
) *AuthService {
	allowed := make(map[string]struct{}, len(allowedEmails))
	for _, email := range allowedEmails {
		allowed[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
	}

	return &AuthService{
		users:      users,
		roles:      roles,
		tokens:     tokens,
		mailer:     mailer,
		logger:     logger,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
		allowed:    allowed,
	}
}

func (s *AuthService) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, apperrors.NewPersistenceError("hashing password", err)
	}

	hashStr := string(hash)
	user := domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: &hashStr,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.establishSession(ctx, &user)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewAuthError("invalid email or password")
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		// passwordless account: only the magic-link flow can sign it in
		return nil, apperrors.NewAuthError("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.NewAuthError("invalid email or password")
	}

	return s.establishSession(ctx, user)
}

// RequestPasswordReset issues a single-use reset token. An unknown email
// is not revealed to the caller.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperrors.NewValidationError("email is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token := domain.AuthToken{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		Purpose:   domain.TokenPurposeReset,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token.Token); err != nil {
		s.logger.Warn("password reset email failed", zap.Error(err))
	}

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return apperrors.NewValidationError("token and password are required")
	}

	consumed, err := s.tokens.Consume(ctx, token, domain.TokenPurposeReset)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return apperrors.NewPersistenceError("hashing password", err)
	}

	return s.users.UpdatePassword(ctx, consumed.UserID, string(hash))
}

// RequestMagicLink starts the passwordless flow, creating the account on
// first use.
func (s *AuthService) RequestMagicLink(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperrors.NewValidationError("email is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			return err
		}

		created := domain.User{ID: uuid.New().String(), Email: email}
		if err := s.users.Create(ctx, created); err != nil {
			return err
		}
		user = &created
	}

	token := domain.AuthToken{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		Purpose:   domain.TokenPurposeMagic,
		ExpiresAt: time.Now().Add(magicTokenTTL),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return err
	}

	if err := s.mailer.SendMagicLink(ctx, user.Email, token.Token); err != nil {
		s.logger.Warn("magic link email failed", zap.Error(err))
	}

	return nil
}

func (s *AuthService) RedeemMagicLink(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, apperrors.NewValidationError("token is required")
	}

	consumed, err := s.tokens.Consume(ctx, token, domain.TokenPurposeMagic)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, consumed.UserID)
	if err != nil {
		return nil, err
	}

	return s.establishSession(ctx, user)
}

// Session resolves a bearer token back to its principal, including the
// current role association.
func (s *AuthService) Session(ctx context.Context, tokenString string) (*Principal, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.NewAuthError("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperrors.NewAuthError("invalid or expired session")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.NewAuthError("invalid or expired session")
	}

	userID, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if userID == "" {
		return nil, apperrors.NewAuthError("invalid or expired session")
	}

	isAdmin, err := s.roles.HasRole(ctx, userID, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	return &Principal{UserID: userID, Email: email, IsAdmin: isAdmin}, nil
}

// establishSession runs the role bootstrap and issues a signed session
// token. The bootstrap inserts the admin role only for allow-listed
// emails that do not hold it yet.
func (s *AuthService) establishSession(ctx context.Context, user *domain.User) (*Session, error) {
	isAdmin, err := s.bootstrapRole(ctx, user)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.sessionTTL)
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   time.Now().Unix(),
		"exp":   expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, apperrors.NewAuthError("signing session token")
	}

	return &Session{
		Token:     signed,
		ExpiresAt: expiresAt,
		Principal: Principal{UserID: user.ID, Email: user.Email, IsAdmin: isAdmin},
	}, nil
}

func (s *AuthService) bootstrapRole(ctx context.Context, user *domain.User) (bool, error) {
	if _, ok := s.allowed[strings.ToLower(user.Email)]; !ok {
		return false, nil
	}

	hasRole, err := s.roles.HasRole(ctx, user.ID, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	if hasRole {
		return true, nil
	}

	if err := s.roles.Grant(ctx, user.ID, domain.RoleAdmin); err != nil {
		return false, err
	}

	s.logger.Info("admin role bootstrapped", zap.String("userId", user.ID))
	return true, nil
}

func validateCredentials(email, password string) error {
	var details []apperrors.ValidationDetail

	if email == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "email",
			Message: "email is required",
		})
	}

	if password == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
