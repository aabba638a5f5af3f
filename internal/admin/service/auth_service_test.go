package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fournil/internal/domain"
	apperrors "fournil/internal/errors"
)

type mockUserRepository struct {
	CreateFunc         func(ctx context.Context, user domain.User) error
	FindByEmailFunc    func(ctx context.Context, email string) (*domain.User, error)
	FindByIDFunc       func(ctx context.Context, id string) (*domain.User, error)
	UpdatePasswordFunc func(ctx context.Context, userID, passwordHash string) error
}

func (m *mockUserRepository) Create(ctx context.Context, user domain.User) error {
	return m.CreateFunc(ctx, user)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.FindByEmailFunc(ctx, email)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return m.UpdatePasswordFunc(ctx, userID, passwordHash)
}

type mockRoleRepository struct {
	HasRoleFunc func(ctx context.Context, userID, role string) (bool, error)
	GrantFunc   func(ctx context.Context, userID, role string) error
}

func (m *mockRoleRepository) HasRole(ctx context.Context, userID, role string) (bool, error) {
	return m.HasRoleFunc(ctx, userID, role)
}

func (m *mockRoleRepository) Grant(ctx context.Context, userID, role string) error {
	return m.GrantFunc(ctx, userID, role)
}

type mockTokenRepository struct {
	CreateFunc  func(ctx context.Context, token domain.AuthToken) error
	ConsumeFunc func(ctx context.Context, token, purpose string) (*domain.AuthToken, error)
}

func (m *mockTokenRepository) Create(ctx context.Context, token domain.AuthToken) error {
	return m.CreateFunc(ctx, token)
}

func (m *mockTokenRepository) Consume(ctx context.Context, token, purpose string) (*domain.AuthToken, error) {
	return m.ConsumeFunc(ctx, token, purpose)
}

type mockAuthMailer struct {
	SendPasswordResetFunc func(ctx context.Context, to, token string) error
	SendMagicLinkFunc     func(ctx context.Context, to, token string) error
}

func (m *mockAuthMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	return m.SendPasswordResetFunc(ctx, to, token)
}

func (m *mockAuthMailer) SendMagicLink(ctx context.Context, to, token string) error {
	return m.SendMagicLinkFunc(ctx, to, token)
}

func hashPassword(t *testing.T, password string) *string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	s := string(hash)
	return &s
}

func newTestAuthService(
	users *mockUserRepository,
	roles *mockRoleRepository,
	tokens *mockTokenRepository,
	mailer *mockAuthMailer,
	allowed []string,
) *AuthService {
	return NewAuthService(
		users, roles, tokens, mailer,
		zap.NewNop(),
		"test-secret",
		time.Hour,
		allowed,
	)
}

func TestSignIn_Success(t *testing.T) {
	hash := hashPassword(t, "secret123")
	users := &mockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			assert.Equal(t, "baker@example.com", email)
			return &domain.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
		},
	}
	roles := &mockRoleRepository{
		HasRoleFunc: func(ctx context.Context, userID, role string) (bool, error) {
			return false, nil
		},
	}

	svc := newTestAuthService(users, roles, &mockTokenRepository{}, &mockAuthMailer{}, nil)

	session, err := svc.SignIn(context.Background(), "Baker@Example.com", "secret123")

	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "user-1", session.Principal.UserID)
	assert.False(t, session.Principal.IsAdmin)
}

func TestSignIn_WrongPassword(t *testing.T) {
	hash := hashPassword(t, "secret123")
	users := &mockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
		},
	}

	svc := newTestAuthService(users, &mockRoleRepository{}, &mockTokenRepository{}, &mockAuthMailer{}, nil)

	_, err := svc.SignIn(context.Background(), "baker@example.com", "wrong")

	ae, ok := apperrors.IsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, "invalid email or password", ae.Message)
}

func TestSignIn_UnknownEmail(t *testing.T) {
	users := &mockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return nil, apperrors.NewNotFoundError("user not found")
		},
	}

	svc := newTestAuthService(users, &mockRoleRepository{}, &mockTokenRepository{}, &mockAuthMailer{}, nil)

	_, err := svc.SignIn(context.Background(), "nobody@example.com", "secret123")

	ae, ok := apperrors.IsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, "invalid email or password", ae.Message)
}

func TestSignIn_PasswordlessAccountRejectsPassword(t *testing.T) {
	users := &mockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email}, nil
		},
	}

	svc := newTestAuthService(users, &mockRoleRepository{}, &mockTokenRepository{}, &mockAuthMailer{}, nil)

	_, err := svc.SignIn(context.Background(), "baker@example.com", "anything")

	_, ok := apperrors.IsAuthError(err)
	assert.True(t, ok)
}

func TestSignIn_AllowListedEmailGetsAdminRoleOnce(t *testing.T) {
	hash := hashPassword(t, "secret123")
	hasRole := false
	grants := 0

	users := &mockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
		},
	}
	roles := &mockRoleRepository{
		HasRoleFunc: func(ctx context.Context, userID, role string) (bool, error) {
			return hasRole, nil
		},
		GrantFunc: func(ctx context.Context, userID, role string) error {
			assert.Equal(t, "user-1", userID)
			assert.Equal(t, domain.RoleAdmin, role)
			grants++
			hasRole = true
			return nil
		},
	}

	svc := newTestAuthService(users, roles, &mockTokenRepository{}, &mockAuthMailer{}, []string{"Baker@Example.com"})

	for i := 0; i < 3; i++ {
		session, err := svc.SignIn(context.Background(), "baker@example.com", "secret123")
		require.NoError(t, err)
		assert.True(t, session.Principal.IsAdmin)
	}

	assert.Equal(t, 1, grants)
}

func TestSignIn_NonAllowListedEmailNeverGranted(t *testing.T) {
	hash := hashPassword(t, "secret123")
	users := &mockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "user-2", Email: email, PasswordHash: hash}, nil
		},
	}
	roles := &mockRoleRepository{
		HasRoleFunc: func(ctx context.Context, userID, role string) (bool, error) {
			return false, nil
		},
		GrantFunc: func(ctx context.Context, userID, role string) error {
			t.Fatal("role must not be granted to a non allow-listed email")
			return nil
		},
	}

	svc := newTestAuthService(users, roles, &mockTokenRepository{}, &mockAuthMailer{}, []string{"owner@example.com"})

	session, err := svc.SignIn(context.Background(), "visitor@example.com", "secret123")

	require.NoError(t, err)
	assert.False(t, session.Principal.IsAdmin)
}

func TestSignUp_Success(t *testing.T) {
	var created domain.User
	users := &mockUserRepository{
		CreateFunc: func(ctx context.Context, user domain.User) error {
			created = user
			return nil
		},
	}
	roles := &mockRoleRepository{
		HasRoleFunc: func(ctx context.Context, userID, role string) (bool, error) {
			return false, nil
		},
	}

	svc := newTestAuthService(users, roles, &mockTokenRepository{}, &mockAuthMailer{}, nil)

	session, err := svc.SignUp(context.Background(), "new@example.com", "secret123")

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "new@example.com", created.Email)
	require.NotNil(t, created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*created.PasswordHash), []byte("secret123")))
	assert.Equal(t, created.ID, session.Principal.UserID)
}

func TestSignUp_MissingFields(t *testing.T) {
	svc := newTestAuthService(&mockUserRepository{}, &mockRoleRepository{}, &mockTokenRepository{}, &mockAuthMailer{}, nil)

	_, err := svc.SignUp(context.Background(), "", "")

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Details, 2)
}

func TestRequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	users := &mockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return nil, apperrors.NewNotFoundError("user not found")
		},
	}
	tokens := &mockTokenRepository{
		CreateFunc: func(ctx context.Context, token domain.AuthToken) error {
			t.Fatal("no token should be created for an unknown email")
			return nil
		},
	}

	svc := newTestAuthService(users, &mockRoleRepository{}, tokens, &mockAuthMailer{}, nil)

	err := svc.RequestPasswordReset(context.Background(), "nobody@example.com")

	assert.NoError(t, err)
}

func TestRequestPasswordReset_IssuesTokenAndMails(t *testing.T) {
	users := &mockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email}, nil
		},
	}

	var issued domain.AuthToken
	tokens := &mockTokenRepository{
		CreateFunc: func(ctx context.Context, token domain.AuthToken) error {
			issued = token
			return nil
		},
	}

	mailed := ""
	mailer := &mockAuthMailer{
		SendPasswordResetFunc: func(ctx context.Context, to, token string) error {
			mailed = token
			return nil
		},
	}

	svc := newTestAuthService(users, &mockRoleRepository{}, tokens, mailer, nil)

	err := svc.RequestPasswordReset(context.Background(), "baker@example.com")

	require.NoError(t, err)
	assert.Equal(t, domain.TokenPurposeReset, issued.Purpose)
	assert.Equal(t, issued.Token, mailed)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, time.Minute)
}

func TestRequestPasswordReset_MailFailureIsSoft(t *testing.T) {
	users := &mockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email}, nil
		},
	}
	tokens := &mockTokenRepository{
		CreateFunc: func(ctx context.Context, token domain.AuthToken) error { return nil },
	}
	mailer := &mockAuthMailer{
		SendPasswordResetFunc: func(ctx context.Context, to, token string) error {
			return apperrors.NewNotificationError("mailer unavailable", nil)
		},
	}

	svc := newTestAuthService(users, &mockRoleRepository{}, tokens, mailer, nil)

	assert.NoError(t, svc.RequestPasswordReset(context.Background(), "baker@example.com"))
}

func TestResetPassword_Success(t *testing.T) {
	tokens := &mockTokenRepository{
		ConsumeFunc: func(ctx context.Context, token, purpose string) (*domain.AuthToken, error) {
			assert.Equal(t, domain.TokenPurposeReset, purpose)
			return &domain.AuthToken{Token: token, UserID: "user-1", Purpose: purpose}, nil
		},
	}

	updated := ""
	users := &mockUserRepository{
		UpdatePasswordFunc: func(ctx context.Context, userID, passwordHash string) error {
			assert.Equal(t, "user-1", userID)
			updated = passwordHash
			return nil
		},
	}

	svc := newTestAuthService(users, &mockRoleRepository{}, tokens, &mockAuthMailer{}, nil)

	err := svc.ResetPassword(context.Background(), "tok", "newpassword")

	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated), []byte("newpassword")))
}

func TestResetPassword_InvalidToken(t *testing.T) {
	tokens := &mockTokenRepository{
		ConsumeFunc: func(ctx context.Context, token, purpose string) (*domain.AuthToken, error) {
			return nil, apperrors.NewAuthError("invalid or expired token")
		},
	}

	svc := newTestAuthService(&mockUserRepository{}, &mockRoleRepository{}, tokens, &mockAuthMailer{}, nil)

	err := svc.ResetPassword(context.Background(), "tok", "newpassword")

	_, ok := apperrors.IsAuthError(err)
	assert.True(t, ok)
}

func TestRequestMagicLink_CreatesPasswordlessUser(t *testing.T) {
	var created *domain.User
	users := &mockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return nil, apperrors.NewNotFoundError("user not found")
		},
		CreateFunc: func(ctx context.Context, user domain.User) error {
			created = &user
			return nil
		},
	}
	tokens := &mockTokenRepository{
		CreateFunc: func(ctx context.Context, token domain.AuthToken) error { return nil },
	}
	mailer := &mockAuthMailer{
		SendMagicLinkFunc: func(ctx context.Context, to, token string) error { return nil },
	}

	svc := newTestAuthService(users, &mockRoleRepository{}, tokens, mailer, nil)

	err := svc.RequestMagicLink(context.Background(), "new@example.com")

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Nil(t, created.PasswordHash)
}

func TestRedeemMagicLink_EstablishesSession(t *testing.T) {
	tokens := &mockTokenRepository{
		ConsumeFunc: func(ctx context.Context, token, purpose string) (*domain.AuthToken, error) {
			assert.Equal(t, domain.TokenPurposeMagic, purpose)
			return &domain.AuthToken{Token: token, UserID: "user-1", Purpose: purpose}, nil
		},
	}
	users := &mockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Email: "baker@example.com"}, nil
		},
	}
	roles := &mockRoleRepository{
		HasRoleFunc: func(ctx context.Context, userID, role string) (bool, error) {
			return false, nil
		},
	}

	svc := newTestAuthService(users, roles, tokens, &mockAuthMailer{}, nil)

	session, err := svc.RedeemMagicLink(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, "user-1", session.Principal.UserID)
	assert.NotEmpty(t, session.Token)
}

func TestSession_RoundTrip(t *testing.T) {
	hash := hashPassword(t, "secret123")
	users := &mockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
		},
	}
	roles := &mockRoleRepository{
		HasRoleFunc: func(ctx context.Context, userID, role string) (bool, error) {
			return true, nil
		},
	}

	svc := newTestAuthService(users, roles, &mockTokenRepository{}, &mockAuthMailer{}, []string{"baker@example.com"})

	session, err := svc.SignIn(context.Background(), "baker@example.com", "secret123")
	require.NoError(t, err)

	principal, err := svc.Session(context.Background(), session.Token)

	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.UserID)
	assert.Equal(t, "baker@example.com", principal.Email)
	assert.True(t, principal.IsAdmin)
}

func TestSession_GarbageToken(t *testing.T) {
	svc := newTestAuthService(&mockUserRepository{}, &mockRoleRepository{}, &mockTokenRepository{}, &mockAuthMailer{}, nil)

	_, err := svc.Session(context.Background(), "not-a-jwt")

	_, ok := apperrors.IsAuthError(err)
	assert.True(t, ok)
}
