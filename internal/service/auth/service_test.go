package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	apperrors "github.com/bbabur/immune-risk-next-sub001/pkg/errors"
	"github.com/bbabur/immune-risk-next-sub001/pkg/auth"
	"github.com/bbabur/immune-risk-next-sub001/pkg/logger"
	"github.com/bbabur/immune-risk-next-sub001/pkg/ratelimit"
	"github.com/bbabur/immune-risk-next-sub001/pkg/security"
)

type fakeUserRepo struct {
	byEmail map[string]*model.User
	byID    map[uuid.UUID]*model.User
	updated *model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: map[string]*model.User{},
		byID:    map[uuid.UUID]*model.User{},
	}
}

func (f *fakeUserRepo) add(user *model.User) {
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.add(user)
	return nil
}
func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return user, nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return user, nil
}
func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	f.updated = user
	f.add(user)
	return nil
}
func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}
func (f *fakeUserRepo) List(ctx context.Context) ([]*model.User, error) { return nil, nil }

type fakeTokenRepo struct {
	created  *model.PasswordResetToken
	redeemed bool
	failNext bool
}

func (f *fakeTokenRepo) Create(ctx context.Context, token *model.PasswordResetToken) error {
	f.created = token
	return nil
}
func (f *fakeTokenRepo) Redeem(ctx context.Context, userID uuid.UUID, code string) error {
	if f.failNext || f.redeemed || f.created == nil || f.created.UserID != userID || f.created.Code != code {
		return errors.New("invalid or expired reset code")
	}
	f.redeemed = true
	return nil
}

type fakeEmail struct {
	resetTo   string
	resetCode string
}

func (f *fakeEmail) SendPasswordReset(ctx context.Context, to, code string) error {
	f.resetTo = to
	f.resetCode = code
	return nil
}
func (f *fakeEmail) SendCustom(ctx context.Context, to, subject, content string) error { return nil }

func newTestAuthService(t *testing.T, users *fakeUserRepo, tokens *fakeTokenRepo, mail *fakeEmail) *Service {
	t.Helper()
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        "test-secret",
		RefreshSecret: "test-refresh-secret",
	})
	limiter := ratelimit.NewMemoryLimiter()
	return NewService(users, tokens, jwtSvc, security.NewBcryptHasher(4), mail, limiter, logger.NewLogger(nil))
}

func registeredUser(t *testing.T, svc *Service) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "doctor@clinic.example",
		Username: "doctor1",
		Password: "secret123",
		Role:     model.RoleDoctor,
	})
	require.NoError(t, err)
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(t, users, &fakeTokenRepo{}, &fakeEmail{})
	user := registeredUser(t, svc)

	assert.Equal(t, model.RoleDoctor, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "Doctor@Clinic.example",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, user.ID, tokens.User.ID)
}

func TestRegister_AssignsDistinctIDs(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(t, users, &fakeTokenRepo{}, &fakeEmail{})

	first := registeredUser(t, svc)
	second, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "nurse@clinic.example",
		Username: "nurse1",
		Password: "secret123",
	})
	require.NoError(t, err)

	require.NotEqual(t, uuid.Nil, first.ID)
	require.NotEqual(t, uuid.Nil, second.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Same(t, first, users.byID[first.ID])
}

func TestLogin_WrongPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(t, users, &fakeTokenRepo{}, &fakeEmail{})
	registeredUser(t, svc)

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doctor@clinic.example",
		Password: "wrong-password",
	})

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(t, users, &fakeTokenRepo{}, &fakeEmail{})
	registeredUser(t, svc)

	req := &model.LoginRequest{Email: "doctor@clinic.example", Password: "wrong"}
	for i := 0; i < loginRateLimit; i++ {
		_, err := svc.Login(context.Background(), req)
		require.Error(t, err)
	}

	_, err := svc.Login(context.Background(), req)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrRateLimited, appErr.Code)
}

func TestRegister_RejectsBadInput(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(t, users, &fakeTokenRepo{}, &fakeEmail{})

	cases := []model.RegisterRequest{
		{Email: "not-an-email", Username: "validname", Password: "secret123"},
		{Email: "a@b.example", Username: "x", Password: "secret123"},
		{Email: "a@b.example", Username: "valid<script>", Password: "secret123"},
		{Email: "a@b.example", Username: "validname", Password: "short"},
	}
	for _, req := range cases {
		_, err := svc.Register(context.Background(), &req)
		assert.Error(t, err, "request should be rejected: %+v", req)
	}
}

func TestRefresh_RoundTrip(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(t, users, &fakeTokenRepo{}, &fakeEmail{})
	registeredUser(t, svc)

	tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doctor@clinic.example",
		Password: "secret123",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh(context.Background(), "garbage-token")
	assert.Error(t, err)
}

func TestPasswordReset_FullFlow(t *testing.T) {
	users := newFakeUserRepo()
	tokens := &fakeTokenRepo{}
	mail := &fakeEmail{}
	svc := newTestAuthService(t, users, tokens, mail)
	registeredUser(t, svc)

	require.NoError(t, svc.ForgotPassword(context.Background(), "doctor@clinic.example"))
	require.NotNil(t, tokens.created)
	assert.Len(t, tokens.created.Code, 6)
	assert.Equal(t, tokens.created.Code, mail.resetCode)
	assert.Equal(t, "doctor@clinic.example", mail.resetTo)

	err := svc.ResetPassword(context.Background(), &model.ResetPasswordRequest{
		Email:       "doctor@clinic.example",
		Code:        tokens.created.Code,
		NewPassword: "brand-new-pass",
	})
	require.NoError(t, err)

	// old password no longer works, new one does
	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doctor@clinic.example",
		Password: "secret123",
	})
	assert.Error(t, err)

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doctor@clinic.example",
		Password: "brand-new-pass",
	})
	require.NoError(t, err)
}

func TestPasswordReset_CodeIsSingleUse(t *testing.T) {
	users := newFakeUserRepo()
	tokens := &fakeTokenRepo{}
	svc := newTestAuthService(t, users, tokens, &fakeEmail{})
	registeredUser(t, svc)

	require.NoError(t, svc.ForgotPassword(context.Background(), "doctor@clinic.example"))
	code := tokens.created.Code

	req := &model.ResetPasswordRequest{
		Email:       "doctor@clinic.example",
		Code:        code,
		NewPassword: "brand-new-pass",
	}
	require.NoError(t, svc.ResetPassword(context.Background(), req))

	err := svc.ResetPassword(context.Background(), req)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestForgotPassword_UnknownEmailSucceeds(t *testing.T) {
	tokens := &fakeTokenRepo{}
	svc := newTestAuthService(t, newFakeUserRepo(), tokens, &fakeEmail{})

	require.NoError(t, svc.ForgotPassword(context.Background(), "nobody@clinic.example"))
	assert.Nil(t, tokens.created)
}
