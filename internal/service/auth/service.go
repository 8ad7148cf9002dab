package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bbabur/immune-risk-next-sub001/internal/email"
	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/internal/repository"
	"github.com/bbabur/immune-risk-next-sub001/internal/sanitize"
	"github.com/bbabur/immune-risk-next-sub001/pkg/auth"
	apperrors "github.com/bbabur/immune-risk-next-sub001/pkg/errors"
	"github.com/bbabur/immune-risk-next-sub001/pkg/logger"
	"github.com/bbabur/immune-risk-next-sub001/pkg/ratelimit"
	"github.com/bbabur/immune-risk-next-sub001/pkg/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	resetCodeExpiry  = 15 * time.Minute
	loginRateLimit   = 5
	loginRateWindow  = 15 * time.Minute
	resetRateLimit   = 3
	resetRateWindow  = time.Hour
)

type Service struct {
	userRepo  repository.UserRepository
	tokenRepo repository.ResetTokenRepository
	jwtSvc    auth.JWTService
	hasher    security.PasswordHasher
	emailSvc  email.Service
	limiter   ratelimit.Limiter
	logger    *logger.Logger
}

func NewService(
	userRepo repository.UserRepository,
	tokenRepo repository.ResetTokenRepository,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
	emailSvc email.Service,
	limiter ratelimit.Limiter,
	log *logger.Logger,
) *Service {
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		jwtSvc:    jwtSvc,
		hasher:    hasher,
		emailSvc:  emailSvc,
		limiter:   limiter,
		logger:    log,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	if !sanitize.ValidEmail(emailAddr) {
		return nil, apperrors.BadRequest("invalid email address", nil)
	}
	if !sanitize.ValidUsername(req.Username) {
		return nil, apperrors.BadRequest("username must be 3-30 characters of letters, digits, _ or -", nil)
	}
	if !sanitize.ValidPassword(req.Password) {
		return nil, apperrors.BadRequest("password must be at least 6 characters", nil)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, emailAddr); err == nil && existing != nil {
		return nil, apperrors.BadRequest("email already registered", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	user := &model.User{
		Email:        emailAddr,
		Username:     sanitize.String(req.Username),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	user.ID = uuid.New()
	if req.FullName != "" {
		fullName := sanitize.String(req.FullName)
		user.FullName = &fullName
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login checks credentials behind a per-email rate limit. The same error is
// returned for unknown email and wrong password.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	allowed, err := s.limiter.Allow(ctx, "login:"+emailAddr, loginRateLimit, loginRateWindow)
	if err != nil {
		s.logger.Error(err, "rate limiter check failed, allowing login attempt")
	} else if !allowed {
		return nil, apperrors.RateLimited(nil)
	}

	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized(errors.New("account is deactivated"))
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Error(err, "failed to update last login timestamp")
	}
	user.LastLoginAt = &now

	return s.generateTokens(user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	userID, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized(errors.New("account is deactivated"))
	}

	return s.generateTokens(user)
}

// ForgotPassword issues a six-digit reset code. It reports success for
// unknown addresses too, so the endpoint cannot be used to probe accounts.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	allowed, err := s.limiter.Allow(ctx, "reset:"+emailAddr, resetRateLimit, resetRateWindow)
	if err != nil {
		s.logger.Error(err, "rate limiter check failed, allowing reset request")
	} else if !allowed {
		return apperrors.RateLimited(nil)
	}

	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		s.logger.Debug("reset requested for unknown email")
		return nil
	}

	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}

	token := &model.PasswordResetToken{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(resetCodeExpiry),
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	if err := s.emailSvc.SendPasswordReset(ctx, user.Email, code); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// ResetPassword redeems the code and replaces the password. The code is
// single-use; a second attempt with the same code fails.
func (s *Service) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return apperrors.BadRequest("invalid or expired reset code", nil)
	}

	if err := s.tokenRepo.Redeem(ctx, user.ID, req.Code); err != nil {
		return apperrors.BadRequest("invalid or expired reset code", err)
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *Service) generateTokens(user *model.User) (*model.TokenResponse, error) {
	accessToken, err := s.jwtSvc.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.jwtSvc.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
