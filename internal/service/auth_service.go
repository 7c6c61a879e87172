package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/catalog-next/internal/cache"
	"github.com/catalog-next/internal/config"
	"github.com/catalog-next/internal/constants"
	"github.com/catalog-next/internal/logger"
	"github.com/catalog-next/internal/models"
	"github.com/catalog-next/internal/queue"
	"github.com/catalog-next/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	verificationTokenBytes         = 32
	defaultVerificationExpireHours = 24
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

// dummyPasswordHash is compared against when the email is unknown so both
// login failure paths cost one bcrypt comparison.
var dummyPasswordHash, _ = bcrypt.GenerateFromPassword([]byte("catalog-next-dummy-password"), bcrypt.DefaultCost)

// AuthService runs the account workflows: registration, sign in, token
// refresh, email verification and password reset.
type AuthService struct {
	cfg         *config.Config
	userRepo    repository.UserRepository
	refreshRepo repository.RefreshTokenRepository
	tokens      *TokenService
	mailer      Mailer
	mailQueue   MailTaskQueue
	now         func() time.Time
}

// NewAuthService creates the auth workflow service.
func NewAuthService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	refreshRepo repository.RefreshTokenRepository,
	tokens *TokenService,
	mailer Mailer,
	mailQueue MailTaskQueue,
) *AuthService {
	return &AuthService{
		cfg:         cfg,
		userRepo:    userRepo,
		refreshRepo: refreshRepo,
		tokens:      tokens,
		mailer:      mailer,
		mailQueue:   mailQueue,
		now:         time.Now,
	}
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User   *models.User
	Tokens *TokenPair
}

// HashPassword hashes password with bcrypt.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares password against a bcrypt hash.
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword applies the configured password policy.
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// Register creates an unverified account. The verification email goes out
// before anything is stored, so a delivery failure leaves no account behind.
func (s *AuthService) Register(username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	normalizedEmail, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := s.ValidatePassword(password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(normalizedEmail, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}
	exists, err = s.userRepo.ExistsByUsername(username, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateUsername
	}

	token, expiresAt, err := s.newVerificationToken()
	if err != nil {
		return nil, err
	}
	if err := s.sendVerificationEmail(normalizedEmail, username, token); err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:                       username,
		Email:                          normalizedEmail,
		PasswordHash:                   hash,
		EmailVerified:                  false,
		EmailVerificationToken:         &token,
		EmailVerificationTokenExpireAt: &expiresAt,
		Role:                           constants.RoleUser,
	}
	// The account and its first refresh token are stored together so a
	// failed token write does not leave an account the client never saw.
	var pair *TokenPair
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(user); err != nil {
			return err
		}
		issued, err := s.tokens.IssueTokenPair(user)
		if err != nil {
			return err
		}
		if err := s.refreshRepo.WithTx(tx).Save(user.ID, issued.RefreshTokenID, issued.RefreshExpiresAt); err != nil {
			return err
		}
		pair = issued
		return nil
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, s.resolveDuplicate(normalizedEmail)
		}
		return nil, err
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}

// resolveDuplicate tells which unique constraint a concurrent registration hit.
func (s *AuthService) resolveDuplicate(email string) error {
	exists, err := s.userRepo.ExistsByEmail(email, 0)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateEmail
	}
	return ErrDuplicateUsername
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	normalizedEmail, err := normalizeEmail(email)
	if err != nil {
		_ = s.VerifyPassword(string(dummyPasswordHash), password)
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(normalizedEmail)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = s.VerifyPassword(string(dummyPasswordHash), password)
		return nil, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issueAndStore(user)
	if err != nil {
		return nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return &AuthResult{User: user, Tokens: pair}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// retired in the same statement that stores its successor.
func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrMissingToken
	}
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	stored, err := s.refreshRepo.GetByUserID(claims.UserID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if stored == nil || stored.TokenID != claims.ID || !stored.ExpiresAt.After(now) {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	pair, err := s.tokens.IssueTokenPair(user)
	if err != nil {
		return nil, err
	}
	rotated, err := s.refreshRepo.Rotate(user.ID, claims.ID, pair.RefreshTokenID, pair.RefreshExpiresAt, now)
	if err != nil {
		return nil, err
	}
	if !rotated {
		return nil, ErrInvalidToken
	}
	return pair, nil
}

// Logout revokes the stored refresh token. Calling it twice is harmless.
func (s *AuthService) Logout(userID uint) error {
	if err := s.refreshRepo.DeleteByUserID(userID); err != nil {
		return err
	}
	_ = cache.DelUserAuthState(context.Background(), userID)
	return nil
}

// VerifyEmail consumes a verification token.
func (s *AuthService) VerifyEmail(token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	now := s.now()
	user, err := s.userRepo.GetByVerificationToken(token, now)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidOrExpiredToken
	}
	if user.EmailVerified {
		return nil, ErrAlreadyVerified
	}
	consumed, err := s.userRepo.ConsumeVerificationToken(user.ID, token, now)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrInvalidOrExpiredToken
	}
	user.EmailVerified = true
	user.EmailVerificationToken = nil
	user.EmailVerificationTokenExpireAt = nil
	_ = cache.DelUserAuthState(context.Background(), user.ID)
	return user, nil
}

// ResendVerification issues a fresh verification token. The stored token is
// only replaced once the email has been handed to the mailer.
func (s *AuthService) ResendVerification(userID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	token, expiresAt, err := s.newVerificationToken()
	if err != nil {
		return err
	}
	if err := s.sendVerificationEmail(user.Email, user.Username, token); err != nil {
		return err
	}
	return s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"email_verification_token":            token,
		"email_verification_token_expires_at": expiresAt,
	})
}

// ForgotPassword sends a reset link when the email belongs to an account.
// The caller always sees success unless the store fails.
func (s *AuthService) ForgotPassword(email string) error {
	normalizedEmail, err := normalizeEmail(email)
	if err != nil {
		return nil
	}
	user, err := s.userRepo.GetByEmail(normalizedEmail)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	token, err := s.tokens.IssueResetToken(user)
	if err != nil {
		return err
	}

	if s.mailQueue != nil && s.mailQueue.Enabled() {
		err := s.mailQueue.EnqueuePasswordResetEmail(queue.PasswordResetEmailPayload{
			UserID: user.ID,
			Email:  user.Email,
			Token:  token,
		})
		if err == nil {
			return nil
		}
		logger.Warnw("password_reset_enqueue_failed", "user_id", user.ID, "error", err)
	}

	if err := s.SendPasswordResetEmail(user.Email, user.Username, token); err != nil {
		logger.Warnw("password_reset_email_failed", "user_id", user.ID, "error", err)
	}
	return nil
}

// SendPasswordResetEmail delivers a reset link. The queue worker calls it
// with the token carried in the task payload.
func (s *AuthService) SendPasswordResetEmail(email, username, token string) error {
	if s.mailer == nil {
		return ErrEmailServiceNotConfigured
	}
	subject, body := BuildPasswordResetEmail(s.baseURL(), username, token)
	return s.mailer.Send(email, subject, body)
}

// ResetPassword sets a new password from a reset token. The token is bound
// to the email it was issued for, so it dies when the email changes.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return ErrMissingToken
	}
	claims, err := s.tokens.VerifyReset(token)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !strings.EqualFold(user.Email, claims.Email) {
		return ErrEmailMismatch
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"password_hash": hash,
	}); err != nil {
		return err
	}
	if err := s.refreshRepo.DeleteByUserID(user.ID); err != nil {
		return err
	}
	_ = cache.DelUserAuthState(context.Background(), user.ID)
	return nil
}

// GetProfile returns the account of userID.
func (s *AuthService) GetProfile(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ProfilePatch lists the profile fields a user may change. Nil means keep.
type ProfilePatch struct {
	Username *string
	Email    *string
}

// UpdateProfile applies patch. A new email drops the verified flag and
// starts a fresh verification round.
func (s *AuthService) UpdateProfile(userID uint, patch ProfilePatch) (*models.User, error) {
	if patch.Username == nil && patch.Email == nil {
		return nil, ErrEmptyPatch
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	fields := map[string]interface{}{}
	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		if !usernamePattern.MatchString(username) {
			return nil, ErrInvalidUsername
		}
		if username != user.Username {
			exists, err := s.userRepo.ExistsByUsername(username, user.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrDuplicateUsername
			}
			fields["username"] = username
		}
	}

	var verificationToken string
	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(email, user.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrDuplicateEmail
			}
			token, expiresAt, err := s.newVerificationToken()
			if err != nil {
				return nil, err
			}
			verificationToken = token
			fields["email"] = email
			fields["email_verified"] = false
			fields["email_verification_token"] = token
			fields["email_verification_token_expires_at"] = expiresAt
		}
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(user.ID, fields); err != nil {
			if repository.IsUniqueViolation(err) {
				if email, ok := fields["email"].(string); ok {
					return nil, s.resolveDuplicate(email)
				}
				return nil, ErrDuplicateUsername
			}
			return nil, err
		}
		_ = cache.DelUserAuthState(context.Background(), user.ID)
	}

	updated, err := s.userRepo.GetByID(user.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}
	if verificationToken != "" {
		if err := s.sendVerificationEmail(updated.Email, updated.Username, verificationToken); err != nil {
			logger.Warnw("profile_verification_email_failed", "user_id", updated.ID, "error", err)
		}
	}
	return updated, nil
}

// ListUsers returns a page of accounts for administrators.
func (s *AuthService) ListUsers(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

func (s *AuthService) issueAndStore(user *models.User) (*TokenPair, error) {
	pair, err := s.tokens.IssueTokenPair(user)
	if err != nil {
		return nil, err
	}
	if err := s.refreshRepo.Save(user.ID, pair.RefreshTokenID, pair.RefreshExpiresAt); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *AuthService) newVerificationToken() (string, time.Time, error) {
	buf := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("generate verification token: %w", err)
	}
	hours := defaultVerificationExpireHours
	if s.cfg != nil && s.cfg.Email.VerificationExpireHours > 0 {
		hours = s.cfg.Email.VerificationExpireHours
	}
	return hex.EncodeToString(buf), s.now().Add(time.Duration(hours) * time.Hour), nil
}

func (s *AuthService) sendVerificationEmail(email, username, token string) error {
	if s.mailer == nil {
		return ErrEmailDeliveryFailed
	}
	subject, body := BuildVerificationEmail(s.baseURL(), username, token)
	if err := s.mailer.Send(email, subject, body); err != nil {
		logger.Warnw("verification_email_failed", "email", email, "error", err)
		return fmt.Errorf("%w: %v", ErrEmailDeliveryFailed, err)
	}
	return nil
}

func (s *AuthService) baseURL() string {
	if s.cfg == nil {
		return ""
	}
	return s.cfg.App.BaseURL
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// NormalizeEmail trims, lowercases and validates an address.
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}
