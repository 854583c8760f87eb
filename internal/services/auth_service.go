package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Rahnken/ReframeMe-backend/internal/constants"
	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/Rahnken/ReframeMe-backend/internal/repository"
	"github.com/Rahnken/ReframeMe-backend/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrEmailTaken           = errors.New("email already exists")
	ErrAccountExists        = errors.New("username or email already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrIncorrectPassword    = errors.New("current password is incorrect")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUsernameRequired     = errors.New("username is required")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrInvalidResetToken    = errors.New("invalid or expired reset token")
	ErrResetTokenExpired    = errors.New("reset token has expired")
	ErrResetTokenUsed       = errors.New("reset token has already been used")
)

// PasswordResetMailer delivers password reset links.
type PasswordResetMailer interface {
	SendPasswordResetEmail(ctx context.Context, email, token string) error
}

// Claims is the signed payload of an access token.
type Claims struct {
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	LastLogin *time.Time `json:"lastLogin"`
	jwt.RegisteredClaims
}

// AuthConfig holds the security settings of AuthService.
type AuthConfig struct {
	JWTSecret   string
	JWTExpiry   time.Duration
	ResetExpiry time.Duration
	BcryptCost  int
	// Now defaults to time.Now.
	Now func() time.Time
}

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo    repository.UserRepository
	resetRepo   repository.PasswordResetRepository
	mailer      PasswordResetMailer
	jwtSecret   []byte
	jwtExpiry   time.Duration
	resetExpiry time.Duration
	bcryptCost  int
	now         func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, resetRepo repository.PasswordResetRepository, mailer PasswordResetMailer, cfg AuthConfig) *AuthService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &AuthService{
		userRepo:    userRepo,
		resetRepo:   resetRepo,
		mailer:      mailer,
		jwtSecret:   []byte(cfg.JWTSecret),
		jwtExpiry:   cfg.JWTExpiry,
		resetExpiry: cfg.ResetExpiry,
		bcryptCost:  cost,
		now:         now,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is a freshly issued token and the user it was issued for.
type AuthResult struct {
	Token string
	User  *models.User
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hashed), nil
}

// Register creates a new user along with an empty profile and default settings.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
	}

	if err := s.userRepo.Create(user); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			// Lost a race with a concurrent registration.
			return nil, ErrAccountExists
		case errors.Is(err, repository.ErrCreateUser), errors.Is(err, repository.ErrCreateProfile):
			return nil, fmt.Errorf("%w: %w", ErrFailedToCreateUser, err)
		default:
			return nil, fmt.Errorf("failed to complete registration: %w", err)
		}
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials, records the login time and issues a token.
func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByUsername(strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"last_login": now}); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLogin = &now

	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// GenerateToken signs an HS256 token carrying the user's email, username and last login.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		Email:     user.Email,
		Username:  user.Username,
		LastLogin: user.LastLogin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks the signature and expiry of a token and returns its claims.
func (s *AuthService) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate resolves a bearer token to the user named in its claims.
func (s *AuthService) Authenticate(tokenString string) (*models.User, error) {
	claims, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(claims.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func (s *AuthService) verifyCurrentPassword(userID, password string) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return user, nil
}

// ChangeEmail updates the user's email after re-checking their password and issues a new token.
func (s *AuthService) ChangeEmail(userID, newEmail, currentPassword string) (*AuthResult, error) {
	user, err := s.verifyCurrentPassword(userID, currentPassword)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(newEmail))
	if email != user.Email {
		if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"email": email}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrEmailTaken
			}
			return nil, fmt.Errorf("failed to update email: %w", err)
		}
		user.Email = email
	}

	return s.issue(user)
}

// ChangeUsername updates the user's username after re-checking their password and issues a new token.
func (s *AuthService) ChangeUsername(userID, newUsername, currentPassword string) (*AuthResult, error) {
	username := strings.TrimSpace(newUsername)
	if username == "" {
		return nil, ErrUsernameRequired
	}

	user, err := s.verifyCurrentPassword(userID, currentPassword)
	if err != nil {
		return nil, err
	}

	if username != user.Username {
		if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"username": username}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrUsernameTaken
			}
			return nil, fmt.Errorf("failed to update username: %w", err)
		}
		user.Username = username
	}

	return s.issue(user)
}

// ChangePassword replaces the user's password after re-checking the current one.
func (s *AuthService) ChangePassword(userID, currentPassword, newPassword string) error {
	if len(newPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.verifyCurrentPassword(userID, currentPassword)
	if err != nil {
		return err
	}

	hashed, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"hashed_password": hashed}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// RequestPasswordReset issues a reset token for the account with the given email.
// Unknown emails succeed silently so callers cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Debug("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	value, err := utils.GenerateToken(constants.ResetTokenBytes)
	if err != nil {
		return err
	}

	token := &models.PasswordResetToken{
		Token:     value,
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.resetExpiry),
	}
	if err := s.resetRepo.Replace(token); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, value); err != nil {
			// The response must not differ for known emails, so delivery failures are only logged.
			slog.Error("failed to send password reset email", "user_id", user.ID, "error", err)
		}
	}

	return nil
}

// ConfirmPasswordReset sets a new password using a valid, unused reset token.
func (s *AuthService) ConfirmPasswordReset(token, newPassword string) error {
	if len(newPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	resetToken, err := s.resetRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to find reset token: %w", err)
	}

	if resetToken.IsExpired(s.now()) {
		return ErrResetTokenExpired
	}
	if resetToken.Used {
		return ErrResetTokenUsed
	}

	hashed, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.resetRepo.Consume(resetToken.ID, resetToken.UserID, hashed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenUsed
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}
