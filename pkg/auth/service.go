package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/example/rentalshop/pkg/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 6

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Address  string
	Phone    string
}

type ProfileInput struct {
	Username string
	Address  string
	Phone    string
}

type Service struct {
	db       *gorm.DB
	tokens   *Tokens
	validate *validator.Validate
	logger   *zap.Logger
	cost     int
}

func NewService(db *gorm.DB, tokens *Tokens, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		tokens:   tokens,
		validate: validator.New(),
		logger:   logger,
		cost:     bcrypt.DefaultCost,
	}
}

func (s *Service) Tokens() *Tokens { return s.tokens }

func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, apperr.Validation("Username, email and password are required")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, apperr.Validation("Invalid email format")
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperr.Validation("Password must be at least 6 characters")
	}

	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Validation("Email is already registered")
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleClient,
		Address:      strings.TrimSpace(in.Address),
		Phone:        strings.TrimSpace(in.Phone),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		s.logger.Error("Failed to create user", zap.String("email", email), zap.Error(err))
		return nil, apperr.Internal("Failed to register user", err)
	}

	s.logger.Info("User registered", zap.Uint("user_id", user.ID))
	return &user, nil
}

// Login checks the credentials and returns a signed token for the user.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, apperr.Validation("Email and password are required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperr.AuthFailure("Invalid email or password")
		}
		return "", nil, apperr.Internal("Failed to load user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, apperr.AuthFailure("Invalid email or password")
	}

	token, err := s.tokens.Issue(&user)
	if err != nil {
		return "", nil, apperr.Internal("Failed to issue token", err)
	}
	return token, &user, nil
}

func (s *Service) Me(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Failed to load user", err)
	}
	return &user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, apperr.Validation("Username is required")
	}
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"username": username,
		"address":  strings.TrimSpace(in.Address),
		"phone":    strings.TrimSpace(in.Phone),
	}).Error; err != nil {
		return nil, apperr.Internal("Failed to update profile", err)
	}
	return s.Me(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if len(next) < minPasswordLen {
		return apperr.Validation("Password must be at least 6 characters")
	}
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return apperr.AuthFailure("Current password is incorrect")
	}

	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return apperr.Internal("Failed to update password", err)
	}
	s.logger.Info("Password changed", zap.Uint("user_id", userID))
	return nil
}

// ListUsers returns every account, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&users).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch users", err)
	}
	return users, nil
}

// EnsureAdmin creates the operator account if no user holds that email yet.
// An existing account is promoted to admin.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		if user.Role == models.RoleAdmin {
			return nil
		}
		return s.db.WithContext(ctx).Model(&user).Update("role", models.RoleAdmin).Error
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	user = models.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return err
	}
	s.logger.Info("Admin account created", zap.String("email", email))
	return nil
}

func (s *Service) emailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, apperr.Internal("Failed to check email", err)
	}
	return n > 0, nil
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", apperr.Internal("Failed to hash password", err)
	}
	return string(b), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
