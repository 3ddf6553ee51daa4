package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/models"
	"github.com/pageza/recipe-ai/backend/internal/types"
)

var (
	errInvalidCredentials = &apperror.AuthError{Message: "Invalid email or password"}
	errDeactivated        = &apperror.AuthError{Message: "Account is deactivated"}
	errUserGone           = &apperror.AuthError{Message: "The user belonging to this token no longer exists"}
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	expiresIn time.Duration
}

func NewAuthService(db *gorm.DB, jwtSecret string, expiresIn time.Duration) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		expiresIn: expiresIn,
	}
}

func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, "", errors.Wrap(err, "failed to check existing user")
	}
	if count > 0 {
		return nil, "", &apperror.DuplicateError{Field: "email", Value: email}
	}

	user := &models.User{
		Name:     req.Name,
		Email:    email,
		Password: req.Password,
		IsActive: true,
	}
	if req.Preferences != nil {
		user.Preferences = *req.Preferences
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", &apperror.DuplicateError{Field: "email", Value: email}
		}
		return nil, "", errors.Wrap(err, "failed to create user")
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", errInvalidCredentials
	}
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to load user")
	}

	if !user.CheckPassword(password) {
		return nil, "", errInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", errDeactivated
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).UpdateColumn("last_login", now).Error; err != nil {
		return nil, "", errors.Wrap(err, "failed to record login")
	}
	user.LastLogin = &now

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// GenerateToken signs an HS256 token for userID.
func (s *AuthService) GenerateToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiresIn)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// ValidateToken verifies signature and expiry. All failures are AuthErrors.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, &apperror.AuthError{Message: "Your token has expired. Please log in again.", Cause: err}
	case err != nil:
		return nil, &apperror.AuthError{Cause: err}
	case !token.Valid || claims.UserID == uuid.Nil:
		return nil, &apperror.AuthError{}
	}
	return claims, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperror.NotFoundError{Resource: "User", ID: userID.String()}
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user")
	}
	return &user, nil
}

// activeUser loads the token's user, treating a missing or deactivated
// account as an authentication failure.
func (s *AuthService) activeUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	var nf *apperror.NotFoundError
	if errors.As(err, &nf) {
		return nil, errUserGone
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errDeactivated
	}
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*types.MeResponse, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	saved := []string{}
	err = s.db.WithContext(ctx).Model(&models.RecipeSave{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("recipe_id", &saved).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load saved recipes")
	}

	return &types.MeResponse{User: user, SavedRecipes: saved}, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.User, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Preferences != nil {
		user.Preferences = *req.Preferences
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, errors.Wrap(err, "failed to update profile")
	}
	return user, nil
}

// ChangePassword replaces the password and returns a fresh token.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *types.ChangePasswordRequest) (string, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return "", err
	}

	if !user.CheckPassword(req.CurrentPassword) {
		return "", &apperror.AuthError{Message: "Current password is incorrect"}
	}

	user.Password = req.NewPassword
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		var verr *apperror.ValidationError
		if errors.As(err, &verr) {
			return "", verr
		}
		return "", errors.Wrap(err, "failed to change password")
	}

	return s.GenerateToken(user.ID)
}

func (s *AuthService) SetAvatar(ctx context.Context, userID uuid.UUID, url string) (*models.User, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).UpdateColumn("avatar_url", url).Error; err != nil {
		return nil, errors.Wrap(err, "failed to update avatar")
	}
	user.AvatarURL = url
	return user, nil
}
