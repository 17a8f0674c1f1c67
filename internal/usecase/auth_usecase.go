package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	repo "tableservice/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// スタッフログイン。客側には認証は無い（テーブルトークンが認可の全て）。
type AuthUsecase struct {
	users     repo.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthUsecase(users repo.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginOutput struct {
	Token        string    `json:"token"`
	Role         string    `json:"role"`
	RestaurantID int64     `json:"restaurant_id"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" {
		return LoginOutput{}, NewValidationError("email and password required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		// 存在有無を区別させない
		return LoginOutput{}, NewAuthenticationError("invalid credentials")
	}
	if err != nil {
		return LoginOutput{}, NewInternalError()
	}
	if !user.IsActive {
		return LoginOutput{}, NewAuthenticationError("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return LoginOutput{}, NewAuthenticationError("invalid credentials")
	}

	now := time.Now()
	expiresAt := now.Add(u.tokenTTL)

	claims := jwt.MapClaims{
		"sub":           user.ID,
		"restaurant_id": user.RestaurantID,
		"role":          string(user.Role),
		"iat":           now.Unix(),
		"exp":           expiresAt.Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(u.jwtSecret)
	if err != nil {
		return LoginOutput{}, NewInternalError()
	}

	// ベストエフォート（失敗してもログインは成立させる）
	_ = u.users.UpdateLastLogin(ctx, user.ID)

	return LoginOutput{
		Token:        signed,
		Role:         string(user.Role),
		RestaurantID: user.RestaurantID,
		ExpiresAt:    expiresAt,
	}, nil
}
