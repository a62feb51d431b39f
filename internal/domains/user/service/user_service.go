package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"podcast-catalog/internal/domains/user"
)

// bcrypt cost = 10
const passwordCost = bcrypt.DefaultCost

// TokenIssuer là phần của jwt.Manager mà service cần
type TokenIssuer interface {
	Issue(userID, email string) (string, time.Time, error)
}

// userService implement user.Service interface
type userService struct {
	repo   user.Repository
	tokens TokenIssuer

	// hash giả để so sánh khi email không tồn tại, giữ thời gian phản hồi đồng đều
	dummyHash []byte
}

// NewUserService tạo service instance
// Inject repository qua constructor (Dependency Injection)
func NewUserService(repo user.Repository, tokens TokenIssuer) user.Service {
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), passwordCost)
	if err != nil {
		// chỉ xảy ra khi cost không hợp lệ
		panic(fmt.Sprintf("generate dummy hash: %v", err))
	}
	return &userService{
		repo:      repo,
		tokens:    tokens,
		dummyHash: dummy,
	}
}

// ========================================
// AUTHENTICATION
// ========================================

// Register tạo user mới, trả về id
func (s *userService) Register(ctx context.Context, req user.RegisterRequest) (uuid.UUID, error) {
	// 1. VALIDATE INPUT
	req.Normalize()
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}

	// 2. BUSINESS RULE: email phải chưa tồn tại
	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return uuid.Nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return uuid.Nil, user.ErrEmailAlreadyExists
	}

	// 3. HASH PASSWORD
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	// 4. PERSIST
	// unique index vẫn là chốt chặn cuối khi hai request đăng ký cùng lúc
	newUser := &user.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			return uuid.Nil, err
		}
		return uuid.Nil, fmt.Errorf("create user: %w", err)
	}

	log.Info().Str("email", newUser.Email).Str("user_id", newUser.ID.String()).Msg("[AUTH] User registered")
	return newUser.ID, nil
}

// Authenticate kiểm tra email + password.
// Unknown email và sai password đều trả về ErrInvalidCredentials.
func (s *userService) Authenticate(ctx context.Context, req user.LoginRequest) (*user.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
			log.Info().Str("email", req.Email).Msg("[AUTH] Login failed")
			return nil, user.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	// bcrypt.CompareHashAndPassword is constant-time comparison
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		log.Info().Str("email", req.Email).Msg("[AUTH] Login failed")
		return nil, user.ErrInvalidCredentials
	}

	return u, nil
}

// Login = Authenticate + ký token
func (s *userService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	u, err := s.Authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	token, _, err := s.tokens.Issue(u.ID.String(), u.Email)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	log.Info().Str("email", u.Email).Msg("[AUTH] User logged in")
	return &user.LoginResponse{Token: token}, nil
}

// ========================================
// PROFILE
// ========================================

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*user.UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := u.ToDTO()
	return &dto, nil
}
