package service

import (
	"context"
	"time"

	"bizbooks/internal/dto"
	"bizbooks/internal/models"
	"bizbooks/internal/repository"
	"bizbooks/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	userRepo    *repository.UserRepository
	companyRepo *repository.CompanyRepository
	jwtManager  *auth.JWTManager
	logger      *zap.Logger
}

func NewAuthService(userRepo *repository.UserRepository, companyRepo *repository.CompanyRepository, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		jwtManager:  jwtManager,
		logger:      logger,
	}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	// Check if user exists
	existingUser, _ := s.userRepo.GetByEmail(ctx, req.Email)
	if existingUser != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Provision the company record right away so the first statement upload
	// has somewhere to land.
	if _, err := s.EnsureProfile(ctx, user.ID, req.CompanyName, req.GSTIN); err != nil {
		s.logger.Warn("Company provisioning failed during registration", zap.Error(err))
	}

	return s.buildAuthResponse(user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !auth.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	claims, err := s.jwtManager.ValidateToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return s.buildAuthResponse(user)
}

// EnsureProfile provisions the user's company if it does not exist yet. It
// leans on the owner_id unique constraint instead of read-then-write, so
// concurrent calls converge on one company.
func (s *AuthService) EnsureProfile(ctx context.Context, userID uuid.UUID, companyName, gstin string) (*models.Company, error) {
	if companyName == "" {
		companyName = "My Company"
	}

	now := time.Now()
	company := &models.Company{
		ID:        uuid.New(),
		OwnerID:   userID,
		Name:      companyName,
		GSTIN:     gstin,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.companyRepo.CreateIfAbsent(ctx, company); err != nil {
		return nil, err
	}

	// Read back the survivor: either the row just inserted or the one a
	// concurrent call won with.
	return s.companyRepo.GetByOwnerID(ctx, userID)
}

// Profile returns the user together with their (ensured) company record.
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	company, err := s.EnsureProfile(ctx, userID, "", "")
	if err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		User: dto.UserResponse{
			ID:       user.ID.String(),
			Username: user.Username,
			Email:    user.Email,
		},
		Company: dto.CompanyResponse{
			ID:    company.ID.String(),
			Name:  company.Name,
			GSTIN: company.GSTIN,
		},
	}, nil
}

func (s *AuthService) buildAuthResponse(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateToken(user.ID.String(), user.Username, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID.String())
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtManager.GetTokenDuration().Seconds()),
		User: dto.UserResponse{
			ID:       user.ID.String(),
			Username: user.Username,
			Email:    user.Email,
		},
	}, nil
}
