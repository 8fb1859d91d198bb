package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"as-system/internal/dto"
	"as-system/internal/repositories"
	apperrors "as-system/pkg/errors"
	"as-system/pkg/service"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenPairDTO, error)
}

type AuthService struct {
	employeeRepo repositories.EmployeeRepositoryInterface
	cacheRepo    repositories.CacheRepositoryInterface
	jwtService   service.JWTService
	logger       *zap.Logger
}

func NewAuthService(
	employeeRepo repositories.EmployeeRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		employeeRepo: employeeRepo,
		cacheRepo:    cacheRepo,
		jwtService:   jwtService,
		logger:       logger,
	}
}

func refreshTokenKey(employeeID int) string {
	return fmt.Sprintf("auth:refresh:%d", employeeID)
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error) {
	employee, err := s.employeeRepo.FindEmployeeByLogin(ctx, payload.Login)
	if err != nil {
		var httpErr *apperrors.HttpError
		if errors.As(err, &httpErr) && httpErr.Code == 404 {
			// Не раскрываем, существует ли логин.
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.Password), []byte(payload.Password)); err != nil {
		s.logger.Warn("Неудачная попытка входа", zap.String("login", payload.Login))
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.jwtService.GenerateTokens(employee.ID, employee.Role)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации токенов: %w", err)
	}

	// Действующий refresh-токен храним в Redis: повторный вход
	// инвалидирует предыдущий.
	if err := s.cacheRepo.Set(ctx, refreshTokenKey(employee.ID), refreshToken, s.jwtService.GetRefreshTokenTTL()); err != nil {
		s.logger.Error("Не удалось сохранить refresh-токен в кеше", zap.Error(err))
		return nil, err
	}

	return &dto.TokenPairDTO{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPairDTO, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrInvalidToken
	}

	stored, err := s.cacheRepo.Get(ctx, refreshTokenKey(claims.EmployeeID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}
	if stored != refreshToken {
		// Токен был перевыпущен - старый больше не принимается.
		return nil, apperrors.ErrInvalidToken
	}

	employee, err := s.employeeRepo.FindEmployee(ctx, claims.EmployeeID)
	if err != nil {
		return nil, err
	}

	accessToken, newRefreshToken, err := s.jwtService.GenerateTokens(employee.ID, employee.Role)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации токенов: %w", err)
	}

	if err := s.cacheRepo.Set(ctx, refreshTokenKey(employee.ID), newRefreshToken, s.jwtService.GetRefreshTokenTTL()); err != nil {
		return nil, err
	}

	return &dto.TokenPairDTO{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}
