package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"bioAffiliate/domain"
	"bioAffiliate/pkg/logger"
	"bioAffiliate/pkg/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id uint) error
}

type userService struct {
	userRepo UserRepository
}

func NewUserService(userRepo UserRepository) *userService {
	return &userService{
		userRepo: userRepo,
	}
}

func (s *userService) Register(ctx context.Context, fullName, email, password, role string) (domain.User, error) {
	if role != domain.RoleAdmin {
		role = domain.RoleStaff
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser := domain.User{
		FullName: fullName,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, ErrEmailTaken
		}
		logger.Error("failed to create user", err)
		return domain.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	newUser.Password = ""

	return newUser, nil
}

// Login checks the password and issues a JWT carrying the user's role.
func (s *userService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	found, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.User{}, ErrInvalidCredentials
		}
		return "", domain.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.Password), []byte(password)); err != nil {
		return "", domain.User{}, ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(strconv.FormatUint(uint64(found.ID), 10), found.Role)
	if err != nil {
		logger.Error("failed to sign token", err)
		return "", domain.User{}, fmt.Errorf("failed to sign token: %w", err)
	}

	found.Password = ""

	return token, found, nil
}

func (s *userService) GetAll(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		users[i].Password = ""
	}

	return users, nil
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return s.userRepo.Delete(ctx, id)
}
