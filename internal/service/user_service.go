package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MidnightMr/parking-service/internal/models"
	"github.com/MidnightMr/parking-service/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrPlateNotFound = errors.New("license plate not found")

// UpdateProfileCommand carries the mutable profile fields; nil means keep.
type UpdateProfileCommand struct {
	Name     *string
	Phone    *string
	Password *string
}

// UpdateUserCommand is the admin variant; it can additionally change the role.
type UpdateUserCommand struct {
	Name  *string
	Phone *string
	Role  *models.Role
}

type UserService interface {
	Profile(ctx context.Context, actor Actor) (*models.User, error)
	UpdateProfile(ctx context.Context, actor Actor, cmd UpdateProfileCommand) (*models.User, error)
	AddPlate(ctx context.Context, actor Actor, plateNumber string, vehicleType models.VehicleType, isDefault bool) (*models.User, error)
	RemovePlate(ctx context.Context, actor Actor, plateNumber string) error
	SetDefaultPlate(ctx context.Context, actor Actor, plateNumber string) error

	ListUsers(ctx context.Context, actor Actor) ([]models.User, error)
	GetUser(ctx context.Context, actor Actor, userID uint) (*models.User, error)
	UpdateUser(ctx context.Context, actor Actor, userID uint, cmd UpdateUserCommand) (*models.User, error)
	DeleteUser(ctx context.Context, actor Actor, userID uint) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Profile(ctx context.Context, actor Actor) (*models.User, error) {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor Actor, cmd UpdateProfileCommand) (*models.User, error) {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if cmd.Name != nil {
		user.Name = *cmd.Name
	}
	if cmd.Phone != nil {
		user.Phone = *cmd.Phone
	}
	if cmd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*cmd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hash)
	}

	if err := s.users.Save(ctx, user); err != nil {
		// Phone carries a unique index; a conflicting update surfaces here.
		return nil, ErrUserExists
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, actor Actor) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.users.FindAll(ctx)
}

func (s *userService) GetUser(ctx context.Context, actor Actor, userID uint) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor Actor, userID uint, cmd UpdateUserCommand) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if cmd.Name != nil {
		user.Name = *cmd.Name
	}
	if cmd.Phone != nil {
		user.Phone = *cmd.Phone
	}
	if cmd.Role != nil {
		if *cmd.Role != models.RoleUser && *cmd.Role != models.RoleAdmin {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidState, *cmd.Role)
		}
		user.Role = *cmd.Role
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, ErrUserExists
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, actor Actor, userID uint) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if userID == actor.UserID {
		return fmt.Errorf("%w: cannot delete own account", ErrInvalidState)
	}
	n, err := s.users.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *userService) AddPlate(ctx context.Context, actor Actor, plateNumber string, vehicleType models.VehicleType, isDefault bool) (*models.User, error) {
	plate := &models.LicensePlate{
		UserID:      actor.UserID,
		PlateNumber: plateNumber,
		VehicleType: vehicleType,
		IsDefault:   isDefault,
	}
	if err := s.users.AddPlate(ctx, plate); err != nil {
		return nil, err
	}
	if isDefault {
		if err := s.users.SetDefaultPlate(ctx, actor.UserID, plateNumber); err != nil {
			return nil, err
		}
	}
	return s.users.FindByID(ctx, actor.UserID)
}

func (s *userService) RemovePlate(ctx context.Context, actor Actor, plateNumber string) error {
	n, err := s.users.RemovePlate(ctx, actor.UserID, plateNumber)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlateNotFound
	}
	return nil
}

func (s *userService) SetDefaultPlate(ctx context.Context, actor Actor, plateNumber string) error {
	if err := s.users.SetDefaultPlate(ctx, actor.UserID, plateNumber); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlateNotFound
		}
		return err
	}
	return nil
}
