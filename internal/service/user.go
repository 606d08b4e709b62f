package service

import (
	"context"
	"errors"
	"fmt"
	"tienda-services/internal/dto"
	"tienda-services/internal/model"
	"tienda-services/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	List(ctx context.Context) ([]*model.User, error)
	Get(ctx context.Context, userID uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Exists(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, req dto.UserRequest) (*model.User, error)
	Update(ctx context.Context, userID uint, req dto.UserRequest) (*model.User, error)
	Delete(ctx context.Context, userID uint) error
	Login(ctx context.Context, email, password string) (*dto.LoginResponse, error)
	Roles(ctx context.Context, userID uint) ([]model.Role, error)
}

type userServiceImpl struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	tokens   *TokenIssuer
	policies Policies
	hashCost int
}

func NewUserService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	tokens *TokenIssuer,
	policies Policies,
) UserService {
	return &userServiceImpl{
		db:       db,
		userRepo: userRepo,
		roleRepo: roleRepo,
		tokens:   tokens,
		policies: policies,
		hashCost: bcrypt.DefaultCost,
	}
}

func (s *userServiceImpl) resolveRoles(ctx context.Context, tx *gorm.DB, refs []dto.Ref, policy ReconcilePolicy) ([]model.Role, error) {
	return reconcile(ctx, "role", dto.RefIDs(refs), policy,
		func(ctx context.Context, ids []uint) ([]*model.Role, error) {
			return s.roleRepo.FindMany(ctx, tx, ids)
		},
		func(r *model.Role) uint { return r.ID },
	)
}

func (s *userServiceImpl) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("password is too long: %w", ErrValidation)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *userServiceImpl) List(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.FindAll(ctx)
}

func (s *userServiceImpl) Get(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, nil, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", userID)
	}
	return user, nil
}

func (s *userServiceImpl) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, nil, email)
	if err != nil {
		return nil, notFoundOr(err, "user", email)
	}
	return user, nil
}

func (s *userServiceImpl) Exists(ctx context.Context, email string) (bool, error) {
	return s.userRepo.EmailTaken(ctx, nil, email, 0)
}

func (s *userServiceImpl) Register(ctx context.Context, req dto.UserRequest) (*model.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := validateField("password", req.Password, "notblank"); err != nil {
		return nil, err
	}

	passwordHash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: passwordHash,
		BirthDate:    req.BirthDate,
		Address:      req.Address,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := s.userRepo.EmailTaken(ctx, tx, req.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("email %s already registered: %w", req.Email, ErrConflict)
		}

		roles, err := s.resolveRoles(ctx, tx, req.Roles, s.policies.OnCreate)
		if err != nil {
			return err
		}
		user.Roles = roles

		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			return conflictOr(err, "email already registered")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userServiceImpl) Update(ctx context.Context, userID uint, req dto.UserRequest) (*model.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var user *model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.userRepo.FindByID(ctx, tx, userID)
		if err != nil {
			return notFoundOr(err, "user", userID)
		}

		taken, err := s.userRepo.EmailTaken(ctx, tx, req.Email, userID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("email %s already registered: %w", req.Email, ErrConflict)
		}

		roles, err := s.resolveRoles(ctx, tx, req.Roles, s.policies.OnUpdate)
		if err != nil {
			return err
		}

		existing.FirstName = req.FirstName
		existing.LastName = req.LastName
		existing.Email = req.Email
		existing.BirthDate = req.BirthDate
		existing.Address = req.Address
		existing.Roles = roles
		// an empty password keeps the stored one
		if req.Password != "" {
			existing.PasswordHash, err = s.hash(req.Password)
			if err != nil {
				return err
			}
		}

		if err := s.userRepo.Update(ctx, tx, existing); err != nil {
			return conflictOr(err, "email already registered")
		}
		user = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userServiceImpl) Delete(ctx context.Context, userID uint) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return notFoundOr(err, "user", userID)
	}
	return nil
}

func (s *userServiceImpl) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func (s *userServiceImpl) Roles(ctx context.Context, userID uint) ([]model.Role, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Roles == nil {
		return []model.Role{}, nil
	}
	return user.Roles, nil
}
