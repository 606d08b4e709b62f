package service

import (
	"context"
	"tienda-services/internal/dto"
	"tienda-services/internal/model"
	"tienda-services/internal/repository"
)

type RoleService interface {
	List(ctx context.Context) ([]*model.Role, error)
	Get(ctx context.Context, roleID uint) (*model.Role, error)
	Create(ctx context.Context, req dto.RoleRequest) (*model.Role, error)
	Update(ctx context.Context, roleID uint, req dto.RoleRequest) (*model.Role, error)
	Delete(ctx context.Context, roleID uint) error
}

type roleServiceImpl struct {
	roleRepo repository.RoleRepository
}

func NewRoleService(roleRepo repository.RoleRepository) RoleService {
	return &roleServiceImpl{
		roleRepo: roleRepo,
	}
}

func (s *roleServiceImpl) List(ctx context.Context) ([]*model.Role, error) {
	return s.roleRepo.FindAll(ctx)
}

func (s *roleServiceImpl) Get(ctx context.Context, roleID uint) (*model.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, notFoundOr(err, "role", roleID)
	}
	return role, nil
}

func (s *roleServiceImpl) Create(ctx context.Context, req dto.RoleRequest) (*model.Role, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	role := &model.Role{Name: req.Name}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *roleServiceImpl) Update(ctx context.Context, roleID uint, req dto.RoleRequest) (*model.Role, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	role := &model.Role{ID: roleID, Name: req.Name}
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, notFoundOr(err, "role", roleID)
	}
	return role, nil
}

func (s *roleServiceImpl) Delete(ctx context.Context, roleID uint) error {
	if err := s.roleRepo.Delete(ctx, roleID); err != nil {
		return notFoundOr(err, "role", roleID)
	}
	return nil
}
