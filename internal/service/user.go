package service

import (
	"context"

	"go.uber.org/zap"

	"lostfound-api/internal/domain"
)

const (
	defaultUserPage = 20
	maxUserPage     = 100
)

type ListUsersQuery struct {
	Offset int    `form:"offset"`
	Limit  int    `form:"limit"`
	Q      string `form:"q"`
	Role   string `form:"role"`
}

type UserPage struct {
	Items []domain.User `json:"items"`
	Total int64         `json:"total"`
}

// UserService 是管理员接口；每个方法先过角色闸门
type UserService struct {
	users domain.UserRepository
	log   *zap.Logger
}

func NewUserService(users domain.UserRepository, l *zap.Logger) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserService{users: users, log: l}
}

func (s *UserService) Get(ctx context.Context, p domain.Principal, id uint) (*domain.User, error) {
	if err := p.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("lookup user", err)
	}
	if u == nil {
		return nil, domain.NotFound("User not found")
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, p domain.Principal, q ListUsersQuery) (*UserPage, error) {
	if err := p.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	switch {
	case q.Limit <= 0:
		q.Limit = defaultUserPage
	case q.Limit > maxUserPage:
		q.Limit = maxUserPage
	}
	fe := fieldErrors{}
	if q.Role != "" {
		if err := fe.checkVar("role", q.Role, "oneof=admin user manager driver"); err != nil {
			return nil, err
		}
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	rows, total, err := s.users.List(ctx, domain.UserQuery{
		Offset: q.Offset, Limit: q.Limit, Q: q.Q, Role: domain.Role(q.Role),
	})
	if err != nil {
		return nil, domain.Internal("list users", err)
	}
	if rows == nil {
		rows = []domain.User{}
	}
	return &UserPage{Items: rows, Total: total}, nil
}

func (s *UserService) Delete(ctx context.Context, p domain.Principal, id uint) (string, error) {
	if err := p.Require(domain.RoleAdmin); err != nil {
		return "", err
	}
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return "", domain.Internal("delete user", err)
	}
	if !ok {
		return "", domain.NotFound("User not found")
	}
	s.log.Info("user deleted", zap.Uint("uid", id), zap.Uint("by", p.UserID))
	return "User deleted successfully", nil
}

func (s *UserService) Promote(ctx context.Context, p domain.Principal, id uint) (string, error) {
	if err := s.setRole(ctx, p, id, domain.RoleAdmin); err != nil {
		return "", err
	}
	return "User promoted to admin successfully", nil
}

func (s *UserService) Demote(ctx context.Context, p domain.Principal, id uint) (string, error) {
	if err := s.setRole(ctx, p, id, domain.RoleUser); err != nil {
		return "", err
	}
	return "User demoted to user successfully", nil
}

func (s *UserService) setRole(ctx context.Context, p domain.Principal, id uint, role domain.Role) error {
	if err := p.Require(domain.RoleAdmin); err != nil {
		return err
	}
	ok, err := s.users.UpdateRole(ctx, id, role)
	if err != nil {
		return domain.Internal("update role", err)
	}
	if !ok {
		return domain.NotFound("User not found")
	}
	s.log.Info("user role changed", zap.Uint("uid", id), zap.String("role", string(role)), zap.Uint("by", p.UserID))
	return nil
}
