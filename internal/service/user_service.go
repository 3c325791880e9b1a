package service

import (
	"context"
	"errors"
	"strings"

	"filing-advisor-go/internal/model"
	"filing-advisor-go/internal/repository"
	"filing-advisor-go/pkg/hash"
	"filing-advisor-go/pkg/log"

	"github.com/rotisserie/eris"
)

// ErrInvalidUser 表示用户参数不合法。
var ErrInvalidUser = eris.New("invalid user")

// UserService 管理审计日志引用的用户。系统本身不做登录认证。
type UserService interface {
	// Seed 创建用户；邮箱已存在时更新密码和角色。返回的 bool 表示是否新建。
	Seed(ctx context.Context, email, password, role string) (*model.User, bool, error)
	GetProfile(ctx context.Context, id uint) (*model.User, error)
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo repository.UserRepository
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) Seed(ctx context.Context, email, password, role string) (*model.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, false, eris.Wrapf(ErrInvalidUser, "email %q", email)
	}
	if password == "" {
		return nil, false, eris.Wrap(ErrInvalidUser, "password must not be empty")
	}
	if role == "" {
		role = model.RoleAdvisor
	}
	if role != model.RoleAdvisor && role != model.RoleAdmin {
		return nil, false, eris.Wrapf(ErrInvalidUser, "role %q", role)
	}

	// 1. 对密码进行哈希处理
	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, false, eris.Wrap(err, "user: hash password")
	}

	// 2. 已存在则更新
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		existing.PasswordHash = hashedPassword
		existing.Role = role
		if err := s.userRepo.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		log.Infof("[UserService] 更新用户, email: %s, role: %s", email, role)
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	user := &model.User{Email: email, Role: role, PasswordHash: hashedPassword}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, err
	}
	log.Infof("[UserService] 创建用户, email: %s, role: %s, id: %d", email, role, user.ID)
	return user, true, nil
}

func (s *userService) GetProfile(ctx context.Context, id uint) (*model.User, error) {
	return s.userRepo.FindByID(ctx, id)
}
