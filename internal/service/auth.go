package service

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"lostfound-api/internal/core/auth"
	"lostfound-api/internal/core/database"
	"lostfound-api/internal/domain"
	"lostfound-api/pkg/utils"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgPasswordMismatch   = "Your current password does not match our records."
	msgEmailTaken         = "The email has already been taken."
	msgPhoneTaken         = "The phone has already been taken."
)

type RegisterInput struct {
	Name                 string  `json:"name" validate:"required,max=255"`
	Email                string  `json:"email" validate:"required,email,max=255"`
	Phone                string  `json:"phone" validate:"required,max=15"`
	Birthday             *string `json:"birthday" validate:"omitempty,date"`
	Gender               *string `json:"gender" validate:"omitempty,oneof=male female other"`
	DriverLicense        *string `json:"driverlicense" validate:"omitempty,max=255"`
	Role                 *string `json:"role" validate:"omitempty,oneof=admin user manager driver"`
	Password             string  `json:"password" validate:"required,min=6,max=72,eqfield=PasswordConfirmation"`
	PasswordConfirmation string  `json:"password_confirmation"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword         string `json:"current_password" validate:"required"`
	NewPassword             string `json:"new_password" validate:"required,min=6,max=72,eqfield=NewPasswordConfirmation"`
	NewPasswordConfirmation string `json:"new_password_confirmation"`
}

type AuthResult struct {
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
}

type AuthService struct {
	users    domain.UserRepository
	jwt      *auth.JWTer
	denylist auth.Denylist
	log      *zap.Logger
	// 为 true 时注册只能得到 user 角色，其它角色须由管理员 promote
	lockRole bool
}

type AuthOption func(*AuthService)

// WithLockedRegisterRole 禁止注册时自选角色
func WithLockedRegisterRole(lock bool) AuthOption {
	return func(s *AuthService) { s.lockRole = lock }
}

func NewAuthService(users domain.UserRepository, j *auth.JWTer, d auth.Denylist, l *zap.Logger, opts ...AuthOption) *AuthService {
	if l == nil {
		l = zap.NewNop()
	}
	s := &AuthService{users: users, jwt: j, denylist: d, log: l}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Birthday = nullable(in.Birthday)
	in.Gender = nullable(in.Gender)
	in.DriverLicense = nullable(in.DriverLicense)
	in.Role = nullable(in.Role)

	fe := fieldErrors{}
	if err := fe.checkStruct(in); err != nil {
		return nil, err
	}
	if s.lockRole && in.Role != nil && domain.Role(*in.Role) != domain.RoleUser && !fe.has("role") {
		fe.add("role", "The role field is prohibited.")
	}
	if !fe.has("email") {
		taken, err := s.users.EmailTaken(ctx, in.Email)
		if err != nil {
			return nil, domain.Internal("lookup email", err)
		}
		if taken {
			fe.add("email", msgEmailTaken)
		}
	}
	if !fe.has("phone") {
		taken, err := s.users.PhoneTaken(ctx, in.Phone)
		if err != nil {
			return nil, domain.Internal("lookup phone", err)
		}
		if taken {
			fe.add("phone", msgPhoneTaken)
		}
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	birthday, err := parseOptionalDate(in.Birthday)
	if err != nil {
		return nil, domain.Invalid("birthday", "The birthday field must be a valid date.")
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, domain.Internal("hash password", err)
	}
	u := &domain.User{
		Name:          in.Name,
		Email:         in.Email,
		Phone:         in.Phone,
		Birthday:      birthday,
		Gender:        in.Gender,
		DriverLicense: in.DriverLicense,
		Role:          domain.RoleUser,
		PasswordHash:  hash,
	}
	if in.Role != nil {
		u.Role = domain.Role(*in.Role)
	}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发注册时唯一索引兜底
		if database.IsDuplicateKey(err) {
			return nil, s.duplicateError(ctx, u)
		}
		return nil, domain.Internal("create user", err)
	}
	token, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	usersRegistered.Inc()
	s.log.Info("user registered", zap.Uint("uid", u.ID), zap.String("role", string(u.Role)))
	if u.Role == domain.RoleAdmin {
		s.log.Warn("admin role self-assigned at registration",
			zap.Uint("uid", u.ID), zap.String("email", u.Email))
	}
	return &AuthResult{Message: "User registered successfully", User: u, Token: token}, nil
}

// duplicateError 唯一索引冲突后定位是哪个字段
func (s *AuthService) duplicateError(ctx context.Context, u *domain.User) error {
	fe := fieldErrors{}
	if taken, _ := s.users.EmailTaken(ctx, u.Email); taken {
		fe.add("email", msgEmailTaken)
	}
	if taken, _ := s.users.PhoneTaken(ctx, u.Phone); taken {
		fe.add("phone", msgPhoneTaken)
	}
	if len(fe) == 0 {
		fe.add("email", msgEmailTaken)
	}
	return fe.err()
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	fe := fieldErrors{}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := fe.checkStruct(in); err != nil {
		return nil, err
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, domain.Internal("lookup user", err)
	}
	if u == nil || !utils.CheckPassword(in.Password, u.PasswordHash) {
		loginFailures.Inc()
		return nil, domain.Unauthenticated(msgInvalidCredentials)
	}
	token, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token}, nil
}

func (s *AuthService) Logout(ctx context.Context, p domain.Principal) error {
	if err := p.Require(); err != nil {
		return err
	}
	// 黑名单要覆盖整个 refresh 窗口，否则过期后仍能换新
	until := p.ExpiresAt.Add(s.jwt.RefreshTTL - s.jwt.TTL)
	if err := s.denylist.Revoke(ctx, p.TokenID, until); err != nil {
		return domain.Internal("revoke token", err)
	}
	s.log.Info("user logged out", zap.Uint("uid", p.UserID))
	return nil
}

// Refresh 换发新 token，旧 jti 进入黑名单
func (s *AuthService) Refresh(ctx context.Context, raw string) (*AuthResult, error) {
	if raw == "" {
		return nil, domain.Unauthenticated("missing token")
	}
	claims, err := s.jwt.ParseForRefresh(raw)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshExpired) {
			return nil, domain.Unauthenticated("token has expired and can no longer be refreshed")
		}
		return nil, domain.Unauthenticated("invalid token")
	}
	// 先抢占旧 jti：同一个 token 并发 refresh 只有一个能换到新 token
	won, err := s.denylist.Claim(ctx, claims.ID, claims.IssuedAt.Add(s.jwt.RefreshTTL))
	if err != nil {
		return nil, domain.Internal("revoke token", err)
	}
	if !won {
		return nil, domain.Unauthenticated("token has been revoked")
	}
	u, err := s.userFromClaims(ctx, claims)
	if err != nil {
		return nil, err
	}
	token, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, p domain.Principal, in ChangePasswordInput) (string, error) {
	if err := p.Require(); err != nil {
		return "", err
	}
	fe := fieldErrors{}
	if err := fe.checkStruct(in); err != nil {
		return "", err
	}
	if err := fe.err(); err != nil {
		return "", err
	}
	u, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return "", domain.Internal("lookup user", err)
	}
	if u == nil {
		return "", domain.Unauthenticated("unauthorized")
	}
	if !utils.CheckPassword(in.CurrentPassword, u.PasswordHash) {
		return "", domain.AuthFailed(http.StatusBadRequest, msgPasswordMismatch)
	}
	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return "", domain.Internal("hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return "", domain.Internal("update password", err)
	}
	s.log.Info("password changed", zap.Uint("uid", u.ID))
	return "Password changed successfully", nil
}

func (s *AuthService) Profile(ctx context.Context, p domain.Principal) (*domain.User, error) {
	if err := p.Require(); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, domain.Internal("lookup user", err)
	}
	if u == nil {
		return nil, domain.NotFound("User not found")
	}
	return u, nil
}

// Authenticate 解析 bearer token 并加载当前用户；角色以数据库为准
func (s *AuthService) Authenticate(ctx context.Context, raw string) (domain.Principal, error) {
	if raw == "" {
		return domain.Principal{}, domain.Unauthenticated("missing token")
	}
	claims, err := s.jwt.Parse(raw)
	if err != nil {
		return domain.Principal{}, domain.Unauthenticated("invalid token")
	}
	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return domain.Principal{}, domain.Internal("check token", err)
	}
	if revoked {
		return domain.Principal{}, domain.Unauthenticated("token has been revoked")
	}
	u, err := s.userFromClaims(ctx, claims)
	if err != nil {
		return domain.Principal{}, err
	}
	p := domain.Principal{UserID: u.ID, Role: u.Role, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

func (s *AuthService) userFromClaims(ctx context.Context, c *auth.Claims) (*domain.User, error) {
	id, err := strconv.ParseUint(c.UID, 10, 64)
	if err != nil || id == 0 {
		return nil, domain.Unauthenticated("invalid token")
	}
	u, err := s.users.FindByID(ctx, uint(id))
	if err != nil {
		return nil, domain.Internal("lookup user", err)
	}
	if u == nil {
		return nil, domain.Unauthenticated("invalid token")
	}
	return u, nil
}

func (s *AuthService) issue(u *domain.User) (string, error) {
	token, err := s.jwt.Issue(strconv.FormatUint(uint64(u.ID), 10), string(u.Role))
	if err != nil {
		return "", domain.Internal("issue token", err)
	}
	return token, nil
}
