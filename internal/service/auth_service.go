package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glotree/pbb-ledger/internal/cache"
	"github.com/glotree/pbb-ledger/internal/config"
	"github.com/glotree/pbb-ledger/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// StaffClaims 店员 JWT 声明
type StaffClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthService 店员认证服务。
// 只有一个店员账号，凭据放在配置里，不落数据库。
type AuthService struct {
	staff     config.StaffConfig
	rateLimit config.LoginRateLimitConfig
}

// NewAuthService 创建店员认证服务
func NewAuthService(staff config.StaffConfig, rateLimit config.LoginRateLimitConfig) *AuthService {
	return &AuthService{staff: staff, rateLimit: rateLimit}
}

// Login 校验凭据并签发 JWT
func (s *AuthService) Login(ctx context.Context, username, password, clientIP string) (string, error) {
	if blocked, err := s.checkRateLimit(ctx, clientIP); err != nil {
		logger.Warnw("login_rate_limit_check_failed", "error", err)
	} else if blocked {
		return "", ErrLoginRateLimited
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" ||
		username != strings.TrimSpace(s.staff.Username) ||
		s.staff.PasswordHash == "" {
		s.recordAttempt(ctx, clientIP)
		return "", ErrLoginInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.staff.PasswordHash), []byte(password)); err != nil {
		s.recordAttempt(ctx, clientIP)
		logger.Warnw("staff_login_failed", "username", username, "ip", clientIP)
		return "", ErrLoginInvalidCredentials
	}

	expireHours := s.staff.JWT.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	now := time.Now()
	claims := StaffClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.staff.JWT.SecretKey))
	if err != nil {
		return "", err
	}
	logger.Infow("staff_login_success", "username", username, "ip", clientIP)
	return signed, nil
}

// ParseToken 校验并解析 JWT
func (s *AuthService) ParseToken(tokenString string) (*StaffClaims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tokenString), "Bearer "))
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}
	token, err := jwt.ParseWithClaims(tokenString, &StaffClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(s.staff.JWT.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*StaffClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func loginAttemptKey(clientIP string) string {
	return fmt.Sprintf("login:attempts:%s", strings.TrimSpace(clientIP))
}

// checkRateLimit 判断该 IP 是否已超出尝试次数。Redis 未启用时不限流。
func (s *AuthService) checkRateLimit(ctx context.Context, clientIP string) (bool, error) {
	if !cache.Enabled() || strings.TrimSpace(clientIP) == "" || s.rateLimit.MaxAttempts <= 0 {
		return false, nil
	}
	var attempts int
	found, err := cache.GetJSON(ctx, loginAttemptKey(clientIP), &attempts)
	if err != nil {
		return false, err
	}
	return found && attempts >= s.rateLimit.MaxAttempts, nil
}

func (s *AuthService) recordAttempt(ctx context.Context, clientIP string) {
	if !cache.Enabled() || strings.TrimSpace(clientIP) == "" || s.rateLimit.MaxAttempts <= 0 {
		return
	}
	key := loginAttemptKey(clientIP)
	var attempts int
	if _, err := cache.GetJSON(ctx, key, &attempts); err != nil {
		return
	}
	attempts++
	window := s.rateLimit.WindowSeconds
	if attempts >= s.rateLimit.MaxAttempts && s.rateLimit.BlockSeconds > 0 {
		window = s.rateLimit.BlockSeconds
	}
	if window <= 0 {
		window = 300
	}
	if err := cache.SetJSON(ctx, key, attempts, time.Duration(window)*time.Second); err != nil {
		logger.Debugw("login_attempt_record_failed", "error", err)
	}
}
