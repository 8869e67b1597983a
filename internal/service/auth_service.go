package service

import (
	"strings"
	"time"

	"github.com/scanpesa/internal/config"
	"github.com/scanpesa/internal/logger"
	"github.com/scanpesa/internal/models"
	"github.com/scanpesa/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService admin authentication
type AuthService struct {
	cfg       config.JWTConfig
	adminRepo repository.AdminRepository
	now       func() time.Time
}

// NewAuthService creates the auth service
func NewAuthService(cfg config.JWTConfig, adminRepo repository.AdminRepository) *AuthService {
	if cfg.ExpireHours <= 0 {
		cfg.ExpireHours = 24
	}
	return &AuthService{cfg: cfg, adminRepo: adminRepo, now: time.Now}
}

// HashPassword bcrypt hash
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a password with its hash
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// JWTClaims admin token claims
type JWTClaims struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateJWT signs an admin token
func (s *AuthService) GenerateJWT(admin *models.Admin) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(time.Duration(s.cfg.ExpireHours) * time.Hour)

	claims := JWTClaims{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT verifies signature and expiry
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrTokenInvalid
}

// Authorize parses a bearer token and checks it was not revoked
func (s *AuthService) Authorize(tokenString string) (*JWTClaims, error) {
	claims, err := s.ParseJWT(strings.TrimSpace(tokenString))
	if err != nil {
		return nil, err
	}
	admin, err := s.adminRepo.GetByID(claims.AdminID)
	if err != nil {
		return nil, err
	}
	if admin == nil || admin.TokenVersion != claims.TokenVersion {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Login checks credentials and issues a token
func (s *AuthService) Login(username, password string) (*models.Admin, string, time.Time, error) {
	admin, err := s.adminRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if admin == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(admin.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := s.now()
	if err := s.adminRepo.TouchLastLogin(admin.ID, now); err != nil {
		logger.Warnw("admin_last_login_update_failed", "admin_id", admin.ID, "error", err)
	}
	admin.LastLoginAt = &now
	return admin, token, expiresAt, nil
}
