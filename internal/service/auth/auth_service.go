package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"bolao-api/internal/domain"
	"bolao-api/internal/service"
	"bolao-api/pkg/errors"
	"bolao-api/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// Claims are the JWT claims carried by a caller's bearer token
type Claims struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	jwt.RegisteredClaims
}

// Service implements the AuthService interface
type Service struct {
	jwtSecret []byte
	logger    *logger.Logger
}

// NewService creates a new auth service verifying HS256 tokens signed with jwtSecret
func NewService(jwtSecret string, logger *logger.Logger) service.AuthService {
	return &Service{
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

// ValidateToken validates a JWT token with signature verification and returns the user profile
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*domain.UserProfile, error) {
	s.logger.Debug("Validating JWT token")

	if len(s.jwtSecret) == 0 {
		s.logger.Error("JWT_SECRET not configured")
		return nil, errors.NewInternalError("JWT validation not configured", nil)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	if err != nil {
		s.logger.WithError(err).Debug("Failed to parse/validate JWT token")
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewAuthenticationError("Token has expired")
		}
		return nil, errors.NewAuthenticationError("Invalid JWT token")
	}

	if !token.Valid {
		return nil, errors.NewAuthenticationError("Invalid JWT token")
	}

	if claims.Subject == "" {
		s.logger.Warn("No user identifier found in JWT token")
		return nil, errors.NewAuthenticationError("Invalid JWT token: no user identifier")
	}

	profile := &domain.UserProfile{
		Sub:       claims.Subject,
		Name:      claims.Name,
		AvatarURL: claims.AvatarURL,
	}

	s.logger.WithField("user_id", profile.Sub).Debug("JWT token validated successfully")
	return profile, nil
}

// ResolveIdentity resolves the Authorization header into a tagged identity
func (s *Service) ResolveIdentity(ctx context.Context, authHeader string) domain.Identity {
	if authHeader == "" || !strings.HasPrefix(authHeader, bearerPrefix) {
		return domain.Unauthenticated()
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if token == "" {
		return domain.Unauthenticated()
	}

	profile, err := s.ValidateToken(ctx, token)
	if err == nil {
		return domain.Authenticated(profile)
	}
	if errors.IsType(err, errors.ErrorTypeAuthentication) {
		return domain.Unauthenticated()
	}

	s.logger.WithError(err).Error("Identity resolution failed")
	return domain.IdentityError(err)
}

// IssueToken signs a token for user that expires after ttl
func (s *Service) IssueToken(user *domain.UserProfile, ttl time.Duration) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", errors.NewInternalError("JWT signing not configured", nil)
	}
	if user == nil || user.Sub == "" {
		return "", errors.NewValidationError("user identifier is required", map[string]interface{}{"field": "sub"})
	}

	now := time.Now()
	claims := Claims{
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.NewInternalError("Failed to sign token", err)
	}
	return signed, nil
}
