package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// Role is the kind of principal a token was issued to.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Principal is the identity carried by a verified token.
type Principal struct {
	ID    uint   `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// AuthConfig configures token signing and the static admin account.
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

// AuthService issues and verifies session tokens for users and the admin.
//
// Tokens are stateless HS256 JWTs valid for TokenTTL after issuance. There is
// no server-side session store, so a token cannot be revoked or logged out
// before it expires.
type AuthService struct {
	userRepo   repositories.UserRepository
	publisher  EventPublisher
	jwtSecret  []byte
	tokenTTL   time.Duration
	adminEmail string
	adminHash  []byte
	now        func() time.Time
}

// NewAuthService creates a new AuthService. The admin password is hashed once
// here and only the hash is kept.
func NewAuthService(userRepo repositories.UserRepository, cfg AuthConfig, publisher EventPublisher) (*AuthService, error) {
	adminHash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		publisher:  publisher,
		jwtSecret:  []byte(cfg.JWTSecret),
		tokenTTL:   ttl,
		adminEmail: cfg.AdminEmail,
		adminHash:  adminHash,
		now:        time.Now,
	}, nil
}

// Signup registers a new user with a bcrypt-hashed password.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Name: name, Email: email, PasswordHash: string(hashedPassword)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race against a concurrent signup for the same email.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	publishEvent(s.publisher, EventUserSignedUp, map[string]interface{}{
		"userId": user.ID,
		"email":  user.Email,
	})
	return user, nil
}

// LoginUser checks the credentials and returns a user token. Unknown email and
// wrong password produce the same error.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(Principal{ID: user.ID, Name: user.Name, Email: user.Email, Role: RoleUser})
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// LoginAdmin checks the credentials against the configured admin account.
func (s *AuthService) LoginAdmin(email, password string) (string, error) {
	if email != s.adminEmail {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.adminHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issueToken(Principal{Email: s.adminEmail, Role: RoleAdmin})
}

func (s *AuthService) issueToken(p Principal) (string, error) {
	issuedAt := s.now()
	claims := jwt.MapClaims{
		"role":  string(p.Role),
		"email": p.Email,
		"iat":   issuedAt.Unix(),
		"exp":   issuedAt.Add(s.tokenTTL).Unix(),
	}
	if p.Role == RoleUser {
		claims["id"] = p.ID
		claims["name"] = p.Name
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// Verify parses and validates a token and returns the principal it carries.
func (s *AuthService) Verify(tokenString string) (*Principal, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	parser := &jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	// Tokens without an expiry would live forever.
	if _, ok := claims["exp"]; !ok {
		return nil, ErrTokenInvalid
	}

	p := &Principal{Role: Role(stringClaim(claims, "role")), Email: stringClaim(claims, "email")}
	switch p.Role {
	case RoleAdmin:
	case RoleUser:
		id, ok := claims["id"].(float64)
		if !ok || id < 1 {
			return nil, ErrTokenInvalid
		}
		p.ID = uint(id)
		p.Name = stringClaim(claims, "name")
	default:
		return nil, ErrTokenInvalid
	}
	return p, nil
}

// RequireRole succeeds only when p was issued for role.
func (s *AuthService) RequireRole(p *Principal, role Role) error {
	if p == nil {
		return ErrTokenMissing
	}
	if p.Role == role {
		return nil
	}
	if role == RoleAdmin {
		return ErrAdminOnly
	}
	return ErrUserOnly
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
