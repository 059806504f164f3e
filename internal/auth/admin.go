package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"bladeshop-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 12 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSecretNotSet       = errors.New("JWT_SECRET is not set")
	ErrInvalidToken       = errors.New("invalid token")
)

// Claims identifies the support account holding a token.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Admin authenticates the single support account configured through
// ADMIN_USERNAME / ADMIN_PASSWORD_HASH and issues its session tokens.
type Admin struct {
	username     string
	passwordHash string
	secret       []byte
	ttl          time.Duration
}

func NewAdmin(username, passwordHash, secret string) *Admin {
	return &Admin{
		username:     username,
		passwordHash: passwordHash,
		secret:       []byte(secret),
		ttl:          defaultTokenTTL,
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Login checks the credentials and returns a signed token. An empty
// configured hash disables login.
func (a *Admin) Login(username, password string) (string, error) {
	if a.passwordHash == "" {
		return "", ErrInvalidCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := CheckPasswordHash(password, a.passwordHash)
	if !userOK || !passOK {
		return "", ErrInvalidCredentials
	}

	return a.GenerateJWT(username)
}

func (a *Admin) GenerateJWT(username string) (string, error) {
	if len(a.secret) == 0 {
		return "", ErrSecretNotSet
	}

	now := time.Now()
	claims := Claims{
		Username: username,
		Role:     utils.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Admin) ParseJWT(tokenStr string) (*Claims, error) {
	if len(a.secret) == 0 {
		return nil, ErrSecretNotSet
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return a.secret, nil
		},
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// TTL is the lifetime of issued tokens.
func (a *Admin) TTL() time.Duration {
	return a.ttl
}
