package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sampahku/internal/models"
)

// Principal is the signed-in identity carried by a session
type Principal struct {
	ID   string      `json:"id"`
	Role models.Role `json:"role"`
	Name string      `json:"name"`
	RT   string      `json:"rt,omitempty"`
	RW   string      `json:"rw,omitempty"`
}

// Area returns the RT/RW of the principal
func (p Principal) Area() models.Area {
	return models.Area{RT: p.RT, RW: p.RW}
}

// SessionClaims are the JWT claims of a session token
type SessionClaims struct {
	Role models.Role `json:"role"`
	Name string      `json:"name"`
	RT   string      `json:"rt,omitempty"`
	RW   string      `json:"rw,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies HMAC-signed session tokens
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is how long issued tokens stay valid
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for the principal
func (m *SessionManager) Issue(p Principal) (string, error) {
	now := m.now()
	claims := SessionClaims{
		Role: p.Role,
		Name: p.Name,
		RT:   p.RT,
		RW:   p.RW,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Issuer:    "sampahku",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses a token and returns its principal
func (m *SessionManager) Verify(tokenString string) (*Principal, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return &Principal{
		ID:   claims.Subject,
		Role: claims.Role,
		Name: claims.Name,
		RT:   claims.RT,
		RW:   claims.RW,
	}, nil
}
