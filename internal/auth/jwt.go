package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the claims in our JWT token
type Claims struct {
	CandidateID string `json:"candidate_id"`
	Role        string `json:"role"` // "candidate" or "admin"
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid or expired token")

// Authenticator signs and verifies interview access tokens. An empty secret
// disables authentication, which is intended for local development only.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	if secret == "" {
		return &Authenticator{}
	}
	return &Authenticator{secret: []byte(secret)}
}

// Enabled reports whether token checks are enforced.
func (a *Authenticator) Enabled() bool {
	return len(a.secret) > 0
}

// GenerateInterviewToken issues a token granting one candidate access to the
// interview endpoint for 24 hours.
func (a *Authenticator) GenerateInterviewToken(candidateID string) (string, error) {
	claims := &Claims{
		CandidateID: candidateID,
		Role:        "candidate",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateToken validates a JWT token and returns the claims.
func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
