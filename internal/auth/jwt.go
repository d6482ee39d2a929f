// Package auth issues and verifies session tokens. The identity inside is
// self-reported at login; tokens only bind requests to a session.
package auth

import (
	"convenios-dashboard/internal/convenio"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the acting user of a session.
type Claims struct {
	SessionID string        `json:"sid"`
	Name      string        `json:"name"`
	Role      convenio.Role `json:"role"`
	jwt.RegisteredClaims
}

type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// TTL is the lifetime of issued tokens.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

func (s *Signer) Generate(sessionID, name string, role convenio.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionID: sessionID,
		Name:      name,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Signer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token invalid")
	}
	if claims.SessionID == "" {
		return nil, errors.New("token has no session")
	}
	return claims, nil
}
