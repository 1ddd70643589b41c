package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
)

var ErrInvalidCredential = errors.New("invalid credential")

// Claims is the payload signed into a session credential.
type Claims struct {
	UserID int64             `json:"id"`
	Name   string            `json:"name"`
	Email  string            `json:"email"`
	Roles  []model.RoleGrant `json:"roles"`
	jwt.RegisteredClaims
}

// User rebuilds the identity carried by the claims.
func (c *Claims) User() model.User {
	return model.User{ID: c.UserID, Name: c.Name, Email: c.Email, Roles: c.Roles}
}

// TokenIssuer signs and parses HS256 session credentials.
// Whether a credential is still live is decided by the session store, not
// by anything inside the token.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), now: time.Now}
}

// Issue signs a credential for u. A random ID keeps two credentials issued
// for the same user in the same second distinct.
func (t *TokenIssuer) Issue(u model.User, jti string) (string, error) {
	claims := Claims{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Roles:  u.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       jti,
			Subject:  fmt.Sprint(u.ID),
			IssuedAt: jwt.NewNumericDate(t.now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies the signature of credential and returns its claims.
func (t *TokenIssuer) Parse(credential string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidCredential
	}
	return claims, nil
}

// SessionKey derives the key a session is persisted under: the hex SHA-256
// of the whole credential. Header and payload take part in the digest, so two
// credentials sharing a signature segment never address the same row.
func SessionKey(credential string) string {
	h := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(h[:])
}
