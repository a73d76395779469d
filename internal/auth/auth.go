// Package auth resolves bearer tokens into principals. Tokens are minted by
// the external identity collaborator; this package only verifies signatures
// and extracts claims. There is no login or password verification here.
package auth

import (
	"errors"
	"fmt"

	apperrors "github.com/edi-app/edi-intake/internal"
	"github.com/edi-app/edi-intake/internal/policy"
	"github.com/golang-jwt/jwt/v5"
)

// Role claim values recognized on tokens. ServiceRole marks the elevated
// service credential; collector and admin are ordinary user tokens.
const (
	RoleService   = "service_role"
	RoleAdmin     = "admin"
	RoleCollector = "collector"
)

// Principal is the verified caller identity handed to services.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

func (p Principal) IsService() bool {
	return p.Role == RoleService
}

// Subject converts the principal into the shape policy predicates consume.
func (p Principal) Subject() policy.Subject {
	return policy.Subject{UserID: p.UserID, Email: p.Email, Role: p.Role}
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 tokens against the shared secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// ParseToken verifies the signature and expiry and returns the principal.
// The user id rides in the standard subject claim.
func (v *Verifier) ParseToken(tokenString string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	return &Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// CapabilityFor mints the elevated capability for verified service-role
// principals and the zero capability for everyone else. This is the only
// production code path converting a role claim into a capability.
func CapabilityFor(p *Principal) policy.Capability {
	if p != nil && p.IsService() {
		return policy.VerifiedService()
	}
	return policy.Capability{}
}
