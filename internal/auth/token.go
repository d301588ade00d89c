package auth

import (
	"fmt"
	"time"

	"github.com/atinyakov/sellharbor/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the token lifetime when none is configured.
const DefaultTokenTTL = 60 * time.Minute

// Claims binds a subject and a role to an expiry.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the verified content of a token.
type Identity struct {
	Subject string
	Role    string
}

// TokenIssuer signs and verifies HMAC JWTs with a shared secret.
type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer. algorithm must be one of HS256,
// HS384 or HS512; an empty value selects HS256. A non-positive ttl selects
// DefaultTokenTTL.
func NewTokenIssuer(secret, algorithm string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is empty")
	}
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), method: method, ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for subject with the given role.
func (i *TokenIssuer) Issue(subject, role string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(i.method, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry. Every failure yields
// common.ErrUnauthenticated.
func (i *TokenIssuer) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, common.ErrUnauthenticated
	}
	return &Identity{Subject: claims.Subject, Role: claims.Role}, nil
}
