package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failures are split so callers can tell a stale session
// ("log in again") apart from a forged or mangled token.
var (
	ErrNoSecret       = errors.New("jwt secret is not configured")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed or forged")
)

type Claims struct {
	UserID string `json:"sub"`
	Role   string `json:"role"`
	JTI    string `json:"jti"`
	jwt.RegisteredClaims
}

// Manager issues and verifies signed identity assertions. Tokens are
// stateless: there is no revocation list, validity is signature + expiry
// only, and logout is a client-side discard.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue embeds the subject id and role at issuance time. The role is a
// snapshot; the auth middleware re-reads it from the store on every request.
func (m *Manager) Issue(userID, role string) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		UserID: userID,
		Role:   role,
		JTI:    uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(m.secret)
}

// Verify checks signature and expiry. It never panics or propagates parser
// internals: every failure collapses to ErrTokenExpired or ErrTokenMalformed.
// Verification has no side effects, so calling it twice on the same token
// yields the same claims.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}

		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}

		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.UserID == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
