package security

import "golang.org/x/crypto/bcrypt"

// Hasher wraps bcrypt with a configurable work factor.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Hasher{cost: cost}
}

// Hash hashes a plain text password with bcrypt. Each call salts
// independently, so two hashes of the same password differ.
func (h *Hasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify reports whether plain matches hash. A malformed or truncated hash
// is treated as a mismatch, never an error: callers only ever see yes/no.
func (h *Hasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
