package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// normalizeCost maps a cost bcrypt would reject onto bcrypt.DefaultCost.
func normalizeCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

// timingHash is compared against when the email is unknown. It must share the
// cost of real password hashes so both login failures spend the same work.
func timingHash(cost int) []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("lingoleap-timing-parity"), cost)
	if err != nil {
		panic(fmt.Sprintf("timing hash at cost %d: %v", cost, err))
	}
	return h
}

func hashPassword(password string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// refreshDigest shrinks a JWT below bcrypt's 72-byte input limit while keeping
// every byte of the token significant.
func refreshDigest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return []byte(hex.EncodeToString(sum[:]))
}

func hashRefreshToken(token string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword(refreshDigest(token), cost)
	if err != nil {
		return "", fmt.Errorf("hash refresh token: %w", err)
	}
	return string(h), nil
}

func refreshTokenMatches(hash, token string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), refreshDigest(token)) == nil
}
