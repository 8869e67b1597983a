// Package tokencodec issues redemption tokens and recognises identifiers
// presented at verification time.
package tokencodec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// RawTokenBytes entropy of an issued token
const RawTokenBytes = 16

// Kind classification of a presented identifier
type Kind int

const (
	KindRawToken Kind = iota
	KindOpaqueID
)

func (k Kind) String() string {
	if k == KindOpaqueID {
		return "opaque_id"
	}
	return "raw_token"
}

var opaqueIDPattern = regexp.MustCompile(`^[0-9a-fA-F-]{36,}$`)

// Token freshly issued token; Raw only ever leaves the process inside the QR URL
type Token struct {
	Raw  string
	Hash string
}

// Generate draws a new random token and its storage hash
func Generate() (Token, error) {
	buf := make([]byte, RawTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return Token{}, fmt.Errorf("read random: %w", err)
	}
	raw := hex.EncodeToString(buf)
	return Token{Raw: raw, Hash: Hash(raw)}, nil
}

// Hash lowercase hex sha256 of the raw token
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Classify decides whether a scanned identifier is a row id or a raw token.
// A 32 char hex token never matches, only the dashed 36 char uuid form does.
func Classify(identifier string) Kind {
	value := strings.TrimSpace(identifier)
	if !opaqueIDPattern.MatchString(value) {
		return KindRawToken
	}
	if len(value) == 36 {
		if _, err := uuid.Parse(value); err == nil {
			return KindOpaqueID
		}
	}
	return KindRawToken
}
