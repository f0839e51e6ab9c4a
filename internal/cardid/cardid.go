// Package cardid derives stable card identifiers from card content. The ID
// is a hash of the normalized question and answer only, so editing display
// metadata (tags, difficulty, frequency) never orphans review progress.
package cardid

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Normalize cleans and joins the identity-bearing fields. Each part is
// lowercased, trimmed, and has Windows line endings folded, then the parts
// are joined with a newline so adjacent fields cannot run together.
func Normalize(question, answer string) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}
	return normalizePart(question) + "\n" + normalizePart(answer)
}

// Hash returns the SHA-256 of the normalized content as a hex string.
func Hash(question, answer string) string {
	sum := sha256.Sum256([]byte(Normalize(question, answer)))
	return fmt.Sprintf("%x", sum)
}
