package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

func HashContent(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// SplitLines splits content on "\n" without producing a phantom empty
// line for a trailing newline, so index i-1 is line i of the text.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
