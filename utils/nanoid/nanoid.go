// Package nanoid generates short random identifiers.
package nanoid

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/studyhub/collab/consts"
)

const (
	defaultSize = 16
)

// getSize returns the provided size or the default size if not provided
func getSize(l ...int) int {
	if len(l) > 0 && l[0] > 0 {
		return l[0]
	}
	return defaultSize
}

// Must generates a NanoID with optional length using default alphabet
func Must(l ...int) string {
	return gonanoid.Must(getSize(l...))
}

// String generates a NanoID using only letters with optional length
func String(l ...int) string {
	return gonanoid.MustGenerate(consts.LowerUpper, getSize(l...))
}

// MessageID generates a client side message id.
func MessageID() string {
	return gonanoid.MustGenerate(consts.MessageIDAlphabet, consts.MessageIDSize)
}

// JoinCode generates a group join code.
func JoinCode() string {
	return gonanoid.MustGenerate(consts.JoinCodeAlphabet, consts.JoinCodeSize)
}

// IsMessageID reports whether id could have been produced by MessageID.
func IsMessageID(id string) bool {
	return len(id) == consts.MessageIDSize && onlyFrom(id, consts.MessageIDAlphabet)
}

func onlyFrom(s, alphabet string) bool {
	for _, r := range s {
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
	}
	return true
}
