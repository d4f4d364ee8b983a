package validation

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinChatParticipants = 2
	MaxChatParticipants = 100
)

var (
	ErrNoMembers        = errors.New("group chat has no members")
	ErrTooFewMembers    = errors.New("group chat must have at least 2 members")
	ErrTooManyMembers   = errors.New("group chat cannot have more than 100 members")
	ErrInvalidMemberIDs = errors.New("group chat has invalid member ids")
	ErrDuplicateMembers = errors.New("group chat has duplicate members")
)

// ValidateParticipants checks the member list of a new group chat. Checks run from
// cheapest to most expensive and stop at the first failure.
func ValidateParticipants(memberIDs []string) error {
	switch n := len(memberIDs); {
	case n == 0:
		return ErrNoMembers
	case n < MinChatParticipants:
		return ErrTooFewMembers
	case n > MaxChatParticipants:
		return fmt.Errorf("%w (currently has %d)", ErrTooManyMembers, n)
	}

	for _, id := range memberIDs {
		if strings.TrimSpace(id) == "" {
			return ErrInvalidMemberIDs
		}
	}

	seen := make(map[string]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		seen[id] = struct{}{}
	}
	if len(seen) != len(memberIDs) {
		return ErrDuplicateMembers
	}
	return nil
}
