package validation

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func participants(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("user-%d", i)
	}
	return ids
}

func TestValidateParticipants(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		want    error
		message string
	}{
		{"nil list", nil, ErrNoMembers, "no members"},
		{"empty list", []string{}, ErrNoMembers, "no members"},
		{"one member", []string{"u1"}, ErrTooFewMembers, "at least 2 members"},
		{"two members", []string{"u1", "u2"}, nil, ""},
		{"hundred members", participants(100), nil, ""},
		{"hundred and one", participants(101), ErrTooManyMembers, "100"},
		{"blank id", []string{"u1", " "}, ErrInvalidMemberIDs, "invalid member ids"},
		{"duplicate", []string{"u1", "u2", "u1"}, ErrDuplicateMembers, "duplicate"},
		{"duplicate at upper bound", append(participants(99), "user-0"), ErrDuplicateMembers, "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParticipants(tt.ids)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not mention %q", err, tt.message)
			}
		})
	}
}

func TestValidateParticipantsReportsCount(t *testing.T) {
	err := ValidateParticipants(participants(150))
	if err == nil || !strings.Contains(err.Error(), "currently has 150") {
		t.Errorf("expected actual count in error, got %v", err)
	}
}

func TestValidateParticipantsCheckOrder(t *testing.T) {
	// Size bounds are reported before blank or duplicate ids.
	err := ValidateParticipants([]string{""})
	if !errors.Is(err, ErrTooFewMembers) {
		t.Errorf("got %v, want ErrTooFewMembers", err)
	}
}
