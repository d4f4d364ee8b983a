package validation

import (
	"fmt"
	"strings"
)

// Result is the outcome of validating one entity. Errors is empty iff Valid.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`

	entity string
}

func newResult(entity string, errs []string) Result {
	if len(errs) == 0 {
		return Result{Valid: true, entity: entity}
	}
	return Result{Valid: false, Errors: errs, entity: entity}
}

// Err returns nil for a valid result and an *Error otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Entity: r.entity, Errors: append([]string(nil), r.Errors...)}
}

// Error carries the itemized findings of a failed validation.
type Error struct {
	Entity string
	Errors []string
}

func (e *Error) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(e.Errors, "; "))
}

// collector accumulates findings for one entity.
type collector struct {
	entity string
	errs   []string
}

func (c *collector) add(msg string) {
	c.errs = append(c.errs, msg)
}

func (c *collector) result() Result {
	return newResult(c.entity, c.errs)
}
