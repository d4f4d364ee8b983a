package ecode

import (
	"fmt"
	"strings"
)

const (
	emptyMsg      = "empty"
	requiredMsg   = "is required"
	invalidMsg    = "is invalid"
	immutableMsg  = "cannot be changed"
	unknownMsg    = "is not a known field"
	staleMsg      = "must be within %s of the current time"
	tooLongMsg    = "must be at most %d characters"
	tooFewMsg     = "must contain at least %d entries"
	tooManyMsg    = "cannot contain more than %d entries"
	oneOfMsg      = "must be one of: %s"
	lengthMsg     = "must be exactly %d characters"
	containMsg    = "must include %s"
	notHostedMsg  = "must point to hosted storage"
	mismatchMsg   = "must match %s"
	notHostedHint = "upload the file before sending"
)

func subject(k []string, msg string) string {
	if len(k) > 0 && k[0] != "" {
		return fmt.Sprintf("%s %s", k[0], msg)
	}
	return msg
}

// FieldIsEmpty returns field empty message
func FieldIsEmpty(k ...string) string {
	return subject(k, emptyMsg)
}

// FieldIsRequired returns field required message
func FieldIsRequired(k ...string) string {
	return subject(k, requiredMsg)
}

// FieldIsInvalid returns field invalid message
func FieldIsInvalid(k ...string) string {
	return subject(k, invalidMsg)
}

// FieldIsImmutable returns field immutable message
func FieldIsImmutable(k ...string) string {
	return subject(k, immutableMsg)
}

// FieldIsUnknown returns unknown field message
func FieldIsUnknown(k ...string) string {
	return subject(k, unknownMsg)
}

// FieldTooLong returns a max length message
func FieldTooLong(field string, max int) string {
	return subject([]string{field}, fmt.Sprintf(tooLongMsg, max))
}

// FieldExactLength returns an exact length message
func FieldExactLength(field string, n int) string {
	return subject([]string{field}, fmt.Sprintf(lengthMsg, n))
}

// FieldTooFew returns a min size message
func FieldTooFew(field string, min int) string {
	return subject([]string{field}, fmt.Sprintf(tooFewMsg, min))
}

// FieldTooMany returns a max size message
func FieldTooMany(field string, max int) string {
	return subject([]string{field}, fmt.Sprintf(tooManyMsg, max))
}

// FieldNotOneOf returns an enum membership message
func FieldNotOneOf(field string, allowed ...string) string {
	return subject([]string{field}, fmt.Sprintf(oneOfMsg, strings.Join(allowed, ", ")))
}

// FieldMustContain returns a membership message, e.g. "assignedTo must include the task creator"
func FieldMustContain(field, what string) string {
	return subject([]string{field}, fmt.Sprintf(containMsg, what))
}

// FieldMustMatch returns a consistency message between two fields
func FieldMustMatch(field, other string) string {
	return subject([]string{field}, fmt.Sprintf(mismatchMsg, other))
}

// FieldIsStale returns a timestamp freshness message
func FieldIsStale(field, window string) string {
	return subject([]string{field}, fmt.Sprintf(staleMsg, window))
}

// FieldNotHosted returns an attachment hosting message
func FieldNotHosted(field string) string {
	return subject([]string{field}, notHostedMsg+" ("+notHostedHint+")")
}

// ContentRequired returns a message for an entity with no text and no attachment
func ContentRequired(entity string) string {
	return entity + " must have text or an attachment"
}
