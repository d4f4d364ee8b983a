// Package ecode builds the human-readable messages reported by validators.
//
// Messages are short and itemized so they can be shown to the user as-is:
//
//	ecode.FieldIsRequired("title")     // "title is required"
//	ecode.FieldTooLong("title", 500)   // "title must be at most 500 characters"
//	ecode.FieldTooMany("memberIds", 100)
package ecode
