// Package validation checks tasks, groups and chat messages before they reach the
// document store.
//
// Validators are pure: they never touch the store, never panic and report every
// violation at once as human-readable strings.
//
//	res := validation.ValidateTask(task)
//	if !res.Valid {
//	    return res.Err()
//	}
//
// Group chat creation uses ValidateParticipants, which stops at the first problem
// and returns an error matchable with errors.Is.
package validation
