package validation

import "github.com/studyhub/collab/structs"

var std = New()

// Default returns the shared wall-clock validator.
func Default() *Validator {
	return std
}

// ValidateTask validates a task on the store path with the default validator.
func ValidateTask(t structs.Task) Result {
	return std.ValidateTask(t)
}

// ValidateTaskCreation validates a task from the creation form with the default validator.
func ValidateTaskCreation(t structs.Task) Result {
	return std.ValidateTaskCreation(t)
}

// ValidateTaskUpdate validates a partial update with the default validator.
func ValidateTaskUpdate(updates map[string]any) Result {
	return std.ValidateTaskUpdate(updates)
}

// ValidateGroup validates a group with the default validator.
func ValidateGroup(g structs.Group) Result {
	return std.ValidateGroup(g)
}

// ValidateMessage validates a message with the default validator.
func ValidateMessage(m structs.Message) Result {
	return std.ValidateMessage(m)
}
