package validation

import (
	"sort"
	"time"

	"github.com/studyhub/collab/ecode"
	"github.com/studyhub/collab/structs"
)

const (
	MaxTitleLength            = 500
	MaxTaskDescriptionLength  = 5000
	MaxCreationDescriptionLen = 1000
	MinAssignees              = 1
	MaxAssignees              = 50
)

// ValidateTask checks a task on the store write path. Description is optional here.
func (v *Validator) ValidateTask(t structs.Task) Result {
	c := &collector{entity: "task"}
	v.checkTask(c, t)
	if len([]rune(t.Description)) > MaxTaskDescriptionLength {
		c.add(ecode.FieldTooLong("description", MaxTaskDescriptionLength))
	}
	return c.result()
}

// ValidateTaskCreation checks a task created from the task form, where a
// description is required and shorter.
func (v *Validator) ValidateTaskCreation(t structs.Task) Result {
	c := &collector{entity: "task"}
	v.checkTask(c, t)
	switch {
	case isBlank(t.Description):
		c.add(ecode.FieldIsRequired("description"))
	case len([]rune(t.Description)) > MaxCreationDescriptionLen:
		c.add(ecode.FieldTooLong("description", MaxCreationDescriptionLen))
	}
	return c.result()
}

func (v *Validator) checkTask(c *collector, t structs.Task) {
	checkTags(c, t)
	if !isBlank(t.UserID) && len(t.AssignedTo) > 0 && !contains(t.AssignedTo, t.UserID) {
		c.add(ecode.FieldMustContain("assignedTo", "the task creator"))
	}
	v.checkFresh(c, "createdAt", t.CreatedAt)
}

// immutableTaskFields cannot be changed once the task exists.
var immutableTaskFields = map[string]bool{
	"id":        true,
	"userId":    true,
	"createdAt": true,
}

// ValidateTaskUpdate checks a partial-field update. Only the keys present are validated.
func (v *Validator) ValidateTaskUpdate(updates map[string]any) Result {
	c := &collector{entity: "task update"}
	if len(updates) == 0 {
		c.add(ecode.FieldIsEmpty("update"))
		return c.result()
	}

	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		val := updates[k]
		if immutableTaskFields[k] {
			c.add(ecode.FieldIsImmutable(k))
			continue
		}
		switch k {
		case "title":
			s, ok := val.(string)
			switch {
			case !ok || isBlank(s):
				c.add(ecode.FieldIsRequired(k))
			case len([]rune(s)) > MaxTitleLength:
				c.add(ecode.FieldTooLong(k, MaxTitleLength))
			}
		case "description":
			s, ok := val.(string)
			if !ok {
				c.add(ecode.FieldIsInvalid(k))
			} else if len([]rune(s)) > MaxTaskDescriptionLength {
				c.add(ecode.FieldTooLong(k, MaxTaskDescriptionLength))
			}
		case "subject", "groupId":
			if _, ok := val.(string); !ok && val != nil {
				c.add(ecode.FieldIsInvalid(k))
			}
		case "status":
			checkEnum(c, k, val, structs.TaskStatuses())
		case "priority":
			checkEnum(c, k, val, structs.TaskPriorities())
		case "category":
			checkEnum(c, k, val, structs.TaskCategories())
		case "dueDate":
			switch val.(type) {
			case nil, time.Time, *time.Time:
			default:
				c.add(ecode.FieldIsInvalid(k))
			}
		case "assignedTo":
			ids, ok := stringList(val)
			switch {
			case !ok:
				c.add(ecode.FieldIsInvalid(k))
			case len(ids) < MinAssignees:
				c.add(ecode.FieldTooFew(k, MinAssignees))
			case len(ids) > MaxAssignees:
				c.add(ecode.FieldTooMany(k, MaxAssignees))
			}
		default:
			c.add(ecode.FieldIsUnknown(k))
		}
	}
	return c.result()
}

func checkEnum(c *collector, field string, val any, allowed []string) {
	var s string
	switch x := val.(type) {
	case string:
		s = x
	case structs.TaskStatus:
		s = string(x)
	case structs.TaskPriority:
		s = string(x)
	case structs.TaskCategory:
		s = string(x)
	}
	if !contains(allowed, s) {
		c.add(ecode.FieldNotOneOf(field, allowed...))
	}
}

// stringList accepts []string or a decoded JSON array of strings.
func stringList(val any) ([]string, bool) {
	switch x := val.(type) {
	case []string:
		return x, true
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
