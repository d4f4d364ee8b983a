// Package structs defines the task, group and chat message models shared by the
// validators, the erasure engine and the delivery engine.
package structs

import "time"

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskCompleted  TaskStatus = "completed"
	TaskOverdue    TaskStatus = "overdue"
	TaskInProgress TaskStatus = "in_progress"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

type TaskCategory string

const (
	CategoryPersonal   TaskCategory = "personal"
	CategoryGroup      TaskCategory = "group"
	CategoryAssignment TaskCategory = "assignment"
)

// Task is a unit of work owned by UserID and assigned to one or more users.
type Task struct {
	ID          string       `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string       `json:"title" bson:"title" validate:"notblank,max=500"`
	Description string       `json:"description" bson:"description"`
	Subject     string       `json:"subject,omitempty" bson:"subject,omitempty"`
	Category    TaskCategory `json:"category" bson:"category" validate:"oneof=personal group assignment"`
	Status      TaskStatus   `json:"status" bson:"status" validate:"oneof=pending completed overdue in_progress"`
	Priority    TaskPriority `json:"priority" bson:"priority" validate:"oneof=low medium high"`
	DueDate     *time.Time   `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	CreatedAt   time.Time    `json:"createdAt" bson:"createdAt"`
	UserID      string       `json:"userId" bson:"userId" validate:"notblank"`
	AssignedTo  []string     `json:"assignedTo" bson:"assignedTo" validate:"min=1,max=50"`
	GroupID     string       `json:"groupId,omitempty" bson:"groupId,omitempty"`
}

// TaskStatuses lists the accepted task statuses in display order.
func TaskStatuses() []string {
	return []string{string(TaskPending), string(TaskCompleted), string(TaskOverdue), string(TaskInProgress)}
}

// TaskPriorities lists the accepted task priorities.
func TaskPriorities() []string {
	return []string{string(PriorityLow), string(PriorityMedium), string(PriorityHigh)}
}

// TaskCategories lists the accepted task categories.
func TaskCategories() []string {
	return []string{string(CategoryPersonal), string(CategoryGroup), string(CategoryAssignment)}
}
