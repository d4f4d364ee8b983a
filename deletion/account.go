package deletion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/collab/consts"
	"github.com/studyhub/collab/ctxutil"
	"github.com/studyhub/collab/data"
	"github.com/studyhub/collab/logging/logger"
)

// ErrMissingUserID is returned for an erasure request without a user id.
var ErrMissingUserID = errors.New("user id is required")

// Target is one collection owned by a user through Field.
type Target struct {
	Collection string
	Field      string
}

// DefaultTargets lists owned content in erasure order.
var DefaultTargets = []Target{
	{Collection: consts.MessagesCollection, Field: consts.FieldSenderID},
	{Collection: consts.TasksCollection, Field: consts.FieldUserID},
	{Collection: consts.GroupMembersCollection, Field: consts.FieldUserID},
}

// Reporter receives every partial erasure.
type Reporter interface {
	ReportErasure(ctx context.Context, r *Report)
}

// FollowUp schedules a compensating erasure job for an external worker.
type FollowUp interface {
	PublishFollowUp(ctx context.Context, job Job) error
}

// Job asks a worker to finish erasing the listed collections.
type Job struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Profile     bool      `json:"profile"`
	Collections []string  `json:"collections"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Report is the outcome of one account erasure.
type Report struct {
	UserID         string
	ProfileDeleted bool
	ProfileErr     error
	Collections    []CollectionResult
	Total          int
	FollowUpID     string
}

// Partial reports whether any step failed.
func (r *Report) Partial() bool {
	if r.ProfileErr != nil {
		return true
	}
	for _, c := range r.Collections {
		if c.Err != nil {
			return true
		}
	}
	return false
}

// Err joins every step failure, or returns nil when erasure completed.
func (r *Report) Err() error {
	var errs []error
	if r.ProfileErr != nil {
		errs = append(errs, fmt.Errorf("profile: %w", r.ProfileErr))
	}
	for _, c := range r.Collections {
		if c.Err != nil {
			errs = append(errs, c.Err)
		}
	}
	return errors.Join(errs...)
}

// Breakdown maps each collection to its deleted count.
func (r *Report) Breakdown() map[string]int {
	out := make(map[string]int, len(r.Collections))
	for _, c := range r.Collections {
		out[c.Collection] = c.Deleted
	}
	return out
}

// Failed lists the collections that did not finish.
func (r *Report) Failed() []string {
	var out []string
	for _, c := range r.Collections {
		if c.Err != nil {
			out = append(out, c.Collection)
		}
	}
	return out
}

// Hint returns a user-facing suggestion for a partial erasure.
func (r *Report) Hint() string {
	if err := r.Err(); err != nil {
		return data.Hint(err)
	}
	return ""
}

// EraserOption configures an AccountEraser.
type EraserOption func(*AccountEraser)

// WithTargets replaces DefaultTargets.
func WithTargets(targets ...Target) EraserOption {
	return func(e *AccountEraser) {
		e.targets = targets
	}
}

// WithReporter forwards partial erasures to r.
func WithReporter(r Reporter) EraserOption {
	return func(e *AccountEraser) {
		e.reporter = r
	}
}

// WithFollowUp publishes a compensating job for partial erasures.
func WithFollowUp(f FollowUp) EraserOption {
	return func(e *AccountEraser) {
		e.followUp = f
	}
}

// WithDeleterOptions configures the underlying BatchDeleter.
func WithDeleterOptions(opts ...Option) EraserOption {
	return func(e *AccountEraser) {
		e.deleterOpts = append(e.deleterOpts, opts...)
	}
}

// WithClock sets the time source stamped on follow-up jobs.
func WithClock(now func() time.Time) EraserOption {
	return func(e *AccountEraser) {
		e.now = now
	}
}

// AccountEraser deletes a user's profile and owned content.
type AccountEraser struct {
	store       data.DocumentStore
	deleter     *BatchDeleter
	deleterOpts []Option
	targets     []Target
	reporter    Reporter
	followUp    FollowUp
	now         func() time.Time
}

// NewAccountEraser returns an eraser over store.
func NewAccountEraser(store data.DocumentStore, opts ...EraserOption) *AccountEraser {
	e := &AccountEraser{
		store:   store,
		targets: DefaultTargets,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.deleter = NewBatchDeleter(store, e.deleterOpts...)
	return e
}

// EraseAccount deletes users/{uid}, then every target collection in order.
// A missing profile counts as deleted. Failures never stop later steps.
func (e *AccountEraser) EraseAccount(ctx context.Context, uid string) *Report {
	report := &Report{UserID: uid}
	if strings.TrimSpace(uid) == "" {
		report.ProfileErr = ErrMissingUserID
		return report
	}

	ctx, _ = ctxutil.EnsureTraceID(ctxutil.SetUserID(ctx, uid))

	if err := e.store.Delete(ctx, consts.UsersCollection, uid); err != nil && !data.IsNotFound(err) {
		logger.Warnf(ctx, "erasure: profile delete failed: %v", err)
		report.ProfileErr = err
	} else {
		report.ProfileDeleted = true
	}

	for _, t := range e.targets {
		res := e.deleter.DeleteMatching(ctx, t.Collection, data.Eq(t.Field, uid))
		report.Collections = append(report.Collections, res)
		report.Total += res.Deleted
	}

	if !report.Partial() {
		logger.Infof(ctx, "erasure: removed %d documents", report.Total)
		return report
	}

	logger.Errorf(ctx, "erasure: partial, removed %d documents: %v", report.Total, report.Err())
	if e.reporter != nil {
		e.reporter.ReportErasure(ctx, report)
	}
	if e.followUp != nil {
		job := Job{
			ID:          uuid.NewString(),
			UserID:      uid,
			Profile:     report.ProfileErr != nil,
			Collections: report.Failed(),
			Reason:      report.Err().Error(),
			RequestedAt: e.now().UTC(),
		}
		if err := e.followUp.PublishFollowUp(ctx, job); err != nil {
			logger.Errorf(ctx, "erasure: follow-up publish failed: %v", err)
		} else {
			report.FollowUpID = job.ID
		}
	}
	return report
}
