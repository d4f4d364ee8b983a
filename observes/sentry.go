package observes

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/studyhub/collab/config"
	"github.com/studyhub/collab/ctxutil"
	"github.com/studyhub/collab/deletion"
)

// NewSentry initializes the global Sentry client. An empty endpoint skips initialization.
func NewSentry(appName string, cfg *config.Sentry) error {
	if cfg == nil || cfg.Endpoint == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Endpoint,
		AttachStacktrace: true,
		SampleRate:       cfg.SampleRate,
		ServerName:       appName,
		Release:          cfg.Release,
		Environment:      cfg.Environment,
	})
}

// FlushSentry waits up to timeout for buffered events.
func FlushSentry(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// ErasureReporter sends partial account erasures to Sentry.
type ErasureReporter struct {
	hub *sentry.Hub
}

// NewErasureReporter reports through the current global hub.
func NewErasureReporter() *ErasureReporter {
	return &ErasureReporter{hub: sentry.CurrentHub()}
}

// NewErasureReporterWithHub reports through hub.
func NewErasureReporterWithHub(hub *sentry.Hub) *ErasureReporter {
	return &ErasureReporter{hub: hub}
}

// ReportErasure captures the joined erasure error with a per-collection breakdown.
func (r *ErasureReporter) ReportErasure(ctx context.Context, rep *deletion.Report) {
	err := rep.Err()
	if err == nil {
		return
	}

	hub := r.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetUser(sentry.User{ID: rep.UserID})
		scope.SetTag("component", "account_erasure")
		if traceID := ctxutil.GetTraceID(ctx); traceID != "" {
			scope.SetTag("trace_id", traceID)
		}
		breakdown := make(map[string]any, len(rep.Collections))
		for name, n := range rep.Breakdown() {
			breakdown[name] = n
		}
		scope.SetContext("erasure", sentry.Context{
			"profile_deleted": rep.ProfileDeleted,
			"total":           rep.Total,
			"failed":          rep.Failed(),
			"breakdown":       breakdown,
			"follow_up_id":    rep.FollowUpID,
		})
		hub.CaptureException(err)
	})
}
