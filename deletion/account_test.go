package deletion

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/studyhub/collab/consts"
	"github.com/studyhub/collab/data"
	"github.com/studyhub/collab/data/memory"
)

type recordingReporter struct {
	reports []*Report
}

func (r *recordingReporter) ReportErasure(_ context.Context, rep *Report) {
	r.reports = append(r.reports, rep)
}

type recordingFollowUp struct {
	jobs []Job
	err  error
}

func (f *recordingFollowUp) PublishFollowUp(_ context.Context, job Job) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func seedAccount(t *testing.T, s *memory.Store, uid string) {
	t.Helper()
	ctx := context.Background()
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(s.Set(ctx, consts.UsersCollection, uid, map[string]any{"name": "Ada"}))
	seedMessages(t, s, uid, 620)
	for _, id := range []string{"t1", "t2", "t3"} {
		must(s.Set(ctx, consts.TasksCollection, uid+"-"+id, map[string]any{consts.FieldUserID: uid}))
	}
	must(s.Set(ctx, consts.TasksCollection, "other-task", map[string]any{consts.FieldUserID: "someone"}))
	must(s.Set(ctx, consts.GroupMembersCollection, "g1_"+uid, map[string]any{consts.FieldUserID: uid}))
	must(s.Set(ctx, consts.GroupMembersCollection, "g2_"+uid, map[string]any{consts.FieldUserID: uid}))
}

func TestEraseAccount(t *testing.T) {
	store := memory.New()
	seedAccount(t, store, "u1")

	var mu sync.Mutex
	var order []string
	store.SetHook(func(op, collection string) error {
		mu.Lock()
		defer mu.Unlock()
		if op == "delete" || op == "query" {
			if len(order) == 0 || order[len(order)-1] != op+" "+collection {
				order = append(order, op+" "+collection)
			}
		}
		return nil
	})

	reporter := &recordingReporter{}
	report := NewAccountEraser(store, WithReporter(reporter)).EraseAccount(context.Background(), "u1")

	if report.Partial() || report.Err() != nil {
		t.Fatalf("EraseAccount() partial: %v", report.Err())
	}
	if !report.ProfileDeleted || report.Total != 625 {
		t.Errorf("report = %+v", report)
	}
	want := map[string]int{
		consts.MessagesCollection:     620,
		consts.TasksCollection:        3,
		consts.GroupMembersCollection: 2,
	}
	if got := report.Breakdown(); !reflect.DeepEqual(got, want) {
		t.Errorf("Breakdown() = %v, want %v", got, want)
	}

	wantOrder := []string{
		"delete " + consts.UsersCollection,
		"query " + consts.MessagesCollection,
		"query " + consts.TasksCollection,
		"query " + consts.GroupMembersCollection,
	}
	if !reflect.DeepEqual(order, wantOrder) {
		t.Errorf("order = %v, want %v", order, wantOrder)
	}
	if store.Count(consts.TasksCollection) != 1 {
		t.Error("erasure removed another user's task")
	}
	if len(reporter.reports) != 0 {
		t.Error("complete erasure was reported")
	}
}

func TestEraseAccountMissingProfile(t *testing.T) {
	store := memory.New()
	seedMessages(t, store, "u1", 3)

	report := NewAccountEraser(store).EraseAccount(context.Background(), "u1")
	if report.Partial() || !report.ProfileDeleted || report.Total != 3 {
		t.Errorf("report = %+v, err = %v", report, report.Err())
	}
}

func TestEraseAccountPartial(t *testing.T) {
	store := memory.New()
	seedAccount(t, store, "u1")
	store.SetHook(func(op, collection string) error {
		if op == "query" && collection == consts.TasksCollection {
			return data.NewError(data.CodeDeadlineExceeded, "query", errors.New("deadline"))
		}
		return nil
	})

	reporter := &recordingReporter{}
	followUp := &recordingFollowUp{}
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	eraser := NewAccountEraser(store,
		WithReporter(reporter),
		WithFollowUp(followUp),
		WithClock(func() time.Time { return now }),
	)

	report := eraser.EraseAccount(context.Background(), "u1")
	if !report.Partial() {
		t.Fatal("Partial() = false, want true")
	}
	if data.Classify(report.Err()) != data.CodeDeadlineExceeded {
		t.Errorf("Err() = %v", report.Err())
	}
	if report.Total != 622 {
		t.Errorf("Total = %d, want messages and memberships still erased", report.Total)
	}
	if got := report.Failed(); !reflect.DeepEqual(got, []string{consts.TasksCollection}) {
		t.Errorf("Failed() = %v", got)
	}
	if !strings.Contains(report.Hint(), "try again") {
		t.Errorf("Hint() = %q", report.Hint())
	}

	if len(reporter.reports) != 1 || reporter.reports[0] != report {
		t.Errorf("reporter got %d reports", len(reporter.reports))
	}
	if len(followUp.jobs) != 1 {
		t.Fatalf("follow-up got %d jobs", len(followUp.jobs))
	}
	job := followUp.jobs[0]
	if job.UserID != "u1" || job.Profile || !reflect.DeepEqual(job.Collections, []string{consts.TasksCollection}) {
		t.Errorf("job = %+v", job)
	}
	if job.ID == "" || report.FollowUpID != job.ID || !job.RequestedAt.Equal(now) {
		t.Errorf("job id %q report id %q at %v", job.ID, report.FollowUpID, job.RequestedAt)
	}
}

func TestEraseAccountProfileFailure(t *testing.T) {
	store := memory.New()
	seedAccount(t, store, "u1")
	store.SetHook(func(op, collection string) error {
		if op == "delete" && collection == consts.UsersCollection {
			return data.ErrPermissionDenied
		}
		return nil
	})

	followUp := &recordingFollowUp{err: errors.New("broker down")}
	report := NewAccountEraser(store, WithFollowUp(followUp)).EraseAccount(context.Background(), "u1")

	if report.ProfileDeleted || !errors.Is(report.ProfileErr, data.ErrPermissionDenied) {
		t.Errorf("profile = %v, %v", report.ProfileDeleted, report.ProfileErr)
	}
	if report.Total != 625 {
		t.Errorf("Total = %d, want owned content erased despite profile failure", report.Total)
	}
	if report.FollowUpID != "" {
		t.Error("FollowUpID set although publish failed")
	}
}

func TestEraseAccountBlankUser(t *testing.T) {
	store := memory.New()
	seedMessages(t, store, "", 2)

	report := NewAccountEraser(store).EraseAccount(context.Background(), "  ")
	if !errors.Is(report.Err(), ErrMissingUserID) || report.Total != 0 {
		t.Errorf("report = %+v", report)
	}
	if store.Count(consts.MessagesCollection) != 2 {
		t.Error("blank user id erased documents")
	}
}
