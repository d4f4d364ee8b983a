// Package deletion removes documents in bounded batches and erases user accounts.
//
// A BatchDeleter never puts more than data.MaxBatchSize deletes into one commit. It
// pages through a collection until a round comes back short. An AccountEraser runs
// one BatchDeleter loop per owned collection. It treats erasure as best effort: a
// failing collection is recorded in the Report and the next collection still runs.
//
//	eraser := deletion.NewAccountEraser(store,
//	    deletion.WithReporter(observes.NewErasureReporter()),
//	    deletion.WithFollowUp(publisher),
//	)
//	report := eraser.EraseAccount(ctx, uid)
//	if report.Partial() {
//	    return report.Err()
//	}
package deletion
