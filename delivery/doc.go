// Package delivery sends chat messages and replays the ones that failed.
//
// A send moves a message through SENDING to SENT, or to FAILED_RETRYABLE or
// FAILED_PERMANENT depending on how the failure classifies. Retryable failures
// are parked in the offline queue; the Replayer resends them with exponential
// backoff when connectivity returns.
//
//	sender := delivery.NewSender(transport, q, delivery.WithStatusListener(ui.OnStatus))
//	msg, err := sender.Send(ctx, msg)
//
//	replayer := delivery.NewReplayer(transport, q)
//	go replayer.Watch(ctx, notifier)
//
// Read receipts and typing status go through SideChannel, which never fails the caller.
package delivery
