// Package event defines the domain events the security core emits and a
// small publisher for delivering them to collaborator layers.
//
// The core announces lifecycle transitions (session.created,
// session.revoked, session.bulk_revoked) and threat signals
// (threat_detection.*, rotation.family_compromised). Notification
// fan-out, webhook delivery, and dashboards consume these events; none of
// them live in this module.
//
// Emission is advisory: a failed dispatch is logged and
// absorbed by the emitting component, never surfaced as an
// authentication failure.
//
// # Usage
//
//	transport := event.NewChannelTransport(256)
//	publisher := event.NewPublisher(transport)
//
//	go func() {
//		for e := range transport.Subscribe() {
//			// forward to webhook/notification layers
//			_ = e
//		}
//	}()
//
//	_ = publisher.Publish(ctx, event.SessionRevoked{
//		SessionID: sess.ID,
//		UserID:    sess.UserID,
//		Reason:    "user_logout",
//	})
//
// For tests and single-process deployments NewSyncTransport invokes
// handlers inline with deterministic ordering.
package event
