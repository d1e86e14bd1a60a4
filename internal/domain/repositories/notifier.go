package repositories

import "context"

// NotificationKind identifies an outbound message template
type NotificationKind string

const (
	NotificationVerificationCode  NotificationKind = "account.verification_code"
	NotificationWelcome           NotificationKind = "account.welcome"
	NotificationPasswordReset     NotificationKind = "account.password_reset"
	NotificationPasswordChanged   NotificationKind = "account.password_changed"
	NotificationDeletionCode      NotificationKind = "account.deletion_code"
	NotificationDeletionConfirmed NotificationKind = "account.deletion_confirmed"
)

// Notifier dispatches outbound messages. Send is asynchronous and
// best-effort by contract: it returns immediately, and delivery
// failures are logged by the implementation, never surfaced to the
// caller. State transitions must already be committed before Send is
// invoked.
type Notifier interface {
	Send(ctx context.Context, kind NotificationKind, recipient string, payload map[string]string)
}
