package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"pay-chain.backend/internal/domain/entities"
)

// AccountRepository defines account data operations. The Consume*
// methods are the atomicity boundary of the state machine: each one is
// a single conditional update scoped to one account row, so two
// requests racing on the same pending code resolve to exactly one
// winner.
type AccountRepository interface {
	Create(ctx context.Context, account *entities.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error)
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)

	// SetPendingAction overwrites any outstanding pending action.
	SetPendingAction(ctx context.Context, id uuid.UUID, action entities.PendingAction) error

	// ConsumeVerification marks the account verified and clears the
	// pending action, provided the code matches, has not expired and
	// the account is still unverified. ErrNotFound when no row matched.
	ConsumeVerification(ctx context.Context, id uuid.UUID, code string, now time.Time) error

	// ConsumeDeletion flips is_deleted and stamps deleted_at under the
	// same conditional-match contract as ConsumeVerification.
	ConsumeDeletion(ctx context.Context, id uuid.UUID, code string, now time.Time) error

	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	// ClearDeletion reverses a scheduled deletion (login un-delete policy).
	ClearDeletion(ctx context.Context, id uuid.UUID) error

	// ClearExpiredPendingActions nulls out pending codes whose expiry
	// has lapsed. Consumption paths do not depend on it; it only keeps
	// the table tidy.
	ClearExpiredPendingActions(ctx context.Context, now time.Time) (int64, error)

	List(ctx context.Context, search string, limit, offset int) ([]*entities.Account, int64, error)
}
