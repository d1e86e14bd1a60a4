package usecases

import (
	"context"
	"errors"

	"pay-chain.backend/internal/config"
	"pay-chain.backend/internal/domain/entities"
	domainerrors "pay-chain.backend/internal/domain/errors"
	"pay-chain.backend/internal/domain/repositories"
	"pay-chain.backend/pkg/crypto"
	"pay-chain.backend/pkg/utils"
)

// AccountUsecase covers the authenticated account surface: the
// two-step deletion flow, profile reads and the admin listing.
type AccountUsecase struct {
	accounts repositories.AccountRepository
	notifier repositories.Notifier
	cfg      config.AuthConfig
}

// NewAccountUsecase creates a new account usecase
func NewAccountUsecase(
	accounts repositories.AccountRepository,
	notifier repositories.Notifier,
	cfg config.AuthConfig,
) *AccountUsecase {
	return &AccountUsecase{
		accounts: accounts,
		notifier: notifier,
		cfg:      cfg,
	}
}

// GetByEmail resolves the account behind an authenticated session.
func (u *AccountUsecase) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	return u.accounts.GetByEmail(ctx, email)
}

// Profile returns the profile view for an authenticated account.
func (u *AccountUsecase) Profile(ctx context.Context, email string) (*entities.Profile, error) {
	account, err := u.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return account.ProfileView(), nil
}

// RequestDeletion issues a deletion confirmation code for the
// authenticated account. Re-requesting replaces any pending code,
// including an outstanding verification code.
func (u *AccountUsecase) RequestDeletion(ctx context.Context, email string) error {
	account, err := u.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account.IsDeleted {
		return domainerrors.ErrAlreadyScheduled
	}

	code, err := crypto.GenerateNumericCode(u.cfg.CodeLength)
	if err != nil {
		return err
	}

	now := timeNow().UTC()
	if err := u.accounts.SetPendingAction(ctx, account.ID, entities.PendingAction{
		Kind:      entities.PendingAccountDeletion,
		Code:      code,
		ExpiresAt: now.Add(u.cfg.DeletionCodeTTL),
	}); err != nil {
		return err
	}

	u.notifier.Send(ctx, repositories.NotificationDeletionCode, account.Email, map[string]string{
		"code": code,
	})
	return nil
}

// ConfirmDeletion consumes a deletion code and marks the account
// deleted. Like email verification, consumption is a compare-and-clear
// so concurrent confirmations resolve to exactly one transition.
func (u *AccountUsecase) ConfirmDeletion(ctx context.Context, email string, input *entities.ConfirmDeletionInput) error {
	account, err := u.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account.IsDeleted {
		return domainerrors.ErrAlreadyScheduled
	}

	now := timeNow().UTC()
	err = u.accounts.ConsumeDeletion(ctx, account.ID, input.Code, now)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}
		fresh, readErr := u.accounts.GetByID(ctx, account.ID)
		if readErr == nil && fresh.IsDeleted {
			return domainerrors.ErrAlreadyScheduled
		}
		return domainerrors.ErrInvalidOrExpiredCode
	}

	u.notifier.Send(ctx, repositories.NotificationDeletionConfirmed, account.Email, nil)
	return nil
}

// ListAccounts returns a page of accounts for the admin listing,
// optionally filtered by exact email match.
func (u *AccountUsecase) ListAccounts(ctx context.Context, search string, params utils.PaginationParams) ([]*entities.Account, utils.PaginationMeta, error) {
	accounts, total, err := u.accounts.List(ctx, search, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	meta := utils.CalculateMeta(total, params.Page, params.Limit)
	return accounts, meta, nil
}
