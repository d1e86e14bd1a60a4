package usecases

import (
	"context"
	"errors"
	"time"
	"unicode"

	"pay-chain.backend/internal/config"
	"pay-chain.backend/internal/domain/entities"
	domainerrors "pay-chain.backend/internal/domain/errors"
	"pay-chain.backend/internal/domain/repositories"
	"pay-chain.backend/pkg/crypto"
	"pay-chain.backend/pkg/jwt"
	"pay-chain.backend/pkg/utils"
)

// timeNow is the single clock for the account state machine; tests
// replace it to pin expiry boundaries.
var timeNow = time.Now

// AuthUsecase enforces the credential and verification state machine:
// registration, email verification, login gating and password reset.
// Every mutating transition commits to the store first; notifications
// are dispatched after the commit and never affect the reported
// outcome.
type AuthUsecase struct {
	accounts repositories.AccountRepository
	notifier repositories.Notifier
	tokens   *jwt.TokenService
	hasher   *crypto.PasswordHasher
	cfg      config.AuthConfig
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	accounts repositories.AccountRepository,
	notifier repositories.Notifier,
	tokens *jwt.TokenService,
	hasher *crypto.PasswordHasher,
	cfg config.AuthConfig,
) *AuthUsecase {
	return &AuthUsecase{
		accounts: accounts,
		notifier: notifier,
		tokens:   tokens,
		hasher:   hasher,
		cfg:      cfg,
	}
}

// Register creates an unverified account and issues its first
// verification code. The verification email is best-effort: once the
// row is committed the registration has succeeded.
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.Account, error) {
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	_, err := u.accounts.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, domainerrors.ErrAlreadyExists
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := u.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	code, err := crypto.GenerateNumericCode(u.cfg.CodeLength)
	if err != nil {
		return nil, err
	}

	now := timeNow().UTC()
	account := &entities.Account{
		ID:           utils.GenerateUUIDv7(),
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: passwordHash,
		Role:         entities.RoleUser,
		IsEnabled:    true,
		Pending: &entities.PendingAction{
			Kind:      entities.PendingEmailVerification,
			Code:      code,
			ExpiresAt: now.Add(u.cfg.VerificationTTL),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := u.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	u.notifier.Send(ctx, repositories.NotificationVerificationCode, account.Email, map[string]string{
		"code": code,
	})

	return account, nil
}

// VerifyEmail consumes a verification code. Consumption is a single
// compare-and-clear against the store, so a second request racing on
// the same code observes the fresh terminal state instead of a double
// transition.
func (u *AuthUsecase) VerifyEmail(ctx context.Context, input *entities.VerifyEmailInput) error {
	account, err := u.accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		return err
	}
	if account.IsVerified {
		return domainerrors.ErrAlreadyVerified
	}

	now := timeNow().UTC()
	err = u.accounts.ConsumeVerification(ctx, account.ID, input.Code, now)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}
		// Lost a race or the code is simply wrong/expired; re-read to
		// report the state that actually holds now.
		fresh, readErr := u.accounts.GetByID(ctx, account.ID)
		if readErr == nil && fresh.IsVerified {
			return domainerrors.ErrAlreadyVerified
		}
		return domainerrors.ErrInvalidOrExpiredCode
	}

	u.notifier.Send(ctx, repositories.NotificationWelcome, account.Email, nil)
	return nil
}

// Login checks credentials and issues a session token. A missing
// account and a wrong password are deliberately indistinguishable.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.LoginResult, error) {
	account, err := u.accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !u.hasher.Verify(input.Password, account.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	if !account.IsVerified {
		return nil, domainerrors.ErrUnverified
	}

	now := timeNow().UTC()
	token, err := u.tokens.Issue(account.Email, jwt.PurposeSession, u.cfg.SessionTokenTTL)
	if err != nil {
		return nil, err
	}

	if err := u.accounts.UpdateLastLogin(ctx, account.ID, now); err != nil {
		return nil, err
	}

	if account.IsDeleted && u.cfg.ReactivateOnLogin {
		if err := u.accounts.ClearDeletion(ctx, account.ID); err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
			return nil, err
		}
	}

	return &entities.LoginResult{
		Token:     token,
		TokenType: "bearer",
		ExpiresAt: now.Add(u.cfg.SessionTokenTTL),
	}, nil
}

// ResendVerification issues a fresh verification code, invalidating
// any previously issued one.
func (u *AuthUsecase) ResendVerification(ctx context.Context, input *entities.ResendVerificationInput) error {
	account, err := u.accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		return err
	}
	if account.IsVerified {
		return domainerrors.ErrAlreadyVerified
	}

	code, err := crypto.GenerateNumericCode(u.cfg.CodeLength)
	if err != nil {
		return err
	}

	now := timeNow().UTC()
	if err := u.accounts.SetPendingAction(ctx, account.ID, entities.PendingAction{
		Kind:      entities.PendingEmailVerification,
		Code:      code,
		ExpiresAt: now.Add(u.cfg.VerificationTTL),
	}); err != nil {
		return err
	}

	u.notifier.Send(ctx, repositories.NotificationVerificationCode, account.Email, map[string]string{
		"code": code,
	})
	return nil
}

// RequestPasswordReset issues a stateless reset token. The observable
// behavior is identical whether or not the account exists or is
// verified: the caller always sees success and no account state
// changes. Only store or signer failures propagate.
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, input *entities.ForgotPasswordInput) error {
	account, err := u.accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if !account.IsVerified {
		return nil
	}

	token, err := u.tokens.Issue(account.Email, jwt.PurposePasswordReset, u.cfg.ResetTokenTTL)
	if err != nil {
		return err
	}

	u.notifier.Send(ctx, repositories.NotificationPasswordReset, account.Email, map[string]string{
		"token": token,
	})
	return nil
}

// ResetPassword completes a reset. Token failures are generic
// ErrInvalidToken and leak nothing about whether the subject exists.
func (u *AuthUsecase) ResetPassword(ctx context.Context, input *entities.ResetPasswordInput) error {
	claims, err := u.tokens.Verify(input.Token, jwt.PurposePasswordReset)
	if err != nil {
		return domainerrors.ErrInvalidToken
	}

	if err := validatePassword(input.NewPassword); err != nil {
		return err
	}

	account, err := u.accounts.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return err
	}

	passwordHash, err := u.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	if err := u.accounts.UpdatePassword(ctx, account.ID, passwordHash); err != nil {
		return err
	}

	u.notifier.Send(ctx, repositories.NotificationPasswordChanged, account.Email, map[string]string{
		"reset_time": timeNow().UTC().Format("2006-01-02 15:04:05 UTC"),
	})
	return nil
}

// validatePassword enforces the password policy: 8-128 characters with
// at least one digit.
func validatePassword(password string) error {
	if len(password) < 8 || len(password) > 128 {
		return domainerrors.ErrWeakPassword
	}
	for _, c := range password {
		if unicode.IsDigit(c) {
			return nil
		}
	}
	return domainerrors.ErrWeakPassword
}
