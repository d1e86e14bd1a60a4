package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Role represents account roles
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// PendingActionKind identifies the workflow a pending code belongs to.
// A code issued for one kind never satisfies another.
type PendingActionKind string

const (
	PendingEmailVerification PendingActionKind = "EMAIL_VERIFICATION"
	PendingAccountDeletion   PendingActionKind = "ACCOUNT_DELETION"
)

// PendingAction is a short-lived server-side code awaiting confirmation.
// An account carries at most one; issuing a new one overwrites the old.
type PendingAction struct {
	Kind      PendingActionKind `json:"kind"`
	Code      string            `json:"-"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// Matches reports whether the submitted code consumes this pending
// action at the given instant. Both sides of the expiry comparison are
// normalized to UTC.
func (p *PendingAction) Matches(kind PendingActionKind, code string, now time.Time) bool {
	if p == nil {
		return false
	}
	if p.Kind != kind || p.Code != code {
		return false
	}
	return p.ExpiresAt.UTC().After(now.UTC())
}

// Account represents a user account
type Account struct {
	ID           uuid.UUID      `json:"id"`
	Email        string         `json:"email"`
	Name         string         `json:"name,omitempty"`
	PasswordHash string         `json:"-"`
	Role         Role           `json:"role"`
	IsEnabled    bool           `json:"isEnabled"`
	IsVerified   bool           `json:"isVerified"`
	IsDeleted    bool           `json:"isDeleted"`
	Pending      *PendingAction `json:"-"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	LastLoginAt  null.Time      `json:"lastLoginAt,omitempty"`
	DeletedAt    null.Time      `json:"deletedAt,omitempty"`
}

// Initial returns the single-letter profile initial, taken from the
// name when present, otherwise from the email.
func (a *Account) Initial() string {
	if a.Name != "" {
		return strings.ToUpper(a.Name[:1])
	}
	if a.Email != "" {
		return strings.ToUpper(a.Email[:1])
	}
	return ""
}

// ProfileView projects the account into its self-service profile shape.
func (a *Account) ProfileView() *Profile {
	return &Profile{
		Email:      a.Email,
		Name:       a.Name,
		Initial:    a.Initial(),
		Role:       a.Role,
		IsVerified: a.IsVerified,
	}
}

// RegisterInput represents input for account registration
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"omitempty,max=100"`
	Password string `json:"password" binding:"required"`
}

// VerifyEmailInput represents input for email verification
type VerifyEmailInput struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"verificationCode" binding:"required"`
}

// LoginInput represents input for account login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ResendVerificationInput represents input for re-sending a verification code
type ResendVerificationInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPasswordInput represents input for requesting a password reset
type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordInput represents input for completing a password reset
type ResetPasswordInput struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ConfirmDeletionInput represents input for confirming account deletion
type ConfirmDeletionInput struct {
	Code string `json:"verificationCode" binding:"required"`
}

// LoginResult represents a successful login
type LoginResult struct {
	Token     string    `json:"token"`
	TokenType string    `json:"type"`
	ExpiresAt time.Time `json:"expiry"`
}

// Profile represents the authenticated account's own view
type Profile struct {
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	Initial    string `json:"initial"`
	Role       Role   `json:"role"`
	IsVerified bool   `json:"isVerified"`
}
