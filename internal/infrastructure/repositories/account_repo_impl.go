package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"pay-chain.backend/internal/domain/entities"
	domainerrors "pay-chain.backend/internal/domain/errors"
	"pay-chain.backend/internal/infrastructure/models"
)

// AccountRepository implements account data operations on gorm
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account. A duplicate email maps to
// ErrAlreadyExists so registration races surface as the same typed
// outcome as the pre-insert lookup.
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	m := toModel(account)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicate(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	var m models.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// GetByEmail gets an account by exact email match (no case folding)
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	var m models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// SetPendingAction overwrites the pending code, kind and expiry in one
// update. There is never more than one outstanding action per account.
func (r *AccountRepository) SetPendingAction(ctx context.Context, id uuid.UUID, action entities.PendingAction) error {
	kind := string(action.Kind)
	expires := action.ExpiresAt.UTC()
	result := r.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Updates(map[string]interface{}{
		"pending_kind":       kind,
		"pending_code":       action.Code,
		"pending_expires_at": expires,
		"updated_at":         time.Now().UTC(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ConsumeVerification is a compare-and-clear: the row is updated only
// if the code still matches, has not expired and the account is still
// unverified. The losing side of a race sees ErrNotFound and must
// re-read to report the fresh state.
func (r *AccountRepository) ConsumeVerification(ctx context.Context, id uuid.UUID, code string, now time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ? AND is_verified = ? AND pending_kind = ? AND pending_code = ? AND pending_expires_at > ?",
			id, false, string(entities.PendingEmailVerification), code, now.UTC()).
		Updates(map[string]interface{}{
			"is_verified":        true,
			"pending_kind":       nil,
			"pending_code":       nil,
			"pending_expires_at": nil,
			"updated_at":         now.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ConsumeDeletion flips the deletion flag under the same
// compare-and-clear contract as ConsumeVerification.
func (r *AccountRepository) ConsumeDeletion(ctx context.Context, id uuid.UUID, code string, now time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ? AND is_deleted = ? AND pending_kind = ? AND pending_code = ? AND pending_expires_at > ?",
			id, false, string(entities.PendingAccountDeletion), code, now.UTC()).
		Updates(map[string]interface{}{
			"is_deleted":         true,
			"deleted_at":         now.UTC(),
			"pending_kind":       nil,
			"pending_code":       nil,
			"pending_expires_at": nil,
			"updated_at":         now.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored hash
func (r *AccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result := r.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateLastLogin stamps last_login_at
func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_login_at": at.UTC(),
		"updated_at":    at.UTC(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ClearDeletion reverses a scheduled deletion
func (r *AccountRepository) ClearDeletion(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Account{}).Where("id = ? AND is_deleted = ?", id, true).Updates(map[string]interface{}{
		"is_deleted": false,
		"deleted_at": nil,
		"updated_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ClearExpiredPendingActions nulls out lapsed codes in bulk
func (r *AccountRepository) ClearExpiredPendingActions(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("pending_code IS NOT NULL AND pending_expires_at <= ?", now.UTC()).
		Updates(map[string]interface{}{
			"pending_kind":       nil,
			"pending_code":       nil,
			"pending_expires_at": nil,
			"updated_at":         now.UTC(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// List lists accounts with an optional search filter and pagination
func (r *AccountRepository) List(ctx context.Context, search string, limit, offset int) ([]*entities.Account, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Account{}).Order("created_at DESC")

	if search != "" {
		searchTerm := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var accountModels []models.Account
	if err := query.Find(&accountModels).Error; err != nil {
		return nil, 0, err
	}

	accounts := make([]*entities.Account, 0, len(accountModels))
	for i := range accountModels {
		accounts = append(accounts, toEntity(&accountModels[i]))
	}
	return accounts, total, nil
}

func toModel(a *entities.Account) *models.Account {
	m := &models.Account{
		ID:           a.ID,
		Email:        a.Email,
		Name:         a.Name,
		PasswordHash: a.PasswordHash,
		Role:         string(a.Role),
		IsEnabled:    a.IsEnabled,
		IsVerified:   a.IsVerified,
		IsDeleted:    a.IsDeleted,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		LastLoginAt:  a.LastLoginAt.Ptr(),
		DeletedAt:    a.DeletedAt.Ptr(),
	}
	if a.Pending != nil {
		kind := string(a.Pending.Kind)
		code := a.Pending.Code
		expires := a.Pending.ExpiresAt.UTC()
		m.PendingKind = &kind
		m.PendingCode = &code
		m.PendingExpiresAt = &expires
	}
	return m
}

func toEntity(m *models.Account) *entities.Account {
	a := &entities.Account{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		Role:         entities.Role(m.Role),
		IsEnabled:    m.IsEnabled,
		IsVerified:   m.IsVerified,
		IsDeleted:    m.IsDeleted,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		LastLoginAt:  null.TimeFromPtr(m.LastLoginAt),
		DeletedAt:    null.TimeFromPtr(m.DeletedAt),
	}
	if m.PendingKind != nil && m.PendingCode != nil && m.PendingExpiresAt != nil {
		a.Pending = &entities.PendingAction{
			Kind:      entities.PendingActionKind(*m.PendingKind),
			Code:      *m.PendingCode,
			ExpiresAt: *m.PendingExpiresAt,
		}
	}
	return a
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite (tests) and postgres drivers without the gorm translator
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
