package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

const emailTakenMessage = "This email is already registered. Please use a different email."

// UserRepository implements ports.UserRepository.
type UserRepository struct {
	db *gorm.DB
}

var _ ports.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user and sets its ID and timestamps.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	rec := newUserRecord(user)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("user", emailTakenMessage)
		}
		return fmt.Errorf("creating user: %w", err)
	}

	*user = *rec.toDomain()
	return nil
}

// GetByID loads a user.
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translateError(err, "user", idString(id))
	}
	return rec.toDomain(), nil
}

// GetByEmail loads a user by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var rec userRecord
	err := r.db.WithContext(ctx).
		Where("email = ?", domain.NormalizeEmail(email)).
		First(&rec).Error
	if err != nil {
		return nil, translateError(err, "user", "")
	}
	return rec.toDomain(), nil
}

// Update saves the user's mutable fields.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	rec := newUserRecord(user)
	result := r.db.WithContext(ctx).Model(rec).Select("*").Omit("id", "created_at").Updates(rec)
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("user", emailTakenMessage)
		}
		return fmt.Errorf("updating user %d: %w", user.ID, err)
	}
	if result.RowsAffected == 0 {
		return notFound("user", idString(user.ID))
	}

	user.Email = rec.Email
	user.UpdatedAt = rec.UpdatedAt
	return nil
}

// PasswordResetTokenRepository implements ports.PasswordResetTokenRepository.
type PasswordResetTokenRepository struct {
	db *gorm.DB
}

var _ ports.PasswordResetTokenRepository = (*PasswordResetTokenRepository)(nil)

// NewPasswordResetTokenRepository creates a PasswordResetTokenRepository.
func NewPasswordResetTokenRepository(db *gorm.DB) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: db}
}

// Replace deletes the user's existing tokens and stores token, atomically.
func (r *PasswordResetTokenRepository) Replace(ctx context.Context, token *domain.PasswordResetToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).Delete(&passwordResetTokenRecord{}).Error; err != nil {
			return fmt.Errorf("removing previous reset tokens: %w", err)
		}

		rec := &passwordResetTokenRecord{
			Token:     token.Token,
			UserID:    token.UserID,
			ExpiresAt: token.ExpiresAt.UTC(),
		}
		if err := tx.Create(rec).Error; err != nil {
			return fmt.Errorf("storing reset token: %w", err)
		}

		token.ID = rec.ID
		return nil
	})
}

// GetByToken loads a token by its value.
func (r *PasswordResetTokenRepository) GetByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	var rec passwordResetTokenRecord
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&rec).Error; err != nil {
		return nil, translateError(err, "password reset token", "")
	}
	return rec.toDomain(), nil
}

// Delete removes a token. Deleting a missing token is not an error.
func (r *PasswordResetTokenRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&passwordResetTokenRecord{}, id).Error; err != nil {
		return fmt.Errorf("deleting reset token %d: %w", id, err)
	}
	return nil
}
