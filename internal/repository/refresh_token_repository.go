package repository

import (
	"errors"
	"time"

	"github.com/catalog-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RefreshTokenRepository keeps one active refresh token id per user.
type RefreshTokenRepository interface {
	Save(userID uint, tokenID string, expiresAt time.Time) error
	GetByUserID(userID uint) (*models.RefreshToken, error)
	Rotate(userID uint, currentTokenID, nextTokenID string, nextExpiresAt, now time.Time) (bool, error)
	DeleteByUserID(userID uint) error
	WithTx(tx *gorm.DB) *GormRefreshTokenRepository
}

// GormRefreshTokenRepository is the gorm implementation.
type GormRefreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates the repository.
func NewRefreshTokenRepository(db *gorm.DB) *GormRefreshTokenRepository {
	return &GormRefreshTokenRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormRefreshTokenRepository) WithTx(tx *gorm.DB) *GormRefreshTokenRepository {
	if tx == nil {
		return r
	}
	return &GormRefreshTokenRepository{db: tx}
}

// Save replaces the active token of the user.
func (r *GormRefreshTokenRepository) Save(userID uint, tokenID string, expiresAt time.Time) error {
	row := models.RefreshToken{
		UserID:    userID,
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_id", "expires_at", "updated_at"}),
	}).Create(&row).Error
}

// GetByUserID returns nil when the user has no active token.
func (r *GormRefreshTokenRepository) GetByUserID(userID uint) (*models.RefreshToken, error) {
	var row models.RefreshToken
	if err := r.db.Where("user_id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Rotate swaps the token id only while currentTokenID is still the active,
// unexpired one. Two concurrent refreshes with the same token cannot both win.
func (r *GormRefreshTokenRepository) Rotate(userID uint, currentTokenID, nextTokenID string, nextExpiresAt, now time.Time) (bool, error) {
	result := r.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND token_id = ? AND expires_at > ?", userID, currentTokenID, now).
		Updates(map[string]interface{}{
			"token_id":   nextTokenID,
			"expires_at": nextExpiresAt,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteByUserID is idempotent.
func (r *GormRefreshTokenRepository) DeleteByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}
