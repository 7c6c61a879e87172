package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/catalog-next/internal/models"

	"gorm.io/gorm"
)

// UserRepository is the credential store.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByVerificationToken(token string, now time.Time) (*models.User, error)
	ExistsByEmail(email string, excludeID uint) (bool, error)
	ExistsByUsername(username string, excludeID uint) (bool, error)
	Create(user *models.User) error
	UpdateFields(id uint, fields map[string]interface{}) error
	ConsumeVerificationToken(id uint, token string, now time.Time) (bool, error)
	List(filter UserListFilter) ([]models.User, int64, error)
	WithTx(tx *gorm.DB) *GormUserRepository
}

// GormUserRepository is the gorm implementation.
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates the repository.
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormUserRepository) WithTx(tx *gorm.DB) *GormUserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

func (r *GormUserRepository) first(query *gorm.DB) (*models.User, error) {
	var user models.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByID returns nil when the user does not exist.
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	return r.first(r.db.Where("id = ?", id))
}

// GetByEmail matches the stored lowercase email.
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.first(r.db.Where("email = ?", email))
}

func (r *GormUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.first(r.db.Where("username = ?", username))
}

// GetByVerificationToken finds the user holding an unexpired token.
func (r *GormUserRepository) GetByVerificationToken(token string, now time.Time) (*models.User, error) {
	return r.first(r.db.Where("email_verification_token = ? AND email_verification_token_expires_at > ?", token, now))
}

// ExistsByEmail ignores the row with excludeID.
func (r *GormUserRepository) ExistsByEmail(email string, excludeID uint) (bool, error) {
	return r.exists("email = ?", email, excludeID)
}

func (r *GormUserRepository) ExistsByUsername(username string, excludeID uint) (bool, error) {
	return r.exists("username = ?", username, excludeID)
}

func (r *GormUserRepository) exists(condition string, value interface{}, excludeID uint) (bool, error) {
	query := r.db.Model(&models.User{}).Where(condition, value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the user. Unique violations are returned as is.
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// UpdateFields applies a column map and bumps updated_at.
func (r *GormUserRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = time.Now()
	}
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

// ConsumeVerificationToken marks the email verified and clears the token in
// one statement. It reports false when the token was already consumed.
func (r *GormUserRepository) ConsumeVerificationToken(id uint, token string, now time.Time) (bool, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND email_verification_token = ? AND email_verified = ?", id, token, false).
		Updates(map[string]interface{}{
			"email_verified":                      true,
			"email_verification_token":            nil,
			"email_verification_token_expires_at": nil,
			"updated_at":                          now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// List returns a page of users, newest first.
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})

	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, count := buildLikeCondition(r.db, []string{"username", "email"})
		query = query.Where(condition, repeatLikeArgs("%"+keyword+"%", count)...)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.EmailVerified != nil {
		query = query.Where("email_verified = ?", *filter.EmailVerified)
	}

	return findPage[models.User](query, filter.Page, filter.PageSize, "id DESC")
}
