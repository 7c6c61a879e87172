package models

import "time"

// User is an account that can sign in and place orders.
type User struct {
	ID                             uint       `gorm:"primarykey" json:"id"`
	Username                       string     `gorm:"type:varchar(30);uniqueIndex;not null" json:"username"`
	Email                          string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"` // lowercase
	PasswordHash                   string     `gorm:"not null" json:"-"`
	EmailVerified                  bool       `gorm:"not null;default:false" json:"email_verified"`
	EmailVerificationToken         *string    `gorm:"type:varchar(128);index" json:"-"`
	EmailVerificationTokenExpireAt *time.Time `gorm:"column:email_verification_token_expires_at" json:"-"`
	Role                           string     `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`
	CreatedAt                      time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt                      time.Time  `json:"updated_at"`
}

// TableName pins the table name.
func (User) TableName() string {
	return "users"
}

// RefreshToken stores the single active refresh token id of a user.
type RefreshToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	TokenID   string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"` // jti of the issued refresh token
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
