package models

import "time"

// UserLoginLog records one sign-in attempt. UserID is 0 when the attempt
// did not resolve to an account.
type UserLoginLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     uint      `gorm:"index" json:"user_id"`
	Email      string    `gorm:"type:varchar(255);index;not null" json:"email"`
	Status     string    `gorm:"type:varchar(16);index;not null" json:"status"`
	FailReason string    `gorm:"type:varchar(64);index" json:"fail_reason,omitempty"`
	ClientIP   string    `gorm:"type:varchar(64);index" json:"client_ip"`
	UserAgent  string    `gorm:"type:varchar(512)" json:"user_agent"`
	RequestID  string    `gorm:"type:varchar(64);index" json:"request_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName pins the table name.
func (UserLoginLog) TableName() string {
	return "user_login_logs"
}
