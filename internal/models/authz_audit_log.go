package models

import "time"

// AuthzAuditLog records a permission change made through the admin API.
type AuthzAuditLog struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	OperatorUserID uint      `gorm:"index;not null" json:"operator_user_id"`
	OperatorRole   string    `gorm:"type:varchar(32);not null;default:''" json:"operator_role"`
	Action         string    `gorm:"type:varchar(64);index;not null" json:"action"`
	Role           string    `gorm:"type:varchar(120);index;not null;default:''" json:"role"`
	Permission     string    `gorm:"type:varchar(255);index;not null;default:''" json:"permission"`
	Method         string    `gorm:"type:varchar(20);not null;default:''" json:"method"`
	RequestID      string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// TableName pins the table name.
func (AuthzAuditLog) TableName() string {
	return "authz_audit_logs"
}
