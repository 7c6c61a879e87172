package models

import "time"

// Order is a placed order. TotalAmount is computed once at creation.
type Order struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	Status          string    `gorm:"type:varchar(20);index;not null" json:"status"`
	TotalAmount     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`
	DeliveryAddress string    `gorm:"type:varchar(500)" json:"delivery_address"`
	Phone           string    `gorm:"type:varchar(32)" json:"phone"`
	Notes           string    `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	User  *User       `gorm:"foreignKey:UserID" json:"user,omitempty"` // loaded for admin listings
}

// TableName pins the table name.
func (Order) TableName() string {
	return "orders"
}
