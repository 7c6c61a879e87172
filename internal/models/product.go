package models

import "time"

// Product is a catalog entry. InStock is the only availability signal
// consulted when ordering.
type Product struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;index" json:"name"`
	Description string    `gorm:"type:varchar(500)" json:"description"`
	Price       Money     `gorm:"type:decimal(20,2);not null" json:"price"`
	CategoryID  *uint     `gorm:"index" json:"category_id"`
	InStock     bool      `gorm:"not null;index" json:"in_stock"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

// TableName pins the table name.
func (Product) TableName() string {
	return "products"
}
