package repository

import "time"

// ProductListFilter filters product listings.
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   *uint
	InStock      *bool
	Search       string
	WithCategory bool
}

// CategoryListFilter filters category listings.
type CategoryListFilter struct {
	Page     int
	PageSize int
	Search   string
}

// OrderListFilter filters order listings. UserID zero means all owners.
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	WithUser    bool
}

// UserListFilter filters user listings.
type UserListFilter struct {
	Page          int
	PageSize      int
	Keyword       string
	Role          string
	EmailVerified *bool
}

// UserLoginLogListFilter filters the sign-in audit.
type UserLoginLogListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Email       string
	Status      string
	ClientIP    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AuthzAuditLogListFilter filters the permission change audit.
type AuthzAuditLogListFilter struct {
	Page           int
	PageSize       int
	OperatorUserID uint
	Role           string
	Action         string
}

// ProductStats is the aggregate over the product table.
type ProductStats struct {
	TotalProducts   int64  `json:"total_products"`
	TotalInStock    int64  `json:"total_in_stock"`
	TotalOutOfStock int64  `json:"total_out_of_stock"`
	TotalCategories int64  `json:"total_categories"`
	AveragePrice    string `json:"average_price"`
	MinPrice        string `json:"min_price"`
	MaxPrice        string `json:"max_price"`
}
