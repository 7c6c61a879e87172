package service

import (
	"strings"

	"github.com/catalog-next/internal/models"
	"github.com/catalog-next/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService manages catalog products.
type ProductService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates the product service.
func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductService {
	return &ProductService{repo: repo, categoryRepo: categoryRepo}
}

// CreateProductInput is the body of a new product. InStock defaults to true.
type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  *uint
	InStock     *bool
}

// ProductPatch lists changeable product fields. Nil means keep;
// ClearCategory detaches the product from its category.
type ProductPatch struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	CategoryID    *uint
	ClearCategory bool
	InStock       *bool
}

// List returns a page of products.
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.WithCategory = true
	return s.repo.List(filter)
}

// Get returns a single product.
func (s *ProductService) Get(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create stores a new product.
func (s *ProductService) Create(input CreateProductInput) (*models.Product, error) {
	price := input.Price.Round(2)
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidPrice
	}
	if err := s.ensureCategory(input.CategoryID); err != nil {
		return nil, err
	}
	inStock := true
	if input.InStock != nil {
		inStock = *input.InStock
	}

	product := models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       models.NewMoneyFromDecimal(price),
		CategoryID:  input.CategoryID,
		InStock:     inStock,
	}
	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	return s.Get(product.ID)
}

// Update applies patch to a product.
func (s *ProductService) Update(id uint, patch ProductPatch) (*models.Product, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.Name != nil {
		fields["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		fields["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		price := patch.Price.Round(2)
		if price.LessThanOrEqual(decimal.Zero) {
			return nil, ErrInvalidPrice
		}
		fields["price"] = models.NewMoneyFromDecimal(price)
	}
	if patch.ClearCategory {
		fields["category_id"] = nil
	} else if patch.CategoryID != nil {
		if err := s.ensureCategory(patch.CategoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = *patch.CategoryID
	}
	if patch.InStock != nil {
		fields["in_stock"] = *patch.InStock
	}
	if len(fields) == 0 {
		return nil, ErrEmptyPatch
	}

	if err := s.repo.UpdateFields(id, fields); err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes a product that no order references.
func (s *ProductService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	count, err := s.repo.CountOrderItems(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrProductInUse
	}
	return s.repo.Delete(id)
}

// Stats aggregates the catalog.
func (s *ProductService) Stats() (*repository.ProductStats, error) {
	return s.repo.Stats()
}

func (s *ProductService) ensureCategory(categoryID *uint) error {
	if categoryID == nil || s.categoryRepo == nil {
		return nil
	}
	category, err := s.categoryRepo.GetByID(*categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return nil
}
