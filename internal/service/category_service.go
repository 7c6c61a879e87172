package service

import (
	"strings"

	"github.com/catalog-next/internal/models"
	"github.com/catalog-next/internal/repository"

	"gorm.io/gorm"
)

// CategoryService manages product categories.
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService creates the category service.
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CategoryPatch lists changeable category fields. Nil means keep.
type CategoryPatch struct {
	Name        *string
	Description *string
}

// List returns a page of categories.
func (s *CategoryService) List(filter repository.CategoryListFilter) ([]models.Category, int64, error) {
	return s.repo.List(filter)
}

// Get returns a single category.
func (s *CategoryService) Get(id uint) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// Create stores a category with a unique name.
func (s *CategoryService) Create(name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	exists, err := s.repo.ExistsByName(name, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateCategory
	}
	category := models.Category{
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := s.repo.Create(&category); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateCategory
		}
		return nil, err
	}
	return &category, nil
}

// Update applies patch to a category.
func (s *CategoryService) Update(id uint, patch CategoryPatch) (*models.Category, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		exists, err := s.repo.ExistsByName(name, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateCategory
		}
		fields["name"] = name
	}
	if patch.Description != nil {
		fields["description"] = strings.TrimSpace(*patch.Description)
	}
	if len(fields) == 0 {
		return nil, ErrEmptyPatch
	}
	if err := s.repo.UpdateFields(id, fields); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateCategory
		}
		return nil, err
	}
	return s.Get(id)
}

// Delete removes a category. Its products stay, without a category.
func (s *CategoryService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(id)
	})
}
