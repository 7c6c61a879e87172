package service

import (
	"context"
	"errors"
	"testing"

	"github.com/catalog-next/internal/models"
	"github.com/catalog-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCatalogServiceTest(t *testing.T) (*gorm.DB, *ProductService, *CategoryService) {
	t.Helper()
	db := setupServiceTestDB(t)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	return db, NewProductService(productRepo, categoryRepo), NewCategoryService(categoryRepo)
}

func TestCreateProductDefaultsInStock(t *testing.T) {
	_, products, _ := setupCatalogServiceTest(t)

	product, err := products.Create(CreateProductInput{Name: " Pen ", Price: decimal.RequireFromString("1.999")})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if !product.InStock {
		t.Fatalf("want in_stock default true")
	}
	if product.Name != "Pen" || product.Price.String() != "2.00" {
		t.Fatalf("unexpected product: name=%q price=%s", product.Name, product.Price)
	}

	off := false
	hidden, err := products.Create(CreateProductInput{Name: "Ink", Price: decimal.NewFromInt(3), InStock: &off})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	reloaded, err := products.Get(hidden.ID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if reloaded.InStock {
		t.Fatalf("want in_stock false to persist")
	}
}

func TestCreateProductValidation(t *testing.T) {
	_, products, _ := setupCatalogServiceTest(t)

	if _, err := products.Create(CreateProductInput{Name: "Free", Price: decimal.Zero}); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("want ErrInvalidPrice got %v", err)
	}
	missing := uint(404)
	if _, err := products.Create(CreateProductInput{Name: "Lost", Price: decimal.NewFromInt(1), CategoryID: &missing}); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("want ErrCategoryNotFound got %v", err)
	}
	if _, err := products.Get(12345); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound got %v", err)
	}
}

func TestUpdateProductFields(t *testing.T) {
	_, products, categories := setupCatalogServiceTest(t)
	category, err := categories.Create("Stationery", "")
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product, err := products.Create(CreateProductInput{Name: "Pen", Price: decimal.NewFromInt(1), CategoryID: &category.ID})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	price := decimal.RequireFromString("4.25")
	off := false
	updated, err := products.Update(product.ID, ProductPatch{Price: &price, InStock: &off})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Price.String() != "4.25" || updated.InStock {
		t.Fatalf("unexpected update: price=%s in_stock=%v", updated.Price, updated.InStock)
	}
	if updated.CategoryID == nil || *updated.CategoryID != category.ID {
		t.Fatalf("category should be untouched")
	}

	cleared, err := products.Update(product.ID, ProductPatch{ClearCategory: true})
	if err != nil {
		t.Fatalf("clear category failed: %v", err)
	}
	if cleared.CategoryID != nil {
		t.Fatalf("want category cleared got %v", *cleared.CategoryID)
	}

	if _, err := products.Update(product.ID, ProductPatch{}); !errors.Is(err, ErrEmptyPatch) {
		t.Fatalf("want ErrEmptyPatch got %v", err)
	}
	negative := decimal.NewFromInt(-1)
	if _, err := products.Update(product.ID, ProductPatch{Price: &negative}); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("want ErrInvalidPrice got %v", err)
	}
}

func TestDeleteProductInUse(t *testing.T) {
	db, products, _ := setupCatalogServiceTest(t)
	owner := createServiceTestUser(t, db, "buyer")
	used := createServiceTestProduct(t, db, "used", "2.00", true)
	unused := createServiceTestProduct(t, db, "unused", "2.00", true)

	orders := NewOrderService(repository.NewOrderRepository(db), repository.NewProductRepository(db), nil, 0)
	if _, err := orders.CreateOrder(context.Background(), owner.ID, CreateOrderInput{
		Items: []CreateOrderItem{{ProductID: used.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := products.Delete(used.ID); !errors.Is(err, ErrProductInUse) {
		t.Fatalf("want ErrProductInUse got %v", err)
	}
	if err := products.Delete(unused.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := products.Get(unused.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound got %v", err)
	}
}

func TestProductStats(t *testing.T) {
	db, products, categories := setupCatalogServiceTest(t)
	if _, err := categories.Create("Books", ""); err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	createServiceTestProduct(t, db, "a", "10.00", true)
	createServiceTestProduct(t, db, "b", "20.00", false)

	stats, err := products.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalProducts != 2 || stats.TotalInStock != 1 || stats.TotalOutOfStock != 1 || stats.TotalCategories != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.MinPrice != "10.00" || stats.MaxPrice != "20.00" || stats.AveragePrice != "15.00" {
		t.Fatalf("unexpected prices: %+v", stats)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	db, products, categories := setupCatalogServiceTest(t)

	books, err := categories.Create(" Books ", "paper")
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	if books.Name != "Books" {
		t.Fatalf("want trimmed name got %q", books.Name)
	}
	if _, err := categories.Create("Books", ""); !errors.Is(err, ErrDuplicateCategory) {
		t.Fatalf("want ErrDuplicateCategory got %v", err)
	}
	music, err := categories.Create("Music", "")
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	taken := "Books"
	if _, err := categories.Update(music.ID, CategoryPatch{Name: &taken}); !errors.Is(err, ErrDuplicateCategory) {
		t.Fatalf("rename: want ErrDuplicateCategory got %v", err)
	}

	product, err := products.Create(CreateProductInput{Name: "Novel", Price: decimal.NewFromInt(9), CategoryID: &books.ID})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := categories.Delete(books.ID); err != nil {
		t.Fatalf("delete category failed: %v", err)
	}
	if _, err := categories.Get(books.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("want ErrCategoryNotFound got %v", err)
	}

	var stored models.Product
	if err := db.First(&stored, product.ID).Error; err != nil {
		t.Fatalf("product should survive category delete: %v", err)
	}
	if stored.CategoryID != nil {
		t.Fatalf("want product detached from deleted category")
	}
}
