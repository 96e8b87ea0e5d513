package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/avelar/digistore/internal/database"
	"github.com/avelar/digistore/internal/models"
	"github.com/avelar/digistore/internal/store"
)

func TestCreateAndGetProduct(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	category, err := store.CreateCategory(ctx, db, "Game Keys", 1)
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}

	product, err := store.CreateProduct(ctx, db, store.ProductInput{
		SKU:          "PRD-001",
		Name:         "Steam Key",
		Description:  "A game key",
		Image:        "https://cdn.example.com/key.png",
		CategoryID:   &category.ID,
		Price:        decimal.RequireFromString("19.99"),
		DeliveryMode: models.DeliveryModeAutomatic,
	})
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}

	fetched, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if !fetched.Price.Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("Expected price 19.99, got %s", fetched.Price)
	}
	if fetched.CategoryID == nil || *fetched.CategoryID != category.ID {
		t.Errorf("Expected category %d, got %v", category.ID, fetched.CategoryID)
	}
	if fetched.DeliveryMode != models.DeliveryModeAutomatic {
		t.Errorf("Expected automatic delivery mode, got %s", fetched.DeliveryMode)
	}

	byCategory, err := store.ListProductsByCategory(ctx, db, category.ID)
	if err != nil {
		t.Fatalf("List by category: %v", err)
	}
	if len(byCategory) != 1 {
		t.Errorf("Expected 1 product in category, got %d", len(byCategory))
	}
}

func TestUpdateProductOptimistic(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := createTestProduct(t, db, "PRD-002", decimal.NewFromInt(10))

	input := store.ProductInput{
		SKU:          product.SKU,
		Name:         "Renamed",
		Price:        decimal.NewFromInt(15),
		DeliveryMode: product.DeliveryMode,
	}

	updated, err := store.UpdateProductOptimistic(ctx, db, product.ID, input, product.Version)
	if err != nil {
		t.Fatalf("Update product: %v", err)
	}
	if updated.Name != "Renamed" || updated.Version != product.Version+1 {
		t.Errorf("Unexpected update result: %+v", updated)
	}

	// Stale version loses.
	_, err = store.UpdateProductOptimistic(ctx, db, product.ID, input, product.Version)
	if !errors.Is(err, database.ErrOptimisticLockFailed) {
		t.Fatalf("Expected optimistic lock failure, got: %v", err)
	}
}

func TestDeleteProduct(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := createTestProduct(t, db, "PRD-003", decimal.NewFromInt(10))

	if err := store.DeleteProduct(ctx, db, product.ID); err != nil {
		t.Fatalf("Delete product: %v", err)
	}

	_, err := store.GetProduct(ctx, db, product.ID)
	if !errors.Is(err, database.ErrProductNotFound) {
		t.Fatalf("Expected product not found, got: %v", err)
	}

	err = store.DeleteProduct(ctx, db, product.ID)
	if !errors.Is(err, database.ErrProductNotFound) {
		t.Fatalf("Expected product not found on repeat delete, got: %v", err)
	}
}

func TestPaymentMethods(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	method, err := store.CreatePaymentMethod(ctx, db, "Bank transfer", "Wire to IBAN ...")
	if err != nil {
		t.Fatalf("Create payment method: %v", err)
	}

	fetched, err := store.GetPaymentMethodByName(ctx, db, "Bank transfer")
	if err != nil {
		t.Fatalf("Get payment method: %v", err)
	}
	if fetched.ID != method.ID || !fetched.Active {
		t.Errorf("Unexpected payment method: %+v", fetched)
	}

	if err := store.SetPaymentMethodActive(ctx, db, method.ID, false); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	active, err := store.ListPaymentMethods(ctx, db, true)
	if err != nil {
		t.Fatalf("List active: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("Expected no active methods, got %d", len(active))
	}
}

func TestGetOrCreateUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	first, err := store.GetOrCreateUser(ctx, db, "idp@example.com", "From IdP")
	if err != nil {
		t.Fatalf("Get or create: %v", err)
	}

	second, err := store.GetOrCreateUser(ctx, db, "idp@example.com", "Different Name")
	if err != nil {
		t.Fatalf("Get or create again: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("Same email should map to one profile, got %d and %d", first.ID, second.ID)
	}
	if second.Name != "From IdP" {
		t.Errorf("Repeat sight should not rewrite the profile, got name %q", second.Name)
	}
}
