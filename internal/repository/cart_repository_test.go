package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/storefront-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCartRepoTest(t *testing.T) *GormCartRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:cart_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.CartLine{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewCartRepository(db)
}

func TestCartRepositoryIdentityIsolation(t *testing.T) {
	repo := setupCartRepoTest(t)

	if err := repo.Create(&models.CartLine{IdentityKey: "guest", ProductID: "p1", Quantity: 1}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(&models.CartLine{IdentityKey: "user:1", ProductID: "p1", Quantity: 5}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	guestLines, err := repo.ListByIdentity("guest")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(guestLines) != 1 || guestLines[0].Quantity != 1 {
		t.Fatalf("unexpected guest lines: %+v", guestLines)
	}

	if err := repo.ClearByIdentity("guest"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	userLines, _ := repo.ListByIdentity("user:1")
	if len(userLines) != 1 {
		t.Fatalf("clearing guest must not touch user slice, got %+v", userLines)
	}
}

func TestCartRepositoryReplacePreservesServerOrder(t *testing.T) {
	repo := setupCartRepoTest(t)

	if err := repo.Create(&models.CartLine{IdentityKey: "user:1", ProductID: "old", Quantity: 9}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	replacement := []models.CartLine{
		{ProductID: "p2", Quantity: 2, ServerItemID: "20"},
		{ProductID: "p1", Quantity: 1, ServerItemID: "10"},
	}
	if err := repo.ReplaceForIdentity("user:1", replacement); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	lines, err := repo.ListByIdentity("user:1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].ProductID != "p2" || lines[1].ProductID != "p1" {
		t.Fatalf("expected server order preserved, got %+v", lines)
	}
	if lines[0].IdentityKey != "user:1" {
		t.Fatalf("expected identity key stamped, got %q", lines[0].IdentityKey)
	}
}

func TestCartRepositorySumQuantity(t *testing.T) {
	repo := setupCartRepoTest(t)

	total, err := repo.SumQuantity("guest")
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected 0 for empty slice, got %d", total)
	}

	repo.Create(&models.CartLine{IdentityKey: "guest", ProductID: "p1", Quantity: 2})
	repo.Create(&models.CartLine{IdentityKey: "guest", ProductID: "p2", Quantity: 3})
	repo.Create(&models.CartLine{IdentityKey: "user:1", ProductID: "p3", Quantity: 7})

	total, err = repo.SumQuantity("guest")
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected 5, got %d", total)
	}
}

func TestCartRepositoryGetAbsentReturnsNil(t *testing.T) {
	repo := setupCartRepoTest(t)

	line, err := repo.GetByIdentityAndProduct("guest", "missing")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if line != nil {
		t.Fatalf("expected nil for absent line, got %+v", line)
	}
}
