package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"petclinic/internal/domain/billing"
	"petclinic/internal/domain/carts"
	"petclinic/internal/domain/customers"
	"petclinic/internal/domain/products"
)

func TestBillRepo_OrderPageAndDeleteWhere(t *testing.T) {
	ctx := context.Background()
	repo := NewBillRepo()
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }

	for _, b := range []billing.Bill{
		{ID: "b3", CustomerID: "c1", Date: day(3), Status: billing.StatusPaid},
		{ID: "b1", CustomerID: "c1", Date: day(1), Status: billing.StatusUnpaid},
		{ID: "b2", CustomerID: "c2", Date: day(2), Status: billing.StatusUnpaid},
	} {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, _ := repo.List(ctx, billing.Filter{})
	if len(all) != 3 || all[0].ID != "b1" || all[2].ID != "b3" {
		t.Fatalf("unexpected order: %+v", all)
	}

	page, _ := repo.Page(ctx, billing.Filter{}, 2, 2)
	if len(page) != 1 || page[0].ID != "b3" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if empty, _ := repo.Page(ctx, billing.Filter{}, 10, 2); len(empty) != 0 {
		t.Fatalf("expected empty page, got %+v", empty)
	}

	n, _ := repo.DeleteWhere(ctx, billing.Filter{Status: billing.StatusUnpaid})
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}
	if _, err := repo.GetByID(ctx, "b1"); !errors.Is(err, billing.ErrNotFound) {
		t.Fatalf("expected billing.ErrNotFound, got %v", err)
	}
	if err := repo.Update(ctx, billing.Bill{ID: "nope"}); !errors.Is(err, billing.ErrNotFound) {
		t.Fatalf("expected billing.ErrNotFound on update, got %v", err)
	}
}

func TestPetRepo_PhotoFollowsPet(t *testing.T) {
	ctx := context.Background()
	repo := NewPetRepo()

	if err := repo.SavePhoto(ctx, customers.Photo{PetID: "ghost"}); !errors.Is(err, customers.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown pet, got %v", err)
	}
	_ = repo.Create(ctx, customers.Pet{ID: "p1", OwnerID: "o1"})
	_ = repo.Create(ctx, customers.Pet{ID: "p2", OwnerID: "o1"})
	if err := repo.SavePhoto(ctx, customers.Photo{PetID: "p1", ContentType: "image/png", Data: []byte{1, 2}}); err != nil {
		t.Fatalf("SavePhoto: %v", err)
	}

	if err := repo.DeleteByOwner(ctx, "o1"); err != nil {
		t.Fatalf("DeleteByOwner: %v", err)
	}
	if _, err := repo.GetPhoto(ctx, "p1"); !errors.Is(err, customers.ErrNotFound) {
		t.Fatalf("photo must go with the pet, got %v", err)
	}
	if left, _ := repo.ListByOwner(ctx, "o1"); len(left) != 0 {
		t.Fatalf("expected no pets left, got %d", len(left))
	}
}

func TestCartRepo_IsolatesStoredLists(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepo()

	c := carts.Cart{ID: "cart-1", CustomerID: "c1", Products: []carts.CartProduct{{ProductID: "p1", QuantityInCart: 1}}}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	c.Products[0].QuantityInCart = 99

	got, err := repo.GetByCustomer(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByCustomer: %v", err)
	}
	if got.Products[0].QuantityInCart != 1 {
		t.Fatalf("stored cart was mutated through caller slice")
	}
}

func TestProductRatingRepo_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRatingRepo()

	_ = repo.Save(ctx, products.Rating{ProductID: "p1", CustomerID: "c1", Rating: 2})
	_ = repo.Save(ctx, products.Rating{ProductID: "p1", CustomerID: "c1", Rating: 5})
	_ = repo.Save(ctx, products.Rating{ProductID: "p2", CustomerID: "c1", Rating: 1})

	list, _ := repo.ListByProduct(ctx, "p1")
	if len(list) != 1 || list[0].Rating != 5 {
		t.Fatalf("expected upserted rating, got %+v", list)
	}
	if err := repo.Delete(ctx, "p1", "c9"); !errors.Is(err, products.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_ = repo.DeleteByProduct(ctx, "p1")
	if _, err := repo.Get(ctx, "p2", "c1"); err != nil {
		t.Fatalf("other product rating must survive: %v", err)
	}
}
