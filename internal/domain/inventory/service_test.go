package inventory

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

type testRepo struct{ byID map[string]Inventory }

func (r *testRepo) Create(ctx context.Context, inv Inventory) error { r.byID[inv.ID] = inv; return nil }
func (r *testRepo) Update(ctx context.Context, inv Inventory) error { r.byID[inv.ID] = inv; return nil }
func (r *testRepo) GetByID(ctx context.Context, id string) (Inventory, error) {
	inv, ok := r.byID[id]
	if !ok {
		return Inventory{}, ErrNotFound
	}
	return inv, nil
}
func (r *testRepo) List(ctx context.Context, f InventoryFilter) ([]Inventory, error) {
	out := make([]Inventory, 0)
	for _, inv := range r.byID {
		if f.Matches(inv) {
			out = append(out, inv)
		}
	}
	return out, nil
}
func (r *testRepo) Delete(ctx context.Context, id string) error { delete(r.byID, id); return nil }
func (r *testRepo) DeleteAll(ctx context.Context) error {
	r.byID = map[string]Inventory{}
	return nil
}

type typeTestRepo struct{ items []InventoryType }

func (r *typeTestRepo) Create(ctx context.Context, t InventoryType) error {
	r.items = append(r.items, t)
	return nil
}
func (r *typeTestRepo) List(ctx context.Context) ([]InventoryType, error) { return r.items, nil }

type productTestRepo struct{ byID map[string]Product }

func (r *productTestRepo) Create(ctx context.Context, p Product) error { r.byID[p.ID] = p; return nil }
func (r *productTestRepo) Update(ctx context.Context, p Product) error { r.byID[p.ID] = p; return nil }
func (r *productTestRepo) GetByID(ctx context.Context, id string) (Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}
func (r *productTestRepo) ListByInventory(ctx context.Context, inventoryID string) ([]Product, error) {
	out := make([]Product, 0)
	for _, p := range r.byID {
		if p.InventoryID == inventoryID {
			out = append(out, p)
		}
	}
	return out, nil
}
func (r *productTestRepo) Delete(ctx context.Context, id string) error { delete(r.byID, id); return nil }
func (r *productTestRepo) DeleteByInventory(ctx context.Context, inventoryID string) error {
	for id, p := range r.byID {
		if p.InventoryID == inventoryID {
			delete(r.byID, id)
		}
	}
	return nil
}
func (r *productTestRepo) DeleteAll(ctx context.Context) error {
	r.byID = map[string]Product{}
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService() (*Service, *productTestRepo, *clock) {
	products := &productTestRepo{byID: map[string]Product{}}
	svc := NewService(&testRepo{byID: map[string]Inventory{}}, &typeTestRepo{}, products)
	c := &clock{t: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)}
	svc.now = c.now
	return svc, products, c
}

func validInventory(name string) InventoryInput {
	return InventoryInput{Name: name, Type: "Medication", Description: "Shelf A"}
}

func validProduct(name string, qty int) ProductInput {
	return ProductInput{Name: name, Description: "box", Price: 10, Quantity: qty, SalePrice: 15}
}

// -------------------------
// Tests
// -------------------------

func TestStatusFor(t *testing.T) {
	cases := map[int]StockStatus{
		0:  StatusOutOfStock,
		1:  StatusReOrder,
		19: StatusReOrder,
		20: StatusAvailable,
		99: StatusAvailable,
	}
	for qty, want := range cases {
		if got := StatusFor(qty); got != want {
			t.Fatalf("StatusFor(%d) = %s, want %s", qty, got, want)
		}
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, validInventory("ab")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short name, got %v", err)
	}
	in := validInventory("Vaccines")
	in.Image = "ftp://images/vaccines.png"
	if _, err := svc.Create(ctx, in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-http image, got %v", err)
	}

	in.Image = "https://cdn.example.com/vaccines.png"
	if _, err := svc.Create(ctx, in); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Create(ctx, validInventory("  VACCINES ")); !errors.Is(err, ErrUnprocessable) {
		t.Fatalf("expected ErrUnprocessable for duplicate name, got %v", err)
	}
}

func TestService_CreateType_Duplicate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateType(ctx, "Equipment"); err != nil {
		t.Fatalf("CreateType error: %v", err)
	}
	if _, err := svc.CreateType(ctx, "equipment"); !errors.Is(err, ErrUnprocessable) {
		t.Fatalf("expected ErrUnprocessable, got %v", err)
	}
	if _, err := svc.CreateType(ctx, "ab"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_StockOperations(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx, validInventory("Vaccines"))

	p, err := svc.AddProduct(ctx, inv.ID, validProduct("Rabies", 1))
	if err != nil {
		t.Fatalf("AddProduct error: %v", err)
	}
	if p.Status != StatusReOrder {
		t.Fatalf("expected RE_ORDER, got %s", p.Status)
	}
	if _, err := svc.AddProduct(ctx, inv.ID, validProduct("rabies", 5)); !errors.Is(err, ErrUnprocessable) {
		t.Fatalf("expected duplicate product rejected, got %v", err)
	}

	p, err = svc.Consume(ctx, inv.ID, p.ID)
	if err != nil || p.Quantity != 0 || p.Status != StatusOutOfStock {
		t.Fatalf("unexpected consume result: %+v (%v)", p, err)
	}
	if _, err := svc.Consume(ctx, inv.ID, p.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput when out of stock, got %v", err)
	}

	if _, err := svc.Restock(ctx, inv.ID, p.ID, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero restock, got %v", err)
	}
	p, err = svc.Restock(ctx, inv.ID, p.ID, 25)
	if err != nil || p.Quantity != 25 || p.Status != StatusAvailable {
		t.Fatalf("unexpected restock result: %+v (%v)", p, err)
	}
}

func TestService_Move(t *testing.T) {
	svc, products, _ := newTestService()
	ctx := context.Background()
	a, _ := svc.Create(ctx, validInventory("Vaccines"))
	b, _ := svc.Create(ctx, validInventory("Surgery"))
	p, _ := svc.AddProduct(ctx, a.ID, validProduct("Gauze", 30))

	if _, err := svc.Move(ctx, a.ID, p.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown target, got %v", err)
	}
	if _, err := svc.Move(ctx, a.ID, p.ID, b.ID); err != nil {
		t.Fatalf("Move error: %v", err)
	}
	if products.byID[p.ID].InventoryID != b.ID {
		t.Fatalf("product not moved")
	}
	if _, err := svc.Product(ctx, a.ID, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected product gone from source inventory, got %v", err)
	}
}

func TestService_LowStockAndRecentUpdates(t *testing.T) {
	svc, _, c := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx, validInventory("Vaccines"))

	if msg, _ := svc.RecentUpdateMessage(ctx, inv.ID); msg != "No recent updates." {
		t.Fatalf("unexpected message: %q", msg)
	}

	_, _ = svc.AddProduct(ctx, inv.ID, validProduct("Plenty", 50))
	if _, err := svc.LowStock(ctx, inv.ID, 20); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound without low stock, got %v", err)
	}
	_, _ = svc.AddProduct(ctx, inv.ID, validProduct("Few", 3))

	low, err := svc.LowStock(ctx, inv.ID, 0)
	if err != nil || len(low) != 1 || low[0].Name != "Few" {
		t.Fatalf("unexpected low stock: %+v (%v)", low, err)
	}

	if msg, _ := svc.RecentUpdateMessage(ctx, inv.ID); msg != "2 supplies updated in the last 15 min." {
		t.Fatalf("unexpected message: %q", msg)
	}
	c.t = c.t.Add(16 * time.Minute)
	if msg, _ := svc.RecentUpdateMessage(ctx, inv.ID); msg != "No recent updates." {
		t.Fatalf("unexpected message after window: %q", msg)
	}
}

func TestService_Search(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	a, _ := svc.Create(ctx, validInventory("Vaccines"))
	_, _ = svc.Create(ctx, validInventory("Vitamins"))
	_, _ = svc.SetImportant(ctx, a.ID, true)

	items, err := svc.Search(ctx, InventoryFilter{Name: "v", ImportantOnly: true}, 0, 10)
	if err != nil || len(items) != 1 || items[0].ID != a.ID {
		t.Fatalf("unexpected search result: %+v (%v)", items, err)
	}
}
