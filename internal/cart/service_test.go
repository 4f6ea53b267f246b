package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/brewbot-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/brewbot-backend/pkg/errors"
)

func testProduct() *catalog.Product {
	return &catalog.Product{
		Name:        "Latte",
		Base:        "coffee",
		Price:       decimal.NewFromInt(120),
		SizeOptions: []string{"small", "large"},
		AddOns: []catalog.AddOn{
			{Name: "Extra Shot", Price: decimal.NewFromInt(20)},
			{Name: "Caramel Drizzle", Price: decimal.NewFromInt(15)},
		},
	}
}

func TestCommitPricesDraft(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	item, err := svc.Commit(context.Background(), "user-1", testProduct(), Draft{
		Drink:    "Latte",
		Base:     "coffee",
		Size:     "large",
		AddOns:   []string{"Extra Shot"},
		Quantity: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !item.Price.Equal(decimal.NewFromInt(140)) {
		t.Fatalf("expected unit price 140, got %s", item.Price)
	}
	if !item.Subtotal.Equal(decimal.NewFromInt(280)) {
		t.Fatalf("expected subtotal 280, got %s", item.Subtotal)
	}
}

func TestCommitClampsQuantity(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	item, err := svc.Commit(context.Background(), "user-1", testProduct(), Draft{Drink: "Latte", Quantity: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Quantity != 1 {
		t.Fatalf("expected quantity clamped to 1, got %d", item.Quantity)
	}
	if !item.Subtotal.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected subtotal 120, got %s", item.Subtotal)
	}
}

func TestCommitRejectsUnknownAddOn(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	_, err := svc.Commit(context.Background(), "user-1", testProduct(), Draft{Drink: "Latte", AddOns: []string{"Glitter"}, Quantity: 1})
	if err == nil {
		t.Fatal("expected error for unknown add-on")
	}
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestTotalMatchesCommittedSubtotals(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	drafts := []Draft{
		{Drink: "Latte", Quantity: 1},
		{Drink: "Latte", AddOns: []string{"Extra Shot"}, Quantity: 3},
		{Drink: "Latte", AddOns: []string{"Extra Shot", "Caramel Drizzle"}, Quantity: 2},
	}

	want := decimal.Zero
	for _, draft := range drafts {
		item, err := svc.Commit(ctx, "user-1", testProduct(), draft)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want = want.Add(item.Subtotal)
	}

	items, err := svc.Items(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != len(drafts) {
		t.Fatalf("expected %d items, got %d", len(drafts), len(items))
	}
	if got := Total(items); !got.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Commit(ctx, "user-1", testProduct(), Draft{Drink: "Latte", Quantity: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.Clear(ctx, "user-1"); err != nil {
			t.Fatalf("clear %d failed: %v", i+1, err)
		}
		items, err := svc.Items(ctx, "user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 0 {
			t.Fatalf("expected empty cart after clear, got %d items", len(items))
		}
	}
}

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(newMemoryStore())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

type memoryStore struct {
	carts map[string][]Item
}

func newMemoryStore() *memoryStore {
	return &memoryStore{carts: make(map[string][]Item)}
}

func (m *memoryStore) GetCart(ctx context.Context, userID string) ([]Item, error) {
	return append([]Item(nil), m.carts[userID]...), nil
}

func (m *memoryStore) SaveCart(ctx context.Context, userID string, items []Item) error {
	m.carts[userID] = append([]Item(nil), items...)
	return nil
}

func (m *memoryStore) ClearCart(ctx context.Context, userID string) error {
	delete(m.carts, userID)
	return nil
}
