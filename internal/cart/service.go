package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/brewbot-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/brewbot-backend/pkg/errors"
)

// Service aggregates committed order lines per user.
type Service interface {
	Commit(ctx context.Context, userID string, product *catalog.Product, draft Draft) (Item, error)
	Items(ctx context.Context, userID string) ([]Item, error)
	Clear(ctx context.Context, userID string) error
}

type service struct {
	store Store
}

// NewService builds a cart service backed by the provided store.
func NewService(store Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &service{store: store}, nil
}

// Commit prices the draft against the product, freezes it as an Item, and
// appends it to the user's cart.
func (s *service) Commit(ctx context.Context, userID string, product *catalog.Product, draft Draft) (Item, error) {
	if userID == "" {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if product == nil {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}

	qty := draft.Quantity
	if qty < 1 {
		qty = 1
	}

	addOnTotal := decimal.Zero
	for _, name := range draft.AddOns {
		price, ok := product.AddOnPrice(name)
		if !ok {
			return Item{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown add-on %q", name))
		}
		addOnTotal = addOnTotal.Add(price)
	}

	unitPrice := product.Price.Add(addOnTotal)
	item := Item{
		Drink:       draft.Drink,
		Base:        draft.Base,
		Size:        draft.Size,
		Milk:        draft.Milk,
		Temperature: draft.Temperature,
		AddOns:      append([]string(nil), draft.AddOns...),
		Quantity:    qty,
		Price:       unitPrice,
		Subtotal:    unitPrice.Mul(decimal.NewFromInt(int64(qty))),
	}

	items, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return Item{}, err
	}
	items = append(items, item)
	if err := s.store.SaveCart(ctx, userID, items); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (s *service) Items(ctx context.Context, userID string) ([]Item, error) {
	return s.store.GetCart(ctx, userID)
}

// Clear empties the cart. Clearing an absent cart is a no-op.
func (s *service) Clear(ctx context.Context, userID string) error {
	return s.store.ClearCart(ctx, userID)
}
