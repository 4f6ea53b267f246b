package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/brewbot-backend/internal/cart"
	"github.com/angelmondragon/brewbot-backend/pkg/db/models"
	"github.com/angelmondragon/brewbot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/brewbot-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartAccessor interface {
	Items(ctx context.Context, userID string) ([]cart.Item, error)
	Clear(ctx context.Context, userID string) error
}

// Outcome reports the result of a checkout attempt. Empty means the cart had
// nothing to convert and no order was created.
type Outcome struct {
	Empty      bool
	OrderID    uuid.UUID
	GrandTotal decimal.Decimal
	ItemCount  int
}

// Service converts a non-empty cart into a durable order.
type Service interface {
	Checkout(ctx context.Context, userID string) (*Outcome, error)
}

type service struct {
	repo  Repository
	tx    txRunner
	carts cartAccessor
}

// NewService builds the checkout engine.
func NewService(repo Repository, tx txRunner, carts cartAccessor) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart accessor required")
	}
	return &service{repo: repo, tx: tx, carts: carts}, nil
}

// Checkout snapshots the cart into a pending order and clears the cart.
// Order creation runs inside a transaction; the cart clear that follows is
// best-effort, so a non-nil Outcome can accompany a clear error. The created
// order stands either way.
func (s *service) Checkout(ctx context.Context, userID string) (*Outcome, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	items, err := s.carts.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return &Outcome{Empty: true, GrandTotal: decimal.Zero}, nil
	}

	order := buildOrder(userID, items)
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, order)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	outcome := &Outcome{
		OrderID:    order.ID,
		GrandTotal: order.GrandTotal,
		ItemCount:  len(items),
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		return outcome, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart after checkout")
	}
	return outcome, nil
}

func buildOrder(userID string, items []cart.Item) *models.Order {
	order := &models.Order{
		ID:         uuid.New(),
		UserID:     userID,
		Status:     enums.OrderStatusPending,
		GrandTotal: cart.Total(items),
	}
	for _, item := range items {
		order.LineItems = append(order.LineItems, models.OrderLineItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			Drink:       item.Drink,
			Base:        item.Base,
			Size:        item.Size,
			Milk:        item.Milk,
			Temperature: item.Temperature,
			AddOns:      item.AddOns,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
			Subtotal:    item.Subtotal,
		})
	}
	return order
}
