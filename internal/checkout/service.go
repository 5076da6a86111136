package checkout

import (
	"context"
	"fmt"

	"github.com/notpazar/notpazar-backend/internal/cart"
	"github.com/notpazar/notpazar-backend/internal/ledger"
	"github.com/notpazar/notpazar-backend/pkg/logger"
)

// Result summarizes a completed checkout.
type Result struct {
	PurchasedIDs []string `json:"purchased_ids"`
}

// Service performs the purchase transition: everything in the cart
// becomes owned in the ledger, then the cart is emptied.
type Service interface {
	Checkout(ctx context.Context, user string) (Result, error)
}

type service struct {
	cart   cart.Service
	ledger ledger.Service
	logg   *logger.Logger
}

// NewService wires a checkout workflow over the cart and ledger services.
func NewService(cartSvc cart.Service, ledgerSvc ledger.Service, logg *logger.Logger) (Service, error) {
	if cartSvc == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &service{cart: cartSvc, ledger: ledgerSvc, logg: logg}, nil
}

// Checkout reads the cart, records every product id in the ledger, and
// only then clears the cart. The two collections are not covered by one
// transaction; the ordering makes the workflow safely re-entrant. A
// crash after the ledger write leaves the purchased items in the cart,
// and re-running checkout is an idempotent union plus an empty clear.
// Checking out an empty cart performs no work and is not an error.
func (s *service) Checkout(ctx context.Context, user string) (Result, error) {
	items, err := s.cart.Items(ctx, user)
	if err != nil {
		return Result{}, err
	}
	if len(items) == 0 {
		return Result{PurchasedIDs: []string{}}, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	if err := s.ledger.RecordPurchases(ctx, user, ids); err != nil {
		return Result{}, err
	}

	if err := s.cart.Clear(ctx, user); err != nil {
		// Ledger already holds the purchases; the stale cart is safe to
		// re-clear on the next attempt.
		return Result{}, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"user": user, "purchased": len(ids)}), "checkout.completed")
	}
	return Result{PurchasedIDs: ids}, nil
}
