package cart

import (
	"context"
	"fmt"

	pkgerrors "github.com/notpazar/notpazar-backend/pkg/errors"
	"github.com/notpazar/notpazar-backend/pkg/jsonstore"
	"github.com/notpazar/notpazar-backend/pkg/models"
)

// QuantityAction selects the direction of a quantity adjustment.
type QuantityAction string

const (
	QuantityIncrease QuantityAction = "increase"
	QuantityDecrease QuantityAction = "decrease"
)

// ParseQuantityAction validates a client-supplied action string.
func ParseQuantityAction(value string) (QuantityAction, error) {
	switch QuantityAction(value) {
	case QuantityIncrease, QuantityDecrease:
		return QuantityAction(value), nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown quantity action %q", value))
	}
}

// ProductSource is the slice of the catalog the cart needs to join its
// lines against current product data.
type ProductSource interface {
	GetByID(ctx context.Context, id string) (models.Product, error)
}

// Line is one cart row joined against the catalog.
type Line struct {
	Product   models.Product `json:"product"`
	Quantity  int            `json:"quantity"`
	UnitPrice int            `json:"unit_price"`
}

// View is the cart as shown to the user.
type View struct {
	Lines []Line `json:"lines"`
	Total int    `json:"total"`
}

// Service maintains one ordered cart per user. Each user's cart lives
// in its own collection file, so different users never contend on the
// same lock.
type Service interface {
	Add(ctx context.Context, user, productID, filename string) (count int, added bool, err error)
	Remove(ctx context.Context, user, productID string) error
	SetQuantity(ctx context.Context, user, productID string, action QuantityAction) error
	Items(ctx context.Context, user string) ([]models.CartItem, error)
	View(ctx context.Context, user string) (View, error)
	Clear(ctx context.Context, user string) error
	Count(ctx context.Context, user string) (int, error)
}

type service struct {
	store    *jsonstore.Store
	products ProductSource
}

// NewService wires a cart service over per-user cart collections.
func NewService(store *jsonstore.Store, products ProductSource) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product source required")
	}
	return &service{store: store, products: products}, nil
}

// collection returns the user's cart collection. File naming follows
// the original deployment layout so existing carts load as-is.
func (s *service) collection(user string) *jsonstore.Collection[[]models.CartItem] {
	name := fmt.Sprintf("cartfiles/cart_%s.json", user)
	return jsonstore.NewCollection(s.store, name, func() []models.CartItem { return []models.CartItem{} })
}

// Add appends the product with quantity 1 unless it is already in the
// cart; a second add of the same product is a no-op, reported through
// the added flag. The returned count is the sum of quantities.
func (s *service) Add(ctx context.Context, user, productID, filename string) (int, bool, error) {
	if user == "" {
		return 0, false, pkgerrors.New(pkgerrors.CodeValidation, "user required")
	}
	if productID == "" {
		return 0, false, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	added := false
	items, err := s.collection(user).Update(ctx, func(items []models.CartItem) ([]models.CartItem, error) {
		for _, item := range items {
			if item.ProductID == productID {
				return items, nil
			}
		}
		added = true
		return append(items, models.CartItem{ProductID: productID, Filename: filename, Quantity: 1}), nil
	})
	if err != nil {
		return 0, false, err
	}
	return totalQuantity(items), added, nil
}

// Remove filters the product out of the cart. Absence is tolerated.
func (s *service) Remove(ctx context.Context, user, productID string) error {
	_, err := s.collection(user).Update(ctx, func(items []models.CartItem) ([]models.CartItem, error) {
		kept := items[:0]
		for _, item := range items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		return kept, nil
	})
	return err
}

// SetQuantity adjusts the item's quantity by one. Increase is
// unbounded; decrease floors at 1 (use Remove to drop the line).
func (s *service) SetQuantity(ctx context.Context, user, productID string, action QuantityAction) error {
	if action != QuantityIncrease && action != QuantityDecrease {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown quantity action %q", action))
	}

	_, err := s.collection(user).Update(ctx, func(items []models.CartItem) ([]models.CartItem, error) {
		for i := range items {
			if items[i].ProductID != productID {
				continue
			}
			if action == QuantityIncrease {
				items[i].Quantity++
			} else if items[i].Quantity > 1 {
				items[i].Quantity--
			}
			break
		}
		return items, nil
	})
	return err
}

// Items returns the raw cart lines.
func (s *service) Items(ctx context.Context, user string) ([]models.CartItem, error) {
	return s.collection(user).Load(ctx)
}

// View joins the cart against the current catalog. Items whose product
// has vanished from the catalog are silently dropped from the view.
func (s *service) View(ctx context.Context, user string) (View, error) {
	items, err := s.Items(ctx, user)
	if err != nil {
		return View{}, err
	}

	view := View{Lines: []Line{}}
	for _, item := range items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
				continue
			}
			return View{}, err
		}

		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		unit := product.PriceValue()
		view.Lines = append(view.Lines, Line{Product: product, Quantity: qty, UnitPrice: unit})
		view.Total += unit * qty
	}
	return view, nil
}

// Clear replaces the cart with an empty sequence.
func (s *service) Clear(ctx context.Context, user string) error {
	_, err := s.collection(user).Update(ctx, func([]models.CartItem) ([]models.CartItem, error) {
		return []models.CartItem{}, nil
	})
	return err
}

// Count returns the sum of quantities across the cart.
func (s *service) Count(ctx context.Context, user string) (int, error) {
	items, err := s.Items(ctx, user)
	if err != nil {
		return 0, err
	}
	return totalQuantity(items), nil
}

func totalQuantity(items []models.CartItem) int {
	total := 0
	for _, item := range items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		total += qty
	}
	return total
}
