package ledger

import (
	"context"
	"fmt"

	pkgerrors "github.com/notpazar/notpazar-backend/pkg/errors"
	"github.com/notpazar/notpazar-backend/pkg/jsonstore"
)

// CollectionName is the purchases file under the store root, kept from
// the original deployment layout.
const CollectionName = "satin_alimlar.json"

// Service keeps the append-only record of which products each user has
// purchased. Identifiers are added at checkout and never removed here.
type Service interface {
	RecordPurchases(ctx context.Context, user string, productIDs []string) error
	IsPurchased(ctx context.Context, user, productID string) (bool, error)
	PurchasedIDs(ctx context.Context, user string) ([]string, error)
}

type service struct {
	purchases *jsonstore.Collection[map[string][]string]
}

// NewService wires a ledger service over the purchases collection.
func NewService(store *jsonstore.Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	return &service{
		purchases: jsonstore.NewCollection(store, CollectionName, func() map[string][]string { return map[string][]string{} }),
	}, nil
}

// RecordPurchases unions the ids into the user's purchased set. Already
// recorded ids are no-ops, so replaying after a partial failure is safe.
func (s *service) RecordPurchases(ctx context.Context, user string, productIDs []string) error {
	if user == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user required")
	}
	if len(productIDs) == 0 {
		return nil
	}

	_, err := s.purchases.Update(ctx, func(purchases map[string][]string) (map[string][]string, error) {
		owned := purchases[user]
		seen := make(map[string]struct{}, len(owned))
		for _, id := range owned {
			seen[id] = struct{}{}
		}
		for _, id := range productIDs {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			owned = append(owned, id)
			seen[id] = struct{}{}
		}
		purchases[user] = owned
		return purchases, nil
	})
	return err
}

// IsPurchased reports whether the user has bought the product.
func (s *service) IsPurchased(ctx context.Context, user, productID string) (bool, error) {
	owned, err := s.PurchasedIDs(ctx, user)
	if err != nil {
		return false, err
	}
	for _, id := range owned {
		if id == productID {
			return true, nil
		}
	}
	return false, nil
}

// PurchasedIDs returns the user's purchased product identifiers.
func (s *service) PurchasedIDs(ctx context.Context, user string) ([]string, error) {
	purchases, err := s.purchases.Load(ctx)
	if err != nil {
		return nil, err
	}
	return purchases[user], nil
}
