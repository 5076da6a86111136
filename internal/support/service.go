package support

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/notpazar/notpazar-backend/pkg/errors"
	"github.com/notpazar/notpazar-backend/pkg/jsonstore"
	"github.com/notpazar/notpazar-backend/pkg/models"
)

// CollectionName is the support tickets file under the store root.
const CollectionName = "support_requests.json"

// Service keeps one ordered ticket list per user. Tickets are appended
// by the user and removable by positional index.
type Service interface {
	Create(ctx context.Context, user, productID, message string) (models.SupportTicket, error)
	List(ctx context.Context, user string) ([]models.SupportTicket, error)
	Delete(ctx context.Context, user string, index int) error
}

type service struct {
	tickets *jsonstore.Collection[map[string][]models.SupportTicket]
	now     func() time.Time
}

// NewService wires a support service over the tickets collection.
func NewService(store *jsonstore.Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	return &service{
		tickets: jsonstore.NewCollection(store, CollectionName, func() map[string][]models.SupportTicket { return map[string][]models.SupportTicket{} }),
		now:     time.Now,
	}, nil
}

// Create appends a ticket with a UTC timestamp. The product reference
// is optional; the message is not.
func (s *service) Create(ctx context.Context, user, productID, message string) (models.SupportTicket, error) {
	if user == "" {
		return models.SupportTicket{}, pkgerrors.New(pkgerrors.CodeValidation, "user required")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return models.SupportTicket{}, pkgerrors.New(pkgerrors.CodeValidation, "message required")
	}

	ticket := models.SupportTicket{
		ProductID: productID,
		Message:   message,
		Timestamp: s.now().UTC(),
	}

	_, err := s.tickets.Update(ctx, func(tickets map[string][]models.SupportTicket) (map[string][]models.SupportTicket, error) {
		tickets[user] = append(tickets[user], ticket)
		return tickets, nil
	})
	if err != nil {
		return models.SupportTicket{}, err
	}
	return ticket, nil
}

// List returns the user's tickets in creation order.
func (s *service) List(ctx context.Context, user string) ([]models.SupportTicket, error) {
	tickets, err := s.tickets.Load(ctx)
	if err != nil {
		return nil, err
	}
	return tickets[user], nil
}

// Delete removes the ticket at the given position.
func (s *service) Delete(ctx context.Context, user string, index int) error {
	_, err := s.tickets.Update(ctx, func(tickets map[string][]models.SupportTicket) (map[string][]models.SupportTicket, error) {
		owned := tickets[user]
		if index < 0 || index >= len(owned) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("ticket index %d out of range", index))
		}
		tickets[user] = append(owned[:index], owned[index+1:]...)
		return tickets, nil
	})
	return err
}
