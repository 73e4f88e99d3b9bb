package service

import (
	"context"
	"strings"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/ledger"
	"catatkas/backend/internal/repository"
	"catatkas/backend/internal/xid"
)

func (s *Service) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	var out []domain.Contact
	err := s.view(ctx, func(st *domain.State) error {
		out = st.ContactList()
		return nil
	})
	return out, err
}

func (s *Service) CreateContact(ctx context.Context, req domain.ContactRequest) (domain.Contact, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Contact{}, apperr.Validation("contact name is required")
	}

	contact := domain.Contact{
		ID:                xid.New("cnt"),
		Name:              name,
		Phone:             strings.TrimSpace(req.Phone),
		NextInvoiceNumber: 1,
		CreatedAt:         s.ledger.Now(),
	}
	err := s.update(ctx, func(tx *repository.Tx) error {
		tx.PutContact(contact)
		return nil
	})
	if err != nil {
		return domain.Contact{}, err
	}

	s.logAudit(ctx, "contact_create", "contact", contact.ID, "name", contact.Name)
	return contact, nil
}

func (s *Service) UpdateContact(ctx context.Context, id string, req domain.ContactUpdateRequest) (domain.Contact, error) {
	var contact domain.Contact
	err := s.update(ctx, func(tx *repository.Tx) error {
		current, ok := tx.State().Contacts[id]
		if !ok {
			return apperr.NotFound("contact", id)
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperr.Validation("contact name is required")
			}
			current.Name = name
		}
		if req.Phone != nil {
			current.Phone = strings.TrimSpace(*req.Phone)
		}
		tx.PutContact(current)
		contact = current
		return nil
	})
	if err != nil {
		return domain.Contact{}, err
	}

	s.logAudit(ctx, "contact_update", "contact", contact.ID, "name", contact.Name)
	return contact, nil
}

// DeleteContact refuses while the contact still owes on a credit sale.
func (s *Service) DeleteContact(ctx context.Context, id string) error {
	err := s.update(ctx, func(tx *repository.Tx) error {
		contact, ok := tx.State().Contacts[id]
		if !ok {
			return apperr.NotFound("contact", id)
		}
		if ledger.HasOpenDebt(tx.State(), id) {
			return apperr.Validation("contact %q still has outstanding credit", contact.Name)
		}
		tx.DeleteContact(id)
		return nil
	})
	if err != nil {
		return err
	}
	s.logAudit(ctx, "contact_delete", "contact", id)
	return nil
}
