package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/harborpoint/customerd/internal/domain"
	"github.com/harborpoint/customerd/internal/store"
	"github.com/harborpoint/customerd/pkg/idx"
	"github.com/harborpoint/customerd/pkg/slogx"
)

var ErrCustomerNotFound = errors.New("customer not found")

type CustomerService struct {
	Store store.Store
}

// GetAll returns every customer, newest first.
func (s *CustomerService) GetAll(ctx context.Context) ([]domain.Customer, error) {
	return s.Store.Customers().ListCustomers(ctx)
}

func (s *CustomerService) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	customer, err := s.Store.Customers().GetCustomerByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Customer{}, ErrCustomerNotFound
		}
		return domain.Customer{}, err
	}
	return customer, nil
}

// Filter returns the customers matching every set criterion. A zero
// filter behaves like GetAll.
func (s *CustomerService) Filter(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error) {
	if filter.IsZero() {
		return s.Store.Customers().ListCustomers(ctx)
	}
	return s.Store.Customers().FilterCustomers(ctx, filter)
}

// Create persists a new customer and returns it with its assigned id.
func (s *CustomerService) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	l := slogx.FromContext(ctx)

	customer.ID = idx.New().String()
	customer.CreatedAt = time.Now().UTC()
	customer.UpdatedAt = nil

	if err := s.Store.Customers().CreateCustomer(ctx, customer); err != nil {
		l.Error("failed to create customer", slog.Any("error", err))
		return domain.Customer{}, err
	}

	l.Info("customer created", slog.String("customer_id", customer.ID))
	return customer, nil
}

// Update replaces the mutable fields of an existing customer.
func (s *CustomerService) Update(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	l := slogx.FromContext(ctx)

	var updated domain.Customer
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Customers().GetCustomerByID(ctx, customer.ID)
		if err != nil {
			return err
		}

		existing.FirstName = customer.FirstName
		existing.LastName = customer.LastName
		existing.Email = customer.Email
		existing.Region = customer.Region
		existing.RegistrationDate = customer.RegistrationDate

		if err := tx.Customers().UpdateCustomer(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Customer{}, ErrCustomerNotFound
		}
		return domain.Customer{}, err
	}

	l.Info("customer updated", slog.String("customer_id", customer.ID))
	return updated, nil
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	l := slogx.FromContext(ctx)

	if err := s.Store.Customers().DeleteCustomer(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}

	l.Info("customer deleted", slog.String("customer_id", id))
	return nil
}
