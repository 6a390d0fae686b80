package store

import (
	"context"
	"errors"

	"github.com/harborpoint/customerd/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, and
// later postgres) implement this. It exposes per-entity repositories instead
// of a generic entity-indexed repository so callers get a closed set of
// parameterized queries rather than a leaky query builder.
type Store interface {
	Users() Users
	Customers() Customers

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is the exact-match lookup used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// The username column has a unique index; a constraint violation is
	// reported as ErrAlreadyExists, which is the authoritative duplicate
	// signal under concurrent registration.
	CreateUser(ctx context.Context, u domain.User) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Customers interface {
	// GetCustomerByID returns a customer by id.
	GetCustomerByID(ctx context.Context, id string) (domain.Customer, error)

	// ListCustomers returns all customers ordered by creation (newest first).
	ListCustomers(ctx context.Context) ([]domain.Customer, error)

	// FilterCustomers returns customers matching the filter. Filtering is
	// pushed down to the store; it never fetches the full table to filter
	// in memory.
	FilterCustomers(ctx context.Context, f domain.CustomerFilter) ([]domain.Customer, error)

	// CreateCustomer inserts a new customer (id is ULID).
	CreateCustomer(ctx context.Context, c domain.Customer) error

	// UpdateCustomer rewrites the mutable fields and bumps updated_at.
	UpdateCustomer(ctx context.Context, c domain.Customer) error

	// DeleteCustomer removes a customer.
	DeleteCustomer(ctx context.Context, id string) error
}
