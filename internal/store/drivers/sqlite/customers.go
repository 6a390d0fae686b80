package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/harborpoint/customerd/internal/domain"
)

type customersRepo struct {
	db dbtx
}

const customerColumns = `id, first_name, last_name, email, region, registration_date, created_at, updated_at`

func (r *customersRepo) GetCustomerByID(ctx context.Context, id string) (domain.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	return scanCustomer(row)
}

func (r *customersRepo) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCustomers(rows)
}

// FilterCustomers builds a parameterized WHERE clause from the filter and
// runs it in the database. The substring and region matches are ASCII
// case-insensitive; date bounds are inclusive.
func (r *customersRepo) FilterCustomers(ctx context.Context, f domain.CustomerFilter) ([]domain.Customer, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + customerColumns + ` FROM customers WHERE 1=1`)
	var args []any

	if f.Name != "" {
		// LIKE is case-insensitive for ASCII in SQLite.
		sb.WriteString(` AND (first_name LIKE ? ESCAPE '\' OR last_name LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(f.Name) + "%"
		args = append(args, pattern, pattern)
	}
	if f.Region != "" {
		sb.WriteString(` AND region = ? COLLATE NOCASE`)
		args = append(args, f.Region)
	}
	if f.RegisteredFrom != nil {
		sb.WriteString(` AND registration_date >= ?`)
		args = append(args, f.RegisteredFrom.UTC())
	}
	if f.RegisteredTo != nil {
		sb.WriteString(` AND registration_date <= ?`)
		args = append(args, f.RegisteredTo.UTC())
	}

	sb.WriteString(` ORDER BY created_at DESC, id DESC`)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCustomers(rows)
}

func (r *customersRepo) CreateCustomer(ctx context.Context, c domain.Customer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (id, first_name, last_name, email, region, registration_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Region, c.RegistrationDate, c.CreatedAt,
	)
	return mapConflict(err)
}

func (r *customersRepo) UpdateCustomer(ctx context.Context, c domain.Customer) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE customers
		 SET first_name = ?, last_name = ?, email = ?, region = ?, registration_date = ?, updated_at = ?
		 WHERE id = ?`,
		c.FirstName, c.LastName, c.Email, c.Region, c.RegistrationDate, time.Now().UTC(), c.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *customersRepo) DeleteCustomer(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// escapeLike neutralizes LIKE wildcards in user input so a search term is
// matched literally. Used together with the ESCAPE '\' clause above.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func scanCustomer(row *sql.Row) (domain.Customer, error) {
	var c domain.Customer
	var updatedAt sql.NullTime
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Region,
		&c.RegistrationDate, &c.CreatedAt, &updatedAt,
	)
	if err != nil {
		return domain.Customer{}, mapNotFound(err)
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		c.UpdatedAt = &t
	}
	return c, nil
}

func collectCustomers(rows *sql.Rows) ([]domain.Customer, error) {
	var out []domain.Customer
	for rows.Next() {
		var c domain.Customer
		var updatedAt sql.NullTime
		err := rows.Scan(
			&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Region,
			&c.RegistrationDate, &c.CreatedAt, &updatedAt,
		)
		if err != nil {
			return nil, err
		}
		if updatedAt.Valid {
			t := updatedAt.Time
			c.UpdatedAt = &t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
