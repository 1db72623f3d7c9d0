// Package repository contains data access logic separated from HTTP handlers.
// This file defines repository methods for cinema CRUD and lookup
// operations. A Cinema represents a venue that schedules point to.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to define custom error values

	"github.com/movietix/booking-api/internal/model"
)

// ErrCinemaNotFound is returned when a cinema cannot be found in the DB.
var ErrCinemaNotFound = errors.New("cinema not found")

// CinemaRepo encapsulates all database queries related to cinemas.  It
// depends on a sql.DB connection which should be configured elsewhere.
type CinemaRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewCinemaRepo constructs a CinemaRepo with the provided DB handle.  This
// function allows dependency injection of the database in tests and at
// startup.  There is no initialization logic beyond assigning the field.
func NewCinemaRepo(db *sql.DB) *CinemaRepo {
	return &CinemaRepo{db: db}
}

const cinemaColumns = `id, name, address, city, phone, total_rooms, is_active, created_at, updated_at`

// Create inserts a new cinema into the database.  On success the cinema's
// ID field will be populated with the auto-generated value, and a
// follow-up SELECT populates the DB-default fields so that callers
// receive a fully populated record.
func (r *CinemaRepo) Create(ctx context.Context, c *model.Cinema) error {
	const qInsert = "INSERT INTO cinemas (name, address, city, phone, total_rooms) VALUES (?, ?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, c.Name, c.Address, c.City, c.Phone, c.TotalRooms)
	if err != nil {
		return err // propagate DB errors to the caller
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*c = *got
	return nil
}

// GetByID fetches a cinema by its ID, active or not.  It returns
// ErrCinemaNotFound if no row is found.
func (r *CinemaRepo) GetByID(ctx context.Context, id uint64) (*model.Cinema, error) {
	const q = "SELECT " + cinemaColumns + " FROM cinemas WHERE id = ?"
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// ResolveCinema fetches a cinema only when it exists and is active.  It
// is the catalog lookup used to validate schedule creation; inactive
// venues behave as if they do not exist.
func (r *CinemaRepo) ResolveCinema(ctx context.Context, id uint64) (*model.Cinema, error) {
	const q = "SELECT " + cinemaColumns + " FROM cinemas WHERE id = ? AND is_active = TRUE"
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// ListActive returns all active cinemas ordered by name.  It backs the
// public browsing endpoint.
func (r *CinemaRepo) ListActive(ctx context.Context) ([]*model.Cinema, error) {
	const q = "SELECT " + cinemaColumns + " FROM cinemas WHERE is_active = TRUE ORDER BY name"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Cinema, 0)
	for rows.Next() {
		c, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies an administrative partial update.  Nil fields are left
// unchanged.  ErrCinemaNotFound is returned when the cinema does not
// exist.
func (r *CinemaRepo) Update(ctx context.Context, id uint64, name, address, city, phone *string, totalRooms *int, isActive *bool) (*model.Cinema, error) {
	var b setBuilder
	if name != nil {
		b.add("name", *name)
	}
	if address != nil {
		b.add("address", *address)
	}
	if city != nil {
		b.add("city", *city)
	}
	if phone != nil {
		b.add("phone", *phone)
	}
	if totalRooms != nil {
		b.add("total_rooms", *totalRooms)
	}
	if isActive != nil {
		b.add("is_active", *isActive)
	}
	if !b.empty() {
		args := append(b.args, id)
		if _, err := r.db.ExecContext(ctx, "UPDATE cinemas SET "+b.clause()+" WHERE id = ?", args...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a cinema.  Deletion is blocked with ErrConflict while
// schedules still reference the venue; removing those is a deliberate
// administrative step, never an implicit cascade.
func (r *CinemaRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	var n int
	if err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM schedules WHERE cinema_id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		err = ErrConflict
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, "DELETE FROM cinemas WHERE id = ?", id); err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		err = ErrCinemaNotFound
		return err
	}
	return nil
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *CinemaRepo) scanOne(row *sql.Row) (*model.Cinema, error) {
	c, err := r.scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCinemaNotFound
	}
	return c, err
}

func (r *CinemaRepo) scanRow(s rowScanner) (*model.Cinema, error) {
	var (
		c     model.Cinema
		phone sql.NullString
	)
	if err := s.Scan(&c.ID, &c.Name, &c.Address, &c.City, &phone, &c.TotalRooms,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if phone.Valid {
		p := phone.String
		c.Phone = &p
	}
	return &c, nil
}
