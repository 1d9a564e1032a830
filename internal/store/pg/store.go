// Package pg is the durable order store: PostgreSQL holds the collection,
// Redis Pub/Sub carries the change signal. Every acknowledged write publishes
// on the orders channel; each subscriber re-reads the full collection on every
// signal, so deliveries are snapshots, never deltas.
package pg

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/os44ua/comida-rapida/internal/orders"
	"github.com/os44ua/comida-rapida/internal/redisx"
)

type Store struct {
	DB    *pgxpool.Pool
	Redis *redis.Client
	Log   *slog.Logger
}

func (s *Store) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

// EnsureSchema creates the orders table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.DB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			id            TEXT PRIMARY KEY,
			food_id       INT NOT NULL,
			food_name     TEXT NOT NULL,
			quantity      INT NOT NULL,
			total_amount  DOUBLE PRECISION NOT NULL,
			customer_name TEXT NOT NULL,
			phone         TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Append inserts a new record under a generated key. Always an insert, never
// an upsert: two appends never collide even with identical data.
func (s *Store) Append(ctx context.Context, o orders.Order) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.Exec(ctx, `
		INSERT INTO orders(id, food_id, food_name, quantity, total_amount, customer_name, phone, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		id, o.FoodID, o.FoodName, o.Quantity, o.TotalAmount, o.CustomerName, o.Phone, o.Timestamp,
	)
	if err != nil {
		return "", err
	}
	s.publishChange(ctx, id)
	return id, nil
}

// Update patches only the fields set on the patch; everything else untouched.
func (s *Store) Update(ctx context.Context, id string, patch orders.OrderPatch) error {
	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if patch.Quantity != nil {
		args = append(args, *patch.Quantity)
		sets = append(sets, fmt.Sprintf("quantity=$%d", len(args)))
	}
	if patch.TotalAmount != nil {
		args = append(args, *patch.TotalAmount)
		sets = append(sets, fmt.Sprintf("total_amount=$%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	ct, err := s.DB.Exec(ctx, fmt.Sprintf(`UPDATE orders SET %s WHERE id=$%d`, strings.Join(sets, ", "), len(args)), args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return orders.ErrOrderNotFound
	}
	s.publishChange(ctx, id)
	return nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return orders.ErrOrderNotFound
	}
	s.publishChange(ctx, id)
	return nil
}

// Snapshot reads the whole collection.
func (s *Store) Snapshot(ctx context.Context) ([]orders.Order, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, food_id, food_name, quantity, total_amount, customer_name, phone, created_at
		FROM orders`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]orders.Order, 0)
	for rows.Next() {
		var o orders.Order
		if err := rows.Scan(&o.ID, &o.FoodID, &o.FoodName, &o.Quantity, &o.TotalAmount, &o.CustomerName, &o.Phone, &o.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Subscribe delivers the initial snapshot, then a fresh snapshot on every
// change signal. A failed re-read surfaces through onError and the subscriber
// keeps whatever it had. The returned func closes the signal subscription and
// waits for the delivery goroutine to exit.
func (s *Store) Subscribe(ctx context.Context, onSnapshot func([]orders.Order), onError func(error)) (func(), error) {
	sub := s.Redis.Subscribe(ctx, redisx.ChannelOrdersChanged)
	// pastikan channel aktif dulu, supaya tidak ada perubahan yang terlewat
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		deliver := func() {
			snap, err := s.Snapshot(ctx)
			if err != nil {
				onError(err)
				return
			}
			onSnapshot(snap)
		}
		deliver()
		for range sub.Channel() {
			deliver()
		}
	}()

	return func() {
		_ = sub.Close()
		<-done
	}, nil
}

func (s *Store) publishChange(ctx context.Context, id string) {
	// best effort: the write is already durable, a lost signal only delays
	// the next snapshot until the following change
	if err := s.Redis.Publish(ctx, redisx.ChannelOrdersChanged, id).Err(); err != nil {
		s.logger().Warn("change signal publish failed", "order_id", id, "err", err)
	}
}
