package storefront

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"mumsale-backend/lib/sheetsapi"
	"mumsale-backend/services/storefront/db"

	_ "modernc.org/sqlite"
)

// fixed snapshot keys, carried over from the storage keys the original
// storefront used so an operator can recognize them in the database
const (
	cartKey      = "mums_cart"
	customerKey  = "mums_customer_info"
	lastOrderKey = "mums_last_order"
)

// Service owns the in-session storefront state: the loaded catalog,
// the cart and the customer info. Every cart mutation writes the full
// snapshot back to the database; the persisted copy is only ever read
// again at the next construction.
type Service struct {
	db     *sql.DB
	qry    *db.Queries
	client *sheetsapi.Client

	mu       sync.Mutex
	catalog  []sheetsapi.Product
	cart     []Line
	customer CustomerInfo
}

func NewService(ctx context.Context, database *sql.DB, client *sheetsapi.Client) (*Service, error) {
	s := &Service{
		db:     database,
		qry:    db.New(database),
		client: client,
	}

	err := s.restoreSnapshot(ctx, cartKey, &s.cart)
	if err != nil {
		return nil, err
	}
	err = s.restoreSnapshot(ctx, customerKey, &s.customer)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "restored storefront state", "cart_lines", len(s.cart))
	return s, nil
}

func (s *Service) restoreSnapshot(ctx context.Context, key string, out any) error {
	row, err := s.qry.GetSnapshot(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	err = json.Unmarshal([]byte(row.Value), out)
	if err != nil {
		// a corrupt snapshot should not brick the storefront
		slog.WarnContext(ctx, "discarding corrupt snapshot", "key", key, "err", err)
	}
	return nil
}

// persistSnapshot must be called with s.mu held when value aliases
// service state.
func (s *Service) persistSnapshot(ctx context.Context, key string, value any) error {
	serialized, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.qry.UpsertSnapshot(ctx, db.UpsertSnapshotParams{
		Key:       key,
		Value:     string(serialized),
		UpdatedAt: time.Now().Unix(),
	})
}
