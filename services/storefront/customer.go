package storefront

import (
	"context"
	"log/slog"
	"time"

	"mumsale-backend/lib/sheetsapi"
)

// CustomerInfo lives under its own storage key with a lifecycle
// independent of the cart: it is reloaded to prefill the order form on
// the next visit and auto-saved periodically while the form is open.
type CustomerInfo struct {
	FirstName string            `json:"firstName"`
	LastName  string            `json:"lastName"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone"`
	Address   sheetsapi.Address `json:"address"`
}

func (s *Service) SetCustomerInfo(ctx context.Context, info CustomerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.customer = info
	return s.persistSnapshot(ctx, customerKey, s.customer)
}

func (s *Service) CustomerInfo() CustomerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

// StartAutoSaveDaemon persists the current customer info on a fixed
// interval until the context is cancelled.
func (s *Service) StartAutoSaveDaemon(ctx context.Context, interval time.Duration) {
	slog.InfoContext(ctx, "start daemon", "task", "auto-save customer info", "interval", interval)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				err := s.persistSnapshot(ctx, customerKey, s.customer)
				s.mu.Unlock()
				if err != nil {
					slog.WarnContext(ctx, "failed to auto-save customer info", "err", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
