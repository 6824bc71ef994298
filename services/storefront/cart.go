package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
)

const maxLineQuantity = 99

// donationID marks the non-variant contribution line type.
const donationID = "DONATION"

// Line is one orderable unit of the cart. Title and Price are captured
// from the catalog when the line is written (price-lock-in): later
// catalog price changes never retroactively alter an in-progress cart.
type Line struct {
	ProductID  string  `json:"id"`
	Color      string  `json:"color,omitempty"`
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	IsDonation bool    `json:"isDonation,omitempty"`
}

func (l Line) subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// SetLineQuantity sets the quantity for the (product, color) line,
// creating or deleting it as needed. The quantity is clamped to
// [0, 99] and the clamped value is returned; callers must re-render
// from the returned value, not their own assumed delta.
func (s *Service) SetLineQuantity(ctx context.Context, productID, color string, quantity int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.product(productID)
	if !ok {
		return 0, fmt.Errorf("unknown product %q", productID)
	}
	if !validColor(productID, color) {
		return 0, fmt.Errorf("%q is not an available color for %s", color, product.Title)
	}

	quantity = min(max(quantity, 0), maxLineQuantity)

	match := func(l Line) bool {
		return !l.IsDonation && l.ProductID == productID && l.Color == color
	}

	if quantity == 0 {
		// deleting an absent line is fine, the cart is already in the
		// requested state
		s.cart = slices.DeleteFunc(s.cart, match)
	} else {
		idx := slices.IndexFunc(s.cart, match)
		if idx >= 0 {
			s.cart[idx].Quantity = quantity
			s.cart[idx].Title = product.Title
			s.cart[idx].Price = product.Price
		} else {
			s.cart = append(s.cart, Line{
				ProductID: productID,
				Color:     color,
				Title:     product.Title,
				Price:     product.Price,
				Quantity:  quantity,
			})
		}
	}

	err := s.persistSnapshot(ctx, cartKey, s.cart)
	if err != nil {
		return quantity, err
	}

	slog.DebugContext(
		ctx, "cart updated",
		"product", productID,
		"color", color,
		"quantity", quantity,
	)
	return quantity, nil
}

// AdjustLineQuantity applies a delta to the quantity the caller is
// currently displaying rather than to the store's last-known value, so
// edits made outside the store between renders are tolerated.
func (s *Service) AdjustLineQuantity(ctx context.Context, productID, color string, displayed, delta int) (int, error) {
	return s.SetLineQuantity(ctx, productID, color, displayed+delta)
}

// AddDonation appends a flat contribution line. Donation lines bypass
// the color variant rules entirely and their price can only be changed
// by removal and re-add.
func (s *Service) AddDonation(ctx context.Context, title string, price float64) error {
	if price <= 0 {
		return fmt.Errorf("donation amount must be positive")
	}
	if title == "" {
		title = "Donation"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = append(s.cart, Line{
		ProductID:  donationID,
		Title:      title,
		Price:      price,
		Quantity:   1,
		IsDonation: true,
	})
	return s.persistSnapshot(ctx, cartKey, s.cart)
}

// RemoveLine deletes the line at the given display index.
func (s *Service) RemoveLine(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.cart) {
		return fmt.Errorf("no cart line at index %d", index)
	}
	s.cart = slices.Delete(s.cart, index, index+1)
	return s.persistSnapshot(ctx, cartKey, s.cart)
}

// DecrementLine lowers the quantity of the line at the given index by
// one. A line at quantity 1 is left unchanged: decrement never
// produces a zero-quantity line, removal is explicit.
func (s *Service) DecrementLine(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.cart) {
		return fmt.Errorf("no cart line at index %d", index)
	}
	if s.cart[index].Quantity <= 1 {
		return nil
	}
	s.cart[index].Quantity--
	return s.persistSnapshot(ctx, cartKey, s.cart)
}

// Lines returns a copy of the cart in insertion order.
func (s *Service) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cart)
}

// Total is always recomputed from scratch over every line, donations
// included; there is no running counter to drift.
func (s *Service) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, l := range s.cart {
		total += l.subtotal()
	}
	return total
}

// TotalCents returns the total with each line subtotal rounded to
// whole cents, for display code that must not re-derive float sums.
func (s *Service) TotalCents() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cents int64
	for _, l := range s.cart {
		cents += int64(math.Round(l.Price*100)) * int64(l.Quantity)
	}
	return cents
}

func (s *Service) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = nil
	return s.persistSnapshot(ctx, cartKey, s.cart)
}
