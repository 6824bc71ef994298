package storefront

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"mumsale-backend/lib/sheetsapi"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/codes"
)

type CheckoutState int

const (
	StateBrowsing CheckoutState = iota
	StateForm
	StateSubmitting
	StateConfirmed
	StateFailed
)

func (s CheckoutState) String() string {
	switch s {
	case StateBrowsing:
		return "browsing"
	case StateForm:
		return "form"
	case StateSubmitting:
		return "submitting"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var phonePattern = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)

// how long a rehearsal order lingers on the fake "submitting" step so
// the flow looks like a real one
var testOrderDelay = time.Millisecond * 1500

var errEmptyCart = errors.New("please select at least one product")

// Confirmation is what the confirmation screen renders.
type Confirmation struct {
	OrderID       string
	Total         float64
	PaymentMethod string
	TestOrder     bool
}

// OrderRecord is the minimal history entry kept after a successful
// submit, purely for display.
type OrderRecord struct {
	OrderID string    `json:"orderId"`
	Date    time.Time `json:"date"`
	Total   float64   `json:"total"`
}

// Checkout drives one order through its linear lifecycle:
//
//	browsing -> form -> submitting -> confirmed | failed
//
// failed returns to form so the user can retry without re-entering the
// cart; confirmed only returns to browsing via NewOrder, which clears
// the cart.
type Checkout struct {
	service *Service
	state   CheckoutState
}

func (s *Service) NewCheckout() *Checkout {
	return &Checkout{service: s, state: StateBrowsing}
}

func (c *Checkout) State() CheckoutState {
	return c.state
}

// BeginOrder advances to the order form. An empty cart keeps the
// checkout in browsing.
func (c *Checkout) BeginOrder() error {
	if c.state != StateBrowsing {
		return fmt.Errorf("cannot begin an order while %s", c.state)
	}
	if len(c.service.Lines()) == 0 {
		return errEmptyCart
	}
	c.state = StateForm
	return nil
}

func validateCustomerInfo(info CustomerInfo) error {
	required := []struct {
		label string
		value string
	}{
		{"first name", info.FirstName},
		{"last name", info.LastName},
		{"email", info.Email},
		{"phone", info.Phone},
		{"street address", info.Address.Street},
		{"city", info.Address.City},
		{"state", info.Address.State},
		{"zip", info.Address.Zip},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("please fill in your %s", field.label)
		}
	}
	if !phonePattern.MatchString(info.Phone) {
		return fmt.Errorf("please enter phone number in format: 123-456-7890")
	}
	return nil
}

// a first or last name of "test" (any case) rehearses the flow without
// touching the backing store. intentional operator affordance, kept
// even though a real customer named Test would trigger it.
func isTestOrder(info CustomerInfo) bool {
	return strings.EqualFold(info.FirstName, "test") || strings.EqualFold(info.LastName, "test")
}

func syntheticOrderID() string {
	suffix, err := random.String(8)
	if err != nil {
		suffix = fmt.Sprintf("%d", time.Now().UnixMilli())
	}
	return "TEST-" + strings.ToUpper(suffix)
}

// Submit validates the form, assembles the payload from a cart
// snapshot and runs the submit lifecycle. Validation failures keep the
// checkout in the form state and never reach the network. On failure
// the cart is left exactly as it was so the user can retry.
//
// There is deliberately no single-flight guard: the state check below
// rejects a second Submit issued after the first one advanced the
// state, but two calls racing from different goroutines can both reach
// the backend, matching the original storefront's behavior.
func (c *Checkout) Submit(ctx context.Context, info CustomerInfo, paymentMethod, comments string) (Confirmation, error) {
	ctx, span := tracer.Start(ctx, "Submit")
	defer span.End()

	if c.state != StateForm {
		return Confirmation{}, fmt.Errorf("cannot submit while %s", c.state)
	}

	err := validateCustomerInfo(info)
	if err != nil {
		return Confirmation{}, err
	}

	// save for next time, like the original does right before sending
	err = c.service.SetCustomerInfo(ctx, info)
	if err != nil {
		return Confirmation{}, err
	}

	lines := c.service.Lines()
	total := c.service.Total()
	c.state = StateSubmitting

	if isTestOrder(info) {
		orderID := syntheticOrderID()
		slog.InfoContext(ctx, "test order short-circuit, skipping network", "order_id", orderID)
		time.Sleep(testOrderDelay)
		return c.confirm(ctx, orderID, total, paymentMethod, true)
	}

	result, err := c.service.client.SubmitOrder(ctx, buildSubmission(info, paymentMethod, comments, lines, total))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order submission failed")
		c.state = StateFailed
		return Confirmation{}, err
	}
	if !result.Success {
		message := result.Message
		if message == "" {
			message = "failed to submit order"
		}
		err := fmt.Errorf("%s", message)
		span.RecordError(err)
		span.SetStatus(codes.Error, "order rejected")
		c.state = StateFailed
		return Confirmation{}, err
	}

	return c.confirm(ctx, result.OrderID, total, paymentMethod, false)
}

func (c *Checkout) confirm(ctx context.Context, orderID string, total float64, paymentMethod string, testOrder bool) (Confirmation, error) {
	s := c.service

	// the backend already accepted the order, so local persistence
	// problems must not keep the checkout out of the confirmed state
	s.mu.Lock()
	record := OrderRecord{OrderID: orderID, Date: time.Now(), Total: total}
	err := s.persistSnapshot(ctx, lastOrderKey, record)
	if err != nil {
		slog.WarnContext(ctx, "failed to record order history", "err", err)
	}
	s.cart = nil
	err = s.persistSnapshot(ctx, cartKey, s.cart)
	if err != nil {
		slog.WarnContext(ctx, "failed to persist cleared cart", "err", err)
	}
	s.mu.Unlock()

	c.state = StateConfirmed
	slog.InfoContext(ctx, "order confirmed", "order_id", orderID, "total", total)
	return Confirmation{
		OrderID:       orderID,
		Total:         total,
		PaymentMethod: paymentMethod,
		TestOrder:     testOrder,
	}, nil
}

func buildSubmission(info CustomerInfo, paymentMethod, comments string, lines []Line, total float64) sheetsapi.OrderSubmission {
	products := make([]sheetsapi.OrderLine, len(lines))
	donations := 0
	for i, l := range lines {
		products[i] = sheetsapi.OrderLine{
			ID:         l.ProductID,
			Color:      l.Color,
			Title:      l.Title,
			Price:      l.Price,
			Quantity:   l.Quantity,
			IsDonation: l.IsDonation,
		}
		if l.IsDonation {
			donations++
		}
	}

	return sheetsapi.OrderSubmission{
		FirstName:     info.FirstName,
		LastName:      info.LastName,
		Email:         info.Email,
		Phone:         info.Phone,
		Address:       info.Address,
		Products:      products,
		TotalPrice:    total,
		Comments:      comments,
		PaymentMethod: paymentMethod,
		DonationOnly:  donations == len(lines) && donations > 0,
		// a compound order: real products bought and donated onward
		ThirdPartyDonation: donations > 0 && donations < len(lines),
	}
}

// Retry returns a failed checkout to the form so the user can fix and
// resubmit; the cart and entered data survive every failure path.
func (c *Checkout) Retry() error {
	if c.state != StateFailed {
		return fmt.Errorf("cannot retry while %s", c.state)
	}
	c.state = StateForm
	return nil
}

// NewOrder leaves a confirmed checkout and returns to browsing with an
// empty cart.
func (c *Checkout) NewOrder(ctx context.Context) error {
	if c.state != StateConfirmed {
		return fmt.Errorf("cannot start a new order while %s", c.state)
	}
	err := c.service.ClearCart(ctx)
	if err != nil {
		return err
	}
	c.state = StateBrowsing
	return nil
}

// LastOrder returns the persisted history record of the most recent
// successful submit.
func (s *Service) LastOrder(ctx context.Context) (OrderRecord, error) {
	var record OrderRecord
	row, err := s.qry.GetSnapshot(ctx, lastOrderKey)
	if errors.Is(err, sql.ErrNoRows) {
		return record, fmt.Errorf("no previous order")
	}
	if err != nil {
		return record, err
	}
	err = json.Unmarshal([]byte(row.Value), &record)
	if err != nil {
		return record, err
	}
	return record, nil
}

// SubmitVolunteer runs the volunteer sub-flow: no cart guard, no cart
// or payment data, distinct endpoint, same submit-once semantics.
func (s *Service) SubmitVolunteer(ctx context.Context, volunteer sheetsapi.VolunteerSubmission) (sheetsapi.SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "SubmitVolunteer")
	defer span.End()

	if strings.TrimSpace(volunteer.Name) == "" {
		return sheetsapi.SubmitResult{}, fmt.Errorf("please fill in your name")
	}
	if strings.TrimSpace(volunteer.Email) == "" {
		return sheetsapi.SubmitResult{}, fmt.Errorf("please fill in your email")
	}

	result, err := s.client.SubmitVolunteer(ctx, volunteer)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "volunteer submission failed")
		return sheetsapi.SubmitResult{}, err
	}
	return result, nil
}

// RequestHelp asks an organizer to reach out and place the order over
// the phone, for customers who cannot get through checkout themselves.
func (s *Service) RequestHelp(ctx context.Context, contact sheetsapi.HelperContact) (sheetsapi.SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "RequestHelp")
	defer span.End()

	if strings.TrimSpace(contact.Name) == "" {
		return sheetsapi.SubmitResult{}, fmt.Errorf("please fill in your name")
	}
	if strings.TrimSpace(contact.Phone) == "" && strings.TrimSpace(contact.Email) == "" {
		return sheetsapi.SubmitResult{}, fmt.Errorf("please provide a phone number or email to reach you at")
	}

	result, err := s.client.SubmitHelper(ctx, contact)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "helper request failed")
		return sheetsapi.SubmitResult{}, err
	}
	return result, nil
}
