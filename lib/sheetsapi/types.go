package sheetsapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Product is a single catalog row. Availability and price are
// normalized here at the ingestion boundary; the rest of the codebase
// only ever sees real bools and floats.
type Product struct {
	ID          string
	Title       string
	Price       float64
	Description string
	ImageURL    string
	Available   bool
}

type productWire struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Price       flexFloat  `json:"price"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url"`
	Available   truthyBool `json:"available"`
}

func (w productWire) normalize() Product {
	return Product{
		ID:          w.ID,
		Title:       w.Title,
		Price:       float64(w.Price),
		Description: w.Description,
		ImageURL:    w.ImageURL,
		Available:   bool(w.Available),
	}
}

// the sheet hands back `true`, `"TRUE"` or `"true"` depending on how
// the cell was last edited
type truthyBool bool

func (b *truthyBool) UnmarshalJSON(data []byte) error {
	var value any
	err := json.Unmarshal(data, &value)
	if err != nil {
		return err
	}
	switch v := value.(type) {
	case bool:
		*b = truthyBool(v)
	case string:
		*b = truthyBool(strings.EqualFold(v, "true"))
	case nil:
		*b = false
	default:
		return fmt.Errorf("cannot interpret %q as a boolean", string(data))
	}
	return nil
}

// prices come back as numbers or numeric strings
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var value any
	err := json.Unmarshal(data, &value)
	if err != nil {
		return err
	}
	switch v := value.(type) {
	case float64:
		*f = flexFloat(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("cannot interpret %q as a price", v)
		}
		*f = flexFloat(parsed)
	case nil:
		*f = 0
	default:
		return fmt.Errorf("cannot interpret %q as a price", string(data))
	}
	return nil
}

type SettingsMap map[string]string

// DefaultSettings is the hardcoded fallback used whenever the settings
// fetch fails, so the storefront stays minimally functional offline.
func DefaultSettings() SettingsMap {
	return SettingsMap{
		"welcome_title":        "Cub Scouts Mum Sale",
		"welcome_message":      "Support our pack by purchasing beautiful fall mums!",
		"instructions":         "Select your mums, complete the order form, and submit your order.",
		"zelle_email":          "threebridgespack182@gmail.com",
		"zelle_qr_url":         "https://api.qrserver.com/v1/create-qr-code/?size=300x300&data=ZELLE:threebridgespack182@gmail.com",
		"venmo_handle":         "@CubScouts",
		"venmo_qr_url":         "",
		"payment_instructions": "Please include your Order ID in the payment description.",
		"pickup_location":      "School Parking Lot",
		"pickup_date":          "Saturday, 9am-2pm",
	}
}

// Address is the structured customer address.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// OrderLine is one cart line as it appears in the submission payload.
// Title and Price are the values captured when the line was created,
// not live references into the catalog.
type OrderLine struct {
	ID         string  `json:"id"`
	Color      string  `json:"color,omitempty"`
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	IsDonation bool    `json:"isDonation,omitempty"`
}

// OrderSubmission is the write-once payload assembled at checkout.
type OrderSubmission struct {
	FirstName          string      `json:"firstName"`
	LastName           string      `json:"lastName"`
	Email              string      `json:"email"`
	Phone              string      `json:"phone"`
	Address            Address     `json:"address"`
	Products           []OrderLine `json:"products"`
	TotalPrice         float64     `json:"totalPrice"`
	Comments           string      `json:"comments"`
	PaymentMethod      string      `json:"paymentMethod"`
	DonationOnly       bool        `json:"donationOnly"`
	ThirdPartyDonation bool        `json:"thirdPartyDonation"`
}

// VolunteerSubmission carries no cart or payment data at all.
type VolunteerSubmission struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Availability string `json:"availability"`
	Comments     string `json:"comments"`
}

type HelperContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// SubmitResult is the response envelope shared by all write endpoints.
type SubmitResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Message string `json:"message"`
	Error   string `json:"error"`
}
