package storefront

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"mumsale-backend/lib/sheetsapi"
	"mumsale-backend/lib/telemetry"
	"mumsale-backend/services/storefront/db"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

const catalogBody = `{
	"products": [
		{"id": "MUM1", "title": "Garden Mum", "price": 12, "description": "8 inch pot", "available": true},
		{"id": "MUM2", "title": "Giant Mum", "price": "18.50", "available": "TRUE"},
		{"id": "APPLE", "title": "Apple Basket", "price": 25, "available": "true"},
		{"id": "TRICOLOR", "title": "Tricolor Planter", "price": 30, "available": true},
		{"id": "MUM3", "title": "Sold Out Mum", "price": 12, "available": "FALSE"}
	]
}`

type fakeBackend struct {
	orderHits     int64
	volunteerHits int64
	helperHits    int64
	failOrders    atomic.Bool
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("path") {
	case "products":
		w.Write([]byte(catalogBody))
	case "settings":
		w.Write([]byte(`{"settings": {"welcome_title": "Pack 182 Mum Sale"}}`))
	case "order":
		atomic.AddInt64(&b.orderHits, 1)
		if b.failOrders.Load() {
			w.Write([]byte(`{"success": false, "message": "the sheet is on fire"}`))
			return
		}
		w.Write([]byte(`{"success": true, "orderId": "ORD-042"}`))
	case "volunteer":
		atomic.AddInt64(&b.volunteerHits, 1)
		w.Write([]byte(`{"success": true, "message": "thank you"}`))
	case "submitHelper":
		atomic.AddInt64(&b.helperHits, 1)
		w.Write([]byte(`{"success": true}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func setupStore(t testing.TB) (*Service, *fakeBackend, *sql.DB, func()) {
	cleanup := telemetry.SetupForTesting("test:services/storefront")

	backend := &fakeBackend{}
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	sqlite, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	_, err = sqlite.Exec(db.Schema)
	if err != nil {
		t.Fatal(err)
	}

	client := sheetsapi.NewClient(sheetsapi.Config{
		BaseUrl:    server.URL,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	service, err := NewService(ctx, sqlite, client)
	if err != nil {
		t.Fatal(err)
	}
	err = service.LoadCatalog(ctx)
	if err != nil {
		t.Fatal(err)
	}

	return service, backend, sqlite, cleanup
}

func sortedLines() cmp.Option {
	return cmpopts.SortSlices(func(a, b Line) bool {
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		return a.Color < b.Color
	})
}

func TestLineUniquenessAndClamping(t *testing.T) {
	service, _, _, cleanup := setupStore(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	{
		applied, err := service.SetLineQuantity(ctx, "MUM1", "Red", 2)
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 2, applied)
	}
	{
		// same (product, color) updates in place, never duplicates
		applied, err := service.SetLineQuantity(ctx, "MUM1", "Red", 5)
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 5, applied)
		require.Len(t, service.Lines(), 1)
		require.Equal(t, 5, service.Lines()[0].Quantity)
	}
	{
		// a different color is its own line
		_, err := service.SetLineQuantity(ctx, "MUM1", "Yellow", 1)
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, service.Lines(), 2)
	}
	{
		applied, err := service.SetLineQuantity(ctx, "MUM1", "Red", 500)
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 99, applied)
	}
	{
		applied, err := service.SetLineQuantity(ctx, "MUM1", "Red", -3)
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 0, applied)
		require.Len(t, service.Lines(), 1)
	}

	for _, l := range service.Lines() {
		require.GreaterOrEqual(t, l.Quantity, 1)
		require.LessOrEqual(t, l.Quantity, 99)
	}
}

func TestSetQuantityZeroIdempotent(t *testing.T) {
	service, _, _, cleanup := setupStore(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := service.SetLineQuantity(ctx, "MUM1", "Red", 3)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		applied, err := service.SetLineQuantity(ctx, "MUM1", "Red", 0)
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 0, applied)
	}
	require.Empty(t, service.Lines())
}

func TestVariantRules(t *testing.T) {
	service, _, _, cleanup := setupStore(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	require.Equal(t, []string{"Yellow", "Orange", "Red", "Purple", "White"}, ColorsFor("MUM1"))
	require.Equal(t, []string{"Yellow", "Orange", "Red"}, ColorsFor("APPLE"))
	require.Equal(t, []string{"Tricolor"}, ColorsFor("TRICOLOR"))

	{
		_, err := service.SetLineQuantity(ctx, "APPLE", "Purple", 1)
		require.Error(t, err)
	}
	{
		_, err := service.SetLineQuantity(ctx, "TRICOLOR", "Red", 1)
		require.Error(t, err)
	}
	{
		_, err := service.SetLineQuantity(ctx, "TRICOLOR", "Tricolor", 1)
		if err != nil {
			t.Fatal(err)
		}
	}
	{
		_, err := service.SetLineQuantity(ctx, "NOPE", "Red", 1)
		require.Error(t, err)
	}
}

func TestAdjustLineQuantity(t *testing.T) {
	service, _, _, cleanup := setupStore(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := service.SetLineQuantity(ctx, "MUM1", "Red", 2)
	if err != nil {
		t.Fatal(err)
	}

	// the caller's displayed value wins over the store's last-known one
	applied, err := service.AdjustLineQuantity(ctx, "MUM1", "Red", 7, 1)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 8, applied)
	require.Equal(t, 8, service.Lines()[0].Quantity)

	applied, err = service.AdjustLineQuantity(ctx, "MUM1", "Red", 8, -8)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 0, applied)
	require.Empty(t, service.Lines())
}

func TestDecrementLine(t *testing.T) {
	service, _, _, cleanup := setupStore(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := service.SetLineQuantity(ctx, "MUM1", "Red", 2)
	if err != nil {
		t.Fatal(err)
	}

	err = service.DecrementLine(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 1, service.Lines()[0].Quantity)

	// quantity 1 is a no-op, removal is explicit
	err = service.DecrementLine(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, service.Lines(), 1)
	require.Equal(t, 1, service.Lines()[0].Quantity)

	err = service.RemoveLine(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, service.Lines())

	require.Error(t, service.RemoveLine(ctx, 0))
	require.Error(t, service.DecrementLine(ctx, -1))
}

func TestDonationLines(t *testing.T) {
	service, _, _, cleanup := setupStore(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err := service.AddDonation(ctx, "Donation to the Pack", 20)
	if err != nil {
		t.Fatal(err)
	}
	require.Error(t, service.AddDonation(ctx, "Donation", -5))

	lines := service.Lines()
	require.Len(t, lines, 1)
	require.True(t, lines[0].IsDonation)
	require.Equal(t, 1, lines[0].Quantity)
	require.Equal(t, "", lines[0].Color)
	require.Equal(t, 20.0, service.Total())

	// donations never collapse into product lines
	_, err = service.SetLineQuantity(ctx, "MUM1", "Red", 1)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, service.Lines(), 2)

	// quantity stays pinned at 1
	err = service.DecrementLine(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 1, service.Lines()[0].Quantity)
}

func TestTotalRecomputedFromScratch(t *testing.T) {
	service, _, sqlite, cleanup := setupStore(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := service.SetLineQuantity(ctx, "MUM1", "Red", 2)
	if err != nil {
		t.Fatal(err)
	}
	_, err = service.SetLineQuantity(ctx, "MUM2", "White", 1)
	if err != nil {
		t.Fatal(err)
	}
	err = service.AddDonation(ctx, "Donation", 5.50)
	if err != nil {
		t.Fatal(err)
	}

	require.InDelta(t, 48.0, service.Total(), 1e-9)
	require.EqualValues(t, 4800, service.TotalCents())

	// round trip through persistence must reproduce the same total
	restored, err := NewService(ctx, sqlite, service.client)
	if err != nil {
		t.Fatal(err)
	}
	require.InDelta(t, service.Total(), restored.Total(), 1e-9)
	require.Equal(t, service.TotalCents(), restored.TotalCents())
}

func TestPersistRestoreRoundTrip(t *testing.T) {
	service, _, sqlite, cleanup := setupStore(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := service.SetLineQuantity(ctx, "MUM1", "Red", 2)
	if err != nil {
		t.Fatal(err)
	}
	_, err = service.SetLineQuantity(ctx, "APPLE", "Orange", 1)
	if err != nil {
		t.Fatal(err)
	}
	err = service.AddDonation(ctx, "Donation", 10)
	if err != nil {
		t.Fatal(err)
	}

	// simulated restart: a fresh service over the same database
	restored, err := NewService(ctx, sqlite, service.client)
	if err != nil {
		t.Fatal(err)
	}

	diff := cmp.Diff(service.Lines(), restored.Lines(), sortedLines())
	require.Empty(t, diff)
}

func TestEndToEndQuantityScenario(t *testing.T) {
	service, _, _, cleanup := setupStore(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := service.SetLineQuantity(ctx, "MUM1", "Red", 2)
	if err != nil {
		t.Fatal(err)
	}
	_, err = service.SetLineQuantity(ctx, "MUM1", "Yellow", 1)
	if err != nil {
		t.Fatal(err)
	}
	require.InDelta(t, 36.0, service.Total(), 1e-9)

	_, err = service.SetLineQuantity(ctx, "MUM1", "Red", 0)
	if err != nil {
		t.Fatal(err)
	}
	require.InDelta(t, 12.0, service.Total(), 1e-9)
	require.Len(t, service.Lines(), 1)
}

func TestProductsFiltersUnavailable(t *testing.T) {
	service, _, _, cleanup := setupStore(t)
	defer cleanup()

	products := service.Products()
	require.Len(t, products, 4)
	for _, p := range products {
		require.NotEqual(t, "MUM3", p.ID)
	}
}

func TestCustomerInfoLifecycle(t *testing.T) {
	service, _, sqlite, cleanup := setupStore(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	info := CustomerInfo{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
		Phone:     "555-123-4567",
		Address:   sheetsapi.Address{Street: "1 Main St", City: "Three Bridges", State: "NJ", Zip: "08887"},
	}
	err := service.SetCustomerInfo(ctx, info)
	if err != nil {
		t.Fatal(err)
	}

	// prefill survives a restart, independent of the cart
	restored, err := NewService(ctx, sqlite, service.client)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, info, restored.CustomerInfo())
}
