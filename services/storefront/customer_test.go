package storefront

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"mumsale-backend/lib/sheetsapi"

	"github.com/stretchr/testify/require"
)

func TestAutoSaveDaemon(t *testing.T) {
	service, _, sqlite, cleanup := setupStore(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service.StartAutoSaveDaemon(ctx, time.Millisecond*10)

	// an edit that has not gone through SetCustomerInfo yet, like a
	// form field being typed into
	service.mu.Lock()
	service.customer.FirstName = "Zed"
	service.mu.Unlock()

	require.Eventually(t, func() bool {
		restored, err := NewService(context.Background(), sqlite, service.client)
		if err != nil {
			return false
		}
		return restored.CustomerInfo().FirstName == "Zed"
	}, time.Second*2, time.Millisecond*20)
}

func TestRequestHelp(t *testing.T) {
	service, backend, _, cleanup := setupStore(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := service.RequestHelp(ctx, sheetsapi.HelperContact{Name: "Carol"})
	require.ErrorContains(t, err, "phone number or email")

	result, err := service.RequestHelp(ctx, sheetsapi.HelperContact{
		Name:  "Carol",
		Phone: "555-987-6543",
	})
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, result.Success)
	require.EqualValues(t, 1, atomic.LoadInt64(&backend.helperHits))
}
