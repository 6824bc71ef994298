package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"mumsale-backend/lib/sheetsapi"

	"go.opentelemetry.io/otel/codes"
)

// Color variants are data, not code: new products with unusual color
// sets only need a row here.
var defaultColors = []string{"Yellow", "Orange", "Red", "Purple", "White"}

var productColors = map[string][]string{
	// the apple basket only comes in 3 colors
	"APPLE": {"Yellow", "Orange", "Red"},
	// the tricolor planter is a single fixed mix
	"TRICOLOR": {"Tricolor"},
}

// ColorsFor returns the selectable color variants for a product.
func ColorsFor(productID string) []string {
	colors, ok := productColors[productID]
	if ok {
		return colors
	}
	return defaultColors
}

func validColor(productID, color string) bool {
	return slices.Contains(ColorsFor(productID), color)
}

// LoadCatalog fetches the product list through the client (which
// caches and retries) and keeps it as the snapshot cart lines
// denormalize from.
func (s *Service) LoadCatalog(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "LoadCatalog")
	defer span.End()

	products, err := s.client.FetchProducts(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load catalog")
		return fmt.Errorf("failed to load products, please refresh: %w", err)
	}

	s.mu.Lock()
	s.catalog = products
	s.mu.Unlock()

	slog.InfoContext(ctx, "catalog loaded", "products", len(products))
	return nil
}

// Products returns the available items of the loaded catalog in
// display order.
func (s *Service) Products() []sheetsapi.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []sheetsapi.Product
	for _, p := range s.catalog {
		if p.Available {
			out = append(out, p)
		}
	}
	return out
}

// Settings fetches the storefront settings map. Never fails: the
// client falls back to hardcoded defaults on any error.
func (s *Service) Settings(ctx context.Context) sheetsapi.SettingsMap {
	return s.client.FetchSettings(ctx)
}

// product must be called with s.mu held.
func (s *Service) product(id string) (sheetsapi.Product, bool) {
	for _, p := range s.catalog {
		if p.ID == id {
			return p, true
		}
	}
	return sheetsapi.Product{}, false
}
