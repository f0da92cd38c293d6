package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"restaurant-frontend/internal/domain"
	"restaurant-frontend/internal/repository/slot"
	"restaurant-frontend/internal/service/cart"
)

type itemSeed struct {
	ID          string
	Name        string
	Description string
	Price       string
	Category    string
	Quantity    int
}

var demoItems = []itemSeed{
	{ID: "demo-burger", Name: "Demo Burger", Description: "Beef patty, cheddar, pickles", Price: "9.50", Category: "mains", Quantity: 2},
	{ID: "demo-fries", Name: "Demo Fries", Description: "Hand cut, sea salt", Price: "3.20", Category: "sides", Quantity: 1},
	{ID: "demo-lemonade", Name: "Demo Lemonade", Description: "Freshly squeezed", Price: "2.80", Category: "drinks", Quantity: 1},
}

// Apply gives profileID a demo cart for manual testing, replacing whatever
// cart it had. A non-empty credential is stored as the profile's bearer token
// so the next request rehydrates a session. Re-running yields the same state.
func Apply(ctx context.Context, repo slot.Repository, profileID, credential string) error {
	store := cart.Load(ctx, repo, profileID, nil)
	store.Clear(ctx)
	for _, it := range demoItems {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return fmt.Errorf("demo item %s: %w", it.ID, err)
		}
		store.AddItem(ctx, domain.MenuItem{
			ID:          domain.ID(it.ID),
			Name:        it.Name,
			Description: it.Description,
			Price:       price,
			Category:    it.Category,
		})
		store.SetQuantity(ctx, it.ID, it.Quantity)
	}

	// The store logs write failures instead of returning them; read back to
	// make sure the cart actually landed.
	if _, err := repo.Get(ctx, profileID, slot.Cart); err != nil {
		return fmt.Errorf("verify cart slot: %w", err)
	}

	if credential != "" {
		if err := repo.Put(ctx, profileID, slot.Credential, credential); err != nil {
			return fmt.Errorf("store credential: %w", err)
		}
	}
	return nil
}
