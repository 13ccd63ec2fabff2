package usecase

import (
	"context"

	"cafe-api/internal/domain/entity"
)

// CoffeeRepository defines the store-level operations on coffees and their sold counters.
// Implementations report missing rows with the domain not-found errors.
type CoffeeRepository interface {
	// FindAll retrieves all coffees ordered by id
	FindAll(ctx context.Context) ([]*entity.Coffee, error)

	// FindByID retrieves a coffee by ID
	FindByID(ctx context.Context, id int64) (*entity.Coffee, error)

	// Create inserts a coffee and returns it with the generated ID
	Create(ctx context.Context, coffee *entity.Coffee) (*entity.Coffee, error)

	// Delete deletes a coffee by ID
	Delete(ctx context.Context, id int64) error

	// FindSoldByCoffeeID retrieves the sold counter referencing the coffee
	FindSoldByCoffeeID(ctx context.Context, coffeeID int64) (*entity.CoffeeSold, error)

	// CreateSold stores a zero counter for the coffee unless one already exists,
	// and returns the stored counter either way
	CreateSold(ctx context.Context, coffeeID int64) (*entity.CoffeeSold, error)

	// IncrementSold adds one to the counter in the store and returns the new state
	IncrementSold(ctx context.Context, coffeeID int64) (*entity.CoffeeSold, error)

	// DeleteSoldByCoffeeID deletes the sold counter referencing the coffee
	DeleteSoldByCoffeeID(ctx context.Context, coffeeID int64) error

	// WithTx runs fn in a single transaction. Calls made with the ctx passed to fn join it.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// Ping checks that the store is reachable
	Ping(ctx context.Context) error
}
