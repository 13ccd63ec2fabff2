package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"cafe-api/internal/domain/entity"
	domainErrors "cafe-api/internal/domain/errors"
)

type CafeUsecase interface {
	ListAllCoffees(ctx context.Context) ([]*entity.Coffee, error)
	CreateCoffee(ctx context.Context, input CreateCoffeeInput) (*entity.Coffee, error)
	FindCoffeeByID(ctx context.Context, id int64) (*entity.Coffee, error)
	RemoveCoffeeByID(ctx context.Context, id int64) error
	FindCoffeeSoldByCoffeeID(ctx context.Context, coffeeID int64) (*entity.CoffeeSold, error)
	IncrementSoldCount(ctx context.Context, coffeeID int64) (*entity.CoffeeSold, error)
	BuildCatalogView(ctx context.Context) ([]CoffeeWithSoldCount, error)
	CheckHealth(ctx context.Context) error
}

// CreateCoffeeInput is the body of POST /coffees. An id sent by the client is ignored.
type CreateCoffeeInput struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type cafeUsecase struct {
	coffeeRepo CoffeeRepository
	logger     *zap.Logger
}

func NewCafeUsecase(coffeeRepo CoffeeRepository, logger *zap.Logger) CafeUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cafeUsecase{
		coffeeRepo: coffeeRepo,
		logger:     logger,
	}
}

func (u *cafeUsecase) ListAllCoffees(ctx context.Context) ([]*entity.Coffee, error) {
	u.logger.Info("Finding all coffees")

	coffees, err := u.coffeeRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve coffees: %w", err)
	}

	return coffees, nil
}

func (u *cafeUsecase) CreateCoffee(ctx context.Context, input CreateCoffeeInput) (*entity.Coffee, error) {
	coffee := entity.NewCoffee(input.Name, input.Price)
	u.logger.Info("Persisting the new coffee", zap.Stringer("coffee", coffee))

	created, err := u.coffeeRepo.Create(ctx, coffee)
	if err != nil {
		return nil, fmt.Errorf("failed to create coffee: %w", err)
	}

	return created, nil
}

func (u *cafeUsecase) FindCoffeeByID(ctx context.Context, id int64) (*entity.Coffee, error) {
	u.logger.Info("Finding the coffee", zap.Int64("coffee_id", id))

	coffee, err := u.coffeeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrCoffeeNotFound) {
			return nil, domainErrors.ErrCoffeeNotFound
		}
		return nil, fmt.Errorf("failed to retrieve coffee: %w", err)
	}

	return coffee, nil
}

// RemoveCoffeeByID deletes the sold counter first and then the coffee, in one transaction.
// Removing a coffee that does not exist is a no-op.
func (u *cafeUsecase) RemoveCoffeeByID(ctx context.Context, id int64) error {
	u.logger.Info("Removing a coffee", zap.Int64("coffee_id", id))

	return u.coffeeRepo.WithTx(ctx, func(ctx context.Context) error {
		err := u.coffeeRepo.DeleteSoldByCoffeeID(ctx, id)
		switch {
		case err == nil:
			u.logger.Info("Removed coffee sold record", zap.Int64("coffee_id", id))
		case errors.Is(err, domainErrors.ErrCoffeeSoldNotFound):
		default:
			return fmt.Errorf("failed to delete coffee sold: %w", err)
		}

		if _, err := u.coffeeRepo.FindByID(ctx, id); err != nil {
			if errors.Is(err, domainErrors.ErrCoffeeNotFound) {
				u.logger.Warn("Coffee not found", zap.Int64("coffee_id", id))
				return nil
			}
			return fmt.Errorf("failed to check coffee existence: %w", err)
		}

		if err := u.coffeeRepo.Delete(ctx, id); err != nil {
			if errors.Is(err, domainErrors.ErrCoffeeNotFound) {
				u.logger.Warn("Coffee not found", zap.Int64("coffee_id", id))
				return nil
			}
			return fmt.Errorf("failed to delete coffee: %w", err)
		}

		u.logger.Info("Successfully removed coffee", zap.Int64("coffee_id", id))
		return nil
	})
}

// FindCoffeeSoldByCoffeeID returns the sold counter of the coffee, creating it at zero
// on first access. ErrCoffeeNotFound is returned when the coffee itself does not exist.
func (u *cafeUsecase) FindCoffeeSoldByCoffeeID(ctx context.Context, coffeeID int64) (*entity.CoffeeSold, error) {
	u.logger.Info("Finding coffee sold count", zap.Int64("coffee_id", coffeeID))

	var sold *entity.CoffeeSold
	err := u.coffeeRepo.WithTx(ctx, func(ctx context.Context) error {
		var err error
		sold, err = u.findOrCreateSold(ctx, coffeeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return sold, nil
}

func (u *cafeUsecase) IncrementSoldCount(ctx context.Context, coffeeID int64) (*entity.CoffeeSold, error) {
	u.logger.Info("Incrementing sold count", zap.Int64("coffee_id", coffeeID))

	var sold *entity.CoffeeSold
	err := u.coffeeRepo.WithTx(ctx, func(ctx context.Context) error {
		if _, err := u.findOrCreateSold(ctx, coffeeID); err != nil {
			return err
		}

		var err error
		sold, err = u.coffeeRepo.IncrementSold(ctx, coffeeID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrCoffeeSoldNotFound) {
				return domainErrors.ErrCoffeeNotFound
			}
			return fmt.Errorf("failed to increment sold count: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("Incremented sold count",
		zap.Int64("coffee_id", coffeeID),
		zap.Int64("sold_cnt", sold.SoldCnt),
	)
	return sold, nil
}

func (u *cafeUsecase) CheckHealth(ctx context.Context) error {
	if err := u.coffeeRepo.Ping(ctx); err != nil {
		return fmt.Errorf("store is not reachable: %w", err)
	}
	return nil
}

// findOrCreateSold must run inside a transaction started by the caller.
func (u *cafeUsecase) findOrCreateSold(ctx context.Context, coffeeID int64) (*entity.CoffeeSold, error) {
	sold, err := u.coffeeRepo.FindSoldByCoffeeID(ctx, coffeeID)
	if err == nil {
		return sold, nil
	}
	if !errors.Is(err, domainErrors.ErrCoffeeSoldNotFound) {
		return nil, fmt.Errorf("failed to retrieve coffee sold: %w", err)
	}

	if _, err := u.coffeeRepo.FindByID(ctx, coffeeID); err != nil {
		if errors.Is(err, domainErrors.ErrCoffeeNotFound) {
			return nil, domainErrors.ErrCoffeeNotFound
		}
		return nil, fmt.Errorf("failed to retrieve coffee: %w", err)
	}

	sold, err = u.coffeeRepo.CreateSold(ctx, coffeeID)
	if err != nil {
		// the coffee was deleted between the lookup and the insert
		if errors.Is(err, domainErrors.ErrCoffeeNotFound) {
			return nil, domainErrors.ErrCoffeeNotFound
		}
		// the coffee exists, so a counter missing after the upsert is a store failure
		if errors.Is(err, domainErrors.ErrCoffeeSoldNotFound) {
			return nil, fmt.Errorf("%w: coffee sold %d missing after create", domainErrors.ErrDatabaseError, coffeeID)
		}
		return nil, fmt.Errorf("failed to create coffee sold: %w", err)
	}

	u.logger.Info("Created new coffee sold entry with count 0", zap.Int64("coffee_id", coffeeID))
	return sold, nil
}
