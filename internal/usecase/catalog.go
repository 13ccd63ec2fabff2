package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"cafe-api/internal/domain/entity"
	domainErrors "cafe-api/internal/domain/errors"
)

// CoffeeWithSoldCount is one row of the catalog view. It is never persisted.
type CoffeeWithSoldCount struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	SoldCount int64   `json:"soldCount"`
}

func NewCoffeeWithSoldCount(coffee *entity.Coffee, soldCount int64) CoffeeWithSoldCount {
	return CoffeeWithSoldCount{
		ID:        coffee.ID,
		Name:      coffee.Name,
		Price:     coffee.Price,
		SoldCount: soldCount,
	}
}

// BuildCatalogView joins every coffee with its sold count, keeping the listing order.
// Sold counters are fetched one coffee at a time, creating missing ones on the way.
func (u *cafeUsecase) BuildCatalogView(ctx context.Context) ([]CoffeeWithSoldCount, error) {
	coffees, err := u.ListAllCoffees(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]CoffeeWithSoldCount, 0, len(coffees))
	for _, coffee := range coffees {
		var soldCount int64

		sold, err := u.FindCoffeeSoldByCoffeeID(ctx, coffee.ID)
		switch {
		case err == nil:
			soldCount = sold.SoldCnt
		case errors.Is(err, domainErrors.ErrCoffeeNotFound):
			// deleted after the listing was read
			u.logger.Debug("Coffee disappeared while building catalog", zap.Int64("coffee_id", coffee.ID))
		default:
			return nil, fmt.Errorf("failed to build catalog view: %w", err)
		}

		views = append(views, NewCoffeeWithSoldCount(coffee, soldCount))
	}

	return views, nil
}
