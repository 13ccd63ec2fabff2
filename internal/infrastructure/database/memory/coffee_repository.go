package memory

import (
	"context"
	"sort"
	"sync"

	"cafe-api/internal/domain/entity"
	domainErrors "cafe-api/internal/domain/errors"
)

// CoffeeRepository keeps coffees and sold counters in process memory.
// It enforces the same constraints as the SQL schema: one counter per coffee,
// and a coffee cannot be deleted while a counter references it.
// Transactions are serialized against each other but are not rolled back on error.
type CoffeeRepository struct {
	txMu sync.Mutex

	mu           sync.RWMutex
	coffees      map[int64]entity.Coffee
	sold         map[int64]entity.CoffeeSold // keyed by coffee id
	nextCoffeeID int64
	nextSoldID   int64
}

func NewCoffeeRepository() *CoffeeRepository {
	return &CoffeeRepository{
		coffees: make(map[int64]entity.Coffee),
		sold:    make(map[int64]entity.CoffeeSold),
	}
}

func (r *CoffeeRepository) FindAll(ctx context.Context) ([]*entity.Coffee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coffees := make([]*entity.Coffee, 0, len(r.coffees))
	for _, c := range r.coffees {
		c := c
		coffees = append(coffees, &c)
	}
	sort.Slice(coffees, func(i, j int) bool { return coffees[i].ID < coffees[j].ID })
	return coffees, nil
}

func (r *CoffeeRepository) FindByID(ctx context.Context, id int64) (*entity.Coffee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.coffees[id]
	if !ok {
		return nil, domainErrors.ErrCoffeeNotFound
	}
	return &c, nil
}

func (r *CoffeeRepository) Create(ctx context.Context, coffee *entity.Coffee) (*entity.Coffee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextCoffeeID++
	c := entity.Coffee{
		ID:    r.nextCoffeeID,
		Name:  coffee.Name,
		Price: coffee.Price,
	}
	r.coffees[c.ID] = c
	return &c, nil
}

func (r *CoffeeRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.coffees[id]; !ok {
		return domainErrors.ErrCoffeeNotFound
	}
	if _, ok := r.sold[id]; ok {
		return domainErrors.ErrConflict
	}
	delete(r.coffees, id)
	return nil
}

func (r *CoffeeRepository) FindSoldByCoffeeID(ctx context.Context, coffeeID int64) (*entity.CoffeeSold, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sold[coffeeID]
	if !ok {
		return nil, domainErrors.ErrCoffeeSoldNotFound
	}
	return r.withCoffee(s), nil
}

func (r *CoffeeRepository) CreateSold(ctx context.Context, coffeeID int64) (*entity.CoffeeSold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.coffees[coffeeID]; !ok {
		return nil, domainErrors.ErrCoffeeNotFound
	}
	s, ok := r.sold[coffeeID]
	if !ok {
		r.nextSoldID++
		s = entity.CoffeeSold{ID: r.nextSoldID, CoffeeID: coffeeID}
		r.sold[coffeeID] = s
	}
	return r.withCoffee(s), nil
}

func (r *CoffeeRepository) IncrementSold(ctx context.Context, coffeeID int64) (*entity.CoffeeSold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sold[coffeeID]
	if !ok {
		return nil, domainErrors.ErrCoffeeSoldNotFound
	}
	s.SoldCnt++
	r.sold[coffeeID] = s
	return r.withCoffee(s), nil
}

func (r *CoffeeRepository) DeleteSoldByCoffeeID(ctx context.Context, coffeeID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sold[coffeeID]; !ok {
		return domainErrors.ErrCoffeeSoldNotFound
	}
	delete(r.sold, coffeeID)
	return nil
}

func (r *CoffeeRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (r *CoffeeRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// withCoffee copies s and attaches its coffee. Callers hold r.mu.
func (r *CoffeeRepository) withCoffee(s entity.CoffeeSold) *entity.CoffeeSold {
	if c, ok := r.coffees[s.CoffeeID]; ok {
		s.Coffee = &c
	}
	return &s
}
