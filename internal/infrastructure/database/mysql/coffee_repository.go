package mysql

import (
	"context"
	"database/sql"
	"errors"

	"cafe-api/internal/domain/entity"
	domainErrors "cafe-api/internal/domain/errors"
	dbcommon "cafe-api/internal/infrastructure/database/common"
)

const (
	queryFindAllCoffees = `SELECT id, name, price FROM coffees ORDER BY id`
	queryFindCoffee     = `SELECT id, name, price FROM coffees WHERE id = ?`
	queryInsertCoffee   = `INSERT INTO coffees (name, price) VALUES (?, ?)`
	queryDeleteCoffee   = `DELETE FROM coffees WHERE id = ?`

	queryFindSold = `
SELECT cs.id, cs.coffee_id, cs.sold_cnt, c.id, c.name, c.price
FROM coffee_sold cs
JOIN coffees c ON c.id = cs.coffee_id
WHERE cs.coffee_id = ?
LIMIT 1`
	// a locking read sees the latest committed row, not the transaction snapshot
	queryFindSoldForShare = queryFindSold + ` LOCK IN SHARE MODE`
	// a duplicate coffee_id leaves the existing counter untouched
	queryInsertSold    = `INSERT INTO coffee_sold (coffee_id, sold_cnt) VALUES (?, 0) ON DUPLICATE KEY UPDATE id = id`
	queryIncrementSold = `UPDATE coffee_sold SET sold_cnt = sold_cnt + 1 WHERE coffee_id = ?`
	queryDeleteSold    = `DELETE FROM coffee_sold WHERE coffee_id = ?`
)

// CoffeeRepository is the MySQL implementation of usecase.CoffeeRepository
type CoffeeRepository struct {
	db *sql.DB
}

func NewCoffeeRepository(db *sql.DB) *CoffeeRepository {
	return &CoffeeRepository{db: db}
}

func (r *CoffeeRepository) FindAll(ctx context.Context) ([]*entity.Coffee, error) {
	rows, err := dbcommon.GetRunner(ctx, r.db).QueryContext(ctx, queryFindAllCoffees)
	if err != nil {
		return nil, dbcommon.WrapDBError(err, "find all coffees")
	}
	defer rows.Close()

	coffees := make([]*entity.Coffee, 0)
	for rows.Next() {
		coffee, err := scanCoffee(rows)
		if err != nil {
			return nil, dbcommon.WrapDBError(err, "scan coffee")
		}
		coffees = append(coffees, coffee)
	}
	if err := rows.Err(); err != nil {
		return nil, dbcommon.WrapDBError(err, "iterate coffees")
	}

	return coffees, nil
}

func (r *CoffeeRepository) FindByID(ctx context.Context, id int64) (*entity.Coffee, error) {
	row := dbcommon.GetRunner(ctx, r.db).QueryRowContext(ctx, queryFindCoffee, id)
	coffee, err := scanCoffee(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainErrors.ErrCoffeeNotFound
		}
		return nil, dbcommon.WrapDBError(err, "find coffee")
	}
	return coffee, nil
}

func (r *CoffeeRepository) Create(ctx context.Context, coffee *entity.Coffee) (*entity.Coffee, error) {
	res, err := dbcommon.GetRunner(ctx, r.db).ExecContext(ctx, queryInsertCoffee, coffee.Name, coffee.Price)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, domainErrors.ErrConflict
		}
		return nil, dbcommon.WrapDBError(err, "insert coffee")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, dbcommon.WrapDBError(err, "read coffee id")
	}

	return &entity.Coffee{
		ID:    id,
		Name:  coffee.Name,
		Price: coffee.Price,
	}, nil
}

func (r *CoffeeRepository) Delete(ctx context.Context, id int64) error {
	res, err := dbcommon.GetRunner(ctx, r.db).ExecContext(ctx, queryDeleteCoffee, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domainErrors.ErrConflict
		}
		return dbcommon.WrapDBError(err, "delete coffee")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domainErrors.ErrCoffeeNotFound
	}
	return nil
}

func (r *CoffeeRepository) FindSoldByCoffeeID(ctx context.Context, coffeeID int64) (*entity.CoffeeSold, error) {
	return r.findSold(ctx, queryFindSold, coffeeID)
}

func (r *CoffeeRepository) findSold(ctx context.Context, query string, coffeeID int64) (*entity.CoffeeSold, error) {
	row := dbcommon.GetRunner(ctx, r.db).QueryRowContext(ctx, query, coffeeID)
	sold, err := scanCoffeeSold(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainErrors.ErrCoffeeSoldNotFound
		}
		return nil, dbcommon.WrapDBError(err, "find coffee sold")
	}
	return sold, nil
}

func (r *CoffeeRepository) CreateSold(ctx context.Context, coffeeID int64) (*entity.CoffeeSold, error) {
	if _, err := dbcommon.GetRunner(ctx, r.db).ExecContext(ctx, queryInsertSold, coffeeID); err != nil {
		if isForeignKeyViolation(err) {
			return nil, domainErrors.ErrCoffeeNotFound
		}
		return nil, dbcommon.WrapDBError(err, "insert coffee sold")
	}
	return r.findSold(ctx, queryFindSoldForShare, coffeeID)
}

func (r *CoffeeRepository) IncrementSold(ctx context.Context, coffeeID int64) (*entity.CoffeeSold, error) {
	res, err := dbcommon.GetRunner(ctx, r.db).ExecContext(ctx, queryIncrementSold, coffeeID)
	if err != nil {
		return nil, dbcommon.WrapDBError(err, "increment coffee sold")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domainErrors.ErrCoffeeSoldNotFound
	}
	return r.findSold(ctx, queryFindSoldForShare, coffeeID)
}

func (r *CoffeeRepository) DeleteSoldByCoffeeID(ctx context.Context, coffeeID int64) error {
	res, err := dbcommon.GetRunner(ctx, r.db).ExecContext(ctx, queryDeleteSold, coffeeID)
	if err != nil {
		return dbcommon.WrapDBError(err, "delete coffee sold")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domainErrors.ErrCoffeeSoldNotFound
	}
	return nil
}

func (r *CoffeeRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return dbcommon.WithTx(ctx, r.db, fn)
}

func (r *CoffeeRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return dbcommon.WrapDBError(err, "ping")
	}
	return nil
}

func scanCoffee(s dbcommon.RowScanner) (*entity.Coffee, error) {
	var c entity.Coffee
	if err := s.Scan(&c.ID, &c.Name, &c.Price); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCoffeeSold(s dbcommon.RowScanner) (*entity.CoffeeSold, error) {
	var (
		cs entity.CoffeeSold
		c  entity.Coffee
	)
	if err := s.Scan(&cs.ID, &cs.CoffeeID, &cs.SoldCnt, &c.ID, &c.Name, &c.Price); err != nil {
		return nil, err
	}
	cs.Coffee = &c
	return &cs, nil
}
