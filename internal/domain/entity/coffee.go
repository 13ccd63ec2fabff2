package entity

import "fmt"

// Coffee is a catalog entry. ID is assigned by the store on insert.
type Coffee struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// NewCoffee builds a coffee that has not been persisted yet.
// No validation is applied: name and price are stored as given.
func NewCoffee(name string, price float64) *Coffee {
	return &Coffee{
		Name:  name,
		Price: price,
	}
}

func (c *Coffee) String() string {
	return fmt.Sprintf("Coffee[id=%d, name=%s, price=%v]", c.ID, c.Name, c.Price)
}
