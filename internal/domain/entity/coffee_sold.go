package entity

// CoffeeSold is the sales counter of a single coffee.
// There is at most one CoffeeSold per coffee and it never outlives it.
type CoffeeSold struct {
	ID       int64   `json:"id"`
	CoffeeID int64   `json:"-"`
	Coffee   *Coffee `json:"coffee"`
	SoldCnt  int64   `json:"soldCnt"`
}

// NewCoffeeSold returns an unsaved counter starting at zero.
func NewCoffeeSold(coffee *Coffee) *CoffeeSold {
	return &CoffeeSold{
		CoffeeID: coffee.ID,
		Coffee:   coffee,
		SoldCnt:  0,
	}
}
