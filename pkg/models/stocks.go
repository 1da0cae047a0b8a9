package models

// Stock is a quoted instrument: symbol, last price, and price change.
type Stock struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Delta  float64 `json:"delta"`
}

// PurchaseStatus tracks the lifecycle of a purchase ticket.
type PurchaseStatus string

const (
	// PurchaseRequiresAction marks a ticket awaiting user confirmation.
	PurchaseRequiresAction PurchaseStatus = "requires_action"
	// PurchaseCompleted marks a confirmed, executed ticket.
	PurchaseCompleted PurchaseStatus = "completed"
)

// Purchase is the payload of a show_stock_purchase result: the ticket shown
// to the user and later patched in place when the purchase is confirmed.
// Fractional share quantities are valid and preserved as given.
type Purchase struct {
	Symbol         string         `json:"symbol"`
	Price          float64        `json:"price"`
	NumberOfShares float64        `json:"numberOfShares"`
	Status         PurchaseStatus `json:"status,omitempty"`
}

// Total returns the cost of the ticket.
func (p Purchase) Total() float64 {
	return p.Price * p.NumberOfShares
}

// Event is a dated market event headline.
type Event struct {
	Date        string `json:"date"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
}
