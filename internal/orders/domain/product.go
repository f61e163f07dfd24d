package domain

// Product is a catalog record. Stock is the only field this core mutates, and
// only ever through the catalog store's atomic conditional adjustment.
type Product struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Author string `json:"author,omitempty"`
	Price  int64  `json:"price_cents"`
	Image  string `json:"image"`
	Stock  int    `json:"stock"`
}

// CartLine is one entry of a customer's cart: the price and display fields
// were captured when the item was added and are copied verbatim onto the
// order at checkout.
type CartLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price_cents"`
	Image     string `json:"image"`
}
