package models

// CartItem is one line of a user's cart. ProductID is unique within a
// cart; Quantity never drops below 1 while the item is present.
type CartItem struct {
	ProductID string `json:"product_id"`
	Filename  string `json:"filename"`
	Quantity  int    `json:"quantity"`
}
