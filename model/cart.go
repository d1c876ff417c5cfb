// model/cart.go
package model

// Money is an amount in whole rupees.
type Money int64

// ItemKind distinguishes individual tests from bundled packages.
type ItemKind string

const (
	ItemKindTest    ItemKind = "test"
	ItemKindPackage ItemKind = "package"
)

type CartItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Kind        ItemKind `json:"kind"`
	Price       Money    `json:"price"`
	ListPrice   Money    `json:"list_price"`
	Description string   `json:"description,omitempty"`
}
