package models

// Instrument is a marketplace listing owned by SellerPrincipal.
// BuyerPrincipal is recorded as supplied but never validated.
type Instrument struct {
	ID              uint64   `json:"id"`
	SellerPrincipal string   `json:"seller_principal"`
	BuyerPrincipal  string   `json:"buyer_principal"`
	Username        string   `json:"username"`
	Name            string   `json:"name"`
	Location        string   `json:"location"`
	Product         string   `json:"product"`
	Comment         string   `json:"comment"`
	Price           string   `json:"price"`
	Photos          [][]byte `json:"photos"`
}
