package domain

// UserToken records a token-issuing entity spawned for a creator. The
// marketplace keeps only the entity address; the entity owns its own state.
type UserToken struct {
	ID      uint64  `json:"id"`
	Name    string  `json:"name"`
	Symbol  string  `json:"symbol"`
	Owner   Address `json:"owner"`
	Entity  Address `json:"entity"`
	BaseURI string  `json:"base_uri"`
}

// Copy is one minted, individually owned instance of a listed item.
type Copy struct {
	ID       uint64  `json:"id"`
	ItemID   uint64  `json:"item_id"`
	Owner    Address `json:"owner"`
	Location string  `json:"location"`
}
