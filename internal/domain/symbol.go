package domain

// Symbol represents a tradable pair and its current exchange status.
type Symbol struct {
	Symbol     string       // Pair identifier, base+quote concatenated (e.g. "ETHBTC")
	BaseAsset  string       // Quantity unit
	QuoteAsset string       // Pricing unit
	Status     SymbolStatus // Current trading status
}
