package binanceclient

const (
	// Base URLs
	baseURLProduction = "https://api.binance.com"
	baseURLTestnet    = "https://testnet.binance.vision"

	apiKeyHeader = "X-MBX-APIKEY"
)

// endpoints is the fixed mapping from logical operation to URL path.
// Immutable after construction.
type endpoints struct {
	order        string
	testOrder    string
	allOrders    string
	klines       string
	exchangeInfo string
}

func defaultEndpoints() endpoints {
	return endpoints{
		order:        "/api/v3/order",
		testOrder:    "/api/v3/order/test",
		allOrders:    "/api/v3/allOrders",
		klines:       "/api/v3/klines",
		exchangeInfo: "/api/v3/exchangeInfo",
	}
}
