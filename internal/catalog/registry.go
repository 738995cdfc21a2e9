package catalog

import (
	"errors"
	"fmt"
	"strconv"
)

// DefaultBaseURL is the public deployment of the market-data API
const DefaultBaseURL = "https://go-crypto-production.up.railway.app/api/crypto"

// DefaultSymbol pre-fills every symbol parameter
const DefaultSymbol = "BTCUSDT"

// ErrUnknownEndpoint is returned by Find when no endpoint has the given name
var ErrUnknownEndpoint = errors.New("unknown endpoint")

func symbolParam() ParameterSpec {
	return ParameterSpec{
		Name:        "symbol",
		Kind:        KindText,
		Required:    true,
		Default:     DefaultSymbol,
		Description: "The cryptocurrency trading pair symbol (e.g., BTCUSDT).",
	}
}

func intervalParam() ParameterSpec {
	return ParameterSpec{
		Name:        "interval",
		Kind:        KindText,
		Required:    true,
		Default:     "1h",
		Description: "Kline interval (e.g., 1m, 5m, 1h, 1d).",
	}
}

func limitParam(what string, def, max int) ParameterSpec {
	return ParameterSpec{
		Name:        "limit",
		Kind:        KindInteger,
		Default:     strconv.Itoa(def),
		Description: fmt.Sprintf("Limit the number of %s to return (default: %d, max: %d).", what, def, max),
	}
}

func fromIDParam() ParameterSpec {
	return ParameterSpec{
		Name:        "fromId",
		Kind:        KindInteger,
		Description: "Trade ID to fetch from. All trades with ID >= fromId will be returned.",
	}
}

func startTimeParam(what string) ParameterSpec {
	return ParameterSpec{
		Name:        "startTime",
		Kind:        KindInteger,
		Description: fmt.Sprintf("Timestamp in milliseconds to get %s from.", what),
	}
}

func endTimeParam(what string) ParameterSpec {
	return ParameterSpec{
		Name:        "endTime",
		Kind:        KindInteger,
		Description: fmt.Sprintf("Timestamp in milliseconds to get %s until.", what),
	}
}

func get(market Market, name, path, description string, params ...ParameterSpec) Endpoint {
	return Endpoint{
		Name:        name,
		Market:      market,
		Path:        path,
		Method:      "GET",
		Params:      params,
		Description: description,
	}
}

// endpoints is the catalog in presentation order. It is never mutated after
// package initialization.
var endpoints = []Endpoint{
	get(MarketSpot, "Spot Ping", "/ping",
		"Test connectivity to the Binance Spot API. Returns an empty object on success."),
	get(MarketSpot, "Spot Server Time", "/time",
		"Test connectivity to the Binance Spot API and get the current server time."),
	get(MarketSpot, "Spot Exchange Info", "/exchangeInfo",
		"Current exchange trading rules and symbol information for Binance Spot."),
	get(MarketSpot, "Spot Ticker Price (Single)", "/ticker/price",
		"Latest price for a specific trading pair on Binance Spot.",
		symbolParam()),
	get(MarketSpot, "Spot All Ticker Prices", "/ticker/allPrices",
		"Latest prices for all trading pairs on Binance Spot."),
	get(MarketSpot, "Spot Book Ticker (Single)", "/bookTicker",
		"Best price/quantity on the order book for a specific trading pair on Binance Spot.",
		symbolParam()),
	get(MarketSpot, "Spot Depth", "/depth",
		"Order book depth information for a specific trading pair on Binance Spot.",
		symbolParam(), limitParam("bids and asks", 10, 1000)),
	get(MarketSpot, "Spot Recent Trades", "/trades",
		"Get recent trades for a specific trading pair on Binance Spot.",
		symbolParam(), limitParam("recent trades", 10, 1000)),
	get(MarketSpot, "Spot Klines", "/klines",
		"Kline/Candlestick data for a specific trading pair on Binance Spot.",
		symbolParam(), intervalParam(), limitParam("klines", 10, 1000)),
	get(MarketSpot, "Spot Historical Trades", "/historicalTrades",
		"Get historical trades for a specific trading pair on Binance Spot.",
		symbolParam(), limitParam("historical trades", 500, 1000), fromIDParam()),
	get(MarketSpot, "Spot Aggregate Trades", "/aggregateTrades",
		"Get compressed, aggregate trades for a specific trading pair on Binance Spot.",
		symbolParam(), fromIDParam(), startTimeParam("aggregate trades"), endTimeParam("aggregate trades"),
		limitParam("aggregate trades", 500, 1000)),
	get(MarketSpot, "Spot Average Price", "/avgPrice",
		"Current average price for a specific trading pair on Binance Spot.",
		symbolParam()),
	get(MarketSpot, "Spot 24hr Ticker (Single)", "/ticker/24hr",
		"24-hour rolling window price change statistics for a specific trading pair on Binance Spot.",
		symbolParam()),
	get(MarketSpot, "Spot All Book Tickers", "/bookTicker/all",
		"Best price/quantity on the order book for all trading pairs on Binance Spot."),

	get(MarketFutures, "Futures Ping", "/futures/ping",
		"Test connectivity to the Binance Futures API. Returns an empty object on success."),
	get(MarketFutures, "Futures Time", "/futures/time",
		"Test connectivity to the Binance Futures API and get the current server time."),
	get(MarketFutures, "Futures Exchange Info", "/futures/exchangeInfo",
		"Current exchange trading rules and symbol information for Binance Futures."),
	get(MarketFutures, "Futures Depth", "/futures/depth",
		"Order book depth information for a specific trading pair on Binance Futures.",
		symbolParam(), limitParam("bids and asks", 10, 1000)),
	get(MarketFutures, "Futures Aggregate Trades", "/futures/aggTrades",
		"Get compressed, aggregate trades for a specific trading pair on Binance Futures.",
		symbolParam(), limitParam("aggregate trades", 500, 1000)),
	get(MarketFutures, "Futures Ticker Price (Single)", "/futures/ticker/price",
		"Latest price for a specific trading pair on Binance Futures.",
		symbolParam()),
	get(MarketFutures, "Futures All Ticker Prices", "/futures/ticker/allPrices",
		"Latest prices for all trading pairs on Binance Futures."),
	get(MarketFutures, "Futures Book Ticker", "/futures/bookTicker",
		"Best price/quantity on the order book for a specific trading pair on Binance Futures.",
		symbolParam()),
	get(MarketFutures, "Futures Klines", "/futures/klines",
		"Kline/Candlestick data for a specific trading pair on Binance Futures.",
		symbolParam(), intervalParam(), limitParam("klines", 500, 1500)),
	get(MarketFutures, "Futures Mark Price", "/futures/markPrice",
		"Get mark price for a specific trading pair on Binance Futures.",
		symbolParam()),
	get(MarketFutures, "Futures All Force Orders", "/futures/allForceOrders",
		"Get all liquidation orders for a specific trading pair on Binance Futures.",
		symbolParam(),
		ParameterSpec{
			Name:        "autoCloseType",
			Kind:        KindText,
			Description: "Filter by auto close type (e.g., LIQUIDATION, ADL).",
		},
		startTimeParam("force orders"), endTimeParam("force orders"),
		limitParam("force orders", 500, 1000)),
	get(MarketFutures, "Futures 24hr Ticker (Single)", "/futures/24hrTicker",
		"24-hour rolling window price change statistics for a specific trading pair on Binance Futures.",
		symbolParam()),
	get(MarketFutures, "Futures All 24hr Tickers", "/futures/all24hrTickers",
		"24-hour rolling window price change statistics for all trading pairs on Binance Futures."),
	get(MarketFutures, "Futures Funding Rate", "/futures/fundingRate",
		"Get funding rate history for a specific trading pair on Binance Futures.",
		symbolParam(), startTimeParam("funding rates"), endTimeParam("funding rates"),
		limitParam("funding rates", 100, 1000)),
	get(MarketFutures, "Futures Recent Trades", "/futures/recentTrades",
		"Get recent trades for a specific trading pair on Binance Futures.",
		symbolParam(), limitParam("recent trades", 500, 1000), fromIDParam()),
}

// byName indexes endpoints by display name
var byName = func() map[string]int {
	idx := make(map[string]int, len(endpoints))
	for i, e := range endpoints {
		idx[e.Name] = i
	}
	return idx
}()

// Lookup returns the endpoint registered under name
func Lookup(name string) (Endpoint, bool) {
	i, ok := byName[name]
	if !ok {
		return Endpoint{}, false
	}
	return endpoints[i].clone(), true
}

// Find is Lookup with an error suitable for surfacing to CLI users
func Find(name string) (Endpoint, error) {
	ep, ok := Lookup(name)
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: %q", ErrUnknownEndpoint, name)
	}
	return ep, nil
}

// Names returns every endpoint name in presentation order
func Names() []string {
	names := make([]string, len(endpoints))
	for i, e := range endpoints {
		names[i] = e.Name
	}
	return names
}

// All returns a copy of the whole catalog in presentation order
func All() []Endpoint {
	all := make([]Endpoint, len(endpoints))
	for i, e := range endpoints {
		all[i] = e.clone()
	}
	return all
}

// ByMarket returns the endpoints of one market in presentation order
func ByMarket(market Market) []Endpoint {
	var out []Endpoint
	for _, e := range endpoints {
		if e.Market == market {
			out = append(out, e.clone())
		}
	}
	return out
}

// ByPath returns the endpoint serving the given relative path
func ByPath(path string) (Endpoint, bool) {
	for _, e := range endpoints {
		if e.Path == path {
			return e.clone(), true
		}
	}
	return Endpoint{}, false
}
