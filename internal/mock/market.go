package mock

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/studiowebux/marketcli/internal/catalog"
)

// maxRows caps generated list responses
const maxRows = 1000

// request is the validated query of one catalog call
type request struct {
	endpoint  catalog.Endpoint
	symbol    string
	interval  string
	limit     int
	fromID    int64
	startTime int64
	endTime   int64
	now       time.Time
	symbols   []string
}

// validate mirrors the checks of the market-data controllers: required
// parameters must be present, integer parameters must parse.
func validate(ep catalog.Endpoint, q url.Values) (string, bool) {
	var missing []string
	for _, name := range ep.RequiredParams() {
		if q.Get(name) == "" {
			missing = append(missing, name)
		}
	}
	switch len(missing) {
	case 0:
	case 1:
		return fmt.Sprintf("%s query parameter is required", missing[0]), false
	default:
		return fmt.Sprintf("%s query parameters are required", strings.Join(missing, " and ")), false
	}

	for _, p := range ep.Params {
		if p.Kind != catalog.KindInteger {
			continue
		}
		raw := q.Get(p.Name)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || (p.Name == "limit" && n <= 0) {
			return fmt.Sprintf("invalid %s parameter", p.Name), false
		}
	}
	return "", true
}

func newRequest(ep catalog.Endpoint, q url.Values, now time.Time, symbols []string) request {
	r := request{
		endpoint: ep,
		symbol:   q.Get("symbol"),
		interval: q.Get("interval"),
		now:      now,
		symbols:  symbols,
	}

	limit := q.Get("limit")
	if limit == "" {
		if p, ok := ep.Param("limit"); ok {
			limit = p.Default
		}
	}
	r.limit, _ = strconv.Atoi(limit)
	if r.limit <= 0 || r.limit > maxRows {
		r.limit = maxRows
	}

	r.fromID, _ = strconv.ParseInt(q.Get("fromId"), 10, 64)
	r.startTime, _ = strconv.ParseInt(q.Get("startTime"), 10, 64)
	r.endTime, _ = strconv.ParseInt(q.Get("endTime"), 10, 64)
	return r
}

// responders maps catalog paths to canned payload builders
var responders = map[string]func(r request) any{
	"/ping":             func(r request) any { return map[string]any{} },
	"/time":             serverTime,
	"/exchangeInfo":     exchangeInfo,
	"/ticker/price":     func(r request) any { return tickerPrice(r.symbol, r.now, false) },
	"/ticker/allPrices": func(r request) any { return each(r.symbols, func(s string) any { return tickerPrice(s, r.now, false) }) },
	"/bookTicker":       func(r request) any { return bookTicker(r.symbol, r.now, false) },
	"/depth":            depth,
	"/trades":           trades,
	"/klines":           klines,
	"/historicalTrades": trades,
	"/aggregateTrades":  aggTrades,
	"/avgPrice":         avgPrice,
	"/ticker/24hr":      func(r request) any { return ticker24h(r.symbol, r.now) },
	"/bookTicker/all":   func(r request) any { return each(r.symbols, func(s string) any { return bookTicker(s, r.now, false) }) },

	"/futures/ping":             func(r request) any { return map[string]any{} },
	"/futures/time":             serverTime,
	"/futures/exchangeInfo":     exchangeInfo,
	"/futures/depth":            depth,
	"/futures/aggTrades":        aggTrades,
	"/futures/ticker/price":     func(r request) any { return tickerPrice(r.symbol, r.now, true) },
	"/futures/ticker/allPrices": func(r request) any { return each(r.symbols, func(s string) any { return tickerPrice(s, r.now, true) }) },
	"/futures/bookTicker":       func(r request) any { return bookTicker(r.symbol, r.now, true) },
	"/futures/klines":           klines,
	"/futures/markPrice":        markPrice,
	"/futures/allForceOrders":   forceOrders,
	"/futures/24hrTicker":       func(r request) any { return ticker24h(r.symbol, r.now) },
	"/futures/all24hrTickers":   func(r request) any { return each(r.symbols, func(s string) any { return ticker24h(s, r.now) }) },
	"/futures/fundingRate":      fundingRate,
	"/futures/recentTrades":     trades,
}

// basePrice derives a stable price from the symbol so repeated calls agree
func basePrice(symbol string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToUpper(symbol)))
	return float64(h.Sum32()%90000) + 10 + float64(h.Sum32()%100)/100
}

func price(v float64) string {
	return strconv.FormatFloat(v, 'f', 8, 64)
}

func each(symbols []string, fn func(string) any) []any {
	out := make([]any, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, fn(s))
	}
	return out
}

func serverTime(r request) any {
	return map[string]any{"serverTime": r.now.UnixMilli()}
}

func exchangeInfo(r request) any {
	symbols := make([]any, 0, len(r.symbols))
	for _, s := range r.symbols {
		symbols = append(symbols, map[string]any{
			"symbol":     s,
			"status":     "TRADING",
			"baseAsset":  strings.TrimSuffix(s, "USDT"),
			"quoteAsset": "USDT",
		})
	}
	return map[string]any{
		"timezone":   "UTC",
		"serverTime": r.now.UnixMilli(),
		"symbols":    symbols,
	}
}

func tickerPrice(symbol string, now time.Time, futures bool) map[string]any {
	out := map[string]any{"symbol": symbol, "price": price(basePrice(symbol))}
	if futures {
		out["time"] = now.UnixMilli()
	}
	return out
}

func bookTicker(symbol string, now time.Time, futures bool) map[string]any {
	p := basePrice(symbol)
	out := map[string]any{
		"symbol":   symbol,
		"bidPrice": price(p - 0.01),
		"bidQty":   price(1.5),
		"askPrice": price(p + 0.01),
		"askQty":   price(2.25),
	}
	if futures {
		out["time"] = now.UnixMilli()
	}
	return out
}

func depth(r request) any {
	p := basePrice(r.symbol)
	bids := make([][]string, 0, r.limit)
	asks := make([][]string, 0, r.limit)
	for i := 0; i < r.limit; i++ {
		step := float64(i+1) * 0.01
		bids = append(bids, []string{price(p - step), price(float64(i%7) + 0.5)})
		asks = append(asks, []string{price(p + step), price(float64(i%5) + 0.25)})
	}
	return map[string]any{
		"lastUpdateId": r.now.UnixMilli(),
		"bids":         bids,
		"asks":         asks,
	}
}

func firstID(r request) int64 {
	if r.fromID > 0 {
		return r.fromID
	}
	return 1_000_000
}

func trades(r request) any {
	p := basePrice(r.symbol)
	start := firstID(r)
	out := make([]any, 0, r.limit)
	for i := 0; i < r.limit; i++ {
		qty := float64(i%9) + 0.1
		out = append(out, map[string]any{
			"id":           start + int64(i),
			"price":        price(p),
			"qty":          price(qty),
			"quoteQty":     price(p * qty),
			"time":         r.now.Add(time.Duration(i-r.limit) * time.Second).UnixMilli(),
			"isBuyerMaker": i%2 == 0,
			"isBestMatch":  true,
		})
	}
	return out
}

func aggTrades(r request) any {
	p := basePrice(r.symbol)
	start := firstID(r)
	from := r.now.Add(-time.Duration(r.limit) * time.Second)
	if r.startTime > 0 {
		from = time.UnixMilli(r.startTime)
	}
	out := make([]any, 0, r.limit)
	for i := 0; i < r.limit; i++ {
		ts := from.Add(time.Duration(i) * time.Second).UnixMilli()
		if r.endTime > 0 && ts > r.endTime {
			break
		}
		id := start + int64(i)
		out = append(out, map[string]any{
			"a": id,
			"p": price(p),
			"q": price(float64(i%9) + 0.1),
			"f": id * 10,
			"l": id*10 + 2,
			"T": ts,
			"m": i%2 == 0,
			"M": true,
		})
	}
	return out
}

func intervalDuration(interval string) time.Duration {
	if interval == "" {
		return time.Hour
	}
	unit := interval[len(interval)-1]
	n, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil || n <= 0 {
		return time.Hour
	}
	switch unit {
	case 'm':
		return time.Duration(n) * time.Minute
	case 'h':
		return time.Duration(n) * time.Hour
	case 'd':
		return time.Duration(n) * 24 * time.Hour
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour
	default:
		return time.Hour
	}
}

func klines(r request) any {
	p := basePrice(r.symbol)
	step := intervalDuration(r.interval)
	open := r.now.Truncate(step).Add(-time.Duration(r.limit-1) * step)
	out := make([]any, 0, r.limit)
	for i := 0; i < r.limit; i++ {
		o := open.Add(time.Duration(i) * step)
		drift := float64(i%11) - 5
		out = append(out, []any{
			o.UnixMilli(),
			price(p + drift),
			price(p + drift + 3),
			price(p + drift - 3),
			price(p + drift + 1),
			price(100 + float64(i)),
			o.Add(step).UnixMilli() - 1,
			price((100 + float64(i)) * p),
			100 + i,
			price(50 + float64(i)),
			price((50 + float64(i)) * p),
			"0",
		})
	}
	return out
}

func avgPrice(r request) any {
	return map[string]any{
		"mins":      5,
		"price":     price(basePrice(r.symbol)),
		"closeTime": r.now.UnixMilli(),
	}
}

func ticker24h(symbol string, now time.Time) map[string]any {
	p := basePrice(symbol)
	return map[string]any{
		"symbol":             symbol,
		"priceChange":        price(p * 0.012),
		"priceChangePercent": "1.200",
		"weightedAvgPrice":   price(p * 0.995),
		"lastPrice":          price(p),
		"highPrice":          price(p * 1.02),
		"lowPrice":           price(p * 0.97),
		"volume":             price(12345.678),
		"openTime":           now.Add(-24 * time.Hour).UnixMilli(),
		"closeTime":          now.UnixMilli(),
		"count":              98765,
	}
}

func markPrice(r request) any {
	p := basePrice(r.symbol)
	next := r.now.Truncate(8 * time.Hour).Add(8 * time.Hour)
	return map[string]any{
		"symbol":          r.symbol,
		"markPrice":       price(p),
		"indexPrice":      price(p - 0.5),
		"lastFundingRate": "0.00010000",
		"interestRate":    "0.00010000",
		"nextFundingTime": next.UnixMilli(),
		"time":            r.now.UnixMilli(),
	}
}

func forceOrders(r request) any {
	p := basePrice(r.symbol)
	out := make([]any, 0, r.limit)
	for i := 0; i < r.limit; i++ {
		side := "SELL"
		if i%2 == 1 {
			side = "BUY"
		}
		out = append(out, map[string]any{
			"symbol":       r.symbol,
			"price":        price(p * 0.99),
			"origQty":      price(float64(i%4) + 0.5),
			"executedQty":  price(float64(i%4) + 0.5),
			"averagePrice": price(p * 0.99),
			"status":       "FILLED",
			"timeInForce":  "IOC",
			"type":         "LIMIT",
			"side":         side,
			"time":         r.now.Add(-time.Duration(i) * time.Minute).UnixMilli(),
		})
	}
	return out
}

func fundingRate(r request) any {
	p := basePrice(r.symbol)
	end := r.now.Truncate(8 * time.Hour)
	if r.endTime > 0 {
		end = time.UnixMilli(r.endTime).Truncate(8 * time.Hour)
	}
	out := make([]any, 0, r.limit)
	for i := r.limit - 1; i >= 0; i-- {
		at := end.Add(-time.Duration(i) * 8 * time.Hour)
		if r.startTime > 0 && at.UnixMilli() < r.startTime {
			continue
		}
		out = append(out, map[string]any{
			"symbol":      r.symbol,
			"fundingTime": at.UnixMilli(),
			"fundingRate": "0.00010000",
			"markPrice":   price(p),
		})
	}
	return out
}
