package catalog

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBase = "https://example.test/api/crypto"

func TestRegistry_Size(t *testing.T) {
	assert.Len(t, All(), 29)
	assert.Len(t, ByMarket(MarketSpot), 14)
	assert.Len(t, ByMarket(MarketFutures), 15)
}

func TestRegistry_Invariants(t *testing.T) {
	seenNames := make(map[string]bool)
	seenPaths := make(map[string]bool)

	for _, ep := range All() {
		assert.False(t, seenNames[ep.Name], "duplicate endpoint name %q", ep.Name)
		seenNames[ep.Name] = true
		assert.False(t, seenPaths[ep.Path], "duplicate path %q", ep.Path)
		seenPaths[ep.Path] = true

		assert.True(t, strings.HasPrefix(ep.Path, "/"), "%s: path must be relative to base", ep.Name)
		assert.NotContains(t, ep.Path, "?", "%s: path must not carry a query", ep.Name)
		assert.Equal(t, "GET", ep.Method, ep.Name)
		assert.NotEmpty(t, ep.Description, ep.Name)

		params := make(map[string]bool)
		for _, p := range ep.Params {
			assert.False(t, params[p.Name], "%s: duplicate parameter %q", ep.Name, p.Name)
			params[p.Name] = true
			assert.Contains(t, []ParamKind{KindText, KindInteger}, p.Kind)
		}
	}
}

func TestLookup(t *testing.T) {
	ep, ok := Lookup("Spot Klines")
	require.True(t, ok)
	assert.Equal(t, "/klines", ep.Path)
	assert.Equal(t, []string{"symbol", "interval"}, ep.RequiredParams())
	assert.Equal(t, []string{"symbol", "interval", "limit"}, ep.ParamNames())

	_, ok = Lookup("Spot Nothing")
	assert.False(t, ok)
}

func TestLookup_ReturnsCopy(t *testing.T) {
	ep, ok := Lookup("Spot Depth")
	require.True(t, ok)
	ep.Params[0].Name = "mutated"
	ep.Params = append(ep.Params, ParameterSpec{Name: "extra"})

	again, _ := Lookup("Spot Depth")
	assert.Equal(t, "symbol", again.Params[0].Name)
	assert.Len(t, again.Params, 2)
}

func TestFind_UnknownEndpoint(t *testing.T) {
	_, err := Find("Nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEndpoint))
}

func TestNames_StableOrder(t *testing.T) {
	names := Names()
	assert.Equal(t, "Spot Ping", names[0])
	assert.Equal(t, "Futures Recent Trades", names[len(names)-1])
	assert.Equal(t, names, Names())
}

func TestByPath(t *testing.T) {
	ep, ok := ByPath("/futures/fundingRate")
	require.True(t, ok)
	assert.Equal(t, "Futures Funding Rate", ep.Name)
	assert.Equal(t, []string{"symbol", "startTime", "endTime", "limit"}, ep.ParamNames())
}

func mustLookup(t *testing.T, name string) Endpoint {
	t.Helper()
	ep, ok := Lookup(name)
	require.True(t, ok, name)
	return ep
}

func TestDeriveURL_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		values   Values
		wantURL  string
	}{
		{
			name:     "single symbol",
			endpoint: "Spot Ticker Price (Single)",
			values:   Values{"symbol": "BTCUSDT"},
			wantURL:  testBase + "/ticker/price?symbol=BTCUSDT",
		},
		{
			name:     "empty optional omitted",
			endpoint: "Spot Depth",
			values:   Values{"symbol": "ETHUSDT", "limit": ""},
			wantURL:  testBase + "/depth?symbol=ETHUSDT",
		},
		{
			name:     "no params no query",
			endpoint: "Spot Ping",
			values:   Values{},
			wantURL:  testBase + "/ping",
		},
		{
			name:     "nil values",
			endpoint: "Spot Depth",
			values:   nil,
			wantURL:  testBase + "/depth",
		},
		{
			name:     "declared order not map order",
			endpoint: "Spot Klines",
			values:   Values{"limit": "5", "interval": "1m", "symbol": "BNBUSDT"},
			wantURL:  testBase + "/klines?symbol=BNBUSDT&interval=1m&limit=5",
		},
		{
			name:     "missing required not enforced",
			endpoint: "Futures Funding Rate",
			values:   Values{"limit": "100"},
			wantURL:  testBase + "/futures/fundingRate?limit=100",
		},
		{
			name:     "unknown keys ignored",
			endpoint: "Spot Ping",
			values:   Values{"symbol": "BTCUSDT"},
			wantURL:  testBase + "/ping",
		},
		{
			name:     "values percent encoded",
			endpoint: "Spot Ticker Price (Single)",
			values:   Values{"symbol": "BTC/USDT&x=1 y"},
			wantURL:  testBase + "/ticker/price?symbol=BTC%2FUSDT%26x%3D1+y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := mustLookup(t, tt.endpoint)
			assert.Equal(t, tt.wantURL, DeriveURL(testBase, ep, tt.values))
		})
	}
}

func TestDeriveURL_Properties(t *testing.T) {
	for _, ep := range All() {
		values := DefaultValues(ep)
		got := DeriveURL(testBase, ep, values)
		assert.True(t, strings.HasPrefix(got, testBase+ep.Path), ep.Name)

		u, err := url.Parse(got)
		require.NoError(t, err)
		q := u.Query()
		for _, p := range ep.Params {
			if values[p.Name] == "" {
				assert.NotContains(t, q, p.Name, "%s: empty %s must be omitted", ep.Name, p.Name)
				continue
			}
			assert.Equal(t, []string{values[p.Name]}, q[p.Name], "%s: %s", ep.Name, p.Name)
		}
		if len(q) == 0 {
			assert.NotContains(t, got, "?", ep.Name)
		}
	}
}

func TestDeriveCommand(t *testing.T) {
	ep := mustLookup(t, "Spot Ticker Price (Single)")
	values := Values{"symbol": "BTCUSDT"}

	got := DeriveCommand(testBase, ep, values)
	assert.Equal(t, `curl -X GET "`+testBase+`/ticker/price?symbol=BTCUSDT"`, got)
	assert.Equal(t, got, DeriveCommand(testBase, ep, values))
	assert.Equal(t, FormatCommand(ep.Method, DeriveURL(testBase, ep, values)), got)
}

func TestDefaultValues(t *testing.T) {
	ep := mustLookup(t, "Spot Aggregate Trades")
	values := DefaultValues(ep)

	assert.Len(t, values, len(ep.Params))
	assert.Equal(t, Values{
		"symbol":    "BTCUSDT",
		"fromId":    "",
		"startTime": "",
		"endTime":   "",
		"limit":     "500",
	}, values)

	assert.Empty(t, DefaultValues(mustLookup(t, "Spot Ping")))
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		kind ParamKind
		raw  string
		want string
	}{
		{KindText, " BTCUSDT ", " BTCUSDT "},
		{KindInteger, "", ""},
		{KindInteger, "   ", ""},
		{KindInteger, "007", "7"},
		{KindInteger, " 42 ", "42"},
		{KindInteger, "-3", "-3"},
		{KindInteger, "+5", "5"},
		{KindInteger, "-0", "0"},
		{KindInteger, " 12abc ", "12abc"},
		{KindInteger, "1.5", "1.5"},
		{KindInteger, "99999999999999999999", "99999999999999999999"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Coerce(tt.kind, tt.raw), "%s %q", tt.kind, tt.raw)
	}
}

func TestValues_SetAndClone(t *testing.T) {
	ep := mustLookup(t, "Spot Depth")
	values := DefaultValues(ep)
	limit, _ := ep.Param("limit")

	clone := values.Clone()
	values.Set(limit, "0050")

	assert.Equal(t, "50", values["limit"])
	assert.Equal(t, "10", clone["limit"])
}

func TestParseValues_RoundTrip(t *testing.T) {
	ep := mustLookup(t, "Futures All Force Orders")
	values := DefaultValues(ep)
	values["autoCloseType"] = "LIQUIDATION"
	values["startTime"] = "1700000000000"

	parsed, err := ParseValues(ep, DeriveURL(testBase, ep, values))
	require.NoError(t, err)
	assert.Equal(t, values, parsed)
}

func TestSearch(t *testing.T) {
	assert.Len(t, Search(""), 29)

	results := Search("fundrate")
	require.NotEmpty(t, results)
	assert.Equal(t, "Futures Funding Rate", results[0].Name)

	assert.Empty(t, Search("zzzzqqq"))
}
