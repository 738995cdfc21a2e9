package filter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmespath/go-jmespath"
)

// Apply runs a JMESPath expression over a JSON response body and returns the
// selection as indented JSON. A blank expression returns the body unchanged.
//
// Examples against market-data payloads:
//
//	price                      ticker price of one symbol
//	[?symbol=='BTCUSDT']       one entry of an all-prices list
//	bids[:3]                   top of an order book
//	[].[0, 4]                  open time and close of each kline
func Apply(body string, expression string) (string, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return body, nil
	}

	var data interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	return applyJMESPath(data, expression)
}

// Validate compiles expression without running it
func Validate(expression string) error {
	if _, err := jmespath.Compile(expression); err != nil {
		return fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}
	return nil
}

// applyJMESPath applies a JMESPath expression to decoded JSON
func applyJMESPath(data interface{}, expression string) (string, error) {
	jp, err := jmespath.Compile(expression)
	if err != nil {
		return "", fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}

	result, err := jp.Search(data)
	if err != nil {
		return "", fmt.Errorf("JMESPath search failed: %w", err)
	}

	if result == nil {
		return "null", nil
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	return string(output), nil
}
