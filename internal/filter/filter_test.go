package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		expression string
		want       string
		wantErr    bool
	}{
		{
			name:       "blank expression keeps body",
			body:       `{"price":"1"}`,
			expression: "  ",
			want:       `{"price":"1"}`,
		},
		{
			name:       "field",
			body:       `{"symbol":"BTCUSDT","price":"64000.10"}`,
			expression: "price",
			want:       `"64000.10"`,
		},
		{
			name:       "list filter",
			body:       `[{"symbol":"BTCUSDT","price":"1"},{"symbol":"ETHUSDT","price":"2"}]`,
			expression: "[?symbol=='ETHUSDT'].price",
			want:       "[\n  \"2\"\n]",
		},
		{
			name:       "order book slice",
			body:       `{"bids":[["1","2"],["3","4"],["5","6"]]}`,
			expression: "bids[:1]",
			want:       "[\n  [\n    \"1\",\n    \"2\"\n  ]\n]",
		},
		{
			name:       "missing field",
			body:       `{"price":"1"}`,
			expression: "nope",
			want:       "null",
		},
		{
			name:       "invalid body",
			body:       "pong",
			expression: "price",
			wantErr:    true,
		},
		{
			name:       "invalid expression",
			body:       `{}`,
			expression: "[?",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.body, tt.expression)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("bids[:3]"))
	assert.Error(t, Validate("bids[:"))
}
