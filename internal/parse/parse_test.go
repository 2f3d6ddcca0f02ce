package parse

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"(1.23)", "-1.23"},
		{"$1,234.56", "1234.56"},
		{"", "0"},
		{"abc", "0"},
		{"-5", "-5"},
		{"USD 12.50", "12.5"},
		{"($1,000.00)", "-1000"},
		{"12.34.5", "12.34"},
		{"(abc)", "0"},
		{"-", "0"},
		{"7.", "7"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Amount(tt.raw)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "Amount(%q) = %s", tt.raw, got)
		})
	}
}

func TestQuantity(t *testing.T) {
	assert.Equal(t, 3, Quantity("3"))
	assert.Equal(t, 12, Quantity("12 pcs"))
	assert.Equal(t, 1, Quantity(""))
	assert.Equal(t, 1, Quantity("0"))
	assert.Equal(t, 1, Quantity("-2"))
	assert.Equal(t, 1, Quantity("many"))
}

func TestLabelTotal(t *testing.T) {
	d, ok := LabelTotal("$12.34")
	assert.True(t, ok)
	assert.True(t, decimal.RequireFromString("12.34").Equal(d))

	d, ok = LabelTotal("-1,204.10")
	assert.True(t, ok)
	assert.True(t, decimal.RequireFromString("-1204.10").Equal(d))

	_, ok = LabelTotal("n/a")
	assert.False(t, ok)

	_, ok = LabelTotal("")
	assert.False(t, ok)
}

func TestDate(t *testing.T) {
	got, ok := Date("2024-03-05")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)

	got, ok = Date("03/05/2024")
	assert.True(t, ok)
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 5, got.Day())

	got, ok = Date("45000")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), got)

	_, ok = Date("not a date")
	assert.False(t, ok)

	_, ok = Date("  ")
	assert.False(t, ok)

	_, ok = Date("12")
	assert.False(t, ok)
}
