// Package columns resolves logical fields across exports whose headers are
// spelled differently by every marketplace and spreadsheet tool.
package columns

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/andresuchdata/sellerdash/backend-go/internal/parse"
	"github.com/andresuchdata/sellerdash/backend-go/internal/tabular"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases a header, folds accents and drops every
// non-alphanumeric character, so "Order ID", "order_id" and "OrderID" compare
// equal and "Quantité" matches "Quantite".
func Normalize(header string) string {
	var b strings.Builder
	b.Grow(len(header))
	for _, r := range strings.ToLower(foldAccents(header)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func foldAccents(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}
	// Transformers keep state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// AliasSet is a prioritised list of header spellings for one logical field.
type AliasSet struct {
	names []string
	norm  map[string]struct{}
}

// NewAliasSet builds an alias set; names are normalized once here.
func NewAliasSet(names ...string) AliasSet {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[Normalize(n)] = struct{}{}
	}
	return AliasSet{names: names, norm: set}
}

// Names returns the aliases as authored.
func (a AliasSet) Names() []string { return a.names }

// Matches reports whether header is one of the aliases.
func (a AliasSet) Matches(header string) bool {
	_, ok := a.norm[Normalize(header)]
	return ok
}

// HasAny reports whether any header matches.
func (a AliasSet) HasAny(headers []string) bool {
	for _, h := range headers {
		if a.Matches(h) {
			return true
		}
	}
	return false
}

// Resolve returns the value of the first column, in row order, whose header
// matches an alias. ok is false when no column matches.
func Resolve(row tabular.RawRow, aliases AliasSet) (tabular.Value, bool) {
	for _, f := range row.Fields() {
		if aliases.Matches(f.Header) {
			return f.Value, true
		}
	}
	return tabular.Null(), false
}

// ResolveLoose is Resolve with a second pass that accepts any header
// containing an alias, e.g. "Tracking Number (USPS)" for "Tracking Number".
func ResolveLoose(row tabular.RawRow, aliases AliasSet) (tabular.Value, bool) {
	if v, ok := Resolve(row, aliases); ok {
		return v, true
	}
	for _, f := range row.Fields() {
		h := Normalize(f.Header)
		for n := range aliases.norm {
			if n != "" && strings.Contains(h, n) {
				return f.Value, true
			}
		}
	}
	return tabular.Null(), false
}

// ResolveText is Resolve rendered as trimmed text; missing columns give "".
func ResolveText(row tabular.RawRow, aliases AliasSet) string {
	v, ok := Resolve(row, aliases)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.Text())
}

// ResolveNonBlank returns the first matching column that holds a non-blank value.
func ResolveNonBlank(row tabular.RawRow, aliases AliasSet) (string, bool) {
	for _, f := range row.Fields() {
		if aliases.Matches(f.Header) && !f.Value.IsBlank() {
			return strings.TrimSpace(f.Value.Text()), true
		}
	}
	return "", false
}

// ResolveAmount reads a money field; missing or unparseable cells are zero.
func ResolveAmount(row tabular.RawRow, aliases AliasSet) decimal.Decimal {
	v, ok := Resolve(row, aliases)
	if !ok {
		return decimal.Zero
	}
	return Amount(v)
}

// Amount converts any cell value to money.
func Amount(v tabular.Value) decimal.Decimal {
	if f, ok := v.Float(); ok {
		return decimal.NewFromFloat(f)
	}
	return parse.Amount(v.Text())
}

// HasFeeToken reports whether a header names a fee: split on punctuation and
// camelCase boundaries, one of its words is "fee" or "fees". "Card Processing
// Fees" and "TransactionFee" match; "Coffee" and "Feedback" do not.
func HasFeeToken(header string) bool {
	for _, w := range words(header) {
		if w == "fee" || w == "fees" {
			return true
		}
	}
	return false
}

// Words splits a header the same way HasFeeToken does.
func Words(header string) []string { return words(header) }

func words(s string) []string {
	var (
		out  []string
		cur  []rune
		prev rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && prev != 0 && unicode.IsLower(prev):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return out
}
