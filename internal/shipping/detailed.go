package shipping

import (
	"regexp"
	"strings"

	"github.com/andresuchdata/sellerdash/backend-go/internal/columns"
	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/parse"
	"github.com/andresuchdata/sellerdash/backend-go/internal/tabular"
	"github.com/shopspring/decimal"
)

// ParseDetailed extracts full label records. Rows whose type column exists
// and is not "label" are skipped, as are rows with neither a label id nor a
// tracking number. Repeated idempotency keys keep the first row.
func ParseDetailed(rows []tabular.RawRow) ([]domain.ShippingLabel, int) {
	out := make([]domain.ShippingLabel, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	ignored := 0

	for _, row := range rows {
		if v, ok := columns.Resolve(row, columns.LabelType); ok && !v.IsBlank() && !IsLabel(v.Text()) {
			ignored++
			continue
		}

		l := detailedLabel(row)
		if l.LabelID == nil && l.Tracking == nil {
			ignored++
			continue
		}

		l.LabelKey = IdempotencyKey(l)
		if _, dup := seen[l.LabelKey]; dup {
			ignored++
			continue
		}
		seen[l.LabelKey] = struct{}{}
		out = append(out, l)
	}
	return out, ignored
}

func detailedLabel(row tabular.RawRow) domain.ShippingLabel {
	text := func(aliases columns.AliasSet) *string {
		v, ok := columns.ResolveLoose(row, aliases)
		if !ok {
			return nil
		}
		return domain.StringPtr(v.Text())
	}

	l := domain.ShippingLabel{
		LabelID:    text(columns.LabelID),
		BatchID:    text(columns.LabelBatchID),
		Carrier:    text(columns.LabelCarrier),
		Service:    text(columns.LabelService),
		ToName:     text(columns.LabelToName),
		Address1:   text(columns.LabelAddress1),
		City:       text(columns.LabelCity),
		State:      text(columns.LabelState),
		Postal:     text(columns.LabelPostal),
		Country:    text(columns.LabelCountry),
		Tracking:   text(columns.LabelTracking),
		Reference:  text(columns.LabelReference),
		Notes:      text(columns.LabelNotes),
		Weight:     text(columns.LabelWeight),
		Dimensions: text(columns.LabelDimensions),
		StoreID:    text(columns.LabelStoreID),
		Amount:     decimal.Zero,
		Currency:   DefaultCurrency,
	}

	if d := text(columns.LabelShipDate); d != nil {
		if t, ok := parse.Date(*d); ok {
			l.ShipDate = &t
		}
	}
	if v, ok := columns.ResolveLoose(row, columns.LabelTotal); ok {
		if amt, ok := parse.LabelTotal(v.Text()); ok {
			l.Amount = amt
		}
	}
	if c := text(columns.LabelCurrency); c != nil {
		l.Currency = strings.ToUpper(*c)
	}
	if ref, ok := ExtractOrderReference(deref(l.Reference), deref(l.Notes)); ok {
		l.OrderRef = &ref
	}
	return l
}

// IdempotencyKey is the label id when present, else tracking number, ship
// date and amount joined. ParseDetailed drops rows with neither a label id
// nor a tracking number before keying, so an empty "trk:" key never reaches
// storage; callers building labels elsewhere must enforce the same.
func IdempotencyKey(l domain.ShippingLabel) string {
	if l.LabelID != nil && *l.LabelID != "" {
		return "id:" + *l.LabelID
	}
	date := ""
	if l.ShipDate != nil {
		date = l.ShipDate.Format("2006-01-02")
	}
	return "trk:" + deref(l.Tracking) + "|" + date + "|" + l.Amount.StringFixed(2)
}

var (
	labeledOrderRef = regexp.MustCompile(`(?i)\b(?:order|receipt)\s*(?:id|no\.?|number)?\s*[:#]?\s*#?\s*([A-Za-z0-9][A-Za-z0-9-]*)`)
	bareOrderRef    = regexp.MustCompile(`\b(\d{9,12})\b`)
	hasDigit        = regexp.MustCompile(`\d`)
)

// ExtractOrderReference scans free text for "Order #123..." style references,
// then for a bare 9 to 12 digit run. It is a linking hint only.
func ExtractOrderReference(texts ...string) (string, bool) {
	for _, s := range texts {
		for _, m := range labeledOrderRef.FindAllStringSubmatch(s, -1) {
			if hasDigit.MatchString(m[1]) {
				return m[1], true
			}
		}
	}
	for _, s := range texts {
		if m := bareOrderRef.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
