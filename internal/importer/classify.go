package importer

import (
	"strings"

	"github.com/andresuchdata/sellerdash/backend-go/internal/columns"
	"github.com/andresuchdata/sellerdash/backend-go/internal/tabular"
)

// Roles is the set of semantic roles a file plays in an import batch.
type Roles struct {
	Items    bool
	Summary  bool
	Payments bool
}

// None reports an unrecognised file.
func (r Roles) None() bool { return !r.Items && !r.Summary && !r.Payments }

func (r Roles) String() string {
	var parts []string
	if r.Summary {
		parts = append(parts, "summary")
	}
	if r.Items {
		parts = append(parts, "items")
	}
	if r.Payments {
		parts = append(parts, "payments")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Classify decides a file's roles from its header set. A Summary file is
// never also read as Items, so its revenue is not derived twice.
func Classify(headers []string) Roles {
	var r Roles

	r.Summary = columns.NetAmount.HasAny(headers) ||
		columns.TotalAmount.HasAny(headers) ||
		columns.SummaryFees.HasAny(headers)

	if !r.Summary {
		r.Items = columns.ItemName.HasAny(headers) ||
			columns.SKU.HasAny(headers) ||
			columns.Variation.HasAny(headers)
	}

	r.Payments = columns.OrderID.HasAny(headers) && columns.PaymentMoney.HasAny(headers)

	return r
}

// ClassifyTable classifies on the first row's headers.
func ClassifyTable(t *tabular.Table) Roles {
	return Classify(t.HeaderRow())
}
