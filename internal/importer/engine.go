package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/andresuchdata/sellerdash/backend-go/internal/tabular"
)

// ErrNoOrders is returned when no file yields a usable order identifier.
var ErrNoOrders = errors.New("no orders found in uploaded files")

// PersistError wraps a storage failure with the reconciliation step that
// raised it.
type PersistError struct {
	Step string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Step, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Options tunes one engine.
type Options struct {
	DedupPolicy DedupPolicy

	// SummaryPlaceholder synthesizes one "Order Summary" line for newly
	// inserted orders that arrived without item rows.
	SummaryPlaceholder bool

	// StrictFees limits payment fee sums to named fee columns.
	StrictFees bool

	// Transactional runs the persist steps in one transaction when the
	// store supports it.
	Transactional bool

	DefaultStoreName string
}

// Plan is the store-independent outcome of classification, grouping,
// derivation and dedup.
type Plan struct {
	Orders []domain.OrderRecord

	// Items holds deduplicated items for orders that had item rows.
	Items map[string][]domain.LineItem

	ItemDuplicates   int
	IgnoredRows      int
	IgnoredFileNames []string
}

// HasItems reports whether key arrived with item rows.
func (p *Plan) HasItems(key string) bool {
	_, ok := p.Items[key]
	return ok
}

type Engine struct {
	store Store
	opts  Options
}

func NewEngine(store Store, opts Options) *Engine {
	if opts.DedupPolicy == "" {
		opts.DedupPolicy = DedupMerge
	}
	if opts.DefaultStoreName == "" {
		opts.DefaultStoreName = domain.DefaultStoreName
	}
	return &Engine{store: store, opts: opts}
}

// Options returns the engine's effective options.
func (e *Engine) Options() Options { return e.opts }

// Plan derives orders and line items without touching the store.
func (e *Engine) Plan(tables []*tabular.Table) (*Plan, error) {
	g := Group(tables)
	if len(g.Keys) == 0 {
		return nil, ErrNoOrders
	}

	p := &Plan{
		Orders:           make([]domain.OrderRecord, 0, len(g.Keys)),
		Items:            make(map[string][]domain.LineItem),
		IgnoredRows:      g.DroppedRows,
		IgnoredFileNames: g.IgnoredFileNames,
	}
	for _, key := range g.Keys {
		rows := g.Rows(key)
		p.Orders = append(p.Orders, DeriveOrder(key, rows, e.opts))

		if len(rows.Items) == 0 {
			continue
		}
		items, dupes := BuildLineItems(rows.Items, e.opts.DedupPolicy)
		for i := range items {
			items[i].OrderKey = key
		}
		p.Items[key] = items
		p.ItemDuplicates += dupes
	}
	return p, nil
}

// Import reconciles one batch of parsed files into the store.
func (e *Engine) Import(ctx context.Context, tenant uuid.UUID, tables []*tabular.Table) (*domain.ImportResult, error) {
	start := time.Now()

	plan, err := e.Plan(tables)
	if err != nil {
		return nil, err
	}
	for i := range plan.Orders {
		plan.Orders[i].TenantID = tenant
	}

	res := &domain.ImportResult{
		UniqueOrders:     len(plan.Orders),
		ItemDuplicates:   plan.ItemDuplicates,
		IgnoredFiles:     len(plan.IgnoredFileNames),
		IgnoredFileNames: plan.IgnoredFileNames,
		IgnoredRows:      plan.IgnoredRows,
	}

	apply := func(s Store) error { return e.persist(ctx, s, tenant, plan, res) }

	if tx, ok := e.store.(TxStore); ok && e.opts.Transactional {
		err = tx.WithinTx(ctx, apply)
	} else {
		err = apply(e.store)
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("tenant", tenant.String()).
		Int("unique_orders", res.UniqueOrders).
		Int("inserted", res.InsertedOrders).
		Int("duplicates", res.DuplicateOrders).
		Int("item_duplicates", res.ItemDuplicates).
		Int("ignored_files", res.IgnoredFiles).
		Int("ignored_rows", res.IgnoredRows).
		Dur("elapsed", time.Since(start)).
		Msg("order import reconciled")

	return res, nil
}

func (e *Engine) persist(ctx context.Context, s Store, tenant uuid.UUID, plan *Plan, res *domain.ImportResult) error {
	refs, err := s.UpsertOrders(ctx, tenant, plan.Orders)
	if err != nil {
		return &PersistError{Step: "upsert orders", Err: err}
	}

	res.InsertedOrders, res.DuplicateOrders = 0, 0
	allIDs := make([]string, 0, len(plan.Orders))
	var (
		replaceIDs []string
		items      []domain.LineItem
		catalogued []domain.LineItem
	)
	for _, o := range plan.Orders {
		ref, ok := refs[o.OrderID]
		if !ok {
			return &PersistError{Step: "upsert orders", Err: fmt.Errorf("no id returned for order %q", o.OrderID)}
		}
		if ref.Inserted {
			res.InsertedOrders++
		} else {
			res.DuplicateOrders++
		}
		allIDs = append(allIDs, ref.ID)

		lines, hasItems := plan.Items[o.OrderID]
		if !hasItems {
			if !e.opts.SummaryPlaceholder || !ref.Inserted {
				continue
			}
			lines = []domain.LineItem{SummaryLine(o)}
		}

		replaceIDs = append(replaceIDs, ref.ID)
		for _, li := range lines {
			li.TenantID = tenant
			li.OrderFK = ref.ID
			items = append(items, li)
			if hasItems {
				catalogued = append(catalogued, li)
			}
		}
	}

	if len(replaceIDs) > 0 {
		if err := s.ReplaceLineItems(ctx, tenant, replaceIDs, items); err != nil {
			return &PersistError{Step: "replace line items", Err: err}
		}
		res.LineItems = len(items)
	}

	if len(catalogued) > 0 {
		created, err := e.ensureVariants(ctx, s, tenant, catalogued)
		if err != nil {
			return err
		}
		res.Variants = created

		if _, err := s.LinkLineItemVariants(ctx, tenant, replaceIDs); err != nil {
			return &PersistError{Step: "link variants", Err: err}
		}
	}

	if err := s.RecalcOrderTotals(ctx, tenant, allIDs); err != nil {
		return &PersistError{Step: "recalculate totals", Err: err}
	}
	return nil
}

func (e *Engine) ensureVariants(ctx context.Context, s Store, tenant uuid.UUID, items []domain.LineItem) (int, error) {
	categoryID, err := s.EnsureDefaultCategory(ctx, tenant)
	if err != nil {
		return 0, &PersistError{Step: "ensure category", Err: err}
	}

	keys := make(map[domain.VariantKey]struct{})
	names := make(map[string]struct{})
	for _, li := range items {
		keys[li.VariantKey()] = struct{}{}
		names[li.ProductName] = struct{}{}
	}

	nameList := make([]string, 0, len(names))
	for n := range names {
		nameList = append(nameList, n)
	}
	sort.Strings(nameList)

	itemIDs, err := s.EnsureExpenseItems(ctx, tenant, categoryID, nameList)
	if err != nil {
		return 0, &PersistError{Step: "ensure expense items", Err: err}
	}

	variants := make([]domain.CostVariant, 0, len(keys))
	for k := range keys {
		itemID, ok := itemIDs[k.ProductName]
		if !ok {
			return 0, &PersistError{Step: "ensure expense items", Err: fmt.Errorf("no id returned for item %q", k.ProductName)}
		}
		_, color := k.SplitColor()
		variants = append(variants, domain.CostVariant{
			TenantID: tenant,
			ItemID:   itemID,
			SKU:      k.SKU,
			Size:     k.Size,
			Color:    domain.StringPtr(color),
		})
	}
	sort.Slice(variants, func(i, j int) bool {
		a, b := variants[i], variants[j]
		if a.ItemID != b.ItemID {
			return a.ItemID < b.ItemID
		}
		if a.SKU != b.SKU {
			return a.SKU < b.SKU
		}
		return a.Size < b.Size
	})

	created, err := s.EnsureCostVariants(ctx, tenant, variants)
	if err != nil {
		return 0, &PersistError{Step: "ensure cost variants", Err: err}
	}
	return created, nil
}
