package posting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/id"
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/registers/stock"
)

// noopTx runs the function directly; the engine's transactional
// behavior is covered by the postgres TxManager.
type noopTx struct{}

func (noopTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryStockRepo struct {
	records   map[string]entity.StockRecord
	movements []entity.StockMovement
}

func newMemoryStockRepo() *memoryStockRepo {
	return &memoryStockRepo{records: make(map[string]entity.StockRecord)}
}

func (r *memoryStockRepo) key(itemCode, batch string) string { return itemCode + "|" + batch }

func (r *memoryStockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *memoryStockRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	kept := r.movements[:0]
	for _, m := range r.movements {
		if m.RecorderID == recorderID && m.RecorderVersion < beforeVersion {
			continue
		}
		kept = append(kept, m)
	}
	r.movements = kept
	return nil
}

func (r *memoryStockRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range r.movements {
		if m.RecorderID == recorderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryStockRepo) GetRecord(ctx context.Context, itemCode, batch string) (entity.StockRecord, error) {
	if rec, ok := r.records[r.key(itemCode, batch)]; ok {
		return rec, nil
	}
	return entity.StockRecord{}, errors.New("record not found")
}

func (r *memoryStockRepo) GetRecordForUpdate(ctx context.Context, itemCode, batch string) (entity.StockRecord, error) {
	return r.GetRecord(ctx, itemCode, batch)
}

func (r *memoryStockRepo) InsertRecord(ctx context.Context, rec entity.StockRecord) error {
	r.records[r.key(rec.ItemCode, rec.Batch)] = rec
	return nil
}

func (r *memoryStockRepo) UpdateRecord(ctx context.Context, rec entity.StockRecord) error {
	r.records[r.key(rec.ItemCode, rec.Batch)] = rec
	return nil
}

func (r *memoryStockRepo) AddQuantity(ctx context.Context, itemCode, batch string, delta types.Quantity) (types.Quantity, error) {
	rec, ok := r.records[r.key(itemCode, batch)]
	if !ok {
		return 0, errors.New("record not found")
	}
	rec.Quantity += delta
	r.records[r.key(itemCode, batch)] = rec
	return rec.Quantity, nil
}

func (r *memoryStockRepo) ListRecords(ctx context.Context, filter stock.RecordFilter) ([]entity.StockRecord, error) {
	var out []entity.StockRecord
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out, nil
}

func (r *memoryStockRepo) GetMovementHistory(ctx context.Context, itemCode string, filter stock.MovementFilter) ([]entity.StockMovement, error) {
	return nil, nil
}

func (r *memoryStockRepo) GetExpiring(ctx context.Context, cutoff time.Time) ([]entity.StockRecord, error) {
	return nil, nil
}

func (r *memoryStockRepo) GetBelowReorder(ctx context.Context) ([]entity.StockRecord, error) {
	return nil, nil
}

// saleDoc is a minimal postable document issuing one expense delta.
type saleDoc struct {
	id            id.ID
	date          time.Time
	posted        bool
	postedVersion int
	quantity      types.Quantity
}

func newSaleDoc(qty types.Quantity) *saleDoc {
	return &saleDoc{id: id.New(), date: time.Now().UTC(), quantity: qty}
}

func (d *saleDoc) GetID() id.ID                     { return d.id }
func (d *saleDoc) GetDocumentType() string          { return "SalesInvoice" }
func (d *saleDoc) GetDate() time.Time               { return d.date }
func (d *saleDoc) GetPostedVersion() int            { return d.postedVersion }
func (d *saleDoc) IsPosted() bool                   { return d.posted }
func (d *saleDoc) CanPost(ctx context.Context) error { return nil }

func (d *saleDoc) MarkPosted() {
	d.posted = true
	d.postedVersion++
}

func (d *saleDoc) MarkUnposted() { d.posted = false }

func (d *saleDoc) GenerateDeltas(ctx context.Context, lookup stock.Lookup) ([]stock.Delta, error) {
	_, found := lookup.Lookup("A1", "B1")
	return []stock.Delta{{
		ItemCode:       "A1",
		Batch:          "B1",
		QuantityChange: -d.quantity,
		Unresolved:     !found,
		LineNo:         1,
	}}, nil
}

// recordingSink captures published events.
type recordingSink struct {
	posted   []string
	unposted []string
	fail     bool
}

func (s *recordingSink) DocumentPosted(ctx context.Context, doc Postable, result *Result) error {
	if s.fail {
		return errors.New("sink unavailable")
	}
	s.posted = append(s.posted, doc.GetDocumentType())
	return nil
}

func (s *recordingSink) DocumentUnposted(ctx context.Context, doc Postable) error {
	if s.fail {
		return errors.New("sink unavailable")
	}
	s.unposted = append(s.unposted, doc.GetDocumentType())
	return nil
}

func seededEngine(t *testing.T, qty types.Quantity) (*Engine, *memoryStockRepo, *recordingSink) {
	t.Helper()
	repo := newMemoryStockRepo()
	repo.records["A1|B1"] = entity.StockRecord{ItemCode: "A1", Batch: "B1", Quantity: qty}
	sink := &recordingSink{}
	engine := NewEngine(stock.NewService(repo), OpenPolicy{}, noopTx{}).WithEvents(sink)
	return engine, repo, sink
}

func TestPost_AppliesDeltasAndPublishes(t *testing.T) {
	engine, repo, sink := seededEngine(t, 100)
	doc := newSaleDoc(5)

	updated := false
	result, err := engine.Post(context.Background(), doc, func(ctx context.Context) error {
		updated = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, doc.IsPosted())
	assert.True(t, updated, "document must be persisted inside the posting transaction")
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, stock.OutcomeApplied, result.Outcomes[0].Status)
	assert.Equal(t, types.Quantity(95), repo.records["A1|B1"].Quantity)
	assert.Equal(t, []string{"SalesInvoice"}, sink.posted)
}

func TestPost_UnresolvedLineWarnsButPosts(t *testing.T) {
	repo := newMemoryStockRepo() // no records at all
	sink := &recordingSink{}
	engine := NewEngine(stock.NewService(repo), OpenPolicy{}, noopTx{}).WithEvents(sink)
	doc := newSaleDoc(3)

	result, err := engine.Post(context.Background(), doc, func(ctx context.Context) error { return nil })

	require.NoError(t, err)
	assert.True(t, doc.IsPosted())
	require.Len(t, result.Warnings, 1)
	assert.Empty(t, repo.movements, "no movement for the unresolved line")
}

func TestPost_ClosedPeriodRejected(t *testing.T) {
	repo := newMemoryStockRepo()
	closedUntil := time.Now().UTC().Add(24 * time.Hour)
	engine := NewEngine(stock.NewService(repo), NewStrictPolicy(closedUntil), noopTx{})
	doc := newSaleDoc(1)

	_, err := engine.Post(context.Background(), doc, func(ctx context.Context) error { return nil })

	require.Error(t, err)
	assert.False(t, doc.IsPosted())
}

func TestPost_RepostReversesPreviousVersion(t *testing.T) {
	engine, repo, _ := seededEngine(t, 100)
	doc := newSaleDoc(5)
	ctx := context.Background()

	_, err := engine.Post(ctx, doc, func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	require.Equal(t, types.Quantity(95), repo.records["A1|B1"].Quantity)

	// Edit the quantity and post again: register reflects one iteration.
	doc.quantity = 10
	_, err = engine.Post(ctx, doc, func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, types.Quantity(90), repo.records["A1|B1"].Quantity)
	assert.Len(t, repo.movements, 1, "previous version's movements are replaced")
	assert.Equal(t, 2, doc.GetPostedVersion())
}

func TestPost_SinkFailureAbortsPosting(t *testing.T) {
	engine, _, sink := seededEngine(t, 100)
	sink.fail = true
	doc := newSaleDoc(5)

	_, err := engine.Post(context.Background(), doc, func(ctx context.Context) error { return nil })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish posted event")
}

func TestUnpost_ReversesAndPublishes(t *testing.T) {
	engine, repo, sink := seededEngine(t, 100)
	doc := newSaleDoc(5)
	ctx := context.Background()

	_, err := engine.Post(ctx, doc, func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	err = engine.Unpost(ctx, doc, func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	assert.False(t, doc.IsPosted())
	assert.Equal(t, types.Quantity(100), repo.records["A1|B1"].Quantity)
	assert.Empty(t, repo.movements)
	assert.Equal(t, []string{"SalesInvoice"}, sink.unposted)
}

// invoiceDoc runs posting through the real entity.Document version
// discipline instead of a hand-rolled fake.
type invoiceDoc struct {
	entity.Document
	quantity types.Quantity
}

func newInvoiceDoc(qty types.Quantity) *invoiceDoc {
	return &invoiceDoc{Document: entity.NewDocument(), quantity: qty}
}

func (d *invoiceDoc) GetDocumentType() string { return "SalesInvoice" }

func (d *invoiceDoc) GenerateDeltas(ctx context.Context, lookup stock.Lookup) ([]stock.Delta, error) {
	_, found := lookup.Lookup("A1", "B1")
	return []stock.Delta{{
		ItemCode:       "A1",
		Batch:          "B1",
		QuantityChange: -d.quantity,
		Unresolved:     !found,
		LineNo:         1,
	}}, nil
}

// versionedStore persists like the document repo: the UPDATE matches only
// while the document's version equals the stored row's, and the row's
// version is then bumped server-side.
type versionedStore struct {
	version int
}

func (s *versionedStore) update(doc *invoiceDoc) error {
	if doc.Version != s.version {
		return apperror.NewConcurrentModification("doc_sales_invoices", doc.GetID())
	}
	s.version++
	return nil
}

func TestPost_VersionStaysInStepWithStoredRow(t *testing.T) {
	engine, _, _ := seededEngine(t, 100)
	doc := newInvoiceDoc(5)
	store := &versionedStore{version: doc.Version}
	ctx := context.Background()

	_, err := engine.Post(ctx, doc, func(ctx context.Context) error { return store.update(doc) })

	require.NoError(t, err)
	assert.True(t, doc.IsPosted())
	assert.Equal(t, 1, doc.GetPostedVersion())

	// The service reloads before unposting; model that with the row state.
	doc.SetVersion(store.version)
	err = engine.Unpost(ctx, doc, func(ctx context.Context) error { return store.update(doc) })
	require.NoError(t, err)
	assert.False(t, doc.IsPosted())

	// And a repost after another reload.
	doc.SetVersion(store.version)
	_, err = engine.Post(ctx, doc, func(ctx context.Context) error { return store.update(doc) })
	require.NoError(t, err)
	assert.Equal(t, 2, doc.GetPostedVersion())
}

func TestUnpost_NotPostedRejected(t *testing.T) {
	engine, _, _ := seededEngine(t, 100)
	doc := newSaleDoc(5)

	err := engine.Unpost(context.Background(), doc, func(ctx context.Context) error { return nil })

	require.Error(t, err)
}
