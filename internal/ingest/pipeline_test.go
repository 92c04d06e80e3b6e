package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"catalog-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory RecordStore for pipeline tests.
type fakeStore struct {
	products   map[string]*models.Product
	nextID     int64
	failWrites map[string]string // sku -> injected write error
	calls      []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:   make(map[string]*models.Product),
		failWrites: make(map[string]string),
	}
}

func (f *fakeStore) GetProductBySKU(_ context.Context, sku string) (*models.Product, error) {
	f.calls = append(f.calls, "get:"+sku)
	if p, ok := f.products[sku]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) HandleExists(_ context.Context, handle string) (bool, error) {
	for _, p := range f.products {
		if p.Handle == handle {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) InsertProduct(_ context.Context, p *models.Product) error {
	if reason, ok := f.failWrites[p.SKU]; ok {
		return fmt.Errorf("%s", reason)
	}
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.products[p.SKU] = &cp
	return nil
}

func (f *fakeStore) UpdateProduct(_ context.Context, p *models.Product) error {
	if reason, ok := f.failWrites[p.SKU]; ok {
		return fmt.Errorf("%s", reason)
	}
	cp := *p
	f.products[p.SKU] = &cp
	return nil
}

const testHeader = "sku（必須）,title（必須）,price（必須・数値）,description,status,handle,stock（数値）\n"

func TestRunCountsMalformedRows(t *testing.T) {
	doc := testHeader +
		"A-1,Shirt,1000,,true,,5\n" +
		"A-2,,2000,,true,,\n" + // missing title
		"A-3,Mug,500,,true,,\n" +
		"A-4,Cap,800,,false,,0\n"

	store := newFakeStore()
	p := NewPipeline(store, 0)

	batch, err := p.Prepare(doc)
	require.NoError(t, err)
	require.Len(t, batch.Rows, 3)
	require.Len(t, batch.Failures, 1)

	report := p.Run(context.Background(), batch, "batch-1", nil)
	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "A-2", report.Failures[0].SKU)
	assert.Contains(t, report.Failures[0].Reason, "title")
}

func TestRunForcesZeroStockOnVariantProducts(t *testing.T) {
	store := newFakeStore()
	store.products["VAR-1"] = &models.Product{
		ID: 1, SKU: "VAR-1", Title: "Variant", Handle: "var-1",
		Axes: []models.VariationAxis{{ID: 10, Name: "size"}},
	}

	doc := testHeader + "VAR-1,Variant,1000,,true,,42\n"

	p := NewPipeline(store, 0)
	batch, err := p.Prepare(doc)
	require.NoError(t, err)

	report := p.Run(context.Background(), batch, "batch-1", nil)
	assert.Equal(t, 1, report.Succeeded)

	written := store.products["VAR-1"]
	require.NotNil(t, written.BaseStock)
	assert.Equal(t, 0, *written.BaseStock) // document said 42
}

func TestRunDisambiguatesCollidingHandles(t *testing.T) {
	// Two SKUs that derive the same handle.
	doc := testHeader +
		"TEE 001,First,1000,,true,,\n" +
		"TEE-001,Second,1000,,true,,\n"

	store := newFakeStore()
	p := NewPipeline(store, 0)
	batch, err := p.Prepare(doc)
	require.NoError(t, err)

	report := p.Run(context.Background(), batch, "batch-1", nil)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, "tee-001", store.products["TEE 001"].Handle)
	assert.Equal(t, "tee-001-2", store.products["TEE-001"].Handle)
}

func TestRunContinuesPastWriteFailures(t *testing.T) {
	doc := testHeader +
		"A-1,One,100,,true,,\n" +
		"A-2,Two,200,,true,,\n" +
		"A-3,Three,300,,true,,\n"

	store := newFakeStore()
	store.failWrites["A-2"] = "unique constraint violated"

	p := NewPipeline(store, 0)
	batch, err := p.Prepare(doc)
	require.NoError(t, err)

	report := p.Run(context.Background(), batch, "batch-1", nil)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "A-2", report.Failures[0].SKU)
	assert.Contains(t, report.Failures[0].Reason, "unique constraint violated")

	// A-3 was still attempted after A-2 failed.
	assert.NotNil(t, store.products["A-3"])
}

func TestRunTruncatesFailureList(t *testing.T) {
	var b strings.Builder
	b.WriteString(testHeader)
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&b, "B-%d,,100,,true,,\n", i) // all missing title
	}

	p := NewPipeline(newFakeStore(), 2)
	batch, err := p.Prepare(b.String())
	require.NoError(t, err)

	report := p.Run(context.Background(), batch, "batch-1", nil)
	assert.Equal(t, 5, report.Failed)
	assert.Len(t, report.Failures, 2)
	assert.True(t, report.Truncated)
}

func TestRunNotifiesUpserts(t *testing.T) {
	doc := testHeader + "A-1,One,100,,true,,\n"

	store := newFakeStore()
	p := NewPipeline(store, 0)
	batch, err := p.Prepare(doc)
	require.NoError(t, err)

	var seen []string
	p.Run(context.Background(), batch, "batch-1", func(_ context.Context, prod *models.Product, inserted bool) {
		seen = append(seen, fmt.Sprintf("%s:%v", prod.SKU, inserted))
	})
	assert.Equal(t, []string{"A-1:true"}, seen)
}

func TestRunUpdatesExistingProduct(t *testing.T) {
	store := newFakeStore()
	store.products["A-1"] = &models.Product{
		ID: 7, SKU: "A-1", Title: "Old", Price: 100, Handle: "a-1", IsActive: false,
	}

	doc := testHeader + "A-1,New Title,900,\"line1\nline2\",true,,3\n"

	p := NewPipeline(store, 0)
	batch, err := p.Prepare(doc)
	require.NoError(t, err)

	report := p.Run(context.Background(), batch, "batch-1", nil)
	assert.Equal(t, 1, report.Succeeded)

	got := store.products["A-1"]
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "New Title", got.Title)
	assert.Equal(t, int64(900), got.Price)
	assert.Equal(t, "line1\nline2", got.Description)
	assert.True(t, got.IsActive)
	require.NotNil(t, got.BaseStock)
	assert.Equal(t, 3, *got.BaseStock)
	assert.Equal(t, "a-1", got.Handle)
}

func TestExportImportRoundTrip(t *testing.T) {
	stock := 5
	products := []models.Product{
		{SKU: "A-1", Title: "Shirt", Price: 1000, Description: "line1\nline2, \"quoted\"", IsActive: true, Handle: "a-1", BaseStock: &stock},
		{SKU: "A-2", Title: "Mug", Price: 500, Handle: "a-2"},
	}

	p := NewPipeline(newFakeStore(), 0)
	batch, err := p.Prepare(ExportDocument(products))
	require.NoError(t, err)
	require.Empty(t, batch.Failures)
	require.Len(t, batch.Rows, 2)

	assert.Equal(t, "line1\nline2, \"quoted\"", batch.Rows[0].Description)
	assert.True(t, batch.Rows[0].IsActive)
	require.NotNil(t, batch.Rows[0].Stock)
	assert.Equal(t, 5, *batch.Rows[0].Stock)

	assert.False(t, batch.Rows[1].IsActive)
	assert.Nil(t, batch.Rows[1].Stock) // unlimited survives the round trip
}
