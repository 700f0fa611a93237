package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricelens/models"
	"pricelens/repository"
)

type fakeFetcher struct {
	html  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.html, nil
}

const productPage = `<html><body>
	<h1>Acme Widget</h1>
	<div><span class="price">$19.99</span></div>
</body></html>`

func TestOrchestratorLearnsOnceThenUsesCache(t *testing.T) {
	fetch := &fakeFetcher{html: productPage}
	service := &scriptedLLM{responses: []string{"NAME: h1\nPRICE: .price"}}
	store := repository.NewMemorySelectorStore()

	o := NewOrchestrator(fetch, store, service, "USD")

	record, err := o.ExtractProduct(context.Background(), "https://shop.example.com/products/1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Widget", record.Name)
	assert.InDelta(t, 19.99, record.Price, 0.001)
	assert.Equal(t, "USD", record.Currency)
	assert.False(t, record.AIVerified)
	assert.Equal(t, 1, service.calls)
	assert.Equal(t, 1, store.Len())

	pair, found, err := store.Get("shop.example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, ".price", pair.PriceLocator)

	// Second call for the same domain must reuse the stored pair without
	// another detection round trip.
	record, err = o.ExtractProduct(context.Background(), "https://shop.example.com/products/2")
	require.NoError(t, err)
	assert.InDelta(t, 19.99, record.Price, 0.001)
	assert.Equal(t, 1, service.calls)
}

func TestOrchestratorRelearnsWhenCachedPriceLooksLikeRating(t *testing.T) {
	html := `<html><body>
		<div class="info"><div class="t">Gadget</div><div><span class="r">4.6</span></div></div>
		<div class="buy"><div><span class="price">$29.99</span></div></div>
	</body></html>`

	fetch := &fakeFetcher{html: html}
	service := &scriptedLLM{responses: []string{"NAME: .t\nPRICE: .price"}}
	store := repository.NewMemorySelectorStore()
	require.NoError(t, store.Upsert("shop.example.com", models.LocatorPair{NameLocator: ".t", PriceLocator: ".r"}))

	o := NewOrchestrator(fetch, store, service, "USD")

	record, err := o.ExtractProduct(context.Background(), "https://shop.example.com/products/3")
	require.NoError(t, err)
	assert.Equal(t, "Gadget", record.Name)
	assert.InDelta(t, 29.99, record.Price, 0.001)
	assert.Equal(t, 1, service.calls)

	// The relearned pair replaced the stale one.
	pair, found, err := store.Get("shop.example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, ".price", pair.PriceLocator)
}

func TestOrchestratorFallsBackToAIAndMergesFields(t *testing.T) {
	html := `<html><body><h1>Mystery Item</h1><p>Contact us for pricing</p></body></html>`

	fetch := &fakeFetcher{html: html}
	service := &scriptedLLM{responses: []string{
		"NAME: h1\nPRICE: .price",
		`{"name":"","brand":"","price":49.5,"currency":"usd"}`,
	}}
	store := repository.NewMemorySelectorStore()

	o := NewOrchestrator(fetch, store, service, "USD")

	record, err := o.ExtractProduct(context.Background(), "https://shop.example.com/products/4")
	require.NoError(t, err)
	assert.True(t, record.AIVerified)
	assert.InDelta(t, 49.5, record.Price, 0.001)
	assert.Equal(t, "USD", record.Currency)
	// Name recovered by the locator tier survives the merge.
	assert.Equal(t, "Mystery Item", record.Name)

	// The detected pair is still persisted even though it found no price.
	_, found, err := store.Get("shop.example.com")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestOrchestratorAppliesDefaultCurrency(t *testing.T) {
	html := `<html><body>
		<h1>Plain Item</h1>
		<div><span class="price">19.99</span></div>
	</body></html>`

	fetch := &fakeFetcher{html: html}
	service := &scriptedLLM{responses: []string{"NAME: h1\nPRICE: .price"}}

	o := NewOrchestrator(fetch, repository.NewMemorySelectorStore(), service, "EUR")

	record, err := o.ExtractProduct(context.Background(), "https://shop.example.com/products/5")
	require.NoError(t, err)
	assert.Equal(t, "EUR", record.Currency)
}

func TestOrchestratorPropagatesFetchError(t *testing.T) {
	fetchErr := &models.FetchError{URL: "https://down.example.com", Err: errors.New("timeout")}
	o := NewOrchestrator(&fakeFetcher{err: fetchErr}, repository.NewMemorySelectorStore(), &scriptedLLM{}, "USD")

	_, err := o.ExtractProduct(context.Background(), "https://down.example.com/p/1")
	var fe *models.FetchError
	assert.ErrorAs(t, err, &fe)
}

func TestOrchestratorRejectsInvalidURL(t *testing.T) {
	o := NewOrchestrator(&fakeFetcher{}, repository.NewMemorySelectorStore(), &scriptedLLM{}, "USD")

	_, err := o.ExtractProduct(context.Background(), "::not-a-url")
	var fe *models.FetchError
	assert.ErrorAs(t, err, &fe)
}

func TestOrchestratorSurfacesAIFailure(t *testing.T) {
	html := `<html><body><h1>Mystery Item</h1><p>Contact us for pricing</p></body></html>`

	o := NewOrchestrator(&fakeFetcher{html: html}, repository.NewMemorySelectorStore(), &scriptedLLM{err: errors.New("service down")}, "USD")

	_, err := o.ExtractProduct(context.Background(), "https://shop.example.com/products/6")
	assert.ErrorIs(t, err, models.ErrAIExtraction)
}
