package variation

import (
	"testing"

	"catalog-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func simpleProduct(baseStock *int) *models.Product {
	return &models.Product{ID: 1, SKU: "TEE-001", Price: 1000, BaseStock: baseStock}
}

func variantProduct() *models.Product {
	return &models.Product{
		ID:        1,
		SKU:       "TEE-001",
		Price:     1000,
		BaseStock: intPtr(99), // must never be consulted once axes exist
		Axes: []models.VariationAxis{
			{
				ID:        10,
				Name:      "size",
				StockMode: models.StockModeIndividual,
				Options: []models.Option{
					{ID: 101, Label: "small", StockCount: intPtr(5)},
					{ID: 102, Label: "medium", StockCount: intPtr(0)},
					{ID: 103, Label: "large"},
				},
			},
			{
				ID:        20,
				Name:      "packaging",
				StockMode: models.StockModeIndividual,
				Options: []models.Option{
					{ID: 201, Label: "box", PriceAdjustment: 200, StockCount: intPtr(3)},
					{ID: 202, Label: "bag", PriceAdjustment: -100},
				},
			},
		},
	}
}

func TestResolveStockNoAxes(t *testing.T) {
	p := simpleProduct(intPtr(7))

	// Selection content is irrelevant without axes.
	for _, sel := range []models.Selection{nil, {}, {10: 101}} {
		c := ResolveStock(p, sel)
		assert.False(t, c.Unlimited)
		assert.Equal(t, 7, c.Limit)
	}

	c := ResolveStock(simpleProduct(nil), models.Selection{10: 101})
	assert.True(t, c.Unlimited)
}

func TestResolveStockIgnoresBaseStockWithAxes(t *testing.T) {
	p := variantProduct()

	// No selected axis contributes a constraint: unlimited, not BaseStock.
	c := ResolveStock(p, models.Selection{})
	assert.True(t, c.Unlimited)

	c = ResolveStock(p, models.Selection{10: 103})
	assert.True(t, c.Unlimited)
}

func TestResolveStockZeroVsAbsent(t *testing.T) {
	p := variantProduct()

	// Zero stock is a real constraint, not "unlimited".
	c := ResolveStock(p, models.Selection{10: 102})
	assert.False(t, c.Unlimited)
	assert.Equal(t, 0, c.Limit)

	// An option without a stock count does not constrain at all.
	c = ResolveStock(p, models.Selection{10: 103})
	assert.True(t, c.Unlimited)
}

func TestResolveStockMinimumAcrossAxes(t *testing.T) {
	p := variantProduct()

	c := ResolveStock(p, models.Selection{10: 101, 20: 201})
	assert.Equal(t, 3, c.Limit)

	// Axis order must not matter; flip the axes and resolve again.
	p.Axes[0], p.Axes[1] = p.Axes[1], p.Axes[0]
	c = ResolveStock(p, models.Selection{10: 101, 20: 201})
	assert.Equal(t, 3, c.Limit)
}

func TestResolveStockSharedPool(t *testing.T) {
	p := variantProduct()
	p.Axes[0].SharedPool = intPtr(2)

	// The pool overrides every option count, whichever option is picked.
	for _, opt := range []int64{101, 102, 103} {
		c := ResolveStock(p, models.Selection{10: opt})
		assert.Equal(t, 2, c.Limit)
	}
}

func TestResolveStockNoneModeSkipped(t *testing.T) {
	p := variantProduct()
	p.Axes[0].StockMode = models.StockModeNone

	c := ResolveStock(p, models.Selection{10: 101})
	assert.True(t, c.Unlimited)
}

func TestResolvePrice(t *testing.T) {
	p := variantProduct()

	assert.Equal(t, int64(1000), ResolvePrice(p, models.Selection{}))
	assert.Equal(t, int64(1200), ResolvePrice(p, models.Selection{10: 101, 20: 201}))
	assert.Equal(t, int64(900), ResolvePrice(p, models.Selection{20: 202}))
	assert.Equal(t, int64(1100), ResolvePrice(p, models.Selection{10: 101, 20: 201, 99: 1})) // unknown axis ignored

	p.Price = 50
	p.Axes[1].Options[1].PriceAdjustment = -100
	assert.Equal(t, int64(-50), ResolvePrice(p, models.Selection{20: 202})) // not clamped
}

func TestCheckAvailabilityUnlimited(t *testing.T) {
	p := simpleProduct(nil)

	res, err := CheckAvailability(p, nil, 1000, 0)
	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Empty(t, res.Message)
}

func TestCheckAvailabilityAgainstReservation(t *testing.T) {
	p := simpleProduct(intPtr(3))

	res, err := CheckAvailability(p, nil, 2, 2)
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, 1, res.Remaining)
	assert.Contains(t, res.Message, "残り1点")
}

func TestCheckAvailabilityExactFit(t *testing.T) {
	p := simpleProduct(intPtr(3))

	res, err := CheckAvailability(p, nil, 1, 2)
	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Equal(t, 1, res.Remaining)
}

func TestCheckAvailabilityOutOfStockMessage(t *testing.T) {
	zero := variantProduct()
	res, err := CheckAvailability(zero, models.Selection{10: 102}, 1, 0)
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, "この商品は在庫切れです。", res.Message)

	// Reservation eating the whole ceiling hits the same variant.
	p := simpleProduct(intPtr(2))
	res, err = CheckAvailability(p, nil, 1, 2)
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, "この商品は在庫切れです。", res.Message)
}

func TestCheckAvailabilityCallerContract(t *testing.T) {
	p := simpleProduct(intPtr(3))

	_, err := CheckAvailability(p, nil, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = CheckAvailability(p, nil, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = CheckAvailability(p, nil, 1, -1)
	assert.ErrorIs(t, err, ErrInvalidReserved)
}

func TestUncoveredConstrainedAxes(t *testing.T) {
	p := variantProduct()

	names := UncoveredConstrainedAxes(p, models.Selection{10: 101})
	assert.Equal(t, []string{"packaging"}, names)

	p.Axes[1].StockMode = models.StockModeNone
	assert.Empty(t, UncoveredConstrainedAxes(p, models.Selection{10: 101}))
}
