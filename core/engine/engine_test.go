package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleanquote/core/pricing"
	"cleanquote/core/types"
	"cleanquote/internal/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testStore(t *testing.T) *pricing.Store {
	t.Helper()
	koeln := pricing.CityPricing{ID: "koeln", CityName: "Köln", TravelFee: dec("10"),
		MinOrderValue: decimal.NewNullDecimal(dec("80"))}
	bonn := pricing.CityPricing{ID: "bonn", CityName: "Bonn", TravelFee: dec("20"),
		SurchargePercent: decimal.NewNullDecimal(dec("10"))}

	store, err := pricing.NewStore(pricing.DefaultSettings(), []pricing.CityPricing{koeln, bonn}, pricing.SourceDefault)
	require.NoError(t, err)
	return store
}

type recorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recorder) ObserveQuote(category, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, category+"/"+outcome)
}

func TestQuoteScenarios(t *testing.T) {
	e := NewEngine(testStore(t))
	ctx := context.Background()

	tests := []struct {
		name   string
		req    types.QuoteRequest
		net    string
		travel string
		total  string
	}{
		{"pv tier price", types.QuoteRequest{ServiceCategory: "pv", PVModulesCount: 15}, "150", "0", "150"},
		{"stairwell weekly units", types.QuoteRequest{ServiceCategory: "stairwell", Units: 5,
			FrequencyPerMonth: decimal.NewNullDecimal(dec("4"))}, "105", "0", "105"},
		{"glass sqm with frame", types.QuoteRequest{ServiceCategory: "glass", CalculationMethod: "sqm",
			GlassSqmIn: dec("10"), GlassSqmOut: dec("8"), FrameCleaning: true}, "133.4", "0", "133.4"},
		{"travel added", types.QuoteRequest{ServiceCategory: "pv", PVModulesCount: 15, City: "Köln"}, "150", "10", "160"},
		{"travel surcharge", types.QuoteRequest{ServiceCategory: "pv", PVModulesCount: 15, City: "bonn"}, "150", "22", "172"},
		{"min order lifts net", types.QuoteRequest{ServiceCategory: "pv", PVModulesCount: 5, City: "Köln"}, "60", "10", "90"},
		{"existing customer keeps min order", types.QuoteRequest{ServiceCategory: "pv", PVModulesCount: 5, City: "Köln",
			IsExistingCustomer: true}, "60", "0", "80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := e.Quote(ctx, tt.req)
			require.NoError(t, err)
			assert.True(t, q.Result.NetPrice.Equal(dec(tt.net)), "net %s", q.Result.NetPrice)
			assert.True(t, q.Result.TravelFee.Equal(dec(tt.travel)), "travel %s", q.Result.TravelFee)
			assert.True(t, q.Result.TotalPrice.Equal(dec(tt.total)), "total %s", q.Result.TotalPrice)
		})
	}
}

func TestQuoteUnknownCity(t *testing.T) {
	q, err := NewEngine(testStore(t)).Quote(context.Background(),
		types.QuoteRequest{ServiceCategory: "pv", PVModulesCount: 3, City: "Atlantis"})
	require.NoError(t, err)
	assert.True(t, q.Result.TravelFee.IsZero())
	assert.Equal(t, pricing.NoCityPricing, q.Result.Details["travel_details"])
}

func TestQuoteRecordsMinOrderAdjustment(t *testing.T) {
	q, err := NewEngine(testStore(t)).Quote(context.Background(),
		types.QuoteRequest{ServiceCategory: "pv", PVModulesCount: 5, City: "Köln"})
	require.NoError(t, err)
	assert.True(t, dec("80").Equal(q.Result.Details["min_order_value"].(decimal.Decimal)))
	assert.True(t, dec("20").Equal(q.Result.Details["min_order_adjustment"].(decimal.Decimal)))

	q, err = NewEngine(testStore(t)).Quote(context.Background(),
		types.QuoteRequest{ServiceCategory: "pv", PVModulesCount: 20, City: "Köln"})
	require.NoError(t, err)
	assert.NotContains(t, q.Result.Details, "min_order_adjustment")
}

func TestTotalNeverBelowNetOrMinOrder(t *testing.T) {
	store := testStore(t)
	e := NewEngine(store)
	snap := store.Snapshot()

	for n := 0; n <= 40; n++ {
		for _, city := range []string{"Köln", "Bonn", "Nowhere"} {
			for _, existing := range []bool{false, true} {
				q, err := e.Quote(context.Background(), types.QuoteRequest{
					ServiceCategory: "pv", PVModulesCount: n, City: city,
					IsExistingCustomer: existing, IsVeryDirty: n%2 == 0,
				})
				require.NoError(t, err)

				r := q.Result
				assert.True(t, r.TotalPrice.GreaterThanOrEqual(r.NetPrice))
				if c, ok := snap.LookupCity(city); ok && c.MinOrderValue.Valid {
					assert.True(t, r.TotalPrice.GreaterThanOrEqual(c.MinOrderValue.Decimal.Add(r.TravelFee)))
				}
				if existing {
					assert.True(t, r.TravelFee.IsZero())
				}
			}
		}
	}
}

func TestQuoteIsByteIdentical(t *testing.T) {
	e := NewEngine(testStore(t))
	req := types.QuoteRequest{ServiceCategory: "maintenance", MaintenanceSqm: dec("42.5"), City: "Bonn"}

	var outputs []string
	for i := 0; i < 5; i++ {
		q, err := e.Quote(context.Background(), req)
		require.NoError(t, err)
		b, err := json.Marshal(q.Result)
		require.NoError(t, err)
		outputs = append(outputs, string(b))
	}
	for _, out := range outputs[1:] {
		assert.Equal(t, outputs[0], out)
	}
	assert.Contains(t, outputs[0], `"net_price":119`)
}

func TestQuoteErrors(t *testing.T) {
	rec := &recorder{}
	e := NewEngine(testStore(t), WithObserver(rec))
	ctx := context.Background()

	_, err := e.Quote(ctx, types.QuoteRequest{ServiceCategory: "gardening"})
	assert.True(t, errors.IsType(err, errors.TypeUnsupportedCategory))

	_, err = e.Quote(ctx, types.QuoteRequest{ServiceCategory: "maintenance", Extras: []string{"sauna"}})
	assert.True(t, errors.IsType(err, errors.TypeUnknownExtra))

	_, err = e.Quote(ctx, types.QuoteRequest{ServiceCategory: "stairwell", Units: 2,
		FrequencyPerMonth: decimal.NewNullDecimal(dec("3"))})
	assert.True(t, errors.IsType(err, errors.TypeInvalidInput))

	_, err = e.Quote(ctx, types.QuoteRequest{ServiceCategory: "pv"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"unknown/unsupported_category",
		"maintenance/unknown_extra",
		"stairwell/invalid_input",
		"pv/ok",
	}, rec.outcomes)
}

func TestQuoteHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine(testStore(t)).Quote(ctx, types.QuoteRequest{ServiceCategory: "pv"})
	assert.ErrorIs(t, err, context.Canceled)
}

// A quote started before a configuration write finishes on the snapshot it
// started with.
func TestQuotesReadOneSnapshot(t *testing.T) {
	store := testStore(t)
	before := store.Snapshot()

	cfg := pricing.DefaultSettings().PV
	cfg.SurchargeDirtyFix = dec("99")
	_, err := store.ReplacePV(context.Background(), cfg)
	require.NoError(t, err)

	req := types.QuoteRequest{ServiceCategory: "pv", PVModulesCount: 1, IsVeryDirty: true}
	old, err := Price(before, req)
	require.NoError(t, err)
	cur, err := NewEngine(store).Quote(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, old.Result.NetPrice.Equal(dec("27")))
	assert.True(t, cur.Result.NetPrice.Equal(dec("111")))
	assert.Equal(t, before.Version()+1, cur.Version)
}

func TestConcurrentQuotesDuringWrites(t *testing.T) {
	store := testStore(t)
	e := NewEngine(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				q, err := e.Quote(ctx, types.QuoteRequest{ServiceCategory: "glass", GlassCountIn: 2})
				if assert.NoError(t, err) {
					// Either the old or the new window price, never anything else.
					ok := q.Result.NetPrice.Equal(dec("8")) || q.Result.NetPrice.Equal(dec("10"))
					assert.True(t, ok, "net %s", q.Result.NetPrice)
				}
			}
		}()
	}
	for i := 0; i < 10; i++ {
		cfg := pricing.DefaultSettings().Glass
		if i%2 == 0 {
			cfg.PriceWindowIn = dec("5")
		}
		_, err := store.ReplaceGlass(ctx, cfg)
		require.NoError(t, err, fmt.Sprint(i))
	}
	wg.Wait()
}
