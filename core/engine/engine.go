// Package engine provides the quote engine.
// API and CLI are thin wrappers around it.
package engine

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"cleanquote/core/calculators"
	"cleanquote/core/determinism"
	"cleanquote/core/pricing"
	"cleanquote/core/types"
	"cleanquote/internal/errors"
	"cleanquote/internal/logging"
)

// SnapshotSource supplies the configuration snapshot a quote is priced
// against. *pricing.Store implements it.
type SnapshotSource interface {
	Snapshot() *pricing.Snapshot
}

// QuoteObserver is told about every finished quote
type QuoteObserver interface {
	ObserveQuote(category, outcome string, elapsed time.Duration)
}

// Engine prices quote requests against the current configuration snapshot
type Engine struct {
	source    SnapshotSource
	observers []QuoteObserver
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithObserver registers a quote observer
func WithObserver(o QuoteObserver) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// NewEngine creates an engine reading snapshots from source
func NewEngine(source SnapshotSource, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		now:    time.Now,
		logger: logging.Named("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Quote is a priced request together with the configuration it was priced
// against
type Quote struct {
	Request     types.QuoteRequest
	Category    types.Category
	Result      types.QuoteResult
	Version     uint64
	ContentHash determinism.ContentHash
}

// Quote prices req against the snapshot current at call time. The whole
// computation reads that one snapshot, so a concurrent configuration write
// never affects an in-flight quote.
func (e *Engine) Quote(ctx context.Context, req types.QuoteRequest) (*Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := e.now()
	quote, err := Price(e.source.Snapshot(), req)
	e.observe(req, err, e.now().Sub(start))

	if err != nil {
		if errors.IsType(err, errors.TypeConfiguration) {
			// Stored configuration is corrupt; validation should have caught it.
			e.logger.Error("configuration error while quoting",
				zap.String("service_category", req.ServiceCategory),
				zap.Error(err))
		}
		return nil, err
	}

	e.logger.Debug("quoted",
		zap.String("category", quote.Category.String()),
		zap.Uint64("version", quote.Version),
		zap.String("total", quote.Result.TotalPrice.String()))
	return quote, nil
}

func (e *Engine) observe(req types.QuoteRequest, err error, elapsed time.Duration) {
	if len(e.observers) == 0 {
		return
	}
	category := "unknown"
	if c, perr := types.ParseCategory(req.ServiceCategory); perr == nil {
		category = c.String()
	}
	outcome := "ok"
	if err != nil {
		outcome = strings.ToLower(string(errors.TypeOf(err)))
	}
	for _, o := range e.observers {
		o.ObserveQuote(category, outcome, elapsed)
	}
}

// Price is the pure quote computation over one snapshot
func Price(snap *pricing.Snapshot, req types.QuoteRequest) (*Quote, error) {
	in, err := calculators.ParseInput(req)
	if err != nil {
		return nil, err
	}

	res, err := Calculate(snap.Settings(), in)
	if err != nil {
		return nil, err
	}

	travel := pricing.ResolveTravel(snap, req.City, req.IsExistingCustomer)

	net := types.RoundMoney(res.Net)
	fee := types.RoundMoney(travel.Fee)
	floored := types.MaxMoney(net, travel.MinOrderValue())

	details := make(types.Details, len(res.Breakdown)+3)
	for k, v := range res.Breakdown {
		details[k] = v
	}
	details["travel_details"] = travel.Details
	if floored.GreaterThan(net) {
		details["min_order_value"] = types.RoundMoney(travel.MinOrderValue())
		details["min_order_adjustment"] = types.RoundMoney(floored.Sub(net))
	}

	return &Quote{
		Request:  req,
		Category: in.Category(),
		Result: types.QuoteResult{
			NetPrice:   net,
			TravelFee:  fee,
			TotalPrice: types.RoundMoney(floored.Add(fee)),
			Details:    details,
		},
		Version:     snap.Version(),
		ContentHash: snap.ContentHash(),
	}, nil
}

// Calculate dispatches to the calculator of the input's category
func Calculate(settings pricing.Settings, in calculators.Input) (calculators.Result, error) {
	switch in := in.(type) {
	case calculators.PVInput:
		return calculators.PV(settings.PV, in)
	case calculators.StairwellInput:
		return calculators.Stairwell(settings.Stairwell, in)
	case calculators.GlassInput:
		return calculators.Glass(settings.Glass, in)
	case calculators.MaintenanceInput:
		return calculators.Maintenance(settings.Maintenance, in)
	default:
		return calculators.Result{}, errors.Newf(errors.TypeInternal, "unhandled quote input %T", in)
	}
}
