package service

import (
	"context"

	"roomhub-commerce-api/internal/cache"
	"roomhub-commerce-api/internal/events"
	"roomhub-commerce-api/internal/repository"
	"roomhub-commerce-api/pkg/apierror"

	"github.com/sirupsen/logrus"
)

// StockEngine is the sole authority over product stock. Every cart and order
// path reserves, releases or adjusts through it; nothing else in the codebase
// touches the stock column.
//
// Methods run inside the caller's transaction and return Mutation records.
// The caller publishes them only after the transaction commits, so an event
// can neither precede nor outlive a rolled-back mutation.
type StockEngine struct {
	products *repository.ProductRepository
}

// NewStockEngine creates the engine.
func NewStockEngine(products *repository.ProductRepository) *StockEngine {
	return &StockEngine{products: products}
}

// Mutation records one committed change to a product's stock.
type Mutation struct {
	ProductID     int64
	PreviousStock int
	NewStock      int
	Reason        string
	OrderID       int64
	ActorID       int64
}

// Reserve deducts qty units from the product's stock, failing with
// InsufficientStock when fewer are available. The deduction is a single
// conditional UPDATE guarded by stock >= qty; the preceding locked read only
// supplies the previous value for the event payload.
func (e *StockEngine) Reserve(ctx context.Context, q repository.Querier, productID int64, qty int, reason string, orderID, actorID int64) (Mutation, error) {
	if qty <= 0 {
		return Mutation{}, apierror.BadRequest("quantity must be positive")
	}

	p, err := e.products.GetForUpdate(ctx, q, productID)
	if err != nil {
		return Mutation{}, err
	}

	ok, err := e.products.ReserveStock(ctx, q, productID, qty)
	if err != nil {
		return Mutation{}, err
	}
	if !ok {
		return Mutation{}, apierror.InsufficientStock(qty, p.Stock)
	}

	return Mutation{
		ProductID:     productID,
		PreviousStock: p.Stock,
		NewStock:      p.Stock - qty,
		Reason:        reason,
		OrderID:       orderID,
		ActorID:       actorID,
	}, nil
}

// Release returns qty units to the product's stock. The caller guarantees
// the quantity was previously reserved by it, so the increment is
// unconditional.
func (e *StockEngine) Release(ctx context.Context, q repository.Querier, productID int64, qty int, reason string, orderID, actorID int64) (Mutation, error) {
	if qty <= 0 {
		return Mutation{}, apierror.BadRequest("quantity must be positive")
	}

	p, err := e.products.GetForUpdate(ctx, q, productID)
	if err != nil {
		return Mutation{}, err
	}

	if err := e.products.ReleaseStock(ctx, q, productID, qty); err != nil {
		return Mutation{}, err
	}

	return Mutation{
		ProductID:     productID,
		PreviousStock: p.Stock,
		NewStock:      p.Stock + qty,
		Reason:        reason,
		OrderID:       orderID,
		ActorID:       actorID,
	}, nil
}

// AdjustReservation reserves for a positive delta, releases for a negative
// one and does nothing for zero. Used when a cart quantity is edited.
func (e *StockEngine) AdjustReservation(ctx context.Context, q repository.Querier, productID int64, delta int, reason string, actorID int64) (Mutation, bool, error) {
	switch {
	case delta > 0:
		m, err := e.Reserve(ctx, q, productID, delta, reason, 0, actorID)
		return m, err == nil, err
	case delta < 0:
		m, err := e.Release(ctx, q, productID, -delta, reason, 0, actorID)
		return m, err == nil, err
	default:
		return Mutation{}, false, nil
	}
}

// publishMutations streams committed stock mutations and invalidates the
// product cache. Runs after commit; failures are logged and swallowed.
func publishMutations(ctx context.Context, pub events.StockPublisher, productCache cache.Cache, log *logrus.Logger, muts []Mutation) {
	for _, m := range muts {
		if productCache != nil {
			if err := productCache.Delete(ctx, cache.ProductKey(m.ProductID)); err != nil {
				log.WithError(err).WithField("product_id", m.ProductID).Warn("failed to invalidate product cache")
			}
		}

		if pub == nil {
			continue
		}
		err := pub.StockChanged(events.StockChanged{
			ProductID:      m.ProductID,
			PreviousStock:  m.PreviousStock,
			NewStock:       m.NewStock,
			Reason:         m.Reason,
			RelatedOrderID: m.OrderID,
			ActorID:        m.ActorID,
		})
		if err != nil {
			log.WithError(err).WithField("product_id", m.ProductID).Warn("failed to publish stock event")
		}
	}
}
