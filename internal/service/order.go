package service

import (
	"context"
	"database/sql"
	"errors"

	"roomhub-commerce-api/internal/cache"
	"roomhub-commerce-api/internal/events"
	"roomhub-commerce-api/internal/model"
	"roomhub-commerce-api/internal/repository"
	"roomhub-commerce-api/pkg/apierror"

	"github.com/sirupsen/logrus"
)

// OrderService drives the order state machine. Status changes always resolve
// to the batch's main order and apply to every member, so a multi-product
// checkout moves in lockstep. Rejection and cancellation release each
// member's reserved stock back to its own product.
type OrderService struct {
	repos        *repository.Repositories
	stock        *StockEngine
	stockEvents  events.StockPublisher
	notifier     events.Notifier
	productCache cache.Cache
	log          *logrus.Logger
}

// NewOrderService creates the order service.
func NewOrderService(repos *repository.Repositories, stock *StockEngine, stockEvents events.StockPublisher, notifier events.Notifier, productCache cache.Cache, log *logrus.Logger) *OrderService {
	return &OrderService{
		repos:        repos,
		stock:        stock,
		stockEvents:  stockEvents,
		notifier:     notifier,
		productCache: productCache,
		log:          log,
	}
}

// PlaceDirectOrder is the buy-now path: it reserves stock and creates a
// single pending order, bypassing the cart.
func (s *OrderService) PlaceDirectOrder(ctx context.Context, buyerID, productID int64, qty int, shipping model.Shipping) (*model.Order, error) {
	if qty <= 0 {
		return nil, apierror.BadRequest("quantity must be positive")
	}

	var (
		order model.Order
		muts  []Mutation
	)
	err := s.repos.Store.Tx(ctx, func(tx *sql.Tx) error {
		product, err := s.repos.Products.Get(ctx, tx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("product not found")
			}
			return err
		}
		if product.OwnerID == buyerID {
			return apierror.SelfPurchase()
		}
		if !product.Purchasable() {
			return apierror.ProductInactive()
		}

		m, err := s.stock.Reserve(ctx, tx, productID, qty, events.ReasonPurchase, 0, buyerID)
		if err != nil {
			return err
		}

		order = model.Order{
			ProductID:   productID,
			BuyerID:     buyerID,
			SellerID:    product.OwnerID,
			Quantity:    qty,
			UnitPrice:   product.Price,
			TotalPrice:  product.Price * int64(qty),
			Status:      model.OrderPending,
			PlacedFrom:  model.PlacedFromDirect,
			ShipName:    shipping.Name,
			ShipAddress: shipping.Address,
			ShipPhone:   shipping.Phone,
		}
		if err := s.repos.Orders.Create(ctx, tx, &order); err != nil {
			return err
		}

		m.OrderID = order.ID
		muts = append(muts, m)
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishMutations(ctx, s.stockEvents, s.productCache, s.log, muts)
	s.notify(events.TypeOrderPlaced, order.SellerID, &order, "New order received")
	return &order, nil
}

// Get returns an order visible to the given user (buyer or seller).
func (s *OrderService) Get(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	order, err := s.repos.Orders.Get(ctx, s.repos.Store.DB(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("order not found")
		}
		return nil, err
	}
	if order.BuyerID != userID && order.SellerID != userID {
		return nil, apierror.NotFound("order not found")
	}
	return order, nil
}

// ListForBuyer returns the user's orders, newest first.
func (s *OrderService) ListForBuyer(ctx context.Context, buyerID int64) ([]model.Order, error) {
	return s.repos.Orders.ListByBuyer(ctx, s.repos.Store.DB(), buyerID)
}

// sellerStatuses are the transitions a seller may request. Cancellation
// belongs to the buyer and goes through Cancel.
var sellerStatuses = map[model.OrderStatus]bool{
	model.OrderAccepted:  true,
	model.OrderRejected:  true,
	model.OrderDelivered: true,
}

// UpdateStatus applies a seller-side status change to the whole batch.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID, orderID int64, newStatus model.OrderStatus) ([]model.Order, error) {
	if !newStatus.Valid() || !sellerStatuses[newStatus] {
		return nil, apierror.BadRequest("unknown or disallowed status")
	}

	var (
		batch []model.Order
		muts  []Mutation
	)
	err := s.repos.Store.Tx(ctx, func(tx *sql.Tx) error {
		main, err := s.resolveMain(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if main.SellerID != actorID {
			return apierror.Forbidden("")
		}
		if !model.CanTransition(main.Status, newStatus) {
			return apierror.InvalidTransition(string(main.Status), string(newStatus))
		}

		batch, err = s.repos.Orders.ListBatch(ctx, tx, main.ID)
		if err != nil {
			return err
		}

		if err := s.repos.Orders.UpdateStatusBatch(ctx, tx, main.ID, newStatus); err != nil {
			return err
		}

		if newStatus == model.OrderRejected {
			muts, err = s.releaseBatch(ctx, tx, batch, events.ReasonRejected, actorID)
			if err != nil {
				return err
			}
		}

		for i := range batch {
			batch[i].Status = newStatus
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishMutations(ctx, s.stockEvents, s.productCache, s.log, muts)
	if len(batch) > 0 {
		s.notify(events.TypePaymentStatusChanged, batch[0].BuyerID, &batch[0], "Order status updated")
	}
	return batch, nil
}

// Cancel is the buyer-side exit, legal from pending or accepted. Like
// rejection it propagates batch-wide and returns each member's stock.
func (s *OrderService) Cancel(ctx context.Context, actorID, orderID int64) ([]model.Order, error) {
	var (
		batch []model.Order
		muts  []Mutation
	)
	err := s.repos.Store.Tx(ctx, func(tx *sql.Tx) error {
		main, err := s.resolveMain(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if main.BuyerID != actorID {
			return apierror.Forbidden("")
		}
		if main.Status != model.OrderPending && main.Status != model.OrderAccepted {
			return apierror.NotCancellable(string(main.Status))
		}

		batch, err = s.repos.Orders.ListBatch(ctx, tx, main.ID)
		if err != nil {
			return err
		}

		if err := s.repos.Orders.UpdateStatusBatch(ctx, tx, main.ID, model.OrderCancelled); err != nil {
			return err
		}

		muts, err = s.releaseBatch(ctx, tx, batch, events.ReasonCancelled, actorID)
		if err != nil {
			return err
		}

		for i := range batch {
			batch[i].Status = model.OrderCancelled
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishMutations(ctx, s.stockEvents, s.productCache, s.log, muts)
	if len(batch) > 0 {
		s.notify(events.TypePaymentStatusChanged, batch[0].SellerID, &batch[0], "Order cancelled by buyer")
	}
	return batch, nil
}

// resolveMain loads the order and walks up to the main order of its batch,
// locking the main row for the transaction.
func (s *OrderService) resolveMain(ctx context.Context, tx *sql.Tx, orderID int64) (*model.Order, error) {
	order, err := s.repos.Orders.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("order not found")
		}
		return nil, err
	}
	if order.ParentOrderID == nil {
		return order, nil
	}

	main, err := s.repos.Orders.GetForUpdate(ctx, tx, *order.ParentOrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("order not found")
		}
		return nil, err
	}
	return main, nil
}

// releaseBatch returns each order's quantity to its own product. Each member
// of a batch may reference a different product.
func (s *OrderService) releaseBatch(ctx context.Context, tx *sql.Tx, batch []model.Order, reason string, actorID int64) ([]Mutation, error) {
	muts := make([]Mutation, 0, len(batch))
	for _, o := range batch {
		m, err := s.stock.Release(ctx, tx, o.ProductID, o.Quantity, reason, o.ID, actorID)
		if err != nil {
			return nil, err
		}
		muts = append(muts, m)
	}
	return muts, nil
}

// notify fires one notification event, logging and swallowing any failure.
func (s *OrderService) notify(eventType string, recipientID int64, order *model.Order, message string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(events.Notification{
		Type:        eventType,
		UserID:      recipientID,
		OrderID:     order.ID,
		BatchID:     order.BatchID,
		OrderStatus: string(order.Status),
		Message:     message,
	})
	if err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("failed to publish notification")
	}
}
