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
	"roomhub-commerce-api/pkg/uid"

	"github.com/sirupsen/logrus"
)

// CartService tracks per-user buying intent and owns the hand-off from a
// reservation to committed orders.
type CartService struct {
	repos        *repository.Repositories
	stock        *StockEngine
	stockEvents  events.StockPublisher
	notifier     events.Notifier
	productCache cache.Cache
	log          *logrus.Logger
}

// NewCartService creates the cart service.
func NewCartService(repos *repository.Repositories, stock *StockEngine, stockEvents events.StockPublisher, notifier events.Notifier, productCache cache.Cache, log *logrus.Logger) *CartService {
	return &CartService{
		repos:        repos,
		stock:        stock,
		stockEvents:  stockEvents,
		notifier:     notifier,
		productCache: productCache,
		log:          log,
	}
}

// AddToCart reserves qty units and creates or tops up the (user, product)
// cart line. Self-purchases and inactive products are rejected before any
// stock moves.
func (s *CartService) AddToCart(ctx context.Context, userID, productID int64, qty int) (*model.CartItem, error) {
	if qty <= 0 {
		return nil, apierror.BadRequest("quantity must be positive")
	}

	var (
		item *model.CartItem
		muts []Mutation
	)
	err := s.repos.Store.Tx(ctx, func(tx *sql.Tx) error {
		product, err := s.repos.Products.Get(ctx, tx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("product not found")
			}
			return err
		}
		if product.OwnerID == userID {
			return apierror.SelfPurchase()
		}
		if !product.Purchasable() {
			return apierror.ProductInactive()
		}

		existing, err := s.repos.Carts.GetByUserProduct(ctx, tx, userID, productID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		reason := events.ReasonCartReserved
		if existing != nil {
			reason = events.ReasonCartIncreased
		}

		// Only the incremental amount is reserved; prior units of the line
		// were already deducted when they entered the cart.
		m, err := s.stock.Reserve(ctx, tx, productID, qty, reason, 0, userID)
		if err != nil {
			return err
		}
		muts = append(muts, m)

		if existing == nil {
			item = &model.CartItem{
				UserID:        userID,
				ProductID:     productID,
				Quantity:      qty,
				ReservedStock: qty,
			}
			return s.repos.Carts.Create(ctx, tx, item)
		}

		existing.Quantity += qty
		existing.ReservedStock += qty
		item = existing
		return s.repos.Carts.UpdateQuantities(ctx, tx, existing.ID, existing.Quantity, existing.ReservedStock)
	})
	if err != nil {
		return nil, err
	}

	publishMutations(ctx, s.stockEvents, s.productCache, s.log, muts)
	return item, nil
}

// UpdateQuantity edits a cart line to a new quantity, adjusting the
// reservation by the difference.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, cartItemID int64, newQty int) (*model.CartItem, error) {
	if newQty <= 0 {
		return nil, apierror.BadRequest("quantity must be positive")
	}

	var (
		item *model.CartItem
		muts []Mutation
	)
	err := s.repos.Store.Tx(ctx, func(tx *sql.Tx) error {
		existing, err := s.repos.Carts.Get(ctx, tx, cartItemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("cart item not found")
			}
			return err
		}
		if existing.UserID != userID {
			return apierror.NotFound("cart item not found")
		}

		delta := newQty - existing.Quantity
		reason := events.ReasonCartIncreased
		if delta < 0 {
			reason = events.ReasonCartDecreased
		}

		m, changed, err := s.stock.AdjustReservation(ctx, tx, existing.ProductID, delta, reason, userID)
		if err != nil {
			return err
		}
		if changed {
			muts = append(muts, m)
		}

		existing.Quantity = newQty
		existing.ReservedStock += delta
		item = existing
		return s.repos.Carts.UpdateQuantities(ctx, tx, existing.ID, existing.Quantity, existing.ReservedStock)
	})
	if err != nil {
		return nil, err
	}

	publishMutations(ctx, s.stockEvents, s.productCache, s.log, muts)
	return item, nil
}

// RemoveItem releases the line's reservation and deletes it.
func (s *CartService) RemoveItem(ctx context.Context, userID, cartItemID int64) error {
	var muts []Mutation
	err := s.repos.Store.Tx(ctx, func(tx *sql.Tx) error {
		item, err := s.repos.Carts.Get(ctx, tx, cartItemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("cart item not found")
			}
			return err
		}
		if item.UserID != userID {
			return apierror.NotFound("cart item not found")
		}

		if item.ReservedStock > 0 {
			m, err := s.stock.Release(ctx, tx, item.ProductID, item.ReservedStock, events.ReasonCartReleased, 0, userID)
			if err != nil {
				return err
			}
			muts = append(muts, m)
		}
		return s.repos.Carts.Delete(ctx, tx, item.ID)
	})
	if err != nil {
		return err
	}

	publishMutations(ctx, s.stockEvents, s.productCache, s.log, muts)
	return nil
}

// ClearCart releases every line's reservation and empties the cart.
func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	var muts []Mutation
	err := s.repos.Store.Tx(ctx, func(tx *sql.Tx) error {
		items, err := s.repos.Carts.ListByUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		for _, item := range items {
			if item.ReservedStock == 0 {
				continue
			}
			m, err := s.stock.Release(ctx, tx, item.ProductID, item.ReservedStock, events.ReasonCartCleared, 0, userID)
			if err != nil {
				return err
			}
			muts = append(muts, m)
		}
		return s.repos.Carts.DeleteByUser(ctx, tx, userID)
	})
	if err != nil {
		return err
	}

	publishMutations(ctx, s.stockEvents, s.productCache, s.log, muts)
	return nil
}

// ListItems returns the user's cart lines.
func (s *CartService) ListItems(ctx context.Context, userID int64) ([]model.CartItem, error) {
	return s.repos.Carts.ListByUser(ctx, s.repos.Store.DB(), userID)
}

// CheckoutResult is what a successful checkout returns.
type CheckoutResult struct {
	Orders      []model.Order `json:"orders"`
	TotalAmount int64         `json:"total_amount"`
	MainOrderID int64         `json:"main_order_id"`
	BatchID     string        `json:"batch_id,omitempty"`
}

// Checkout converts every cart line into a pending order inside one
// transaction. The reservations were made at add-time, so no stock is
// re-deducted here; only a line whose reserved_stock trails its quantity
// (residue of a failed top-up) gets the shortfall reserved, and any failure
// aborts the whole checkout. Multi-product checkouts share a batch id with
// the first order as the main order.
func (s *CartService) Checkout(ctx context.Context, userID int64, shipping model.Shipping) (*CheckoutResult, error) {
	var (
		result CheckoutResult
		muts   []Mutation
	)
	err := s.repos.Store.Tx(ctx, func(tx *sql.Tx) error {
		items, err := s.repos.Carts.ListByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return apierror.BadRequest("cart is empty")
		}

		batchID := ""
		if len(items) > 1 {
			batchID = uid.New()
		}

		var mainID int64
		for _, item := range items {
			product, err := s.repos.Products.GetForUpdate(ctx, tx, item.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apierror.NotFound("product no longer exists")
				}
				return err
			}
			if !product.Purchasable() {
				return apierror.ProductInactive()
			}

			if shortfall := item.Shortfall(); shortfall > 0 {
				m, err := s.stock.Reserve(ctx, tx, product.ID, shortfall, events.ReasonCartReserved, 0, userID)
				if err != nil {
					return err
				}
				muts = append(muts, m)
			}

			order := model.Order{
				ProductID:   product.ID,
				BuyerID:     userID,
				SellerID:    product.OwnerID,
				Quantity:    item.Quantity,
				UnitPrice:   product.Price,
				TotalPrice:  product.Price * int64(item.Quantity),
				Status:      model.OrderPending,
				BatchID:     batchID,
				PlacedFrom:  model.PlacedFromCart,
				ShipName:    shipping.Name,
				ShipAddress: shipping.Address,
				ShipPhone:   shipping.Phone,
			}
			if mainID != 0 {
				parent := mainID
				order.ParentOrderID = &parent
			}
			if err := s.repos.Orders.Create(ctx, tx, &order); err != nil {
				return err
			}
			if mainID == 0 {
				mainID = order.ID
			}

			result.Orders = append(result.Orders, order)
			result.TotalAmount += order.TotalPrice
		}

		result.MainOrderID = mainID
		result.BatchID = batchID

		// The reservation is consumed into the orders; the cart rows go away.
		return s.repos.Carts.DeleteByUser(ctx, tx, userID)
	})
	if err != nil {
		return nil, err
	}

	publishMutations(ctx, s.stockEvents, s.productCache, s.log, muts)
	s.notifyOrderPlaced(userID, &result)
	return &result, nil
}

// notifyOrderPlaced fires the order-placed notification. Fire-and-forget:
// a delivery failure never fails the checkout.
func (s *CartService) notifyOrderPlaced(buyerID int64, result *CheckoutResult) {
	if s.notifier == nil {
		return
	}
	for _, o := range result.Orders {
		err := s.notifier.Notify(events.Notification{
			Type:        events.TypeOrderPlaced,
			UserID:      o.SellerID,
			OrderID:     o.ID,
			BatchID:     o.BatchID,
			OrderStatus: string(o.Status),
			Message:     "New order received",
		})
		if err != nil {
			s.log.WithError(err).WithField("order_id", o.ID).Warn("failed to publish order notification")
		}
	}
}
