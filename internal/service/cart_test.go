package service

import (
	"context"
	"testing"

	"roomhub-commerce-api/internal/model"
	"roomhub-commerce-api/pkg/apierror"
)

func TestAddToCartReservesAndTopsUp(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller", 0)
	buyer := env.createUser(t, "buyer", 0)
	room := env.createRoom(t, seller.ID)
	product := env.createProduct(t, room.ID, seller.ID, 100, 10)

	ctx := context.Background()
	item, err := env.carts.AddToCart(ctx, buyer.ID, product.ID, 3)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if item.Quantity != 3 || item.ReservedStock != 3 {
		t.Errorf("item = qty %d reserved %d, want 3/3", item.Quantity, item.ReservedStock)
	}

	// Adding the same product again tops up the existing line.
	item, err = env.carts.AddToCart(ctx, buyer.ID, product.ID, 2)
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if item.Quantity != 5 || item.ReservedStock != 5 {
		t.Errorf("item = qty %d reserved %d, want 5/5", item.Quantity, item.ReservedStock)
	}

	items, err := env.carts.ListItems(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("lines = %d, want 1", len(items))
	}
	if got := env.productStock(t, product.ID); got != 5 {
		t.Errorf("stock = %d, want 5", got)
	}
}

func TestAddToCartRejectsSelfPurchase(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller", 0)
	room := env.createRoom(t, seller.ID)
	product := env.createProduct(t, room.ID, seller.ID, 100, 10)

	_, err := env.carts.AddToCart(context.Background(), seller.ID, product.ID, 1)
	if !apierror.Is(err, apierror.CodeSelfPurchase) {
		t.Fatalf("err = %v, want SELF_PURCHASE", err)
	}
}

func TestAddToCartRejectsInactiveProduct(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller", 0)
	buyer := env.createUser(t, "buyer", 0)
	room := env.createRoom(t, seller.ID)
	product := env.createProduct(t, room.ID, seller.ID, 100, 10)

	ctx := context.Background()
	if err := env.repos.Products.UpdateStatus(ctx, env.repos.Store.DB(), product.ID, model.ProductInactive); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := env.carts.AddToCart(ctx, buyer.ID, product.ID, 1)
	if !apierror.Is(err, apierror.CodeProductInactive) {
		t.Fatalf("err = %v, want PRODUCT_INACTIVE", err)
	}
	if got := env.productStock(t, product.ID); got != 10 {
		t.Errorf("stock = %d, want 10", got)
	}
}

func TestUpdateQuantityAdjustsReservation(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller", 0)
	buyer := env.createUser(t, "buyer", 0)
	room := env.createRoom(t, seller.ID)
	product := env.createProduct(t, room.ID, seller.ID, 100, 10)

	ctx := context.Background()
	item, err := env.carts.AddToCart(ctx, buyer.ID, product.ID, 4)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	item, err = env.carts.UpdateQuantity(ctx, buyer.ID, item.ID, 2)
	if err != nil {
		t.Fatalf("shrink: %v", err)
	}
	if item.Quantity != 2 || item.ReservedStock != 2 {
		t.Errorf("item = qty %d reserved %d, want 2/2", item.Quantity, item.ReservedStock)
	}
	if got := env.productStock(t, product.ID); got != 8 {
		t.Errorf("stock after shrink = %d, want 8", got)
	}

	item, err = env.carts.UpdateQuantity(ctx, buyer.ID, item.ID, 7)
	if err != nil {
		t.Fatalf("grow: %v", err)
	}
	if item.Quantity != 7 || item.ReservedStock != 7 {
		t.Errorf("item = qty %d reserved %d, want 7/7", item.Quantity, item.ReservedStock)
	}
	if got := env.productStock(t, product.ID); got != 3 {
		t.Errorf("stock after grow = %d, want 3", got)
	}
}

func TestUpdateQuantityOtherUsersLine(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller", 0)
	buyer := env.createUser(t, "buyer", 0)
	other := env.createUser(t, "other", 0)
	room := env.createRoom(t, seller.ID)
	product := env.createProduct(t, room.ID, seller.ID, 100, 10)

	ctx := context.Background()
	item, err := env.carts.AddToCart(ctx, buyer.ID, product.ID, 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err = env.carts.UpdateQuantity(ctx, other.ID, item.ID, 5)
	if !apierror.Is(err, apierror.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestRemoveItemReleasesReservation(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller", 0)
	buyer := env.createUser(t, "buyer", 0)
	room := env.createRoom(t, seller.ID)
	product := env.createProduct(t, room.ID, seller.ID, 100, 10)

	ctx := context.Background()
	item, err := env.carts.AddToCart(ctx, buyer.ID, product.ID, 4)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := env.carts.RemoveItem(ctx, buyer.ID, item.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := env.productStock(t, product.ID); got != 10 {
		t.Errorf("stock = %d, want 10", got)
	}

	items, _ := env.carts.ListItems(ctx, buyer.ID)
	if len(items) != 0 {
		t.Errorf("lines = %d, want 0", len(items))
	}
}

func TestClearCartReleasesEverything(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller", 0)
	buyer := env.createUser(t, "buyer", 0)
	room := env.createRoom(t, seller.ID)
	p1 := env.createProduct(t, room.ID, seller.ID, 100, 10)
	p2 := env.createProduct(t, room.ID, seller.ID, 200, 5)

	ctx := context.Background()
	if _, err := env.carts.AddToCart(ctx, buyer.ID, p1.ID, 3); err != nil {
		t.Fatalf("add p1: %v", err)
	}
	if _, err := env.carts.AddToCart(ctx, buyer.ID, p2.ID, 2); err != nil {
		t.Fatalf("add p2: %v", err)
	}

	if err := env.carts.ClearCart(ctx, buyer.ID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := env.productStock(t, p1.ID); got != 10 {
		t.Errorf("p1 stock = %d, want 10", got)
	}
	if got := env.productStock(t, p2.ID); got != 5 {
		t.Errorf("p2 stock = %d, want 5", got)
	}
}

func TestCheckoutConsumesReservationWithoutDoubleDeduct(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller", 0)
	buyer := env.createUser(t, "buyer", 0)
	room := env.createRoom(t, seller.ID)
	product := env.createProduct(t, room.ID, seller.ID, 100, 10)

	ctx := context.Background()
	if _, err := env.carts.AddToCart(ctx, buyer.ID, product.ID, 4); err != nil {
		t.Fatalf("add: %v", err)
	}

	result, err := env.carts.Checkout(ctx, buyer.ID, model.Shipping{Name: "B", Address: "Street 1"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(result.Orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(result.Orders))
	}
	order := result.Orders[0]
	if order.Status != model.OrderPending || order.Quantity != 4 || order.TotalPrice != 400 {
		t.Errorf("unexpected order: %+v", order)
	}
	if result.TotalAmount != 400 {
		t.Errorf("total = %d, want 400", result.TotalAmount)
	}

	// Stock was already deducted at add-time; checkout must not deduct again.
	if got := env.productStock(t, product.ID); got != 6 {
		t.Errorf("stock = %d, want 6", got)
	}

	items, _ := env.carts.ListItems(ctx, buyer.ID)
	if len(items) != 0 {
		t.Errorf("cart lines after checkout = %d, want 0", len(items))
	}
}

func TestCheckoutMultiProductCreatesBatch(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller", 0)
	buyer := env.createUser(t, "buyer", 0)
	room := env.createRoom(t, seller.ID)
	p1 := env.createProduct(t, room.ID, seller.ID, 100, 10)
	p2 := env.createProduct(t, room.ID, seller.ID, 50, 10)
	p3 := env.createProduct(t, room.ID, seller.ID, 25, 10)

	ctx := context.Background()
	for _, p := range []int64{p1.ID, p2.ID, p3.ID} {
		if _, err := env.carts.AddToCart(ctx, buyer.ID, p, 1); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	result, err := env.carts.Checkout(ctx, buyer.ID, model.Shipping{Name: "B", Address: "Street 1"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(result.Orders) != 3 {
		t.Fatalf("orders = %d, want 3", len(result.Orders))
	}
	if result.BatchID == "" {
		t.Error("batch id missing on multi-product checkout")
	}

	main := result.Orders[0]
	if !main.IsMain() {
		t.Error("first order should be the main order")
	}
	if result.MainOrderID != main.ID {
		t.Errorf("main order id = %d, want %d", result.MainOrderID, main.ID)
	}
	for _, o := range result.Orders[1:] {
		if o.ParentOrderID == nil || *o.ParentOrderID != main.ID {
			t.Errorf("child order %d not linked to main %d", o.ID, main.ID)
		}
		if o.BatchID != result.BatchID {
			t.Errorf("child order %d batch = %q, want %q", o.ID, o.BatchID, result.BatchID)
		}
	}
	if result.TotalAmount != 175 {
		t.Errorf("total = %d, want 175", result.TotalAmount)
	}
}

func TestCheckoutSingleItemHasNoBatch(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller", 0)
	buyer := env.createUser(t, "buyer", 0)
	room := env.createRoom(t, seller.ID)
	product := env.createProduct(t, room.ID, seller.ID, 100, 10)

	ctx := context.Background()
	if _, err := env.carts.AddToCart(ctx, buyer.ID, product.ID, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	result, err := env.carts.Checkout(ctx, buyer.ID, model.Shipping{Name: "B", Address: "Street 1"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.BatchID != "" {
		t.Errorf("batch id = %q on single-item checkout, want empty", result.BatchID)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.createUser(t, "buyer", 0)

	_, err := env.carts.Checkout(context.Background(), buyer.ID, model.Shipping{Name: "B", Address: "Street 1"})
	if !apierror.Is(err, apierror.CodeBadRequest) {
		t.Fatalf("err = %v, want BAD_REQUEST", err)
	}
}

func TestCheckoutAbortsWhenProductDeactivated(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller", 0)
	buyer := env.createUser(t, "buyer", 0)
	room := env.createRoom(t, seller.ID)
	p1 := env.createProduct(t, room.ID, seller.ID, 100, 10)
	p2 := env.createProduct(t, room.ID, seller.ID, 50, 10)

	ctx := context.Background()
	if _, err := env.carts.AddToCart(ctx, buyer.ID, p1.ID, 1); err != nil {
		t.Fatalf("add p1: %v", err)
	}
	if _, err := env.carts.AddToCart(ctx, buyer.ID, p2.ID, 1); err != nil {
		t.Fatalf("add p2: %v", err)
	}

	if err := env.repos.Products.UpdateStatus(ctx, env.repos.Store.DB(), p2.ID, model.ProductInactive); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := env.carts.Checkout(ctx, buyer.ID, model.Shipping{Name: "B", Address: "Street 1"})
	if !apierror.Is(err, apierror.CodeProductInactive) {
		t.Fatalf("err = %v, want PRODUCT_INACTIVE", err)
	}

	// Whole checkout rolled back: cart intact, no orders created.
	items, _ := env.carts.ListItems(ctx, buyer.ID)
	if len(items) != 2 {
		t.Errorf("cart lines = %d, want 2", len(items))
	}
	orders, _ := env.orders.ListForBuyer(ctx, buyer.ID)
	if len(orders) != 0 {
		t.Errorf("orders = %d, want 0", len(orders))
	}
}

func TestCheckoutNotifiesSellers(t *testing.T) {
	env := newTestEnv(t)
	s1 := env.createUser(t, "seller1", 0)
	s2 := env.createUser(t, "seller2", 0)
	buyer := env.createUser(t, "buyer", 0)
	r1 := env.createRoom(t, s1.ID)
	r2 := env.createRoom(t, s2.ID)
	p1 := env.createProduct(t, r1.ID, s1.ID, 100, 10)
	p2 := env.createProduct(t, r2.ID, s2.ID, 50, 10)

	ctx := context.Background()
	if _, err := env.carts.AddToCart(ctx, buyer.ID, p1.ID, 1); err != nil {
		t.Fatalf("add p1: %v", err)
	}
	if _, err := env.carts.AddToCart(ctx, buyer.ID, p2.ID, 1); err != nil {
		t.Fatalf("add p2: %v", err)
	}
	if _, err := env.carts.Checkout(ctx, buyer.ID, model.Shipping{Name: "B", Address: "Street 1"}); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	recipients := map[int64]bool{}
	for _, n := range env.pub.notifications() {
		recipients[n.UserID] = true
	}
	if !recipients[s1.ID] || !recipients[s2.ID] {
		t.Errorf("sellers notified = %v, want both %d and %d", recipients, s1.ID, s2.ID)
	}
}
