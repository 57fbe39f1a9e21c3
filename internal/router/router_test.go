package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roomhub-commerce-api/internal/cache"
	"roomhub-commerce-api/internal/config"
	"roomhub-commerce-api/internal/events"
	"roomhub-commerce-api/internal/handler"
	"roomhub-commerce-api/internal/logger"
	"roomhub-commerce-api/internal/model"
	"roomhub-commerce-api/internal/repository"
	"roomhub-commerce-api/internal/router"
	"roomhub-commerce-api/internal/service"
)

type apiEnv struct {
	srv   *httptest.Server
	repos *repository.Repositories
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	store, err := repository.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	repos := repository.NewRepositories(store)
	log := logger.New("error")
	productCache := cache.NewMemoryCache()
	t.Cleanup(func() { productCache.Close() })

	economy := config.EconomyConfig{
		BronzeRoomLimit:    2,
		MemberRoomLimit:    4,
		RoomOverageCost:    50,
		DailyLoginReward:   5,
		RegistrationReward: 20,
	}

	stockEngine := service.NewStockEngine(repos.Products)
	var pub events.NopStockPublisher
	var notifier events.NopNotifier
	cartService := service.NewCartService(repos, stockEngine, pub, notifier, productCache, log)
	orderService := service.NewOrderService(repos, stockEngine, pub, notifier, productCache, log)
	ledgerService := service.NewLedgerService(repos, economy.DailyLoginReward, economy.RegistrationReward, log)
	quotaService := service.NewRoomQuotaService(repos, ledgerService, economy, log)
	catalogService := service.NewCatalogService(repos, productCache, 5*time.Minute, log)

	r := router.New(router.Config{
		Handler:        handler.New(store, "test"),
		CartHandler:    handler.NewCartHandler(cartService),
		OrderHandler:   handler.NewOrderHandler(orderService),
		RoomHandler:    handler.NewRoomHandler(quotaService),
		WalletHandler:  handler.NewWalletHandler(ledgerService),
		ProductHandler: handler.NewProductHandler(catalogService),
		Logger:         log,
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &apiEnv{srv: srv, repos: repos}
}

func (e *apiEnv) do(t *testing.T, method, path string, userID int64, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req.Header.Set("X-User-ID", fmt.Sprintf("%d", userID))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var envelope map[string]any
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp, envelope
}

func (e *apiEnv) seedUser(t *testing.T, name string, coins int64) *model.User {
	t.Helper()
	u := &model.User{Name: name, Coins: coins}
	if err := e.repos.Users.Create(context.Background(), e.repos.Store.DB(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (e *apiEnv) seedProduct(t *testing.T, ownerID int64, price int64, stock int) *model.Product {
	t.Helper()
	room := &model.Room{OwnerID: ownerID, Name: "shop"}
	if err := e.repos.Rooms.Create(context.Background(), e.repos.Store.DB(), room); err != nil {
		t.Fatalf("seed room: %v", err)
	}
	p := &model.Product{
		RoomID: room.ID, OwnerID: ownerID, Name: "widget",
		Price: price, Stock: stock,
		Status: model.ProductActive, Visibility: model.VisibilityPublic,
	}
	if err := e.repos.Products.Create(context.Background(), e.repos.Store.DB(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func TestHealthEndpointsArePublic(t *testing.T) {
	env := newAPIEnv(t)

	for _, path := range []string{"/api/v1/health", "/api/v1/ready", "/api/status"} {
		resp, envelope := env.do(t, http.MethodGet, path, 0, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, resp.StatusCode)
		}
		if envelope["success"] != true {
			t.Errorf("GET %s envelope = %v, want success", path, envelope)
		}
	}
}

func TestIdentityRequired(t *testing.T) {
	env := newAPIEnv(t)

	resp, envelope := env.do(t, http.MethodGet, "/api/v1/cart", 0, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if envelope["success"] != false {
		t.Errorf("envelope = %v, want success=false", envelope)
	}
	errBody, _ := envelope["error"].(map[string]any)
	if errBody["code"] != "UNAUTHORIZED" {
		t.Errorf("code = %v, want UNAUTHORIZED", errBody["code"])
	}
}

func TestCartCheckoutFlow(t *testing.T) {
	env := newAPIEnv(t)
	seller := env.seedUser(t, "seller", 0)
	buyer := env.seedUser(t, "buyer", 0)
	product := env.seedProduct(t, seller.ID, 100, 10)

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/cart/items", buyer.ID, map[string]any{
		"product_id": product.ID,
		"quantity":   2,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add item status = %d, want 201 (%v)", resp.StatusCode, envelope)
	}

	resp, envelope = env.do(t, http.MethodPost, "/api/v1/cart/checkout", buyer.ID, map[string]any{
		"ship_name":    "Buyer",
		"ship_address": "Street 1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout status = %d, want 201 (%v)", resp.StatusCode, envelope)
	}
	data, _ := envelope["data"].(map[string]any)
	if data["total_amount"] != float64(200) {
		t.Errorf("total = %v, want 200", data["total_amount"])
	}

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/orders", buyer.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list orders status = %d, want 200", resp.StatusCode)
	}
	orders, _ := envelope["data"].([]any)
	if len(orders) != 1 {
		t.Errorf("orders = %d, want 1", len(orders))
	}
}

func TestInsufficientStockResponse(t *testing.T) {
	env := newAPIEnv(t)
	seller := env.seedUser(t, "seller", 0)
	buyer := env.seedUser(t, "buyer", 0)
	product := env.seedProduct(t, seller.ID, 100, 1)

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/cart/items", buyer.ID, map[string]any{
		"product_id": product.ID,
		"quantity":   5,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	errBody, _ := envelope["error"].(map[string]any)
	if errBody["code"] != "INSUFFICIENT_STOCK" {
		t.Errorf("code = %v, want INSUFFICIENT_STOCK", errBody["code"])
	}
	meta, _ := errBody["meta"].(map[string]any)
	if meta["available"] != float64(1) {
		t.Errorf("meta.available = %v, want 1", meta["available"])
	}
}

func TestWalletRewardFlow(t *testing.T) {
	env := newAPIEnv(t)
	user := env.seedUser(t, "claimer", 0)

	resp, envelope := env.do(t, http.MethodPost, "/api/v1/wallet/rewards/daily-login", user.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("claim status = %d, want 200 (%v)", resp.StatusCode, envelope)
	}
	data, _ := envelope["data"].(map[string]any)
	if data["awarded"] != float64(5) {
		t.Errorf("awarded = %v, want 5", data["awarded"])
	}

	resp, envelope = env.do(t, http.MethodPost, "/api/v1/wallet/rewards/daily-login", user.ID, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate claim status = %d, want 409", resp.StatusCode)
	}
	errBody, _ := envelope["error"].(map[string]any)
	if errBody["code"] != "ALREADY_CLAIMED" {
		t.Errorf("code = %v, want ALREADY_CLAIMED", errBody["code"])
	}

	resp, envelope = env.do(t, http.MethodGet, "/api/v1/wallet", user.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("balance status = %d, want 200", resp.StatusCode)
	}
	data, _ = envelope["data"].(map[string]any)
	if data["coins"] != float64(5) || data["derived"] != float64(5) {
		t.Errorf("balance = %v, want coins 5 derived 5", data)
	}
}

func TestRoomCreationEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	user := env.seedUser(t, "creator", 0)

	resp, envelope := env.do(t, http.MethodGet, "/api/v1/rooms/quota", user.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("quota status = %d, want 200", resp.StatusCode)
	}
	data, _ := envelope["data"].(map[string]any)
	if data["allowed"] != true || data["is_free"] != true {
		t.Errorf("quota = %v, want free allowance", data)
	}

	resp, envelope = env.do(t, http.MethodPost, "/api/v1/rooms", user.ID, map[string]any{
		"name": "my room",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (%v)", resp.StatusCode, envelope)
	}
	data, _ = envelope["data"].(map[string]any)
	if data["paid"] != false {
		t.Errorf("paid = %v, want false", data["paid"])
	}
}
