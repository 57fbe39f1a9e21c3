package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"roomhub-commerce-api/internal/cache"
	"roomhub-commerce-api/internal/config"
	"roomhub-commerce-api/internal/events"
	"roomhub-commerce-api/internal/logger"
	"roomhub-commerce-api/internal/model"
	"roomhub-commerce-api/internal/repository"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	stock  []events.StockChanged
	notify []events.Notification
}

func (p *recordingPublisher) StockChanged(ev events.StockChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stock = append(p.stock, ev)
	return nil
}

func (p *recordingPublisher) Notify(ev events.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notify = append(p.notify, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) stockEvents() []events.StockChanged {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.StockChanged(nil), p.stock...)
}

func (p *recordingPublisher) notifications() []events.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Notification(nil), p.notify...)
}

// testEnv wires the full service stack over an in-memory SQLite store.
type testEnv struct {
	repos   *repository.Repositories
	pub     *recordingPublisher
	stock   *StockEngine
	carts   *CartService
	orders  *OrderService
	ledger  *LedgerService
	quota   *RoomQuotaService
	catalog *CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := repository.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	repos := repository.NewRepositories(store)
	log := logger.New("error")
	pub := &recordingPublisher{}
	productCache := cache.NewMemoryCache()
	t.Cleanup(func() { productCache.Close() })

	economy := config.EconomyConfig{
		BronzeRoomLimit:    2,
		MemberRoomLimit:    4,
		RoomOverageCost:    50,
		DailyLoginReward:   5,
		RegistrationReward: 20,
	}

	stock := NewStockEngine(repos.Products)
	ledger := NewLedgerService(repos, economy.DailyLoginReward, economy.RegistrationReward, log)

	return &testEnv{
		repos:   repos,
		pub:     pub,
		stock:   stock,
		carts:   NewCartService(repos, stock, pub, pub, productCache, log),
		orders:  NewOrderService(repos, stock, pub, pub, productCache, log),
		ledger:  ledger,
		quota:   NewRoomQuotaService(repos, ledger, economy, log),
		catalog: NewCatalogService(repos, productCache, 5*time.Minute, log),
	}
}

func (e *testEnv) createUser(t *testing.T, name string, coins int64) *model.User {
	t.Helper()
	u := &model.User{Name: name, Coins: coins}
	if err := e.repos.Users.Create(context.Background(), e.repos.Store.DB(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if coins > 0 {
		// Seed the ledger so the cached counter and the derived balance agree.
		err := e.repos.Ledger.Append(context.Background(), e.repos.Store.DB(), &model.CoinTransaction{
			UserID:     u.ID,
			Direction:  model.DirectionIn,
			Amount:     coins,
			SourceType: model.SourceSystem,
			Action:     "seed",
		})
		if err != nil {
			t.Fatalf("seed ledger: %v", err)
		}
	}
	return u
}

func (e *testEnv) createRoom(t *testing.T, ownerID int64) *model.Room {
	t.Helper()
	room := &model.Room{OwnerID: ownerID, Name: "test room"}
	if err := e.repos.Rooms.Create(context.Background(), e.repos.Store.DB(), room); err != nil {
		t.Fatalf("create room: %v", err)
	}
	return room
}

func (e *testEnv) createProduct(t *testing.T, roomID, ownerID int64, price int64, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		RoomID:     roomID,
		OwnerID:    ownerID,
		Name:       "test product",
		Price:      price,
		Stock:      stock,
		Status:     model.ProductActive,
		Visibility: model.VisibilityPublic,
	}
	if err := e.repos.Products.Create(context.Background(), e.repos.Store.DB(), p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func (e *testEnv) productStock(t *testing.T, productID int64) int {
	t.Helper()
	p, err := e.repos.Products.Get(context.Background(), e.repos.Store.DB(), productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	return p.Stock
}

func (e *testEnv) userCoins(t *testing.T, userID int64) int64 {
	t.Helper()
	u, err := e.repos.Users.Get(context.Background(), e.repos.Store.DB(), userID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	return u.Coins
}
