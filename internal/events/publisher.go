package events

// StockPublisher receives stock-changed events. Implementations must be safe
// for concurrent use; delivery is fire-and-forget and callers swallow errors
// after logging them so event publishing can never poison a committed
// transaction.
type StockPublisher interface {
	StockChanged(ev StockChanged) error
	Close() error
}

// Notifier receives notification events for the external broadcast service.
type Notifier interface {
	Notify(ev Notification) error
	Close() error
}

// NopStockPublisher drops stock events. Used when no broker is configured.
type NopStockPublisher struct{}

func (NopStockPublisher) StockChanged(StockChanged) error { return nil }
func (NopStockPublisher) Close() error                    { return nil }

// NopNotifier drops notification events.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) error { return nil }
func (NopNotifier) Close() error              { return nil }
