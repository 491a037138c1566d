// Package cart implements the per-session shopping cart: stock ceilings, derived totals,
// persistence after every mutation and rehydration at session start.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/abgdnv/gostorefront/internal/cart/storage"
	"github.com/abgdnv/gostorefront/internal/catalog"
	"github.com/abgdnv/gostorefront/internal/notify"
)

// ProductLookup resolves product IDs against the live catalog. *catalog.Holder implements it.
type ProductLookup interface {
	FindByID(id string) (catalog.Product, error)
}

// Item is a cart line: the product as it was when last resolved and a quantity in [1, stock].
type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Deps are the collaborators of a cart.
type Deps struct {
	Catalog   ProductLookup
	Store     storage.Store
	Sink      notify.Sink
	Logger    *slog.Logger
	KeyPrefix string
}

// Cart holds the items of one session. All methods are safe for concurrent use and each mutation
// runs to completion before the next one starts.
type Cart struct {
	mu        sync.Mutex
	sessionID string
	key       string
	items     []Item

	catalog ProductLookup
	store   storage.Store
	sink    notify.Sink
	logger  *slog.Logger
	now     func() time.Time
}

// New creates an empty cart for the session. Call Load to rehydrate persisted contents.
func New(sessionID string, deps Deps) *Cart {
	if deps.Store == nil {
		deps.Store = storage.NewMemory()
	}
	if deps.Sink == nil {
		deps.Sink = notify.Discard
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Cart{
		sessionID: sessionID,
		key:       storage.Key(deps.KeyPrefix, sessionID),
		items:     make([]Item, 0),
		catalog:   deps.Catalog,
		store:     deps.Store,
		sink:      deps.Sink,
		logger:    deps.Logger.With("component", "cart", "session_id", sessionID),
		now:       time.Now,
	}
}

// SessionID returns the owning session.
func (c *Cart) SessionID() string {
	return c.sessionID
}

// Add puts quantity units of the product in the cart. A quantity below 1 adds one unit.
// The resulting quantity never exceeds the product stock: the excess is dropped and a
// stock_limited notification is sent instead.
func (c *Cart) Add(ctx context.Context, product catalog.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(product.ID); i >= 0 {
		item := &c.items[i]
		item.Product = product
		// compared against the headroom so a huge quantity cannot overflow the sum
		if quantity > product.Stock-item.Quantity {
			item.Quantity = product.Stock
			c.notify(ctx, notify.KindStockLimited, product, product.Stock)
		} else {
			item.Quantity += quantity
			c.notify(ctx, notify.KindUpdated, product, item.Quantity)
		}
		if item.Quantity < 1 {
			c.items = slices.Delete(c.items, i, i+1)
		}
		c.persist(ctx)
		return
	}

	if product.Stock < 1 {
		c.notify(ctx, notify.KindStockLimited, product, 0)
		return
	}
	if quantity > product.Stock {
		quantity = product.Stock
		c.notify(ctx, notify.KindStockLimited, product, quantity)
	}
	c.items = append(c.items, Item{Product: product, Quantity: quantity})
	c.notify(ctx, notify.KindAdded, product, quantity)
	c.persist(ctx)
}

// Remove deletes the product from the cart. Removing an absent product does nothing.
func (c *Cart) Remove(ctx context.Context, productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(ctx, productID)
}

// UpdateQuantity sets the quantity of a product already in the cart. A quantity below 1 removes
// it; a quantity above the current stock is clamped to the stock.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity < 1 {
		c.removeLocked(ctx, productID)
		return
	}
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	item := &c.items[i]
	item.Product = c.current(item.Product)
	if quantity > item.Product.Stock {
		item.Quantity = item.Product.Stock
		c.notify(ctx, notify.KindStockLimited, item.Product, item.Product.Stock)
		if item.Quantity < 1 {
			c.items = slices.Delete(c.items, i, i+1)
		}
	} else {
		item.Quantity = quantity
		c.notify(ctx, notify.KindUpdated, item.Product, quantity)
	}
	c.persist(ctx)
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make([]Item, 0)
	c.sink.Notify(ctx, notify.Event{Kind: notify.KindCleared, SessionID: c.sessionID, At: c.now()})
	c.persist(ctx)
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Len returns the number of distinct products in the cart.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// ItemCount returns the total number of units in the cart.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, it := range c.items {
		count += it.Quantity
	}
	return count
}

// Subtotal returns the sum of price times quantity using the current catalog price of each product.
func (c *Cart) Subtotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var subtotal int64
	for _, it := range c.items {
		subtotal += c.current(it.Product).Price * int64(it.Quantity)
	}
	return subtotal
}

// Line is a priced cart line.
type Line struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Stock     int    `json:"stock"`
	LineTotal int64  `json:"lineTotal"`
}

// Snapshot is a consistent view of the cart priced at the time it was taken.
type Snapshot struct {
	SessionID string `json:"sessionId"`
	Lines     []Line `json:"items"`
	ItemCount int    `json:"itemCount"`
	Subtotal  int64  `json:"subtotal"`
}

// Snapshot prices every line with the current catalog and returns the totals.
func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Checkout takes the snapshot and empties the cart in one step, so no mutation can land
// between the two. An empty cart is returned as is and nothing is notified.
func (c *Cart) Checkout(ctx context.Context) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.snapshotLocked()
	if len(snap.Lines) == 0 {
		return snap
	}
	c.items = make([]Item, 0)
	c.sink.Notify(ctx, notify.Event{Kind: notify.KindCleared, SessionID: c.sessionID, At: c.now()})
	c.persist(ctx)
	return snap
}

func (c *Cart) snapshotLocked() Snapshot {
	snap := Snapshot{SessionID: c.sessionID, Lines: make([]Line, 0, len(c.items))}
	for _, it := range c.items {
		p := c.current(it.Product)
		line := Line{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			UnitPrice: p.Price,
			Quantity:  it.Quantity,
			Stock:     p.Stock,
			LineTotal: p.Price * int64(it.Quantity),
		}
		snap.Lines = append(snap.Lines, line)
		snap.ItemCount += line.Quantity
		snap.Subtotal += line.LineTotal
	}
	return snap
}

// Load replaces the in-memory contents with the persisted cart of the session. Unknown products
// are dropped, quantities are clamped to the current stock and duplicate lines are merged.
// Unreadable data is logged and discarded; the cart is then empty.
func (c *Cart) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make([]Item, 0)

	data, err := c.store.Get(ctx, c.key)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to read persisted cart", "key", c.key, "error", err)
		return
	}
	refs, err := Decode(data)
	if err != nil {
		c.logger.ErrorContext(ctx, "Discarding corrupt persisted cart", "key", c.key, "error", err)
		if err := c.store.Delete(ctx, c.key); err != nil {
			c.logger.WarnContext(ctx, "Failed to delete corrupt cart", "key", c.key, "error", err)
		}
		return
	}

	items, normalized := c.resolve(ctx, refs)
	c.items = items
	if normalized {
		c.persist(ctx)
	}
	c.logger.DebugContext(ctx, "Cart rehydrated", "items", len(c.items))
}

// resolve turns references into items. It reports whether anything was dropped, clamped or merged.
func (c *Cart) resolve(ctx context.Context, refs []Reference) ([]Item, bool) {
	items := make([]Item, 0, len(refs))
	normalized := false
	for _, ref := range refs {
		if c.catalog == nil {
			normalized = true
			continue
		}
		p, err := c.catalog.FindByID(ref.ProductID)
		if err != nil {
			c.logger.InfoContext(ctx, "Dropping unknown product from persisted cart", "product_id", ref.ProductID)
			normalized = true
			continue
		}
		quantity := ref.Quantity
		if i := slices.IndexFunc(items, func(it Item) bool { return it.Product.ID == ref.ProductID }); i >= 0 {
			quantity += items[i].Quantity
			items = slices.Delete(items, i, i+1)
			normalized = true
		}
		if quantity > p.Stock {
			quantity = p.Stock
			normalized = true
		}
		if quantity < 1 {
			normalized = true
			continue
		}
		items = append(items, Item{Product: p, Quantity: quantity})
	}
	return items, normalized
}

func (c *Cart) removeLocked(ctx context.Context, productID string) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	removed := c.items[i].Product
	c.items = slices.Delete(c.items, i, i+1)
	c.notify(ctx, notify.KindRemoved, removed, 0)
	c.persist(ctx)
}

func (c *Cart) indexOf(productID string) int {
	return slices.IndexFunc(c.items, func(it Item) bool { return it.Product.ID == productID })
}

// current returns the live catalog version of the product, or the snapshot when it left the catalog.
func (c *Cart) current(snapshot catalog.Product) catalog.Product {
	if c.catalog == nil {
		return snapshot
	}
	p, err := c.catalog.FindByID(snapshot.ID)
	if err != nil {
		return snapshot
	}
	return p
}

func (c *Cart) notify(ctx context.Context, kind notify.Kind, p catalog.Product, quantity int) {
	c.sink.Notify(ctx, notify.Event{
		Kind:        kind,
		SessionID:   c.sessionID,
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    quantity,
		Stock:       p.Stock,
		At:          c.now(),
	})
}

// persist writes the cart. Failures are logged and the in-memory state is kept.
func (c *Cart) persist(ctx context.Context) {
	data, err := Encode(c.items)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to encode cart", "error", err)
		return
	}
	if err := c.store.Set(ctx, c.key, data); err != nil {
		c.logger.WarnContext(ctx, "Failed to persist cart", "key", c.key, "error", err)
	}
}
