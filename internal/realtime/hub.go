package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/domain"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/service"
)

// Server to client events.
const (
	EventInitialProducts = "initialProducts"
	EventProductAdded    = "productAdded"
	EventProductDeleted  = "productDeleted"
	EventProductsUpdated = "productsUpdated"
	EventProductError    = "productError"
)

// Client to server commands.
const (
	CommandNewProduct    = "newProduct"
	CommandDeleteProduct = "deleteProduct"
)

type Event struct {
	Event   string `json:"event"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type Command struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type inbound struct {
	origin *client
	cmd    Command
}

// Hub is the product feed broker. A single goroutine (Run) owns the client
// set, so no locking is needed; clients talk to it over channels. Delivery
// is best effort: a client whose send buffer is full is dropped, and there
// is no replay for late joiners — they get a catalog snapshot on connect
// instead.
type Hub struct {
	products *service.ProductService
	log      *slog.Logger

	register   chan *client
	unregister chan *client
	broadcast  chan Event
	commands   chan inbound

	// closed when Run exits so client pumps never block on a dead hub
	done chan struct{}

	sfg singleflight.Group
}

func NewHub(products *service.ProductService, log *slog.Logger) *Hub {
	return &Hub{
		products:   products,
		log:        log,
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Event, 16),
		commands:   make(chan inbound),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	clients := make(map[*client]struct{})

	for {
		select {
		case c := <-h.register:
			clients[c] = struct{}{}
			h.log.Debug("realtime client connected", "clients", len(clients))

		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				c.closeSend()
			}
			h.log.Debug("realtime client disconnected", "clients", len(clients))

		case ev := <-h.broadcast:
			for c := range clients {
				select {
				case c.send <- ev:
				default:
					// Slow consumer; drop it rather than stall the feed.
					delete(clients, c)
					c.closeSend()
				}
			}

		case in := <-h.commands:
			h.handleCommand(ctx, clients, in)

		case <-ctx.Done():
			for c := range clients {
				c.closeSend()
			}
			return
		}
	}
}

func (h *Hub) handleCommand(ctx context.Context, clients map[*client]struct{}, in inbound) {
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch in.cmd.Event {
	case CommandNewProduct:
		var payload struct {
			Title       string   `json:"title"`
			Description string   `json:"description"`
			Code        string   `json:"code"`
			Price       float64  `json:"price"`
			Stock       int      `json:"stock"`
			Category    string   `json:"category"`
			Thumbnails  []string `json:"thumbnails"`
		}
		if err := json.Unmarshal(in.cmd.Data, &payload); err != nil {
			in.origin.trySend(Event{Event: EventProductError, Message: "invalid product payload"})
			return
		}

		product, err := h.products.AddProduct(opCtx, &domain.Product{
			Title:       payload.Title,
			Description: payload.Description,
			Code:        payload.Code,
			Price:       payload.Price,
			Stock:       payload.Stock,
			Category:    payload.Category,
			Status:      true,
			Thumbnails:  payload.Thumbnails,
		})
		if err != nil {
			h.log.Warn("realtime product create failed", "err", err)
			in.origin.trySend(Event{Event: EventProductError, Message: err.Error()})
			return
		}

		h.fanOut(clients, Event{Event: EventProductAdded, Data: product})
		h.fanOutCatalog(opCtx, clients)

	case CommandDeleteProduct:
		var payload struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(in.cmd.Data, &payload); err != nil || payload.ID == "" {
			in.origin.trySend(Event{Event: EventProductError, Message: "invalid delete payload"})
			return
		}

		if err := h.products.DeleteProduct(opCtx, payload.ID); err != nil {
			h.log.Warn("realtime product delete failed", "err", err)
			in.origin.trySend(Event{Event: EventProductError, Message: err.Error()})
			return
		}

		h.fanOut(clients, Event{Event: EventProductDeleted, Data: map[string]string{"id": payload.ID}})
		h.fanOutCatalog(opCtx, clients)

	default:
		in.origin.trySend(Event{Event: EventProductError, Message: "unknown event " + in.cmd.Event})
	}
}

func (h *Hub) fanOut(clients map[*client]struct{}, ev Event) {
	for c := range clients {
		c.trySend(ev)
	}
}

func (h *Hub) fanOutCatalog(ctx context.Context, clients map[*client]struct{}) {
	products, err := h.catalog(ctx)
	if err != nil {
		h.log.Error("failed to load catalog for broadcast", "err", err)
		return
	}
	h.fanOut(clients, Event{Event: EventProductsUpdated, Data: products})
}

// CatalogChanged lets the HTTP layer nudge the feed after a mutation that
// did not come through a socket.
func (h *Hub) CatalogChanged() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		products, err := h.catalog(ctx)
		if err != nil {
			h.log.Error("failed to load catalog for broadcast", "err", err)
			return
		}

		select {
		case h.broadcast <- Event{Event: EventProductsUpdated, Data: products}:
		case <-h.done:
		case <-ctx.Done():
		}
	}()
}

const snapshotPageSize = 100

// catalog loads the full product list, collapsing concurrent loads (a burst
// of connecting clients) into one query chain.
func (h *Hub) catalog(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := h.sfg.Do("catalog", func() (interface{}, error) {
		all := []domain.Product{}
		for page := int64(1); ; page++ {
			listing, err := h.products.ListProducts(ctx, service.ListOptions{
				Page:  page,
				Limit: snapshotPageSize,
			})
			if err != nil {
				return nil, err
			}
			all = append(all, listing.Payload...)
			if !listing.HasNextPage {
				break
			}
		}
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

// ServeWS upgrades the connection, pushes the catalog snapshot as the first
// frame and hands the connection to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "err", err)
		return
	}

	c := newClient(h, conn)

	if products, err := h.catalog(r.Context()); err != nil {
		h.log.Error("failed to load initial catalog", "err", err)
		c.trySend(Event{Event: EventProductError, Message: "failed to load catalog"})
	} else {
		c.trySend(Event{Event: EventInitialProducts, Data: products})
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
