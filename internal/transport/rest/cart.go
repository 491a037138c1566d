package rest

import (
	"context"
	"net/http"

	"github.com/abgdnv/gostorefront/internal/cart"
	"github.com/abgdnv/gostorefront/internal/notify"
	"github.com/abgdnv/gostorefront/internal/platform/web"
	"github.com/abgdnv/gostorefront/internal/session"
	"github.com/go-chi/chi/v5"
)

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required,max=64"`
	Quantity  int    `json:"quantity"  validate:"min=0,max=1000"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=1000"`
}

// cartResponse is the cart after a mutation plus the notices the mutation raised, in order.
type cartResponse struct {
	cart.Snapshot
	Notices []Notice `json:"notices"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.sessionCart(w, r)
	if !ok {
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, c.Snapshot())
}

// AddCartItem adds a product to the cart. A missing quantity adds one item.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.sessionCart(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if !web.DecodeValid(w, r, h.logger, h.validate, &req) {
		return
	}
	p, err := h.svc.Catalog.Current().FindByID(req.ProductID)
	if err != nil {
		h.productError(w, r, req.ProductID, err)
		return
	}
	h.mutateCart(w, r, c, func(ctx context.Context) { c.Add(ctx, p, req.Quantity) })
}

// UpdateCartItem sets the quantity of a line; zero removes it.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.sessionCart(w, r)
	if !ok {
		return
	}
	var req updateItemRequest
	if !web.DecodeValid(w, r, h.logger, h.validate, &req) {
		return
	}
	id := chi.URLParam(r, "productId")
	h.mutateCart(w, r, c, func(ctx context.Context) { c.UpdateQuantity(ctx, id, *req.Quantity) })
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.sessionCart(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "productId")
	h.mutateCart(w, r, c, func(ctx context.Context) { c.Remove(ctx, id) })
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.sessionCart(w, r)
	if !ok {
		return
	}
	h.mutateCart(w, r, c, c.Clear)
}

func (h *Handler) sessionCart(w http.ResponseWriter, r *http.Request) (*cart.Cart, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "Request reached cart handler without a session")
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Session is not available")
		return nil, false
	}
	return s.Cart, true
}

// mutateCart runs the mutation with a request-scoped recorder and responds with the cart and
// the recorded notices.
func (h *Handler) mutateCart(w http.ResponseWriter, r *http.Request, c *cart.Cart, mutate func(ctx context.Context)) {
	rec := &notify.Recorder{}
	mutate(notify.WithRecorder(r.Context(), rec))
	resp := cartResponse{Snapshot: c.Snapshot(), Notices: make([]Notice, 0)}
	for _, e := range rec.Events() {
		resp.Notices = append(resp.Notices, Notice{Title: e.Title(), Message: e.Message()})
	}
	web.RespondJSON(w, h.logger, http.StatusOK, resp)
}
