package rest

import (
	"errors"
	"net/http"

	"github.com/abgdnv/gostorefront/internal/auth"
	"github.com/abgdnv/gostorefront/internal/checkout"
	storefronterrors "github.com/abgdnv/gostorefront/internal/errors"
	"github.com/abgdnv/gostorefront/internal/platform/web"
)

type orderResponse struct {
	Order  *checkout.Order `json:"order"`
	Notice Notice          `json:"notice"`
}

func (h *Handler) CheckoutSummary(w http.ResponseWriter, r *http.Request) {
	c, ok := h.sessionCart(w, r)
	if !ok {
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, h.svc.Checkout.Summarize(c.Snapshot()))
}

// PlaceOrder places an order for the session cart. Signing in is optional.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	c, ok := h.sessionCart(w, r)
	if !ok {
		return
	}
	var req checkout.Request
	if !web.DecodeValid(w, r, h.logger, h.validate, &req) {
		return
	}
	user, _ := auth.UserFromContext(r.Context())
	order, err := h.svc.Checkout.PlaceOrder(r.Context(), c, user, req)
	if err != nil {
		if errors.Is(err, storefronterrors.ErrEmptyCart) {
			h.logger.WarnContext(r.Context(), "Order attempted with an empty cart")
			web.RespondError(w, h.logger, http.StatusConflict, "Your cart is empty")
			return
		}
		h.logger.ErrorContext(r.Context(), "Error placing order", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to place order")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusCreated, orderResponse{
		Order: order,
		Notice: Notice{
			Title:   "Order Confirmed!",
			Message: "Thank you for your purchase. Your digital items will be delivered to your Roblox account shortly.",
		},
	})
}
