package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/abgdnv/gostorefront/internal/dashboard"
	storefronterrors "github.com/abgdnv/gostorefront/internal/errors"
	"github.com/abgdnv/gostorefront/internal/platform/web"
	"github.com/go-chi/chi/v5"
)

type applicationResponse struct {
	Application dashboard.Application `json:"application"`
	Notice      Notice                `json:"notice"`
}

type ticketResponse struct {
	Ticket dashboard.Ticket `json:"ticket"`
	Notice Notice           `json:"notice"`
}

func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.svc.Board.Admin())
}

func (h *Handler) SellerDashboard(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.svc.Board.Seller())
}

func (h *Handler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.svc.Board.Approve, "Application approved", "approved")
}

func (h *Handler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.svc.Board.Reject, "Application rejected", "rejected")
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, action func(id string) (dashboard.Application, error), title, outcome string) {
	id := chi.URLParam(r, "id")
	app, err := action(id)
	if err != nil {
		if errors.Is(err, storefronterrors.ErrApplicationNotFound) {
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Seller application #%s not found", id))
			return
		}
		h.logger.ErrorContext(r.Context(), "Error reviewing application", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to review application")
		return
	}
	h.logger.InfoContext(r.Context(), "Seller application reviewed", "ID", id, "status", app.Status)
	web.RespondJSON(w, h.logger, http.StatusOK, applicationResponse{
		Application: app,
		Notice:      Notice{Title: title, Message: fmt.Sprintf("Seller application #%s has been %s.", id, outcome)},
	})
}

func (h *Handler) ResolveTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ticket, err := h.svc.Board.Resolve(id)
	if err != nil {
		if errors.Is(err, storefronterrors.ErrTicketNotFound) {
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Support ticket #%s not found", id))
			return
		}
		h.logger.ErrorContext(r.Context(), "Error resolving ticket", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to resolve ticket")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, ticketResponse{
		Ticket: ticket,
		Notice: Notice{Title: "Support ticket resolved", Message: fmt.Sprintf("Support ticket #%s has been marked as resolved.", id)},
	})
}

// ApplyAsSeller files a seller application for review by an admin.
func (h *Handler) ApplyAsSeller(w http.ResponseWriter, r *http.Request) {
	var req dashboard.ApplicationRequest
	if !web.DecodeValid(w, r, h.logger, h.validate, &req) {
		return
	}
	app := h.svc.Board.Apply(req)
	h.logger.InfoContext(r.Context(), "Seller application submitted", "ID", app.ID)
	web.RespondJSON(w, h.logger, http.StatusCreated, applicationResponse{
		Application: app,
		Notice:      Notice{Title: "Application submitted", Message: "We'll review your application and get back to you soon."},
	})
}

func (h *Handler) OpenTicket(w http.ResponseWriter, r *http.Request) {
	var req dashboard.TicketRequest
	if !web.DecodeValid(w, r, h.logger, h.validate, &req) {
		return
	}
	ticket := h.svc.Board.OpenTicket(req)
	h.logger.InfoContext(r.Context(), "Support ticket submitted", "ID", ticket.ID)
	web.RespondJSON(w, h.logger, http.StatusCreated, ticketResponse{
		Ticket: ticket,
		Notice: Notice{Title: "Support ticket submitted", Message: "We'll get back to you as soon as possible."},
	})
}
