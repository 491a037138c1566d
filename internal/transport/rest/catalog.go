package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/abgdnv/gostorefront/internal/catalog"
	storefronterrors "github.com/abgdnv/gostorefront/internal/errors"
	"github.com/abgdnv/gostorefront/internal/platform/web"
	"github.com/go-chi/chi/v5"
)

const maxRelatedLimit = 50

// ListProducts filters and sorts the catalog. Query: category, min, max, sort, q.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	cat := h.svc.Catalog.Current()
	q := r.URL.Query()

	lo, ok := web.QueryInt64(w, r, h.logger, "min", 0, web.Gte(0))
	if !ok {
		return
	}
	hi, ok := web.QueryInt64(w, r, h.logger, "max", cat.MaxPrice(), web.Gte(0))
	if !ok {
		return
	}
	if lo > hi {
		web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Invalid price range: min %d is above max %d", lo, hi))
		return
	}
	sortKey := catalog.SortNewest
	if raw := q.Get("sort"); raw != "" {
		if sortKey, ok = catalog.ParseSortKey(raw); !ok {
			web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Invalid sort key: %s", raw))
			return
		}
	}

	f := catalog.Filter{
		Category: q.Get("category"),
		Price:    catalog.PriceRange{Min: lo, Max: hi},
		Sort:     sortKey,
		Search:   q.Get("q"),
	}
	list := cat.Filter(f)
	h.logger.DebugContext(r.Context(), "Filtered products", "filter", f, "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

func (h *Handler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.svc.Catalog.Current().Featured())
}

// PriceRange returns the bounds of the price filter control.
func (h *Handler) PriceRange(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, catalog.PriceRange{Min: 0, Max: h.svc.Catalog.Current().MaxPrice()})
}

func (h *Handler) FindProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.svc.Catalog.Current().FindByID(id)
	if err != nil {
		h.productError(w, r, id, err)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, p)
}

// RelatedProducts returns products sharing the category or a tag. Query: limit (default 4).
func (h *Handler) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit, ok := web.QueryInt64(w, r, h.logger, "limit", catalog.DefaultRelatedLimit, web.Between(1, maxRelatedLimit))
	if !ok {
		return
	}
	related, err := h.svc.Catalog.Current().Related(id, int(limit))
	if err != nil {
		h.productError(w, r, id, err)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, related)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.svc.Catalog.Current().Categories())
}

// ReloadCatalog swaps in a freshly loaded catalog.
func (h *Handler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := h.svc.Catalog.Reload(r.Context(), h.svc.Loader)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to reload catalog", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to reload catalog")
		return
	}
	h.logger.InfoContext(r.Context(), "Catalog reloaded", "products", cat.Len(), "max_price", cat.MaxPrice())
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]any{
		"products":   cat.Len(),
		"categories": len(cat.Categories()),
		"maxPrice":   cat.MaxPrice(),
	})
}

func (h *Handler) productError(w http.ResponseWriter, r *http.Request, id string, err error) {
	if errors.Is(err, storefronterrors.ErrProductNotFound) {
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
		return
	}
	h.logger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
	web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %s", id))
}
