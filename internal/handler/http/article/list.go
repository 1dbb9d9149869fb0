package article

import (
	"net/http"
	"time"

	"ft-crawler/internal/common/pagination"
	"ft-crawler/internal/handler/http/respond"
	"ft-crawler/internal/repository"
	"ft-crawler/internal/usecase/article"
)

// Handler serves the article read endpoints.
type Handler struct {
	Service    *article.Service
	Pagination pagination.Config
}

// NewHandler creates an article handler with the given service and
// pagination configuration.
func NewHandler(svc *article.Service, cfg pagination.Config) *Handler {
	return &Handler{Service: svc, Pagination: cfg}
}

// List handles GET /articles. Supported query parameters: page, limit,
// from, to. The date filters accept RFC 3339 timestamps or plain dates
// (2006-01-02) and restrict results by publish time.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.ParseQueryParams(r, h.Pagination)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	filters, err := parseDateFilters(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Service.ListPaginated(r.Context(), params, filters)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	data := make([]ArticleSummary, 0, len(result.Data))
	for _, a := range result.Data {
		data = append(data, toArticleSummary(a))
	}

	respond.JSON(w, http.StatusOK, ListResponse{
		Data: data,
		Pagination: PaginationResponse{
			Total:      result.Pagination.Total,
			Page:       result.Pagination.Page,
			Limit:      result.Pagination.Limit,
			TotalPages: result.Pagination.TotalPages,
		},
	})
}

// dateLayouts are accepted for the from/to query parameters, tried in order.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDateFilters(r *http.Request) (repository.ArticleFilters, error) {
	var filters repository.ArticleFilters

	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return filters, errInvalidDate("from")
		}
		filters.From = &t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return filters, errInvalidDate("to")
		}
		filters.To = &t
	}
	return filters, nil
}

func parseDate(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
