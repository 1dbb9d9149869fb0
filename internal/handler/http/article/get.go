package article

import (
	"errors"
	"fmt"
	"net/http"

	"ft-crawler/internal/handler/http/pathutil"
	"ft-crawler/internal/handler/http/respond"
	"ft-crawler/internal/usecase/article"
)

func errInvalidDate(param string) error {
	return fmt.Errorf("invalid %s parameter: must be an RFC 3339 timestamp or YYYY-MM-DD date", param)
}

// Get handles GET /articles/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/articles/")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid article ID")
		return
	}

	a, err := h.Service.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, article.ErrInvalidArticleID):
			respond.Error(w, http.StatusBadRequest, "invalid article ID")
		case errors.Is(err, article.ErrArticleNotFound):
			respond.Error(w, http.StatusNotFound, "article not found")
		default:
			respond.SafeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	respond.JSON(w, http.StatusOK, toArticleResponse(a))
}
