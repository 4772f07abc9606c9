package like

import (
	"net/http"

	"wishboard/internal/http-server/handler/dto"
	"wishboard/internal/http-server/handler/respond"
	"wishboard/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/wb-go/wbf/zlog"
)

type LikeHandler struct {
	usecase likeUsecase
	logger  *zlog.Zerolog
}

func NewLikeHandler(usecase likeUsecase, logger *zlog.Zerolog) *LikeHandler {
	return &LikeHandler{usecase: usecase, logger: logger}
}

func (h *LikeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	result, err := h.usecase.Toggle(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respond.DomainError(w, h.logger, err, "toggle like")
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, dto.ToggleResponse{
		IsLiked:    result.Liked,
		TotalLikes: result.TotalLikes,
	})
}

func (h *LikeHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.usecase.Count(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.DomainError(w, h.logger, err, "count likes")
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, dto.LikesResponse{Likes: count})
}

func (h *LikeHandler) IsLiked(w http.ResponseWriter, r *http.Request) {
	liked, err := h.usecase.IsLiked(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "id"))
	if err != nil {
		respond.DomainError(w, h.logger, err, "check like")
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, dto.IsLikedResponse{IsLiked: liked})
}
