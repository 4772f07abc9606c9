package wish

import (
	"net/http"

	"wishboard/internal/domain"
	"wishboard/internal/http-server/handler/dto"
	"wishboard/internal/http-server/handler/respond"
	"wishboard/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

type WishHandler struct {
	usecase  wishUsecase
	validate *validator.Validate
	logger   *zlog.Zerolog
}

func NewWishHandler(usecase wishUsecase, logger *zlog.Zerolog) *WishHandler {
	return &WishHandler{
		usecase:  usecase,
		validate: respond.NewValidator(),
		logger:   logger,
	}
}

func (h *WishHandler) List(w http.ResponseWriter, r *http.Request) {
	wishes, err := h.usecase.List(r.Context(), domain.WishFilter{ViewerID: viewer(r)})
	if err != nil {
		respond.DomainError(w, h.logger, err, "list wishes")
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, dto.NewWishListResponse(wishes))
}

func (h *WishHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	wishes, err := h.usecase.ListByOwner(r.Context(), chi.URLParam(r, "userId"), viewer(r))
	if err != nil {
		respond.DomainError(w, h.logger, err, "list wishes")
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, dto.NewWishListResponse(wishes))
}

func (h *WishHandler) Get(w http.ResponseWriter, r *http.Request) {
	wish, err := h.usecase.Get(r.Context(), chi.URLParam(r, "id"), viewer(r))
	if err != nil {
		respond.DomainError(w, h.logger, err, "get wish")
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, dto.NewWishResponse(wish))
}

func (h *WishHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWishRequest
	if err := respond.DecodeJSON(w, r, h.validate, &req); err != nil {
		respond.DomainError(w, h.logger, err, "create wish")
		return
	}

	wish, err := h.usecase.Create(r.Context(), middleware.UserID(r.Context()), req.Input())
	if err != nil {
		respond.DomainError(w, h.logger, err, "create wish")
		return
	}

	w.Header().Set("Location", "/api/wishes/"+wish.ID)
	respond.JSON(w, h.logger, http.StatusCreated, dto.NewWishResponse(wish))
}

func (h *WishHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateWishRequest
	if err := respond.DecodeJSON(w, r, h.validate, &req); err != nil {
		respond.DomainError(w, h.logger, err, "update wish")
		return
	}

	wish, err := h.usecase.Update(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), req.Input())
	if err != nil {
		respond.DomainError(w, h.logger, err, "update wish")
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, dto.NewWishResponse(wish))
}

func (h *WishHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	removed, err := h.usecase.Delete(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		respond.DomainError(w, h.logger, err, "delete wish")
		return
	}
	if !removed {
		respond.Error(w, h.logger, http.StatusNotFound, "Wish not found", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WishHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.ProfileRequest
	if err := respond.DecodeJSON(w, r, h.validate, &req); err != nil {
		respond.DomainError(w, h.logger, err, "save profile")
		return
	}

	profile, err := h.usecase.UpsertProfile(r.Context(), middleware.UserID(r.Context()), domain.Profile{
		ID:        chi.URLParam(r, "id"),
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respond.DomainError(w, h.logger, err, "save profile")
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, dto.NewProfileResponse(profile))
}

func (h *WishHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.usecase.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.DomainError(w, h.logger, err, "get profile")
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, dto.NewProfileResponse(profile))
}

func viewer(r *http.Request) string {
	if v := r.URL.Query().Get("viewer"); v != "" {
		return v
	}
	return middleware.UserID(r.Context())
}
