package handler

import (
	"airunote/internal/model"
	"airunote/internal/model/requestresponse"
	"airunote/internal/ports"
	"airunote/internal/util"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ShareHandler struct {
	ports.SharingService
}

func NewShareHandler(sharingService ports.SharingService) *ShareHandler {
	return &ShareHandler{sharingService}
}

// CreateShare : вид выдачи задаётся shareType, для link в ответе есть linkCode
func (h *ShareHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.ShareRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	targetType := model.TargetType(req.TargetType)
	options := model.ShareOptions{ViewOnly: req.ViewOnly, ExpiresAt: req.ExpiresAt}

	var (
		share *model.Share
		err   error
	)
	switch model.ShareType(req.ShareType) {
	case model.ShareTypeUser:
		share, err = h.SharingService.ShareToUser(r.Context(), orgID, userID, targetType, req.TargetID, req.GrantedToUserID, options)
	case model.ShareTypeOrg:
		share, err = h.SharingService.ShareToOrg(r.Context(), orgID, userID, targetType, req.TargetID, options)
	case model.ShareTypePublic:
		share, err = h.SharingService.SharePublic(r.Context(), orgID, userID, targetType, req.TargetID, options)
	case model.ShareTypeLink:
		share, err = h.SharingService.ShareViaLink(r.Context(), orgID, userID, targetType, req.TargetID, req.Password, options)
	}
	if err != nil {
		handleServiceError(w, "[ShareHandler]", err)
		return
	}
	writeJSON(w, http.StatusCreated, share)
}

func (h *ShareHandler) ListShares(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	targetType := model.TargetType(query.Get("targetType"))
	targetID := query.Get("targetId")
	if !targetType.Valid() || targetID == "" {
		util.HandleError(w, "нужны targetType (folder|document) и targetId", http.StatusBadRequest)
		return
	}

	shares, err := h.SharingService.ListShares(r.Context(), orgID, userID, targetType, targetID)
	if err != nil {
		handleServiceError(w, "[ShareHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, shares)
}

func (h *ShareHandler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	shareID := chi.URLParam(r, "share_id")
	if err := h.SharingService.RevokeShare(r.Context(), orgID, userID, shareID); err != nil {
		handleServiceError(w, "[ShareHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{shareID: true})
}

// ResolveLink : публичный вход без принципала. Тело с паролем необязательно, мёртвая ссылка отдаёт 404
func (h *ShareHandler) ResolveLink(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.ResolveLinkRequest
	if r.Method == http.MethodPost {
		if err := decodeOptionalJSON(w, r, &req); err != nil {
			util.HandleError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	resolution, err := h.SharingService.ResolveLink(r.Context(), chi.URLParam(r, "code"), req.Password)
	if err != nil {
		handleServiceError(w, "[ShareHandler]", err)
		return
	}
	if resolution == nil {
		util.HandleError(w, string(model.KindNotFound)+": ссылка недействительна", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, resolution)
}

// decodeOptionalJSON : пустое тело не ошибка
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, target any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(target)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
