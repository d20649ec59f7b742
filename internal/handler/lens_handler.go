package handler

import (
	"airunote/internal/model"
	"airunote/internal/model/requestresponse"
	"airunote/internal/ports"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type LensHandler struct {
	ports.LensService
}

func NewLensHandler(lensService ports.LensService) *LensHandler {
	return &LensHandler{lensService}
}

// lensInput : запрос переводится в стандартную форму здесь, до сервиса
func lensInput(req requestresponse.CreateLensRequest) (model.LensInput, error) {
	input := model.LensInput{
		Name:      req.Name,
		Type:      model.LensType(req.Type),
		IsDefault: req.IsDefault,
		Metadata:  req.Metadata,
	}
	if req.Query != nil {
		query, err := model.UpgradeLensQuery(req.Query)
		if err != nil {
			return input, err
		}
		input.Query = &query
	}
	return input, nil
}

func lensUpdate(req requestresponse.UpdateLensRequest) (model.LensUpdate, error) {
	update := model.LensUpdate{Name: req.Name, IsDefault: req.IsDefault, Metadata: req.Metadata}
	if req.Query != nil {
		query, err := model.UpgradeLensQuery(req.Query)
		if err != nil {
			return update, err
		}
		update.Query = &query
	}
	return update, nil
}

func (h *LensHandler) ListFolderLenses(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	lenses, err := h.LensService.ListFolderLenses(r.Context(), orgID, userID, chi.URLParam(r, "folder_id"))
	if err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, lenses)
}

func (h *LensHandler) CreateFolderLens(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.CreateLensRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	input, err := lensInput(req)
	if err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}

	lens, err := h.LensService.CreateFolderLens(r.Context(), orgID, userID, chi.URLParam(r, "folder_id"), input)
	if err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}
	writeJSON(w, http.StatusCreated, lens)
}

func (h *LensHandler) UpdateFolderLens(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *LensHandler) UpdateDesktopLens(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *LensHandler) update(w http.ResponseWriter, r *http.Request, folderScoped bool) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdateLensRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	update, err := lensUpdate(req)
	if err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}

	lensID := chi.URLParam(r, "lens_id")
	var lens *model.Lens
	if folderScoped {
		lens, err = h.LensService.UpdateFolderLens(r.Context(), orgID, userID, lensID, update)
	} else {
		lens, err = h.LensService.UpdateDesktopLens(r.Context(), orgID, userID, lensID, update)
	}
	if err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, lens)
}

// SwitchFolderLens : атомарная смена линзы по умолчанию
func (h *LensHandler) SwitchFolderLens(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.SwitchLensRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lens, err := h.LensService.SwitchFolderLens(r.Context(), orgID, userID, chi.URLParam(r, "folder_id"), req.LensID)
	if err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, lens)
}

func (h *LensHandler) GetFolderProjection(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	projection, err := h.LensService.ResolveFolderProjection(r.Context(), orgID, userID, chi.URLParam(r, "folder_id"))
	if err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

func (h *LensHandler) ListDesktopLenses(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	lenses, err := h.LensService.ListDesktopLenses(r.Context(), orgID, userID)
	if err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, lenses)
}

func (h *LensHandler) CreateDesktopLens(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.CreateLensRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	input, err := lensInput(req)
	if err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}

	lens, err := h.LensService.CreateDesktopLens(r.Context(), orgID, userID, input)
	if err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}
	writeJSON(w, http.StatusCreated, lens)
}

func (h *LensHandler) GetLensProjection(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	projection, err := h.LensService.ResolveLensProjection(r.Context(), orgID, userID, chi.URLParam(r, "lens_id"))
	if err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

func (h *LensHandler) DuplicateLens(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.DuplicateLensRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lens, err := h.LensService.DuplicateLens(r.Context(), orgID, userID, chi.URLParam(r, "lens_id"), req.Name)
	if err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}
	writeJSON(w, http.StatusCreated, lens)
}

func (h *LensHandler) DeleteLens(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	lensID := chi.URLParam(r, "lens_id")
	if err := h.LensService.DeleteLens(r.Context(), orgID, userID, lensID); err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{lensID: true})
}

func (h *LensHandler) UpdateCanvasPositions(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.CanvasPositionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.LensService.UpdateCanvasPositions(r.Context(), orgID, userID, chi.URLParam(r, "lens_id"), req.Positions); err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": len(req.Positions)})
}

func (h *LensHandler) UpdateBoardCard(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req model.BoardCardUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.LensService.UpdateBoardCard(r.Context(), orgID, userID, chi.URLParam(r, "lens_id"), req); err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": 1})
}

func (h *LensHandler) UpdateBoardLanes(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.BoardLanesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.LensService.UpdateBoardLanes(r.Context(), orgID, userID, chi.URLParam(r, "lens_id"), req.Lanes); err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": len(req.Lanes)})
}

// UpdateBatchLayout : все изменения раскладки применяются одной транзакцией или не применяются вовсе
func (h *LensHandler) UpdateBatchLayout(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req model.BatchLayoutUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.LensService.UpdateBatchLayout(r.Context(), orgID, userID, chi.URLParam(r, "lens_id"), req); err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}
	total := len(req.CanvasPositions) + len(req.BoardCards) + len(req.BoardLanes)
	writeJSON(w, http.StatusOK, map[string]any{"updated": total})
}

func (h *LensHandler) UpsertItems(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.LensItemsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items, err := h.LensService.UpsertLensItems(r.Context(), orgID, userID, chi.URLParam(r, "lens_id"), req.Items)
	if err != nil {
		handleServiceError(w, "[LensHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
