package handler

import (
	"airunote/internal/model"
	"airunote/internal/model/requestresponse"
	"airunote/internal/ports"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type FolderHandler struct {
	ports.HierarchyService
}

func NewFolderHandler(hierarchyService ports.HierarchyService) *FolderHandler {
	return &FolderHandler{hierarchyService}
}

// GetUserRoot : корень пользователя в организации, создаётся при первом обращении
func (h *FolderHandler) GetUserRoot(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	root, err := h.HierarchyService.EnsureUserRootExists(r.Context(), orgID, userID)
	if err != nil {
		handleServiceError(w, "[FolderHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, root)
}

// GetTree : дерево от папки folderId или от корня пользователя
func (h *FolderHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	tree, err := h.HierarchyService.ListFolderTree(r.Context(), orgID, userID, r.URL.Query().Get("folderId"))
	if err != nil {
		handleServiceError(w, "[FolderHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.CreateFolderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	folderType := model.FolderType(req.Type)
	if folderType == "" {
		folderType = model.FolderTypeBox
	}

	folder, err := h.HierarchyService.CreateFolder(r.Context(), orgID, userID, model.CreateFolderInput{
		ParentFolderID: req.ParentFolderID,
		HumanID:        req.HumanID,
		Type:           folderType,
		Metadata:       req.Metadata,
	})
	if err != nil {
		handleServiceError(w, "[FolderHandler]", err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdateFolderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	input := model.UpdateFolderInput{HumanID: req.HumanID, Metadata: req.Metadata}
	if req.Type != nil {
		folderType := model.FolderType(*req.Type)
		input.Type = &folderType
	}

	folder, err := h.HierarchyService.UpdateFolder(r.Context(), orgID, userID, chi.URLParam(r, "folder_id"), input)
	if err != nil {
		handleServiceError(w, "[FolderHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.MoveFolderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	folder, err := h.HierarchyService.MoveFolder(r.Context(), orgID, userID, chi.URLParam(r, "folder_id"), req.ParentFolderID)
	if err != nil {
		handleServiceError(w, "[FolderHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

// DeleteFolder : удаляется только пустая папка
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	folderID := chi.URLParam(r, "folder_id")
	if err := h.HierarchyService.DeleteFolder(r.Context(), orgID, userID, folderID); err != nil {
		handleServiceError(w, "[FolderHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{folderID: true})
}
