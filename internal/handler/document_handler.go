package handler

import (
	"airunote/internal/model"
	"airunote/internal/model/requestresponse"
	"airunote/internal/ports"
	"airunote/internal/util"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type DocumentHandler struct {
	documents ports.DocumentService
	content   ports.ContentService
}

func NewDocumentHandler(documentService ports.DocumentService, contentService ports.ContentService) *DocumentHandler {
	return &DocumentHandler{documents: documentService, content: contentService}
}

func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.CreateDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	document, err := h.documents.CreateDocument(r.Context(), orgID, userID, model.CreateDocumentInput{
		FolderID:   req.FolderID,
		Name:       req.Name,
		Type:       model.DocumentType(req.Type),
		Content:    req.Content,
		Attributes: req.Attributes,
	})
	if err != nil {
		handleServiceError(w, "[DocumentHandler]", err)
		return
	}
	writeJSON(w, http.StatusCreated, model.DocumentView{
		DocumentMeta: document.DocumentMeta,
		Content:      document.Content(),
		Access:       model.OwnerAccess(),
	})
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	document, err := h.documents.GetDocument(r.Context(), orgID, userID, chi.URLParam(r, "document_id"))
	if err != nil {
		handleServiceError(w, "[DocumentHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, document)
}

func (h *DocumentHandler) RenameDocument(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.RenameDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	document, err := h.documents.RenameDocument(r.Context(), orgID, userID, chi.URLParam(r, "document_id"), req.Name)
	if err != nil {
		handleServiceError(w, "[DocumentHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, document)
}

func (h *DocumentHandler) MoveDocument(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.MoveDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	document, err := h.documents.MoveDocument(r.Context(), orgID, userID, chi.URLParam(r, "document_id"), req.FolderID)
	if err != nil {
		handleServiceError(w, "[DocumentHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, document)
}

func (h *DocumentHandler) UpdateAttributes(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdateAttributesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	document, err := h.documents.UpdateDocumentAttributes(r.Context(), orgID, userID, chi.URLParam(r, "document_id"), req.Attributes)
	if err != nil {
		handleServiceError(w, "[DocumentHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, document)
}

// DeleteDocument : жёсткое удаление, вложения чистятся после коммита
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	documentID := chi.URLParam(r, "document_id")
	if err := h.documents.DeleteDocument(r.Context(), orgID, userID, documentID); err != nil {
		handleServiceError(w, "[DocumentHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{documentID: true})
}

// UpdateContent : владелец пишет canonical, редактор с правом записи пишет shared
func (h *DocumentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdateContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	contentType, err := h.content.UpdateDocumentContent(r.Context(), orgID, userID, chi.URLParam(r, "document_id"), *req.Content)
	if err != nil {
		handleServiceError(w, "[DocumentHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, requestresponse.UpdateContentResponse{ContentType: string(contentType)})
}

func (h *DocumentHandler) UpdateCanonicalContent(w http.ResponseWriter, r *http.Request) {
	h.writeContent(w, r, model.ContentCanonical)
}

func (h *DocumentHandler) UpdateSharedContent(w http.ResponseWriter, r *http.Request) {
	h.writeContent(w, r, model.ContentShared)
}

func (h *DocumentHandler) writeContent(w http.ResponseWriter, r *http.Request, contentType model.ContentType) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdateContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	documentID := chi.URLParam(r, "document_id")
	var err error
	if contentType == model.ContentCanonical {
		err = h.content.UpdateCanonicalContent(r.Context(), orgID, userID, documentID, *req.Content)
	} else {
		err = h.content.UpdateSharedContent(r.Context(), orgID, userID, documentID, *req.Content)
	}
	if err != nil {
		handleServiceError(w, "[DocumentHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, requestresponse.UpdateContentResponse{ContentType: string(contentType)})
}

func (h *DocumentHandler) AcceptShared(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	documentID := chi.URLParam(r, "document_id")
	if err := h.content.AcceptSharedIntoCanonical(r.Context(), orgID, userID, documentID); err != nil {
		handleServiceError(w, "[DocumentHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{documentID: true})
}

func (h *DocumentHandler) RevertShared(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	documentID := chi.URLParam(r, "document_id")
	if err := h.content.RevertSharedToCanonical(r.Context(), orgID, userID, documentID); err != nil {
		handleServiceError(w, "[DocumentHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{documentID: true})
}

func (h *DocumentHandler) ListRevisions(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	revisions, err := h.content.ListRevisions(r.Context(), orgID, userID, chi.URLParam(r, "document_id"))
	if err != nil {
		handleServiceError(w, "[DocumentHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, revisions)
}

// CreateUploadURL : клиент загружает файл напрямую в S3 по pre-signed URL
func (h *DocumentHandler) CreateUploadURL(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.AttachmentUploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	attachment, err := h.documents.CreateAttachmentUploadURL(r.Context(), orgID, userID, chi.URLParam(r, "document_id"), req.Filename)
	if err != nil {
		handleServiceError(w, "[DocumentHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, attachment)
}

func (h *DocumentHandler) CreateDownloadURL(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		util.HandleError(w, "параметр key обязателен", http.StatusBadRequest)
		return
	}

	attachment, err := h.documents.CreateAttachmentDownloadURL(r.Context(), orgID, userID, chi.URLParam(r, "document_id"), key)
	if err != nil {
		handleServiceError(w, "[DocumentHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, attachment)
}
