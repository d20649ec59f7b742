package handler

import (
	"airunote/internal/model/requestresponse"
	"airunote/internal/ports"
	"net/http"
)

type VaultHandler struct {
	ports.VaultService
}

func NewVaultHandler(vaultService ports.VaultService) *VaultHandler {
	return &VaultHandler{vaultService}
}

// GetFullMetadata : плоский список без содержимого для индексации
func (h *VaultHandler) GetFullMetadata(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	metadata, err := h.VaultService.GetFullMetadata(r.Context(), orgID, userID)
	if err != nil {
		handleServiceError(w, "[VaultHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, metadata)
}

// DeleteVault : удаляет всё, чем пользователь владеет в организации. Нужен точный токен подтверждения
func (h *VaultHandler) DeleteVault(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req requestresponse.DeleteVaultRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	deletion, err := h.VaultService.DeleteUserVault(r.Context(), orgID, userID, req.ConfirmationToken)
	if err != nil {
		handleServiceError(w, "[VaultHandler]", err)
		return
	}
	writeJSON(w, http.StatusOK, deletion)
}
