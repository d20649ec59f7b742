package handler

import (
	"airunote/internal/model"
	"airunote/internal/model/requestresponse"
	"airunote/internal/security"
	"airunote/internal/util"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes : ограничение тела запроса, крупнейшие тела это пакеты раскладки
const maxBodyBytes = 4 << 20

// statusForKind : вид бизнес-ошибки в HTTP статус
func statusForKind(kind model.ErrorKind) int {
	switch model.PublicKind(kind) {
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindAccessDenied, model.KindPasswordRequired:
		return http.StatusForbidden
	case model.KindValidation, model.KindReservedName, model.KindSchemaViolation:
		return http.StatusBadRequest
	case model.KindRootImmutable, model.KindCycleDetected, model.KindNothingToAccept:
		return http.StatusConflict
	case model.KindLinkExpired:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError : несовпадение организации или владельца наружу выглядит как отказ в доступе,
// сбои хранилища не раскрываются
func handleServiceError(w http.ResponseWriter, component string, err error) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		util.Logger.Error().Err(err).Msg(component + " внутренняя ошибка")
		util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	kind := model.PublicKind(domainErr.Kind)
	message := domainErr.Message
	if kind != domainErr.Kind {
		message = model.ErrAccessDenied.Message
	}
	util.HandleError(w, string(kind)+": "+message, statusForKind(domainErr.Kind))
}

// decodeJSON : разбор и проверка тела. При ошибке ответ уже записан
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		util.HandleError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	if err := util.ValidateStruct(target); err != nil {
		handleServiceError(w, "[Handler]", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(requestresponse.ResponseMessage{Response: payload})
}

// caller : организация из пути и пользователь из контекста. Членство уже проверил OrgMembershipMiddleware
func caller(w http.ResponseWriter, r *http.Request) (orgID string, userID string, ok bool) {
	principal, err := security.GetPrincipalFromContext(r.Context())
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return "", "", false
	}
	return chi.URLParam(r, "org_id"), principal.UserID, true
}
