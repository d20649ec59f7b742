package service

import (
	"airunote/internal/model"
	"airunote/internal/ports"
	"airunote/internal/util"
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// inTx : выполняет fn в одной транзакции. Бизнес-ошибки логируются как предупреждение, сбои хранилища
// должны быть обёрнуты внутри fn
func inTx(ctx context.Context, tx ports.TxManager, component string, fn func(exec sqlx.ExtContext) error) error {
	exec, rollback, commit, err := tx.BeginTX(ctx)
	if err != nil {
		return util.LogError(component+" не удалось начать транзакцию", err)
	}
	defer rollback()

	if err := fn(exec); err != nil {
		if model.KindOf(err) != "" {
			return util.LogDomainError(component, err)
		}
		return err
	}

	if err := commit(); err != nil {
		return util.LogError(component+" не удалось закоммитить транзакцию", err)
	}
	return nil
}

// requireOwned : порядок проверок любой записи: объект есть, та же организация, тот же владелец
func requireOwned(entityType, entityID string, found bool, entityOrgID, entityOwnerID, orgID, userID string) error {
	if !found {
		return model.NewError(model.KindNotFound, "объект не найден", entityType, entityID)
	}
	if entityOrgID != orgID {
		return model.NewError(model.KindOrgMismatch, "объект принадлежит другой организации", entityType, entityID)
	}
	if entityOwnerID != userID {
		return model.NewError(model.KindOwnerMismatch, "объект принадлежит другому пользователю", entityType, entityID)
	}
	return nil
}

func requireFolderOwned(folder *model.Folder, folderID, orgID, userID string) error {
	if folder == nil {
		return requireOwned("folder", folderID, false, "", "", orgID, userID)
	}
	return requireOwned("folder", folderID, true, folder.OrgID, folder.OwnerUserID, orgID, userID)
}

func requireDocumentOwned(document *model.DocumentMeta, documentID, orgID, userID string) error {
	if document == nil {
		return requireOwned("document", documentID, false, "", "", orgID, userID)
	}
	return requireOwned("document", documentID, true, document.OrgID, document.OwnerUserID, orgID, userID)
}

// requireFolderParent : корень организации держит только корни пользователей, обычные папки живут под корнем пользователя
func requireFolderParent(parent *model.Folder) error {
	if parent.RootKind == model.RootKindOrg {
		return model.NewError(model.KindValidation, "папку нельзя разместить в корне организации", "folder", parent.ID)
	}
	return nil
}

// requireMutable : корни нельзя переименовать, перенести, удалить или расшарить
func requireMutable(folder *model.Folder) error {
	if folder.IsRoot() {
		return model.NewError(model.KindRootImmutable, "корневую папку нельзя изменять", "folder", folder.ID)
	}
	return nil
}

// validateHumanID : имя папки непустое и не совпадает с зарезервированными
func validateHumanID(humanID string) (string, error) {
	trimmed := strings.TrimSpace(humanID)
	if trimmed == "" {
		return "", model.ValidationError("имя папки обязательно")
	}
	if model.IsReservedHumanID(trimmed) {
		return "", model.NewError(model.KindReservedName, "имя зарезервировано", "folder", trimmed)
	}
	return trimmed, nil
}

func accessDenied(entityType model.TargetType, entityID, message string) error {
	return model.NewError(model.KindAccessDenied, message, string(entityType), entityID)
}

// appendRevision : неизменяемый снимок содержимого
func appendRevision(ctx context.Context, repository ports.RevisionRepository, exec sqlx.ExtContext, documentID string, contentType model.ContentType, content, userID string) error {
	err := repository.Append(ctx, exec, &model.Revision{
		ID:              uuid.NewString(),
		DocumentID:      documentID,
		ContentType:     contentType,
		Content:         content,
		CreatedByUserID: userID,
	})
	if err != nil {
		return util.LogError("[Revision] не удалось сохранить ревизию", err)
	}
	return nil
}
