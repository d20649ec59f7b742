package service

import (
	"airunote/internal/model"
	"airunote/internal/ports"
	"airunote/internal/util"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type DocumentService struct {
	db                 sqlx.ExtContext
	tx                 ports.TxManager
	folderRepository   ports.FolderRepository
	documentRepository ports.DocumentRepository
	shareRepository    ports.ShareRepository
	revisionRepository ports.RevisionRepository
	lensItemRepository ports.LensItemRepository
	auditRepository    ports.AuditRepository
	access             ports.AccessResolver
	storage            ports.S3Storage
	linkCache          ports.LinkCache
	ttl                time.Duration
}

func NewDocumentService(
	db sqlx.ExtContext,
	tx ports.TxManager,
	folderRepository ports.FolderRepository,
	documentRepository ports.DocumentRepository,
	shareRepository ports.ShareRepository,
	revisionRepository ports.RevisionRepository,
	lensItemRepository ports.LensItemRepository,
	auditRepository ports.AuditRepository,
	access ports.AccessResolver,
	storage ports.S3Storage,
	linkCache ports.LinkCache,
	ttl time.Duration,
) *DocumentService {
	return &DocumentService{
		db:                 db,
		tx:                 tx,
		folderRepository:   folderRepository,
		documentRepository: documentRepository,
		shareRepository:    shareRepository,
		revisionRepository: revisionRepository,
		lensItemRepository: lensItemRepository,
		auditRepository:    auditRepository,
		access:             access,
		storage:            storage,
		linkCache:          linkCache,
		ttl:                ttl,
	}
}

// CreateDocument : документ в папке владельца, атрибуты проверяются по схеме папки
func (s *DocumentService) CreateDocument(ctx context.Context, orgID, userID string, input model.CreateDocumentInput) (*model.Document, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, model.ValidationError("имя документа обязательно")
	}
	if !input.Type.Valid() {
		return nil, model.ValidationError("неизвестный тип документа %q", input.Type)
	}
	if input.FolderID == "" {
		return nil, model.ValidationError("не указана папка")
	}

	content := input.Content
	document := &model.Document{
		DocumentMeta: model.DocumentMeta{
			ID:          uuid.NewString(),
			FolderID:    input.FolderID,
			OrgID:       orgID,
			OwnerUserID: userID,
			Type:        input.Type,
			Name:        name,
			Visibility:  model.VisibilityPrivate,
			State:       model.DocumentStateActive,
			Attributes:  input.Attributes,
		},
		CanonicalContent: &content,
	}
	if document.Attributes == nil {
		document.Attributes = model.JSONMap{}
	}

	err := inTx(ctx, s.tx, "[DocumentService]", func(exec sqlx.ExtContext) error {
		folder, err := s.folderRepository.GetByID(ctx, exec, input.FolderID)
		if err != nil {
			return util.LogError("[DocumentService] не удалось получить папку", err)
		}
		if err := requireFolderOwned(folder, input.FolderID, orgID, userID); err != nil {
			return err
		}
		if err := validateAttributes(folder, document.Attributes); err != nil {
			return err
		}

		if err := s.documentRepository.Create(ctx, exec, document); err != nil {
			return util.LogError("[DocumentService] не удалось сохранить документ", err)
		}
		return appendRevision(ctx, s.revisionRepository, exec, document.ID, model.ContentCanonical, content, userID)
	})
	if err != nil {
		return nil, err
	}

	util.Logger.Info().Str("document_id", document.ID).Str("folder_id", document.FolderID).Msg("[DocumentService] документ создан")
	return document, nil
}

// GetDocument : чтение с проверкой доступа. Слот shared виден владельцу и тем, кто может писать
func (s *DocumentService) GetDocument(ctx context.Context, orgID, userID, documentID string) (*model.DocumentView, error) {
	access, err := s.access.CheckAccessWith(ctx, s.db, model.TargetDocument, documentID, userID, orgID)
	if err != nil {
		return nil, util.LogDomainError("[DocumentService]", err)
	}
	if !access.CanRead {
		return nil, util.LogDomainError("[DocumentService]", accessDenied(model.TargetDocument, documentID, "нет доступа к документу"))
	}

	document, err := s.documentRepository.GetByID(ctx, s.db, documentID)
	if err != nil {
		return nil, util.LogError("[DocumentService] не удалось получить документ", err)
	}
	if document == nil {
		return nil, model.NewError(model.KindNotFound, "документ не найден", "document", documentID)
	}

	view := &model.DocumentView{
		DocumentMeta: document.DocumentMeta,
		Content:      document.Content(),
		Access:       access,
	}
	if access.CanWrite {
		view.SharedContent = document.SharedContent
	}
	return view, nil
}

func (s *DocumentService) RenameDocument(ctx context.Context, orgID, userID, documentID, name string) (*model.DocumentMeta, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ValidationError("имя документа обязательно")
	}

	var renamed *model.DocumentMeta
	err := inTx(ctx, s.tx, "[DocumentService]", func(exec sqlx.ExtContext) error {
		document, err := s.loadOwnedDocument(ctx, exec, orgID, userID, documentID)
		if err != nil {
			return err
		}
		if err := s.documentRepository.Rename(ctx, exec, documentID, name); err != nil {
			return util.LogError("[DocumentService] не удалось переименовать документ", err)
		}
		document.Name = name
		renamed = document
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renamed, nil
}

// MoveDocument : новая папка той же организации и того же владельца, атрибуты должны пройти её схему
func (s *DocumentService) MoveDocument(ctx context.Context, orgID, userID, documentID, folderID string) (*model.DocumentMeta, error) {
	var moved *model.DocumentMeta

	err := inTx(ctx, s.tx, "[DocumentService]", func(exec sqlx.ExtContext) error {
		document, err := s.loadOwnedDocument(ctx, exec, orgID, userID, documentID)
		if err != nil {
			return err
		}

		folder, err := s.folderRepository.GetByID(ctx, exec, folderID)
		if err != nil {
			return util.LogError("[DocumentService] не удалось получить папку", err)
		}
		if err := requireFolderOwned(folder, folderID, orgID, userID); err != nil {
			return err
		}
		if err := validateAttributes(folder, document.Attributes); err != nil {
			return err
		}

		if err := s.documentRepository.Move(ctx, exec, documentID, folderID); err != nil {
			return util.LogError("[DocumentService] не удалось перенести документ", err)
		}
		document.FolderID = folderID
		moved = document
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// UpdateDocumentAttributes : атрибуты заменяются целиком, писать может владелец или редактор
func (s *DocumentService) UpdateDocumentAttributes(ctx context.Context, orgID, userID, documentID string, attributes model.JSONMap) (*model.DocumentMeta, error) {
	if attributes == nil {
		attributes = model.JSONMap{}
	}

	var updated *model.DocumentMeta
	err := inTx(ctx, s.tx, "[DocumentService]", func(exec sqlx.ExtContext) error {
		access, err := s.access.CheckAccessWith(ctx, exec, model.TargetDocument, documentID, userID, orgID)
		if err != nil {
			return err
		}
		if !access.CanWrite {
			return accessDenied(model.TargetDocument, documentID, "нет права на запись")
		}

		document, err := s.documentRepository.GetMetaByID(ctx, exec, documentID)
		if err != nil {
			return util.LogError("[DocumentService] не удалось получить документ", err)
		}
		if document == nil {
			return model.NewError(model.KindNotFound, "документ не найден", "document", documentID)
		}

		folder, err := s.folderRepository.GetByID(ctx, exec, document.FolderID)
		if err != nil {
			return util.LogError("[DocumentService] не удалось получить папку", err)
		}
		if err := validateAttributes(folder, attributes); err != nil {
			return err
		}

		if err := s.documentRepository.UpdateAttributes(ctx, exec, documentID, attributes); err != nil {
			return util.LogError("[DocumentService] не удалось обновить атрибуты", err)
		}
		document.Attributes = attributes
		updated = document
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteDocument : жёсткое удаление владельцем. Выдачи, размещения и ревизии уходят вместе с документом,
// вложения удаляются после коммита
func (s *DocumentService) DeleteDocument(ctx context.Context, orgID, userID, documentID string) error {
	var linkCodes []string

	err := inTx(ctx, s.tx, "[DocumentService]", func(exec sqlx.ExtContext) error {
		document, err := s.loadOwnedDocument(ctx, exec, orgID, userID, documentID)
		if err != nil {
			return err
		}
		linkCodes, err = s.deleteDocumentRecord(ctx, exec, document, userID)
		return err
	})
	if err != nil {
		return err
	}

	s.afterDocumentsDeleted(ctx, orgID, []string{documentID}, linkCodes)
	return nil
}

// deleteDocumentRecord : каскад одного документа внутри транзакции вызывающего
func (s *DocumentService) deleteDocumentRecord(ctx context.Context, exec sqlx.ExtContext, document *model.DocumentMeta, userID string) ([]string, error) {
	linkCodes, err := s.shareRepository.DeleteForTarget(ctx, exec, model.TargetDocument, document.ID)
	if err != nil {
		return nil, util.LogError("[DocumentService] не удалось удалить выдачи документа", err)
	}
	if err := s.lensItemRepository.DeleteByEntity(ctx, exec, model.TargetDocument, document.ID); err != nil {
		return nil, util.LogError("[DocumentService] не удалось удалить размещения документа", err)
	}
	if err := s.documentRepository.Delete(ctx, exec, document.ID); err != nil {
		return nil, util.LogError("[DocumentService] не удалось удалить документ", err)
	}

	err = s.auditRepository.Record(ctx, exec, &model.AuditLog{
		ID:          uuid.NewString(),
		OrgID:       document.OrgID,
		Event:       model.AuditDocumentDeleted,
		ActorUserID: userID,
		TargetType:  string(model.TargetDocument),
		TargetID:    document.ID,
		Metadata:    model.JSONMap{"name": document.Name, "folderId": document.FolderID},
	})
	if err != nil {
		return nil, util.LogError("[DocumentService] не удалось записать аудит", err)
	}
	return linkCodes, nil
}

// afterDocumentsDeleted : побочные эффекты вне транзакции. Ошибки только логируются, база уже согласована
func (s *DocumentService) afterDocumentsDeleted(ctx context.Context, orgID string, documentIDs []string, linkCodes []string) {
	if len(linkCodes) > 0 && s.linkCache != nil {
		if err := s.linkCache.DeleteShares(ctx, linkCodes...); err != nil {
			util.Logger.Warn().Err(err).Msg("[DocumentService] не удалось сбросить кэш ссылок")
		}
	}
	if s.storage == nil {
		return
	}
	for _, documentID := range documentIDs {
		if err := s.storage.DeletePrefix(ctx, AttachmentPrefix(orgID, documentID)); err != nil {
			util.Logger.Warn().Err(err).Str("document_id", documentID).Msg("[DocumentService] не удалось удалить вложения")
		}
	}
}

// CreateAttachmentUploadURL : pre-signed PUT для нового вложения, нужен доступ на запись
func (s *DocumentService) CreateAttachmentUploadURL(ctx context.Context, orgID, userID, documentID, filename string) (*model.AttachmentURL, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return nil, model.ValidationError("имя файла обязательно")
	}

	access, err := s.access.CheckAccessWith(ctx, s.db, model.TargetDocument, documentID, userID, orgID)
	if err != nil {
		return nil, util.LogDomainError("[DocumentService]", err)
	}
	if !access.CanWrite {
		return nil, util.LogDomainError("[DocumentService]", accessDenied(model.TargetDocument, documentID, "нет права на запись"))
	}

	key := AttachmentPrefix(orgID, documentID) + uuid.NewString() + "-" + name
	url, err := s.storage.GeneratePresignedPutURL(ctx, key, s.ttl)
	if err != nil {
		return nil, util.LogError("[DocumentService] не удалось получить URL загрузки", err)
	}

	return &model.AttachmentURL{Key: key, URL: url, ExpiresAt: time.Now().Add(s.ttl)}, nil
}

// CreateAttachmentDownloadURL : pre-signed GET, ключ обязан лежать под префиксом документа
func (s *DocumentService) CreateAttachmentDownloadURL(ctx context.Context, orgID, userID, documentID, key string) (*model.AttachmentURL, error) {
	if !strings.HasPrefix(key, AttachmentPrefix(orgID, documentID)) || strings.Contains(key, "..") {
		return nil, model.ValidationError("вложение не принадлежит документу")
	}

	access, err := s.access.CheckAccessWith(ctx, s.db, model.TargetDocument, documentID, userID, orgID)
	if err != nil {
		return nil, util.LogDomainError("[DocumentService]", err)
	}
	if !access.CanRead {
		return nil, util.LogDomainError("[DocumentService]", accessDenied(model.TargetDocument, documentID, "нет доступа к документу"))
	}

	url, err := s.storage.GeneratePresignedGetURL(ctx, key, s.ttl)
	if err != nil {
		return nil, util.LogError("[DocumentService] не удалось получить URL скачивания", err)
	}

	return &model.AttachmentURL{Key: key, URL: url, ExpiresAt: time.Now().Add(s.ttl)}, nil
}

func AttachmentPrefix(orgID, documentID string) string {
	return fmt.Sprintf("orgs/%s/documents/%s/", orgID, documentID)
}

func (s *DocumentService) loadOwnedDocument(ctx context.Context, exec sqlx.ExtContext, orgID, userID, documentID string) (*model.DocumentMeta, error) {
	document, err := s.documentRepository.GetMetaByID(ctx, exec, documentID)
	if err != nil {
		return nil, util.LogError("[DocumentService] не удалось получить документ", err)
	}
	if err := requireDocumentOwned(document, documentID, orgID, userID); err != nil {
		return nil, err
	}
	return document, nil
}

// validateAttributes : атрибуты против схемы папки, если она объявлена
func validateAttributes(folder *model.Folder, attributes model.JSONMap) error {
	if folder == nil {
		return nil
	}
	schema, err := folder.AttributeSchema()
	if err != nil {
		return err
	}
	return schema.Validate(attributes)
}
