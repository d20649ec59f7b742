package service

import (
	"airunote/internal/model"
	"airunote/internal/ports"
	"airunote/internal/util"
	"context"

	"github.com/jmoiron/sqlx"
)

// ContentService : canonical принадлежит владельцу, shared это один слот для редакторов.
// Каждое изменение любого из них добавляет ревизию
type ContentService struct {
	db                 sqlx.ExtContext
	tx                 ports.TxManager
	documentRepository ports.DocumentRepository
	revisionRepository ports.RevisionRepository
	access             ports.AccessResolver
}

func NewContentService(
	db sqlx.ExtContext,
	tx ports.TxManager,
	documentRepository ports.DocumentRepository,
	revisionRepository ports.RevisionRepository,
	access ports.AccessResolver,
) *ContentService {
	return &ContentService{
		db:                 db,
		tx:                 tx,
		documentRepository: documentRepository,
		revisionRepository: revisionRepository,
		access:             access,
	}
}

// UpdateDocumentContent : владелец пишет в canonical, редактор в shared
func (s *ContentService) UpdateDocumentContent(ctx context.Context, orgID, userID, documentID, content string) (model.ContentType, error) {
	var written model.ContentType

	err := inTx(ctx, s.tx, "[ContentService]", func(exec sqlx.ExtContext) error {
		document, err := s.lockDocument(ctx, exec, orgID, documentID)
		if err != nil {
			return err
		}

		if document.OwnerUserID == userID {
			written = model.ContentCanonical
			return s.writeCanonical(ctx, exec, documentID, content, userID)
		}

		if err := s.requireWriter(ctx, exec, orgID, userID, documentID); err != nil {
			return err
		}
		written = model.ContentShared
		return s.writeShared(ctx, exec, documentID, content, userID)
	})
	if err != nil {
		return "", err
	}
	return written, nil
}

// UpdateCanonicalContent : только владелец
func (s *ContentService) UpdateCanonicalContent(ctx context.Context, orgID, userID, documentID, content string) error {
	return inTx(ctx, s.tx, "[ContentService]", func(exec sqlx.ExtContext) error {
		if _, err := s.lockOwnedDocument(ctx, exec, orgID, userID, documentID); err != nil {
			return err
		}
		return s.writeCanonical(ctx, exec, documentID, content, userID)
	})
}

// UpdateSharedContent : только не-владелец с правом записи. Владелец правит canonical напрямую
func (s *ContentService) UpdateSharedContent(ctx context.Context, orgID, userID, documentID, content string) error {
	return inTx(ctx, s.tx, "[ContentService]", func(exec sqlx.ExtContext) error {
		document, err := s.lockDocument(ctx, exec, orgID, documentID)
		if err != nil {
			return err
		}
		if document.OwnerUserID == userID {
			return accessDenied(model.TargetDocument, documentID, "владелец редактирует canonical")
		}
		if err := s.requireWriter(ctx, exec, orgID, userID, documentID); err != nil {
			return err
		}
		return s.writeShared(ctx, exec, documentID, content, userID)
	})
}

// AcceptSharedIntoCanonical : shared переносится в canonical и очищается
func (s *ContentService) AcceptSharedIntoCanonical(ctx context.Context, orgID, userID, documentID string) error {
	return inTx(ctx, s.tx, "[ContentService]", func(exec sqlx.ExtContext) error {
		document, err := s.lockOwnedDocument(ctx, exec, orgID, userID, documentID)
		if err != nil {
			return err
		}
		if !document.HasSharedContent() {
			return model.NewError(model.KindNothingToAccept, "нет изменений для принятия", "document", documentID)
		}

		if err := s.documentRepository.AcceptSharedContent(ctx, exec, documentID); err != nil {
			return util.LogError("[ContentService] не удалось принять изменения", err)
		}
		return appendRevision(ctx, s.revisionRepository, exec, documentID, model.ContentCanonical, *document.SharedContent, userID)
	})
}

// RevertSharedToCanonical : слот shared очищается, canonical не меняется
func (s *ContentService) RevertSharedToCanonical(ctx context.Context, orgID, userID, documentID string) error {
	return inTx(ctx, s.tx, "[ContentService]", func(exec sqlx.ExtContext) error {
		document, err := s.lockOwnedDocument(ctx, exec, orgID, userID, documentID)
		if err != nil {
			return err
		}
		if !document.HasSharedContent() {
			return nil
		}

		if err := s.documentRepository.UpdateSharedContent(ctx, exec, documentID, nil); err != nil {
			return util.LogError("[ContentService] не удалось отменить изменения", err)
		}
		return nil
	})
}

// ListRevisions : история для всех, кто может читать документ
func (s *ContentService) ListRevisions(ctx context.Context, orgID, userID, documentID string) ([]model.Revision, error) {
	access, err := s.access.CheckAccessWith(ctx, s.db, model.TargetDocument, documentID, userID, orgID)
	if err != nil {
		return nil, util.LogDomainError("[ContentService]", err)
	}
	if !access.CanRead {
		return nil, util.LogDomainError("[ContentService]", accessDenied(model.TargetDocument, documentID, "нет доступа к документу"))
	}

	revisions, err := s.revisionRepository.ListByDocument(ctx, s.db, documentID)
	if err != nil {
		return nil, util.LogError("[ContentService] не удалось получить ревизии", err)
	}
	return revisions, nil
}

func (s *ContentService) writeCanonical(ctx context.Context, exec sqlx.ExtContext, documentID, content, userID string) error {
	if err := s.documentRepository.UpdateCanonicalContent(ctx, exec, documentID, content); err != nil {
		return util.LogError("[ContentService] не удалось обновить canonical", err)
	}
	return appendRevision(ctx, s.revisionRepository, exec, documentID, model.ContentCanonical, content, userID)
}

func (s *ContentService) writeShared(ctx context.Context, exec sqlx.ExtContext, documentID, content, userID string) error {
	if err := s.documentRepository.UpdateSharedContent(ctx, exec, documentID, &content); err != nil {
		return util.LogError("[ContentService] не удалось обновить shared", err)
	}
	return appendRevision(ctx, s.revisionRepository, exec, documentID, model.ContentShared, content, userID)
}

func (s *ContentService) requireWriter(ctx context.Context, exec sqlx.ExtContext, orgID, userID, documentID string) error {
	access, err := s.access.CheckAccessWith(ctx, exec, model.TargetDocument, documentID, userID, orgID)
	if err != nil {
		return err
	}
	if !access.CanWrite {
		return accessDenied(model.TargetDocument, documentID, "нет права на запись")
	}
	return nil
}

// lockDocument : документ под блокировкой, проверки существования и организации
func (s *ContentService) lockDocument(ctx context.Context, exec sqlx.ExtContext, orgID, documentID string) (*model.Document, error) {
	document, err := s.documentRepository.LockByID(ctx, exec, documentID)
	if err != nil {
		return nil, util.LogError("[ContentService] не удалось получить документ", err)
	}
	if document == nil {
		return nil, model.NewError(model.KindNotFound, "документ не найден", "document", documentID)
	}
	if document.OrgID != orgID {
		return nil, model.NewError(model.KindOrgMismatch, "документ принадлежит другой организации", "document", documentID)
	}
	return document, nil
}

func (s *ContentService) lockOwnedDocument(ctx context.Context, exec sqlx.ExtContext, orgID, userID, documentID string) (*model.Document, error) {
	document, err := s.lockDocument(ctx, exec, orgID, documentID)
	if err != nil {
		return nil, err
	}
	if document.OwnerUserID != userID {
		return nil, model.NewError(model.KindOwnerMismatch, "документ принадлежит другому пользователю", "document", documentID)
	}
	return document, nil
}
