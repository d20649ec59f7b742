package service

import (
	"airunote/internal/model"
	"airunote/internal/ports"
	"airunote/internal/util"
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type AccessService struct {
	db                 sqlx.ExtContext
	folderRepository   ports.FolderRepository
	documentRepository ports.DocumentRepository
	shareRepository    ports.ShareRepository
}

func NewAccessService(
	db sqlx.ExtContext,
	folderRepository ports.FolderRepository,
	documentRepository ports.DocumentRepository,
	shareRepository ports.ShareRepository,
) *AccessService {
	return &AccessService{
		db:                 db,
		folderRepository:   folderRepository,
		documentRepository: documentRepository,
		shareRepository:    shareRepository,
	}
}

// CheckAccess : права принципала на папку или документ вне транзакции
func (s *AccessService) CheckAccess(ctx context.Context, targetType model.TargetType, targetID, userID, orgID string) (model.Access, error) {
	return s.CheckAccessWith(ctx, s.db, targetType, targetID, userID, orgID)
}

// CheckAccessWith : владелец, затем выдача пользователю, организации и публичная. Первое совпадение побеждает.
// Ссылки здесь не участвуют, у них своя точка входа без принципала
func (s *AccessService) CheckAccessWith(ctx context.Context, exec sqlx.ExtContext, targetType model.TargetType, targetID, userID, orgID string) (model.Access, error) {
	ownership, err := s.loadOwnership(ctx, exec, targetType, targetID)
	if err != nil {
		return model.NoAccess(), err
	}
	if ownership == nil {
		return model.NoAccess(), model.NewError(model.KindNotFound, "объект не найден", string(targetType), targetID)
	}
	if ownership.OrgID != orgID {
		return model.NoAccess(), model.NewError(model.KindOrgMismatch, "объект принадлежит другой организации", string(targetType), targetID)
	}
	if ownership.OwnerUserID == userID {
		return model.OwnerAccess(), nil
	}

	shares, err := s.shareRepository.FindActiveForTarget(ctx, exec, targetType, targetID, time.Now())
	if err != nil {
		return model.NoAccess(), util.LogError("[AccessService] не удалось получить выдачи", err)
	}

	return ResolveShareAccess(shares, userID, orgID), nil
}

// ResolveShareAccess : выбор выдачи по приоритету user > org > public
func ResolveShareAccess(shares []model.Share, userID, orgID string) model.Access {
	var userShare, orgShare, publicShare *model.Share
	for i := range shares {
		share := &shares[i]
		if share.OrgID != orgID {
			continue
		}
		switch share.ShareType {
		case model.ShareTypeUser:
			if userShare == nil && share.GrantedToUserID != nil && *share.GrantedToUserID == userID {
				userShare = share
			}
		case model.ShareTypeOrg:
			if orgShare == nil {
				orgShare = share
			}
		case model.ShareTypePublic:
			if publicShare == nil {
				publicShare = share
			}
		}
	}

	for _, share := range []*model.Share{userShare, orgShare, publicShare} {
		if share != nil {
			return model.SharedAccess(share)
		}
	}
	return model.NoAccess()
}

func (s *AccessService) loadOwnership(ctx context.Context, exec sqlx.ExtContext, targetType model.TargetType, targetID string) (*model.Ownership, error) {
	switch targetType {
	case model.TargetFolder:
		folder, err := s.folderRepository.GetByID(ctx, exec, targetID)
		if err != nil {
			return nil, util.LogError("[AccessService] не удалось получить папку", err)
		}
		if folder == nil {
			return nil, nil
		}
		return &model.Ownership{ID: folder.ID, OrgID: folder.OrgID, OwnerUserID: folder.OwnerUserID, RootKind: folder.RootKind, TargetType: targetType}, nil
	case model.TargetDocument:
		document, err := s.documentRepository.GetMetaByID(ctx, exec, targetID)
		if err != nil {
			return nil, util.LogError("[AccessService] не удалось получить документ", err)
		}
		if document == nil {
			return nil, nil
		}
		return &model.Ownership{ID: document.ID, OrgID: document.OrgID, OwnerUserID: document.OwnerUserID, TargetType: targetType}, nil
	default:
		return nil, model.ValidationError("неизвестный тип объекта %q", targetType)
	}
}
