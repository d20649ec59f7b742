package service

import (
	"airunote/internal/model"
	"airunote/internal/ports"
	"airunote/internal/util"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type SharingService struct {
	db                 sqlx.ExtContext
	tx                 ports.TxManager
	folderRepository   ports.FolderRepository
	documentRepository ports.DocumentRepository
	shareRepository    ports.ShareRepository
	auditRepository    ports.AuditRepository
	passwordHasher     ports.PasswordHasher
	linkCache          ports.LinkCache
}

func NewSharingService(
	db sqlx.ExtContext,
	tx ports.TxManager,
	folderRepository ports.FolderRepository,
	documentRepository ports.DocumentRepository,
	shareRepository ports.ShareRepository,
	auditRepository ports.AuditRepository,
	passwordHasher ports.PasswordHasher,
	linkCache ports.LinkCache,
) *SharingService {
	return &SharingService{
		db:                 db,
		tx:                 tx,
		folderRepository:   folderRepository,
		documentRepository: documentRepository,
		shareRepository:    shareRepository,
		auditRepository:    auditRepository,
		passwordHasher:     passwordHasher,
		linkCache:          linkCache,
	}
}

func (s *SharingService) ShareToUser(ctx context.Context, orgID, userID string, targetType model.TargetType, targetID, grantedToUserID string, options model.ShareOptions) (*model.Share, error) {
	if grantedToUserID == "" {
		return nil, model.ValidationError("не указан пользователь")
	}
	if grantedToUserID == userID {
		return nil, model.ValidationError("нельзя выдать доступ самому себе")
	}

	share := s.newShare(orgID, userID, targetType, targetID, model.ShareTypeUser, options)
	share.GrantedToUserID = &grantedToUserID
	if err := s.grantShare(ctx, share); err != nil {
		return nil, err
	}
	return share, nil
}

func (s *SharingService) ShareToOrg(ctx context.Context, orgID, userID string, targetType model.TargetType, targetID string, options model.ShareOptions) (*model.Share, error) {
	share := s.newShare(orgID, userID, targetType, targetID, model.ShareTypeOrg, options)
	if err := s.grantShare(ctx, share); err != nil {
		return nil, err
	}
	return share, nil
}

func (s *SharingService) SharePublic(ctx context.Context, orgID, userID string, targetType model.TargetType, targetID string, options model.ShareOptions) (*model.Share, error) {
	share := s.newShare(orgID, userID, targetType, targetID, model.ShareTypePublic, options)
	if err := s.grantShare(ctx, share); err != nil {
		return nil, err
	}
	return share, nil
}

// ShareViaLink : пароль хэшируется до начала транзакции, в базу попадает только хэш
func (s *SharingService) ShareViaLink(ctx context.Context, orgID, userID string, targetType model.TargetType, targetID string, password *string, options model.ShareOptions) (*model.Share, error) {
	share := s.newShare(orgID, userID, targetType, targetID, model.ShareTypeLink, options)

	if password != nil && *password != "" {
		hash, err := s.passwordHasher.Hash(*password)
		if err != nil {
			return nil, util.LogError("[SharingService] не удалось захэшировать пароль ссылки", err)
		}
		share.LinkPasswordHash = &hash
	}

	if err := s.grantShare(ctx, share); err != nil {
		return nil, err
	}

	util.Logger.Info().Str("share_id", share.ID).Str("target_id", targetID).Msg("[SharingService] создана ссылка")
	return share, nil
}

func (s *SharingService) newShare(orgID, userID string, targetType model.TargetType, targetID string, shareType model.ShareType, options model.ShareOptions) *model.Share {
	return &model.Share{
		ID:              uuid.NewString(),
		OrgID:           orgID,
		TargetType:      targetType,
		TargetID:        targetID,
		ShareType:       shareType,
		ViewOnly:        options.ViewOnly,
		CreatedByUserID: userID,
		ExpiresAt:       options.ExpiresAt,
		CreatedAt:       time.Now(),
	}
}

// grantShare : выдавать может только владелец объекта, корни не выдаются
func (s *SharingService) grantShare(ctx context.Context, share *model.Share) error {
	if !share.TargetType.Valid() {
		return model.ValidationError("неизвестный тип объекта %q", share.TargetType)
	}
	if share.ExpiresAt != nil && !share.ExpiresAt.After(time.Now()) {
		return model.ValidationError("срок действия уже истёк")
	}

	return inTx(ctx, s.tx, "[SharingService]", func(exec sqlx.ExtContext) error {
		if err := s.requireShareableTarget(ctx, exec, share.OrgID, share.CreatedByUserID, share.TargetType, share.TargetID); err != nil {
			return err
		}

		if share.ShareType == model.ShareTypeLink {
			code, err := util.GenerateUniqueLinkCode(func(code string) (bool, error) {
				return s.shareRepository.LinkCodeExists(ctx, exec, code)
			})
			if err != nil {
				return util.LogError("[SharingService] не удалось сгенерировать код ссылки", err)
			}
			share.LinkCode = &code
		}

		if err := s.shareRepository.Create(ctx, exec, share); err != nil {
			return util.LogError("[SharingService] не удалось сохранить выдачу", err)
		}
		return nil
	})
}

func (s *SharingService) requireShareableTarget(ctx context.Context, exec sqlx.ExtContext, orgID, userID string, targetType model.TargetType, targetID string) error {
	switch targetType {
	case model.TargetFolder:
		folder, err := s.folderRepository.GetByID(ctx, exec, targetID)
		if err != nil {
			return util.LogError("[SharingService] не удалось получить папку", err)
		}
		if err := requireFolderOwned(folder, targetID, orgID, userID); err != nil {
			return err
		}
		return requireMutable(folder)
	case model.TargetDocument:
		document, err := s.documentRepository.GetMetaByID(ctx, exec, targetID)
		if err != nil {
			return util.LogError("[SharingService] не удалось получить документ", err)
		}
		return requireDocumentOwned(document, targetID, orgID, userID)
	default:
		return model.ValidationError("неизвестный тип объекта %q", targetType)
	}
}

// RevokeShare : отозвать может только создатель выдачи в своей организации
func (s *SharingService) RevokeShare(ctx context.Context, orgID, userID, shareID string) error {
	var revoked *model.Share

	err := inTx(ctx, s.tx, "[SharingService]", func(exec sqlx.ExtContext) error {
		share, err := s.shareRepository.GetByID(ctx, exec, shareID)
		if err != nil {
			return util.LogError("[SharingService] не удалось получить выдачу", err)
		}
		if share == nil {
			return requireOwned("share", shareID, false, "", "", orgID, userID)
		}
		if err := requireOwned("share", shareID, true, share.OrgID, share.CreatedByUserID, orgID, userID); err != nil {
			return err
		}

		if err := s.shareRepository.Delete(ctx, exec, shareID); err != nil {
			return util.LogError("[SharingService] не удалось удалить выдачу", err)
		}

		event := model.AuditShareRevoked
		if share.ShareType == model.ShareTypeLink {
			event = model.AuditLinkRevoked
		}
		err = s.auditRepository.Record(ctx, exec, &model.AuditLog{
			ID:          uuid.NewString(),
			OrgID:       orgID,
			Event:       event,
			ActorUserID: userID,
			TargetType:  string(share.TargetType),
			TargetID:    share.TargetID,
			Metadata:    model.JSONMap{"shareId": share.ID, "shareType": string(share.ShareType)},
		})
		if err != nil {
			return util.LogError("[SharingService] не удалось записать аудит", err)
		}

		revoked = share
		return nil
	})
	if err != nil {
		return err
	}

	if revoked.LinkCode != nil && s.linkCache != nil {
		if err := s.linkCache.DeleteShares(ctx, *revoked.LinkCode); err != nil {
			util.Logger.Warn().Err(err).Msg("[SharingService] не удалось сбросить кэш ссылки")
		}
	}
	return nil
}

// ListShares : действующие выдачи объекта, видны только владельцу
func (s *SharingService) ListShares(ctx context.Context, orgID, userID string, targetType model.TargetType, targetID string) ([]model.Share, error) {
	if !targetType.Valid() {
		return nil, model.ValidationError("неизвестный тип объекта %q", targetType)
	}

	switch targetType {
	case model.TargetFolder:
		folder, err := s.folderRepository.GetByID(ctx, s.db, targetID)
		if err != nil {
			return nil, util.LogError("[SharingService] не удалось получить папку", err)
		}
		if err := requireFolderOwned(folder, targetID, orgID, userID); err != nil {
			return nil, util.LogDomainError("[SharingService]", err)
		}
	case model.TargetDocument:
		document, err := s.documentRepository.GetMetaByID(ctx, s.db, targetID)
		if err != nil {
			return nil, util.LogError("[SharingService] не удалось получить документ", err)
		}
		if err := requireDocumentOwned(document, targetID, orgID, userID); err != nil {
			return nil, util.LogDomainError("[SharingService]", err)
		}
	}

	shares, err := s.shareRepository.FindActiveForTarget(ctx, s.db, targetType, targetID, time.Now())
	if err != nil {
		return nil, util.LogError("[SharingService] не удалось получить выдачи", err)
	}
	return shares, nil
}

// FindShareByLinkCode : действующая ссылка по коду, истёкшие не возвращаются
func (s *SharingService) FindShareByLinkCode(ctx context.Context, linkCode string) (*model.Share, error) {
	share, err := s.lookupLink(ctx, linkCode)
	if err != nil || share == nil {
		return nil, err
	}
	if share.Expired(time.Now()) {
		return nil, nil
	}
	return share, nil
}

// ResolveLink : nil без ошибки для неизвестного кода или удалённого объекта, LinkExpired для истёкшей ссылки,
// PasswordRequired если пароль не передан или не подходит
func (s *SharingService) ResolveLink(ctx context.Context, linkCode string, password *string) (*model.LinkResolution, error) {
	share, err := s.lookupLink(ctx, linkCode)
	if err != nil || share == nil {
		return nil, err
	}

	if share.Expired(time.Now()) {
		return nil, model.NewError(model.KindLinkExpired, "срок действия ссылки истёк", "share", share.ID)
	}

	exists, err := s.targetExists(ctx, share.TargetType, share.TargetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		s.forgetLink(ctx, linkCode)
		return nil, nil
	}

	if share.LinkPasswordHash != nil {
		if password == nil || *password == "" || !s.passwordHasher.Compare(*share.LinkPasswordHash, *password) {
			return nil, model.NewError(model.KindPasswordRequired, "нужен пароль ссылки", "share", share.ID)
		}
	}

	return &model.LinkResolution{
		TargetType: share.TargetType,
		TargetID:   share.TargetID,
		ViewOnly:   share.ViewOnly,
	}, nil
}

// lookupLink : сначала Redis, затем база. Кэш только ускоряет поиск, срок и объект проверяются всегда
func (s *SharingService) lookupLink(ctx context.Context, linkCode string) (*model.Share, error) {
	if linkCode == "" {
		return nil, nil
	}

	if s.linkCache != nil {
		share, err := s.linkCache.GetShare(ctx, linkCode)
		if err != nil {
			util.Logger.Warn().Err(err).Msg("[SharingService] ошибка кэша ссылок")
		}
		if share != nil {
			return share, nil
		}
	}

	share, err := s.shareRepository.FindByLinkCode(ctx, s.db, linkCode)
	if err != nil {
		return nil, util.LogError("[SharingService] не удалось получить ссылку", err)
	}
	if share == nil {
		return nil, nil
	}

	if s.linkCache != nil && !share.Expired(time.Now()) {
		if err := s.linkCache.SetShare(ctx, share); err != nil {
			util.Logger.Warn().Err(err).Msg("[SharingService] не удалось закэшировать ссылку")
		}
	}
	return share, nil
}

func (s *SharingService) targetExists(ctx context.Context, targetType model.TargetType, targetID string) (bool, error) {
	switch targetType {
	case model.TargetFolder:
		folder, err := s.folderRepository.GetByID(ctx, s.db, targetID)
		if err != nil {
			return false, util.LogError("[SharingService] не удалось получить папку", err)
		}
		return folder != nil, nil
	case model.TargetDocument:
		document, err := s.documentRepository.GetMetaByID(ctx, s.db, targetID)
		if err != nil {
			return false, util.LogError("[SharingService] не удалось получить документ", err)
		}
		return document != nil, nil
	default:
		return false, nil
	}
}

func (s *SharingService) forgetLink(ctx context.Context, linkCode string) {
	if s.linkCache == nil {
		return
	}
	if err := s.linkCache.DeleteShares(ctx, linkCode); err != nil {
		util.Logger.Warn().Err(err).Msg("[SharingService] не удалось сбросить кэш ссылки")
	}
}
