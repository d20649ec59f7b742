package service

import (
	"airunote/internal/model"
	"airunote/internal/ports"
	"airunote/internal/util"
	"context"
	"crypto/subtle"
	"sort"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type VaultService struct {
	db                 sqlx.ExtContext
	tx                 ports.TxManager
	folderRepository   ports.FolderRepository
	documentRepository ports.DocumentRepository
	lensRepository     ports.LensRepository
	lensItemRepository ports.LensItemRepository
	auditRepository    ports.AuditRepository
	hierarchy          *HierarchyService
	documents          *DocumentService
	confirmationToken  string
}

func NewVaultService(
	db sqlx.ExtContext,
	tx ports.TxManager,
	folderRepository ports.FolderRepository,
	documentRepository ports.DocumentRepository,
	lensRepository ports.LensRepository,
	lensItemRepository ports.LensItemRepository,
	auditRepository ports.AuditRepository,
	hierarchy *HierarchyService,
	documents *DocumentService,
	confirmationToken string,
) *VaultService {
	return &VaultService{
		db:                 db,
		tx:                 tx,
		folderRepository:   folderRepository,
		documentRepository: documentRepository,
		lensRepository:     lensRepository,
		lensItemRepository: lensItemRepository,
		auditRepository:    auditRepository,
		hierarchy:          hierarchy,
		documents:          documents,
		confirmationToken:  confirmationToken,
	}
}

// DeleteUserVault : удаляет всё, чем пользователь владеет в организации, одной транзакцией.
// Корень организации не трогается, даже если его создал этот пользователь
func (s *VaultService) DeleteUserVault(ctx context.Context, orgID, userID, confirmationToken string) (*model.VaultDeletion, error) {
	if s.confirmationToken == "" || subtle.ConstantTimeCompare([]byte(confirmationToken), []byte(s.confirmationToken)) != 1 {
		return nil, util.LogDomainError("[VaultService]", model.ValidationError("неверный токен подтверждения"))
	}

	result := &model.VaultDeletion{}
	var documentIDs, linkCodes []string

	err := inTx(ctx, s.tx, "[VaultService]", func(exec sqlx.ExtContext) error {
		documents, err := s.documentRepository.ListMetaByOwner(ctx, exec, orgID, userID)
		if err != nil {
			return util.LogError("[VaultService] не удалось получить документы", err)
		}
		for i := range documents {
			codes, err := s.documents.deleteDocumentRecord(ctx, exec, &documents[i], userID)
			if err != nil {
				return err
			}
			documentIDs = append(documentIDs, documents[i].ID)
			linkCodes = append(linkCodes, codes...)
		}

		folders, err := s.folderRepository.ListByOwner(ctx, exec, orgID, userID)
		if err != nil {
			return util.LogError("[VaultService] не удалось получить папки", err)
		}
		var userRoot *model.Folder
		for _, folder := range deepestFirst(folders) {
			switch {
			case folder.RootKind == model.RootKindOrg:
				continue
			case folder.RootKind == model.RootKindUser || folder.HumanID == model.UserRootHumanID:
				userRoot = folder
				continue
			}
			codes, err := s.hierarchy.deleteFolderRecord(ctx, exec, folder, userID, model.JSONMap{"vault": true})
			if err != nil {
				return err
			}
			linkCodes = append(linkCodes, codes...)
			result.Folders++
		}

		if err := s.lensRepository.DeleteDesktopByOwner(ctx, exec, orgID, userID); err != nil {
			return util.LogError("[VaultService] не удалось удалить линзы", err)
		}

		if err := s.folderRepository.DeleteUserRootMapping(ctx, exec, orgID, userID); err != nil {
			return util.LogError("[VaultService] не удалось удалить привязку корня", err)
		}
		if userRoot != nil {
			if err := s.lensItemRepository.DeleteByEntity(ctx, exec, model.TargetFolder, userRoot.ID); err != nil {
				return util.LogError("[VaultService] не удалось удалить размещения корня", err)
			}
			if err := s.folderRepository.Delete(ctx, exec, userRoot.ID); err != nil {
				return util.LogError("[VaultService] не удалось удалить корень пользователя", err)
			}
			result.Folders++
		}
		result.Documents = len(documentIDs)

		err = s.auditRepository.Record(ctx, exec, &model.AuditLog{
			ID:          uuid.NewString(),
			OrgID:       orgID,
			Event:       model.AuditVaultDeleted,
			ActorUserID: userID,
			TargetType:  "user",
			TargetID:    userID,
			Metadata:    model.JSONMap{"documents": result.Documents, "folders": result.Folders},
		})
		if err != nil {
			return util.LogError("[VaultService] не удалось записать аудит", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.documents.afterDocumentsDeleted(ctx, orgID, documentIDs, linkCodes)

	util.Logger.Info().
		Str("org_id", orgID).
		Str("user_id", userID).
		Int("documents", result.Documents).
		Int("folders", result.Folders).
		Msg("[VaultService] хранилище пользователя удалено")
	return result, nil
}

// deepestFirst : дети раньше родителей, чтобы внешний ключ parent_folder_id не мешал удалению
func deepestFirst(folders []model.Folder) []*model.Folder {
	byID := make(map[string]*model.Folder, len(folders))
	for i := range folders {
		byID[folders[i].ID] = &folders[i]
	}

	depth := make(map[string]int, len(folders))
	var depthOf func(folder *model.Folder, guard int) int
	depthOf = func(folder *model.Folder, guard int) int {
		if d, ok := depth[folder.ID]; ok {
			return d
		}
		parent, ok := byID[folder.ParentFolderID]
		if !ok || parent.ID == folder.ID || guard > len(folders) {
			depth[folder.ID] = 0
			return 0
		}
		d := depthOf(parent, guard+1) + 1
		depth[folder.ID] = d
		return d
	}

	ordered := make([]*model.Folder, 0, len(folders))
	for i := range folders {
		depthOf(&folders[i], 0)
		ordered = append(ordered, &folders[i])
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return depth[ordered[i].ID] > depth[ordered[j].ID]
	})
	return ordered
}

// GetFullMetadata : плоский список папок и документов пользователя без содержимого
func (s *VaultService) GetFullMetadata(ctx context.Context, orgID, userID string) (*model.FullMetadata, error) {
	folders, err := s.folderRepository.ListByOwner(ctx, s.db, orgID, userID)
	if err != nil {
		return nil, util.LogError("[VaultService] не удалось получить папки", err)
	}
	documents, err := s.documentRepository.ListMetaByOwner(ctx, s.db, orgID, userID)
	if err != nil {
		return nil, util.LogError("[VaultService] не удалось получить документы", err)
	}

	if folders == nil {
		folders = []model.Folder{}
	}
	if documents == nil {
		documents = []model.DocumentMeta{}
	}
	return &model.FullMetadata{Folders: folders, Documents: documents}, nil
}
