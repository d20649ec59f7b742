package service

import (
	"airunote/internal/model"
	"airunote/internal/ports"
	"airunote/internal/util"
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type HierarchyService struct {
	db                 sqlx.ExtContext
	tx                 ports.TxManager
	folderRepository   ports.FolderRepository
	documentRepository ports.DocumentRepository
	shareRepository    ports.ShareRepository
	lensItemRepository ports.LensItemRepository
	auditRepository    ports.AuditRepository
	access             ports.AccessResolver
	linkCache          ports.LinkCache
	maxDepth           int
}

func NewHierarchyService(
	db sqlx.ExtContext,
	tx ports.TxManager,
	folderRepository ports.FolderRepository,
	documentRepository ports.DocumentRepository,
	shareRepository ports.ShareRepository,
	lensItemRepository ports.LensItemRepository,
	auditRepository ports.AuditRepository,
	access ports.AccessResolver,
	linkCache ports.LinkCache,
	maxDepth int,
) *HierarchyService {
	if maxDepth <= 0 {
		maxDepth = model.DefaultMaxTreeDepth
	}
	return &HierarchyService{
		db:                 db,
		tx:                 tx,
		folderRepository:   folderRepository,
		documentRepository: documentRepository,
		shareRepository:    shareRepository,
		lensItemRepository: lensItemRepository,
		auditRepository:    auditRepository,
		access:             access,
		linkCache:          linkCache,
		maxDepth:           maxDepth,
	}
}

// EnsureOrgRootExists : корень организации создаётся один раз. При гонке проигравший перечитывает строку победителя
func (s *HierarchyService) EnsureOrgRootExists(ctx context.Context, orgID, userID string) (*model.Folder, error) {
	root, err := s.folderRepository.GetOrgRoot(ctx, s.db, orgID)
	if err != nil {
		return nil, util.LogError("[HierarchyService] не удалось получить корень организации", err)
	}
	if root != nil {
		return root, nil
	}

	id := uuid.NewString()
	root = &model.Folder{
		ID:             id,
		OrgID:          orgID,
		OwnerUserID:    userID,
		ParentFolderID: id,
		HumanID:        model.OrgRootHumanID,
		Visibility:     model.VisibilityOrg,
		Type:           model.FolderTypeBox,
		RootKind:       model.RootKindOrg,
		Metadata:       model.JSONMap{},
	}

	err = inTx(ctx, s.tx, "[HierarchyService]", func(exec sqlx.ExtContext) error {
		return s.folderRepository.InsertOrgRoot(ctx, exec, root)
	})
	if errors.Is(err, model.ErrAlreadyExists) {
		return s.rereadAfterConflict(ctx, func() (*model.Folder, error) {
			return s.folderRepository.GetOrgRoot(ctx, s.db, orgID)
		})
	}
	if err != nil {
		return nil, util.LogError("[HierarchyService] не удалось создать корень организации", err)
	}

	util.Logger.Info().Str("org_id", orgID).Str("folder_id", root.ID).Msg("[HierarchyService] создан корень организации")
	return root, nil
}

// EnsureUserRootExists : идемпотентно, повторный вызов возвращает тот же корень
func (s *HierarchyService) EnsureUserRootExists(ctx context.Context, orgID, userID string) (*model.Folder, error) {
	root, err := s.folderRepository.GetUserRoot(ctx, s.db, orgID, userID)
	if err != nil {
		return nil, util.LogError("[HierarchyService] не удалось получить корень пользователя", err)
	}
	if root != nil {
		return root, nil
	}

	orgRoot, err := s.EnsureOrgRootExists(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}

	root = &model.Folder{
		ID:             uuid.NewString(),
		OrgID:          orgID,
		OwnerUserID:    userID,
		ParentFolderID: orgRoot.ID,
		HumanID:        model.UserRootHumanID,
		Visibility:     model.VisibilityPrivate,
		Type:           model.FolderTypeBox,
		RootKind:       model.RootKindUser,
		Metadata:       model.JSONMap{},
	}

	err = inTx(ctx, s.tx, "[HierarchyService]", func(exec sqlx.ExtContext) error {
		return s.folderRepository.InsertUserRoot(ctx, exec, root)
	})
	if errors.Is(err, model.ErrAlreadyExists) {
		return s.rereadAfterConflict(ctx, func() (*model.Folder, error) {
			return s.folderRepository.GetUserRoot(ctx, s.db, orgID, userID)
		})
	}
	if err != nil {
		return nil, util.LogError("[HierarchyService] не удалось создать корень пользователя", err)
	}

	util.Logger.Info().Str("org_id", orgID).Str("user_id", userID).Msg("[HierarchyService] создан корень пользователя")
	return root, nil
}

// rereadAfterConflict : ровно одно перечитывание после нарушения уникальности
func (s *HierarchyService) rereadAfterConflict(ctx context.Context, read func() (*model.Folder, error)) (*model.Folder, error) {
	winner, err := read()
	if err != nil {
		return nil, util.LogError("[HierarchyService] не удалось перечитать корень после конфликта", err)
	}
	if winner == nil {
		return nil, util.LogError("[HierarchyService] корень не найден после конфликта", model.ErrAlreadyExists)
	}
	return winner, nil
}

func (s *HierarchyService) CreateFolder(ctx context.Context, orgID, userID string, input model.CreateFolderInput) (*model.Folder, error) {
	humanID, err := validateHumanID(input.HumanID)
	if err != nil {
		return nil, err
	}
	if !input.Type.Valid() {
		return nil, model.ValidationError("неизвестный тип папки %q", input.Type)
	}
	if err := validateFolderMetadata(input.Metadata); err != nil {
		return nil, err
	}

	parentID := input.ParentFolderID
	if parentID == "" {
		userRoot, err := s.EnsureUserRootExists(ctx, orgID, userID)
		if err != nil {
			return nil, err
		}
		parentID = userRoot.ID
	}

	folder := &model.Folder{
		ID:             uuid.NewString(),
		OrgID:          orgID,
		OwnerUserID:    userID,
		ParentFolderID: parentID,
		HumanID:        humanID,
		Visibility:     model.VisibilityPrivate,
		Type:           input.Type,
		Metadata:       input.Metadata,
	}
	if folder.Metadata == nil {
		folder.Metadata = model.JSONMap{}
	}

	err = inTx(ctx, s.tx, "[HierarchyService]", func(exec sqlx.ExtContext) error {
		parent, err := s.folderRepository.GetByID(ctx, exec, parentID)
		if err != nil {
			return util.LogError("[HierarchyService] не удалось получить родительскую папку", err)
		}
		if err := requireFolderOwned(parent, parentID, orgID, userID); err != nil {
			return err
		}
		if err := requireFolderParent(parent); err != nil {
			return err
		}

		if err := s.folderRepository.Create(ctx, exec, folder); err != nil {
			return util.LogError("[HierarchyService] не удалось создать папку", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return folder, nil
}

func (s *HierarchyService) UpdateFolder(ctx context.Context, orgID, userID, folderID string, input model.UpdateFolderInput) (*model.Folder, error) {
	var updated *model.Folder

	err := inTx(ctx, s.tx, "[HierarchyService]", func(exec sqlx.ExtContext) error {
		folder, err := s.loadMutableFolder(ctx, exec, orgID, userID, folderID)
		if err != nil {
			return err
		}

		if input.HumanID != nil {
			humanID, err := validateHumanID(*input.HumanID)
			if err != nil {
				return err
			}
			folder.HumanID = humanID
		}
		if input.Type != nil {
			if !input.Type.Valid() {
				return model.ValidationError("неизвестный тип папки %q", *input.Type)
			}
			folder.Type = *input.Type
		}
		if input.Metadata != nil {
			if err := validateFolderMetadata(input.Metadata); err != nil {
				return err
			}
			folder.Metadata = input.Metadata
		}

		if err := s.folderRepository.Update(ctx, exec, folder); err != nil {
			return util.LogError("[HierarchyService] не удалось обновить папку", err)
		}
		updated = folder
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// MoveFolder : новая родительская цепочка не должна содержать саму папку
func (s *HierarchyService) MoveFolder(ctx context.Context, orgID, userID, folderID, newParentID string) (*model.Folder, error) {
	var moved *model.Folder

	err := inTx(ctx, s.tx, "[HierarchyService]", func(exec sqlx.ExtContext) error {
		folder, err := s.loadMutableFolder(ctx, exec, orgID, userID, folderID)
		if err != nil {
			return err
		}

		parent, err := s.folderRepository.GetByID(ctx, exec, newParentID)
		if err != nil {
			return util.LogError("[HierarchyService] не удалось получить новую родительскую папку", err)
		}
		if err := requireFolderOwned(parent, newParentID, orgID, userID); err != nil {
			return err
		}
		if err := requireFolderParent(parent); err != nil {
			return err
		}

		ancestors, err := s.folderRepository.FindAncestorIDs(ctx, exec, newParentID, s.maxDepth)
		if err != nil {
			return util.LogError("[HierarchyService] не удалось получить цепочку предков", err)
		}
		if newParentID == folderID || slices.Contains(ancestors, folderID) {
			return model.NewError(model.KindCycleDetected, "папку нельзя перенести в её потомка", "folder", folderID)
		}

		if err := s.folderRepository.UpdateParent(ctx, exec, folderID, newParentID); err != nil {
			return util.LogError("[HierarchyService] не удалось перенести папку", err)
		}
		folder.ParentFolderID = newParentID
		moved = folder
		return nil
	})
	if err != nil {
		return nil, err
	}

	return moved, nil
}

// DeleteFolder : удаляется только пустая папка, вместе с её выдачами и размещениями в линзах
func (s *HierarchyService) DeleteFolder(ctx context.Context, orgID, userID, folderID string) error {
	var linkCodes []string

	err := inTx(ctx, s.tx, "[HierarchyService]", func(exec sqlx.ExtContext) error {
		folder, err := s.loadMutableFolder(ctx, exec, orgID, userID, folderID)
		if err != nil {
			return err
		}

		folders, documents, err := s.folderRepository.CountChildren(ctx, exec, folderID)
		if err != nil {
			return util.LogError("[HierarchyService] не удалось посчитать содержимое папки", err)
		}
		if folders > 0 || documents > 0 {
			return model.NewError(model.KindValidation, "папка не пуста", "folder", folderID)
		}

		linkCodes, err = s.deleteFolderRecord(ctx, exec, folder, userID, model.JSONMap{"humanId": folder.HumanID})
		return err
	})
	if err != nil {
		return err
	}

	s.dropCachedLinks(ctx, linkCodes)
	return nil
}

// deleteFolderRecord : каскад одной папки внутри транзакции вызывающего. Возвращает коды ссылок для сброса кэша
func (s *HierarchyService) deleteFolderRecord(ctx context.Context, exec sqlx.ExtContext, folder *model.Folder, userID string, metadata model.JSONMap) ([]string, error) {
	linkCodes, err := s.shareRepository.DeleteForTarget(ctx, exec, model.TargetFolder, folder.ID)
	if err != nil {
		return nil, util.LogError("[HierarchyService] не удалось удалить выдачи папки", err)
	}
	if err := s.lensItemRepository.DeleteByEntity(ctx, exec, model.TargetFolder, folder.ID); err != nil {
		return nil, util.LogError("[HierarchyService] не удалось удалить размещения папки", err)
	}
	if err := s.folderRepository.Delete(ctx, exec, folder.ID); err != nil {
		return nil, util.LogError("[HierarchyService] не удалось удалить папку", err)
	}

	err = s.auditRepository.Record(ctx, exec, &model.AuditLog{
		ID:          uuid.NewString(),
		OrgID:       folder.OrgID,
		Event:       model.AuditFolderDeleted,
		ActorUserID: userID,
		TargetType:  string(model.TargetFolder),
		TargetID:    folder.ID,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, util.LogError("[HierarchyService] не удалось записать аудит", err)
	}
	return linkCodes, nil
}

// ListFolderTree : поддерево папки до maxDepth с документами без содержимого. Пустой folderID это корень пользователя
func (s *HierarchyService) ListFolderTree(ctx context.Context, orgID, userID, folderID string) (*model.FolderNode, error) {
	if folderID == "" {
		root, err := s.EnsureUserRootExists(ctx, orgID, userID)
		if err != nil {
			return nil, err
		}
		folderID = root.ID
	}

	access, err := s.access.CheckAccessWith(ctx, s.db, model.TargetFolder, folderID, userID, orgID)
	if err != nil {
		return nil, util.LogDomainError("[HierarchyService]", err)
	}
	if !access.CanRead {
		return nil, util.LogDomainError("[HierarchyService]", accessDenied(model.TargetFolder, folderID, "нет доступа к папке"))
	}

	nodes, err := s.folderRepository.FindSubtree(ctx, s.db, folderID, s.maxDepth)
	if err != nil {
		return nil, util.LogError("[HierarchyService] не удалось получить дерево папок", err)
	}
	if len(nodes) == 0 {
		return nil, model.NewError(model.KindNotFound, "папка не найдена", "folder", folderID)
	}

	ids := make([]string, 0, len(nodes))
	for _, node := range nodes {
		ids = append(ids, node.ID)
	}
	documents, err := s.documentRepository.ListMetaByFolders(ctx, s.db, ids)
	if err != nil {
		return nil, util.LogError("[HierarchyService] не удалось получить документы дерева", err)
	}

	return BuildFolderTree(nodes, documents), nil
}

// BuildFolderTree : собирает плоский список в дерево. Первый элемент это корень
func BuildFolderTree(nodes []model.FolderNode, documents []model.DocumentMeta) *model.FolderNode {
	if len(nodes) == 0 {
		return nil
	}

	byID := make(map[string]*model.FolderNode, len(nodes))
	for i := range nodes {
		node := &nodes[i]
		node.Folders = []*model.FolderNode{}
		node.Documents = []model.DocumentMeta{}
		byID[node.ID] = node
	}

	root := &nodes[0]
	for i := 1; i < len(nodes); i++ {
		node := &nodes[i]
		if parent, ok := byID[node.ParentFolderID]; ok && parent != node {
			parent.Folders = append(parent.Folders, node)
		}
	}
	for _, document := range documents {
		if node, ok := byID[document.FolderID]; ok {
			node.Documents = append(node.Documents, document)
		}
	}
	return root
}

// loadMutableFolder : папка под блокировкой после проверок существования, организации, владельца и корня
func (s *HierarchyService) loadMutableFolder(ctx context.Context, exec sqlx.ExtContext, orgID, userID, folderID string) (*model.Folder, error) {
	folder, err := s.folderRepository.LockByID(ctx, exec, folderID)
	if err != nil {
		return nil, util.LogError("[HierarchyService] не удалось получить папку", err)
	}
	if err := requireFolderOwned(folder, folderID, orgID, userID); err != nil {
		return nil, err
	}
	if err := requireMutable(folder); err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *HierarchyService) dropCachedLinks(ctx context.Context, linkCodes []string) {
	if len(linkCodes) == 0 || s.linkCache == nil {
		return
	}
	if err := s.linkCache.DeleteShares(ctx, linkCodes...); err != nil {
		util.Logger.Warn().Err(err).Msg("[HierarchyService] не удалось сбросить кэш ссылок")
	}
}

// validateFolderMetadata : если папка объявляет схему атрибутов, она должна разбираться
func validateFolderMetadata(metadata model.JSONMap) error {
	folder := model.Folder{Metadata: metadata}
	_, err := folder.AttributeSchema()
	return err
}
