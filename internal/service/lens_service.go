package service

import (
	"airunote/internal/model"
	"airunote/internal/ports"
	"airunote/internal/util"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	canvasPositionsPath = []string{"views", model.ViewCanvas, "positions"}
	boardCardsPath      = []string{"views", model.ViewBoard, "cards"}
	boardPath           = []string{"views", model.ViewBoard}
)

type LensService struct {
	db                 sqlx.ExtContext
	tx                 ports.TxManager
	folderRepository   ports.FolderRepository
	documentRepository ports.DocumentRepository
	lensRepository     ports.LensRepository
	lensItemRepository ports.LensItemRepository
	access             ports.AccessResolver
	maxBatchSize       int
}

func NewLensService(
	db sqlx.ExtContext,
	tx ports.TxManager,
	folderRepository ports.FolderRepository,
	documentRepository ports.DocumentRepository,
	lensRepository ports.LensRepository,
	lensItemRepository ports.LensItemRepository,
	access ports.AccessResolver,
	maxBatchSize int,
) *LensService {
	if maxBatchSize <= 0 {
		maxBatchSize = 500
	}
	return &LensService{
		db:                 db,
		tx:                 tx,
		folderRepository:   folderRepository,
		documentRepository: documentRepository,
		lensRepository:     lensRepository,
		lensItemRepository: lensItemRepository,
		access:             access,
		maxBatchSize:       maxBatchSize,
	}
}

// CreateFolderLens : первая линза папки становится линзой по умолчанию
func (s *LensService) CreateFolderLens(ctx context.Context, orgID, userID, folderID string, input model.LensInput) (*model.Lens, error) {
	if !input.Type.FolderScoped() {
		return nil, model.ValidationError("тип линзы %q не привязывается к папке", input.Type)
	}
	lens, err := newLens(orgID, userID, input)
	if err != nil {
		return nil, err
	}
	lens.FolderID = &folderID

	err = inTx(ctx, s.tx, "[LensService]", func(exec sqlx.ExtContext) error {
		folder, err := s.folderRepository.LockByID(ctx, exec, folderID)
		if err != nil {
			return util.LogError("[LensService] не удалось получить папку", err)
		}
		if err := requireFolderOwned(folder, folderID, orgID, userID); err != nil {
			return err
		}

		if err := s.lensRepository.Create(ctx, exec, lens); err != nil {
			return util.LogError("[LensService] не удалось создать линзу", err)
		}
		if input.IsDefault || folder.DefaultLensID == nil {
			if err := s.makeDefault(ctx, exec, folderID, lens.ID); err != nil {
				return err
			}
			lens.IsDefault = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lens, nil
}

// CreateDesktopLens : линза без папки, только desktop или saved
func (s *LensService) CreateDesktopLens(ctx context.Context, orgID, userID string, input model.LensInput) (*model.Lens, error) {
	if input.Type != model.LensTypeDesktop && input.Type != model.LensTypeSaved {
		return nil, model.ValidationError("тип линзы %q требует папку", input.Type)
	}
	lens, err := newLens(orgID, userID, input)
	if err != nil {
		return nil, err
	}
	lens.IsDefault = false

	err = inTx(ctx, s.tx, "[LensService]", func(exec sqlx.ExtContext) error {
		if err := s.lensRepository.Create(ctx, exec, lens); err != nil {
			return util.LogError("[LensService] не удалось создать линзу", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lens, nil
}

func newLens(orgID, userID string, input model.LensInput) (*model.Lens, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, model.ValidationError("имя линзы обязательно")
	}

	lens := &model.Lens{
		ID:          uuid.NewString(),
		OrgID:       orgID,
		OwnerUserID: userID,
		Name:        name,
		Type:        input.Type,
		Query:       model.DefaultLensQuery(),
	}
	if input.Metadata != nil {
		lens.Metadata = *input.Metadata
	}
	if input.Query != nil {
		query := *input.Query
		if err := query.Normalize(); err != nil {
			return nil, err
		}
		query.Version = model.LensQueryVersion
		lens.Query = query
	}
	return lens, nil
}

func (s *LensService) UpdateFolderLens(ctx context.Context, orgID, userID, lensID string, update model.LensUpdate) (*model.Lens, error) {
	return s.updateLens(ctx, orgID, userID, lensID, update, true)
}

func (s *LensService) UpdateDesktopLens(ctx context.Context, orgID, userID, lensID string, update model.LensUpdate) (*model.Lens, error) {
	if update.IsDefault != nil {
		return nil, model.ValidationError("линза без папки не бывает линзой по умолчанию")
	}
	return s.updateLens(ctx, orgID, userID, lensID, update, false)
}

func (s *LensService) updateLens(ctx context.Context, orgID, userID, lensID string, update model.LensUpdate, folderScoped bool) (*model.Lens, error) {
	var updated *model.Lens

	err := inTx(ctx, s.tx, "[LensService]", func(exec sqlx.ExtContext) error {
		lens, err := s.loadOwnedLens(ctx, exec, orgID, userID, lensID)
		if err != nil {
			return err
		}
		if folderScoped != (lens.FolderID != nil) {
			return model.NewError(model.KindValidation, "операция не подходит для этой линзы", "lens", lensID)
		}
		if folderScoped {
			if _, err := s.folderRepository.LockByID(ctx, exec, *lens.FolderID); err != nil {
				return util.LogError("[LensService] не удалось заблокировать папку", err)
			}
		}

		if update.Name != nil {
			name := strings.TrimSpace(*update.Name)
			if name == "" {
				return model.ValidationError("имя линзы обязательно")
			}
			lens.Name = name
		}
		if update.Query != nil {
			query := *update.Query
			if err := query.Normalize(); err != nil {
				return err
			}
			query.Version = model.LensQueryVersion
			lens.Query = query
		}

		if err := s.lensRepository.Update(ctx, exec, lens); err != nil {
			return util.LogError("[LensService] не удалось обновить линзу", err)
		}
		if update.Metadata != nil {
			if err := s.lensRepository.ReplaceMetadata(ctx, exec, lens.ID, *update.Metadata); err != nil {
				return util.LogError("[LensService] не удалось заменить metadata линзы", err)
			}
			lens.Metadata = *update.Metadata
		}

		if folderScoped && update.IsDefault != nil && *update.IsDefault != lens.IsDefault {
			if *update.IsDefault {
				err = s.makeDefault(ctx, exec, *lens.FolderID, lens.ID)
			} else {
				err = s.clearDefault(ctx, exec, *lens.FolderID)
			}
			if err != nil {
				return err
			}
			lens.IsDefault = *update.IsDefault
		}

		updated = lens
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SwitchFolderLens : снять флаг со всех линз папки, поставить выбранной и обновить папку. Строка папки
// блокируется, поэтому параллельные переключения выполняются по очереди
func (s *LensService) SwitchFolderLens(ctx context.Context, orgID, userID, folderID, lensID string) (*model.Lens, error) {
	var switched *model.Lens

	err := inTx(ctx, s.tx, "[LensService]", func(exec sqlx.ExtContext) error {
		folder, err := s.folderRepository.LockByID(ctx, exec, folderID)
		if err != nil {
			return util.LogError("[LensService] не удалось получить папку", err)
		}
		if err := requireFolderOwned(folder, folderID, orgID, userID); err != nil {
			return err
		}

		lens, err := s.lensRepository.GetByID(ctx, exec, lensID)
		if err != nil {
			return util.LogError("[LensService] не удалось получить линзу", err)
		}
		if lens == nil {
			return model.NewError(model.KindNotFound, "линза не найдена", "lens", lensID)
		}
		if lens.FolderID == nil || *lens.FolderID != folderID {
			return model.NewError(model.KindValidation, "линза не принадлежит папке", "lens", lensID)
		}

		if err := s.makeDefault(ctx, exec, folderID, lensID); err != nil {
			return err
		}
		lens.IsDefault = true
		switched = lens
		return nil
	})
	if err != nil {
		return nil, err
	}
	return switched, nil
}

func (s *LensService) makeDefault(ctx context.Context, exec sqlx.ExtContext, folderID, lensID string) error {
	if err := s.lensRepository.ClearDefaultForFolder(ctx, exec, folderID); err != nil {
		return util.LogError("[LensService] не удалось снять линзу по умолчанию", err)
	}
	if err := s.lensRepository.SetDefault(ctx, exec, lensID); err != nil {
		return util.LogError("[LensService] не удалось назначить линзу по умолчанию", err)
	}
	if err := s.folderRepository.SetDefaultLens(ctx, exec, folderID, &lensID); err != nil {
		return util.LogError("[LensService] не удалось обновить папку", err)
	}
	return nil
}

func (s *LensService) clearDefault(ctx context.Context, exec sqlx.ExtContext, folderID string) error {
	if err := s.lensRepository.ClearDefaultForFolder(ctx, exec, folderID); err != nil {
		return util.LogError("[LensService] не удалось снять линзу по умолчанию", err)
	}
	if err := s.folderRepository.SetDefaultLens(ctx, exec, folderID, nil); err != nil {
		return util.LogError("[LensService] не удалось обновить папку", err)
	}
	return nil
}

// DuplicateLens : копия линзы с размещениями, копия никогда не становится линзой по умолчанию
func (s *LensService) DuplicateLens(ctx context.Context, orgID, userID, lensID, name string) (*model.Lens, error) {
	var duplicate *model.Lens

	err := inTx(ctx, s.tx, "[LensService]", func(exec sqlx.ExtContext) error {
		source, err := s.loadOwnedLens(ctx, exec, orgID, userID, lensID)
		if err != nil {
			return err
		}

		copyName := strings.TrimSpace(name)
		if copyName == "" {
			copyName = source.Name + " copy"
		}
		duplicate = &model.Lens{
			ID:          uuid.NewString(),
			OrgID:       source.OrgID,
			OwnerUserID: source.OwnerUserID,
			FolderID:    source.FolderID,
			Name:        copyName,
			Type:        source.Type,
			IsDefault:   false,
			Metadata:    source.Metadata,
			Query:       source.Query,
		}

		if err := s.lensRepository.Create(ctx, exec, duplicate); err != nil {
			return util.LogError("[LensService] не удалось создать копию линзы", err)
		}
		if err := s.lensItemRepository.CopyToLens(ctx, exec, source.ID, duplicate.ID); err != nil {
			return util.LogError("[LensService] не удалось скопировать размещения", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return duplicate, nil
}

// DeleteLens : сначала папка перестаёт ссылаться на линзу, затем линза удаляется вместе с размещениями
func (s *LensService) DeleteLens(ctx context.Context, orgID, userID, lensID string) error {
	return inTx(ctx, s.tx, "[LensService]", func(exec sqlx.ExtContext) error {
		lens, err := s.loadOwnedLens(ctx, exec, orgID, userID, lensID)
		if err != nil {
			return err
		}

		if lens.FolderID != nil {
			folder, err := s.folderRepository.LockByID(ctx, exec, *lens.FolderID)
			if err != nil {
				return util.LogError("[LensService] не удалось получить папку", err)
			}
			if folder != nil && folder.DefaultLensID != nil && *folder.DefaultLensID == lensID {
				if err := s.folderRepository.SetDefaultLens(ctx, exec, folder.ID, nil); err != nil {
					return util.LogError("[LensService] не удалось обновить папку", err)
				}
			}
		}

		if err := s.lensRepository.Delete(ctx, exec, lensID); err != nil {
			return util.LogError("[LensService] не удалось удалить линзу", err)
		}
		return nil
	})
}

func (s *LensService) ListFolderLenses(ctx context.Context, orgID, userID, folderID string) ([]model.Lens, error) {
	if err := s.requireFolderReader(ctx, orgID, userID, folderID); err != nil {
		return nil, err
	}

	lenses, err := s.lensRepository.ListByFolder(ctx, s.db, folderID)
	if err != nil {
		return nil, util.LogError("[LensService] не удалось получить линзы папки", err)
	}
	return lenses, nil
}

func (s *LensService) ListDesktopLenses(ctx context.Context, orgID, userID string) ([]model.Lens, error) {
	lenses, err := s.lensRepository.ListDesktop(ctx, s.db, orgID, userID)
	if err != nil {
		return nil, util.LogError("[LensService] не удалось получить линзы", err)
	}
	return lenses, nil
}

// ResolveFolderProjection : вид папки через её линзу. Если линза не настроена, отдаётся неявная box линза
func (s *LensService) ResolveFolderProjection(ctx context.Context, orgID, userID, folderID string) (*model.Projection, error) {
	if err := s.requireFolderReader(ctx, orgID, userID, folderID); err != nil {
		return nil, err
	}

	folder, err := s.folderRepository.GetByID(ctx, s.db, folderID)
	if err != nil {
		return nil, util.LogError("[LensService] не удалось получить папку", err)
	}
	if folder == nil {
		return nil, model.NewError(model.KindNotFound, "папка не найдена", "folder", folderID)
	}

	lens, implicit, err := s.resolveFolderLens(ctx, folder)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, lens, implicit, folder)
}

// ResolveLensProjection : конкретная линза. Линза папки доступна всем, кто читает папку, остальные только владельцу
func (s *LensService) ResolveLensProjection(ctx context.Context, orgID, userID, lensID string) (*model.Projection, error) {
	lens, err := s.lensRepository.GetByID(ctx, s.db, lensID)
	if err != nil {
		return nil, util.LogError("[LensService] не удалось получить линзу", err)
	}
	if lens == nil {
		return nil, model.NewError(model.KindNotFound, "линза не найдена", "lens", lensID)
	}
	if lens.OrgID != orgID {
		return nil, util.LogDomainError("[LensService]", model.NewError(model.KindOrgMismatch, "линза принадлежит другой организации", "lens", lensID))
	}

	var folder *model.Folder
	if lens.FolderID != nil {
		if err := s.requireFolderReader(ctx, orgID, userID, *lens.FolderID); err != nil {
			return nil, err
		}
		folder, err = s.folderRepository.GetByID(ctx, s.db, *lens.FolderID)
		if err != nil {
			return nil, util.LogError("[LensService] не удалось получить папку", err)
		}
	} else if lens.OwnerUserID != userID {
		return nil, util.LogDomainError("[LensService]", model.NewError(model.KindOwnerMismatch, "линза принадлежит другому пользователю", "lens", lensID))
	}

	return s.project(ctx, lens, false, folder)
}

// resolveFolderLens : defaultLensId папки, затем флаг isDefault, затем неявная box линза
func (s *LensService) resolveFolderLens(ctx context.Context, folder *model.Folder) (*model.Lens, bool, error) {
	if folder.DefaultLensID != nil {
		lens, err := s.lensRepository.GetByID(ctx, s.db, *folder.DefaultLensID)
		if err != nil {
			return nil, false, util.LogError("[LensService] не удалось получить линзу папки", err)
		}
		if lens != nil && lens.FolderID != nil && *lens.FolderID == folder.ID {
			return lens, false, nil
		}
	}

	lens, err := s.lensRepository.GetDefaultForFolder(ctx, s.db, folder.ID)
	if err != nil {
		return nil, false, util.LogError("[LensService] не удалось получить линзу по умолчанию", err)
	}
	if lens != nil {
		return lens, false, nil
	}

	implicit := model.ImplicitBoxLens(folder)
	return &implicit, true, nil
}

func (s *LensService) project(ctx context.Context, lens *model.Lens, implicit bool, folder *model.Folder) (*model.Projection, error) {
	documents, err := s.ResolveLensDocuments(ctx, lens)
	if err != nil {
		return nil, err
	}

	projection := &model.Projection{
		Lens:      *lens,
		Implicit:  implicit,
		Folder:    folder,
		Folders:   []model.Folder{},
		Documents: documents,
		Items:     []model.LensItem{},
		Groups:    GroupDocuments(documents, lens.Query.GroupBy),
	}

	if folder != nil {
		projection.Folders, err = s.folderRepository.ListChildren(ctx, s.db, folder.ID)
		if err != nil {
			return nil, util.LogError("[LensService] не удалось получить дочерние папки", err)
		}
	}
	if !implicit {
		projection.Items, err = s.lensItemRepository.ListByLens(ctx, s.db, lens.ID)
		if err != nil {
			return nil, util.LogError("[LensService] не удалось получить размещения", err)
		}
	}
	return projection, nil
}

// ResolveLensDocuments : документы по запросу линзы. Фильтр по организации и владельцу линзы применяется всегда,
// фильтр по тегам принимается, но не применяется
func (s *LensService) ResolveLensDocuments(ctx context.Context, lens *model.Lens) ([]model.DocumentMeta, error) {
	query := lens.Query
	if query.Filters.AuthorID != nil && *query.Filters.AuthorID != lens.OwnerUserID {
		return []model.DocumentMeta{}, nil
	}

	documents, err := s.documentRepository.QueryMeta(ctx, s.db, model.DocumentFilter{
		OrgID:         lens.OrgID,
		OwnerUserID:   lens.OwnerUserID,
		FolderID:      lens.FolderID,
		State:         query.Filters.State,
		Text:          query.Filters.Text,
		Attributes:    query.Filters.Attributes,
		SortField:     query.Sort.Field,
		SortDirection: query.Sort.Direction,
	})
	if err != nil {
		return nil, util.LogError("[LensService] не удалось выбрать документы линзы", err)
	}
	return documents, nil
}

// GroupDocuments : группы в порядке первого появления ключа, порядок документов внутри сохраняется
func GroupDocuments(documents []model.DocumentMeta, groupBy *string) []model.ProjectionGroup {
	if groupBy == nil || *groupBy == "" {
		return nil
	}

	groups := []model.ProjectionGroup{}
	index := map[string]int{}
	for _, document := range documents {
		key := groupKey(document, *groupBy)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, model.ProjectionGroup{Key: key, DocumentIDs: []string{}})
		}
		groups[i].DocumentIDs = append(groups[i].DocumentIDs, document.ID)
	}
	return groups
}

func groupKey(document model.DocumentMeta, groupBy string) string {
	if attribute, ok := model.AttributeGroupKey(groupBy); ok {
		value, exists := document.Attributes[attribute]
		if !exists || value == nil {
			return ""
		}
		return fmt.Sprint(value)
	}

	switch groupBy {
	case "state":
		return string(document.State)
	case "type":
		return string(document.Type)
	case "folderId":
		return document.FolderID
	default:
		return ""
	}
}

// UpdateCanvasPositions : слияние позиций в views.canvas.positions, остальные позиции не трогаются
func (s *LensService) UpdateCanvasPositions(ctx context.Context, orgID, userID, lensID string, updates []model.CanvasPositionUpdate) error {
	if len(updates) == 0 {
		return model.ValidationError("нет позиций для обновления")
	}
	if len(updates) > s.maxBatchSize {
		return model.ValidationError("слишком много позиций: %d, максимум %d", len(updates), s.maxBatchSize)
	}
	if err := validateCanvasPositions(updates); err != nil {
		return err
	}

	return inTx(ctx, s.tx, "[LensService]", func(exec sqlx.ExtContext) error {
		lens, err := s.loadOwnedLens(ctx, exec, orgID, userID, lensID)
		if err != nil {
			return err
		}
		if err := requireView(lens, model.ViewCanvas); err != nil {
			return err
		}
		return s.mergeCanvasPositions(ctx, exec, lensID, updates)
	})
}

// UpdateBoardCard : перенос одной карточки, колонка должна существовать, если колонки заданы
func (s *LensService) UpdateBoardCard(ctx context.Context, orgID, userID, lensID string, update model.BoardCardUpdate) error {
	if err := validateBoardCards([]model.BoardCardUpdate{update}); err != nil {
		return err
	}

	return inTx(ctx, s.tx, "[LensService]", func(exec sqlx.ExtContext) error {
		lens, err := s.loadOwnedLens(ctx, exec, orgID, userID, lensID)
		if err != nil {
			return err
		}
		if err := requireView(lens, model.ViewBoard); err != nil {
			return err
		}
		if err := requireKnownLanes(lens.Metadata.Views.Board, nil, []model.BoardCardUpdate{update}); err != nil {
			return err
		}
		return s.mergeBoardCards(ctx, exec, lensID, []model.BoardCardUpdate{update})
	})
}

// UpdateBoardLanes : список колонок заменяется целиком, карточки не трогаются
func (s *LensService) UpdateBoardLanes(ctx context.Context, orgID, userID, lensID string, lanes []model.BoardLane) error {
	if err := validateBoardLanes(lanes, s.maxBatchSize); err != nil {
		return err
	}

	return inTx(ctx, s.tx, "[LensService]", func(exec sqlx.ExtContext) error {
		lens, err := s.loadOwnedLens(ctx, exec, orgID, userID, lensID)
		if err != nil {
			return err
		}
		if err := requireView(lens, model.ViewBoard); err != nil {
			return err
		}
		return s.mergeBoardLanes(ctx, exec, lensID, lanes)
	})
}

// UpdateBatchLayout : несколько изменений раскладки одной транзакцией. Вид линзы должен подходить к каждому изменению
func (s *LensService) UpdateBatchLayout(ctx context.Context, orgID, userID, lensID string, batch model.BatchLayoutUpdate) error {
	total := len(batch.CanvasPositions) + len(batch.BoardCards) + len(batch.BoardLanes)
	if total == 0 {
		return model.ValidationError("пустой пакет изменений")
	}
	if total > s.maxBatchSize {
		return model.ValidationError("слишком много изменений: %d, максимум %d", total, s.maxBatchSize)
	}
	if err := util.ValidateStruct(batch); err != nil {
		return err
	}
	if err := validateCanvasPositions(batch.CanvasPositions); err != nil {
		return err
	}
	if err := validateBoardCards(batch.BoardCards); err != nil {
		return err
	}
	if batch.BoardLanes != nil {
		if err := validateBoardLanes(batch.BoardLanes, s.maxBatchSize); err != nil {
			return err
		}
	}

	return inTx(ctx, s.tx, "[LensService]", func(exec sqlx.ExtContext) error {
		lens, err := s.loadOwnedLens(ctx, exec, orgID, userID, lensID)
		if err != nil {
			return err
		}

		if len(batch.CanvasPositions) > 0 {
			if err := requireView(lens, model.ViewCanvas); err != nil {
				return err
			}
		}
		if len(batch.BoardCards) > 0 || batch.BoardLanes != nil {
			if err := requireView(lens, model.ViewBoard); err != nil {
				return err
			}
			if err := requireKnownLanes(lens.Metadata.Views.Board, batch.BoardLanes, batch.BoardCards); err != nil {
				return err
			}
		}

		if batch.BoardLanes != nil {
			if err := s.mergeBoardLanes(ctx, exec, lensID, batch.BoardLanes); err != nil {
				return err
			}
		}
		if len(batch.BoardCards) > 0 {
			if err := s.mergeBoardCards(ctx, exec, lensID, batch.BoardCards); err != nil {
				return err
			}
		}
		if len(batch.CanvasPositions) > 0 {
			if err := s.mergeCanvasPositions(ctx, exec, lensID, batch.CanvasPositions); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *LensService) mergeCanvasPositions(ctx context.Context, exec sqlx.ExtContext, lensID string, updates []model.CanvasPositionUpdate) error {
	patch := make(map[string]any, len(updates))
	for _, update := range updates {
		patch[update.EntityID] = model.CanvasPosition{X: *update.X, Y: *update.Y}
	}
	if err := s.lensRepository.MergeMetadata(ctx, exec, lensID, canvasPositionsPath, patch); err != nil {
		return util.LogError("[LensService] не удалось обновить позиции", err)
	}
	return nil
}

func (s *LensService) mergeBoardCards(ctx context.Context, exec sqlx.ExtContext, lensID string, updates []model.BoardCardUpdate) error {
	patch := make(map[string]any, len(updates))
	for _, update := range updates {
		patch[update.CardID] = model.BoardCard{LaneID: update.LaneID, Order: *update.Order}
	}
	if err := s.lensRepository.MergeMetadata(ctx, exec, lensID, boardCardsPath, patch); err != nil {
		return util.LogError("[LensService] не удалось обновить карточки", err)
	}
	return nil
}

func (s *LensService) mergeBoardLanes(ctx context.Context, exec sqlx.ExtContext, lensID string, lanes []model.BoardLane) error {
	if err := s.lensRepository.MergeMetadata(ctx, exec, lensID, boardPath, map[string]any{"lanes": lanes}); err != nil {
		return util.LogError("[LensService] не удалось обновить колонки", err)
	}
	return nil
}

// UpsertLensItems : размещения пачкой в одной транзакции, ключ (lens, entity)
func (s *LensService) UpsertLensItems(ctx context.Context, orgID, userID, lensID string, items []model.LensItem) ([]model.LensItem, error) {
	if len(items) == 0 {
		return nil, model.ValidationError("нет размещений для сохранения")
	}
	if len(items) > s.maxBatchSize {
		return nil, model.ValidationError("слишком много размещений: %d, максимум %d", len(items), s.maxBatchSize)
	}
	for i := range items {
		if err := util.ValidateStruct(items[i]); err != nil {
			return nil, err
		}
		for _, value := range []*float64{items[i].Order, items[i].X, items[i].Y} {
			if value != nil && !model.Finite(*value) {
				return nil, model.ValidationError("координаты и порядок должны быть конечными числами")
			}
		}
	}

	err := inTx(ctx, s.tx, "[LensService]", func(exec sqlx.ExtContext) error {
		if _, err := s.loadOwnedLens(ctx, exec, orgID, userID, lensID); err != nil {
			return err
		}

		for i := range items {
			items[i].ID = uuid.NewString()
			items[i].LensID = lensID
			if items[i].Metadata == nil {
				items[i].Metadata = model.JSONMap{}
			}
		}
		if err := s.lensItemRepository.Upsert(ctx, exec, items); err != nil {
			return util.LogError("[LensService] не удалось сохранить размещения", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *LensService) loadOwnedLens(ctx context.Context, exec sqlx.ExtContext, orgID, userID, lensID string) (*model.Lens, error) {
	lens, err := s.lensRepository.GetByID(ctx, exec, lensID)
	if err != nil {
		return nil, util.LogError("[LensService] не удалось получить линзу", err)
	}
	if lens == nil {
		return nil, requireOwned("lens", lensID, false, "", "", orgID, userID)
	}
	if err := requireOwned("lens", lensID, true, lens.OrgID, lens.OwnerUserID, orgID, userID); err != nil {
		return nil, err
	}
	return lens, nil
}

func (s *LensService) requireFolderReader(ctx context.Context, orgID, userID, folderID string) error {
	access, err := s.access.CheckAccessWith(ctx, s.db, model.TargetFolder, folderID, userID, orgID)
	if err != nil {
		return util.LogDomainError("[LensService]", err)
	}
	if !access.CanRead {
		return util.LogDomainError("[LensService]", accessDenied(model.TargetFolder, folderID, "нет доступа к папке"))
	}
	return nil
}

// requireView : изменение раскладки должно совпадать с видом линзы
func requireView(lens *model.Lens, view string) error {
	if model.ViewKindFor(lens.Type) != view {
		return model.NewError(model.KindValidation, fmt.Sprintf("линза типа %s не поддерживает раскладку %s", lens.Type, view), "lens", lens.ID)
	}
	return nil
}

func validateCanvasPositions(updates []model.CanvasPositionUpdate) error {
	for _, update := range updates {
		if err := util.ValidateStruct(update); err != nil {
			return err
		}
		if !model.Finite(*update.X, *update.Y) {
			return model.ValidationError("координаты %q должны быть конечными числами", update.EntityID)
		}
	}
	return nil
}

func validateBoardCards(updates []model.BoardCardUpdate) error {
	for _, update := range updates {
		if err := util.ValidateStruct(update); err != nil {
			return err
		}
		if !model.Finite(*update.Order) {
			return model.ValidationError("порядок карточки %q должен быть конечным числом", update.CardID)
		}
	}
	return nil
}

func validateBoardLanes(lanes []model.BoardLane, maxBatchSize int) error {
	if len(lanes) > maxBatchSize {
		return model.ValidationError("слишком много колонок: %d, максимум %d", len(lanes), maxBatchSize)
	}
	seen := make(map[string]struct{}, len(lanes))
	for _, lane := range lanes {
		if err := util.ValidateStruct(lane); err != nil {
			return err
		}
		if !model.Finite(lane.Order) {
			return model.ValidationError("порядок колонки %q должен быть конечным числом", lane.ID)
		}
		if _, ok := seen[lane.ID]; ok {
			return model.ValidationError("колонка %q повторяется", lane.ID)
		}
		seen[lane.ID] = struct{}{}
	}
	return nil
}

// requireKnownLanes : карточку можно положить только в объявленную колонку. Доска без колонок принимает любые
func requireKnownLanes(board *model.BoardLayout, newLanes []model.BoardLane, cards []model.BoardCardUpdate) error {
	lanes := newLanes
	if lanes == nil && board != nil {
		lanes = board.Lanes
	}
	if len(lanes) == 0 {
		return nil
	}

	known := make(map[string]struct{}, len(lanes))
	for _, lane := range lanes {
		known[lane.ID] = struct{}{}
	}
	for _, card := range cards {
		if _, ok := known[card.LaneID]; !ok {
			return model.ValidationError("колонка %q не существует", card.LaneID)
		}
	}
	return nil
}
