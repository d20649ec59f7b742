package service_test

import (
	"airunote/internal/model"
	"airunote/internal/service"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type lensFixture struct {
	svc       *service.LensService
	tx        *MockTxManager
	folders   *MockFolderRepository
	documents *MockDocumentRepository
	lenses    *MockLensRepository
	items     *MockLensItemRepository
	access    *MockAccessResolver
}

func newLensFixture() *lensFixture {
	f := &lensFixture{
		tx:        newMockTxManager(),
		folders:   new(MockFolderRepository),
		documents: new(MockDocumentRepository),
		lenses:    new(MockLensRepository),
		items:     new(MockLensItemRepository),
		access:    new(MockAccessResolver),
	}
	f.svc = service.NewLensService(&fakeTx{}, f.tx, f.folders, f.documents, f.lenses, f.items, f.access, 3)
	return f
}

func folderLens(id string, lensType model.LensType, folderID string) *model.Lens {
	return &model.Lens{ID: id, OrgID: testOrgID, OwnerUserID: testUserID, FolderID: &folderID,
		Name: id, Type: lensType, Query: model.DefaultLensQuery()}
}

func lensIDIs(id string) interface{} {
	return mock.MatchedBy(func(lensID *string) bool { return lensID != nil && *lensID == id })
}

func float(v float64) *float64 { return &v }

func TestSwitchFolderLens(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()

	f.folders.On("LockByID", ctx, f.tx.exec, "a").Return(ownedFolder("a", "user-root"), nil).Once()
	f.lenses.On("GetByID", ctx, f.tx.exec, "l2").Return(folderLens("l2", model.LensTypeBoard, "a"), nil).Once()
	f.lenses.On("ClearDefaultForFolder", ctx, f.tx.exec, "a").Return(nil).Once()
	f.lenses.On("SetDefault", ctx, f.tx.exec, "l2").Return(nil).Once()
	f.folders.On("SetDefaultLens", ctx, f.tx.exec, "a", lensIDIs("l2")).Return(nil).Once()

	lens, err := f.svc.SwitchFolderLens(ctx, testOrgID, testUserID, "a", "l2")

	require.NoError(t, err)
	assert.True(t, lens.IsDefault)
	assert.Equal(t, 1, f.tx.commits)
	f.lenses.AssertExpectations(t)
	f.folders.AssertExpectations(t)
}

func TestSwitchFolderLens_LensOfAnotherFolder(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()

	f.folders.On("LockByID", ctx, f.tx.exec, "a").Return(ownedFolder("a", "user-root"), nil).Once()
	f.lenses.On("GetByID", ctx, f.tx.exec, "l2").Return(folderLens("l2", model.LensTypeBoard, "b"), nil).Once()

	_, err := f.svc.SwitchFolderLens(ctx, testOrgID, testUserID, "a", "l2")

	assert.Equal(t, model.KindValidation, model.KindOf(err))
	f.lenses.AssertNotCalled(t, "ClearDefaultForFolder", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, f.tx.commits)
}

func TestCreateFolderLens_FirstLensBecomesDefault(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()

	f.folders.On("LockByID", ctx, f.tx.exec, "a").Return(ownedFolder("a", "user-root"), nil).Once()
	f.lenses.On("Create", ctx, f.tx.exec, mock.MatchedBy(func(lens *model.Lens) bool {
		return lens.Type == model.LensTypeCanvas && lens.FolderID != nil && *lens.FolderID == "a" &&
			lens.Query.Version == model.LensQueryVersion
	})).Return(nil).Once()
	f.lenses.On("ClearDefaultForFolder", ctx, f.tx.exec, "a").Return(nil).Once()
	f.lenses.On("SetDefault", ctx, f.tx.exec, mock.AnythingOfType("string")).Return(nil).Once()
	f.folders.On("SetDefaultLens", ctx, f.tx.exec, "a", mock.Anything).Return(nil).Once()

	lens, err := f.svc.CreateFolderLens(ctx, testOrgID, testUserID, "a", model.LensInput{Name: "Canvas", Type: model.LensTypeCanvas})

	require.NoError(t, err)
	assert.True(t, lens.IsDefault)
	f.lenses.AssertExpectations(t)
}

func TestCreateFolderLens_RejectsDesktopType(t *testing.T) {
	f := newLensFixture()

	_, err := f.svc.CreateFolderLens(context.Background(), testOrgID, testUserID, "a", model.LensInput{Name: "Desk", Type: model.LensTypeDesktop})

	assert.Equal(t, model.KindValidation, model.KindOf(err))
}

func TestCreateDesktopLens_NormalizesQuery(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()
	query := &model.LensQuery{Sort: model.LensSort{Field: "name"}}

	f.lenses.On("Create", ctx, f.tx.exec, mock.MatchedBy(func(lens *model.Lens) bool {
		return lens.FolderID == nil && lens.Query.Sort.Direction == model.SortDesc && lens.Query.Sort.Field == "name"
	})).Return(nil).Once()

	lens, err := f.svc.CreateDesktopLens(ctx, testOrgID, testUserID, model.LensInput{Name: "Inbox", Type: model.LensTypeSaved, Query: query})

	require.NoError(t, err)
	assert.False(t, lens.IsDefault)
}

func TestUpdateCanvasPositions_MergesUnderCanvasPath(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()

	f.lenses.On("GetByID", ctx, f.tx.exec, "l1").Return(folderLens("l1", model.LensTypeCanvas, "a"), nil).Once()
	f.lenses.On("MergeMetadata", ctx, f.tx.exec, "l1", []string{"views", "canvas", "positions"}, map[string]any{
		"n1": model.CanvasPosition{X: 10, Y: 20},
		"n2": model.CanvasPosition{X: -5, Y: 0},
	}).Return(nil).Once()

	err := f.svc.UpdateCanvasPositions(ctx, testOrgID, testUserID, "l1", []model.CanvasPositionUpdate{
		{EntityID: "n1", X: float(10), Y: float(20)},
		{EntityID: "n2", X: float(-5), Y: float(0)},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, f.tx.commits)
	f.lenses.AssertExpectations(t)
}

func TestUpdateCanvasPositions_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		updates []model.CanvasPositionUpdate
	}{
		{name: "empty"},
		{name: "not finite", updates: []model.CanvasPositionUpdate{{EntityID: "n1", X: float(math.NaN()), Y: float(1)}}},
		{name: "missing coordinate", updates: []model.CanvasPositionUpdate{{EntityID: "n1", X: float(1)}}},
		{name: "missing entity", updates: []model.CanvasPositionUpdate{{X: float(1), Y: float(1)}}},
		{name: "over batch limit", updates: []model.CanvasPositionUpdate{
			{EntityID: "1", X: float(1), Y: float(1)}, {EntityID: "2", X: float(1), Y: float(1)},
			{EntityID: "3", X: float(1), Y: float(1)}, {EntityID: "4", X: float(1), Y: float(1)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLensFixture()

			err := f.svc.UpdateCanvasPositions(context.Background(), testOrgID, testUserID, "l1", tt.updates)

			assert.Equal(t, model.KindValidation, model.KindOf(err))
			f.lenses.AssertNotCalled(t, "MergeMetadata", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateCanvasPositions_WrongView(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()

	f.lenses.On("GetByID", ctx, f.tx.exec, "l1").Return(folderLens("l1", model.LensTypeBoard, "a"), nil).Once()

	err := f.svc.UpdateCanvasPositions(ctx, testOrgID, testUserID, "l1", []model.CanvasPositionUpdate{
		{EntityID: "n1", X: float(1), Y: float(1)},
	})

	assert.Equal(t, model.KindValidation, model.KindOf(err))
}

func TestUpdateBoardCard_UnknownLane(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()
	lens := folderLens("l1", model.LensTypeBoard, "a")
	lens.Metadata.Views.Board = &model.BoardLayout{Lanes: []model.BoardLane{{ID: "todo"}, {ID: "done"}}}

	f.lenses.On("GetByID", ctx, f.tx.exec, "l1").Return(lens, nil).Once()

	err := f.svc.UpdateBoardCard(ctx, testOrgID, testUserID, "l1", model.BoardCardUpdate{CardID: "c1", LaneID: "doing", Order: float(1)})

	assert.Equal(t, model.KindValidation, model.KindOf(err))
	f.lenses.AssertNotCalled(t, "MergeMetadata", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateBoardCard_MergesCard(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()
	lens := folderLens("l1", model.LensTypeBoard, "a")
	lens.Metadata.Views.Board = &model.BoardLayout{Lanes: []model.BoardLane{{ID: "todo"}, {ID: "done"}}}

	f.lenses.On("GetByID", ctx, f.tx.exec, "l1").Return(lens, nil).Once()
	f.lenses.On("MergeMetadata", ctx, f.tx.exec, "l1", []string{"views", "board", "cards"}, map[string]any{
		"c1": model.BoardCard{LaneID: "done", Order: 2},
	}).Return(nil).Once()

	err := f.svc.UpdateBoardCard(ctx, testOrgID, testUserID, "l1", model.BoardCardUpdate{CardID: "c1", LaneID: "done", Order: float(2)})

	require.NoError(t, err)
	f.lenses.AssertExpectations(t)
}

func TestUpdateBatchLayout_BoardLanesThenCards(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()
	lanes := []model.BoardLane{{ID: "todo", Order: 0}, {ID: "done", Order: 1}}

	f.lenses.On("GetByID", ctx, f.tx.exec, "l1").Return(folderLens("l1", model.LensTypeBoard, "a"), nil).Once()
	lanesMerge := f.lenses.On("MergeMetadata", ctx, f.tx.exec, "l1", []string{"views", "board"}, map[string]any{"lanes": lanes}).Return(nil).Once()
	f.lenses.On("MergeMetadata", ctx, f.tx.exec, "l1", []string{"views", "board", "cards"}, mock.Anything).Return(nil).Once().NotBefore(lanesMerge)

	err := f.svc.UpdateBatchLayout(ctx, testOrgID, testUserID, "l1", model.BatchLayoutUpdate{
		BoardLanes: lanes,
		BoardCards: []model.BoardCardUpdate{{CardID: "c1", LaneID: "todo", Order: float(1)}},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, f.tx.commits)
	f.lenses.AssertExpectations(t)
}

func TestUpdateBatchLayout_MixedViewsRejected(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()

	f.lenses.On("GetByID", ctx, f.tx.exec, "l1").Return(folderLens("l1", model.LensTypeCanvas, "a"), nil).Once()

	err := f.svc.UpdateBatchLayout(ctx, testOrgID, testUserID, "l1", model.BatchLayoutUpdate{
		CanvasPositions: []model.CanvasPositionUpdate{{EntityID: "n1", X: float(1), Y: float(1)}},
		BoardCards:      []model.BoardCardUpdate{{CardID: "c1", LaneID: "todo", Order: float(1)}},
	})

	assert.Equal(t, model.KindValidation, model.KindOf(err))
	f.lenses.AssertNotCalled(t, "MergeMetadata", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, f.tx.commits)
}

func TestUpdateBoardLanes_DuplicateIDs(t *testing.T) {
	f := newLensFixture()

	err := f.svc.UpdateBoardLanes(context.Background(), testOrgID, testUserID, "l1", []model.BoardLane{{ID: "x"}, {ID: "x"}})

	assert.Equal(t, model.KindValidation, model.KindOf(err))
}

func TestDeleteLens_ClearsFolderDefault(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()
	folder := ownedFolder("a", "user-root")
	folder.DefaultLensID = strPtr("l1")

	f.lenses.On("GetByID", ctx, f.tx.exec, "l1").Return(folderLens("l1", model.LensTypeBox, "a"), nil).Once()
	f.folders.On("LockByID", ctx, f.tx.exec, "a").Return(folder, nil).Once()
	f.folders.On("SetDefaultLens", ctx, f.tx.exec, "a", (*string)(nil)).Return(nil).Once()
	f.lenses.On("Delete", ctx, f.tx.exec, "l1").Return(nil).Once()

	require.NoError(t, f.svc.DeleteLens(ctx, testOrgID, testUserID, "l1"))
	f.folders.AssertExpectations(t)
	f.lenses.AssertExpectations(t)
}

func TestDeleteLens_OtherOwner(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()

	f.lenses.On("GetByID", ctx, f.tx.exec, "l1").Return(folderLens("l1", model.LensTypeBox, "a"), nil).Once()

	err := f.svc.DeleteLens(ctx, testOrgID, otherUserID, "l1")

	assert.Equal(t, model.KindOwnerMismatch, model.KindOf(err))
}

func TestDuplicateLens_CopiesItemsNeverDefault(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()
	source := folderLens("l1", model.LensTypeBoard, "a")
	source.IsDefault = true

	f.lenses.On("GetByID", ctx, f.tx.exec, "l1").Return(source, nil).Once()
	f.lenses.On("Create", ctx, f.tx.exec, mock.MatchedBy(func(lens *model.Lens) bool {
		return lens.ID != "l1" && !lens.IsDefault && lens.Name == "l1 copy"
	})).Return(nil).Once()
	f.items.On("CopyToLens", ctx, f.tx.exec, "l1", mock.AnythingOfType("string")).Return(nil).Once()

	duplicate, err := f.svc.DuplicateLens(ctx, testOrgID, testUserID, "l1", "")

	require.NoError(t, err)
	assert.Equal(t, source.FolderID, duplicate.FolderID)
	f.items.AssertExpectations(t)
}

func TestResolveFolderProjection_ImplicitBox(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()
	documents := []model.DocumentMeta{*ownedDocument("d1", "a")}

	f.access.On("CheckAccessWith", ctx, mock.Anything, model.TargetFolder, "a", testUserID, testOrgID).Return(model.OwnerAccess(), nil).Once()
	f.folders.On("GetByID", ctx, mock.Anything, "a").Return(ownedFolder("a", "user-root"), nil).Once()
	f.lenses.On("GetDefaultForFolder", ctx, mock.Anything, "a").Return(nil, nil).Once()
	f.documents.On("QueryMeta", ctx, mock.Anything, mock.MatchedBy(func(filter model.DocumentFilter) bool {
		return filter.OrgID == testOrgID && filter.OwnerUserID == testUserID &&
			filter.FolderID != nil && *filter.FolderID == "a" &&
			filter.SortField == "updatedAt" && filter.SortDirection == model.SortDesc
	})).Return(documents, nil).Once()
	f.folders.On("ListChildren", ctx, mock.Anything, "a").Return([]model.Folder{*ownedFolder("b", "a")}, nil).Once()

	projection, err := f.svc.ResolveFolderProjection(ctx, testOrgID, testUserID, "a")

	require.NoError(t, err)
	assert.True(t, projection.Implicit)
	assert.Equal(t, model.LensTypeBox, projection.Lens.Type)
	assert.Len(t, projection.Documents, 1)
	assert.Len(t, projection.Folders, 1)
	assert.Empty(t, projection.Items)
	f.items.AssertNotCalled(t, "ListByLens", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveFolderProjection_UsesFolderDefaultLens(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()
	folder := ownedFolder("a", "user-root")
	folder.DefaultLensID = strPtr("l1")
	lens := folderLens("l1", model.LensTypeBoard, "a")
	groupBy := "state"
	lens.Query.GroupBy = &groupBy

	f.access.On("CheckAccessWith", ctx, mock.Anything, model.TargetFolder, "a", otherUserID, testOrgID).
		Return(model.SharedAccess(&model.Share{ShareType: model.ShareTypeOrg}), nil).Once()
	f.folders.On("GetByID", ctx, mock.Anything, "a").Return(folder, nil).Once()
	f.lenses.On("GetByID", ctx, mock.Anything, "l1").Return(lens, nil).Once()
	f.documents.On("QueryMeta", ctx, mock.Anything, mock.Anything).Return([]model.DocumentMeta{}, nil).Once()
	f.folders.On("ListChildren", ctx, mock.Anything, "a").Return([]model.Folder{}, nil).Once()
	f.items.On("ListByLens", ctx, mock.Anything, "l1").Return([]model.LensItem{{ID: "i1", EntityID: "d1"}}, nil).Once()

	projection, err := f.svc.ResolveFolderProjection(ctx, testOrgID, otherUserID, "a")

	require.NoError(t, err)
	assert.False(t, projection.Implicit)
	assert.Equal(t, "l1", projection.Lens.ID)
	assert.Len(t, projection.Items, 1)
	f.lenses.AssertNotCalled(t, "GetDefaultForFolder", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveLensProjection_DesktopLensOfAnotherUser(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()
	lens := &model.Lens{ID: "l9", OrgID: testOrgID, OwnerUserID: testUserID, Type: model.LensTypeDesktop, Query: model.DefaultLensQuery()}

	f.lenses.On("GetByID", ctx, mock.Anything, "l9").Return(lens, nil).Once()

	_, err := f.svc.ResolveLensProjection(ctx, testOrgID, otherUserID, "l9")

	assert.Equal(t, model.KindAccessDenied, model.PublicKind(model.KindOf(err)))
}

func TestResolveLensDocuments_ForeignAuthorIsEmpty(t *testing.T) {
	f := newLensFixture()
	lens := folderLens("l1", model.LensTypeBox, "a")
	lens.Query.Filters.AuthorID = strPtr(otherUserID)
	lens.Query.Filters.Tags = []string{"ignored"}

	documents, err := f.svc.ResolveLensDocuments(context.Background(), lens)

	require.NoError(t, err)
	assert.Empty(t, documents)
	f.documents.AssertNotCalled(t, "QueryMeta", mock.Anything, mock.Anything, mock.Anything)
}

func TestGroupDocuments(t *testing.T) {
	documents := []model.DocumentMeta{
		{ID: "1", State: model.DocumentStateActive, Type: model.DocumentTypeMD, Attributes: model.JSONMap{"status": "todo"}},
		{ID: "2", State: model.DocumentStateArchived, Type: model.DocumentTypeMD, Attributes: model.JSONMap{"status": "done"}},
		{ID: "3", State: model.DocumentStateActive, Type: model.DocumentTypeTXT, Attributes: model.JSONMap{}},
	}

	tests := []struct {
		groupBy string
		want    []model.ProjectionGroup
	}{
		{
			groupBy: "state",
			want: []model.ProjectionGroup{
				{Key: "active", DocumentIDs: []string{"1", "3"}},
				{Key: "archived", DocumentIDs: []string{"2"}},
			},
		},
		{
			groupBy: "type",
			want: []model.ProjectionGroup{
				{Key: "MD", DocumentIDs: []string{"1", "2"}},
				{Key: "TXT", DocumentIDs: []string{"3"}},
			},
		},
		{
			groupBy: "attributes.status",
			want: []model.ProjectionGroup{
				{Key: "todo", DocumentIDs: []string{"1"}},
				{Key: "done", DocumentIDs: []string{"2"}},
				{Key: "", DocumentIDs: []string{"3"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.groupBy, func(t *testing.T) {
			groupBy := tt.groupBy
			assert.Equal(t, tt.want, service.GroupDocuments(documents, &groupBy))
		})
	}

	assert.Nil(t, service.GroupDocuments(documents, nil))
}

func TestUpsertLensItems(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()

	f.lenses.On("GetByID", ctx, f.tx.exec, "l1").Return(folderLens("l1", model.LensTypeCanvas, "a"), nil).Once()
	f.items.On("Upsert", ctx, f.tx.exec, mock.MatchedBy(func(items []model.LensItem) bool {
		return len(items) == 2 && items[0].LensID == "l1" && items[0].ID != "" && items[1].Metadata != nil
	})).Run(func(args mock.Arguments) {
		// d1 уже была в линзе, хранилище возвращает id существующей строки
		args.Get(2).([]model.LensItem)[0].ID = "existing-d1"
	}).Return(nil).Once()

	items, err := f.svc.UpsertLensItems(ctx, testOrgID, testUserID, "l1", []model.LensItem{
		{EntityID: "d1", EntityType: model.TargetDocument, X: float(1), Y: float(2)},
		{EntityID: "f1", EntityType: model.TargetFolder},
	})

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "existing-d1", items[0].ID)
	f.items.AssertExpectations(t)
}

func TestUpsertLensItems_InvalidEntityType(t *testing.T) {
	f := newLensFixture()

	_, err := f.svc.UpsertLensItems(context.Background(), testOrgID, testUserID, "l1", []model.LensItem{
		{EntityID: "x", EntityType: "lens"},
	})

	assert.Equal(t, model.KindValidation, model.KindOf(err))
}

func TestUpdateFolderLens_RenameLeavesMetadataAlone(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()
	lens := folderLens("l1", model.LensTypeCanvas, "a")
	lens.Metadata = model.LensMetadata{Views: model.ViewLayouts{Canvas: &model.CanvasLayout{
		Positions: map[string]model.CanvasPosition{"d1": {X: 1, Y: 1}},
	}}}
	name := "  Planning  "

	f.lenses.On("GetByID", ctx, f.tx.exec, "l1").Return(lens, nil).Once()
	f.folders.On("LockByID", ctx, f.tx.exec, "a").Return(ownedFolder("a", "user-root"), nil).Once()
	f.lenses.On("Update", ctx, f.tx.exec, mock.MatchedBy(func(l *model.Lens) bool { return l.Name == "Planning" })).Return(nil).Once()

	updated, err := f.svc.UpdateFolderLens(ctx, testOrgID, testUserID, "l1", model.LensUpdate{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, "Planning", updated.Name)
	f.lenses.AssertExpectations(t)
	f.lenses.AssertNotCalled(t, "ReplaceMetadata", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateFolderLens_ExplicitMetadataReplaces(t *testing.T) {
	f := newLensFixture()
	ctx := context.Background()
	metadata := model.LensMetadata{Views: model.ViewLayouts{Canvas: &model.CanvasLayout{
		Positions: map[string]model.CanvasPosition{"d2": {X: 5, Y: 6}},
	}}}

	f.lenses.On("GetByID", ctx, f.tx.exec, "l1").Return(folderLens("l1", model.LensTypeCanvas, "a"), nil).Once()
	f.folders.On("LockByID", ctx, f.tx.exec, "a").Return(ownedFolder("a", "user-root"), nil).Once()
	f.lenses.On("Update", ctx, f.tx.exec, mock.Anything).Return(nil).Once()
	f.lenses.On("ReplaceMetadata", ctx, f.tx.exec, "l1", metadata).Return(nil).Once()

	updated, err := f.svc.UpdateFolderLens(ctx, testOrgID, testUserID, "l1", model.LensUpdate{Metadata: &metadata})

	require.NoError(t, err)
	assert.Equal(t, metadata, updated.Metadata)
	f.lenses.AssertExpectations(t)
}
