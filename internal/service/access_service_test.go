package service_test

import (
	"airunote/internal/model"
	"airunote/internal/service"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestResolveShareAccess(t *testing.T) {
	tests := []struct {
		name          string
		shares        []model.Share
		wantAccess    bool
		wantWrite     bool
		wantShareType model.ShareType
	}{
		{
			name:       "no shares",
			wantAccess: false,
		},
		{
			name: "org share wins over public",
			shares: []model.Share{
				{OrgID: testOrgID, ShareType: model.ShareTypePublic, ViewOnly: true},
				{OrgID: testOrgID, ShareType: model.ShareTypeOrg, ViewOnly: false},
			},
			wantAccess:    true,
			wantWrite:     true,
			wantShareType: model.ShareTypeOrg,
		},
		{
			name: "user share wins over org",
			shares: []model.Share{
				{OrgID: testOrgID, ShareType: model.ShareTypeOrg, ViewOnly: false},
				{OrgID: testOrgID, ShareType: model.ShareTypeUser, GrantedToUserID: strPtr(otherUserID), ViewOnly: true},
			},
			wantAccess:    true,
			wantWrite:     false,
			wantShareType: model.ShareTypeUser,
		},
		{
			name: "share to another user falls through to public",
			shares: []model.Share{
				{OrgID: testOrgID, ShareType: model.ShareTypeUser, GrantedToUserID: strPtr("user-3")},
				{OrgID: testOrgID, ShareType: model.ShareTypePublic, ViewOnly: true},
			},
			wantAccess:    true,
			wantWrite:     false,
			wantShareType: model.ShareTypePublic,
		},
		{
			name: "share from another org ignored",
			shares: []model.Share{
				{OrgID: "org-2", ShareType: model.ShareTypeOrg},
			},
			wantAccess: false,
		},
		{
			name: "link shares do not grant principal access",
			shares: []model.Share{
				{OrgID: testOrgID, ShareType: model.ShareTypeLink, LinkCode: strPtr("abc")},
			},
			wantAccess: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			access := service.ResolveShareAccess(tt.shares, otherUserID, testOrgID)

			assert.Equal(t, tt.wantAccess, access.HasAccess)
			assert.Equal(t, tt.wantAccess, access.CanRead)
			assert.Equal(t, tt.wantWrite, access.CanWrite)
			assert.Equal(t, tt.wantShareType, access.ShareType)
			assert.False(t, access.CanDelete)
			assert.False(t, access.IsOwner)
		})
	}
}

func newAccessFixture() (*service.AccessService, *MockFolderRepository, *MockDocumentRepository, *MockShareRepository) {
	folders := new(MockFolderRepository)
	documents := new(MockDocumentRepository)
	shares := new(MockShareRepository)
	return service.NewAccessService(&fakeTx{}, folders, documents, shares), folders, documents, shares
}

func TestCheckAccess_OwnerHasEverything(t *testing.T) {
	svc, folders, _, shares := newAccessFixture()
	ctx := context.Background()

	folders.On("GetByID", ctx, mock.Anything, "a").Return(ownedFolder("a", "user-root"), nil).Once()

	access, err := svc.CheckAccess(ctx, model.TargetFolder, "a", testUserID, testOrgID)

	require.NoError(t, err)
	assert.Equal(t, model.OwnerAccess(), access)
	shares.AssertNotCalled(t, "FindActiveForTarget", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckAccess_Missing(t *testing.T) {
	svc, _, documents, _ := newAccessFixture()
	ctx := context.Background()

	documents.On("GetMetaByID", ctx, mock.Anything, "d").Return(nil, nil).Once()

	_, err := svc.CheckAccess(ctx, model.TargetDocument, "d", testUserID, testOrgID)

	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCheckAccess_OtherOrg(t *testing.T) {
	svc, _, documents, _ := newAccessFixture()
	ctx := context.Background()

	documents.On("GetMetaByID", ctx, mock.Anything, "d").
		Return(&model.DocumentMeta{ID: "d", OrgID: "org-2", OwnerUserID: testUserID}, nil).Once()

	_, err := svc.CheckAccess(ctx, model.TargetDocument, "d", testUserID, testOrgID)

	assert.Equal(t, model.KindOrgMismatch, model.KindOf(err))
	assert.Equal(t, model.KindAccessDenied, model.PublicKind(model.KindOf(err)))
}

func TestCheckAccess_SharedDocumentCannotBeDeleted(t *testing.T) {
	svc, _, documents, shares := newAccessFixture()
	ctx := context.Background()

	documents.On("GetMetaByID", ctx, mock.Anything, "d").
		Return(&model.DocumentMeta{ID: "d", OrgID: testOrgID, OwnerUserID: testUserID}, nil).Once()
	shares.On("FindActiveForTarget", ctx, mock.Anything, model.TargetDocument, "d", mock.AnythingOfType("time.Time")).
		Return([]model.Share{{OrgID: testOrgID, ShareType: model.ShareTypeOrg}}, nil).Once()

	access, err := svc.CheckAccess(ctx, model.TargetDocument, "d", otherUserID, testOrgID)

	require.NoError(t, err)
	assert.True(t, access.CanWrite)
	assert.False(t, access.CanDelete)
	require.NotNil(t, access.ViewOnly)
	assert.False(t, *access.ViewOnly)
}
