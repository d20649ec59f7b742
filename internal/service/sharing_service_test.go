package service_test

import (
	"airunote/internal/model"
	"airunote/internal/service"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sharingFixture struct {
	svc       *service.SharingService
	tx        *MockTxManager
	folders   *MockFolderRepository
	documents *MockDocumentRepository
	shares    *MockShareRepository
	audit     *MockAuditRepository
	hasher    *MockPasswordHasher
	cache     *MockLinkCache
}

func newSharingFixture() *sharingFixture {
	f := &sharingFixture{
		tx:        newMockTxManager(),
		folders:   new(MockFolderRepository),
		documents: new(MockDocumentRepository),
		shares:    new(MockShareRepository),
		audit:     new(MockAuditRepository),
		hasher:    new(MockPasswordHasher),
		cache:     new(MockLinkCache),
	}
	f.svc = service.NewSharingService(&fakeTx{}, f.tx, f.folders, f.documents, f.shares, f.audit, f.hasher, f.cache)
	return f
}

func ownedDocument(id, folderID string) *model.DocumentMeta {
	return &model.DocumentMeta{ID: id, FolderID: folderID, OrgID: testOrgID, OwnerUserID: testUserID,
		Type: model.DocumentTypeMD, Name: id, Visibility: model.VisibilityPrivate, State: model.DocumentStateActive}
}

func TestShareToUser_RejectsSelf(t *testing.T) {
	f := newSharingFixture()

	_, err := f.svc.ShareToUser(context.Background(), testOrgID, testUserID, model.TargetDocument, "d", testUserID, model.ShareOptions{})

	assert.Equal(t, model.KindValidation, model.KindOf(err))
}

func TestShareToOrg_RootFolderIsUnsharable(t *testing.T) {
	f := newSharingFixture()
	ctx := context.Background()

	f.folders.On("GetByID", ctx, f.tx.exec, "user-root").Return(userRoot(), nil).Once()

	share, err := f.svc.ShareToOrg(ctx, testOrgID, testUserID, model.TargetFolder, "user-root", model.ShareOptions{})

	assert.Nil(t, share)
	assert.Equal(t, model.KindRootImmutable, model.KindOf(err))
	f.shares.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSharePublic_OnlyOwnerCanGrant(t *testing.T) {
	f := newSharingFixture()
	ctx := context.Background()

	f.documents.On("GetMetaByID", ctx, f.tx.exec, "d").Return(ownedDocument("d", "a"), nil).Once()

	_, err := f.svc.SharePublic(ctx, testOrgID, otherUserID, model.TargetDocument, "d", model.ShareOptions{})

	assert.Equal(t, model.KindOwnerMismatch, model.KindOf(err))
}

func TestShareViaLink_StoresOnlyPasswordHash(t *testing.T) {
	f := newSharingFixture()
	ctx := context.Background()
	password := "s3cret"

	f.hasher.On("Hash", password).Return("hashed", nil).Once()
	f.documents.On("GetMetaByID", ctx, f.tx.exec, "d").Return(ownedDocument("d", "a"), nil).Once()
	f.shares.On("LinkCodeExists", ctx, f.tx.exec, mock.AnythingOfType("string")).Return(true, nil).Once()
	f.shares.On("LinkCodeExists", ctx, f.tx.exec, mock.AnythingOfType("string")).Return(false, nil).Once()
	f.shares.On("Create", ctx, f.tx.exec, mock.MatchedBy(func(share *model.Share) bool {
		return share.ShareType == model.ShareTypeLink &&
			share.LinkPasswordHash != nil && *share.LinkPasswordHash == "hashed" &&
			share.LinkCode != nil && len(*share.LinkCode) > 0
	})).Return(nil).Once()

	share, err := f.svc.ShareViaLink(ctx, testOrgID, testUserID, model.TargetDocument, "d", &password, model.ShareOptions{ViewOnly: true})

	require.NoError(t, err)
	assert.True(t, share.ViewOnly)
	assert.Equal(t, 1, f.tx.commits)
	f.shares.AssertExpectations(t)
}

func TestShareViaLink_ExpiryInPast(t *testing.T) {
	f := newSharingFixture()
	past := time.Now().Add(-time.Minute)

	_, err := f.svc.ShareViaLink(context.Background(), testOrgID, testUserID, model.TargetDocument, "d", nil, model.ShareOptions{ExpiresAt: &past})

	assert.Equal(t, model.KindValidation, model.KindOf(err))
}

func linkShare(code string) *model.Share {
	return &model.Share{ID: "s1", OrgID: testOrgID, TargetType: model.TargetDocument, TargetID: "d",
		ShareType: model.ShareTypeLink, LinkCode: &code, CreatedByUserID: testUserID, ViewOnly: true}
}

func TestResolveLink_UnknownCode(t *testing.T) {
	f := newSharingFixture()
	ctx := context.Background()

	f.cache.On("GetShare", ctx, "nope").Return(nil, nil).Once()
	f.shares.On("FindByLinkCode", ctx, mock.Anything, "nope").Return(nil, nil).Once()

	resolution, err := f.svc.ResolveLink(ctx, "nope", nil)

	assert.NoError(t, err)
	assert.Nil(t, resolution)
}

func TestResolveLink_FromDatabaseIsCached(t *testing.T) {
	f := newSharingFixture()
	ctx := context.Background()
	share := linkShare("abc")

	f.cache.On("GetShare", ctx, "abc").Return(nil, nil).Once()
	f.shares.On("FindByLinkCode", ctx, mock.Anything, "abc").Return(share, nil).Once()
	f.cache.On("SetShare", ctx, share).Return(nil).Once()
	f.documents.On("GetMetaByID", ctx, mock.Anything, "d").Return(ownedDocument("d", "a"), nil).Once()

	resolution, err := f.svc.ResolveLink(ctx, "abc", nil)

	require.NoError(t, err)
	assert.Equal(t, &model.LinkResolution{TargetType: model.TargetDocument, TargetID: "d", ViewOnly: true}, resolution)
	f.cache.AssertExpectations(t)
}

func TestResolveLink_Expired(t *testing.T) {
	f := newSharingFixture()
	ctx := context.Background()
	share := linkShare("abc")
	past := time.Now().Add(-time.Hour)
	share.ExpiresAt = &past

	f.cache.On("GetShare", ctx, "abc").Return(nil, nil).Once()
	f.shares.On("FindByLinkCode", ctx, mock.Anything, "abc").Return(share, nil).Once()

	_, err := f.svc.ResolveLink(ctx, "abc", nil)

	assert.ErrorIs(t, err, model.ErrLinkExpired)
	f.cache.AssertNotCalled(t, "SetShare", mock.Anything, mock.Anything)
}

func TestFindShareByLinkCode(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name      string
		expiresAt *time.Time
		wantFound bool
	}{
		{name: "без срока", wantFound: true},
		{name: "срок не истёк", expiresAt: &future, wantFound: true},
		{name: "срок истёк", expiresAt: &past, wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSharingFixture()
			ctx := context.Background()
			share := linkShare("abc")
			share.ExpiresAt = tt.expiresAt

			f.cache.On("GetShare", ctx, "abc").Return(share, nil).Once()

			found, err := f.svc.FindShareByLinkCode(ctx, "abc")

			require.NoError(t, err)
			if tt.wantFound {
				assert.Equal(t, share, found)
			} else {
				assert.Nil(t, found)
			}
			f.shares.AssertNotCalled(t, "FindByLinkCode", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestResolveLink_DeadAfterTargetDeleted(t *testing.T) {
	f := newSharingFixture()
	ctx := context.Background()

	f.cache.On("GetShare", ctx, "abc").Return(linkShare("abc"), nil).Once()
	f.documents.On("GetMetaByID", ctx, mock.Anything, "d").Return(nil, nil).Once()
	f.cache.On("DeleteShares", ctx, []string{"abc"}).Return(nil).Once()

	resolution, err := f.svc.ResolveLink(ctx, "abc", nil)

	assert.NoError(t, err)
	assert.Nil(t, resolution)
	f.cache.AssertExpectations(t)
}

func TestResolveLink_Password(t *testing.T) {
	wrong := "wrong"
	right := "right"

	tests := []struct {
		name     string
		password *string
		compare  *bool
		wantErr  bool
	}{
		{name: "missing", password: nil, wantErr: true},
		{name: "wrong", password: &wrong, compare: boolPtr(false), wantErr: true},
		{name: "right", password: &right, compare: boolPtr(true), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSharingFixture()
			ctx := context.Background()
			share := linkShare("abc")
			hash := "hashed"
			share.LinkPasswordHash = &hash

			f.cache.On("GetShare", ctx, "abc").Return(share, nil).Once()
			f.documents.On("GetMetaByID", ctx, mock.Anything, "d").Return(ownedDocument("d", "a"), nil).Once()
			if tt.compare != nil {
				f.hasher.On("Compare", "hashed", *tt.password).Return(*tt.compare).Once()
			}

			resolution, err := f.svc.ResolveLink(ctx, "abc", tt.password)

			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrPasswordRequired)
				assert.Nil(t, resolution)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "d", resolution.TargetID)
		})
	}
}

func boolPtr(b bool) *bool { return &b }

func TestRevokeShare_OnlyCreator(t *testing.T) {
	f := newSharingFixture()
	ctx := context.Background()

	f.shares.On("GetByID", ctx, f.tx.exec, "s1").Return(linkShare("abc"), nil).Once()

	err := f.svc.RevokeShare(ctx, testOrgID, otherUserID, "s1")

	assert.Equal(t, model.KindOwnerMismatch, model.KindOf(err))
	f.shares.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestRevokeShare_LinkInvalidatesCache(t *testing.T) {
	f := newSharingFixture()
	ctx := context.Background()

	f.shares.On("GetByID", ctx, f.tx.exec, "s1").Return(linkShare("abc"), nil).Once()
	f.shares.On("Delete", ctx, f.tx.exec, "s1").Return(nil).Once()
	f.audit.On("Record", ctx, f.tx.exec, mock.MatchedBy(func(entry *model.AuditLog) bool {
		return entry.Event == model.AuditLinkRevoked && entry.TargetID == "d"
	})).Return(nil).Once()
	f.cache.On("DeleteShares", ctx, []string{"abc"}).Return(nil).Once()

	err := f.svc.RevokeShare(ctx, testOrgID, testUserID, "s1")

	require.NoError(t, err)
	assert.Equal(t, 1, f.tx.commits)
	f.audit.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestListShares_OwnerOnly(t *testing.T) {
	f := newSharingFixture()
	ctx := context.Background()

	f.documents.On("GetMetaByID", ctx, mock.Anything, "d").Return(ownedDocument("d", "a"), nil).Once()

	_, err := f.svc.ListShares(ctx, testOrgID, otherUserID, model.TargetDocument, "d")

	assert.Equal(t, model.KindAccessDenied, model.PublicKind(model.KindOf(err)))
	f.shares.AssertNotCalled(t, "FindActiveForTarget", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
