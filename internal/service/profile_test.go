package service

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetledger/internal/model"
)

type stubUploader struct {
	result *model.UploadResult
	err    error
}

func (u *stubUploader) UploadIcon(ctx context.Context, account string, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
	return u.result, u.err
}

func TestProfileService_IconRoundTrip(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, model.SchemaV1)

	icon, err := l.profiles.GetUserIcon(ctx, owner.Account)
	require.NoError(t, err)
	assert.Equal(t, "", icon)

	require.NoError(t, l.profiles.ChangeIconURL(ctx, owner, "https://example.com/icon.png"))
	icon, err = l.profiles.GetUserIcon(ctx, owner.Account)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/icon.png", icon)

	require.NoError(t, l.profiles.ChangeIconURL(ctx, owner, ""))
	icon, err = l.profiles.GetUserIcon(ctx, owner.Account)
	require.NoError(t, err)
	assert.Equal(t, "", icon)
}

func TestProfileService_GetProfileRequiresV4(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, model.SchemaV2)
	require.NoError(t, l.profiles.ChangeIconURL(ctx, owner, "old"))

	_, err := l.profiles.GetProfile(ctx, owner.Account)
	assert.ErrorIs(t, err, model.ErrOperationUnavailable)

	_, err = l.schema.Initialize(ctx, operator, model.SchemaV4)
	require.NoError(t, err)

	p, err := l.profiles.GetProfile(ctx, owner.Account)
	require.NoError(t, err)
	assert.Equal(t, "old", p.IconURL)
	assert.Nil(t, p.UpdatedAt)

	require.NoError(t, l.profiles.ChangeIconURL(ctx, owner, "new"))
	p, err = l.profiles.GetProfile(ctx, owner.Account)
	require.NoError(t, err)
	assert.Equal(t, "new", p.IconURL)
	require.NotNil(t, p.UpdatedAt)
	assert.True(t, p.UpdatedAt.Equal(fixedNow))
}

func TestProfileService_UploadIcon(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, model.SchemaV1)

	_, err := l.profiles.UploadIcon(ctx, owner, nil, nil)
	assert.ErrorIs(t, err, model.ErrMediaDisabled)

	l.profiles.uploader = &stubUploader{err: model.ErrInvalidImageType}
	_, err = l.profiles.UploadIcon(ctx, owner, nil, nil)
	assert.ErrorIs(t, err, model.ErrInvalidImageType)
	icon, _ := l.profiles.GetUserIcon(ctx, owner.Account)
	assert.Equal(t, "", icon)

	l.profiles.uploader = &stubUploader{result: &model.UploadResult{URL: "https://cdn/icons/a.jpg", Key: "icons/a.jpg"}}
	res, err := l.profiles.UploadIcon(ctx, owner, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "icons/a.jpg", res.Key)
	icon, err = l.profiles.GetUserIcon(ctx, owner.Account)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/icons/a.jpg", icon)
}
