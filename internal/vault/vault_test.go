package vault

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/agendasync/internal/common"
	"github.com/dmitrijs2005/agendasync/internal/models"
	"github.com/dmitrijs2005/agendasync/internal/repositories/metadata"
)

type memRepo struct {
	data   map[string][]byte
	setErr error
}

func newMemRepo() *memRepo { return &memRepo{data: map[string][]byte{}} }

func (m *memRepo) Get(_ context.Context, key string) ([]byte, error) { return m.data[key], nil }
func (m *memRepo) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}
func (m *memRepo) Delete(_ context.Context, key string) error { delete(m.data, key); return nil }
func (m *memRepo) List(_ context.Context) (map[string][]byte, error) {
	return m.data, nil
}

var creds = models.Credentials{Username: "mario.rossi", Password: "s3cret", SchoolCode: "RMIT0001"}

func TestUnlock_FirstUseThenReopen(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()

	v, err := Unlock(ctx, repo, []byte("correct horse"))
	require.NoError(t, err)
	assert.NotEmpty(t, repo.data[metadata.KeySalt])
	assert.NotEmpty(t, repo.data[metadata.KeyVerifier])

	require.NoError(t, v.Store(ctx, creds))
	assert.NotContains(t, string(repo.data[metadata.KeyCredentials]), "s3cret")

	again, err := Unlock(ctx, repo, []byte("correct horse"))
	require.NoError(t, err)
	got, err := again.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, creds, *got)
}

func TestUnlock_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()

	_, err := Unlock(ctx, repo, []byte("right"))
	require.NoError(t, err)

	_, err = Unlock(ctx, repo, []byte("wrong"))
	assert.ErrorIs(t, err, common.ErrWrongPassphrase)
}

func TestUnlock_SaveFailure(t *testing.T) {
	repo := newMemRepo()
	repo.setErr = errors.New("readonly")

	_, err := Unlock(context.Background(), repo, []byte("p"))
	assert.ErrorIs(t, err, repo.setErr)
}

func TestLoadAfterClear(t *testing.T) {
	ctx := context.Background()
	v, err := Unlock(ctx, newMemRepo(), []byte("p"))
	require.NoError(t, err)

	_, err = v.Load(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, v.Store(ctx, creds))
	require.NoError(t, v.Clear(ctx))

	_, err = v.Load(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLock(t *testing.T) {
	ctx := context.Background()
	v, err := Unlock(ctx, newMemRepo(), []byte("p"))
	require.NoError(t, err)

	k1, err := v.SubKey("session")
	require.NoError(t, err)
	k2, err := v.SubKey("session")
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	v.Lock()
	_, err = v.SubKey("session")
	assert.ErrorIs(t, err, ErrLocked)
	assert.ErrorIs(t, v.Store(ctx, creds), ErrLocked)
}

func TestWithRepository(t *testing.T) {
	ctx := context.Background()
	first, second := newMemRepo(), newMemRepo()

	v, err := Unlock(ctx, first, []byte("pass"))
	require.NoError(t, err)
	require.NoError(t, v.WithRepository(second).Store(ctx, models.Credentials{Username: "u", Password: "p"}))

	assert.NotNil(t, second.data[metadata.KeyCredentials])
	assert.Nil(t, first.data[metadata.KeyCredentials])
}
