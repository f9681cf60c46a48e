package vault

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driveshare/internal/domain"
	"driveshare/internal/domain/models"
	"driveshare/internal/domain/services"
	"driveshare/internal/filetype"
)

func newTestRegistry(t *testing.T) *filetype.Registry {
	t.Helper()
	registry, err := filetype.NewRegistry()
	require.NoError(t, err)
	return registry
}

func uploadOne(t *testing.T, env *testEnv, p models.Principal, folderID, name, content string) models.File {
	t.Helper()
	result, err := env.files.Upload(context.Background(), p, folderID, []services.Upload{
		{Name: name, ContentType: "text/plain", Size: int64(len(content)), Content: strings.NewReader(content)},
	})
	require.NoError(t, err)
	require.Len(t, result.Uploaded, 1)
	require.Empty(t, result.Errors)
	return result.Uploaded[0]
}

func TestUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("owner uploads into their folder", func(t *testing.T) {
		env := newTestEnv(t)
		folder := env.createFolder(t, owner, "docs", models.VisibilityPrivate)

		result, err := env.files.Upload(ctx, owner, folder.ID, []services.Upload{
			{Name: "report.pdf", ContentType: "application/pdf", Size: 4, Content: strings.NewReader("%PDF")},
			{Name: "notes.txt", ContentType: "text/plain; charset=utf-8", Size: 5, Content: strings.NewReader("notes")},
		})
		require.NoError(t, err)
		require.Len(t, result.Uploaded, 2)
		require.Empty(t, result.Errors)
		assert.Equal(t, models.FileTypePDF, result.Uploaded[0].Type)
		assert.Equal(t, models.FileTypeTxt, result.Uploaded[1].Type)
		assert.Equal(t, owner.ID, result.Uploaded[0].CreatorID)

		// Bytes land under the owner's namespace.
		rc, err := env.store.Open(ctx, owner.ID+"/private/docs/report.pdf")
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "%PDF", string(data))
	})

	t.Run("grant-level gating", func(t *testing.T) {
		env := newTestEnv(t)
		folder := env.createFolder(t, owner, "docs", models.VisibilityPublic)
		env.share(t, owner, folder.ID, alice.ID, models.PermissionRead)

		up := func(p models.Principal) error {
			_, err := env.files.Upload(ctx, p, folder.ID, []services.Upload{
				{Name: "x.txt", ContentType: "text/plain", Size: 1, Content: strings.NewReader("x")},
			})
			return err
		}

		// Read grant and no grant are both rejected, public or not.
		require.ErrorIs(t, up(alice), domain.ErrForbidden)
		require.ErrorIs(t, up(stranger), domain.ErrForbidden)

		// Upgrading the grant opens the path; the uploader stays recorded
		// as creator.
		_, err := env.folders.UpdateGrantPermission(ctx, alice, folder.ID, alice.ID, models.PermissionEdit)
		require.NoError(t, err)
		file := uploadOne(t, env, alice, folder.ID, "from-alice.txt", "hi")
		assert.Equal(t, alice.ID, file.CreatorID)
	})

	t.Run("duplicate names fail per file, not per batch", func(t *testing.T) {
		env := newTestEnv(t)
		folder := env.createFolder(t, owner, "docs", models.VisibilityPrivate)
		uploadOne(t, env, owner, folder.ID, "a.txt", "first")

		result, err := env.files.Upload(ctx, owner, folder.ID, []services.Upload{
			{Name: "a.txt", ContentType: "text/plain", Size: 3, Content: strings.NewReader("dup")},
			{Name: "b.txt", ContentType: "text/plain", Size: 2, Content: strings.NewReader("ok")},
		})
		require.NoError(t, err)
		require.Len(t, result.Uploaded, 1)
		assert.Equal(t, "b.txt", result.Uploaded[0].Name)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "a.txt", result.Errors[0].Name)

		// The original content was not overwritten.
		rc, err := env.store.Open(ctx, owner.ID+"/private/docs/a.txt")
		require.NoError(t, err)
		data, _ := io.ReadAll(rc)
		assert.Equal(t, "first", string(data))
	})

	t.Run("missing folder", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.files.Upload(ctx, owner, "folder-missing", []services.Upload{
			{Name: "x.txt", ContentType: "text/plain", Size: 1, Content: strings.NewReader("x")},
		})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty batch", func(t *testing.T) {
		env := newTestEnv(t)
		folder := env.createFolder(t, owner, "docs", models.VisibilityPrivate)
		_, err := env.files.Upload(ctx, owner, folder.ID, nil)
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestRemoveFile(t *testing.T) {
	ctx := context.Background()

	t.Run("read grant holder may remove only their own files", func(t *testing.T) {
		env := newTestEnv(t)
		folder := env.createFolder(t, owner, "shared", models.VisibilityPrivate)
		ownersFile := uploadOne(t, env, owner, folder.ID, "owners.txt", "o")

		env.share(t, owner, folder.ID, alice.ID, models.PermissionEdit)
		alicesFile := uploadOne(t, env, alice, folder.ID, "alices.txt", "a")

		// Downgrade to read; alice keeps mutation rights on her own upload.
		_, err := env.folders.UpdateGrantPermission(ctx, alice, folder.ID, alice.ID, models.PermissionRead)
		require.NoError(t, err)

		require.ErrorIs(t, env.files.Remove(ctx, alice, ownersFile.ID), domain.ErrForbidden)
		require.NoError(t, env.files.Remove(ctx, alice, alicesFile.ID))

		exists, err := env.store.Exists(ctx, owner.ID+"/private/shared/alices.txt")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("edit grant holder may remove any file", func(t *testing.T) {
		env := newTestEnv(t)
		folder := env.createFolder(t, owner, "shared", models.VisibilityPrivate)
		file := uploadOne(t, env, owner, folder.ID, "owners.txt", "o")
		env.share(t, owner, folder.ID, bob.ID, models.PermissionEdit)

		require.NoError(t, env.files.Remove(ctx, bob, file.ID))
	})

	t.Run("public visibility grants no mutation rights", func(t *testing.T) {
		env := newTestEnv(t)
		folder := env.createFolder(t, owner, "open", models.VisibilityPublic)
		file := uploadOne(t, env, owner, folder.ID, "a.txt", "x")

		require.ErrorIs(t, env.files.Remove(ctx, stranger, file.ID), domain.ErrForbidden)
	})
}

func TestRenameFile(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps the extension and moves the bytes", func(t *testing.T) {
		env := newTestEnv(t)
		folder := env.createFolder(t, owner, "docs", models.VisibilityPrivate)
		file := uploadOne(t, env, owner, folder.ID, "report.pdf", "%PDF")

		renamed, err := env.files.Rename(ctx, owner, file.ID, "q1-final")
		require.NoError(t, err)
		assert.Equal(t, "q1-final.pdf", renamed.Name)
		assert.Equal(t, "q1-final.pdf", renamed.Path)

		_, err = env.store.Open(ctx, owner.ID+"/private/docs/q1-final.pdf")
		require.NoError(t, err)
		_, err = env.store.Open(ctx, owner.ID+"/private/docs/report.pdf")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("occupied name conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		folder := env.createFolder(t, owner, "docs", models.VisibilityPrivate)
		file := uploadOne(t, env, owner, folder.ID, "a.txt", "a")
		uploadOne(t, env, owner, folder.ID, "b.txt", "b")

		_, err := env.files.Rename(ctx, owner, file.ID, "b")
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("read grant holder renames only their own files", func(t *testing.T) {
		env := newTestEnv(t)
		folder := env.createFolder(t, owner, "docs", models.VisibilityPrivate)
		file := uploadOne(t, env, owner, folder.ID, "a.txt", "a")
		env.share(t, owner, folder.ID, alice.ID, models.PermissionRead)

		_, err := env.files.Rename(ctx, alice, file.ID, "hijacked")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestDownload(t *testing.T) {
	ctx := context.Background()

	t.Run("anyone may download from a public folder", func(t *testing.T) {
		env := newTestEnv(t)
		folder := env.createFolder(t, owner, "open", models.VisibilityPublic)
		file := uploadOne(t, env, owner, folder.ID, "a.txt", "hello")

		result, err := env.files.Download(ctx, stranger, file.ID)
		require.NoError(t, err)
		defer result.Content.Close()

		data, err := io.ReadAll(result.Content)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
		assert.Equal(t, "a.txt", result.Name)
	})

	t.Run("private folders need a grant", func(t *testing.T) {
		env := newTestEnv(t)
		folder := env.createFolder(t, owner, "closed", models.VisibilityPrivate)
		file := uploadOne(t, env, owner, folder.ID, "a.txt", "hello")

		_, err := env.files.Download(ctx, stranger, file.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)

		env.share(t, owner, folder.ID, alice.ID, models.PermissionRead)
		result, err := env.files.Download(ctx, alice, file.ID)
		require.NoError(t, err)
		result.Content.Close()
	})

	t.Run("row without bytes reports not found", func(t *testing.T) {
		env := newTestEnv(t)
		folder := env.createFolder(t, owner, "docs", models.VisibilityPrivate)
		file := uploadOne(t, env, owner, folder.ID, "a.txt", "x")
		require.NoError(t, env.store.Remove(ctx, owner.ID+"/private/docs/a.txt"))

		_, err := env.files.Download(ctx, owner, file.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestFileListings(t *testing.T) {
	ctx := context.Background()

	t.Run("private listing path ignores public visibility", func(t *testing.T) {
		env := newTestEnv(t)
		folder := env.createFolder(t, owner, "open", models.VisibilityPublic)
		uploadOne(t, env, owner, folder.ID, "a.txt", "x")

		_, err := env.files.ListInFolder(ctx, stranger, folder.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)

		files, err := env.files.ListInFolder(ctx, owner, folder.ID)
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})

	t.Run("grant holder may list a private folder", func(t *testing.T) {
		env := newTestEnv(t)
		folder := env.createFolder(t, owner, "closed", models.VisibilityPrivate)
		uploadOne(t, env, owner, folder.ID, "a.txt", "x")
		env.share(t, owner, folder.ID, alice.ID, models.PermissionRead)

		files, err := env.files.ListInFolder(ctx, alice, folder.ID)
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})

	t.Run("public listing rejects private folders", func(t *testing.T) {
		env := newTestEnv(t)
		open := env.createFolder(t, owner, "open", models.VisibilityPublic)
		closed := env.createFolder(t, owner, "closed", models.VisibilityPrivate)
		uploadOne(t, env, owner, open.ID, "a.txt", "x")

		files, err := env.files.ListInPublicFolder(ctx, open.ID)
		require.NoError(t, err)
		assert.Len(t, files, 1)

		_, err = env.files.ListInPublicFolder(ctx, closed.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("my uploads across folders", func(t *testing.T) {
		env := newTestEnv(t)
		first := env.createFolder(t, owner, "one", models.VisibilityPrivate)
		second := env.createFolder(t, alice, "two", models.VisibilityPrivate)
		env.share(t, alice, second.ID, owner.ID, models.PermissionEdit)

		uploadOne(t, env, owner, first.ID, "a.txt", "x")
		uploadOne(t, env, owner, second.ID, "b.txt", "y")
		uploadOne(t, env, alice, second.ID, "c.txt", "z")

		files, err := env.files.ListMine(ctx, owner)
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})
}
