package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"driveshare/internal/domain"
	"driveshare/internal/domain/models"
	"driveshare/internal/domain/repositories"
)

// In-memory repository and storage fakes. They mirror the database contracts
// the services rely on: sentinel errors, unique indexes, loaded relations.

type fakeUserRepo struct {
	users map[string]models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.DeletedAt == nil {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
}

func (r *fakeUserRepo) ListByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok && u.DeletedAt == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeFolderRepo struct {
	mu      sync.Mutex
	folders map[string]*models.Folder
	users   *fakeUserRepo
	seq     int
}

func newFakeFolderRepo(users *fakeUserRepo) *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]*models.Folder), users: users}
}

func (r *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.folders {
		if f.Path == folder.Path {
			return fmt.Errorf("folder at '%s': %w", folder.Path, domain.ErrConflict)
		}
	}
	r.seq++
	folder.ID = fmt.Sprintf("folder-%d", r.seq)
	cp := *folder
	r.folders[folder.ID] = &cp
	return nil
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	cp := *f
	if owner, ok := r.users.users[f.OwnerID]; ok {
		cp.Owner = &owner
	}
	return &cp, nil
}

func (r *fakeFolderRepo) ExistsByPath(ctx context.Context, path string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.folders {
		if f.Path == path {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[folder.ID]; !ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	cp := *folder
	cp.Owner = nil
	r.folders[folder.ID] = &cp
	return nil
}

func (r *fakeFolderRepo) SetShared(ctx context.Context, id string, shared bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	f.IsShared = shared
	return nil
}

func (r *fakeFolderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[id]; !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	delete(r.folders, id)
	return nil
}

func (r *fakeFolderRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Folder, error) {
	return r.list(func(f *models.Folder) bool { return f.OwnerID == ownerID })
}

func (r *fakeFolderRepo) ListPublicByOwner(ctx context.Context, ownerID string) ([]models.Folder, error) {
	return r.list(func(f *models.Folder) bool {
		return f.OwnerID == ownerID && f.Visibility == models.VisibilityPublic
	})
}

func (r *fakeFolderRepo) ListSharedByOwner(ctx context.Context, ownerID string) ([]models.Folder, error) {
	return r.list(func(f *models.Folder) bool { return f.OwnerID == ownerID && f.IsShared })
}

func (r *fakeFolderRepo) list(keep func(*models.Folder) bool) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Folder
	for _, f := range r.folders {
		if keep(f) {
			out = append(out, *f)
		}
	}
	return out, nil
}

type fakeFileRepo struct {
	mu      sync.Mutex
	files   map[string]*models.File
	folders *fakeFolderRepo
	seq     int
}

func newFakeFileRepo(folders *fakeFolderRepo) *fakeFileRepo {
	return &fakeFileRepo{files: make(map[string]*models.File), folders: folders}
}

func (r *fakeFileRepo) Create(ctx context.Context, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.FolderID == file.FolderID && f.Path == file.Path {
			return fmt.Errorf("file '%s': %w", file.Path, domain.ErrConflict)
		}
	}
	r.seq++
	file.ID = fmt.Sprintf("file-%d", r.seq)
	cp := *file
	r.files[file.ID] = &cp
	return nil
}

func (r *fakeFileRepo) GetByID(ctx context.Context, id string) (*models.File, error) {
	r.mu.Lock()
	f, ok := r.files[id]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	cp := *f
	r.mu.Unlock()

	folder, err := r.folders.GetByID(ctx, cp.FolderID)
	if err != nil {
		return nil, err
	}
	cp.Folder = folder
	return &cp, nil
}

func (r *fakeFileRepo) ExistsByFolderAndPath(ctx context.Context, folderID, path string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.FolderID == folderID && f.Path == path {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFileRepo) Update(ctx context.Context, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[file.ID]; !ok {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}
	cp := *file
	cp.Folder = nil
	cp.Creator = nil
	r.files[file.ID] = &cp
	return nil
}

func (r *fakeFileRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	delete(r.files, id)
	return nil
}

func (r *fakeFileRepo) ListByFolder(ctx context.Context, folderID string) ([]models.File, error) {
	return r.list(func(f *models.File) bool { return f.FolderID == folderID })
}

func (r *fakeFileRepo) ListByCreator(ctx context.Context, creatorID string) ([]models.File, error) {
	return r.list(func(f *models.File) bool { return f.CreatorID == creatorID })
}

func (r *fakeFileRepo) list(keep func(*models.File) bool) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.File
	for _, f := range r.files {
		if keep(f) {
			out = append(out, *f)
		}
	}
	return out, nil
}

type fakeGrantRepo struct {
	mu      sync.Mutex
	grants  map[string]*models.Grant
	users   *fakeUserRepo
	folders *fakeFolderRepo
	seq     int
}

func newFakeGrantRepo(users *fakeUserRepo, folders *fakeFolderRepo) *fakeGrantRepo {
	return &fakeGrantRepo{grants: make(map[string]*models.Grant), users: users, folders: folders}
}

func (r *fakeGrantRepo) Create(ctx context.Context, grant *models.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.grants {
		if g.UserID == grant.UserID && g.FolderID == grant.FolderID {
			return fmt.Errorf("duplicate grant: %w", domain.ErrConflict)
		}
	}
	r.seq++
	grant.ID = fmt.Sprintf("grant-%d", r.seq)
	cp := *grant
	r.grants[grant.ID] = &cp
	return nil
}

func (r *fakeGrantRepo) Find(ctx context.Context, userID, folderID string) (*models.Grant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.grants {
		if g.UserID == userID && g.FolderID == folderID {
			cp := *g
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("grant: %w", domain.ErrNotFound)
}

func (r *fakeGrantRepo) Update(ctx context.Context, grant *models.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.grants[grant.ID]; !ok {
		return fmt.Errorf("grant %s: %w", grant.ID, domain.ErrNotFound)
	}
	cp := *grant
	cp.User = nil
	cp.Folder = nil
	r.grants[grant.ID] = &cp
	return nil
}

func (r *fakeGrantRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.grants[id]; !ok {
		return fmt.Errorf("grant %s: %w", id, domain.ErrNotFound)
	}
	delete(r.grants, id)
	return nil
}

func (r *fakeGrantRepo) DeleteByFolder(ctx context.Context, folderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, g := range r.grants {
		if g.FolderID == folderID {
			delete(r.grants, id)
		}
	}
	return nil
}

func (r *fakeGrantRepo) CountByFolder(ctx context.Context, folderID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, g := range r.grants {
		if g.FolderID == folderID {
			count++
		}
	}
	return count, nil
}

func (r *fakeGrantRepo) ListByFolder(ctx context.Context, folderID string) ([]models.Grant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Grant
	for _, g := range r.grants {
		if g.FolderID == folderID {
			cp := *g
			if u, ok := r.users.users[g.UserID]; ok {
				cp.User = &u
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

func (r *fakeGrantRepo) ListByUser(ctx context.Context, userID string) ([]models.Grant, error) {
	r.mu.Lock()
	var matched []models.Grant
	for _, g := range r.grants {
		if g.UserID == userID {
			matched = append(matched, *g)
		}
	}
	r.mu.Unlock()

	for i := range matched {
		folder, err := r.folders.GetByID(context.Background(), matched[i].FolderID)
		if err != nil {
			return nil, err
		}
		matched[i].Folder = folder
	}
	return matched, nil
}

// fakeTxManager runs the function directly; the fakes have no transactions.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// memStore is an in-memory Store with a directory set, so Exists answers for
// both files and directory prefixes like the disk backend does.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	dirs    map[string]bool

	failMove      bool
	failRemoveAll bool
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte), dirs: make(map[string]bool)}
}

func (s *memStore) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[path]; ok {
		return true, nil
	}
	if s.dirs[path] {
		return true, nil
	}
	for key := range s.objects {
		if strings.HasPrefix(key, path+"/") {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) MkdirAll(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs[path] = true
	return nil
}

func (s *memStore) Save(ctx context.Context, path string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read: %w", domain.ErrStorage)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = data
	return int64(len(data)), nil
}

func (s *memStore) Move(ctx context.Context, oldPath, newPath string) error {
	if s.failMove {
		return fmt.Errorf("move %s: %w", oldPath, domain.ErrStorage)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if data, ok := s.objects[oldPath]; ok {
		delete(s.objects, oldPath)
		s.objects[newPath] = data
		return nil
	}
	moved := false
	for key, data := range s.objects {
		if strings.HasPrefix(key, oldPath+"/") {
			delete(s.objects, key)
			s.objects[newPath+strings.TrimPrefix(key, oldPath)] = data
			moved = true
		}
	}
	if s.dirs[oldPath] {
		delete(s.dirs, oldPath)
		s.dirs[newPath] = true
		moved = true
	}
	if !moved {
		return fmt.Errorf("move %s: %w", oldPath, domain.ErrStorage)
	}
	return nil
}

func (s *memStore) Remove(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

func (s *memStore) RemoveAll(ctx context.Context, path string) error {
	if s.failRemoveAll {
		return fmt.Errorf("remove tree %s: %w", path, domain.ErrStorage)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dirs, path)
	for key := range s.objects {
		if key == path || strings.HasPrefix(key, path+"/") {
			delete(s.objects, key)
		}
	}
	return nil
}

func (s *memStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", path, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
