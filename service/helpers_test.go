package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-drive-service/entity"
	"github.com/tnqbao/gau-drive-service/infra"
	"github.com/tnqbao/gau-drive-service/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const mb = 1024 * 1024

type memBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	getErr    error
	deleteErr error
	deleted   []string
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{objects: map[string][]byte{}}
}

func (m *memBlobStore) exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memBlobStore) Put(ctx context.Context, location string, r io.Reader, size int64, contentType string) (infra.BlobInfo, error) {
	if m.putErr != nil {
		return infra.BlobInfo{}, m.putErr
	}
	key, err := infra.AvailableName(ctx, location, m.exists)
	if err != nil {
		return infra.BlobInfo{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return infra.BlobInfo{}, err
	}
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return infra.BlobInfo{Ref: key, Size: int64(len(data)), ETag: fmt.Sprintf("etag-%d", len(data)), ContentType: contentType}, nil
}

func (m *memBlobStore) Get(_ context.Context, ref string) (io.ReadCloser, infra.BlobInfo, error) {
	if m.getErr != nil {
		return nil, infra.BlobInfo{}, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[ref]
	if !ok {
		return nil, infra.BlobInfo{}, infra.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), infra.BlobInfo{Ref: ref, Size: int64(len(data))}, nil
}

func (m *memBlobStore) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, ref)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, ref)
	return nil
}

func (m *memBlobStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// failingCreateStore rejects every insert.
type failingCreateStore struct {
	EntryStore
}

func (failingCreateStore) Create(*entity.Entry) error {
	return errors.New("insert failed")
}

type fixture struct {
	svc   *DriveService
	repo  *repository.EntryRepository
	blobs *memBlobStore
	owner uuid.UUID
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.Entry{}))
	return db
}

func testLogger() *infra.LoggerClient {
	return infra.NewLoggerClient(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	repo := repository.NewEntryRepository(newTestDB(t))
	blobs := newMemBlobStore()
	if opts.StorageRoot == "" {
		opts.StorageRoot = "media"
	}
	return &fixture{
		svc:   NewDriveService(repo, blobs, NewDirectReleaser(blobs), testLogger(), opts),
		repo:  repo,
		blobs: blobs,
		owner: uuid.New(),
	}
}

func fileOfSize(name string, size int) UploadFile {
	content := bytes.Repeat([]byte("x"), size)
	return UploadFile{
		Name:        name,
		Size:        int64(size),
		ContentType: "text/plain",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

func (f *fixture) mkdir(t *testing.T, parent *entity.Entry, name string) *entity.Entry {
	t.Helper()
	folder, err := f.svc.CreateFolder(context.Background(), f.owner, parentIDOf(parent), name)
	require.NoError(t, err)
	return folder
}

func (f *fixture) upload(t *testing.T, parent *entity.Entry, files ...UploadFile) *UploadReport {
	t.Helper()
	report, err := f.svc.UploadFiles(context.Background(), f.owner, parentIDOf(parent), files)
	require.NoError(t, err)
	return report
}
