package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-drive-service/config"
	"github.com/tnqbao/gau-drive-service/entity"
	"github.com/tnqbao/gau-drive-service/infra"
	"github.com/tnqbao/gau-drive-service/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type memBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	pingErr error
}

func (m *memBlobStore) exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memBlobStore) Put(ctx context.Context, location string, r io.Reader, _ int64, contentType string) (infra.BlobInfo, error) {
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
	return infra.BlobInfo{Ref: key, Size: int64(len(data)), ContentType: contentType}, nil
}

func (m *memBlobStore) Get(_ context.Context, ref string) (io.ReadCloser, infra.BlobInfo, error) {
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
	delete(m.objects, ref)
	return nil
}

func (m *memBlobStore) Ping(context.Context) (string, error) {
	if m.pingErr != nil {
		return "", m.pingErr
	}
	return "online", nil
}

type testEnv struct {
	router *gin.Engine
	infra  *infra.Infra
	blobs  *memBlobStore
	owner  uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.Entry{}))

	envCfg := &config.EnvConfig{}
	envCfg.Storage.Root = "media"
	envCfg.Storage.MaxUploadSize = 1024
	envCfg.Storage.MaxTreeDepth = config.DefaultMaxTreeDepth

	blobs := &memBlobStore{objects: map[string][]byte{}}
	inf := &infra.Infra{
		Logger:   infra.NewLoggerClient(slog.New(slog.NewTextHandler(io.Discard, nil))),
		Postgres: &infra.PostgresClient{DB: db},
		Blob:     blobs,
	}
	ctrl := NewController(&config.Config{EnvConfig: envCfg}, inf, &repository.Repository{
		EntryRepo: repository.NewEntryRepository(db),
	})

	owner := uuid.New()
	r := gin.New()
	r.GET("/health", ctrl.HealthCheck)
	api := r.Group("/api/v1/drive", func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set("user_id", user)
		}
		c.Next()
	})
	api.GET("/dashboard", ctrl.GetDashboard)
	api.GET("/entries", ctrl.ListRoot)
	api.GET("/entries/:id/stats", ctrl.GetEntryStats)
	api.DELETE("/entries/:id", ctrl.DeleteEntry)
	api.POST("/folders", ctrl.CreateFolder)
	api.GET("/folders/:id", ctrl.ListFolder)
	api.POST("/files", ctrl.UploadFiles)
	api.GET("/files/:id/download", ctrl.DownloadFile)

	return &testEnv{router: r, infra: inf, blobs: blobs, owner: owner}
}

func (e *testEnv) do(req *http.Request, user uuid.UUID) *httptest.ResponseRecorder {
	if user != uuid.Nil {
		req.Header.Set("X-Test-User", user.String())
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createFolder(t *testing.T, parent, name string) (*httptest.ResponseRecorder, entity.Entry) {
	t.Helper()
	target := "/api/v1/drive/folders"
	if parent != "" {
		target += "?folder=" + parent
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{"name":"`+name+`"}`))
	req.Header.Set("Content-Type", "application/json")
	w := e.do(req, e.owner)

	var body struct {
		Folder entity.Entry `json:"folder"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body.Folder
}

func (e *testEnv) upload(t *testing.T, parent string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := writer.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	target := "/api/v1/drive/files"
	if parent != "" {
		target += "?folder=" + parent
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return e.do(req, e.owner)
}

type uploadResponse struct {
	UploadedCount int            `json:"uploaded_count"`
	SkippedCount  int            `json:"skipped_count"`
	RejectedCount int            `json:"rejected_count"`
	Uploaded      []entity.Entry `json:"uploaded"`
}

func decodeUpload(t *testing.T, w *httptest.ResponseRecorder) uploadResponse {
	t.Helper()
	var resp uploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateFolderEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w, docs := env.createFolder(t, "", "Docs")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Docs", docs.Name)
	assert.True(t, docs.IsFolder)

	w, _ = env.createFolder(t, "", "Docs")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, sub := env.createFolder(t, docs.ID.String(), "Sub")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, docs.ID, *sub.ParentID)

	w, _ = env.createFolder(t, "not-a-uuid", "X")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.createFolder(t, uuid.NewString(), "X")
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/drive/folders", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, env.do(req, env.owner).Code)
}

func TestUploadEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, docs := env.createFolder(t, "", "Docs")

	w := env.upload(t, docs.ID.String(), map[string]string{"a.txt": "hello", "big.bin": strings.Repeat("x", 2048)})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeUpload(t, w)
	assert.Equal(t, 1, resp.UploadedCount)
	assert.Equal(t, 0, resp.SkippedCount)
	assert.Equal(t, 1, resp.RejectedCount)

	w = env.upload(t, docs.ID.String(), map[string]string{"a.txt": "again"})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeUpload(t, w)
	assert.Equal(t, 0, resp.UploadedCount)
	assert.Equal(t, 1, resp.SkippedCount)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/drive/files", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	assert.Equal(t, http.StatusBadRequest, env.do(req, env.owner).Code)
}

func TestDownloadEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, docs := env.createFolder(t, "", "Docs")
	resp := decodeUpload(t, env.upload(t, docs.ID.String(), map[string]string{"report final.txt": "content"}))
	require.Len(t, resp.Uploaded, 1)
	fileID := resp.Uploaded[0].ID.String()

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/drive/files/"+fileID+"/download", nil), env.owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "content", w.Body.String())
	assert.Equal(t, `attachment; filename="report final.txt"`, w.Header().Get("Content-Disposition"))

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/drive/files/"+fileID+"/download", nil), uuid.New())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/drive/files/"+docs.ID.String()+"/download", nil), env.owner)
	assert.Equal(t, http.StatusNotFound, w.Code)

	env.blobs.objects = map[string][]byte{}
	w = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/drive/files/"+fileID+"/download", nil), env.owner)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestListingStatsAndDelete(t *testing.T) {
	env := newTestEnv(t)
	_, docs := env.createFolder(t, "", "Docs")
	_, sub := env.createFolder(t, docs.ID.String(), "Sub")
	env.upload(t, docs.ID.String(), map[string]string{"a.txt": "12345", "b.txt": "123"})
	env.upload(t, sub.ID.String(), map[string]string{"c.txt": "12"})

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/drive/entries", nil), env.owner)
	require.Equal(t, http.StatusOK, w.Code)
	var root struct {
		Folders []struct {
			ID        uuid.UUID `json:"id"`
			TotalSize int64     `json:"total_size"`
			FileCount int64     `json:"file_count"`
		} `json:"folders"`
		Files []entity.Entry `json:"files"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &root))
	require.Len(t, root.Folders, 1)
	assert.Equal(t, int64(10), root.Folders[0].TotalSize)
	assert.Equal(t, int64(3), root.Folders[0].FileCount)
	assert.Empty(t, root.Files)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/drive/folders/"+docs.ID.String(), nil), env.owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"a.txt"`)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/drive/entries/"+docs.ID.String()+"/stats", nil), env.owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":"%s","is_folder":true,"size":10,"file_count":3}`, docs.ID), w.Body.String())

	w = env.do(httptest.NewRequest(http.MethodDelete, "/api/v1/drive/entries/"+docs.ID.String(), nil), uuid.New())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(httptest.NewRequest(http.MethodDelete, "/api/v1/drive/entries/"+docs.ID.String(), nil), env.owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removed":5`)
	assert.Empty(t, env.blobs.objects)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/drive/folders/"+sub.ID.String(), nil), env.owner)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.upload(t, "", map[string]string{"a.txt": "12345", "b.txt": "123"})

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/drive/dashboard", nil), env.owner)
	require.Equal(t, http.StatusOK, w.Code)

	var dash struct {
		TotalFiles  int64          `json:"total_files"`
		TotalSize   int64          `json:"total_size"`
		RecentFiles []entity.Entry `json:"recent_files"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dash))
	assert.Equal(t, int64(2), dash.TotalFiles)
	assert.Equal(t, int64(8), dash.TotalSize)
	assert.Len(t, dash.RecentFiles, 2)
}

func TestEndpointsRequireOwner(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/drive/entries", nil), uuid.Nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/drive/folders/not-a-uuid", nil), env.owner)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drive/entries", nil)
	req.Header.Set("X-Test-User", "not-a-uuid")
	w = env.do(req, uuid.Nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil), uuid.Nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok","storage":"online"}`, w.Body.String())

	env.blobs.pingErr = errors.New("minio offline")
	w = env.do(httptest.NewRequest(http.MethodGet, "/health", nil), uuid.Nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"degraded"`)
}

func TestHealthCheck_RedisDown(t *testing.T) {
	env := newTestEnv(t)
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	env.infra.Redis = &infra.RedisClient{Client: client}

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil), uuid.Nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"cache":"unavailable"`)
}
