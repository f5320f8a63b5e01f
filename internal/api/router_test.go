package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facegate/internal/matcher"
	"github.com/saturnino-fabrica-de-software/facegate/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/facegate/internal/repository"
	"github.com/saturnino-fabrica-de-software/facegate/internal/service"
	"github.com/saturnino-fabrica-de-software/facegate/internal/snapshot"
)

type testServer struct {
	app      *fiber.App
	store    *repository.FileStore
	imageDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithLimit(t, 0)
}

func newTestServerWithLimit(t *testing.T, limit int) *testServer {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := repository.NewFileStore(filepath.Join(dir, "user_data.json"))
	require.NoError(t, err)

	imageDir := filepath.Join(dir, "static", "images")
	svc := service.NewFaceService(
		store,
		matcher.New(store),
		mock.New(),
		snapshot.NewLocal(imageDir),
		logger,
	)

	router := NewRouter(logger, &Dependencies{
		FaceService: svc,
		Store:       store,
		StaticDir:   filepath.Join(dir, "static"),
		BodyLimit:   10 * 1024 * 1024,
		DocsHost:    "localhost:5000",
		RateLimit:   limit,
	})
	router.Setup()
	t.Cleanup(func() { _ = router.Shutdown(context.Background()) })

	return &testServer{app: router.App(), store: store, imageDir: imageDir}
}

// faceImage returns a base64 PNG whose pixels are derived from seed.
func faceImage(t *testing.T, seed int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			v := uint8((x*31 + y*17 + seed*97) % 256)
			img.Set(x, y, color.RGBA{R: v, G: uint8(seed * 13), B: 255 - v, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func blankImage(t *testing.T) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *struct {
		ID        int    `json:"id"`
		Name      string `json:"name"`
		ImagePath string `json:"image_path"`
	} `json:"user"`
}

func (s *testServer) post(t *testing.T, path string, body any) (int, apiResponse) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestAPI_RegisterThenVerify(t *testing.T) {
	srv := newTestServer(t)
	alice := faceImage(t, 1)

	status, reg := srv.post(t, "/api/register", map[string]string{"name": "Alice", "image": alice})
	require.Equal(t, 200, status, reg.Message)
	assert.True(t, reg.Success)
	assert.Equal(t, "User Alice registered successfully!", reg.Message)
	require.NotNil(t, reg.User)
	assert.Equal(t, 1, reg.User.ID)
	assert.FileExists(t, reg.User.ImagePath)

	status, ver := srv.post(t, "/api/verify", map[string]string{"image": alice})
	require.Equal(t, 200, status, ver.Message)
	assert.True(t, ver.Success)
	assert.Equal(t, "Welcome back, Alice!", ver.Message)
	require.NotNil(t, ver.User)
	assert.Equal(t, reg.User.ID, ver.User.ID)
	assert.Equal(t, "Alice", ver.User.Name)
}

func TestAPI_UnknownFaceNotRecognized(t *testing.T) {
	srv := newTestServer(t)

	for i, name := range []string{"Alice", "Bob"} {
		status, _ := srv.post(t, "/api/register", map[string]string{"name": name, "image": faceImage(t, i+1)})
		require.Equal(t, 200, status)
	}

	status, ver := srv.post(t, "/api/verify", map[string]string{"image": faceImage(t, 9)})

	assert.Equal(t, 404, status)
	assert.False(t, ver.Success)
	assert.Equal(t, "User not recognized. Please register first.", ver.Message)
}

func TestAPI_SequentialIDs(t *testing.T) {
	srv := newTestServer(t)

	for i := 1; i <= 3; i++ {
		status, reg := srv.post(t, "/api/register", map[string]string{
			"name":  fmt.Sprintf("User %d", i),
			"image": faceImage(t, i),
		})
		require.Equal(t, 200, status)
		assert.Equal(t, i, reg.User.ID)
	}

	users, err := srv.store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestAPI_ValidationFailsBeforeEncoding(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"image": faceImage(t, 1)}},
		{"missing image", map[string]string{"name": "Alice"}},
		{"both missing", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := srv.post(t, "/api/register", tt.body)
			assert.Equal(t, 400, status)
			assert.False(t, resp.Success)
			assert.Equal(t, "Name and image are required", resp.Message)
		})
	}

	_, err := os.Stat(srv.imageDir)
	assert.True(t, os.IsNotExist(err), "no snapshot should be written")
}

func TestAPI_NoFaceDetected(t *testing.T) {
	srv := newTestServer(t)

	status, resp := srv.post(t, "/api/register", map[string]string{"name": "Alice", "image": blankImage(t)})
	assert.Equal(t, 400, status)
	assert.Equal(t, "No face detected in the image. Please try again with better lighting.", resp.Message)

	status, resp = srv.post(t, "/api/verify", map[string]string{"image": blankImage(t)})
	assert.Equal(t, 400, status)
	assert.Equal(t, "No face detected in the image. Please try again with better lighting.", resp.Message)
}

func TestAPI_UndecodableImage(t *testing.T) {
	srv := newTestServer(t)

	status, resp := srv.post(t, "/api/verify", map[string]string{"image": "data:image/png;base64,bm90IGFuIGltYWdl"})

	assert.Equal(t, 500, status)
	assert.False(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.Message, "Error processing image: "), resp.Message)
}

func TestAPI_VerifyEmptyStore(t *testing.T) {
	srv := newTestServer(t)

	status, _ := srv.post(t, "/api/verify", map[string]string{"image": faceImage(t, 1)})

	assert.Equal(t, 404, status)
}

func TestAPI_ServesSnapshots(t *testing.T) {
	srv := newTestServer(t)

	_, reg := srv.post(t, "/api/register", map[string]string{"name": "Alice", "image": faceImage(t, 1)})
	require.NotNil(t, reg.User)

	resp, err := srv.app.Test(httptest.NewRequest("GET", "/static/images/"+filepath.Base(reg.User.ImagePath), nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestAPI_HealthAndReady(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/ready"} {
		resp, err := srv.app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode, path)
		assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
	}
}

func TestAPI_ReadyFailsOnCorruptStore(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, os.WriteFile(srv.store.Path(), []byte("{{"), 0o644))

	resp, err := srv.app.Test(httptest.NewRequest("GET", "/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)

	status, body := srv.post(t, "/api/verify", map[string]string{"image": faceImage(t, 1)})
	assert.Equal(t, 500, status)
	assert.Equal(t, "User store is corrupt", body.Message)
}

func TestRouter_RateLimitsAPI(t *testing.T) {
	srv := newTestServerWithLimit(t, 1)

	status, _ := srv.post(t, "/api/verify", map[string]string{})
	assert.Equal(t, 400, status)

	status, body := srv.post(t, "/api/verify", map[string]string{})
	assert.Equal(t, 429, status)
	assert.False(t, body.Success)
	assert.Equal(t, "Too many requests. Please try again later.", body.Message)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := srv.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode, "health is outside the limited group")
}
