package files_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault/pkg/blob"
	filesmod "filevault/modules/files"
	"filevault/svc/auth"
	"filevault/svc/files"
)

type fixture struct {
	handler http.Handler
	auth    *auth.Service
	files   *files.Service
	blobs   *blob.MemoryStorage
	token   string
	userID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	authSvc := auth.NewService(
		auth.Config{SessionTTL: time.Hour},
		auth.NewMemoryUserRepository(),
		auth.NewMemorySessionStore(),
	)
	blobs := blob.NewMemoryStorage()
	filesSvc := files.NewService(files.NewMemoryRepository(), blobs, nil, nil)

	user, err := authSvc.Register(context.Background(), "bob@dylan.com", "toto1234!")
	require.NoError(t, err)
	token, err := authSvc.Login(context.Background(), "bob@dylan.com", "toto1234!")
	require.NoError(t, err)

	return &fixture{
		handler: filesmod.Router(filesSvc, authSvc),
		auth:    authSvc,
		files:   filesSvc,
		blobs:   blobs,
		token:   token,
		userID:  user.ID,
	}
}

func (f *fixture) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("X-Token", token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

type entryJSON struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
	ParentID string `json:"parentId"`
}

func TestCreateEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("creates a file", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		data := base64.StdEncoding.EncodeToString([]byte("Hello Webstack!\n"))
		body := fmt.Sprintf(`{"name":"myText.txt","type":"file","data":%q}`, data)

		rec := f.do(t, http.MethodPost, "/files", body, f.token)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp entryJSON
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, f.userID, resp.UserID)
		assert.Equal(t, "file", resp.Type)
		assert.Equal(t, "0", resp.ParentID)
		assert.NotContains(t, rec.Body.String(), "localPath")
	})

	t.Run("requires a token", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/files", `{"name":"x","type":"folder"}`, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	})

	t.Run("validation messages", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/files", `{"type":"folder"}`, f.token)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Missing name"}`, rec.Body.String())

		rec = f.do(t, http.MethodPost, "/files", `{"name":"x"}`, f.token)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Missing type"}`, rec.Body.String())

		rec = f.do(t, http.MethodPost, "/files", `{"name":"x","type":"file"}`, f.token)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Missing data"}`, rec.Body.String())

		rec = f.do(t, http.MethodPost, "/files", `{"name":"x","type":"folder","parentId":"missing"}`, f.token)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Parent not found"}`, rec.Body.String())
	})
}

func TestGetEndpoint(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	entry, err := f.files.Create(context.Background(), f.userID, files.CreateInput{
		Name: "dir", Kind: files.KindFolder,
	})
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/files/"+entry.ID, "", f.token)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp entryJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, entry.ID, resp.ID)

	// Foreign entries look like missing ones.
	other, err := f.files.Create(context.Background(), "someone-else", files.CreateInput{
		Name: "dir2", Kind: files.KindFolder,
	})
	require.NoError(t, err)

	rec = f.do(t, http.MethodGet, "/files/"+other.ID, "", f.token)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}

func TestListEndpoint(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	for i := 0; i < 22; i++ {
		_, err := f.files.Create(context.Background(), f.userID, files.CreateInput{
			Name: fmt.Sprintf("f%02d", i), Kind: files.KindFolder,
		})
		require.NoError(t, err)
	}

	rec := f.do(t, http.MethodGet, "/files", "", f.token)
	require.Equal(t, http.StatusOK, rec.Code)
	var page []entryJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page, 20)
	assert.Equal(t, "f00", page[0].Name)

	rec = f.do(t, http.MethodGet, "/files?page=1", "", f.token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page, 2)
	assert.Equal(t, "f20", page[0].Name)

	// Out-of-range and malformed pages yield empty and first pages.
	rec = f.do(t, http.MethodGet, "/files?page=9", "", f.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/files?page=abc", "", f.token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page, 20)
}

func TestVisibilityEndpoints(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	entry, err := f.files.Create(context.Background(), f.userID, files.CreateInput{
		Name: "f.txt", Kind: files.KindFile,
		Data: base64.StdEncoding.EncodeToString([]byte("x")),
	})
	require.NoError(t, err)

	rec := f.do(t, http.MethodPut, "/files/"+entry.ID+"/publish", "", f.token)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp entryJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsPublic)

	rec = f.do(t, http.MethodPut, "/files/"+entry.ID+"/unpublish", "", f.token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.IsPublic)

	rec = f.do(t, http.MethodPut, "/files/missing/publish", "", f.token)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPut, "/files/"+entry.ID+"/publish", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDataEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("owner downloads private content", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		entry, err := f.files.Create(context.Background(), f.userID, files.CreateInput{
			Name: "f.txt", Kind: files.KindFile,
			Data: base64.StdEncoding.EncodeToString([]byte("secret")),
		})
		require.NoError(t, err)

		rec := f.do(t, http.MethodGet, "/files/"+entry.ID+"/data", "", f.token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "secret", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("anonymous gets 404 for private content", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		entry, err := f.files.Create(context.Background(), f.userID, files.CreateInput{
			Name: "f.txt", Kind: files.KindFile,
			Data: base64.StdEncoding.EncodeToString([]byte("secret")),
		})
		require.NoError(t, err)

		rec := f.do(t, http.MethodGet, "/files/"+entry.ID+"/data", "", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
	})

	t.Run("anonymous downloads public content", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		entry, err := f.files.Create(context.Background(), f.userID, files.CreateInput{
			Name: "f.txt", Kind: files.KindFile, IsPublic: true,
			Data: base64.StdEncoding.EncodeToString([]byte("open")),
		})
		require.NoError(t, err)

		rec := f.do(t, http.MethodGet, "/files/"+entry.ID+"/data", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "open", rec.Body.String())
	})

	t.Run("folder content is a 400", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		folder, err := f.files.Create(context.Background(), f.userID, files.CreateInput{
			Name: "dir", Kind: files.KindFolder,
		})
		require.NoError(t, err)

		rec := f.do(t, http.MethodGet, "/files/"+folder.ID+"/data", "", f.token)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"A folder doesn't have content"}`, rec.Body.String())
	})

	t.Run("thumbnail size", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))))
		entry, err := f.files.Create(context.Background(), f.userID, files.CreateInput{
			Name: "cat.png", Kind: files.KindImage,
			Data: base64.StdEncoding.EncodeToString(buf.Bytes()),
		})
		require.NoError(t, err)

		// No thumbnails generated yet.
		rec := f.do(t, http.MethodGet, "/files/"+entry.ID+"/data?size=100", "", f.token)
		require.Equal(t, http.StatusNotFound, rec.Code)

		require.NoError(t, f.blobs.Write(context.Background(), entry.LocalPath+"_100", []byte("tiny")))

		rec = f.do(t, http.MethodGet, "/files/"+entry.ID+"/data?size=100", "", f.token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "tiny", rec.Body.String())
	})
}
