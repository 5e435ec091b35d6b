package drive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

type fakeFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

func fakeDrive(t *testing.T) *httptest.Server {
	t.Helper()
	folders := map[string][]fakeFile{
		"root": {
			{ID: "sub", Name: "ระเบียบ", MimeType: MimeTypeFolder},
			{ID: "p1", Name: "พรบ.pdf", MimeType: MimeTypePDF},
			{ID: "x1", Name: "notes.txt", MimeType: "text/plain"},
		},
		"sub": {
			{ID: "g1", Name: "ประกาศ", MimeType: MimeTypeGoogleDoc},
		},
	}
	meta := map[string]fakeFile{
		"p1": folders["root"][1],
		"g1": folders["sub"][0],
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		switch {
		case path == "files":
			q := r.URL.Query().Get("q")
			for id, files := range folders {
				if strings.Contains(q, "'"+id+"' in parents") {
					json.NewEncoder(w).Encode(map[string]any{"files": files})
					return
				}
			}
			json.NewEncoder(w).Encode(map[string]any{"files": []fakeFile{}})
		case strings.HasSuffix(path, "/export"):
			assert.Equal(t, MimeTypePDF, r.URL.Query().Get("mimeType"))
			w.Write([]byte("%PDF-exported"))
		case strings.HasPrefix(path, "files/"):
			id := strings.TrimPrefix(path, "files/")
			if r.URL.Query().Get("alt") == "media" {
				w.Write([]byte("%PDF-" + id))
				return
			}
			json.NewEncoder(w).Encode(meta[id])
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	svc, err := drive.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return NewClientWithService(svc)
}

func TestClient_ListPDFsRecursive(t *testing.T) {
	srv := fakeDrive(t)
	defer srv.Close()

	files, err := newTestClient(t, srv).ListPDFs(context.Background(), "root")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "p1", files[0].ID)
	assert.Equal(t, "g1", files[1].ID)
	assert.Equal(t, MimeTypeGoogleDoc, files[1].MimeType)
}

func TestClient_ListPDFsNoFolder(t *testing.T) {
	srv := fakeDrive(t)
	defer srv.Close()

	_, err := newTestClient(t, srv).ListPDFs(context.Background(), "")
	assert.ErrorIs(t, err, ErrFolderNotConfigured)
}

func TestClient_StreamPDF(t *testing.T) {
	srv := fakeDrive(t)
	defer srv.Close()
	c := newTestClient(t, srv)
	ctx := context.Background()

	data, err := c.StreamPDF(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-p1", string(data))

	data, err = c.StreamPDF(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-exported", string(data))
}

func TestLocalSource(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "laws", "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "laws", "b.pdf"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "laws", "sub", "a.PDF"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "laws", "c.txt"), []byte("c"), 0o644))

	src := NewLocalSource(root)
	ctx := context.Background()
	files, err := src.ListPDFs(ctx, "laws")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "laws/b.pdf", files[0].ID)
	assert.Equal(t, "laws/sub/a.PDF", files[1].ID)
	assert.Equal(t, "a.PDF", files[1].Name)

	data, err := src.StreamPDF(ctx, files[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	_, err = src.StreamPDF(ctx, "../etc/passwd")
	assert.Error(t, err)
}

func TestFolderFromEnv(t *testing.T) {
	t.Setenv(EnvLawFolder, "")
	_, err := FolderFromEnv()
	assert.ErrorIs(t, err, ErrFolderNotConfigured)

	t.Setenv(EnvLawFolder, "abc")
	id, err := FolderFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
}

func TestCredentialsFromEnv_TokenDefaultsNextToSecret(t *testing.T) {
	t.Setenv(EnvCredentials, filepath.Join("secrets", "credentials.json"))
	t.Setenv(EnvToken, "")
	c := CredentialsFromEnv()
	assert.Equal(t, filepath.Join("secrets", "token.json"), c.TokenPath)
}

func TestTokenSource_MissingToken(t *testing.T) {
	dir := t.TempDir()
	secret := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(secret, []byte(`{"installed":{"client_id":"id","client_secret":"s","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`), 0o600))

	_, err := Credentials{ClientSecretPath: secret, TokenPath: filepath.Join(dir, "token.json")}.TokenSource(context.Background())
	assert.ErrorIs(t, err, ErrTokenMissing)
}

func TestRateLimiter_Backoff(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 1})
	now := time.Unix(1000, 0)
	r.now = func() time.Time { return now }

	assert.True(t, r.Allow())
	r.RecordRateLimitError(time.Minute)
	assert.False(t, r.Allow())

	now = now.Add(2 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, r.Wait(ctx))
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	r := NewRateLimiter(DefaultRateLimit)
	r.RecordRateLimitError(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.Canceled)
}
