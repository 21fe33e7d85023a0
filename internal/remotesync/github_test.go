package remotesync

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// fakeGitHub serves the contents API for a single file.
type fakeGitHub struct {
	t        *testing.T
	sha      string // empty means the file does not exist
	putCode  int
	putError string
	lastPut  putRequest
	auth     string
	puts     int
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/repos/alice/ledger/contents/backups/debts.db" {
		f.t.Errorf("unexpected path %s", r.URL.Path)
		http.NotFound(w, r)
		return
	}
	f.auth = r.Header.Get("Authorization")

	switch r.Method {
	case http.MethodGet:
		if f.sha == "" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "Not Found"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"sha": f.sha})
	case http.MethodPut:
		f.puts++
		if err := json.NewDecoder(r.Body).Decode(&f.lastPut); err != nil {
			f.t.Errorf("bad PUT body: %v", err)
		}
		if f.putCode != 0 {
			w.WriteHeader(f.putCode)
			json.NewEncoder(w).Encode(map[string]string{"message": f.putError})
			return
		}
		code := http.StatusCreated
		if f.sha != "" {
			code = http.StatusOK
		}
		w.WriteHeader(code)
		w.Write([]byte(`{"content":{"path":"backups/debts.db"},"commit":{"sha":"c0ffee"}}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func setupUploader(t *testing.T, fake *fakeGitHub) (*GitHub, []byte) {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	source := filepath.Join(t.TempDir(), "debts.db")
	content := []byte("SQLite format 3\x00snapshot")
	if err := os.WriteFile(source, content, 0o644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	cfg := Config{Owner: "alice", Repo: "ledger", Path: "backups/debts.db", APIURL: server.URL}
	return NewGitHub(cfg, source, server.Client()), content
}

func TestUpload_CreatesNewFile(t *testing.T) {
	fake := &fakeGitHub{t: t}
	g, content := setupUploader(t, fake)

	res, err := g.Upload(context.Background(), "secret", "Upload database")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !res.Created || res.CommitSHA != "c0ffee" || res.Path != "backups/debts.db" {
		t.Errorf("unexpected result: %+v", res)
	}
	if fake.auth != "token secret" {
		t.Errorf("authorization header = %q", fake.auth)
	}
	if fake.lastPut.SHA != "" {
		t.Errorf("new file must not send a sha, got %q", fake.lastPut.SHA)
	}
	if fake.lastPut.Message != "Upload database" {
		t.Errorf("message = %q", fake.lastPut.Message)
	}
	decoded, err := base64.StdEncoding.DecodeString(fake.lastPut.Content)
	if err != nil || string(decoded) != string(content) {
		t.Errorf("content did not round trip: %q, %v", decoded, err)
	}
}

func TestUpload_ReplacesExistingFile(t *testing.T) {
	fake := &fakeGitHub{t: t, sha: "abc123"}
	g, _ := setupUploader(t, fake)

	res, err := g.Upload(context.Background(), "secret", "")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if res.Created {
		t.Error("expected update, not create")
	}
	if fake.lastPut.SHA != "abc123" {
		t.Errorf("expected existing sha to be sent, got %q", fake.lastPut.SHA)
	}
	if fake.lastPut.Message != "Update backups/debts.db" {
		t.Errorf("default message = %q", fake.lastPut.Message)
	}
}

func TestUpload_APIErrorMessage(t *testing.T) {
	fake := &fakeGitHub{t: t, putCode: http.StatusUnprocessableEntity, putError: "Invalid request"}
	g, _ := setupUploader(t, fake)

	_, err := g.Upload(context.Background(), "secret", "msg")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity || apiErr.Message != "Invalid request" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
}

func TestUpload_Preconditions(t *testing.T) {
	fake := &fakeGitHub{t: t}
	g, _ := setupUploader(t, fake)

	if _, err := g.Upload(context.Background(), "  ", "msg"); !errors.Is(err, ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}

	unconfigured := NewGitHub(Config{Owner: "alice"}, "unused", nil)
	if _, err := unconfigured.Upload(context.Background(), "secret", "msg"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}

	if fake.puts != 0 {
		t.Error("no request should reach the API")
	}
}

func TestEscapePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"database.db", "database.db"},
		{"/backups/debts.db", "backups/debts.db"},
		{"dir with space/a b.db", "dir%20with%20space/a%20b.db"},
	}
	for _, tt := range tests {
		if got := escapePath(tt.in); got != tt.want {
			t.Errorf("escapePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
