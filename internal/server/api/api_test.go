package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/deskwatch/internal/plugin"
	"github.com/ayusman/deskwatch/internal/store"
)

// newTestStore creates a Store with a temporary database, bucketing days in UTC.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	s.SetLocation(time.UTC)
	return s
}

type fakePlugins map[string]*plugin.Plugin

func (f fakePlugins) Get(name string) (*plugin.Plugin, error) {
	p, ok := f[name]
	if !ok {
		return nil, plugin.ErrPluginNotFound
	}
	return p, nil
}

func (f fakePlugins) List() []*plugin.Plugin {
	out := make([]*plugin.Plugin, 0, len(f))
	for _, p := range f {
		out = append(out, p)
	}
	return out
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
