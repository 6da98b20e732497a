package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/go-realign/coord"
)

func newTranslationServer(t *testing.T, calls *atomic.Int32, maxBatch *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metadata/org.foo/foo", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Metadata{
			Versions:          []string{"1.0.0.redhat-1", "1.0.0.redhat-3"},
			ForbiddenVersions: map[string]string{"1.0.0.redhat-1": "CVE-2024-0001"},
		})
	})
	mux.HandleFunc("GET /metadata/org.foo/broken", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"versions": ["", "1.0"]}`))
	})
	mux.HandleFunc("POST /lookup/gavs", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req []gavRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for {
			cur := maxBatch.Load()
			if int32(len(req)) <= cur || maxBatch.CompareAndSwap(cur, int32(len(req))) {
				break
			}
		}
		res := make([]Translation, 0, len(req))
		for _, g := range req {
			t := Translation{GroupID: g.GroupID, ArtifactID: g.ArtifactID, Version: g.Version}
			if g.ArtifactID != "unknown" {
				t.BestMatchVersion = g.Version + ".redhat-1"
				t.AvailableVersions = []string{g.Version + ".redhat-1"}
			}
			if g.ArtifactID == "bad" {
				t.ForbiddenVersions = []string{g.Version + ".redhat-1"}
			}
			res = append(res, t)
		}
		_ = json.NewEncoder(w).Encode(res)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientGetMetadata(t *testing.T) {
	var calls, maxBatch atomic.Int32
	srv := newTranslationServer(t, &calls, &maxBatch)
	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	m, err := c.GetMetadata(ctx, coord.MustGA("org.foo:foo"))
	require.NoError(t, err)
	assert.Equal(t, "1.0.0.redhat-3", m.LatestVersion())

	again, err := c.GetMetadata(ctx, coord.MustGA("org.foo:foo"))
	require.NoError(t, err)
	assert.Same(t, m, again, "metadata should be cached")

	_, err = c.GetMetadata(ctx, coord.MustGA("org.foo:missing"))
	require.ErrorIs(t, err, ErrNotFound)

	versions, err := c.Versions(ctx, coord.MustGA("org.foo:missing"))
	require.NoError(t, err)
	assert.Empty(t, versions)

	_, err = c.GetMetadata(ctx, coord.MustGA("org.foo:broken"))
	require.ErrorIs(t, err, ErrInvalidMetadata)
	var fields validator.ValidationErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, "notblank", fields[0].Tag())
}

func TestClientForbidden(t *testing.T) {
	var calls, maxBatch atomic.Int32
	srv := newTranslationServer(t, &calls, &maxBatch)
	c := NewClient(srv.URL)
	ctx := context.Background()

	reason, forbidden, err := c.Forbidden(ctx, coord.MustGAV("org.foo:foo:1.0.0.redhat-1"))
	require.NoError(t, err)
	assert.True(t, forbidden)
	assert.Equal(t, "CVE-2024-0001", reason)

	_, forbidden, err = c.Forbidden(ctx, coord.MustGAV("org.foo:foo:1.0.0.redhat-3"))
	require.NoError(t, err)
	assert.False(t, forbidden)

	_, err = c.Translate(ctx, []coord.GAV{coord.MustGAV("org.foo:bad:2.0")})
	require.NoError(t, err)
	_, forbidden, err = c.Forbidden(ctx, coord.MustGAV("org.foo:bad:2.0.redhat-1"))
	require.NoError(t, err)
	assert.True(t, forbidden)
}

func TestClientTranslateChunks(t *testing.T) {
	var calls, maxBatch atomic.Int32
	srv := newTranslationServer(t, &calls, &maxBatch)
	c := NewClient(srv.URL, WithChunkSize(2), WithConcurrency(2))
	ctx := context.Background()

	gavs := []coord.GAV{
		coord.MustGAV("org.a:a:1.0"),
		coord.MustGAV("org.b:b:1.0"),
		coord.MustGAV("org.a:a:1.0"),
		coord.MustGAV("org.c:c:2.0"),
		coord.MustGAV("org.d:unknown:3.0"),
		coord.MustGAV("org.e:e:4.0"),
	}
	res, err := c.Translate(ctx, gavs)
	require.NoError(t, err)
	require.Len(t, res, 5)
	assert.Equal(t, "org.a:a:1.0", res[0].GAV().String())
	assert.Equal(t, "1.0.redhat-1", res[0].BestMatchVersion)
	assert.Equal(t, "org.e:e:4.0", res[4].GAV().String())
	assert.Empty(t, res[3].BestMatchVersion)
	assert.Equal(t, int32(3), calls.Load())
	assert.LessOrEqual(t, maxBatch.Load(), int32(2))

	_, err = c.Translate(ctx, gavs[:2])
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load(), "cached translations should not be fetched again")

	c.ClearCache()
	_, err = c.Translate(ctx, gavs[:2])
	require.NoError(t, err)
	assert.Equal(t, int32(4), calls.Load())
}

func TestClientTranslateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Translate(context.Background(), []coord.GAV{coord.MustGAV("g:a:1")})
	require.Error(t, err)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.False(t, IsNotFound(err))
}

func TestClientContextCancelled(t *testing.T) {
	var once sync.Once
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer once.Do(func() { close(block) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewClient(srv.URL, WithTimeout(5*time.Second))
	_, err := c.Translate(ctx, []coord.GAV{coord.MustGAV("g:a:1")})
	require.Error(t, err)
	once.Do(func() { close(block) })
}
