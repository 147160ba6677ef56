package links

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_InvalidURL(t *testing.T) {
	c := New()
	for _, u := range []string{"", "not a url", "ftp://example.com/x", "http://"} {
		st := c.Check(context.Background(), u)
		assert.False(t, st.IsValid, u)
		assert.Equal(t, "Invalid URL format", st.Error, u)
		assert.Zero(t, st.StatusCode, u)
	}
}

func TestCheck_OK(t *testing.T) {
	var ua atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.UserAgent())
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := New(WithHTTPClient(srv.Client())).Check(context.Background(), srv.URL+"/page")
	assert.True(t, st.IsValid)
	assert.Equal(t, http.StatusOK, st.StatusCode)
	assert.Empty(t, st.Error)
	assert.Empty(t, st.RedirectURL)
	assert.Equal(t, UserAgent, ua.Load())
	assert.False(t, st.CheckedAt.IsZero())
}

func TestCheck_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	st := New(WithHTTPClient(srv.Client())).Check(context.Background(), srv.URL)
	assert.False(t, st.IsValid)
	assert.Equal(t, http.StatusNotFound, st.StatusCode)
	assert.Equal(t, "HTTP 404 Not Found", st.Error)
}

func TestCheck_Redirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	st := New(WithHTTPClient(srv.Client())).Check(context.Background(), srv.URL+"/old")
	assert.True(t, st.IsValid)
	assert.Equal(t, srv.URL+"/new", st.RedirectURL)
}

func TestCheck_FallsBackToGet(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	st := New(WithHTTPClient(srv.Client())).Check(context.Background(), srv.URL)
	assert.True(t, st.IsValid)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{http.MethodHead, http.MethodGet}, methods)
}

func TestCheck_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := New(WithHTTPClient(srv.Client()), WithTimeouts(20*time.Millisecond, 20*time.Millisecond))
	st := c.Check(context.Background(), srv.URL)
	assert.False(t, st.IsValid)
	assert.Equal(t, "Request timeout", st.Error)
}

func TestCheck_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	st := New().Check(context.Background(), url)
	assert.False(t, st.IsValid)
	assert.Equal(t, "Network error", st.Error)
}

func TestCheckMany_Batches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	urls := []string{srv.URL + "/a", "bad", srv.URL + "/b", srv.URL + "/c", srv.URL + "/d"}
	c := New(WithHTTPClient(srv.Client()), WithBatching(2, time.Millisecond))
	out := c.CheckMany(context.Background(), urls)

	require.Len(t, out, len(urls))
	for i, st := range out {
		assert.Equal(t, urls[i], st.URL)
	}
	assert.False(t, out[1].IsValid)
	assert.True(t, out[4].IsValid)
	assert.EqualValues(t, 4, hits.Load())
}

func TestCheckMany_StopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := New(WithHTTPClient(srv.Client())).CheckMany(ctx, []string{srv.URL, srv.URL})
	assert.Empty(t, out)
}
