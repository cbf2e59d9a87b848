package util

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRobustHTTPClientRetries(t *testing.T) {
	assert := assert.New(t)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	opts := DefaultHTTPClientOptions()
	opts.Timeout = 10 * time.Second
	client := RobustHTTPClientWith(opts)
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.Equal(int32(2), hits.Load())
}

func TestRobustHTTPClientDefaults(t *testing.T) {
	client := RobustHTTPClient()
	assert.Equal(t, 20*time.Second, client.Timeout)
}

func TestRobustHTTPClientPassthrough(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	opts := DefaultHTTPClientOptions()
	opts.RetryMax = 0
	opts.PassthroughErrors = true
	resp, err := RobustHTTPClientWith(opts).Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(http.StatusServiceUnavailable, resp.StatusCode)

	opts.PassthroughErrors = false
	_, err = RobustHTTPClientWith(opts).Get(srv.URL)
	assert.Error(err)
}
