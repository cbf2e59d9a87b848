package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "truemoder_metrics_test_total",
	Help: "Counter registered by the metrics endpoint test",
})

func TestMux(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	testCounter.Inc()

	ts := httptest.NewServer(NewMux())
	defer ts.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(ts.URL + path)
		require.NoError(err)
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		require.NoError(err)
		return resp.StatusCode, string(b)
	}

	code, body := get("/ping")
	assert.Equal(http.StatusOK, code)
	assert.Equal("OK", body)

	code, body = get("/metrics")
	assert.Equal(http.StatusOK, code)
	assert.Contains(body, "truemoder_metrics_test_total 1")

	code, _ = get("/version")
	assert.Equal(http.StatusOK, code)
}

func TestRunServerDisabled(t *testing.T) {
	assert.NoError(t, RunServer(context.Background(), nil, ""))
}
