package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAfterRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))

	before := testutil.ToFloat64(apiRequestsTotal.WithLabelValues("get_token", "success"))
	RecordAPICall("get_token", "success", 20*time.Millisecond)
	RecordAPICall("get_token", "success", 30*time.Millisecond)
	assert.Equal(t, before+2, testutil.ToFloat64(apiRequestsTotal.WithLabelValues("get_token", "success")))

	refreshBefore := testutil.ToFloat64(tokenRefreshTotal)
	RecordTokenRefresh()
	assert.Equal(t, refreshBefore+1, testutil.ToFloat64(tokenRefreshTotal))

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `directory_api_requests_total{operation="get_token",outcome="success"}`)
	assert.Contains(t, string(body), "directory_api_request_duration_seconds")
	assert.Contains(t, string(body), "directory_token_refresh_total")
}
