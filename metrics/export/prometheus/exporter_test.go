package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authvault "github.com/keplerhq/authvault"
	"github.com/keplerhq/authvault/cache"
)

type fakeSource struct {
	counters map[authvault.MetricID]uint64
	stats    cache.Stats
}

func (f fakeSource) MetricsSnapshot() map[authvault.MetricID]uint64 { return f.counters }
func (f fakeSource) CacheStats() cache.Stats                        { return f.stats }

func TestCollectExportsEveryCounter(t *testing.T) {
	src := fakeSource{
		counters: map[authvault.MetricID]uint64{
			authvault.MetricLoginSuccess:    3,
			authvault.MetricRefreshReuse:    1,
			authvault.MetricValidateFailure: 7,
		},
		stats: cache.Stats{Hits: 10, Misses: 2, Degraded: 1},
	}
	exporter := NewExporterFromSource(src)

	expected := `
# HELP authvault_cache_hits_total User snapshot cache hits.
# TYPE authvault_cache_hits_total counter
authvault_cache_hits_total 10
# HELP authvault_login_success_total Engine counter login_success.
# TYPE authvault_login_success_total counter
authvault_login_success_total 3
# HELP authvault_refresh_reuse_total Engine counter refresh_reuse.
# TYPE authvault_refresh_reuse_total counter
authvault_refresh_reuse_total 1
`
	err := testutil.CollectAndCompare(exporter, strings.NewReader(expected),
		"authvault_cache_hits_total",
		"authvault_login_success_total",
		"authvault_refresh_reuse_total",
	)
	require.NoError(t, err)
}

func TestHandlerServesScrapes(t *testing.T) {
	exporter := NewExporterFromSource(fakeSource{
		counters: map[authvault.MetricID]uint64{authvault.MetricRevoke: 5},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	exporter.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "authvault_revoke_total 5")
	assert.Contains(t, body, "authvault_cache_degraded_total 0")
}
