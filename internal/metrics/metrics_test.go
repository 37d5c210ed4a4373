package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/get_movies/", "200"))
	RecordHTTPRequest("GET", "/get_movies/", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/get_movies/", "200"))
	assert.Equal(t, before+1, after)

	RecordHTTPRequest("GET", "", 404, time.Millisecond)
	assert.GreaterOrEqual(t, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")), 1.0)
}

func TestTrackActiveRequest(t *testing.T) {
	start := testutil.ToFloat64(HTTPActiveRequests)
	TrackActiveRequest(true)
	assert.Equal(t, start+1, testutil.ToFloat64(HTTPActiveRequests))
	TrackActiveRequest(false)
	assert.Equal(t, start, testutil.ToFloat64(HTTPActiveRequests))
}

func TestRecordCacheAndLogin(t *testing.T) {
	hits := testutil.ToFloat64(CacheResults.WithLabelValues("hit"))
	RecordCache(true)
	assert.Equal(t, hits+1, testutil.ToFloat64(CacheResults.WithLabelValues("hit")))

	failures := testutil.ToFloat64(LoginAttempts.WithLabelValues("failure"))
	RecordLogin(false)
	assert.Equal(t, failures+1, testutil.ToFloat64(LoginAttempts.WithLabelValues("failure")))
}
