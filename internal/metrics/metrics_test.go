package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHTTPMetricsExist(t *testing.T) {
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsInFlight)

	HTTPRequestsInFlight.Inc()
	HTTPRequestsInFlight.Dec()
	assert.Equal(t, float64(0), testutil.ToFloat64(HTTPRequestsInFlight))
}

func TestDatabaseMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"DBQueryTotal", DBQueryTotal},
		{"DBQueryDuration", DBQueryDuration},
		{"DBTransactionDuration", DBTransactionDuration},
		{"DBConnectionsOpen", DBConnectionsOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestTagMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"TagRegistrationsTotal", TagRegistrationsTotal},
		{"TagMergesTotal", TagMergesTotal},
		{"TagMergeLinksTotal", TagMergeLinksTotal},
		{"TagGraphTotal", TagGraphTotal},
		{"QueryGroups", QueryGroups},
		{"QueryPlaceholders", QueryPlaceholders},
		{"QueryRowsReturned", QueryRowsReturned},
		{"ImportDocumentsTotal", ImportDocumentsTotal},
		{"ImportWorkers", ImportWorkers},
		{"ImportDuration", ImportDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestInitializeMetricsPrepopulatesLabels(t *testing.T) {
	InitializeMetrics()

	// One series per outcome label.
	assert.Equal(t, len(RegistrationOutcomes), testutil.CollectAndCount(TagRegistrationsTotal))
	assert.Equal(t, 2, testutil.CollectAndCount(TagMergeLinksTotal))
	assert.Equal(t, 4, testutil.CollectAndCount(TagGraphTotal))
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.0.0", "abc123", "go1.25")
	assert.Equal(t, float64(1), testutil.ToFloat64(AppInfo.WithLabelValues("1.0.0", "abc123", "go1.25")))
}
