package stats

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	before := testutil.ToFloat64(sessionAuthorizations.WithLabelValues("allowed"))
	ObserveAuthorization("allowed")
	ObserveAuthorization("allowed")
	require.Equal(t, before+2, testutil.ToFloat64(sessionAuthorizations.WithLabelValues("allowed")))

	before = testutil.ToFloat64(recoveryTransitions.WithLabelValues("executed"))
	ObserveRecovery("executed")
	require.Equal(t, before+1, testutil.ToFloat64(recoveryTransitions.WithLabelValues("executed")))

	before = testutil.ToFloat64(operations.WithLabelValues("failed"))
	ObserveOperation("failed")
	require.Equal(t, before+1, testutil.ToFloat64(operations.WithLabelValues("failed")))

	ObserveProviderCall("simulated-bundler", "send", time.Now(), errors.New("down"))
	require.Positive(t, testutil.CollectAndCount(providerLatency))
}

func TestDumpPrometheusDefaults(t *testing.T) {
	ObserveOperation("success")
	path := filepath.Join(t.TempDir(), "prometheus.txt")

	require.NoError(t, DumpPrometheusDefaults(path))
	require.NoError(t, DumpPrometheusDefaults(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "aawallet_operations_total")
}
