package sealenv

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.FilesTotal.WithLabelValues(resultLoaded).Inc()
	m.LoadDuration.Observe(0.01)
	m.KeysLoaded.Observe(3)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"sealenv_files_total",
		"sealenv_file_load_duration_seconds",
		"sealenv_file_keys",
	}, names)

	assert.Panics(t, func() { NewMetrics(reg) }, "duplicate registration should panic")
}

func TestNewMetrics_NilRegisterer(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics(nil)
		NewMetrics(nil)
	})
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observeLoad(time.Time{}, nil, assert.AnError)
		m.observeSkipped(3)
	})
}

func TestLoader_Metrics_LoadFile(t *testing.T) {
	dir := t.TempDir()
	writeEnv(t, dir, "app.env", "A=1\nB=2\n")
	m := NewMetrics(nil)
	loader := NewLoader().WithDir(dir).WithMetrics(m)

	_, err := loader.LoadFile(context.Background(), "app.env")
	require.NoError(t, err)
	_, err = loader.LoadFile(context.Background(), "missing.env")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues(resultLoaded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues(resultFailed)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.LoadDuration))
}

func TestLoader_Metrics_LoadAllAbortCountsSkipped(t *testing.T) {
	dir, expander := threeFiles(t)
	m := NewMetrics(nil)
	loader := NewLoader().WithDir(dir).WithExpander(expander).WithMetrics(m)

	_, err := loader.LoadAll(context.Background(), "*.env")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues(resultLoaded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues(resultFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues(resultSkipped)))
}
