package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/replicants/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	require.NoError(t, err)
	assert.Nil(t, om)

	// Nil manager is a no-op sink.
	assert.NoError(t, om.WriteTelemetry([]WindowStats{{Type: "red"}}))
	assert.NoError(t, om.WritePerf(PerfStats{}, 1))
	assert.NoError(t, om.WriteConfig(nil))
	assert.NoError(t, om.Close())
	assert.Empty(t, om.Dir())
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	require.NoError(t, err)

	require.NoError(t, om.WriteConfig(config.MustLoad("")))
	require.NoError(t, om.WriteTelemetry([]WindowStats{
		{WindowEndTick: 10, Type: "red", Population: 3},
		{WindowEndTick: 10, Type: "blue", Population: 4},
	}))
	require.NoError(t, om.WriteTelemetry([]WindowStats{
		{WindowEndTick: 20, Type: "red", Population: 5},
	}))
	require.NoError(t, om.WritePerf(PerfStats{PhasePct: map[string]float64{}}, 10))
	require.NoError(t, om.Close())

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "window_end"), "header written once")

	var rows []WindowStats
	require.NoError(t, gocsv.UnmarshalBytes(data, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "blue", rows[1].Type)
	assert.Equal(t, 5, rows[2].Population)

	_, err = config.Load(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "perf.csv"))
}
