package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herlein/gortl/pkg/sweep"
)

func TestSweepConfigDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg, err := sweepConfig(flags, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(sweep.DefaultStartHz), cfg.StartHz)
	assert.Equal(t, uint32(sweep.DefaultStopHz), cfg.StopHz)
	assert.Equal(t, uint32(sweep.DefaultStepHz), cfg.StepHz)
}

func TestSweepConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	data := []byte("start_hz: 100000000\nstop_hz: 200000000\nstep_hz: 5000000\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	*configFile = path
	t.Cleanup(func() { *configFile = "" })

	cfg, err := sweepConfig(pflag.CommandLine, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(100000000), cfg.StartHz)
	assert.Equal(t, uint32(200000000), cfg.StopHz)
	assert.Equal(t, uint32(5000000), cfg.StepHz)
	assert.Zero(t, cfg.Dwell)

	t.Cleanup(func() {
		stop.Set("1766000000")
		*dwell = sweep.DefaultDwell
	})
	require.NoError(t, pflag.CommandLine.Set("stop", "150MHz"))
	require.NoError(t, pflag.CommandLine.Set("dwell", "20ms"))
	cfg, err = sweepConfig(pflag.CommandLine, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(100000000), cfg.StartHz)
	assert.Equal(t, uint32(150000000), cfg.StopHz)
	assert.Equal(t, uint32(5000000), cfg.StepHz)
	assert.Equal(t, 20*time.Millisecond, cfg.Dwell)
}
