package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightline/growth-engine/internal/experiment"
	"github.com/brightline/growth-engine/internal/leadscore"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost/growth?sslmode=disable
sink:
  endpoint: https://collect.example.com/track/batch
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Sink.FlushIntervalSeconds)
	assert.Equal(t, 20, cfg.Sink.BatchSize)
	assert.Equal(t, 500, cfg.Sink.MaxQueue)
	assert.Contains(t, cfg.Sink.CriticalTypes, "contact_form")
	assert.Equal(t, leadscore.DefaultWeights(), cfg.Scoring.Weights)
	assert.Equal(t, leadscore.DefaultTiers(), cfg.Scoring.Tiers)
}

func TestLoadParsesExperiments(t *testing.T) {
	path := writeConfig(t, `
experiments:
  - id: hero-cta
    active: true
    target_metric: conversion_rate
    min_sample_size: 100
    confidence_target: 95
    variants:
      - id: control
        weight: 50
        is_control: true
      - id: challenger
        weight: 50
        payload:
          headline: "Grow faster"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Experiments, 1)

	exp := cfg.Experiments[0]
	assert.Equal(t, "hero-cta", exp.ID)
	assert.True(t, exp.Active)
	assert.Equal(t, experiment.MetricConversionRate, exp.TargetMetric)
	require.Len(t, exp.Variants, 2)
	assert.True(t, exp.Variants[0].IsControl)
	assert.Equal(t, 50, exp.Variants[1].Weight)
	assert.Equal(t, "Grow faster", exp.Variants[1].Payload["headline"])
}

func TestLoadExplicitValuesKept(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9090
sink:
  batch_size: 5
scoring:
  tiers:
    hot: 85
    warm: 65
    cold: 45
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Sink.BatchSize)
	assert.Equal(t, leadscore.Tiers{Hot: 85, Warm: 65, Cold: 45}, cfg.Scoring.Tiers)
	assert.Equal(t, leadscore.DefaultWeights(), cfg.Scoring.Weights, "weights still default")
}

func TestLoadFromEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
database:
  url: postgres://localhost/growth
`)

	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("DATABASE_URL", "postgres://prod/growth")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "postgres://prod/growth", cfg.Database.URL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
