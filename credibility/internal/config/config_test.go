package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/credibility/internal/config"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("scoring:\n  source:\n    policy: list\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Scoring.Baseline)
	assert.Equal(t, config.PolicyList, cfg.Scoring.Source.Policy)
	assert.Equal(t, config.DomainModeTwoLabel, cfg.Scoring.Source.DomainMode)
	assert.Contains(t, cfg.Scoring.Source.TrustedSources, "kompas.com")
	assert.Contains(t, cfg.Scoring.Source.UntrustedSources, "blogspot.com")
	assert.Equal(t, 150, cfg.Scoring.Depth.MinWords)
	assert.InDelta(t, -0.1, cfg.Scoring.Sentiment.NegativeThreshold, 1e-9)
	assert.True(t, *cfg.Scoring.StripHTML)
	assert.Equal(t, config.BackendMemory, cfg.Reputation.Backend)
	assert.Equal(t, config.SentimentLexicon, cfg.Sentiment.Provider)
}

func TestLoad_ExplicitZeroScoring(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	yml := "scoring:\n" +
		"  baseline: 0\n" +
		"  data_presence:\n    impact: 0\n" +
		"  sentiment:\n    negative_threshold: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0, cfg.Scoring.Baseline)
	assert.Equal(t, 0, cfg.Scoring.DataPresence.Impact)
	assert.InDelta(t, 0, cfg.Scoring.Sentiment.NegativeThreshold, 1e-9)
	assert.InDelta(t, 0.1, cfg.Scoring.Sentiment.PositiveThreshold, 1e-9)
	assert.Equal(t, 150, cfg.Scoring.Depth.MinWords)
	assert.Equal(t, config.PolicyLearned, cfg.Scoring.Source.Policy)
	assert.Contains(t, cfg.Scoring.Source.TrustedSources, "kompas.com")
}

func TestLoad_SeedTrustScoreOptional(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	yml := "reputation:\n  seed:\n" +
		"    - domain: a.test\n" +
		"    - domain: b.test\n      trust_score: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Reputation.Seed, 2)
	assert.Nil(t, cfg.Reputation.Seed[0].TrustScore)
	require.NotNil(t, cfg.Reputation.Seed[1].TrustScore)
	assert.Equal(t, 0, *cfg.Reputation.Seed[1].TrustScore)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8080\n"), 0o600))
	t.Setenv("CREDIBILITY_PORT", "9000")
	t.Setenv("REPUTATION_BACKEND", "redis")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, config.BackendRedis, cfg.Reputation.Backend)
}

func TestDefault_WithoutFile(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, config.PolicyLearned, cfg.Scoring.Source.Policy)
}

func trust(v int) *int { return &v }

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{
			name:    "unknown policy",
			mutate:  func(c *config.Config) { c.Scoring.Source.Policy = "static" },
			wantErr: "scoring.source.policy",
		},
		{
			name:    "baseline above range",
			mutate:  func(c *config.Config) { c.Scoring.Baseline = 120 },
			wantErr: "scoring.baseline",
		},
		{
			name:    "http oracle without url",
			mutate:  func(c *config.Config) { c.Sentiment.Provider = config.SentimentHTTP },
			wantErr: "sentiment.url",
		},
		{
			name: "inverted sentiment thresholds",
			mutate: func(c *config.Config) {
				c.Scoring.Sentiment.NegativeThreshold = 0.5
				c.Scoring.Sentiment.PositiveThreshold = -0.5
			},
			wantErr: "scoring.sentiment",
		},
		{
			name: "seed without domain",
			mutate: func(c *config.Config) {
				c.Reputation.Seed = []config.SeedRecord{{TrustScore: trust(80)}}
			},
			wantErr: "reputation.seed[0].domain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			config.SetDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := config.Load(filepath.Join("..", "..", "config.yml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "credibility", cfg.Service.Name)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, config.BackendMemory, cfg.Reputation.Backend)
	assert.Len(t, cfg.Reputation.Seed, 3)
	assert.Equal(t, "@every 5m", cfg.Reputation.SnapshotSchedule)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
}
