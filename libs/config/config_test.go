package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Port    string        `env:"SAMPLE_PORT" envDefault:"8080"`
	Brokers []string      `env:"SAMPLE_BROKERS" envSeparator:","`
	TTL     time.Duration `env:"SAMPLE_TTL" envDefault:"30s"`
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("SAMPLE_BROKERS", "a:9092,b:9092")

	var cfg sample
	require.NoError(t, Load(&cfg))
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Brokers)
	assert.Equal(t, 30*time.Second, cfg.TTL)
}

func TestCheckPort(t *testing.T) {
	assert.NoError(t, CheckPort("PORT", "8080"))
	assert.EqualError(t, CheckPort("PORT", "70000"), `PORT must be a valid TCP port (got "70000")`)
	assert.Error(t, CheckPort("PORT", "http"))
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("SAMPLE_TTL", "soon")
	var cfg sample
	err := Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}
