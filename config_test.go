package soifft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		GlobalLength:    1024,
		Ranks:           4,
		SegmentsPerRank: 4,
		Taps:            8,
		Oversampling:    Ratio5x4,
		Workers:         4,
	}
}

func TestConfigDerivedLengths(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 16, cfg.SegmentCount())
	assert.Equal(t, 256, cfg.InputLength())
	assert.Equal(t, 320, cfg.OutputLength())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"zero length", func(c *Config) { c.GlobalLength = 0 }, ErrInvalidConfig},
		{"zero ranks", func(c *Config) { c.Ranks = 0 }, ErrInvalidConfig},
		{"zero segments", func(c *Config) { c.SegmentsPerRank = 0 }, ErrInvalidConfig},
		{"zero taps", func(c *Config) { c.Taps = 0 }, ErrInvalidConfig},
		{"untabulated ratio", func(c *Config) { c.Oversampling = Ratio{Num: 3, Den: 2} }, ErrUnsupportedRatio},
		{"window wider than rank", func(c *Config) { c.GlobalLength = 256 }, ErrInputTooSmall},
		{"length misaligned", func(c *Config) { c.GlobalLength = 1000 }, ErrInvalidConfig},
		{"too few workers", func(c *Config) { c.Workers = 2 }, ErrTooFewWorkers},
		{"worker count not a group multiple", func(c *Config) { c.Workers = 6 }, ErrTooFewWorkers},
		{"short filter table", func(c *Config) { c.Filter = make([]complex128, 7) }, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfigValidFilterTable(t *testing.T) {
	cfg := validConfig()
	cfg.Filter = make([]complex128, cfg.Taps*cfg.Oversampling.Num*cfg.SegmentCount())
	assert.NoError(t, cfg.Validate())
}

func TestConfigDefaultWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Workers = 0
	require.NoError(t, cfg.Validate())

	// The resolved pool is a whole number of position groups.
	w := cfg.effectiveWorkers()
	assert.Positive(t, w)
	assert.Zero(t, w%4)
}

func TestRatioString(t *testing.T) {
	assert.Equal(t, "5/4", Ratio5x4.String())
	assert.Equal(t, "8/7", Ratio8x7.String())
	assert.InDelta(t, 1.25, Ratio5x4.Factor(), 1e-15)
}
