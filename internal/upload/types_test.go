package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix   string
		name     string
		expected string
	}{
		{"archive", "a.txt", "/archive/a.txt"},
		{"", "a.txt", "a.txt"},
		{"archive/", "a.txt", "/archive/a.txt"},
		{"/logs/2017", "b.log", "/logs/2017/b.log"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix+"|"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ObjectKey(tt.prefix, tt.name))
		})
	}
}

func TestPlanFor(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		name     string
		size     int64
		strategy Strategy
		parts    int
	}{
		{name: "Empty file", size: 0, strategy: StrategySingle, parts: 1},
		{name: "At threshold", size: MaxSingleSize, strategy: StrategySingle, parts: 1},
		{name: "One byte over", size: MaxSingleSize + 1, strategy: StrategyMultipart, parts: 4},
		{name: "Exact multiple", size: PartSize * 5, strategy: StrategyMultipart, parts: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanFor(tt.size, opts)
			assert.Equal(t, tt.strategy, plan.Strategy)
			assert.Equal(t, tt.parts, plan.Parts)
		})
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	opts := Options{PartSize: 8 * 1024 * 1024}.WithDefaults()
	assert.Equal(t, MaxSingleSize, opts.MultipartThreshold)
	assert.Equal(t, int64(8*1024*1024), opts.PartSize)
	assert.Equal(t, DefaultProgressCallbacks, opts.ProgressCallbacks)
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	err := Options{MultipartThreshold: MaxSingleSize, PartSize: 1024}.Validate()
	assert.ErrorIs(t, err, ErrInvalidOptions)
	assert.True(t, IsConfig(err))

	err = Options{MultipartThreshold: MinPartSize, PartSize: PartSize}.Validate()
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestError_Message(t *testing.T) {
	err := newError(KindTransport, "putObject", "/data/a.txt", "/archive/a.txt", assert.AnError)
	assert.Contains(t, err.Error(), "upload.putObject /data/a.txt -> /archive/a.txt")

	err = newError(KindConfig, "validate", "", "", ErrNoSource)
	assert.Equal(t, "upload.validate: "+ErrNoSource.Error(), err.Error())
}
