package upload

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, float64(0), Percent(0, 0))
	assert.Equal(t, float64(0), Percent(10, 0))
	assert.Equal(t, float64(50), Percent(50, 100))
	assert.Equal(t, float64(100), Percent(100, 100))
}

func TestLogProgress(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	fn := LogProgress(zap.New(core), "a.txt")

	fn(25, 100)
	fn(0, 0)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "25 %", entries[0].ContextMap()["percent"])
	assert.Equal(t, "0 %", entries[1].ContextMap()["percent"])
}

func TestProgressReader_ReportsUpToCallbacks(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 1000)
	var updates []int64
	r := newProgressReader(bytes.NewReader(data), int64(len(data)), 10, func(completed, total int64) {
		assert.Equal(t, int64(1000), total)
		updates = append(updates, completed)
	})

	buf := make([]byte, 10)
	for {
		_, err := r.Read(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	assert.Equal(t, []int64{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}, updates)
}

func TestProgressReader_EmptyBody(t *testing.T) {
	var updates [][2]int64
	r := newProgressReader(strings.NewReader(""), 0, 10, func(completed, total int64) {
		updates = append(updates, [2]int64{completed, total})
	})

	_, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, [][2]int64{{0, 0}}, updates)
}

func TestProgressReader_SeekDoesNotRepeat(t *testing.T) {
	data := bytes.Repeat([]byte("y"), 100)
	var updates []int64
	r := newProgressReader(bytes.NewReader(data), 100, 2, func(completed, _ int64) {
		updates = append(updates, completed)
	})

	_, err := io.Copy(io.Discard, io.LimitReader(r, 60))
	require.NoError(t, err)
	_, err = r.Seek(0, io.SeekStart)
	require.NoError(t, err)
	_, err = io.ReadAll(r)
	require.NoError(t, err)

	require.NotEmpty(t, updates)
	for i := 1; i < len(updates); i++ {
		assert.Greater(t, updates[i], updates[i-1])
	}
	assert.Equal(t, int64(100), updates[len(updates)-1])
}

func TestProgressReader_SeekUnsupported(t *testing.T) {
	r := newProgressReader(io.MultiReader(strings.NewReader("a")), 1, 1, nil)
	_, err := r.Seek(0, io.SeekStart)
	assert.Error(t, err)
}
