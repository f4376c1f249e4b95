package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Run("Invalid Level", func(t *testing.T) {
		_, err := New("loud")
		require.ErrorContains(t, err, "parse log level")
	})

	t.Run("Writes JSON To File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "swarm.log")
		l, err := New("debug", path)
		require.NoError(t, err)
		l.Debug("tick", zap.Int("shapes", 3))
		_ = l.Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Contains(t, string(data), `"msg":"tick"`)
		require.Contains(t, string(data), `"shapes":3`)
	})
}

func TestMustFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.log")
	l := Must("loud", path)
	require.True(t, l.Core().Enabled(zap.InfoLevel))
	require.False(t, l.Core().Enabled(zap.DebugLevel))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "invalid log level")
}
