package loop

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tomz197/swarm/internal/config"
)

func TestRunEndsWithInput(t *testing.T) {
	cfg := config.Default()
	cfg.Demo.Enemies = 20
	cfg.Demo.SpawnExtent = 10

	var out bytes.Buffer
	size := func() (int, int, error) { return 80, 24, nil }
	err := Run(context.Background(), cfg, nil, bufio.NewReader(strings.NewReader("q")), &out, size)
	require.NoError(t, err)
	require.Contains(t, out.String(), "\033[?25l")
}
