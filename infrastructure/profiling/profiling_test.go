package profiling_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/infrastructure/profiling"
)

func TestStart_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	stop, err := profiling.Start(profiling.Config{}, "credibility", "test", logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, stop())
}

func TestStart_Pprof(t *testing.T) {
	t.Parallel()

	stop, err := profiling.Start(profiling.Config{
		PprofEnabled: true,
		PprofAddr:    "127.0.0.1:0",
	}, "credibility", "test", logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, stop())
}
