package tick

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffWraps(t *testing.T) {
	require.Equal(t, int16(1), Diff(Tick(0), Tick(65535)))
	require.Equal(t, int16(-1), Diff(Tick(65535), Tick(0)))
	require.Equal(t, int16(0), Diff(Tick(42), Tick(42)))
}

func TestNewer(t *testing.T) {
	require.True(t, Newer(Tick(10), Tick(5)))
	require.False(t, Newer(Tick(5), Tick(10)))
	require.True(t, Newer(Tick(0), Tick(65535)))
}

func TestLerp(t *testing.T) {
	require.Equal(t, Tick(5), Lerp(Tick(0), Tick(10), 0.5))
	require.Equal(t, Tick(0), Lerp(Tick(0), Tick(10), -1))
	require.Equal(t, Tick(10), Lerp(Tick(0), Tick(10), 2))
}

func TestLerpAcrossWrap(t *testing.T) {
	got := Lerp(Tick(65530), Tick(4), 0.5)
	require.Equal(t, int16(5), Diff(got, Tick(65530)))
}
