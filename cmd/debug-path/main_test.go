package main

import (
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"racing-line-follower/internal/common"
	"racing-line-follower/internal/path"
	"racing-line-follower/internal/track"
)

func TestClosed(t *testing.T) {
	assert.Nil(t, closed(nil))
	pts := []common.Vec2{{X: 1}, {X: 2}}
	assert.Equal(t, []common.Vec2{{X: 1}, {X: 2}, {X: 1}}, closed(pts))
	assert.Len(t, pts, 2)
}

func TestRender(t *testing.T) {
	trk, err := track.Shape("kidney")
	require.NoError(t, err)
	p, err := path.New(trk.Lines, path.DefaultSmoothWindow)
	require.NoError(t, err)

	files, err := render(p, trk.Name, t.TempDir())
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		fh, err := os.Open(f)
		require.NoError(t, err)
		_, err = png.DecodeConfig(fh)
		fh.Close()
		assert.NoError(t, err, f)
	}
}
