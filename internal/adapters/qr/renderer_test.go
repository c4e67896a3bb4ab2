package qr

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderer_RenderProducesPNG(t *testing.T) {
	r := NewRenderer(DefaultSize)

	png, err := r.Render("7b1f8a9c-2d3e-4f5a-8b6c-1d2e3f4a5b6c")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")), "output must be a PNG")
}
