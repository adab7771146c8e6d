package images

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIntake(t *testing.T) *Intake {
	t.Helper()
	in, err := NewIntake(t.TempDir())
	require.NoError(t, err)
	return in
}

func testImage(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(color.White), nil))
	return buf.Bytes()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(color.Black)))
	return buf.Bytes()
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestStore(t *testing.T) {
	t.Run("accepts jpeg and names it by sniffed format", func(t *testing.T) {
		in := newTestIntake(t)
		content := jpegBytes(t)

		filename, err := in.Store(content)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(filename, ".jpg"), "got %s", filename)

		written, err := os.ReadFile(filepath.Join(in.Dir(), filename))
		require.NoError(t, err)
		assert.Equal(t, content, written)
	})

	t.Run("accepts png", func(t *testing.T) {
		in := newTestIntake(t)
		filename, err := in.Store(pngBytes(t))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(filename, ".png"), "got %s", filename)
	})

	t.Run("rejects non-image bytes and writes nothing", func(t *testing.T) {
		in := newTestIntake(t)
		_, err := in.Store([]byte("definitely-not-an-image.jpg"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		assert.Empty(t, dirEntries(t, in.Dir()))
	})

	t.Run("rejects formats outside the allow-list", func(t *testing.T) {
		in := newTestIntake(t)
		var buf bytes.Buffer
		require.NoError(t, gif.Encode(&buf, testImage(color.White), nil))

		_, err := in.Store(buf.Bytes())
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		assert.Empty(t, dirEntries(t, in.Dir()))
	})

	t.Run("same content gets distinct names", func(t *testing.T) {
		in := newTestIntake(t)
		content := pngBytes(t)

		a, err := in.Store(content)
		require.NoError(t, err)
		b, err := in.Store(content)
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
		assert.Len(t, dirEntries(t, in.Dir()), 2)
	})
}

func TestRemove(t *testing.T) {
	t.Run("deletes a stored file", func(t *testing.T) {
		in := newTestIntake(t)
		filename, err := in.Store(pngBytes(t))
		require.NoError(t, err)

		in.Remove(filename)
		assert.Empty(t, dirEntries(t, in.Dir()))
	})

	t.Run("missing file is quietly ignored", func(t *testing.T) {
		in := newTestIntake(t)
		in.Remove("never-existed.jpg")
		in.Remove("")
	})
}
