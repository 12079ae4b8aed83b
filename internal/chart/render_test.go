package chart

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSVG(t *testing.T) {
	ds := Build(Reduce(records([]float64{10, 11, 12, 9, 8}, true), 24))
	r := NewRenderer(RenderOptions{})

	for _, d := range ds {
		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, d, FormatSVG), d.Name)
		assert.Contains(t, buf.String(), "<svg")
	}
}

func TestRenderPNG(t *testing.T) {
	ds := Build(Reduce(records([]float64{10, 11, 12}, false), 24))
	r := NewRenderer(RenderOptions{Width: 320, Height: 200, DPI: 96})

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, ds[0], FormatPNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestRenderPoPChart(t *testing.T) {
	temps := make([]float64, 24)
	for i := range temps {
		temps[i] = float64(i - 5)
	}

	for _, withAQHI := range []bool{true, false} {
		pop, ok := Find(Build(Reduce(records(temps, withAQHI), 24)), NamePoP)
		require.True(t, ok)

		for _, format := range []Format{FormatSVG, FormatPNG} {
			t.Run(fmt.Sprintf("aqhi=%v/%s", withAQHI, format), func(t *testing.T) {
				var buf bytes.Buffer
				require.NoError(t, NewRenderer(RenderOptions{}).Render(&buf, pop, format))
				assert.Positive(t, buf.Len())
			})
		}
	}
}

func TestRenderPoPLegend(t *testing.T) {
	pop, _ := Find(Build(Reduce(records([]float64{10, 11, 12}, true), 24)), NamePoP)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(RenderOptions{}).Render(&buf, pop, FormatSVG))
	assert.Contains(t, buf.String(), ">PoP<")
	assert.Contains(t, buf.String(), ">AQHI<")

	pop, _ = Find(Build(Reduce(records([]float64{10, 11, 12}, false), 24)), NamePoP)
	buf.Reset()
	require.NoError(t, NewRenderer(RenderOptions{}).Render(&buf, pop, FormatSVG))
	assert.Contains(t, buf.String(), ">PoP<")
	assert.NotContains(t, buf.String(), ">AQHI<")
}

func TestRenderSinglePoint(t *testing.T) {
	ds := Build(Reduce(records([]float64{10}, true), 24))
	r := NewRenderer(RenderOptions{})

	for _, d := range ds {
		for _, format := range []Format{FormatSVG, FormatPNG} {
			var buf bytes.Buffer
			assert.NoError(t, r.Render(&buf, d, format), "%s %s", d.Name, format)
		}
	}
}

func TestRendererWithSize(t *testing.T) {
	orig := NewRenderer(RenderOptions{Width: 800, Height: 400, DPI: 150})

	sized := orig.WithSize(320, 0)
	assert.Equal(t, RenderOptions{Width: 320, Height: 400, DPI: 150}, sized.Options())
	assert.Equal(t, RenderOptions{Width: 800, Height: 400, DPI: 150}, orig.Options())
}

func TestRenderEmpty(t *testing.T) {
	ds := Build(Reduce(nil, 24))

	var buf bytes.Buffer
	err := NewRenderer(RenderOptions{}).Render(&buf, ds[0], FormatSVG)
	assert.ErrorIs(t, err, ErrEmptyChart)
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "calgary.svg")
	ds := Build(Reduce(records([]float64{10, 11, 12}, true), 24))

	paths, err := NewRenderer(RenderOptions{}).WriteFiles(out, ds)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "nested", "calgary_temperature.svg"),
		filepath.Join(dir, "nested", "calgary_pop.svg"),
	}, paths)

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestWriteFilesSkipsEmpty(t *testing.T) {
	out := filepath.Join(t.TempDir(), "empty.png")

	paths, err := NewRenderer(RenderOptions{}).WriteFiles(out, Build(Reduce(nil, 24)))
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatPNG, FormatFromPath("out/x.PNG"))
	assert.Equal(t, FormatSVG, FormatFromPath("out/x.svg"))
	assert.Equal(t, FormatSVG, FormatFromPath("out/x"))
	assert.Equal(t, "image/png", FormatPNG.ContentType())
}
