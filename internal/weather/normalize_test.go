package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCelsius(t *testing.T) {
	assert.Equal(t, 0.0, ToCelsius(273.15))
	assert.Equal(t, 21.85, ToCelsius(295))
	assert.Equal(t, -273.15, ToCelsius(0))
	assert.Equal(t, 10.12, ToCelsius(283.2712))
}

func TestToLocalZonedConvertsToTarget(t *testing.T) {
	src := time.FixedZone("SRC", 2*3600)
	dst := time.FixedZone("DST", -7*3600)
	n := NewNormalizer(src, true)

	got := n.ToLocalZoned(1700000000, dst)

	assert.True(t, got.Equal(time.Unix(1700000000, 0)))
	assert.Equal(t, dst, got.Location())
	assert.Equal(t, time.Unix(1700000000, 0).In(dst).Hour(), got.Hour())
}

func TestToLocalZonedUnzonedKeepsSourceWallClock(t *testing.T) {
	src := time.FixedZone("SRC", 2*3600)
	dst := time.FixedZone("DST", -7*3600)
	n := NewNormalizer(src, false)

	got := n.ToLocalZoned(1700000000, dst)

	assert.Equal(t, src, got.Location())
	assert.Equal(t, time.Unix(1700000000, 0).In(src).Hour(), got.Hour())
}

func TestResolveZone(t *testing.T) {
	zoned := NewNormalizer(time.UTC, true)

	loc, err := zoned.ResolveZone("UTC")
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = zoned.ResolveZone("Not/AZone")
	assert.ErrorIs(t, err, ErrUnknownTimezone)

	_, err = zoned.ResolveZone("")
	assert.ErrorIs(t, err, ErrUnknownTimezone)

	unzoned := NewNormalizer(time.UTC, false)
	loc, err = unzoned.ResolveZone("Not/AZone")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}
