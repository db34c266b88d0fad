package arcgis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func decodeGeometry(t *testing.T, raw string) *esriGeometry {
	t.Helper()
	var g esriGeometry
	require.NoError(t, json.Unmarshal([]byte(raw), &g))
	return &g
}

func TestToGeom_PolygonWithHole(t *testing.T) {
	// Exterior ring clockwise, hole counter-clockwise, then a second exterior ring.
	g := decodeGeometry(t, `{"rings":[
		[[0,0,5],[0,10,5],[10,10,5],[10,0,5],[0,0,5]],
		[[2,2,5],[4,2,5],[4,4,5],[2,4,5],[2,2,5]],
		[[20,0,6],[20,5,6],[25,5,6],[25,0,6],[20,0,6]]
	]}`)

	out := g.toGeom(true)
	mp, ok := out.(*geom.MultiPolygon)
	require.True(t, ok)

	assert.Equal(t, geom.XYZ, mp.Layout())
	require.Equal(t, 2, mp.NumPolygons())
	assert.Equal(t, 2, mp.Polygon(0).NumLinearRings(), "hole attaches to the first polygon")
	assert.Equal(t, 1, mp.Polygon(1).NumLinearRings())
	assert.Equal(t, []float64{20, 0, 6}, []float64(mp.Polygon(1).LinearRing(0).Coord(0)))
}

func TestToGeom_LeadingCounterClockwiseRingStartsPolygon(t *testing.T) {
	g := decodeGeometry(t, `{"rings":[[[0,0],[1,0],[1,1],[0,0]]]}`)

	mp, ok := g.toGeom(false).(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, geom.XY, mp.Layout())
	assert.Equal(t, 1, mp.NumPolygons())
}

func TestToGeom_ZPaddingAndMDropping(t *testing.T) {
	g := decodeGeometry(t, `{"hasZ":true,"paths":[[[0,0],[1,1,2,99]]]}`)

	mls, ok := g.toGeom(false).(*geom.MultiLineString)
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0, 0, 1, 1, 2}, mls.FlatCoords())
}

func TestToGeom_Points(t *testing.T) {
	p, ok := decodeGeometry(t, `{"x":1.5,"y":2.5,"z":3}`).toGeom(true).(*geom.Point)
	require.True(t, ok)
	assert.Equal(t, []float64{1.5, 2.5, 3}, p.FlatCoords())

	mp, ok := decodeGeometry(t, `{"points":[[1,2],[3,4]]}`).toGeom(false).(*geom.MultiPoint)
	require.True(t, ok)
	assert.Equal(t, 2, mp.NumPoints())
}

func TestToGeom_Empty(t *testing.T) {
	var nilGeom *esriGeometry
	assert.Nil(t, nilGeom.toGeom(true))
	assert.Nil(t, decodeGeometry(t, `{"x":null,"y":null}`).toGeom(false))
	assert.Nil(t, decodeGeometry(t, `{"rings":[]}`).toGeom(false))
}

func TestSignedArea(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	clockwise := [][]*float64{{f(0), f(0)}, {f(0), f(1)}, {f(1), f(1)}, {f(1), f(0)}, {f(0), f(0)}}
	assert.Less(t, signedArea(clockwise), 0.0)

	counter := [][]*float64{{f(0), f(0)}, {f(1), f(0)}, {f(1), f(1)}, {f(0), f(1)}, {f(0), f(0)}}
	assert.Greater(t, signedArea(counter), 0.0)
}
