package arcgis

import (
	"github.com/twpayne/go-geom"
)

// esriGeometry is the Esri JSON geometry object. Coordinates may be null.
type esriGeometry struct {
	X      *float64       `json:"x"`
	Y      *float64       `json:"y"`
	Z      *float64       `json:"z"`
	Points [][]*float64   `json:"points"`
	Paths  [][][]*float64 `json:"paths"`
	Rings  [][][]*float64 `json:"rings"`
	HasZ   *bool          `json:"hasZ"`
}

// toGeom converts an Esri geometry. Polygons become MultiPolygons and paths become
// MultiLineStrings. It returns nil for empty geometries.
func (g *esriGeometry) toGeom(layerHasZ bool) geom.T {
	if g == nil {
		return nil
	}
	hasZ := layerHasZ
	if g.HasZ != nil {
		hasZ = *g.HasZ
	}

	layout := geom.XY
	if hasZ {
		layout = geom.XYZ
	}

	switch {
	case len(g.Rings) > 0:
		return ringsToMultiPolygon(g.Rings, layout, hasZ)
	case len(g.Paths) > 0:
		var flat []float64
		var ends []int
		for _, path := range g.Paths {
			flat = appendCoords(flat, path, hasZ)
			ends = append(ends, len(flat))
		}
		return geom.NewMultiLineStringFlat(layout, flat, ends)
	case len(g.Points) > 0:
		return geom.NewMultiPointFlat(layout, appendCoords(nil, g.Points, hasZ))
	case g.X != nil && g.Y != nil:
		flat := []float64{*g.X, *g.Y}
		if hasZ {
			flat = append(flat, deref(g.Z))
		}
		return geom.NewPointFlat(layout, flat)
	default:
		return nil
	}
}

// ringsToMultiPolygon groups Esri rings into polygons. Clockwise rings are exterior rings;
// counter-clockwise rings are holes of the exterior ring preceding them.
func ringsToMultiPolygon(rings [][][]*float64, layout geom.Layout, hasZ bool) *geom.MultiPolygon {
	var (
		flat    []float64
		endss   [][]int
		current []int
	)

	for _, ring := range rings {
		if len(ring) == 0 {
			continue
		}
		exterior := signedArea(ring) <= 0
		if exterior || current == nil {
			if current != nil {
				endss = append(endss, current)
			}
			current = []int{}
		}
		flat = appendCoords(flat, ring, hasZ)
		current = append(current, len(flat))
	}
	if current != nil {
		endss = append(endss, current)
	}

	return geom.NewMultiPolygonFlat(layout, flat, endss)
}

// signedArea is the shoelace sum; it is negative for clockwise rings in a y-up system.
func signedArea(ring [][]*float64) float64 {
	var sum float64
	for i := 0; i < len(ring); i++ {
		j := (i + 1) % len(ring)
		if len(ring[i]) < 2 || len(ring[j]) < 2 {
			continue
		}
		sum += deref(ring[i][0])*deref(ring[j][1]) - deref(ring[j][0])*deref(ring[i][1])
	}
	return sum / 2
}

// appendCoords appends coordinates to flat as XY or XYZ. M values, which follow Z, are dropped.
func appendCoords(flat []float64, coords [][]*float64, hasZ bool) []float64 {
	for _, c := range coords {
		x, y := at(c, 0), at(c, 1)
		flat = append(flat, x, y)
		if hasZ {
			flat = append(flat, at(c, 2))
		}
	}
	return flat
}

func at(c []*float64, i int) float64 {
	if i >= len(c) {
		return 0
	}
	return deref(c[i])
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
