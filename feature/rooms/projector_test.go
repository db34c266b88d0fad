package rooms

import (
	"strings"
	"testing"
	"time"

	"floorplan-sync/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func sampleFeature() reconcile.Feature {
	return reconcile.Feature{
		Attributes: reconcile.Attributes{
			"GlobalID":     "3f2504e0-4f89-11d3-9a0c-0305e82c3301",
			"local":        "CT",
			"andar":        int64(2),
			"edificio":     "Bloco V",
			"cod_edif":     int64(12),
			"sigla_edif":   "BV",
			"setor":        "CT",
			"departamento": "DINF",
			"ambiente":     "Laboratório 1",
			"capacidade":   int64(40),
			"sigla_amb":    "LAB1",
			"tipo_amb":     int64(3),
			"sub_tp_amb":   "info",
			"cod_amb":      "CT-V-201",
			"nome_prof":    nil,
			"SHAPE__Area":  52.75,
			"label":        "LAB 1",
			"EditDate":     int64(1700000000999),
		},
		Geometry: geom.NewMultiPolygonFlat(geom.XYZ,
			[]float64{0, 0, 3, 0, 1, 3, 1, 1, 3, 0, 0, 3},
			[][]int{{12}},
		),
	}
}

func sampleDomains() reconcile.DomainMap {
	d := reconcile.NewDomainMap()
	d.Add("local", "CT", "Centro Politécnico")
	d.Add("setor", "CT", "Setor de Tecnologia")
	d.Add("departamento", "DINF", "Departamento de Informática")
	d.Add("tipo_amb", int64(3), "Laboratório")
	return d
}

func TestProject_ColumnOrderAndValues(t *testing.T) {
	p := NewProjector(DefaultCodeTables(), 31982, time.UTC)

	rec, err := p.Project(sampleFeature(), sampleDomains())
	require.NoError(t, err)

	assert.Equal(t, Columns, rec.Names())

	want := map[string]any{
		"andar":            2,
		"local":            "Centro Politécnico",
		"cod_local":        "CT",
		"edificio":         "Bloco V",
		"cod_edif":         int64(12),
		"sigla_edif":       "BV",
		"setor":            "Setor de Tecnologia",
		"cod_setor":        5,
		"sigla_setor":      "CT",
		"departamento":     "Departamento de Informática",
		"sigla_dep":        "DINF",
		"cod_dep":          47,
		"ambiente":         "Laboratório 1",
		"capacidade":       int64(40),
		"sigla_amb":        "LAB1",
		"tipo_amb":         "Laboratório",
		"sub_tp_amb":       "info",
		"cod_amb":          "CT-V-201",
		"nome_prof":        nil,
		"area":             52.75,
		"label":            "LAB 1",
		"data_atualizacao": time.Unix(1700000000, 0).UTC(),
		"globalid":         "{3F2504E0-4F89-11D3-9A0C-0305E82C3301}",
	}
	for name, value := range want {
		got, ok := rec.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, value, got, name)
	}

	geomCol := rec.Columns[0]
	assert.Equal(t, 31982, geomCol.SRID)
	text, ok := geomCol.Value.(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(text, "MULTIPOLYGON Z"), text)
}

func TestProject_ValuesCoverExactlyColumns(t *testing.T) {
	p := NewProjector(DefaultCodeTables(), 31982, time.UTC)

	values, err := p.values(sampleFeature(), sampleDomains())
	require.NoError(t, err)

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	assert.ElementsMatch(t, Columns, names)
}

func TestProject_UnknownCodesAreNull(t *testing.T) {
	f := sampleFeature()
	f.Attributes["setor"] = "ZZ"
	f.Attributes["departamento"] = "DXYZ"
	f.Attributes["tipo_amb"] = int64(99)

	rec, err := NewProjector(DefaultCodeTables(), 31982, time.UTC).Project(f, sampleDomains())
	require.NoError(t, err)

	for _, name := range []string{"setor", "cod_setor", "departamento", "cod_dep", "tipo_amb"} {
		v, _ := rec.Get(name)
		assert.Nil(t, v, name)
	}
	raw, _ := rec.Get("sigla_setor")
	assert.Equal(t, "ZZ", raw)
}

func TestProject_EmptyDomainMap(t *testing.T) {
	rec, err := NewProjector(DefaultCodeTables(), 31982, time.UTC).Project(sampleFeature(), reconcile.NewDomainMap())
	require.NoError(t, err)

	v, _ := rec.Get("local")
	assert.Nil(t, v)
	v, _ = rec.Get("cod_setor")
	assert.Equal(t, 5, v, "code tables do not depend on domains")
}

func TestProject_MissingEditDateIsMalformed(t *testing.T) {
	f := sampleFeature()
	delete(f.Attributes, "EditDate")

	_, err := NewProjector(DefaultCodeTables(), 31982, time.UTC).Project(f, sampleDomains())
	assert.ErrorIs(t, err, reconcile.ErrMalformedTimestamp)

	f.Attributes["EditDate"] = "yesterday"
	_, err = NewProjector(DefaultCodeTables(), 31982, time.UTC).Project(f, sampleDomains())
	assert.ErrorIs(t, err, reconcile.ErrMalformedTimestamp)
}

func TestProject_EditDateFloorsToSeconds(t *testing.T) {
	tests := []struct {
		ms   int64
		want int64
	}{
		{1700000000999, 1700000000},
		{1700000000000, 1700000000},
		{-1500, -2},
	}

	for _, tt := range tests {
		f := sampleFeature()
		f.Attributes["EditDate"] = tt.ms

		rec, err := NewProjector(DefaultCodeTables(), 31982, time.UTC).Project(f, nil)
		require.NoError(t, err)
		v, _ := rec.Get("data_atualizacao")
		assert.Equal(t, tt.want, v.(time.Time).Unix())
	}
}

func TestProject_UsesConfiguredZone(t *testing.T) {
	zone := time.FixedZone("BRT", -3*60*60)

	rec, err := NewProjector(DefaultCodeTables(), 31982, zone).Project(sampleFeature(), nil)
	require.NoError(t, err)

	v, _ := rec.Get("data_atualizacao")
	assert.Equal(t, zone, v.(time.Time).Location())
}

func TestProject_NilGeometry(t *testing.T) {
	f := sampleFeature()
	f.Geometry = nil

	rec, err := NewProjector(DefaultCodeTables(), 31982, time.UTC).Project(f, nil)
	require.NoError(t, err)
	assert.Nil(t, rec.Columns[0].Value)
}

func TestProject_Deterministic(t *testing.T) {
	p := NewProjector(DefaultCodeTables(), 31982, time.UTC)
	a, err := p.Project(sampleFeature(), sampleDomains())
	require.NoError(t, err)
	b, err := p.Project(sampleFeature(), sampleDomains())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCodeTables(t *testing.T) {
	sectors := map[string]int{"CT": 5}
	codes := NewCodeTables(sectors, nil)
	sectors["CT"] = 99

	id, ok := codes.SectorID("CT")
	assert.True(t, ok)
	assert.Equal(t, 5, id, "tables are copied on construction")

	_, ok = codes.DepartmentID("DINF")
	assert.False(t, ok)

	defaults := DefaultCodeTables()
	id, _ = defaults.SectorID("CEM")
	assert.Equal(t, 18, id)
	id, _ = defaults.DepartmentID("DZO")
	assert.Equal(t, 88, id)
	_, ok = defaults.DepartmentID("DEST43")
	assert.False(t, ok)
}
