package rooms

import (
	"fmt"
	"time"

	"floorplan-sync/core/reconcile"
	"floorplan-sync/core/utils"

	"github.com/twpayne/go-geom/encoding/wkt"
)

// Layer attribute names read by the projector, beyond those the engine itself uses.
const (
	attrBuilding       = "edificio"
	attrBuildingCode   = "cod_edif"
	attrBuildingAbbrev = "sigla_edif"
	attrSector         = "setor"
	attrDepartment     = "departamento"
	attrRoom           = "ambiente"
	attrCapacity       = "capacidade"
	attrRoomAbbrev     = "sigla_amb"
	attrRoomType       = "tipo_amb"
	attrRoomSubtype    = "sub_tp_amb"
	attrRoomCode       = "cod_amb"
	attrProfessor      = "nome_prof"
	attrArea           = "SHAPE__Area"
	attrLabel          = "label"
)

const columnGeometry = "geom"

// Columns lists the destination columns in insertion order.
var Columns = []string{
	"geom", "andar", "local", "cod_local", "edificio", "cod_edif", "sigla_edif",
	"setor", "cod_setor", "sigla_setor", "departamento", "sigla_dep", "cod_dep",
	"ambiente", "capacidade", "sigla_amb", "tipo_amb", "sub_tp_amb", "cod_amb",
	"nome_prof", "area", "label", "data_atualizacao", "globalid",
}

// Projector maps room features to destination rows.
type Projector struct {
	codes    CodeTables
	srid     int
	location *time.Location
}

// NewProjector returns a projector writing geometries in srid and edit dates in loc.
func NewProjector(codes CodeTables, srid int, loc *time.Location) *Projector {
	if loc == nil {
		loc = time.Local
	}
	return &Projector{codes: codes, srid: srid, location: loc}
}

// Project builds the row of f in Columns order. Unknown codes and labels project to NULL.
func (p *Projector) Project(f reconcile.Feature, domains reconcile.DomainMap) (reconcile.ColumnRecord, error) {
	values, err := p.values(f, domains)
	if err != nil {
		return reconcile.ColumnRecord{}, err
	}

	record := reconcile.ColumnRecord{Columns: make([]reconcile.Column, len(Columns))}
	for i, name := range Columns {
		record.Columns[i] = reconcile.Column{Name: name, Value: values[name]}
		if name == columnGeometry {
			record.Columns[i].SRID = p.srid
		}
	}
	return record, nil
}

// values computes the value of every destination column, keyed by column name.
func (p *Projector) values(f reconcile.Feature, domains reconcile.DomainMap) (map[string]any, error) {
	id, err := f.GlobalID()
	if err != nil {
		return nil, err
	}

	editedAt, err := p.editDate(f)
	if err != nil {
		return nil, fmt.Errorf("feature %s: %w", id, err)
	}

	shape, err := p.geometry(f)
	if err != nil {
		return nil, fmt.Errorf("feature %s: %w", id, err)
	}

	var floor any
	if n, ok := f.Floor(); ok {
		floor = n
	}

	attrs := f.Attributes
	raw := func(name string) any {
		v, _ := attrs.Get(name)
		return v
	}
	label := func(field string) any {
		if l, ok := domains.Translate(field, raw(field)); ok {
			return l
		}
		return nil
	}

	return map[string]any{
		columnGeometry:     shape,
		"andar":            floor,
		"local":            label(reconcile.AttrLocation),
		"cod_local":        raw(reconcile.AttrLocation),
		"edificio":         raw(attrBuilding),
		"cod_edif":         raw(attrBuildingCode),
		"sigla_edif":       raw(attrBuildingAbbrev),
		"setor":            label(attrSector),
		"cod_setor":        lookup(p.codes.SectorID, raw(attrSector)),
		"sigla_setor":      raw(attrSector),
		"departamento":     label(attrDepartment),
		"sigla_dep":        raw(attrDepartment),
		"cod_dep":          lookup(p.codes.DepartmentID, raw(attrDepartment)),
		"ambiente":         raw(attrRoom),
		"capacidade":       raw(attrCapacity),
		"sigla_amb":        raw(attrRoomAbbrev),
		"tipo_amb":         label(attrRoomType),
		"sub_tp_amb":       raw(attrRoomSubtype),
		"cod_amb":          raw(attrRoomCode),
		"nome_prof":        raw(attrProfessor),
		"area":             raw(attrArea),
		"label":            raw(attrLabel),
		"data_atualizacao": editedAt,
		"globalid":         id,
	}, nil
}

// editDate converts the epoch-millisecond EditDate, floored to whole seconds.
func (p *Projector) editDate(f reconcile.Feature) (time.Time, error) {
	v, ok := f.Attributes.Get(reconcile.AttrEditDate)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s is absent", reconcile.ErrMalformedTimestamp, reconcile.AttrEditDate)
	}
	ms, ok := utils.ToInt64(v)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s is %v", reconcile.ErrMalformedTimestamp, reconcile.AttrEditDate, v)
	}
	secs := ms / 1000
	if ms%1000 < 0 {
		secs--
	}
	return time.Unix(secs, 0).In(p.location), nil
}

// geometry renders the shape as WKT, or nil when the feature has none.
func (p *Projector) geometry(f reconcile.Feature) (any, error) {
	if f.Geometry == nil {
		return nil, nil
	}
	text, err := wkt.Marshal(f.Geometry)
	if err != nil {
		return nil, fmt.Errorf("encode geometry: %w", err)
	}
	return text, nil
}

func lookup(table func(string) (int, bool), code any) any {
	if code == nil {
		return nil
	}
	if id, ok := table(utils.ToString(code)); ok {
		return id
	}
	return nil
}
