package reconcile

import (
	"fmt"
	"strconv"
	"strings"
)

// BasementFloor is the floor number stored in tables suffixed "subsolo".
const BasementFloor = -1

// TableKey names the destination table for a (location, floor) pair.
type TableKey struct {
	Schema string
	Table  string
}

// String returns the dotted "schema.table" form.
func (k TableKey) String() string {
	return k.Schema + "." + k.Table
}

// Less orders keys by schema, then table.
func (k TableKey) Less(other TableKey) bool {
	if k.Schema != other.Schema {
		return k.Schema < other.Schema
	}
	return k.Table < other.Table
}

// ResolveTableKey maps a location code and floor to its table.
// Location codes are case-insensitive; floor -1 is the basement.
//
//	ResolveTableKey("CT", -1) => ct.ct_andar_subsolo
//	ResolveTableKey("CT", 2)  => ct.ct_andar_2
func ResolveTableKey(location string, floor int) (TableKey, error) {
	schema := strings.ToLower(strings.TrimSpace(location))
	if schema == "" {
		return TableKey{}, fmt.Errorf("%w: empty location", ErrInvalidKeyInput)
	}

	suffix := strconv.Itoa(floor)
	if floor == BasementFloor {
		suffix = "subsolo"
	}

	return TableKey{
		Schema: schema,
		Table:  schema + "_andar_" + suffix,
	}, nil
}
