// Package rooms projects the campus room layer onto the per-floor destination tables.
//
// Each room feature becomes one row: coded attributes are written both raw and translated
// through the layer's domains, sector and department codes are resolved to their numeric ids,
// the geometry is written as WKT with Z, and the edit date is converted from epoch
// milliseconds.
package rooms
