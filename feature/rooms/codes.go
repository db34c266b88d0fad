package rooms

// CodeTables maps organizational codes to the integer ids used by the destination tables.
// The zero value has no entries. Values are read-only once built.
type CodeTables struct {
	sectors     map[string]int
	departments map[string]int
}

// NewCodeTables copies sectors and departments into a new table set.
func NewCodeTables(sectors, departments map[string]int) CodeTables {
	return CodeTables{
		sectors:     clone(sectors),
		departments: clone(departments),
	}
}

// SectorID returns the id of a sector code.
func (c CodeTables) SectorID(code string) (int, bool) {
	id, ok := c.sectors[code]
	return id, ok
}

// DepartmentID returns the id of a department code.
func (c CodeTables) DepartmentID(code string) (int, bool) {
	id, ok := c.departments[code]
	return id, ok
}

func clone(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// DefaultCodeTables returns the campus sector and department ids.
func DefaultCodeTables() CodeTables {
	return NewCodeTables(defaultSectors, defaultDepartments)
}

var defaultSectors = map[string]int{
	"AC": 1, "AG": 2, "BL": 3, "SD": 4, "CT": 5, "ET": 6, "CH": 7, "JD": 8, "SA": 9,
	"ED": 10, "SEPT": 11, "CJS": 12, "TC": 13, "LT": 14, "PL": 15, "P": 16, "ADM": 17,
	"CEM": 18,
}

var defaultDepartments = map[string]int{
	"DEARTES": 1, "DECOM": 2, "DEDESIGN": 3, "DECIF": 4, "DERE": 5, "DEFT": 6, "DFF": 7,
	"DMV": 8, "DSEA": 9, "DZ": 10, "DANAT": 11, "DBIOCEL": 12, "DBIOQ": 13, "DBOT": 14,
	"DEDFIS": 15, "DFARM": 16, "DFISIO": 17, "DGEN": 18, "DPAT": 19, "DPRF": 20, "DZOO": 21,
	"DAC": 22, "DPJ": 23, "DCIR": 24, "DCM": 25, "DENF": 26, "DESTO": 27, "DFAR": 28,
	"DMI": 30, "DMFP": 31, "DNUT": 32, "DOR": 33, "DPM": 34, "DPED": 35, "DSC": 36,
	"DTG": 37, "DOFOT": 38, "DTO": 39, "DGEOG": 40, "DGEOL": 41, "DGEOM": 42, "DEST": 44,
	"DEGRAF": 45, "DFIS": 46, "DINF": 47, "DMAT": 48, "DQUI": 49, "DEAN": 50, "DECP": 51,
	"DECISO": 52, "DEFI": 53, "DEHIS": 54, "DELI": 55, "DELEM": 56, "DELLIN": 57,
	"DEPAC": 58, "DEPSI": 59, "DETUR": 60, "DDCIV": 61, "DDPEN": 62, "DDPRIV": 63,
	"DDPUB": 64, "DAGA": 65, "DECONT": 66, "DEPECON": 67, "DECIGI": 68, "DTPEN": 69,
	"DTFE": 70, "DEPLAE": 71, "CAU": 72, "DCC": 73, "DELT": 74, "DEMEC": 75, "DEQ": 76,
	"DHS": 77, "DEA": 78, "DEBB": 79, "DEP": 80, "DTT": 81, "DBC": 82, "DBD": 83, "DCA": 84,
	"DCV": 85, "DEE": 86, "DEC": 87, "DZO": 88,
}
