package reconcile

import "floorplan-sync/core/utils"

// DomainMap maps a field name to its coded values and their labels.
type DomainMap map[string]map[string]string

// NewDomainMap returns an empty map.
func NewDomainMap() DomainMap {
	return make(DomainMap)
}

// Add registers label for code within field.
// Codes are stored in string form so numeric and textual codes compare equal.
func (d DomainMap) Add(field string, code any, label string) {
	values, ok := d[field]
	if !ok {
		values = make(map[string]string)
		d[field] = values
	}
	values[utils.ToString(code)] = label
}

// Translate returns the label of code within field.
// It reports false when the field has no domain, the code is absent, or the code is unknown.
func (d DomainMap) Translate(field string, code any) (string, bool) {
	if code == nil {
		return "", false
	}
	values, ok := d[field]
	if !ok {
		return "", false
	}
	label, ok := values[utils.ToString(code)]
	return label, ok
}

// Fields returns the number of fields carrying a domain.
func (d DomainMap) Fields() int {
	return len(d)
}
