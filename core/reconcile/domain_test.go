package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainMap_Translate(t *testing.T) {
	domains := NewDomainMap()
	domains.Add("local", "CT", "Centro Politécnico")
	domains.Add("tipo_amb", int64(3), "Sala de aula")

	tests := []struct {
		name      string
		field     string
		code      any
		wantLabel string
		wantOK    bool
	}{
		{"string code", "local", "CT", "Centro Politécnico", true},
		{"numeric code", "tipo_amb", int64(3), "Sala de aula", true},
		{"numeric code as float", "tipo_amb", 3.0, "Sala de aula", true},
		{"numeric code as json", "tipo_amb", json.Number("3"), "Sala de aula", true},
		{"unknown code", "local", "XX", "", false},
		{"field without domain", "edificio", "A", "", false},
		{"absent code", "local", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, ok := domains.Translate(tt.field, tt.code)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLabel, label)
		})
	}

	assert.Equal(t, 2, domains.Fields())
}

func TestDomainMap_NilMapTranslates(t *testing.T) {
	var domains DomainMap
	_, ok := domains.Translate("local", "CT")
	assert.False(t, ok)
}
