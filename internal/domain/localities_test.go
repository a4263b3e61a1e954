package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalities_Builtin(t *testing.T) {
	locs, err := Localities()
	require.NoError(t, err)
	require.Len(t, locs, 20)

	assert.Equal(t, "San Felipe", locs[0].Name)
	assert.Equal(t, []string{"E000320019"}, locs[0].Codes)
	assert.Equal(t, "Santo Domingo", locs[len(locs)-1].Name)

	byName := make(map[string]Locality, len(locs))
	for _, l := range locs {
		byName[l.Name] = l
	}
	assert.Equal(t, []string{"E000V00176", "E000V00029", "E000V00177"}, byName["Casablanca"].Codes)
	assert.Equal(t, []string{"E000V00174", "E000V00033"}, byName["Cabildo"].Codes)
	assert.Contains(t, byName, "Puchuncaví")
	assert.NotEmpty(t, byName["Calera"].Note)
}

func TestLocalities_ReturnsCopies(t *testing.T) {
	first, err := Localities()
	require.NoError(t, err)
	first[0].Name = "mutated"
	first[0].Codes[0] = "X1"

	second, err := Localities()
	require.NoError(t, err)
	assert.Equal(t, "San Felipe", second[0].Name)
	assert.Equal(t, "E000320019", second[0].Codes[0])
}

func TestParseLocalities_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"empty", "[]", "empty"},
		{"missing name", "- codes: [E1]", "missing name"},
		{"duplicate", "- {name: A, codes: [E1]}\n- {name: A, codes: [E2]}", "duplicate"},
		{"no codes", "- {name: A, codes: []}", "no station codes"},
		{"bad code", "- {name: A, codes: [e-12]}", "invalid station code"},
		{"not yaml", "- {name: [", "parse localities"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLocalities([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
