package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_StableUniqueIDs(t *testing.T) {
	diseases := AllDiseases()
	require.Len(t, diseases, 12)

	seen := make(map[int]bool)
	for i, d := range diseases {
		assert.Equal(t, i+1, d.ID, "catalog ids are 1..12 in insertion order")
		assert.False(t, seen[d.ID], "duplicate id %d", d.ID)
		seen[d.ID] = true
		assert.NotEmpty(t, d.Name)
		assert.NotEmpty(t, d.Symptoms)
		assert.NotEmpty(t, d.Recommendations)
	}
}

func TestDiseaseByID(t *testing.T) {
	d, ok := DiseaseByID(2)
	require.True(t, ok)
	assert.Equal(t, "Fever", d.Name)

	_, ok = DiseaseByID(99)
	assert.False(t, ok)
}

func TestDiseaseByName_PartialCaseInsensitive(t *testing.T) {
	d, ok := DiseaseByName("pneu")
	require.True(t, ok)
	assert.Equal(t, 8, d.ID)

	d, ok = DiseaseByName("TYPHOID")
	require.True(t, ok)
	assert.Equal(t, 11, d.ID)

	_, ok = DiseaseByName("no such disease")
	assert.False(t, ok)
}

func TestCatalog_EveryEntryHasCheckableFamily(t *testing.T) {
	for _, d := range AllDiseases() {
		th := d.Thresholds
		checkable := th.TempMin != nil || th.TempMax != nil ||
			th.HRMin != nil || th.HRMax != nil ||
			th.SpO2Min != nil || th.RRMin != nil
		assert.True(t, checkable, "disease %d has no checkable thresholds", d.ID)
	}
}
