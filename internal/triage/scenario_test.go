package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medico-vitals/internal/domain"
)

func TestClassify_ScenarioTable(t *testing.T) {
	tests := []struct {
		name       string
		hr         int
		spo2       int
		tempC      float64
		wantID     int
		wantRisk   domain.RiskLevel
	}{
		// All bands abnormal low
		{"bradycardia hypothermia hypoxemia", 50, 90, 30.0, 1, domain.RiskCritical},
		// HR>100, temp 36°C = 96.8°F (<97), SpO2 low → scenario 2 wins over 16
		{"tachycardia mild hypothermia hypoxemia", 120, 90, 36.0, 2, domain.RiskCritical},
		{"mild hypothermia only", 70, 98, 36.0, 3, domain.RiskModerate},
		// temp 38.3°C = 100.94°F (>100)
		{"mild fever only", 70, 96, 38.3, 4, domain.RiskModerate},
		{"bradycardia only", 55, 97, 36.8, 5, domain.RiskModerate},
		{"tachycardia only", 110, 96, 36.8, 6, domain.RiskModerate},
		{"mild hypoxemia only", 80, 90, 36.8, 7, domain.RiskModerate},
		{"bradycardia mild hypothermia", 50, 98, 36.0, 8, domain.RiskCritical},
		// temp 38°C = 100.4°F (>99)
		{"bradycardia mild fever", 50, 96, 38.0, 9, domain.RiskModerate},
		{"tachycardia mild hypothermia", 120, 96, 36.0, 10, domain.RiskCritical},
		{"tachycardia fever", 120, 97, 38.5, 11, domain.RiskCritical},
		{"mild hypothermia mild hypoxemia", 70, 90, 36.0, 12, domain.RiskCritical},
		{"fever mild hypoxemia", 80, 90, 38.0, 13, domain.RiskCritical},
		{"bradycardia mild hypoxemia", 50, 90, 37.0, 14, domain.RiskCritical},
		{"tachycardia mild hypoxemia", 120, 90, 37.0, 15, domain.RiskCritical},
		// All vitals normal (37°C = 98.6°F)
		{"all normal", 75, 98, 37.0, 0, domain.RiskNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.hr, tt.spo2, tt.tempC)
			assert.Equal(t, tt.wantID, got.ID)
			assert.Equal(t, tt.wantRisk, got.RiskLevel)
		})
	}
}

func TestClassify_IntegerBoundaries(t *testing.T) {
	// HR 60 and 100 are inside the normal band, SpO2 95 is normal.
	normalTemp := 37.0 // 98.6°F

	got := Classify(60, 95, normalTemp)
	assert.Equal(t, 0, got.ID)

	got = Classify(100, 95, normalTemp)
	assert.Equal(t, 0, got.ID)

	// One below / above each edge leaves the band.
	got = Classify(59, 95, normalTemp)
	assert.Equal(t, 5, got.ID)

	got = Classify(101, 95, normalTemp)
	assert.Equal(t, 6, got.ID)

	got = Classify(80, 94, normalTemp)
	assert.Equal(t, 7, got.ID)
}

func TestClassify_SlightlyElevatedTempIsNormal(t *testing.T) {
	// 37.5°C = 99.5°F sits between the >99 and >100 breakpoints; with
	// normal HR and SpO2 no rule fires and the default scenario wins.
	got := Classify(75, 98, 37.5)
	assert.Equal(t, 0, got.ID)
	assert.Equal(t, domain.RiskNormal, got.RiskLevel)
	assert.Equal(t, "All vitals normal", got.SpecificCause)
}

func TestClassify_Scenario16IsShadowed(t *testing.T) {
	// Scenario 16 shares scenario 2's predicate; the earlier rule wins.
	got := Classify(150, 85, 35.0)
	assert.Equal(t, 2, got.ID)
}

func TestClassify_TotalAndDeterministic(t *testing.T) {
	for hr := 40; hr <= 140; hr += 10 {
		for spo2 := 85; spo2 <= 100; spo2 += 5 {
			for _, tempC := range []float64{34.0, 35.5, 36.0, 36.8, 37.5, 38.0, 39.0} {
				first := Classify(hr, spo2, tempC)
				second := Classify(hr, spo2, tempC)
				require.Equal(t, first, second)
				require.True(t, first.RiskLevel.Valid(),
					"hr=%d spo2=%d temp=%.1f produced risk %q", hr, spo2, tempC, first.RiskLevel)
				require.GreaterOrEqual(t, first.ID, 0)
				require.LessOrEqual(t, first.ID, 16)
			}
		}
	}
}

func TestCelsiusToFahrenheit(t *testing.T) {
	assert.InDelta(t, 98.6, CelsiusToFahrenheit(37.0), 0.001)
	assert.InDelta(t, 32.0, CelsiusToFahrenheit(0.0), 0.001)
	assert.InDelta(t, 86.0, CelsiusToFahrenheit(30.0), 0.001)
}
