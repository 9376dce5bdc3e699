package triage

import (
	"fmt"
	"sort"
)

// Confidence thresholds. Direct match queries and the auto-record
// batch action intentionally use different cutoffs; do not unify them.
const (
	MatchConfidenceMin      = 50.0
	AutoRecordConfidenceMin = 60.0
)

// DiseaseMatch is one scored catalog hit. Confidence is the percentage
// of the disease's checkable parameter families matched by the sample;
// MatchedParameters lists every family that matched, human-readable.
type DiseaseMatch struct {
	Disease           Disease  `json:"disease"`
	Confidence        float64  `json:"confidence"`
	MatchedParameters []string `json:"matchedParameters"`
}

// MatchDiseases scores a vital sample against every catalog entry.
// Temperature is in Celsius; respiratoryRate may be nil when the
// device does not report it, in which case respiratory thresholds are
// not evaluated. Results are sorted by descending confidence, ties
// keeping catalog order. Only entries with at least one checkable
// family, at least one matched family, and confidence ≥
// MatchConfidenceMin are returned.
func MatchDiseases(tempCelsius float64, heartRate, spo2 int, respiratoryRate *int) []DiseaseMatch {
	var matches []DiseaseMatch

	for _, disease := range catalog {
		th := disease.Thresholds
		matchScore := 0
		totalChecks := 0
		var matched []string

		// Temperature: within [min,max] when both bounds are set,
		// one-sided otherwise.
		if th.TempMin != nil || th.TempMax != nil {
			totalChecks++
			tempMatch := false
			switch {
			case th.TempMin != nil && th.TempMax != nil:
				tempMatch = tempCelsius >= *th.TempMin && tempCelsius <= *th.TempMax
			case th.TempMin != nil:
				tempMatch = tempCelsius >= *th.TempMin
			case th.TempMax != nil:
				tempMatch = tempCelsius <= *th.TempMax
			}
			if tempMatch {
				matchScore++
				matched = append(matched, fmt.Sprintf("Temperature: %.1f°C", tempCelsius))
			}
		}

		// Heart rate: within [min,max] when both bounds are set; a lone
		// max is a tachycardia check (reading above it), a lone min a
		// bradycardia check (reading below it).
		if th.HRMin != nil || th.HRMax != nil {
			totalChecks++
			hrMatch := false
			switch {
			case th.HRMin != nil && th.HRMax != nil:
				hrMatch = heartRate >= *th.HRMin && heartRate <= *th.HRMax
			case th.HRMax != nil:
				hrMatch = heartRate > *th.HRMax
			case th.HRMin != nil:
				hrMatch = heartRate < *th.HRMin
			}
			if hrMatch {
				matchScore++
				matched = append(matched, fmt.Sprintf("Heart Rate: %d bpm", heartRate))
			}
		}

		// SpO2: only a hypoxemia floor is ever checked.
		if th.SpO2Min != nil {
			totalChecks++
			if spo2 < *th.SpO2Min {
				matchScore++
				matched = append(matched, fmt.Sprintf("SpO2: %d%%", spo2))
			}
		}

		// Respiratory rate: only when the caller supplies a value.
		if respiratoryRate != nil && th.RRMin != nil {
			totalChecks++
			if *respiratoryRate > *th.RRMin {
				matchScore++
				matched = append(matched, fmt.Sprintf("Respiratory Rate: %d breaths/min", *respiratoryRate))
			}
		}

		if totalChecks == 0 || matchScore == 0 {
			continue
		}
		confidence := float64(matchScore) / float64(totalChecks) * 100
		if confidence < MatchConfidenceMin {
			continue
		}
		matches = append(matches, DiseaseMatch{
			Disease:           disease,
			Confidence:        confidence,
			MatchedParameters: matched,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	return matches
}
