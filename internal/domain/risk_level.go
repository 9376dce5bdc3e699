package domain

// RiskLevel classifies a vital reading and a patient's current state.
type RiskLevel string

const (
	RiskNormal   RiskLevel = "NORMAL"
	RiskModerate RiskLevel = "MODERATE"
	RiskCritical RiskLevel = "CRITICAL"
)

// Valid reports whether the value is one of the three known levels.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskNormal, RiskModerate, RiskCritical:
		return true
	}
	return false
}
