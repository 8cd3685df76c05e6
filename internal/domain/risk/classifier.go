package risk

// Label is the derived risk level of a patient record or transcript.
type Label string

const (
	HighRisk Label = "High Risk"
	LowRisk  Label = "Low Risk"
)

// DefaultThreshold is the score above which a record is flagged high risk.
const DefaultThreshold = 0.7

// Classifier assigns a risk label from a precomputed numeric score by
// comparing it against a fixed threshold. Classification is a pure function
// of the score: labels are derived wherever they are needed and never
// stored, so a threshold change can never leave a stale label behind.
type Classifier struct {
	threshold float64
}

// NewClassifier creates a classifier with the given threshold. A
// non-positive threshold falls back to DefaultThreshold.
func NewClassifier(threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{threshold: threshold}
}

// Threshold returns the configured threshold.
func (c *Classifier) Threshold() float64 { return c.threshold }

// Classify returns HighRisk when score is strictly greater than the
// threshold, LowRisk otherwise. Any numeric score is accepted; a score
// exactly at the threshold is low risk.
func (c *Classifier) Classify(score float64) Label {
	if score > c.threshold {
		return HighRisk
	}
	return LowRisk
}
