package diagnosis

// Cause is a single candidate explanation with its likelihood.
type Cause struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
}

// Action is a recommended next step with its urgency.
type Action struct {
	Action  string  `json:"action"`
	Urgency float64 `json:"urgency"`
}

// Data is the structured companion to the narrative assessment. Scores are
// in (0.1, 0.9) by prompt contract.
type Data struct {
	SeverityScore      float64  `json:"severityScore"`
	PossibleCauses     []Cause  `json:"possibleCauses"`
	RecommendedActions []Action `json:"recommendedActions"`
}

// Report pairs the narrative markdown with its structured data.
type Report struct {
	Content string `json:"diagnosis"`
	Data    Data   `json:"diagnosisData"`
}

// FallbackData is the structured data used when the model returns
// unparseable JSON.
func FallbackData() Data {
	return Data{
		SeverityScore:      0.5,
		PossibleCauses:     []Cause{{Name: "Unknown Cause", Probability: 0.5}},
		RecommendedActions: []Action{{Action: "Consult Veterinarian", Urgency: 0.7}},
	}
}
