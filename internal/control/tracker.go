package control

// ErrorTracker keeps an error value and its first and second discrete
// differences. Differences always refer to the previous Update only.
type ErrorTracker struct {
	Error       float64 `json:"error" yaml:"error"`
	DeltaError  float64 `json:"deltaError" yaml:"deltaError"`
	DeltaError2 float64 `json:"deltaError2" yaml:"deltaError2"`
}

func (t *ErrorTracker) Update(err float64) {
	delta := err - t.Error
	t.DeltaError2 = delta - t.DeltaError
	t.DeltaError = delta
	t.Error = err
}

func (t *ErrorTracker) Reset() {
	*t = ErrorTracker{}
}
