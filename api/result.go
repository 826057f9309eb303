package api

import "time"

// ReactivePowerResult is the outcome of the reactive power solver
type ReactivePowerResult struct {
	ReactivePower float64 `json:"mvar"`
	Valid         bool    `json:"isValid"`
	Error         string  `json:"error,omitempty"`
}

// Err returns the cause of an invalid result or nil
func (r ReactivePowerResult) Err() error {
	if r.Error == "" {
		return nil
	}
	return InvalidInputError(r.Error)
}

// ConsumptionResult is the outcome of the consumption adjustment engine
type ConsumptionResult struct {
	DeltaLow            float64 `json:"diff33"`
	NormalizedLow       float64 `json:"net33"`
	AdjustedHighReading float64 `json:"today132_adj"`
	DeltaHigh           float64 `json:"diff132"`
	NormalizedHigh      float64 `json:"net132"`
	DisplayedDifference float64 `json:"displayedDifference"`
	Valid               bool    `json:"isValid"`
	Error               string  `json:"error,omitempty"`
}

// Err returns the cause of an invalid result or nil
func (r ConsumptionResult) Err() error {
	if r.Error == "" {
		return nil
	}
	return InvalidInputError(r.Error)
}

// PowerInputs are the raw reactive power inputs as typed by the user
type PowerInputs struct {
	MW  string `json:"mw"`
	MVA string `json:"mva"`
}

// ConsumptionInputs are the raw meter readings as typed by the user
type ConsumptionInputs struct {
	Today33     string    `json:"today33"`
	Previous33  string    `json:"previous33"`
	Today132    string    `json:"today132"`
	Previous132 string    `json:"previous132"`
	Adjustment  Directive `json:"adjustment"`
}

// AuditEntry records an applied adjustment
type AuditEntry struct {
	ID                  string    `json:"id" yaml:"id"`
	Timestamp           time.Time `json:"timestamp" yaml:"timestamp"`
	Directive           Directive `json:"adjustment" yaml:"adjustment"`
	OriginalHighReading float64   `json:"originalToday132" yaml:"originalToday132"`
	AdjustedHighReading float64   `json:"today132_adj" yaml:"today132_adj"`
	NormalizedLow       float64   `json:"net33" yaml:"net33"`
	NormalizedHigh      float64   `json:"net132" yaml:"net132"`
}
