// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pose

import "time"

// Vector is a translation in metres.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is a unit rotation.
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Identity is the zero rotation.
var Identity = Quaternion{W: 1}

// Confidence levels reported by the tracking camera. The relay passes
// them through as integers; the names document the source's range.
const (
	ConfidenceFailed = 0
	ConfidenceLow    = 1
	ConfidenceMedium = 2
	ConfidenceHigh   = 3
)

// Record is one sample from the tracking source.
type Record struct {
	// Timestamp is when the source captured the sample. It is kept in
	// traces but is not part of the telemetry line.
	Timestamp time.Time `json:"timestamp"`

	Translation Vector     `json:"translation"`
	Rotation    Quaternion `json:"rotation"`

	TrackerConfidence int `json:"tracker_confidence"`
	MapperConfidence  int `json:"mapper_confidence"`
}
