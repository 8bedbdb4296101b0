// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pose

import (
	"fmt"
	"math"
)

// Unit is the linear unit of the x and y fields on the wire.
type Unit string

const (
	Feet   Unit = "feet"
	Inches Unit = "inches"
	Meters Unit = "meters"
)

const (
	metresPerInch    = 0.0254
	degreesPerRadian = 180 / math.Pi
)

// ParseUnit validates a unit name.
func ParseUnit(name string) (Unit, error) {
	switch unit := Unit(name); unit {
	case Feet, Inches, Meters:
		return unit, nil
	}
	return "", fmt.Errorf("unknown unit %q (want feet, inches, or meters)", name)
}

// PerMetre returns how many of u make up one metre.
func (u Unit) PerMetre() float64 {
	switch u {
	case Inches:
		return 1 / metresPerInch
	case Meters:
		return 1
	default:
		return 1 / 12.0 / metresPerInch
	}
}

// Telemetry is the converted, wire-ready form of a Record.
type Telemetry struct {
	X, Y    float64
	Yaw     float64
	Tracker int
	Mapper  int
}

// Convert projects record onto the controller's floor frame in unit.
func Convert(record Record, unit Unit) Telemetry {
	scale := unit.PerMetre()
	return Telemetry{
		X:       record.Translation.X * scale,
		Y:       -record.Translation.Z * scale,
		Yaw:     Yaw(record.Rotation),
		Tracker: record.TrackerConfidence,
		Mapper:  record.MapperConfidence,
	}
}

// Yaw returns the heading encoded by q in degrees, in (-180, 180].
// The camera's y and z components are swapped before extraction.
func Yaw(q Quaternion) float64 {
	qw := q.W
	qx := q.X
	qz := q.Y
	qy := q.Z

	yaw := math.Atan2(2*(qx*qy+qw*qz), qw*qw+qx*qx-qy*qy-qz*qz) * degreesPerRadian
	return normalizeYaw(yaw)
}

// normalizeYaw folds values that would print as -180.000000 onto 180
// and drops the sign of negative zero, so the boundary has one spelling.
func normalizeYaw(yaw float64) float64 {
	if math.IsNaN(yaw) {
		return 0
	}
	if yaw < -180+0.5e-6 {
		yaw += 360
	}
	if yaw == 0 {
		return 0
	}
	return yaw
}
