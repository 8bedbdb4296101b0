// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pose defines the pose record produced by the tracking source
// and the pure conversion from a record to the telemetry line sent to
// the controller.
//
// A [Record] is one 6DOF sample in the tracking camera's native frame:
// metres, right-handed, Y up, -Z forward. [Convert] projects it onto
// the floor plane used by the controller: x along the camera's X axis,
// y along -Z, both scaled to the configured [Unit], and yaw in degrees.
//
// The yaw extraction swaps the quaternion's y and z components before
// applying the standard Z-yaw formula. The camera reports heading as a
// rotation about its Y axis; the swap moves it to the slot the formula
// reads. It is a fixed property of the source's coordinate convention
// and must not be "corrected".
//
// [AppendLine] and [ParseLine] implement the telemetry line
//
//	P <x> <y> <yaw> <tracker> <mapper>\n
//
// with six-decimal fixed-point floats.
package pose
