// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pose

import (
	"fmt"
	"strconv"
	"strings"
)

// LineTag is the first field of every telemetry line.
const LineTag = 'P'

// AppendLine appends the telemetry line for t, newline included, to dst.
func AppendLine(dst []byte, t Telemetry) []byte {
	dst = append(dst, LineTag, ' ')
	dst = strconv.AppendFloat(dst, t.X, 'f', 6, 64)
	dst = append(dst, ' ')
	dst = strconv.AppendFloat(dst, t.Y, 'f', 6, 64)
	dst = append(dst, ' ')
	dst = strconv.AppendFloat(dst, t.Yaw, 'f', 6, 64)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(t.Tracker), 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(t.Mapper), 10)
	return append(dst, '\n')
}

// ParseLine parses one telemetry line, with or without the trailing
// newline.
func ParseLine(line string) (Telemetry, error) {
	fields := strings.Fields(line)
	if len(fields) != 6 || fields[0] != string(LineTag) {
		return Telemetry{}, fmt.Errorf("malformed telemetry line %q", line)
	}

	var t Telemetry
	var err error
	floats := []*float64{&t.X, &t.Y, &t.Yaw}
	for i, target := range floats {
		if *target, err = strconv.ParseFloat(fields[1+i], 64); err != nil {
			return Telemetry{}, fmt.Errorf("telemetry field %d: %w", 1+i, err)
		}
	}
	if t.Tracker, err = strconv.Atoi(fields[4]); err != nil {
		return Telemetry{}, fmt.Errorf("tracker confidence: %w", err)
	}
	if t.Mapper, err = strconv.Atoi(fields[5]); err != nil {
		return Telemetry{}, fmt.Errorf("mapper confidence: %w", err)
	}
	return t, nil
}
