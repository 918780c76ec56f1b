// File: internal/config/motors.go

package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MotorSpeeds are the per-axis speeds configured for the daemon. Zero means
// the axis has no usable speed.
type MotorSpeeds struct {
	Pan  int32
	Tilt int32
}

// ErrMalformedMotors is returned when the motors file is not an object.
var ErrMalformedMotors = errors.New("malformed motors configuration")

// LoadMotors reads path and extracts the configured speeds.
func LoadMotors(path string) (MotorSpeeds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MotorSpeeds{}, fmt.Errorf("failed to read motors config: %w", err)
	}
	return ParseMotors(data)
}

// ParseMotors extracts speeds from the daemon's JSON configuration. A
// "motors" object with speed_pan and speed_tilt takes precedence; without
// one the older pan.speed and tilt.speed layout is used. JSON is a subset of
// YAML, so the document is decoded through the yaml node tree.
func ParseMotors(data []byte) (MotorSpeeds, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return MotorSpeeds{}, fmt.Errorf("%w: %v", ErrMalformedMotors, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return MotorSpeeds{}, fmt.Errorf("%w: empty document", ErrMalformedMotors)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return MotorSpeeds{}, fmt.Errorf("%w: top level is not an object", ErrMalformedMotors)
	}

	if motors := lookup(root, "motors"); motors != nil && motors.Kind == yaml.MappingNode {
		return MotorSpeeds{
			Pan:  speedOf(lookup(motors, "speed_pan")),
			Tilt: speedOf(lookup(motors, "speed_tilt")),
		}, nil
	}

	var speeds MotorSpeeds
	if pan := lookup(root, "pan"); pan != nil && pan.Kind == yaml.MappingNode {
		speeds.Pan = speedOf(lookup(pan, "speed"))
	}
	if tilt := lookup(root, "tilt"); tilt != nil && tilt.Kind == yaml.MappingNode {
		speeds.Tilt = speedOf(lookup(tilt, "speed"))
	}
	return speeds, nil
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// speedOf accepts integers, truncates floats and parses numeric strings.
// Anything else, including values outside int32, yields zero.
func speedOf(n *yaml.Node) int32 {
	if n == nil || n.Kind != yaml.ScalarNode {
		return 0
	}

	var v int64
	switch n.Tag {
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return 0
		}
		v = i
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil || math.IsNaN(f) || f <= math.MinInt32-1 || f >= math.MaxInt32+1 {
			return 0
		}
		v = int64(f)
	case "!!str":
		i, err := strconv.ParseInt(strings.TrimLeft(n.Value, " \t\r\n"), 10, 64)
		if err != nil {
			return 0
		}
		v = i
	default:
		return 0
	}

	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0
	}
	return int32(v)
}
