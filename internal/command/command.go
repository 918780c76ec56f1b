// Package command turns the ordered flags of one invocation into exactly
// one daemon request. It performs no I/O.
package command

import (
	"github.com/berrythewa/motors/internal/ipc"
)

// FallbackSpeed is used when the motors configuration names no usable speed.
const FallbackSpeed int32 = 900

// DefaultSpeed picks the step rate used when none is given on the command
// line. With both axes configured the slower one wins.
func DefaultSpeed(pan, tilt int32) int32 {
	switch {
	case pan > 0 && tilt > 0:
		return min(pan, tilt)
	case pan > 0:
		return pan
	case tilt > 0:
		return tilt
	default:
		return FallbackSpeed
	}
}

// Plan is the resolved outcome of an invocation.
type Plan struct {
	Request      ipc.Request
	ExpectsReply bool
	// DefaultSpeed is the speed the invocation started from. It only
	// reaches the wire through an explicit speed flag.
	DefaultSpeed int32
}

// Step is one command-line flag together with its effect on the request
// being built.
type Step struct {
	Flag  byte
	Arg   string
	apply func(*builder)
}

// Direction selects a move and records its direction character.
func Direction(arg string) Step {
	return Step{Flag: 'd', Arg: arg, apply: func(b *builder) {
		b.req.Command = ipc.CmdMove
		b.direction = 0
		if arg != "" {
			b.direction = arg[0]
		}
	}}
}

// Speed sets an explicit step rate and selects set-speed.
func Speed(v int32) Step {
	return Step{Flag: 's', apply: func(b *builder) {
		b.speed = v
		b.req.SpeedSupplied = true
		b.req.Command = ipc.CmdSetSpeed
	}}
}

// X sets the X target.
func X(v int32) Step {
	return Step{Flag: 'x', apply: func(b *builder) {
		b.req.X = v
		b.req.XSupplied = true
	}}
}

// Y sets the Y target.
func Y(v int32) Step {
	return Step{Flag: 'y', apply: func(b *builder) {
		b.req.Y = v
		b.req.YSupplied = true
	}}
}

// Query selects one of the argument-less commands: reset, get-position,
// is-busy, status, initial-snapshot or json-status.
func Query(cmd ipc.Command) Step {
	return Step{Flag: byte(cmd), apply: func(b *builder) {
		b.req.Command = cmd
	}}
}

// Invert selects axis inversion. An empty target means both axes.
func Invert(target string) Step {
	return Step{Flag: 'I', Arg: target, apply: func(b *builder) {
		b.req.Command = ipc.CmdInvert
		b.invertTarget = target
	}}
}

type builder struct {
	req          ipc.Request
	speed        int32
	direction    byte
	invertTarget string
}

// Resolve folds steps left to right over the default request. When several
// steps select a command, the last one wins.
func Resolve(steps []Step, defaultSpeed int32) (Plan, error) {
	b := builder{req: ipc.NewRequest(), speed: defaultSpeed}
	for _, s := range steps {
		if s.apply != nil {
			s.apply(&b)
		}
	}
	return b.finish(defaultSpeed)
}

func (b *builder) finish(defaultSpeed int32) (Plan, error) {
	plan := Plan{DefaultSpeed: defaultSpeed}

	// set-speed needs no direction.
	if b.req.Command == ipc.CmdSetSpeed {
		b.req.Speed = b.speed
		plan.Request = b.req
		return plan, nil
	}

	if b.req.SpeedSupplied {
		b.req.Speed = b.speed
	} else {
		b.req.Speed = 0
	}

	switch b.req.Command {
	case ipc.CmdMove:
		sub, ok := moveSubtype(b.direction)
		if !ok {
			if b.direction == 0 {
				return Plan{}, ipc.Errorf(ipc.InvalidDirection, "no direction given, use -d s|c|b|h|g")
			}
			return Plan{}, ipc.Errorf(ipc.InvalidDirection, "invalid direction argument %c", b.direction)
		}
		b.req.Subtype = sub
	case ipc.CmdInvert:
		sub, ok := invertSubtype(b.invertTarget)
		if !ok {
			return Plan{}, ipc.Errorf(ipc.InvalidInvertTarget, "invalid option for -I: %s", b.invertTarget)
		}
		b.req.Subtype = sub
	}

	plan.Request = b.req
	plan.ExpectsReply = b.req.Command.ExpectsReply()
	return plan, nil
}

func moveSubtype(direction byte) (ipc.Subtype, bool) {
	switch ipc.Subtype(direction) {
	case ipc.SubStop, ipc.SubCruise, ipc.SubGoHome, ipc.SubAbsolute, ipc.SubRelative:
		return ipc.Subtype(direction), true
	default:
		return 0, false
	}
}

func invertSubtype(target string) (ipc.Subtype, bool) {
	switch target {
	case "x":
		return ipc.InvertX, true
	case "y":
		return ipc.InvertY, true
	case "b", "":
		return ipc.InvertBoth, true
	default:
		return 0, false
	}
}
