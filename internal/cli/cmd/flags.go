package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/berrythewa/motors/internal/command"
	"github.com/berrythewa/motors/internal/ipc"
)

// stepRecorder is a pflag.Value that appends a command.Step each time the
// flag is seen, so the resolver sees flags in command-line order.
type stepRecorder struct {
	steps *[]command.Step
	typ   string
	parse func(string) (command.Step, bool, error)
}

func (r *stepRecorder) String() string { return "" }

func (r *stepRecorder) Type() string { return r.typ }

func (r *stepRecorder) Set(s string) error {
	step, ok, err := r.parse(s)
	if err != nil {
		return err
	}
	if ok {
		*r.steps = append(*r.steps, step)
	}
	return nil
}

func stringStep(steps *[]command.Step, mk func(string) command.Step) *stepRecorder {
	return &stepRecorder{steps: steps, typ: "string", parse: func(s string) (command.Step, bool, error) {
		return mk(s), true, nil
	}}
}

func int32Step(steps *[]command.Step, mk func(int32) command.Step) *stepRecorder {
	return &stepRecorder{steps: steps, typ: "int32", parse: func(s string) (command.Step, bool, error) {
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return command.Step{}, false, fmt.Errorf("not a 32-bit integer")
		}
		return mk(int32(v)), true, nil
	}}
}

// queryStep takes no argument on the command line. An explicit false, as in
// --busy=false, records nothing.
func queryStep(steps *[]command.Step, cmd ipc.Command) *stepRecorder {
	return &stepRecorder{steps: steps, typ: "bool", parse: func(s string) (command.Step, bool, error) {
		on, err := strconv.ParseBool(s)
		if err != nil {
			return command.Step{}, false, err
		}
		return command.Query(cmd), on, nil
	}}
}

func addStepFlags(fs *pflag.FlagSet, steps *[]command.Step) {
	fs.VarP(stringStep(steps, command.Direction), "direction", "d", "move: s (stop), c (cruise), b (go home), h (absolute x/y), g (relative x/y)")
	fs.VarP(int32Step(steps, command.Speed), "speed", "s", "set the step speed")
	fs.VarP(int32Step(steps, command.X), "xpos", "x", "X position or steps")
	fs.VarP(int32Step(steps, command.Y), "ypos", "y", "Y position or steps")
	fs.VarP(stringStep(steps, command.Invert), "invert", "I", "invert motor direction: x, y or b (both)")

	queries := []struct {
		name, short string
		cmd         ipc.Command
		usage       string
	}{
		{"json", "j", ipc.CmdJSONStatus, "print status, position, speed and inversion as JSON"},
		{"initial", "i", ipc.CmdInitial, "print all motor parameters as JSON, including limits"},
		{"position", "p", ipc.CmdPosition, "print x,y position"},
		{"status", "S", ipc.CmdStatus, "show status"},
		{"reset", "r", ipc.CmdReset, "reset to the default position"},
		{"busy", "b", ipc.CmdBusy, "print 1 and exit 1 if the motors are moving, else print 0"},
	}
	for _, q := range queries {
		f := fs.VarPF(queryStep(steps, q.cmd), q.name, q.short, q.usage)
		f.NoOptDefVal = "true"
	}
}
