// Package format renders daemon replies the way scripts around the rig
// expect to read them.
package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/berrythewa/motors/internal/ipc"
)

// JSONStatus renders the json-status line. Values are quoted strings for
// compatibility with existing consumers.
func JSONStatus(r *ipc.Reply) string {
	return jsonLine(r, false)
}

// JSONInitial renders the initial-snapshot line, which adds the axis limits.
func JSONInitial(r *ipc.Reply) string {
	return jsonLine(r, true)
}

func jsonLine(r *ipc.Reply, limits bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"status":"%d","xpos":"%d","ypos":"%d"`, r.Status, r.X, r.Y)
	if limits {
		fmt.Fprintf(&b, `,"xmax":"%d","ymax":"%d"`, r.XMax, r.YMax)
	}
	fmt.Fprintf(&b, `,"speed":"%d","invert":"%d"}`, r.Speed, r.Inversion)
	b.WriteByte('\n')
	return b.String()
}

// Position renders "x,y".
func Position(r *ipc.Reply) string {
	return fmt.Sprintf("%d,%d\n", r.X, r.Y)
}

// StatusText renders the human-readable status block.
func StatusText(r *ipc.Reply) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Max X Steps %d.\n", r.XMax)
	fmt.Fprintf(&b, "Max Y Steps %d.\n", r.YMax)
	fmt.Fprintf(&b, "Status Move: %d.\n", r.Status)
	fmt.Fprintf(&b, "X Steps %d.\n", r.X)
	fmt.Fprintf(&b, "Y Steps %d.\n", r.Y)
	fmt.Fprintf(&b, "Speed %d.\n", r.Speed)
	b.WriteString("Motor Inversion: " + inversionText(r.Inversion) + "\n")
	return b.String()
}

func inversionText(i ipc.Inversion) string {
	switch i {
	case ipc.InvertedBoth:
		return "BOTH X and Y are inverted"
	case ipc.InvertedX:
		return "X axis is inverted"
	case ipc.InvertedY:
		return "Y axis is inverted"
	default:
		return "OFF"
	}
}

// Busy renders the is-busy answer as 1 or 0.
func Busy(r *ipc.Reply) string {
	if r.Busy() {
		return "1\n"
	}
	return "0\n"
}

// RequestLine describes a request as it is sent, for verbose mode.
func RequestLine(req ipc.Request) string {
	supplied := 0
	if req.SpeedSupplied {
		supplied = 1
	}
	return fmt.Sprintf("Sent message: command=%c, type=%c, x=%d, y=%d, speed=%d, speed_supplied=%d\n",
		byte(req.Command), byte(req.Subtype), req.X, req.Y, req.Speed, supplied)
}

// Render writes the output for cmd. Commands without a reply print nothing.
func Render(w io.Writer, cmd ipc.Command, r *ipc.Reply) error {
	if r == nil {
		return nil
	}

	var out string
	switch cmd {
	case ipc.CmdJSONStatus:
		out = JSONStatus(r)
	case ipc.CmdInitial:
		out = JSONInitial(r)
	case ipc.CmdPosition:
		out = Position(r)
	case ipc.CmdStatus:
		out = StatusText(r)
	case ipc.CmdBusy:
		out = Busy(r)
	default:
		return nil
	}
	_, err := io.WriteString(w, out)
	return err
}
