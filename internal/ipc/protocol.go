package ipc

import "fmt"

// Command is the single-byte opcode that selects a daemon operation.
type Command byte

const (
	CmdMove       Command = 'd'
	CmdReset      Command = 'r'
	CmdSetSpeed   Command = 's'
	CmdPosition   Command = 'p'
	CmdBusy       Command = 'b'
	CmdStatus     Command = 'S'
	CmdInitial    Command = 'i'
	CmdJSONStatus Command = 'j'
	CmdInvert     Command = 'I'
)

// Commands lists every opcode the daemon understands.
var Commands = []Command{
	CmdMove, CmdReset, CmdSetSpeed, CmdPosition, CmdBusy,
	CmdStatus, CmdInitial, CmdJSONStatus, CmdInvert,
}

// ExpectsReply reports whether the daemon answers this opcode with a Reply.
func (c Command) ExpectsReply() bool {
	switch c {
	case CmdPosition, CmdBusy, CmdStatus, CmdInitial, CmdJSONStatus:
		return true
	default:
		return false
	}
}

func (c Command) String() string {
	switch c {
	case CmdMove:
		return "move"
	case CmdReset:
		return "reset"
	case CmdSetSpeed:
		return "set-speed"
	case CmdPosition:
		return "get-position"
	case CmdBusy:
		return "is-busy"
	case CmdStatus:
		return "status"
	case CmdInitial:
		return "initial-snapshot"
	case CmdJSONStatus:
		return "json-status"
	case CmdInvert:
		return "invert"
	default:
		return fmt.Sprintf("unknown(%q)", byte(c))
	}
}

// Subtype narrows the meaning of CmdMove and CmdInvert. Other commands carry
// SubStop, which the daemon ignores.
type Subtype byte

// Move subtypes.
const (
	SubStop     Subtype = 's'
	SubCruise   Subtype = 'c'
	SubGoHome   Subtype = 'b'
	SubAbsolute Subtype = 'h'
	SubRelative Subtype = 'g'
)

// Invert subtypes.
const (
	InvertX    Subtype = 'x'
	InvertY    Subtype = 'y'
	InvertBoth Subtype = 'b'
)

// Request is sent from the client to the daemon. Values whose presence flag
// is false go over the wire as 0.
type Request struct {
	Command       Command
	Subtype       Subtype
	X             int32
	XSupplied     bool
	Y             int32
	YSupplied     bool
	Speed         int32
	SpeedSupplied bool
}

// NewRequest returns the request every invocation starts from.
func NewRequest() Request {
	return Request{Command: CmdMove, Subtype: SubStop}
}

// MotorStatus is the binary run state reported by the daemon.
type MotorStatus uint32

const (
	StatusStopped MotorStatus = 0
	StatusRunning MotorStatus = 1
)

func (s MotorStatus) String() string {
	switch s {
	case StatusStopped:
		return "STOPPED"
	case StatusRunning:
		return "RUNNING"
	default:
		return fmt.Sprintf("MotorStatus(%d)", uint32(s))
	}
}

// Inversion is the axis inversion bitmask.
type Inversion uint32

const (
	InvertedX    Inversion = 0x1
	InvertedY    Inversion = 0x2
	InvertedBoth           = InvertedX | InvertedY
)

// X reports whether the X axis is inverted.
func (i Inversion) X() bool { return i&InvertedX != 0 }

// Y reports whether the Y axis is inverted.
func (i Inversion) Y() bool { return i&InvertedY != 0 }

// Reply is the daemon's answer to query commands.
type Reply struct {
	X         int32
	Y         int32
	Status    MotorStatus
	Speed     int32
	XMax      uint32
	YMax      uint32
	Inversion Inversion
}

// Busy reports whether the rig is moving.
func (r *Reply) Busy() bool {
	return r.Status == StatusRunning
}
