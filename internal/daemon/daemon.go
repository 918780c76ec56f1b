// Package daemon answers whether the motors daemon is alive, using the PID
// file the daemon writes at startup. It never talks to the daemon itself.
package daemon

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// DefaultPIDFile is where the motors daemon records its process id.
const DefaultPIDFile = "/var/run/motors-daemon"

// maxPIDLine bounds how much of the first line is parsed.
const maxPIDLine = 31

// ErrInvalidPID is returned when the PID file has no usable process id.
var ErrInvalidPID = errors.New("invalid PID")

// ReadPID returns the process id on the first line of path. Leading
// whitespace and anything after the digits are ignored.
func ReadPID(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}
	defer f.Close()

	line, err := bufio.NewReaderSize(f, 64).ReadString('\n')
	if err != nil && line == "" {
		return 0, fmt.Errorf("%w: %s is empty", ErrInvalidPID, path)
	}
	if len(line) > maxPIDLine {
		line = line[:maxPIDLine]
	}

	digits := leadingInteger(strings.TrimLeft(line, " \t\r\n\v\f"))
	pid, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w in %s: %q", ErrInvalidPID, path, strings.TrimSpace(line))
	}
	if pid <= 0 {
		return 0, fmt.Errorf("%w in %s: %d", ErrInvalidPID, path, pid)
	}
	return pid, nil
}

// Alive sends signal 0 to pid. It is true only when the process exists and
// this process is allowed to signal it.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return unix.Kill(pid, 0) == nil
}

// Probe reports whether the daemon named by pidFile is running. The answer
// can be stale by the time the caller connects.
func Probe(pidFile string) bool {
	pid, err := ReadPID(pidFile)
	if err != nil {
		return false
	}
	return Alive(pid)
}

// Status describes the daemon as seen through its PID file.
type Status struct {
	PID     int
	Running bool
	Reason  string
}

// CheckStatus is Probe with the detail needed for a human report.
func CheckStatus(pidFile string) Status {
	pid, err := ReadPID(pidFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return Status{Reason: "no PID file found"}
	case err != nil:
		return Status{Reason: "invalid PID file"}
	}

	if !Alive(pid) {
		return Status{PID: pid, Reason: "process not alive"}
	}
	return Status{PID: pid, Running: true}
}

func leadingInteger(s string) string {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
