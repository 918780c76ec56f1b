package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berrythewa/motors/internal/ipc"
	"github.com/berrythewa/motors/internal/ipc/ipctest"
)

type harness struct {
	t          *testing.T
	daemon     *ipctest.Daemon
	dir        string
	configPath string
}

func newHarness(t *testing.T, handler ipctest.Handler) *harness {
	t.Helper()
	h := &harness{t: t, daemon: ipctest.NewDaemon(t, handler), dir: t.TempDir()}
	h.writeConfig(strconv.Itoa(os.Getpid()), `{"motors":{"speed_pan":500,"speed_tilt":800}}`)
	return h
}

func (h *harness) writeConfig(pid, motorsJSON string) {
	h.t.Helper()
	pidFile := filepath.Join(h.dir, "motors-daemon")
	require.NoError(h.t, os.WriteFile(pidFile, []byte(pid+"\n"), 0644))
	motorsFile := filepath.Join(h.dir, "motors.json")
	require.NoError(h.t, os.WriteFile(motorsFile, []byte(motorsJSON), 0644))

	h.configPath = filepath.Join(h.dir, "client.yaml")
	cfg := fmt.Sprintf("socket_path: %s\npid_file: %s\nmotors_config: %s\nreply_timeout: 2s\n",
		h.daemon.SocketPath, pidFile, motorsFile)
	require.NoError(h.t, os.WriteFile(h.configPath, []byte(cfg), 0644))
}

func (h *harness) run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Run(append([]string{"--config", h.configPath}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// received waits until the fake daemon has recorded n requests.
func (h *harness) received(n int) []ipc.Request {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		return len(h.daemon.Requests()) >= n
	}, 2*time.Second, 5*time.Millisecond)
	return h.daemon.Requests()
}

func stoppedReply() ipc.Reply {
	return ipc.Reply{X: 1, Y: 2, Status: ipc.StatusStopped, Speed: 900, XMax: 4000, YMax: 1200}
}

func TestSetSpeedOnly(t *testing.T) {
	h := newHarness(t, ipctest.ReplyWith(stoppedReply()))

	code, stdout, stderr := h.run("-s", "500")
	assert.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)

	reqs := h.received(1)
	require.Len(t, reqs, 1)
	assert.Equal(t, ipc.CmdSetSpeed, reqs[0].Command)
	assert.Equal(t, int32(500), reqs[0].Speed)
	assert.True(t, reqs[0].SpeedSupplied)
}

func TestRelativeMove(t *testing.T) {
	h := newHarness(t, ipctest.ReplyWith(stoppedReply()))

	code, stdout, stderr := h.run("-d", "g", "-x", "10", "-y", "20")
	assert.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)

	reqs := h.received(1)
	assert.Equal(t, ipc.Request{
		Command:   ipc.CmdMove,
		Subtype:   ipc.SubRelative,
		X:         10,
		XSupplied: true,
		Y:         20,
		YSupplied: true,
	}, reqs[0])
}

func TestNegativeCoordinates(t *testing.T) {
	h := newHarness(t, ipctest.ReplyWith(stoppedReply()))

	code, _, stderr := h.run("-d", "g", "-x", "-15", "-s", "1200", "-d", "g")
	assert.Equal(t, 0, code, stderr)

	reqs := h.received(1)
	assert.Equal(t, ipc.CmdMove, reqs[0].Command)
	assert.Equal(t, int32(-15), reqs[0].X)
	assert.Equal(t, int32(1200), reqs[0].Speed)
	assert.True(t, reqs[0].SpeedSupplied)
}

func TestVerbosePrintsRequest(t *testing.T) {
	h := newHarness(t, ipctest.ReplyWith(stoppedReply()))

	code, stdout, _ := h.run("-v", "-d", "g", "-x", "10", "-y", "20")
	assert.Equal(t, 0, code)
	assert.Equal(t, "Sent message: command=d, type=g, x=10, y=20, speed=0, speed_supplied=0\n", stdout)
	h.received(1)
}

func TestBusy(t *testing.T) {
	t.Run("Stopped", func(t *testing.T) {
		h := newHarness(t, ipctest.ReplyWith(stoppedReply()))
		code, stdout, stderr := h.run("-b")
		assert.Equal(t, 0, code)
		assert.Equal(t, "0\n", stdout)
		assert.Empty(t, stderr)
	})

	t.Run("Running", func(t *testing.T) {
		reply := stoppedReply()
		reply.Status = ipc.StatusRunning
		h := newHarness(t, ipctest.ReplyWith(reply))
		code, stdout, stderr := h.run("-b")
		assert.Equal(t, 1, code)
		assert.Equal(t, "1\n", stdout)
		assert.Empty(t, stderr)
	})
}

func TestQueries(t *testing.T) {
	tests := []struct {
		flag string
		want string
	}{
		{"-j", `{"status":"0","xpos":"1","ypos":"2","speed":"900","invert":"0"}` + "\n"},
		{"-i", `{"status":"0","xpos":"1","ypos":"2","xmax":"4000","ymax":"1200","speed":"900","invert":"0"}` + "\n"},
		{"-p", "1,2\n"},
		{"--status", "Max X Steps 4000.\nMax Y Steps 1200.\nStatus Move: 0.\nX Steps 1.\nY Steps 2.\nSpeed 900.\nMotor Inversion: OFF\n"},
	}
	for _, test := range tests {
		t.Run(test.flag, func(t *testing.T) {
			h := newHarness(t, ipctest.ReplyWith(stoppedReply()))
			code, stdout, stderr := h.run(test.flag)
			assert.Equal(t, 0, code, stderr)
			assert.Equal(t, test.want, stdout)
		})
	}
}

func TestLastCommandFlagWins(t *testing.T) {
	h := newHarness(t, ipctest.ReplyWith(stoppedReply()))

	code, stdout, _ := h.run("-S", "-p")
	assert.Equal(t, 0, code)
	assert.Equal(t, "1,2\n", stdout)

	reqs := h.received(1)
	assert.Equal(t, ipc.CmdPosition, reqs[0].Command)
}

func TestReset(t *testing.T) {
	h := newHarness(t, ipctest.ReplyWith(stoppedReply()))

	code, stdout, _ := h.run("-r")
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.Equal(t, ipc.CmdReset, h.received(1)[0].Command)
}

func TestInvert(t *testing.T) {
	tests := []struct {
		arg  string
		want ipc.Subtype
	}{
		{"x", ipc.InvertX},
		{"y", ipc.InvertY},
		{"b", ipc.InvertBoth},
		{"", ipc.InvertBoth},
	}
	for _, test := range tests {
		t.Run("arg_"+test.arg, func(t *testing.T) {
			h := newHarness(t, ipctest.ReplyWith(stoppedReply()))
			code, _, stderr := h.run("-I", test.arg)
			assert.Equal(t, 0, code, stderr)

			req := h.received(1)[0]
			assert.Equal(t, ipc.CmdInvert, req.Command)
			assert.Equal(t, test.want, req.Subtype)
		})
	}
}

func TestInvalidInvocationSendsNothing(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"InvalidDirection", []string{"-d", "z"}, "invalid direction argument z"},
		{"NoDirection", nil, "no direction given"},
		{"InvalidInvertTarget", []string{"-I", "q"}, "invalid option for -I: q"},
		{"NonNumericSpeed", []string{"-s", "fast"}, "invalid argument"},
		{"UnknownFlag", []string{"-z"}, "unknown shorthand flag"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			h := newHarness(t, ipctest.ReplyWith(stoppedReply()))
			code, stdout, stderr := h.run(test.args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, test.want)
			assert.Empty(t, h.daemon.Requests())
		})
	}
}

func TestDaemonNotRunning(t *testing.T) {
	h := newHarness(t, ipctest.ReplyWith(stoppedReply()))

	dead := exec.Command("true")
	require.NoError(t, dead.Run())
	h.writeConfig(strconv.Itoa(dead.Process.Pid), `{}`)

	code, stdout, stderr := h.run("-p")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "NOT running")
	assert.Empty(t, h.daemon.Requests())
}

func TestDaemonGoneAfterProbe(t *testing.T) {
	h := newHarness(t, ipctest.ReplyWith(stoppedReply()))
	h.daemon.Close()

	code, _, stderr := h.run("-p")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "could not connect")
}

func TestTruncatedReply(t *testing.T) {
	h := newHarness(t, func(req ipc.Request) []byte {
		return []byte{1, 2, 3}
	})

	code, stdout, stderr := h.run("-j")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error:")
}

func TestDefaultSpeedFallbackIgnoresBadMotorsFile(t *testing.T) {
	h := newHarness(t, ipctest.ReplyWith(stoppedReply()))
	h.writeConfig(strconv.Itoa(os.Getpid()), `{"motors":`)

	code, _, stderr := h.run("-d", "s")
	assert.Equal(t, 0, code, stderr)
	assert.Equal(t, ipc.SubStop, h.received(1)[0].Subtype)
}

func TestDaemonStatus(t *testing.T) {
	h := newHarness(t, nil)

	code, stdout, _ := h.run("daemon", "status")
	assert.Equal(t, 0, code)
	assert.Equal(t, fmt.Sprintf("Status: running\nPID: %d\n", os.Getpid()), stdout)

	h.writeConfig("garbage", `{}`)
	code, stdout, stderr := h.run("daemon", "status")
	assert.Equal(t, 1, code)
	assert.Equal(t, "Status: stopped\nReason: invalid PID file\n", stdout)
	assert.Empty(t, stderr)
}

func TestConfigShow(t *testing.T) {
	h := newHarness(t, nil)

	code, stdout, stderr := h.run("config", "show", "--format", "json")
	require.Equal(t, 0, code, stderr)

	var view struct {
		Client struct {
			SocketPath string `json:"socket_path"`
		} `json:"client"`
		Motors motorsView `json:"motors"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.Equal(t, h.daemon.SocketPath, view.Client.SocketPath)
	assert.Equal(t, int32(500), view.Motors.SpeedPan)
	assert.Equal(t, int32(800), view.Motors.SpeedTilt)
	assert.Equal(t, int32(500), view.Motors.DefaultSpeed)
	assert.Empty(t, view.Motors.Error)

	code, stdout, _ = h.run("config", "show")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "socket_path: "+h.daemon.SocketPath)
	assert.Contains(t, stdout, "default_speed: 500")
}

func TestVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"version"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Version:")
}
