package format

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berrythewa/motors/internal/ipc"
)

func sampleReply() *ipc.Reply {
	return &ipc.Reply{
		X:         1,
		Y:         2,
		Status:    ipc.StatusStopped,
		Speed:     900,
		XMax:      4000,
		YMax:      1200,
		Inversion: 0,
	}
}

func TestJSON(t *testing.T) {
	r := sampleReply()
	assert.Equal(t, `{"status":"0","xpos":"1","ypos":"2","speed":"900","invert":"0"}`+"\n", JSONStatus(r))
	assert.Equal(t, `{"status":"0","xpos":"1","ypos":"2","xmax":"4000","ymax":"1200","speed":"900","invert":"0"}`+"\n", JSONInitial(r))

	r.Status = ipc.StatusRunning
	r.X = -15
	r.Inversion = ipc.InvertedBoth
	assert.Equal(t, `{"status":"1","xpos":"-15","ypos":"2","speed":"900","invert":"3"}`+"\n", JSONStatus(r))
}

func TestPosition(t *testing.T) {
	r := sampleReply()
	r.X, r.Y = -3, 250
	assert.Equal(t, "-3,250\n", Position(r))
}

func TestStatusText(t *testing.T) {
	want := "Max X Steps 4000.\n" +
		"Max Y Steps 1200.\n" +
		"Status Move: 0.\n" +
		"X Steps 1.\n" +
		"Y Steps 2.\n" +
		"Speed 900.\n" +
		"Motor Inversion: OFF\n"
	assert.Equal(t, want, StatusText(sampleReply()))
}

func TestInversionText(t *testing.T) {
	tests := []struct {
		inv  ipc.Inversion
		want string
	}{
		{0, "OFF"},
		{ipc.InvertedX, "X axis is inverted"},
		{ipc.InvertedY, "Y axis is inverted"},
		{ipc.InvertedBoth, "BOTH X and Y are inverted"},
		{8, "OFF"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, inversionText(test.inv))
	}
}

func TestBusy(t *testing.T) {
	r := sampleReply()
	assert.Equal(t, "0\n", Busy(r))
	r.Status = ipc.StatusRunning
	assert.Equal(t, "1\n", Busy(r))
}

func TestRequestLine(t *testing.T) {
	req := ipc.NewRequest()
	req.Subtype = ipc.SubRelative
	req.X, req.XSupplied = 10, true
	req.Y, req.YSupplied = 20, true
	assert.Equal(t, "Sent message: command=d, type=g, x=10, y=20, speed=0, speed_supplied=0\n", RequestLine(req))

	req = ipc.NewRequest()
	req.Command = ipc.CmdSetSpeed
	req.Speed, req.SpeedSupplied = 500, true
	assert.Equal(t, "Sent message: command=s, type=s, x=0, y=0, speed=500, speed_supplied=1\n", RequestLine(req))
}

func TestRender(t *testing.T) {
	r := sampleReply()
	tests := []struct {
		cmd  ipc.Command
		want string
	}{
		{ipc.CmdJSONStatus, JSONStatus(r)},
		{ipc.CmdInitial, JSONInitial(r)},
		{ipc.CmdPosition, "1,2\n"},
		{ipc.CmdStatus, StatusText(r)},
		{ipc.CmdBusy, "0\n"},
		{ipc.CmdMove, ""},
		{ipc.CmdInvert, ""},
	}
	for _, test := range tests {
		t.Run(test.cmd.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, test.cmd, r))
			assert.Equal(t, test.want, buf.String())
		})
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, ipc.CmdStatus, nil))
	assert.Empty(t, buf.String())
}
