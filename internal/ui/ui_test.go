package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"exact phrase", "OVERWRITE\n", true},
		{"surrounding space", "  OVERWRITE  \n", true},
		{"lowercase", "overwrite\n", false},
		{"empty", "\n", false},
		{"eof", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := Confirm(strings.NewReader(tt.input), &out, "TEST", []string{"one"}, "OVERWRITE")
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "OVERWRITE")
		})
	}
}

func TestProgress(t *testing.T) {
	p := NewProgress("Provisioning", "Submit", "Wait", "Verify", "Register")
	assert.Zero(t, p.Percent())

	p.Complete(1, "HTTP 200")
	p.Skip(2, "")
	p.Fail(3, "timeout")
	p.Update(9, StepComplete, "")
	assert.InDelta(t, 0.5, p.Percent(), 1e-9)

	out := p.Render()
	assert.Contains(t, out, "[1/4]")
	assert.Contains(t, out, "(HTTP 200)")
	assert.Contains(t, out, StepMarkerSkipped)
	assert.Contains(t, out, FailureMarker)
}

func TestResult_DetailsKeepOrder(t *testing.T) {
	out := NewSuccessResult("Status", Field{"First", "a"}, Field{"Second", "b"}).
		AddDetail("Third", "c").
		SetWidth(80).
		Render()

	first := strings.Index(out, "First")
	second := strings.Index(out, "Second")
	third := strings.Index(out, "Third")
	require.True(t, first >= 0 && second >= 0 && third >= 0, out)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

func TestResult_Failure(t *testing.T) {
	out := NewFailureResult("Unreachable", errors.New("connection refused"), []string{"Check power"}).
		SetWidth(80).
		Render()
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, "Check power")
}

func TestModeColor(t *testing.T) {
	assert.Equal(t, SuccessColor, ModeColor("Operational"))
	assert.Equal(t, ErrorColor, ModeColor("ResettingFactory"))
	assert.Equal(t, MutedColor, ModeColor("Unconfigured"))
	assert.Equal(t, MutedColor, ModeColor("bogus"))
}

func TestWatchModel_RecordsTransitions(t *testing.T) {
	var m tea.Model = NewWatchModel("bridge", nil)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, mode := range []string{"ConnectingToNetwork", "ConnectingToNetwork", "Operational"} {
		m, _ = m.Update(snapshotMsg(WatchSnapshot{Time: at, Mode: mode, SSID: "Home"}))
	}

	wm := m.(WatchModel)
	require.Len(t, wm.History(), 2)
	assert.Equal(t, "ConnectingToNetwork", wm.History()[0].Mode)
	assert.Equal(t, "Operational", wm.History()[1].Mode)
	assert.Contains(t, wm.View(), "Home")
}

func TestWatchModel_StreamClosedQuits(t *testing.T) {
	var m tea.Model = NewWatchModel("bridge", nil)
	m, cmd := m.Update(streamClosedMsg{err: errors.New("eof")})
	require.NotNil(t, cmd)
	assert.EqualError(t, m.(WatchModel).Err(), "eof")
	assert.Contains(t, m.View(), "stream closed")
}

func TestWatchModel_WaitPullsNext(t *testing.T) {
	calls := 0
	m := NewWatchModel("bridge", func() (WatchSnapshot, error) {
		calls++
		return WatchSnapshot{Mode: "Provisioning"}, nil
	})

	msg := m.wait()()
	assert.Equal(t, 1, calls)
	assert.Equal(t, snapshotMsg(WatchSnapshot{Mode: "Provisioning"}), msg)
}
