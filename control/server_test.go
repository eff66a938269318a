package control

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudsky/driver"
	"cloudsky/noise"
)

func TestDecode(t *testing.T) {
	settings := &noise.BakeSettings{Resolution: 64, Persistence: 0.5, SubdivisionsA: 2, SubdivisionsB: 4, SubdivisionsC: 8}
	tests := []struct {
		name    string
		msg     Message
		want    driver.Event
		wantErr bool
	}{
		{"set", Message{Type: "set", Name: "cloud_absorption", Values: []float32{0.4}}, driver.ParamEdit{Name: "cloud_absorption", Values: []float32{0.4}}, false},
		{"set without name", Message{Type: "set"}, nil, true},
		{"bake", Message{Type: "bake", Layer: "detail", Settings: settings}, driver.BakeRequest{Layer: noise.LayerDetail, Settings: settings}, false},
		{"bake unknown layer", Message{Type: "bake", Layer: "fog"}, nil, true},
		{"apply", Message{Type: "apply", FPS: 30}, driver.ApplySettings{TargetFPS: 30}, false},
		{"preset", Message{Type: "preset", Preset: "cirrus"}, driver.LoadPreset{Name: "cirrus"}, false},
		{"export", Message{Type: "export"}, driver.ToggleExport{}, false},
		{"focus", Message{Type: "focus", Focused: true}, nil, false},
		{"unknown", Message{Type: "reboot"}, nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := Decode(tc.msg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, ev)
		})
	}

	_, err := Decode(Message{Type: "reboot"})
	assert.ErrorIs(t, err, ErrUnknownMessage)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServerQueuesEvents(t *testing.T) {
	s := NewServer()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	conn := dial(t, srv)

	require.NoError(t, conn.WriteJSON(Message{Type: "set", Name: "wind_vector", Values: []float32{1, 0, 0}}))
	require.NoError(t, conn.WriteJSON(Message{Type: "preset", Preset: "stratus"}))

	var got []driver.Event
	require.Eventually(t, func() bool {
		got = append(got, s.Events()...)
		return len(got) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, driver.ParamEdit{Name: "wind_vector", Values: []float32{1, 0, 0}}, got[0])
	assert.Equal(t, driver.LoadPreset{Name: "stratus"}, got[1])
	assert.Empty(t, s.Events())
}

func TestServerRejectsBadMessages(t *testing.T) {
	s := NewServer()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	conn := dial(t, srv)

	require.NoError(t, conn.WriteJSON(Message{Type: "bake", Layer: "nimbus"}))
	var reply Reply
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "error", reply.Type)
	assert.Contains(t, reply.Error, "nimbus")
	assert.Empty(t, s.Events())
}

func TestServerFocus(t *testing.T) {
	s := NewServer()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	conn := dial(t, srv)

	assert.False(t, s.Focused())
	require.NoError(t, conn.WriteJSON(Message{Type: "focus", Focused: true}))
	require.Eventually(t, s.Focused, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(Message{Type: "focus", Focused: false}))
	require.Eventually(t, func() bool { return !s.Focused() }, 2*time.Second, 10*time.Millisecond)

	// A client that leaves while focused releases focus.
	require.NoError(t, conn.WriteJSON(Message{Type: "focus", Focused: true}))
	require.Eventually(t, s.Focused, 2*time.Second, 10*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return !s.Focused() }, 2*time.Second, 10*time.Millisecond)
}

func TestServerBroadcastsStatus(t *testing.T) {
	s := NewServer()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	conn := dial(t, srv)

	// Wait until the connection is registered before reporting.
	require.Eventually(t, func() bool {
		s.clientsMu.RLock()
		defer s.clientsMu.RUnlock()
		return len(s.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	s.Report(driver.Status{Frame: 120, FPS: 59.5, TargetFPS: 60, Preset: "cumulus"})

	var reply Reply
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "status", reply.Type)
	require.NotNil(t, reply.Status)
	assert.Equal(t, uint64(120), reply.Status.Frame)
	assert.Equal(t, "cumulus", reply.Status.Preset)

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	var st driver.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, 60, st.TargetFPS)

	// Late joiners get the last status straight away.
	late := dial(t, srv)
	require.NoError(t, late.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, late.ReadJSON(&reply))
	assert.Equal(t, uint64(120), reply.Status.Frame)
}

func TestServerImplementsUI(t *testing.T) {
	var _ driver.UI = NewServer()
}

func TestReportDropsClientThatStopsReading(t *testing.T) {
	s := NewServer()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	dial(t, srv) // never read from

	require.Eventually(t, func() bool {
		s.clientsMu.RLock()
		defer s.clientsMu.RUnlock()
		return len(s.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Large enough to fill the socket buffers quickly.
	st := driver.Status{TargetFPS: 60, LastError: strings.Repeat("x", 64<<10)}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 400; i++ {
			s.Report(st)
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Report blocked on a client that does not read")
	}
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	assert.Empty(t, s.clients)
}
