package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/yogkalp/internal/landmark"
	"github.com/ayusman/yogkalp/internal/pose"
)

// dialLive connects a WebSocket client to the live endpoint of ts.
func dialLive(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type liveMessage struct {
	Visible   bool        `json:"visible"`
	Missing   []int       `json:"missing"`
	Match     *pose.Match `json:"match"`
	Confident bool        `json:"confident"`
	Countdown float64     `json:"countdown"`
	Captured  bool        `json:"captured"`
	BatchSize int         `json:"batch_size"`
	Error     string      `json:"error"`
}

func readLive(t *testing.T, conn *websocket.Conn) liveMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg liveMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read live message: %v", err)
	}
	return msg
}

func TestLiveHandler_ScoresFrames(t *testing.T) {
	a := newTestApp(t)
	a.Library().Add("warrior", pose.Extract(landmark.WarriorLandmarks()))

	ts := httptest.NewServer(New(Config{App: a}))
	defer ts.Close()

	conn := dialLive(t, ts)

	if err := conn.WriteJSON(landmark.Frame{Body: landmark.WarriorLandmarks()}); err != nil {
		t.Fatalf("failed to send frame: %v", err)
	}
	msg := readLive(t, conn)
	if !msg.Visible || msg.Match == nil || msg.Match.Name != "warrior" || !msg.Confident {
		t.Errorf("expected a confident warrior match, got %+v", msg)
	}

	// A hidden body is reported without a score
	hidden := landmark.WarriorLandmarks()
	hidden[landmark.LeftWrist].Visibility = 0.2
	if err := conn.WriteJSON(landmark.Frame{Body: hidden}); err != nil {
		t.Fatalf("failed to send frame: %v", err)
	}
	msg = readLive(t, conn)
	if msg.Visible || msg.Match != nil || len(msg.Missing) != 1 || msg.Missing[0] != landmark.LeftWrist {
		t.Errorf("expected the wrist reported missing, got %+v", msg)
	}
}

func TestLiveHandler_Countdown(t *testing.T) {
	a := newTestApp(t)
	ts := httptest.NewServer(New(Config{App: a}))
	defer ts.Close()

	conn := dialLive(t, ts)

	frame := landmark.Frame{
		Body:  landmark.StandingLandmarks(),
		Hands: [][]landmark.Landmark{landmark.OpenPalmLandmarks()},
	}
	// The test app has no palm trigger, so an open palm changes nothing
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("failed to send frame: %v", err)
	}
	if msg := readLive(t, conn); msg.Countdown != 0 || msg.Captured {
		t.Errorf("expected no countdown, got %+v", msg)
	}
}

func TestLiveHandler_InvalidFrame(t *testing.T) {
	ts := httptest.NewServer(New(Config{App: newTestApp(t)}))
	defer ts.Close()

	conn := dialLive(t, ts)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("failed to send frame: %v", err)
	}
	msg := readLive(t, conn)
	if !strings.HasPrefix(msg.Error, "invalid frame") {
		t.Errorf("expected an invalid frame error, got %+v", msg)
	}

	// The connection stays usable
	if err := conn.WriteJSON(landmark.Frame{}); err != nil {
		t.Fatalf("failed to send frame: %v", err)
	}
	if msg := readLive(t, conn); msg.Error != "" || msg.Visible {
		t.Errorf("expected an empty result, got %+v", msg)
	}
}

func TestLiveHandler_Broadcast(t *testing.T) {
	srv := New(Config{App: newTestApp(t)})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	sender := dialLive(t, ts)
	viewer := dialLive(t, ts)

	// Wait until both connections are registered
	deadline := time.Now().Add(5 * time.Second)
	for srv.live.Clients() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 2 clients, got %d", srv.live.Clients())
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := sender.WriteJSON(landmark.Frame{Body: landmark.StandingLandmarks()}); err != nil {
		t.Fatalf("failed to send frame: %v", err)
	}

	for _, conn := range []*websocket.Conn{sender, viewer} {
		if msg := readLive(t, conn); !msg.Visible {
			t.Errorf("expected a visible result, got %+v", msg)
		}
	}
}

func TestLiveResult_JSON(t *testing.T) {
	a := newTestApp(t)
	result := a.ProcessFrame(landmark.Frame{}, time.Now())
	result.Countdown = 1500 * time.Millisecond

	data, err := json.Marshal(liveResult{FrameResult: result, Countdown: result.Countdown.Seconds()})
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if decoded["countdown"] != 1.5 {
		t.Errorf("expected countdown 1.5 seconds, got %v", decoded["countdown"])
	}
}
