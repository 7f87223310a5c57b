package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/metrics"
	"github.com/vango-dev/loom/pkg/protocol"
	"github.com/vango-dev/loom/pkg/sched"
	"github.com/vango-dev/loom/pkg/vdom"
)

func counter(ctx vdom.Context, props vdom.Props) *vdom.Node {
	n, set := fiber.UseState(ctx, 0)
	return vdom.Button(
		vdom.ID("inc"),
		vdom.OnClick(func() { set.Update(func(c int) int { return c + 1 }) }),
		vdom.Textf("%d", n),
	)
}

type fixture struct {
	srv  *Server
	http *httptest.Server
	doc  *dom.Document
	loop *sched.Loop
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	doc := dom.New()
	loop := sched.NewLoop(sched.LoopConfig{FrameInterval: time.Millisecond})
	sess := fiber.New(doc, loop)

	reg := prometheus.NewRegistry()
	rec := metrics.New(metrics.WithRegistry(reg))
	srv := New(&Config{Title: "test", PingInterval: time.Hour}, loop, doc, sess,
		WithRecorder(rec), WithGatherer(reg))

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})

	var renderErr error
	require.NoError(t, loop.Do(ctx, func() {
		renderErr = sess.Render(vdom.C(counter), doc.Root)
	}))
	require.NoError(t, renderErr)

	f := &fixture{srv: srv, doc: doc, loop: loop}
	require.Eventually(t, func() bool { return f.text(t) == "0" }, time.Second, time.Millisecond)

	f.http = httptest.NewServer(srv.Handler())
	t.Cleanup(f.http.Close)
	return f
}

// text reads the mount's text on the loop.
func (f *fixture) text(t *testing.T) string {
	var s string
	if err := f.loop.Do(context.Background(), func() { s = f.doc.Root.TextContent() }); err != nil {
		t.Errorf("loop.Do() error = %v", err)
	}
	return s
}

func (f *fixture) buttonID(t *testing.T) int64 {
	var id int64
	require.NoError(t, f.loop.Do(context.Background(), func() {
		b := f.doc.Root.Find(func(e *dom.Element) bool { return e.Prop("id") == "inc" })
		if b != nil {
			id = b.ID
		}
	}))
	require.NotZero(t, id)
	return id
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) *protocol.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	typ, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, typ)
	frame, err := protocol.DecodeFrame(msg)
	require.NoError(t, err)
	return frame
}

func sendEvent(t *testing.T, conn *websocket.Conn, ev *protocol.Event) {
	t.Helper()
	frame := protocol.NewFrame(protocol.FrameEvent, protocol.EncodeEvent(ev)).Encode()
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, frame))
}

func TestConnectSendsReset(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	frame := readFrame(t, conn)
	require.Equal(t, protocol.FrameReset, frame.Type)

	seq, html, err := protocol.DecodeReset(frame.Payload)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
	assert.Contains(t, html, `id="inc"`)
	assert.Contains(t, html, `data-on-click="true"`)
	assert.Contains(t, html, `data-lid=`)

	require.Eventually(t, func() bool { return f.srv.ClientCount() == 1 }, time.Second, time.Millisecond)
}

func TestEventProducesMutations(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)
	readFrame(t, conn) // reset

	id := f.buttonID(t)
	sendEvent(t, conn, &protocol.Event{Node: id, Type: "click"})

	frame := readFrame(t, conn)
	require.Equal(t, protocol.FrameMutations, frame.Type)
	m, err := protocol.DecodeMutations(frame.Payload)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), m.Seq)

	var text *dom.Op
	for i := range m.Ops {
		if m.Ops[i].Kind == dom.OpSetProp && m.Ops[i].Key == vdom.NodeValue {
			text = &m.Ops[i]
		}
	}
	require.NotNil(t, text, "ops = %v", m.Ops)
	assert.Equal(t, "1", text.Value)
	assert.Equal(t, "1", f.text(t))

	sendEvent(t, conn, &protocol.Event{Node: id, Type: "click"})
	m, err = protocol.DecodeMutations(readFrame(t, conn).Payload)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), m.Seq)
}

func TestMutationsReachEveryClient(t *testing.T) {
	f := newFixture(t)
	a, b := f.dial(t), f.dial(t)
	readFrame(t, a)
	readFrame(t, b)

	sendEvent(t, a, &protocol.Event{Node: f.buttonID(t), Type: "click"})

	for _, conn := range []*websocket.Conn{a, b} {
		frame := readFrame(t, conn)
		assert.Equal(t, protocol.FrameMutations, frame.Type)
	}
}

func TestLateClientResetCarriesNextSeq(t *testing.T) {
	f := newFixture(t)
	a := f.dial(t)
	readFrame(t, a)
	sendEvent(t, a, &protocol.Event{Node: f.buttonID(t), Type: "click"})
	readFrame(t, a)

	b := f.dial(t)
	seq, html, err := protocol.DecodeReset(readFrame(t, b).Payload)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)
	assert.Contains(t, html, "-->1</button>")
}

func TestRejectedFrames(t *testing.T) {
	tests := []struct {
		name string
		send func(*testing.T, *websocket.Conn)
		code string
	}{
		{"unknown node", func(t *testing.T, c *websocket.Conn) {
			sendEvent(t, c, &protocol.Event{Node: 999, Type: "click"})
		}, "E161"},
		{"garbage", func(t *testing.T, c *websocket.Conn) {
			require.NoError(t, c.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02}))
		}, "E160"},
		{"text message", func(t *testing.T, c *websocket.Conn) {
			require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("hi")))
		}, "E160"},
		{"server frame", func(t *testing.T, c *websocket.Conn) {
			frame := protocol.NewFrame(protocol.FrameReset, protocol.EncodeReset(1, "")).Encode()
			require.NoError(t, c.WriteMessage(websocket.BinaryMessage, frame))
		}, "E160"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			conn := f.dial(t)
			readFrame(t, conn)

			tc.send(t, conn)
			frame := readFrame(t, conn)
			require.Equal(t, protocol.FrameError, frame.Type)
			em, err := protocol.DecodeErrorMessage(frame.Payload)
			require.NoError(t, err)
			assert.Equal(t, tc.code, em.Code)
			assert.False(t, em.Fatal)
		})
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)
	readFrame(t, conn)
	require.Eventually(t, func() bool { return f.srv.ClientCount() == 1 }, time.Second, time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return f.srv.ClientCount() == 0 }, time.Second, time.Millisecond)
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHTTPRoutes(t *testing.T) {
	f := newFixture(t)

	code, body := get(t, f.http.URL+"/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "<title>test</title>")
	assert.Contains(t, body, `<div id="root" data-lid="1">`)
	assert.Contains(t, body, `src="/client.js"`)

	code, body = get(t, f.http.URL+"/client.js")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "FRAME_MUTATIONS")

	code, body = get(t, f.http.URL+"/snapshot")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.HasPrefix(body, "<button"), body)

	code, body = get(t, f.http.URL+"/healthz")
	assert.Equal(t, http.StatusOK, code)
	var h health
	require.NoError(t, json.Unmarshal([]byte(body), &h))
	assert.Equal(t, "ok", h.Status)

	conn := f.dial(t)
	readFrame(t, conn)
	code, body = get(t, f.http.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "loom_clients_connected 1")
	assert.Contains(t, body, "loom_frames_sent_total")
}

func TestSnapshot(t *testing.T) {
	f := newFixture(t)
	html, err := f.srv.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Contains(t, html, `<!--lid:`)
	assert.Contains(t, html, "-->0</button>")
}

func TestLiveOpsDropsReleasedNodes(t *testing.T) {
	ops := []dom.Op{
		{Kind: dom.OpCreate, Node: 5, Tag: "li"},
		{Kind: dom.OpSetProp, Node: 5, Key: "id", Value: "x"},
		{Kind: dom.OpRelease, Node: 5},
		{Kind: dom.OpCreate, Node: 6, Tag: "li"},
		{Kind: dom.OpAppend, Node: 6, Parent: 1},
	}
	got := liveOps(ops)
	require.Len(t, got, 2)
	assert.Equal(t, int64(6), got[0].Node)
	assert.Equal(t, dom.OpAppend, got[1].Kind)
}

func TestEventLabel(t *testing.T) {
	assert.Equal(t, "click", eventLabel("click"))
	assert.Equal(t, "other", eventLabel("Click"))
	assert.Equal(t, "other", eventLabel(strings.Repeat("x", 40)))
}
