package bridge_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vectorlab/vectograph/internal/bridge"
	"github.com/vectorlab/vectograph/internal/document"
	"github.com/vectorlab/vectograph/internal/testutil"
)

func TestBridge_StreamsCompilationDeltas(t *testing.T) {
	h := testutil.NewHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := httptest.NewServer(bridge.New(h.Compiler).Handler(ctx))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/deltas"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	// Give the handler a moment to register its subscription before the
	// compilation publishes.
	time.Sleep(100 * time.Millisecond)

	doc := testutil.Network([]document.NodeID{1}, map[document.NodeID]*document.DocumentNode{
		1: testutil.Proto("math.double", testutil.Num(5)),
	})
	_, delta := h.MustCompile(t, doc)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var payload struct {
		CompilationID string   `json:"compilation_id"`
		NewlyResolved []uint64 `json:"newly_resolved"`
		Rebuilt       int      `json:"rebuilt"`
		Reused        int      `json:"reused"`
	}
	require.NoError(t, conn.ReadJSON(&payload))

	assert.Equal(t, delta.CompilationID.String(), payload.CompilationID)
	assert.Contains(t, payload.NewlyResolved, uint64(1))
	assert.Equal(t, 2, payload.Rebuilt)
	assert.Equal(t, 0, payload.Reused)
}

func TestBridge_RejectsPlainHTTP(t *testing.T) {
	h := testutil.NewHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := httptest.NewServer(bridge.New(h.Compiler).Handler(ctx))
	defer server.Close()

	resp, err := server.Client().Get(server.URL + "/deltas")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode, "a non-websocket request is rejected by the upgrader")
}
