package realtime

import (
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestSendAfterCloseReturnsError(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	conn, _ := dialPair(t, hub, 1, "conversation")

	conn.Close(websocket.CloseNormalClosure, "done")

	// a racing delivery must get an error back, never a panic
	for i := 0; i < 256; i++ {
		require.Error(t, conn.Send([]byte(`{}`)))
	}
}

func TestConcurrentSendAndClose(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	conn, _ := dialPair(t, hub, 1, "conversation")

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 512; j++ {
				_ = conn.Send([]byte(`{}`))
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		conn.Close(websocket.CloseGoingAway, "replaced")
	}()

	close(start)
	wg.Wait()

	require.Error(t, conn.Send([]byte(`{}`)))
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	conn, _ := dialPair(t, hub, 1, "conversation")

	conn.Close(websocket.CloseNormalClosure, "done")
	conn.Close(websocket.CloseNormalClosure, "done")
}
