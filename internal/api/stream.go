package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Event types sent to the browser, one JSON object per line.
const (
	eventStart      = "start"
	eventKeepalive  = "keepalive"
	eventAddMessage = "add_message"
	eventToken      = "token"
	eventEnd        = "end"
	eventError      = "error"
)

var errStreamClosed = errors.New("stream already closed")

// eventWriter serializes events from the relay loop and the heartbeat
// goroutine onto one response. Once a terminal event is written, or a
// write fails because the caller went away, every further send is
// refused.
type eventWriter struct {
	mu       sync.Mutex
	w        io.Writer
	flusher  http.Flusher
	terminal bool
	failed   bool
}

func newEventWriter(w io.Writer, flusher http.Flusher) *eventWriter {
	return &eventWriter{w: w, flusher: flusher}
}

func (ew *eventWriter) send(payload gin.H) error {
	return ew.write(payload, false)
}

func (ew *eventWriter) sendTerminal(payload gin.H) error {
	return ew.write(payload, true)
}

func (ew *eventWriter) write(payload gin.H, terminal bool) error {
	ew.mu.Lock()
	defer ew.mu.Unlock()
	if ew.terminal || ew.failed {
		return errStreamClosed
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := ew.w.Write(append(data, '\n')); err != nil {
		ew.failed = true
		return err
	}
	ew.flusher.Flush()
	if terminal {
		ew.terminal = true
	}
	return nil
}

// startHeartbeat emits keepalive events on the given interval until the
// returned stop function is called. stop blocks until the goroutine has
// exited and must be called exactly once.
func startHeartbeat(out *eventWriter, interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	go func() {
		defer close(doneCh)
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				_ = out.send(gin.H{"type": eventKeepalive})
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(stopCh)
		<-doneCh
	}
}
