package httpapi

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/matchpulse/matchpulse/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

// sseSendBuffer bounds how many events a slow client may fall behind before
// the broadcast service prunes it.
const sseSendBuffer = 16

// StreamAnalysis upgrades the request to a server-sent-events stream and
// holds it open until the client disconnects. Events are produced by the
// broadcast service; a Last-Event-ID reconnect header is accepted but no
// missed events are replayed.
//
// All ResponseWriter access happens on this goroutine. Broadcast goroutines
// only enqueue into the sink's channel, so a send that lands after the client
// disconnects can never touch a writer the server has reclaimed.
func (h *Handler) StreamAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamAnalysis")
	defer span.End()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: connection does not support streaming", usecase.ErrInvalidInput))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sink := newSSESink()
	subID, err := h.broadcastService.Register(sink, r.Header.Get("Last-Event-ID"))
	if err != nil {
		h.logger.WarnContext(ctx, "stream registration failed", "error", err)
		return
	}
	defer func() {
		h.broadcastService.Unregister(subID)
		sink.Close()
	}()

	h.logger.InfoContext(ctx, "stream subscriber connected", "subscriber_id", subID)

	for {
		// Queued events flush before the disconnect check so the handshake
		// and any in-flight frames are never dropped on a quick close.
		select {
		case event := <-sink.events:
			if err := writeSSEFrame(w, flusher, event); err != nil {
				h.logger.WarnContext(ctx, "stream write failed", "subscriber_id", subID, "error", err)
				return
			}
			continue
		default:
		}

		select {
		case <-r.Context().Done():
			h.logger.InfoContext(ctx, "stream subscriber disconnected", "subscriber_id", subID)
			return
		case event := <-sink.events:
			if err := writeSSEFrame(w, flusher, event); err != nil {
				h.logger.WarnContext(ctx, "stream write failed", "subscriber_id", subID, "error", err)
				return
			}
		}
	}
}

// sseSink decouples broadcast fan-out from the response writer. Send only
// enqueues; the handler goroutine that owns the connection drains the channel
// and writes the frames.
type sseSink struct {
	events chan usecase.Event

	mu     sync.Mutex
	closed bool
}

func newSSESink() *sseSink {
	return &sseSink{events: make(chan usecase.Event, sseSendBuffer)}
}

// Send enqueues one event. It fails when the subscriber is gone or has
// stopped draining, which the broadcast service answers by pruning the sink.
func (s *sseSink) Send(event usecase.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("subscriber stream closed")
	}
	select {
	case s.events <- event:
		return nil
	default:
		return fmt.Errorf("subscriber send buffer full")
	}
}

// Close rejects further sends. Safe to call more than once; the handler
// closes only after unregistering, so no enqueue can race the closed flag.
func (s *sseSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func writeSSEFrame(w http.ResponseWriter, flusher http.Flusher, event usecase.Event) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("id: ")
	_, _ = buf.WriteString(event.ID)
	_, _ = buf.WriteString("\nevent: ")
	_, _ = buf.WriteString(event.Name)
	_, _ = buf.WriteString("\ndata: ")
	_, _ = buf.Write(event.Data)
	_, _ = buf.WriteString("\n\n")

	if _, err := w.Write(buf.B); err != nil {
		return fmt.Errorf("write sse frame: %w", err)
	}
	flusher.Flush()
	return nil
}
