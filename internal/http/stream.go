package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/drt-dispatch/internal/forecast"
	"github.com/example/drt-dispatch/internal/models"
	"github.com/example/drt-dispatch/internal/observability"
)

// Stream topics clients can subscribe to.
const (
	TopicVehicles = "vehicles"
	TopicHeatmap  = "heatmap"
)

type streamSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *streamSession) send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

// StreamHub fans periodic fleet and heatmap payloads out to websocket
// subscribers, one topic per connection.
type StreamHub struct {
	mu       sync.RWMutex
	sessions map[string]map[*streamSession]struct{} // topic -> sessions
	logger   *slog.Logger
}

func NewStreamHub(logger *slog.Logger) *StreamHub {
	return &StreamHub{sessions: make(map[string]map[*streamSession]struct{}), logger: logger}
}

func (h *StreamHub) add(topic string, conn *websocket.Conn) *streamSession {
	sess := &streamSession{conn: conn}
	h.mu.Lock()
	if h.sessions[topic] == nil {
		h.sessions[topic] = make(map[*streamSession]struct{})
	}
	h.sessions[topic][sess] = struct{}{}
	h.mu.Unlock()
	return sess
}

func (h *StreamHub) remove(topic string, sess *streamSession) {
	h.mu.Lock()
	if m := h.sessions[topic]; m != nil {
		delete(m, sess)
		if len(m) == 0 {
			delete(h.sessions, topic)
		}
	}
	h.mu.Unlock()
}

// Broadcast sends payload to every subscriber of topic. A failed write just
// drops that session's message; the read loop tears the session down.
func (h *StreamHub) Broadcast(topic string, payload any) {
	h.mu.RLock()
	subs := make([]*streamSession, 0, len(h.sessions[topic]))
	for sess := range h.sessions[topic] {
		subs = append(subs, sess)
	}
	h.mu.RUnlock()
	for _, sess := range subs {
		if err := sess.send(payload); err != nil {
			h.logger.Debug("stream send failed", "topic", topic, "error", err)
		}
	}
}

// Subscribers reports the current subscriber count for a topic.
func (h *StreamHub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[topic])
}

var upgrader = websocket.Upgrader{}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("type")
	if topic == "" {
		topic = TopicVehicles
	}
	if topic != TopicVehicles && topic != TopicHeatmap {
		writeError(w, http.StatusBadRequest, "unknown stream type")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return // Upgrade already wrote the response
	}
	sess := s.hub.add(topic, conn)
	s.logger.Info("stream subscribed", "topic", topic)

	// Reads are only used to detect disconnect.
	go func() {
		defer func() {
			s.hub.remove(topic, sess)
			_ = conn.Close()
			s.logger.Info("stream closed", "topic", topic)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) broadcastVehicles(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.hub.Subscribers(TopicVehicles) == 0 {
				continue
			}
			pool, err := s.fleet.Snapshot(ctx)
			if err != nil {
				s.logger.Warn("vehicle broadcast skipped", "error", err)
				continue
			}
			s.hub.Broadcast(TopicVehicles, map[string]any{"vehicles": pool, "timestamp": time.Now()})
		}
	}
}

func (s *Server) broadcastHeatmap(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			points := s.forecastNow(now.Hour(), int(now.Weekday()))
			observability.ForecastPublishes.Inc()
			s.hub.Broadcast(TopicHeatmap, points)
		}
	}
}

func (s *Server) forecastNow(hour, dow int) []models.DemandForecast {
	return forecast.Predict(hour, dow, s.locations)
}
