// Package observability provides metrics and tracing.
package observability

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tecnopronto_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// DatabaseQueryLatency records database query latency by statement kind.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tecnopronto_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// LikesToggled counts like toggles by actor kind and resulting state.
	LikesToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tecnopronto_likes_toggled_total",
		Help: "Total number of like toggles",
	}, []string{"actor", "state"})

	// LikeConflicts counts identified like toggles that lost a race.
	LikeConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tecnopronto_like_conflicts_total",
		Help: "Total number of like toggles rejected by the uniqueness constraint",
	})

	// CommentsCreated counts new comments by author kind.
	CommentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tecnopronto_comments_created_total",
		Help: "Total number of comments created",
	}, []string{"author"})

	// CommentsUpdated counts successful comment edits.
	CommentsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tecnopronto_comments_updated_total",
		Help: "Total number of comments edited by their author",
	})

	// PostViews counts post detail views.
	PostViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tecnopronto_post_views_total",
		Help: "Total number of post detail views",
	})

	// ContactMessages counts accepted contact messages.
	ContactMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tecnopronto_contact_messages_total",
		Help: "Total number of contact messages received",
	})

	// WebSocketConnections is the gauge of open WebSocket connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tecnopronto_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tecnopronto_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// ActorLabel is the metric label for an actor kind.
func ActorLabel(identified bool) string {
	if identified {
		return "user"
	}
	return "guest"
}

// StatementKind extracts the leading SQL verb, lowercased, for use as a label.
func StatementKind(sql string) string {
	sql = strings.TrimSpace(sql)
	if i := strings.IndexAny(sql, " \n\t"); i > 0 {
		sql = sql[:i]
	}
	switch op := strings.ToLower(sql); op {
	case "select", "insert", "update", "delete":
		return op
	default:
		return "other"
	}
}
