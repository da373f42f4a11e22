package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxedu/pkg/logger"
	"proxedu/pkg/models"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) models.NotificationEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event models.NotificationEvent
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestLocalPublisherReachesSocket(t *testing.T) {
	hub := NewHub(logger.NewNop())
	conn := dialHub(t, hub)

	err := NewLocalPublisher(hub).Publish(context.Background(), models.NotificationEvent{
		Type:         models.EventNotificationNew,
		Notification: &models.AdminNotification{ID: "1", Title: "Test xabarnoma", Body: "Bu test xabarnoma"},
	})
	require.NoError(t, err)

	event := readEvent(t, conn)
	assert.Equal(t, models.EventNotificationNew, event.Type)
	require.NotNil(t, event.Notification)
	assert.Equal(t, "Test xabarnoma", event.Notification.Title)
}

func TestHubForgetsClosedClients(t *testing.T) {
	hub := NewHub(logger.NewNop())
	conn := dialHub(t, hub)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(models.NotificationEvent{Type: models.EventNotificationDelete, ID: "1"})
}

func TestRedisFanOut(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	hub := NewHub(logger.NewNop())
	conn := dialHub(t, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := Subscribe(ctx, rdb, "admin:notifications", hub, logger.NewNop())
	require.NoError(t, err)
	go sub.Run(ctx)

	err = NewRedisPublisher(rdb, "admin:notifications").Publish(ctx, models.NotificationEvent{
		Type: models.EventNotificationRead,
		ID:   "42",
	})
	require.NoError(t, err)

	event := readEvent(t, conn)
	assert.Equal(t, models.EventNotificationRead, event.Type)
	assert.Equal(t, "42", event.ID)
}
