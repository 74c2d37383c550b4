package chat

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/logging"
)

func TestHistoryIsBounded(t *testing.T) {
	h := NewHub()
	for i := 0; i < HistoryLimit+25; i++ {
		_, err := h.Post("general", "u1", "octo", fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	history := h.History("general", 0)
	require.Len(t, history, HistoryLimit)
	require.Equal(t, "msg 25", history[0].Body)
	require.Equal(t, fmt.Sprintf("msg %d", HistoryLimit+24), history[len(history)-1].Body)

	require.Len(t, h.History("general", 10), 10)
	require.Empty(t, h.History("nowhere", 10))
}

func TestPostValidation(t *testing.T) {
	h := NewHub()
	_, err := h.Post("general", "u1", "octo", "   ")
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = h.Post("Bad Room", "u1", "octo", "hi")
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = h.Post("general", "u1", "octo", strings.Repeat("x", maxBodyLen+1))
	require.ErrorIs(t, err, domain.ErrValidation)

	msg, err := h.Post("new-room", "u1", "octo", "  hello ")
	require.NoError(t, err)
	require.Equal(t, "hello", msg.Body)

	names := make([]string, 0)
	for _, r := range h.Rooms() {
		names = append(names, r.Name)
	}
	require.Equal(t, []string{"code-review", "general", "new-room", "random"}, names)
}

func TestSubscribersReceivePosts(t *testing.T) {
	h := NewHub()
	updates, cancel, err := h.Subscribe("general")
	require.NoError(t, err)

	_, err = h.Post("general", "u1", "octo", "hi")
	require.NoError(t, err)
	got := <-updates
	require.Equal(t, "hi", got.Body)

	cancel()
	cancel()
	_, open := <-updates
	require.False(t, open)

	_, err = h.Post("general", "u1", "octo", "after cancel")
	require.NoError(t, err)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	_, cancel, err := h.Subscribe("general")
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < subBuffer*3; i++ {
		_, err := h.Post("general", "u1", "octo", "spam")
		require.NoError(t, err)
	}
}

func TestServeWSStreamsHistoryAndPosts(t *testing.T) {
	h := NewHub()
	_, err := h.Post("general", "u0", "earlier", "before connect")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, "general", "u1", "octo", logging.Discard())
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first Message
	require.NoError(t, conn.ReadJSON(&first))
	require.Equal(t, "before connect", first.Body)

	require.NoError(t, conn.WriteJSON(map[string]string{"body": "live"}))
	var echoed Message
	require.NoError(t, conn.ReadJSON(&echoed))
	require.Equal(t, "live", echoed.Body)
	require.Equal(t, "octo", echoed.Login)

	require.Len(t, h.History("general", 0), 2)
}

func TestJoinSplitsBacklogFromLiveMessages(t *testing.T) {
	h := NewHub()
	_, err := h.Post("general", "u1", "octo", "old")
	require.NoError(t, err)

	backlog, updates, cancel, err := h.Join("general", 50)
	require.NoError(t, err)
	defer cancel()
	require.Len(t, backlog, 1)
	require.Equal(t, "old", backlog[0].Body)
	require.Empty(t, updates)

	_, err = h.Post("general", "u1", "octo", "new")
	require.NoError(t, err)
	got := <-updates
	require.Equal(t, "new", got.Body)
	require.Empty(t, updates)
}

func TestRoomCreationIsCapped(t *testing.T) {
	h := NewHub()
	h.maxRooms = len(DefaultRooms) + 1

	_, err := h.Post("extra", "u1", "octo", "hi")
	require.NoError(t, err)

	_, err = h.Post("one-too-many", "u1", "octo", "hi")
	require.ErrorIs(t, err, domain.ErrValidation)
	_, _, err = h.Subscribe("also-too-many")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.Post("general", "u1", "octo", "existing rooms still work")
	require.NoError(t, err)
	require.Len(t, h.Rooms(), len(DefaultRooms)+1)
}
