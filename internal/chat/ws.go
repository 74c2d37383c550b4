package chat

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type inbound struct {
	Body string `json:"body"`
}

// ServeWS upgrades the request and streams the room. Recent history is sent first; each
// inbound {"body": "..."} frame is posted as the given user.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, roomID, userID, login string, logger logrus.FieldLogger) {
	history, updates, cancel, err := h.Join(roomID, 50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := logger.WithFields(logrus.Fields{"room": roomID, "user_id": userID})
	done := make(chan struct{})
	go h.readPump(conn, roomID, userID, login, log, done)

	for _, msg := range history {
		if err := writeJSON(conn, msg); err != nil {
			return
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case msg, ok := <-updates:
			if !ok {
				return
			}
			if err := writeJSON(conn, msg); err != nil {
				log.WithError(err).Debug("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(conn *websocket.Conn, roomID, userID, login string, log logrus.FieldLogger, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxBodyLen * 2)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in inbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Debug("websocket closed")
			}
			return
		}
		if _, err := h.Post(roomID, userID, login, in.Body); err != nil {
			log.WithError(err).Debug("rejected chat message")
		}
	}
}

func writeJSON(conn *websocket.Conn, v interface{}) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
