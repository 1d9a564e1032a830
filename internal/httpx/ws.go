package httpx

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/os44ua/comida-rapida/internal/orders"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ordersFeed streams the order collection live: one JSON array per snapshot
// delivery, newest first. Each connection holds its own store subscription,
// released on disconnect.
func (h *Handler) ordersFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// keep only the latest pending snapshot; an intermediate one that gets
	// superseded before it was written carries no extra information
	feed := make(chan []orders.Order, 1)
	push := func(snap []orders.Order) {
		sorted := make([]orders.Order, len(snap))
		copy(sorted, snap)
		orders.SortNewestFirst(sorted)
		for {
			select {
			case feed <- sorted:
				return
			default:
				select {
				case <-feed:
				default:
				}
			}
		}
	}

	unsub, err := h.Store.Subscribe(r.Context(), push, func(error) {})
	if err != nil {
		return
	}
	defer unsub()

	// reader loop only to detect the peer going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case snap := <-feed:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		}
	}
}
