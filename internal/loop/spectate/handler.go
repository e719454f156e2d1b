package spectate

import (
	"net"
	"net/http"
	"net/url"
	"slices"

	"github.com/gorilla/websocket"
)

// NewHandler returns the WebSocket endpoint for hub. Browsers may connect
// from the same host or from one of allowedOrigins (scheme and host, e.g.
// "https://swarm.example.com"); "*" allows any origin.
func NewHandler(hub *Hub, allowedOrigins []string) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // Non-browser clients don't send Origin
			}
			if slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin) {
				return true
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			return u.Host == r.Host
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hub.CanAccept() {
			http.Error(w, "too many spectators", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the HTTP error.
			hub.logger.Debug("upgrade failed", "err", err)
			return
		}

		client := NewClient(hub, conn, remoteIP(r))
		if !hub.join(client) {
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
