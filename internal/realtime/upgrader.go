package realtime

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// NewUpgrader returns an upgrader accepting the given origins. "*" accepts
// any origin. A request without an Origin header comes from a non-browser
// client and is accepted, since CORS does not apply to it.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	anyOrigin := false
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			anyOrigin = true
		}
		allowed[o] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || anyOrigin {
				return true
			}
			return allowed[strings.TrimRight(origin, "/")]
		},
	}
}
