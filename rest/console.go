// Copyright 2026 The IdlerMeow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rest

import (
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/MoonlightPanel/IdlerMeow"
)

// consoleHandler upgrades to a WebSocket that carries the instance's
// events as JSON, starting with its current status.  Frames sent by
// the client of the form {"command": "..."} are written to the
// instance console.
func (h *Handler) consoleHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, e := port(r)
		if e != nil {
			h.writeError(w, e)
			return
		}
		srv := websocket.Server{
			// Access control is the job of the HTTP middleware.
			Handshake: func(*websocket.Config, *http.Request) error {
				return nil
			},
			Handler: func(ws *websocket.Conn) {
				h.serveConsole(p, ws)
			},
		}
		srv.ServeHTTP(w, r)
	})
}

func (h *Handler) serveConsole(port int, ws *websocket.Conn) {
	b := h.sup.Broadcaster()
	sub := b.NewSubscriber(port)
	b.Subscribe(sub)
	defer b.Unsubscribe(sub)

	h.logger.Printf("[%d] Console %s attached from %s", port, sub.ID(), ws.Request().RemoteAddr)
	defer h.logger.Printf("[%d] Console %s detached", port, sub.ID())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var req CommandRequest
			if e := websocket.JSON.Receive(ws, &req); e != nil {
				return
			}
			if req.Command == "" {
				continue
			}
			if e := h.sup.SendCommand(port, req.Command); e != nil {
				ev := idlermeow.ConsoleEvent("[Server] "+e.Error(), true)
				if websocket.JSON.Send(ws, ev) != nil {
					return
				}
			}
		}
	}()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if e := websocket.JSON.Send(ws, ev); e != nil {
				return
			}
		case <-done:
			return
		}
	}
}
