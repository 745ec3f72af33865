package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"wildscrap.game/internal/observerproto"
	"wildscrap.game/internal/sim/game"
	"wildscrap.game/internal/sim/tuning"
	"wildscrap.game/internal/sim/world"
)

// Source is the published game state the observer streams.
type Source interface {
	Latest() *game.State
}

type Server struct {
	src    Source
	tuning tuning.Tuning
	log    *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

func NewServer(src Source, t tuning.Tuning, logger *log.Logger) *Server {
	return &Server{
		src:    src,
		tuning: t,
		log:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// BootstrapHandler serves the static world layout. Nodes come from the seeded
// scatter, so they match the live world; collection is reported per tick.
func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		resp := observerproto.BootstrapResponse{
			ProtocolVersion: observerproto.Version,
			WorldParams: observerproto.WorldParams{
				TickRateHz: s.tuning.TickRateHz,
				Seed:       s.tuning.WorldGen.Seed,
			},
		}
		if st := s.src.Latest(); st != nil {
			resp.Tick = st.Tick
		}
		for _, n := range world.Scatter(s.tuning.WorldGen) {
			resp.Nodes = append(resp.Nodes, observerproto.Node{ID: n.ID, Kind: string(n.Kind), Pos: n.Pos.ToArray(), Radius: n.Radius})
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub observerproto.SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad subscribe"), time.Now().Add(time.Second))
			return
		}
		if sub.Type != "SUBSCRIBE" || sub.ProtocolVersion != observerproto.Version {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}
		normalizeSubscribe(&sub)

		sid := fmt.Sprintf("O%d", s.nextID.Add(1))
		if s.log != nil {
			s.log.Printf("observer %s subscribed rate=%dHz", sid, sub.RateHz)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var rate atomic.Int64
		rate.Store(int64(sub.RateHz))

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			var last uint64
			sent := false
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case <-time.After(time.Second / time.Duration(rate.Load())):
				}
				st := s.src.Latest()
				if st == nil || (sent && st.Tick == last) {
					continue
				}
				b, err := json.Marshal(observerproto.TickMsg{Type: "TICK", ProtocolVersion: observerproto.Version, State: st})
				if err != nil {
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					writeErr <- err
					return
				}
				last, sent = st.Tick, true
			}
		}()

		// Reader loop: allow SUBSCRIBE updates.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var sub observerproto.SubscribeMsg
			if err := json.Unmarshal(msg, &sub); err != nil {
				continue
			}
			if sub.Type != "SUBSCRIBE" || sub.ProtocolVersion != observerproto.Version {
				continue
			}
			normalizeSubscribe(&sub)
			rate.Store(int64(sub.RateHz))
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func normalizeSubscribe(sub *observerproto.SubscribeMsg) {
	if sub.RateHz <= 0 {
		sub.RateHz = 10
	}
	if sub.RateHz > 60 {
		sub.RateHz = 60
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
