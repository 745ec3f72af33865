package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"wildscrap.game/internal/protocol"
	"wildscrap.game/internal/sim/build"
	"wildscrap.game/internal/sim/game"
	"wildscrap.game/internal/sim/input"
	"wildscrap.game/internal/sim/inventory"
)

// Game is the part of game.Loop the transport drives.
type Game interface {
	Input() *input.State
	Latest() *game.State
	Submit(ctx context.Context, cmd game.Command) error
}

type Config struct {
	Params      protocol.WorldParams
	SubmitLimit time.Duration
}

type Server struct {
	game Game
	hub  *Hub
	cfg  Config
	log  *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(g Game, hub *Hub, cfg Config, logger *log.Logger) *Server {
	if cfg.Params.StateRateHz <= 0 {
		cfg.Params.StateRateHz = 20
	}
	if cfg.SubmitLimit <= 0 {
		cfg.SubmitLimit = time.Second
	}
	return &Server{
		game: g,
		hub:  hub,
		cfg:  cfg,
		log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		session, ok := s.handshake(conn)
		if !ok {
			return
		}
		s.logf("session %s connected from %s", session, r.RemoteAddr)

		out := make(chan []byte, 16)
		id := s.hub.add(out)
		defer s.hub.remove(id)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go s.writeLoop(ctx, cancel, conn, out)

		var keys input.Keys
		in := s.game.Input()
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			s.handle(ctx, msg, &keys, in, out)
		}

		// A dropped connection must not leave the player walking.
		in.SetMove(0, 0)
		in.SetLook(0, 0)
		for _, a := range []input.Action{input.ActionAttack, input.ActionBuild, input.ActionJump} {
			in.SetAction(a, false)
		}
		s.logf("session %s closed", session)
	}
}

// writeLoop streams STATE at the state rate and forwards queued messages.
func (s *Server) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out <-chan []byte) {
	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.Params.StateRateHz))
	defer ticker.Stop()
	var lastTick uint64
	sent := false
	for {
		var b []byte
		select {
		case <-ctx.Done():
			return
		case b = <-out:
		case <-ticker.C:
			st := s.game.Latest()
			if st == nil || (sent && st.Tick == lastTick) {
				continue
			}
			var err error
			if b, err = json.Marshal(stateMsg(st)); err != nil {
				continue
			}
			lastTick, sent = st.Tick, true
		}
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			cancel()
			_ = conn.Close()
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, msg []byte, keys *input.Keys, in *input.State, out chan []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		s.sendError(out, protocol.ErrProtoBadRequest, "bad json")
		return
	}
	if base.ProtocolVersion != protocol.Version {
		s.sendError(out, protocol.ErrProtoVersion, "bad protocol_version")
		return
	}
	switch base.Type {
	case protocol.TypeInput:
		var m protocol.InputMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			s.sendError(out, protocol.ErrProtoBadRequest, err.Error())
			return
		}
		applyInput(m, in)
	case protocol.TypeKey:
		var m protocol.KeyMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			s.sendError(out, protocol.ErrProtoBadRequest, err.Error())
			return
		}
		keys.Key(m.Code, m.Down, m.Repeat, in)
		if m.Code == "KeyR" && m.Down && !m.Repeat {
			_ = s.submit(ctx, game.Command{Op: game.OpRotate})
		}
	case protocol.TypeCmd:
		var m protocol.CmdMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			s.sendError(out, protocol.ErrProtoBadRequest, err.Error())
			return
		}
		ack := protocol.AckMsg{Type: protocol.TypeAck, ProtocolVersion: protocol.Version, AckFor: m.ReqID}
		cmd, rej := toCommand(m)
		if rej == nil {
			if err := s.submit(ctx, cmd); err != nil {
				rej = &reject{protocol.ErrRateLimit, "server busy"}
			}
		}
		if rej != nil {
			ack.Code, ack.Message = rej.code, rej.msg
		} else {
			ack.Accepted = true
		}
		s.send(out, ack)
	default:
		s.sendError(out, protocol.ErrProtoBadRequest, "unexpected type: "+base.Type)
	}
}

func applyInput(m protocol.InputMsg, in *input.State) {
	if m.Move != nil {
		in.SetMove(m.Move.X, m.Move.Y)
	}
	if m.Look != nil {
		in.SetLook(m.Look.X, m.Look.Y)
	}
	if a := m.Actions; a != nil {
		if a.Attack != nil {
			in.SetAction(input.ActionAttack, *a.Attack)
		}
		if a.Build != nil {
			in.SetAction(input.ActionBuild, *a.Build)
		}
		if a.Jump != nil {
			in.SetAction(input.ActionJump, *a.Jump)
		}
	}
}

func (s *Server) submit(ctx context.Context, cmd game.Command) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SubmitLimit)
	defer cancel()
	return s.game.Submit(ctx, cmd)
}

func (s *Server) handshake(conn *websocket.Conn) (string, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", false
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", false
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       uuid.NewString(),
		Params:          s.cfg.Params,
	}
	for _, k := range build.Kinds {
		welcome.BuildKinds = append(welcome.BuildKinds, string(k))
	}
	for _, r := range inventory.All {
		welcome.Resources = append(welcome.Resources, string(r))
	}
	if err := writeJSON(conn, welcome); err != nil {
		return "", false
	}
	return welcome.SessionID, true
}

func (s *Server) send(out chan []byte, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	sendLatest(out, b)
}

func (s *Server) sendError(out chan []byte, code, msg string) {
	s.send(out, protocol.ErrorMsg{Type: protocol.TypeError, ProtocolVersion: protocol.Version, Code: code, Message: msg})
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
