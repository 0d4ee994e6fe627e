package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"survivecraft.ai/internal/protocol"
	"survivecraft.ai/internal/sim/world"
)

// Sim is the part of the world the transport talks to. Every interaction
// goes through the world's channels; the transport never touches state.
type Sim interface {
	Inbox() chan<- world.CommandEnvelope
	Join() chan<- world.JoinRequest
	Leave() chan<- string
}

type Server struct {
	sim       Sim
	validator *protocol.Validator
	log       *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(sim Sim, validator *protocol.Validator, logger *log.Logger) *Server {
	s := &Server{
		sim:       sim,
		validator: validator,
		log:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID, out := s.handshake(conn)
		if sessionID == "" {
			return
		}
		s.logf("session %s joined from %s", sessionID, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Rejections are written by the same goroutine as state frames;
		// the connection allows one writer at a time.
		errs := make(chan []byte, 16)

		// Writer goroutine.
		go func() {
			for {
				var b []byte
				select {
				case <-ctx.Done():
					return
				case b = <-errs:
				case b = <-out:
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					cancel()
					return
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			env, rej := s.decodeCmd(sessionID, msg)
			if rej != nil {
				if b, err := json.Marshal(rej); err == nil {
					select {
					case errs <- b:
					default:
					}
				}
				continue
			}
			select {
			case s.sim.Inbox() <- env:
			case <-ctx.Done():
			}
		}

		// Cleanup.
		s.sim.Leave() <- sessionID
		s.logf("session %s left", sessionID)
	}
}

// decodeCmd turns one inbound frame into a command envelope, or an ERROR
// frame describing why it was refused.
func (s *Server) decodeCmd(sessionID string, msg []byte) (world.CommandEnvelope, *protocol.ErrorMsg) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		e := protocol.NewError(protocol.ErrProtoBadRequest, "malformed frame", 0)
		return world.CommandEnvelope{}, &e
	}
	if base.Type != protocol.TypeCmd {
		e := protocol.NewError(protocol.ErrProtoBadRequest, "unexpected message type "+base.Type, 0)
		return world.CommandEnvelope{}, &e
	}
	if base.ProtocolVersion != protocol.Version {
		e := protocol.NewError(protocol.ErrProtoBadRequest, "bad protocol_version", 0)
		return world.CommandEnvelope{}, &e
	}
	var cmd protocol.CmdMsg
	if err := json.Unmarshal(msg, &cmd); err != nil {
		e := protocol.NewError(protocol.ErrProtoBadRequest, err.Error(), 0)
		return world.CommandEnvelope{}, &e
	}
	if s.validator != nil {
		if err := s.validator.Validate(protocol.TypeCmd, msg); err != nil {
			e := protocol.NewError(protocol.ErrProtoBadRequest, err.Error(), cmd.Seq)
			return world.CommandEnvelope{}, &e
		}
	}
	return world.CommandEnvelope{SessionID: sessionID, Seq: cmd.Seq, Cmd: cmd.Cmd}, nil
}

func (s *Server) handshake(conn *websocket.Conn) (sessionID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, "expected HELLO")
		return "", nil
	}
	if s.validator != nil {
		if err := s.validator.Validate(protocol.TypeHello, msg); err != nil {
			closeWith(conn, "invalid HELLO")
			return "", nil
		}
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return "", nil
	}
	if hello.ClientName == "" {
		hello.ClientName = "client"
	}

	maxQ := hello.MaxQueue
	if maxQ <= 0 {
		maxQ = 8
	}
	if maxQ > 64 {
		maxQ = 64
	}
	out = make(chan []byte, maxQ)

	respCh := make(chan world.JoinResponse, 1)
	s.sim.Join() <- world.JoinRequest{Name: hello.ClientName, Out: out, Resp: respCh}
	resp := <-respCh

	if err := writeJSON(conn, resp.Welcome); err != nil {
		s.sim.Leave() <- resp.Welcome.SessionID
		return "", nil
	}
	return resp.Welcome.SessionID, out
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}
