package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jsvensson/themelab/internal/protocol"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/tliron/glsp"
	"github.com/tliron/glsp/server"
)

const serverName = "themelab"

// CoreMethods are the messages the editor core accepts from its host.
var CoreMethods = []string{
	protocol.Boot,
	protocol.LoadCurrent,
	protocol.LoadImported,
	protocol.Locate,
	protocol.UIUndo,
	protocol.UIRedo,
}

// HostMethods are the messages a host accepts from the editor core.
var HostMethods = []string{
	protocol.RequestBoot,
	protocol.RequestImport,
	protocol.RequestUseCurrent,
	protocol.RequestStartBlank,
	protocol.RequestExportJSON,
	protocol.RequestExportCSS,
	protocol.RequestExportVSIX,
	protocol.RequestExportHCL,
	protocol.RequestSaveTheme,
	protocol.ApplyPreview,
	protocol.Locate,
}

// Server turns JSON-RPC notifications into protocol messages. The method
// is the message type and the params are its payload.
type Server struct {
	to      Receiver
	methods map[string]bool
}

// NewServer returns a handler delivering the given methods to r.
func NewServer(r Receiver, methods []string) *Server {
	s := &Server{to: r, methods: make(map[string]bool, len(methods))}
	for _, m := range methods {
		s.methods[m] = true
	}
	return s
}

// Handle implements glsp.Handler.
func (s *Server) Handle(ctx *glsp.Context) (r any, validMethod bool, validParams bool, err error) {
	if !s.methods[ctx.Method] {
		return nil, false, false, nil
	}
	msg, err := decodeParams(ctx.Method, ctx.Params)
	if err != nil {
		return nil, true, false, err
	}
	s.to.Handle(msg)
	return nil, true, true, nil
}

// decodeParams keeps params as the payload. Absent and null params become
// an empty payload.
func decodeParams(method string, params json.RawMessage) (protocol.Message, error) {
	msg := protocol.Message{Type: method}
	if len(params) == 0 || string(params) == "null" {
		return msg, nil
	}
	if !json.Valid(params) {
		return protocol.Message{}, fmt.Errorf("%s: params are not valid JSON", method)
	}
	msg.Payload = append(json.RawMessage(nil), params...)
	return msg, nil
}

// Stdio serves h on standard input and output with VS Code header framing.
func Stdio(h glsp.Handler, debug bool) *jsonrpc2.Conn {
	return server.NewServer(h, serverName, debug).GetStdio()
}

// Conn serves h on an arbitrary stream with VS Code header framing.
func Conn(ctx context.Context, rwc io.ReadWriteCloser, h glsp.Handler) *jsonrpc2.Conn {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	return jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(handlerFunc(h)))
}

// handlerFunc adapts a glsp.Handler to jsonrpc2 in the way glsp's own
// server does.
func handlerFunc(h glsp.Handler) func(context.Context, *jsonrpc2.Conn, *jsonrpc2.Request) (any, error) {
	return func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		gctx := glsp.Context{
			Method: req.Method,
			Notify: func(method string, params any) {
				if err := conn.Notify(ctx, method, params); err != nil {
					log.Errorf("notify %s: %s", method, err)
				}
			},
			Call: func(method string, params any, result any) {
				if err := conn.Call(ctx, method, params, result); err != nil {
					log.Errorf("call %s: %s", method, err)
				}
			},
		}
		if req.Params != nil {
			gctx.Params = *req.Params
		}

		r, validMethod, validParams, err := h.Handle(&gctx)
		switch {
		case !validMethod:
			return nil, &jsonrpc2.Error{
				Code:    jsonrpc2.CodeMethodNotFound,
				Message: fmt.Sprintf("method not supported: %s", req.Method),
			}
		case !validParams:
			e := &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
			if err != nil {
				e.Message = err.Error()
			}
			return nil, e
		case err != nil:
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidRequest, Message: err.Error()}
		}
		return r, nil
	}
}

// Peer posts messages to the other end of a connection as notifications.
// Sends happen on a pipe goroutine so Post never blocks on the stream.
type Peer struct {
	pipe *Pipe
}

// NewPeer returns a Peer notifying over conn.
func NewPeer(ctx context.Context, conn *jsonrpc2.Conn) *Peer {
	return &Peer{pipe: NewPipe(ReceiverFunc(func(msg protocol.Message) {
		var params any
		if len(msg.Payload) > 0 {
			params = msg.Payload
		}
		if err := conn.Notify(ctx, msg.Type, params); err != nil {
			log.Warningf("sending %s: %s", msg.Type, err)
		}
	}))}
}

// Post implements lab.Peer.
func (p *Peer) Post(msg protocol.Message) { p.pipe.Post(msg) }

// Close flushes queued notifications.
func (p *Peer) Close() { p.pipe.Close() }
