// Package bridge carries protocol messages between the editor core and its
// host, either in process or as JSON-RPC notifications over a stream.
package bridge

import (
	"sync"

	"github.com/jsvensson/themelab/internal/protocol"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("themelab.bridge")

// Receiver consumes messages delivered by a bridge.
type Receiver interface {
	Handle(msg protocol.Message)
}

// ReceiverFunc adapts a function to Receiver.
type ReceiverFunc func(msg protocol.Message)

// Handle implements Receiver.
func (f ReceiverFunc) Handle(msg protocol.Message) { f(msg) }

// Pipe delivers posted messages to a receiver on its own goroutine, in
// order. Post never blocks, so a receiver may post back through another
// pipe while handling a message.
type Pipe struct {
	to Receiver

	mu     sync.Mutex
	queue  []protocol.Message
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

// NewPipe starts a pipe delivering to r.
func NewPipe(r Receiver) *Pipe {
	p := &Pipe{
		to:   r,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go p.run()
	return p
}

// Post queues msg. Messages posted after Close are dropped.
func (p *Pipe) Post(msg protocol.Message) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		log.Debugf("dropping %s: pipe closed", msg.Type)
		return
	}
	p.queue = append(p.queue, msg)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Close delivers the messages already queued and stops the pipe.
func (p *Pipe) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.done
		return
	}
	p.closed = true
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	<-p.done
}

func (p *Pipe) run() {
	defer close(p.done)
	for range p.wake {
		for {
			p.mu.Lock()
			if len(p.queue) == 0 {
				closed := p.closed
				p.mu.Unlock()
				if closed {
					return
				}
				break
			}
			msg := p.queue[0]
			p.queue[0] = protocol.Message{}
			p.queue = p.queue[1:]
			p.mu.Unlock()

			p.to.Handle(msg)
		}
	}
}
