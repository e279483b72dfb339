// Package live provides a UDP client for remote-controlling a running Live
// set through an OSC server. It owns the socket lifecycle and matches
// asynchronous replies to outstanding queries by address.
package live

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/soundctl/liveosc/osc"
)

// Config holds the endpoint parameters for one connection.
type Config struct {
	// Host is the address the OSC server runs on.
	Host string
	// SendPort is the server's listening port (this process sends to it).
	SendPort int
	// RecvPort is the local port replies and notifications arrive on.
	// Zero lets the kernel pick one, which is useful in tests.
	RecvPort int
	// Timeout bounds each Query round trip.
	Timeout time.Duration
}

// DefaultConfig returns the stock AbletonOSC endpoint: loopback, server
// port 11000, reply port 11001, 5 second query timeout.
func DefaultConfig() Config {
	return Config{
		Host:     "127.0.0.1",
		SendPort: 11000,
		RecvPort: 11001,
		Timeout:  5 * time.Second,
	}
}

type connState int

const (
	stateDisconnected connState = iota
	stateConnected
	stateClosed
)

// pendingQuery is one slot in a per-address FIFO. The reply channel is
// buffered so the receive loop never blocks on a settled query.
type pendingQuery struct {
	reply chan *osc.Message
}

// Conn is a connection to one OSC server. Queries to the same address are
// correlated in issue order; inbound messages that match no query are
// delivered on the Messages stream only. A Conn is safe for concurrent use.
// Multiple Conn instances are fully independent.
type Conn struct {
	cfg    Config
	logger zerolog.Logger

	mu      sync.Mutex
	state   connState
	sock    *net.UDPConn
	remote  *net.UDPAddr
	pending map[string][]*pendingQuery

	messages chan *osc.Message
	errs     chan error
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewConn creates a connection for the given endpoint. Call Connect before
// using it.
func NewConn(cfg Config) *Conn {
	if cfg.Host == "" {
		cfg.Host = DefaultConfig().Host
	}
	if cfg.SendPort == 0 {
		cfg.SendPort = DefaultConfig().SendPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	return &Conn{
		cfg: cfg,
		logger: log.With().
			Str("conn", xid.New().String()).
			Str("host", cfg.Host).
			Int("send_port", cfg.SendPort).
			Logger(),
		pending:  make(map[string][]*pendingQuery),
		messages: make(chan *osc.Message, 64),
		errs:     make(chan error, 16),
		done:     make(chan struct{}),
	}
}

// Connect resolves the remote endpoint, binds the local receive port and
// starts the receive loop. A closed connection cannot be reconnected;
// construct a new Conn instead.
func (c *Conn) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateConnected:
		return nil
	case stateClosed:
		return ErrClosed
	}

	remote, err := net.ResolveUDPAddr("udp", net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.SendPort)))
	if err != nil {
		return fmt.Errorf("live: resolve %s: %w", c.cfg.Host, err)
	}

	sock, err := net.ListenUDP("udp", &net.UDPAddr{Port: c.cfg.RecvPort})
	if err != nil {
		return fmt.Errorf("live: bind receive port %d: %w", c.cfg.RecvPort, err)
	}

	c.sock = sock
	c.remote = remote
	c.state = stateConnected

	c.logger.Info().
		Stringer("local", sock.LocalAddr()).
		Stringer("remote", remote).
		Msg("Connected")

	c.wg.Add(1)
	go c.receiveLoop(sock)

	return nil
}

// Close releases the socket, stops the receive loop and settles every
// outstanding query with ErrClosed. It is terminal for this instance.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.state != stateConnected {
		c.state = stateClosed
		c.mu.Unlock()
		return nil
	}
	c.state = stateClosed
	sock := c.sock
	c.sock = nil
	c.pending = make(map[string][]*pendingQuery)
	close(c.done) // waiting queries observe this and fail with ErrClosed
	c.mu.Unlock()

	err := sock.Close()
	c.wg.Wait()
	close(c.messages)
	close(c.errs)

	c.logger.Info().Msg("Closed")
	return err
}

// LocalAddr returns the bound receive address, or nil when disconnected.
func (c *Conn) LocalAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sock == nil {
		return nil
	}
	return c.sock.LocalAddr()
}

// Messages is the stream of every decoded inbound message, including the
// ones that settle queries. Slow consumers lose messages rather than
// stalling the receive loop.
func (c *Conn) Messages() <-chan *osc.Message {
	return c.messages
}

// Errors is the stream of receive-side failures: malformed datagrams and
// post-bind socket errors. Same drop policy as Messages.
func (c *Conn) Errors() <-chan error {
	return c.errs
}

// Send encodes one message and transmits it as a single datagram. There is
// no acknowledgment: a nil return means the datagram was handed to the
// network stack, not that the server applied the command.
func (c *Conn) Send(addr string, args ...interface{}) error {
	c.mu.Lock()
	sock, remote, state := c.sock, c.remote, c.state
	c.mu.Unlock()

	if state != stateConnected {
		return ErrNotConnected
	}

	data, err := osc.NewMessage(addr, args...).MarshalBinary()
	if err != nil {
		return fmt.Errorf("live: encode %s: %w", addr, err)
	}

	if _, err := sock.WriteToUDP(data, remote); err != nil {
		c.logger.Error().Err(err).Str("address", addr).Msg("Send failed")
		return fmt.Errorf("live: send %s: %w", addr, err)
	}

	c.logger.Debug().Str("address", addr).Int("bytes", len(data)).Msg("Sent")
	return nil
}

// Query sends a message and waits for the next reply bearing the same
// address. Concurrent queries to one address are served in issue order.
// It fails with ErrNotConnected, *TimeoutError, or ErrClosed when the
// connection is torn down mid-flight; exactly one outcome is delivered.
func (c *Conn) Query(addr string, args ...interface{}) (*osc.Message, error) {
	p := &pendingQuery{reply: make(chan *osc.Message, 1)}

	c.mu.Lock()
	if c.state != stateConnected {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	c.pending[addr] = append(c.pending[addr], p)
	c.mu.Unlock()

	if err := c.Send(addr, args...); err != nil {
		c.removePending(addr, p)
		return nil, err
	}

	timer := time.NewTimer(c.cfg.Timeout)
	defer timer.Stop()

	select {
	case reply := <-p.reply:
		return reply, nil

	case <-timer.C:
		if c.removePending(addr, p) {
			c.logger.Warn().Str("address", addr).Dur("timeout", c.cfg.Timeout).Msg("Query timed out")
			return nil, &TimeoutError{Address: addr, Wait: c.cfg.Timeout}
		}
		// Settled between the timer firing and the removal attempt; the
		// reply is already buffered.
		return <-p.reply, nil

	case <-c.done:
		return nil, ErrClosed
	}
}

// Ping issues the server's test query and reports whether it answered with
// the literal "ok". Every failure, timeouts included, maps to false.
func (c *Conn) Ping() bool {
	reply, err := c.Query("/live/test")
	if err != nil {
		c.logger.Debug().Err(err).Msg("Ping failed")
		return false
	}
	if len(reply.Arguments) == 0 {
		return false
	}
	s, ok := reply.Arguments[0].(string)
	return ok && s == "ok"
}

// removePending takes p out of the address queue. It reports false when p
// is no longer queued, meaning the receive loop already settled it.
func (c *Conn) removePending(addr string, p *pendingQuery) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := c.pending[addr]
	for i, cand := range q {
		if cand == p {
			q = append(q[:i], q[i+1:]...)
			if len(q) == 0 {
				delete(c.pending, addr)
			} else {
				c.pending[addr] = q
			}
			return true
		}
	}
	return false
}

// receiveLoop reads datagrams until the socket closes. Malformed datagrams
// are dropped after reporting; they never stop the loop.
func (c *Conn) receiveLoop(sock *net.UDPConn) {
	defer c.wg.Done()

	buf := make([]byte, 65536)
	for {
		n, _, err := sock.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			c.logger.Error().Err(err).Msg("Receive failed")
			c.emitError(fmt.Errorf("live: receive: %w", err))
			return
		}

		data := make([]byte, n)
		copy(data, buf[:n])

		msg, err := osc.ParseMessage(data)
		if err != nil {
			c.logger.Warn().Err(err).Int("bytes", n).Msg("Dropping malformed datagram")
			c.emitError(err)
			continue
		}

		c.logger.Debug().Str("address", msg.Address).Int("args", len(msg.Arguments)).Msg("Received")
		c.emitMessage(msg)
		c.settle(msg)
	}
}

// settle hands msg to the oldest pending query for its address, if any.
func (c *Conn) settle(msg *osc.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := c.pending[msg.Address]
	if len(q) == 0 {
		return
	}
	p := q[0]
	if len(q) == 1 {
		delete(c.pending, msg.Address)
	} else {
		c.pending[msg.Address] = q[1:]
	}
	p.reply <- msg
}

func (c *Conn) emitMessage(msg *osc.Message) {
	select {
	case c.messages <- msg:
	default:
		c.logger.Warn().Str("address", msg.Address).Msg("Message stream full, dropping")
	}
}

func (c *Conn) emitError(err error) {
	select {
	case c.errs <- err:
	default:
	}
}
