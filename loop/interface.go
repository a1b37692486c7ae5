/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package loop implements the single-threaded cooperative event loop at the
// heart of the toolkit.
//
// One loop multiplexes timers, non-blocking IPv4 sockets and user-signalled
// event sources over fixed resource tables allocated once at creation; every
// resource is addressed through a generation-tagged handle, so stale handles
// kept across slot reuse are detected instead of corrupting the new
// occupant. The loop never spawns goroutines and never blocks outside one
// bounded poll(2) call per pump: the caller owns the pump cadence.
//
// Every handle must be used on the goroutine that pumps its owning loop.
// The single exception is Raise on a user event source, which is safe from
// any goroutine and coalesces signals until the next pump.
package loop

import (
	"context"
	"fmt"
	"time"

	libhdl "github.com/nabbar/goptk/handle"

	libval "github.com/go-playground/validator/v10"
	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	libptc "github.com/nabbar/golib/network/protocol"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sys/unix"
)

// Per-resource handler table bounds.
const (
	maxTimerHandler  = 4
	maxSocketHandler = 8
	maxUserHandler   = 16
)

// Config sizes the resource tables of one loop. All tables are allocated in
// New; operations never allocate slots at runtime.
type Config struct {
	// Timers is the size of the timer table.
	Timers uint16 `json:"timers" yaml:"timers" toml:"timers" mapstructure:"timers" validate:"lte=4096"`

	// Sockets is the size of the socket table. Accepted connections take a
	// slot from the same table as created sockets.
	Sockets uint16 `json:"sockets" yaml:"sockets" toml:"sockets" mapstructure:"sockets" validate:"lte=4096"`

	// UserEvents is the size of the user event source table.
	UserEvents uint16 `json:"userEvents" yaml:"user-events" toml:"userEvents" mapstructure:"user_events" validate:"lte=4096"`

	// Tasks is the size of the protothread table.
	Tasks uint16 `json:"tasks" yaml:"tasks" toml:"tasks" mapstructure:"tasks" validate:"lte=4096"`

	// PollWait bounds the time one pump may spend parked in poll(2) when no
	// timer deadline comes earlier. Zero selects DefaultPollWait.
	PollWait time.Duration `json:"pollWait" yaml:"poll-wait" toml:"pollWait" mapstructure:"poll_wait"`

	// Logger returns the logger used for dispatch diagnostics. A nil
	// function disables logging.
	Logger liblog.FuncLog `json:"-" yaml:"-" toml:"-" mapstructure:"-" validate:"-"`
}

// DefaultPollWait bounds one pump's poll(2) parking when no timer is due
// earlier.
const DefaultPollWait = 50 * time.Millisecond

// DefaultConfig returns a config sized for a typical protocol endpoint.
func DefaultConfig() Config {
	return Config{
		Timers:     16,
		Sockets:    64,
		UserEvents: 8,
		Tasks:      64,
		PollWait:   DefaultPollWait,
	}
}

// Validate checks the config against its constraints.
func (c Config) Validate() liberr.Error {
	err := c.validateStruct()

	if c.Timers == 0 && c.Sockets == 0 && c.UserEvents == 0 && c.Tasks == 0 {
		if err == nil {
			err = ErrorValidatorError.Error(nil)
		}
		err.Add(fmt.Errorf("config must size at least one resource table"))
	}

	return err
}

func (c Config) validateStruct() liberr.Error {
	val := libval.New()
	er := val.Struct(c)

	if er == nil {
		return nil
	}

	if e, ok := er.(*libval.InvalidValidationError); ok {
		return ErrorValidatorError.Error(e)
	}

	out := ErrorValidatorError.Error(nil)

	for _, e := range er.(libval.ValidationErrors) {
		//nolint goerr113
		out.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", e.Field(), e.ActualTag()))
	}

	if out.HasParent() {
		return out
	}

	return nil
}

// Loop is one cooperative event loop. All methods except Raise must be
// called from the goroutine that pumps the loop.
type Loop interface {
	// Handle returns the loop's own generation-tagged handle.
	Handle() libhdl.Handle

	// Destroy releases the loop slot and closes every socket and the wake
	// channel. The loop handle then no longer resolves through Get, and
	// resource handles of this loop no longer resolve through Owner while
	// the slot stays empty. Resource handles carry no loop generation, so a
	// loop created later in the same slot does not reject them by loop.
	// The resource tables of the destroyed value are left as they are.
	Destroy() error

	// Run performs one pump: sample readiness, deliver due timer events,
	// dispatch socket readiness and coalesced user events, then return.
	// The caller decides when to pump next.
	Run() error

	// IsRunning reports whether a pump is currently executing.
	IsRunning() bool

	// LastError returns the most recent error recorded against this loop.
	// It is a diagnostic aid, not a transactional slot: successive failures
	// overwrite it.
	LastError() error

	// Valid reports whether the handle references a live resource of this
	// loop.
	Valid(h libhdl.Handle) bool

	// Type returns the resource kind of a live handle.
	Type(h libhdl.Handle) (libhdl.Kind, error)

	// Free releases the resource slot addressed by the handle, whatever its
	// kind. Sockets are closed first. Handles from earlier generations of
	// the slot stay invalid forever.
	Free(h libhdl.Handle) error

	// SetHandler installs fct for (res, evt), replacing any previous
	// handler of the pair. Function handlers persist across dispatches.
	SetHandler(res libhdl.Handle, evt EventType, fct HandlerFunc, userData any) error

	// SetTaskHandler installs the protothread referenced by task as a
	// one-shot handler for (res, evt): the subscription is cleared before
	// the task is resumed.
	SetTaskHandler(res libhdl.Handle, evt EventType, task libhdl.Handle) error

	// RemoveHandler clears the handler for (res, evt). Removing a missing
	// handler is not an error.
	RemoveHandler(res libhdl.Handle, evt EventType) error

	// TimerCreate allocates a timer slot.
	TimerCreate() (libhdl.Handle, error)

	// TimerStart arms the timer. Re-arming an armed timer overwrites the
	// interval and repeat mode and resets the deadline from now.
	TimerStart(h libhdl.Handle, interval time.Duration, repeating bool) error

	// TimerStop disarms the timer, cancelling pending expirations that have
	// not been dispatched yet. Stopping a stopped timer is a no-op.
	TimerStop(h libhdl.Handle) error

	// SocketTCP allocates a non-blocking IPv4 TCP socket.
	SocketTCP() (libhdl.Handle, error)

	// SocketUDP allocates a non-blocking IPv4 UDP socket.
	SocketUDP() (libhdl.Handle, error)

	// SocketProtocol returns the transport of the socket.
	SocketProtocol(h libhdl.Handle) (libptc.NetworkProtocol, error)

	// Connect starts connecting the socket to addr (host:port). A TCP
	// connect that cannot complete immediately returns ErrorWouldBlock and
	// surfaces EventConnected (or EventError) on a later pump.
	Connect(h libhdl.Handle, addr string) error

	// Bind binds the socket to the local addr (host:port, port 0 picks an
	// ephemeral port readable through LocalAddr).
	Bind(h libhdl.Handle, addr string) error

	// Listen switches a bound TCP socket to listening. EventReadable on a
	// listening socket signals a pending connection.
	Listen(h libhdl.Handle, backlog int) error

	// Accept takes one pending connection off a listening socket, allocates
	// a socket slot for it and returns its handle. ErrorWouldBlock is
	// returned when nothing is pending.
	Accept(h libhdl.Handle) (libhdl.Handle, error)

	// Send writes the live bytes of the buffer to a connected socket,
	// consuming the bytes actually accepted by the transport and returning
	// their count. ErrorWouldBlock is returned when the transport accepts
	// nothing.
	Send(h libhdl.Handle, b Reader) (int, error)

	// Recv reads available bytes into the free region of the buffer,
	// committing them to the live region and returning their count. A
	// zero-length read on TCP reports the peer closing as
	// ErrorConnectionReset.
	Recv(h libhdl.Handle, b Writer) (int, error)

	// SendTo writes the live bytes of the buffer as one datagram to addr.
	// After enabling the matching option, a broadcast or multicast
	// destination address transmits broadcast or multicast traffic.
	SendTo(h libhdl.Handle, b Reader, addr string) (int, error)

	// RecvFrom reads one datagram into the free region of the buffer and
	// returns the sender address.
	RecvFrom(h libhdl.Handle, b Writer) (int, string, error)

	// LocalAddr returns the bound local address of the socket.
	LocalAddr(h libhdl.Handle) (string, error)

	// PeerAddr returns the connected peer address of the socket.
	PeerAddr(h libhdl.Handle) (string, error)

	// SetBroadcast enables or disables broadcast transmission on a UDP
	// socket.
	SetBroadcast(h libhdl.Handle, enable bool) error

	// JoinGroup joins the multicast group on the named interface (empty
	// name selects the system default interface). UDP only.
	JoinGroup(h libhdl.Handle, group string, ifName string) error

	// LeaveGroup leaves the multicast group. UDP only.
	LeaveGroup(h libhdl.Handle, group string, ifName string) error

	// SetMulticastTTL sets the time-to-live of outgoing multicast
	// datagrams. UDP only.
	SetMulticastTTL(h libhdl.Handle, ttl int) error

	// SetMulticastLoopback controls whether outgoing multicast datagrams
	// loop back to the sending host. UDP only.
	SetMulticastLoopback(h libhdl.Handle, enable bool) error

	// Close shuts the socket file descriptor. Closing a closed socket is a
	// no-op returning nil; the slot stays allocated until Free.
	Close(h libhdl.Handle) error

	// UserEvent allocates a user event source: a thread-safe coalescing
	// mailbox into the loop.
	UserEvent() (libhdl.Handle, error)

	// Raise signals the user event source with the given event type. Safe
	// from any goroutine. Signals of the same type raised between two pumps
	// coalesce into one dispatch; only the latest data survives
	// coalescing.
	Raise(h libhdl.Handle, evt EventType, data any) error

	// AdoptTask registers a cooperative task and returns its handle, usable
	// with SetTaskHandler.
	AdoptTask(t Task) (libhdl.Handle, error)
}

// Reader is the buffer surface Send and SendTo need: the live bytes and the
// start cursor to consume them. buffer.Buffer satisfies it.
type Reader interface {
	Len() int
	Start() int
	SetStart(i int) error
	Bytes() []byte
}

// Writer is the buffer surface Recv and RecvFrom need: the free region and
// the end cursor to commit into it. buffer.Buffer satisfies it.
type Writer interface {
	Remaining() int
	End() int
	SetEnd(i int) error
	Free() []byte
}

// New creates a loop with tables sized by the config, registers it in the
// process loop table and opens its wake channel. The context is retained
// for the logger only.
func New(ctx context.Context, cfg Config) (Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.PollWait <= 0 {
		cfg.PollWait = DefaultPollWait
	}

	o := &lp{
		x:   ctx,
		cfg: cfg,
		log: cfg.Logger,
		run: libatm.NewValue[bool](),
		err: libatm.NewValue[error](),
		tmr: make([]timerSlot, cfg.Timers),
		tmu: bitset.New(uint(cfg.Timers)),
		skt: make([]socketSlot, cfg.Sockets),
		smu: bitset.New(uint(cfg.Sockets)),
		uev: make([]userSlot, cfg.UserEvents),
		umu: bitset.New(uint(cfg.UserEvents)),
		tsk: make([]taskSlot, cfg.Tasks),
		kmu: bitset.New(uint(cfg.Tasks)),
		pfd: make([]unix.PollFd, 0, int(cfg.Sockets)+1),
		pix: make([]int, 0, int(cfg.Sockets)),
		wkp: libatm.NewValue[bool](),
	}

	// prime the flags so the first CompareAndSwap sees a stored value
	o.wkp.Store(false)
	o.run.Store(false)

	if err := o.openWake(); err != nil {
		return nil, err
	}

	if err := poolAdd(o); err != nil {
		o.closeWake()
		return nil, err
	}

	return o, nil
}
