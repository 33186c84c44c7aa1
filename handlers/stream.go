package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/ray-remotestate/posgate/models"
	"github.com/ray-remotestate/posgate/poller"
	"github.com/ray-remotestate/posgate/session"
	"github.com/ray-remotestate/posgate/upstream"
	"github.com/ray-remotestate/posgate/views"
)

const writeWait = 10 * time.Second

// Message is a server push on a stream.
type Message struct {
	Type     string `json:"type"`
	Data     any    `json:"data,omitempty"`
	TableID  string `json:"tableId,omitempty"`
	OrderID  string `json:"orderId,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ClientMessage is what the screen sends back.
type ClientMessage struct {
	Type    string `json:"type"`
	TableID string `json:"tableId,omitempty"`
	Floor   int    `json:"floor,omitempty"`
	Hidden  bool   `json:"hidden,omitempty"`
}

// stream owns one websocket: a single writer goroutine and a cancel that
// tears down everything attached to the connection.
type stream struct {
	conn      *websocket.Conn
	ctx       context.Context
	cancel    context.CancelFunc
	out       chan Message
	closeCode *atomic.Int64
	wg        sync.WaitGroup
	log       *logrus.Entry
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request, name string) (*stream, bool) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Debug("websocket upgrade failed")
		return nil, false
	}
	ctx, cancel := context.WithCancel(upstreamCtx(r))
	st := &stream{
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
		out:       make(chan Message, 16),
		closeCode: atomic.NewInt64(websocket.CloseNormalClosure),
		log:       logrus.WithFields(logrus.Fields{"stream": name, "client": uuid.NewString()}),
	}
	st.wg.Add(1)
	go st.write()
	st.log.Debug("stream opened")
	return st, true
}

func (st *stream) write() {
	defer st.wg.Done()
	for {
		select {
		case <-st.ctx.Done():
			st.flush()
			_ = st.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(int(st.closeCode.Load()), ""), time.Now().Add(time.Second))
			_ = st.conn.Close()
			return
		case m := <-st.out:
			if !st.writeJSON(m) {
				return
			}
		}
	}
}

// flush writes whatever was queued before the stream was ended.
func (st *stream) flush() {
	for {
		select {
		case m := <-st.out:
			if !st.writeJSON(m) {
				return
			}
		default:
			return
		}
	}
}

func (st *stream) writeJSON(m Message) bool {
	_ = st.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := st.conn.WriteJSON(m); err != nil {
		st.log.WithError(err).Debug("stream write failed")
		st.cancel()
		_ = st.conn.Close()
		return false
	}
	return true
}

func (st *stream) send(m Message) {
	select {
	case st.out <- m:
	case <-st.ctx.Done():
	}
}

// end delivers a last message and closes the socket with code.
func (st *stream) end(code int, m Message) {
	st.send(m)
	st.closeCode.Store(int64(code))
	st.cancel()
}

// unauthorized ends the stream when the API no longer accepts the token; the
// screen goes back to login instead of showing an inline error.
func (st *stream) unauthorized(err error) bool {
	if !upstream.IsUnauthorized(err) {
		return false
	}
	st.log.WithError(err).Info("stream token rejected")
	st.end(websocket.ClosePolicyViolation, Message{Type: "unauthorized", Redirect: session.LoginPath})
	return true
}

// read dispatches client messages until the connection drops.
func (st *stream) read(handle func(ClientMessage)) {
	for {
		var m ClientMessage
		if err := st.conn.ReadJSON(&m); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				st.log.WithError(err).Debug("stream read failed")
			}
			return
		}
		handle(m)
	}
}

func (st *stream) close() {
	st.cancel()
	st.wg.Wait()
	_ = st.conn.Close()
	st.log.Debug("stream closed")
}

// visibility pauses polling while the screen is hidden.
func visibility[T any](p *poller.Poller[T], hidden bool) {
	if hidden {
		p.Pause()
		return
	}
	p.Resume()
}

// WaiterStream pushes floor snapshots with the selected table reconciled
// against each refresh.
func (h *Handler) WaiterStream(w http.ResponseWriter, r *http.Request) {
	s := session.Current(r.Context())
	st, ok := h.open(w, r, "waiter")
	if !ok {
		return
	}
	defer st.close()

	var view views.FloorView
	floor := atomic.NewInt64(0)
	push := func() {
		st.send(Message{Type: "floors", Data: view.Snapshot(int(floor.Load()))})
	}

	p := poller.New("floors", h.opts.PollInterval, func(ctx context.Context) ([]models.Floor, error) {
		return h.api.Floors(ctx, s.BusinessID)
	})
	st.wg.Add(1)
	go func() {
		defer st.wg.Done()
		p.Run(st.ctx, func(res poller.Result[[]models.Floor]) {
			if st.unauthorized(res.Err) {
				return
			}
			if res.Err != nil {
				view.SetError(res.Err)
				push()
				return
			}
			if lost := view.Apply(res.Value); lost != "" {
				st.send(Message{Type: "selection_lost", TableID: lost})
			}
			push()
		})
	}()

	st.read(func(m ClientMessage) {
		switch m.Type {
		case "select":
			if _, ok := view.Select(m.TableID); !ok {
				st.send(Message{Type: "error", TableID: m.TableID, Error: "table not found"})
				return
			}
			push()
		case "deselect":
			view.Deselect()
			push()
		case "floor":
			floor.Store(int64(m.Floor))
			push()
		case "visibility":
			visibility(p, m.Hidden)
		case "refresh":
			p.Refresh()
		}
	})
}

// KitchenStream pushes the active ticket queue on every kitchen tick and a
// clock update per ticket on its own cadence.
func (h *Handler) KitchenStream(w http.ResponseWriter, r *http.Request) {
	s := session.Current(r.Context())
	st, ok := h.open(w, r, "kitchen")
	if !ok {
		return
	}
	clocks := views.NewClockSet(st.ctx, h.opts.TicketClockInterval, h.opts.LateAfterMinutes, h.opts.Now, func(t views.ClockTick) {
		st.send(Message{Type: "clock", Data: t})
	})
	// The poller must be stopped before the clocks so no Sync runs after Close.
	defer func() {
		st.close()
		clocks.Close()
	}()

	p := poller.New("kitchen", h.opts.KitchenPollInterval, func(ctx context.Context) ([]models.Order, error) {
		return h.api.AllOrders(ctx, s.BusinessID)
	})
	st.wg.Add(1)
	go func() {
		defer st.wg.Done()
		p.Run(st.ctx, func(res poller.Result[[]models.Order]) {
			if st.unauthorized(res.Err) {
				return
			}
			if res.Err != nil {
				st.send(Message{Type: "error", Error: res.Err.Error()})
				return
			}
			tickets := views.ActiveTickets(res.Value, h.opts.Now(), h.opts.LateAfterMinutes)
			st.send(Message{Type: "tickets", Data: tickets})
			clocks.Sync(tickets)
		})
	}()

	st.read(func(m ClientMessage) {
		switch m.Type {
		case "visibility":
			visibility(p, m.Hidden)
		case "refresh":
			p.Refresh()
		}
	})
}

// OrderStream re-reads one order for the kitchen detail screen. When the
// order is gone the screen is told so and the stream ends.
func (h *Handler) OrderStream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	st, ok := h.open(w, r, "order")
	if !ok {
		return
	}
	defer st.close()

	p := poller.New("order", h.opts.PollInterval, func(ctx context.Context) (*models.Order, error) {
		return h.api.Order(ctx, id)
	})
	st.wg.Add(1)
	go func() {
		defer st.wg.Done()
		p.Run(st.ctx, func(res poller.Result[*models.Order]) {
			if st.unauthorized(res.Err) {
				return
			}
			if res.Err != nil {
				st.send(Message{Type: "error", OrderID: id, Error: res.Err.Error()})
				return
			}
			if res.Value == nil {
				st.end(websocket.CloseNormalClosure, Message{Type: "gone", OrderID: id})
				return
			}
			st.send(Message{Type: "order", OrderID: id, Data: orderDetail{
				Order:  res.Value,
				Ticket: views.NewTicket(*res.Value, h.opts.Now(), h.opts.LateAfterMinutes),
			}})
		})
	}()

	st.read(func(m ClientMessage) {
		switch m.Type {
		case "visibility":
			visibility(p, m.Hidden)
		case "refresh":
			p.Refresh()
		}
	})
}
