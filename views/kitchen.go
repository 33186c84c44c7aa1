package views

import (
	"context"
	"sync"
	"time"

	"github.com/ray-remotestate/posgate/models"
)

// IsActive reports whether the kitchen still has to work on the order.
func IsActive(o models.Order) bool {
	switch models.NormalizeOrderStatus(o.Status) {
	case models.OrderPending, models.OrderInProgress:
		return true
	}
	return false
}

func ActiveOrders(orders []models.Order) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if IsActive(o) {
			out = append(out, o)
		}
	}
	return out
}

// ElapsedMinutes is whole minutes since createdAt, never negative. An unknown
// creation time counts as zero.
func ElapsedMinutes(createdAt, now time.Time) int {
	if createdAt.IsZero() {
		return 0
	}
	d := now.Sub(createdAt)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

// IsLate is strict: exactly lateAfter minutes is still on time.
func IsLate(elapsed, lateAfter int) bool {
	return elapsed > lateAfter
}

type TicketItem struct {
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
	Note     string `json:"note,omitempty"`
}

type Ticket struct {
	OrderID        string             `json:"orderId"`
	ShortID        string             `json:"shortId"`
	TableName      string             `json:"tableName"`
	Waiter         string             `json:"waiter,omitempty"`
	Status         models.OrderStatus `json:"status"`
	CreatedAt      time.Time          `json:"createdAt"`
	Items          []TicketItem       `json:"items"`
	ElapsedMinutes int                `json:"elapsedMinutes"`
	Late           bool               `json:"late"`
}

func NewTicket(o models.Order, now time.Time, lateAfter int) Ticket {
	t := Ticket{
		OrderID:   o.ID,
		ShortID:   shortID(o.ID),
		TableName: "Table ?",
		Status:    models.NormalizeOrderStatus(o.Status),
		CreatedAt: o.CreatedAt,
		Items:     make([]TicketItem, 0, len(o.Items)),
	}
	if o.Table != nil && o.Table.Name != "" {
		t.TableName = o.Table.Name
	}
	if o.User != nil {
		t.Waiter = o.User.Name
	}
	for _, it := range o.Items {
		t.Items = append(t.Items, TicketItem{Quantity: it.Quantity, Name: it.DisplayName(), Note: it.Note})
	}
	t.ElapsedMinutes = ElapsedMinutes(o.CreatedAt, now)
	t.Late = IsLate(t.ElapsedMinutes, lateAfter)
	return t
}

// ActiveTickets is the kitchen queue: active orders rendered as tickets, in server order.
func ActiveTickets(orders []models.Order, now time.Time, lateAfter int) []Ticket {
	active := ActiveOrders(orders)
	tickets := make([]Ticket, 0, len(active))
	for _, o := range active {
		tickets = append(tickets, NewTicket(o, now, lateAfter))
	}
	return tickets
}

func shortID(id string) string {
	if len(id) <= 4 {
		return id
	}
	return id[len(id)-4:]
}

type ClockTick struct {
	OrderID        string `json:"orderId"`
	ElapsedMinutes int    `json:"elapsedMinutes"`
	Late           bool   `json:"late"`
}

// TicketClock recomputes one ticket's elapsed time on its own interval,
// independent of how often the queue is polled.
type TicketClock struct {
	OrderID   string
	CreatedAt time.Time
	Every     time.Duration
	LateAfter int
	Now       func() time.Time
}

// Run emits immediately and then every interval until ctx is done.
func (c TicketClock) Run(ctx context.Context, emit func(ClockTick)) {
	now := c.Now
	if now == nil {
		now = time.Now
	}
	tick := func() {
		elapsed := ElapsedMinutes(c.CreatedAt, now())
		emit(ClockTick{OrderID: c.OrderID, ElapsedMinutes: elapsed, Late: IsLate(elapsed, c.LateAfter)})
	}

	tick()
	t := time.NewTicker(c.Every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			tick()
		}
	}
}

// ClockSet keeps exactly one running clock per ticket on screen.
type ClockSet struct {
	ctx       context.Context
	every     time.Duration
	lateAfter int
	now       func() time.Time
	emit      func(ClockTick)

	mu     sync.Mutex
	clocks map[string]context.CancelFunc
	wg     sync.WaitGroup
}

func NewClockSet(ctx context.Context, every time.Duration, lateAfter int, now func() time.Time, emit func(ClockTick)) *ClockSet {
	return &ClockSet{
		ctx:       ctx,
		every:     every,
		lateAfter: lateAfter,
		now:       now,
		emit:      emit,
		clocks:    make(map[string]context.CancelFunc),
	}
}

// Sync starts clocks for new tickets and stops clocks for tickets that left the queue.
func (s *ClockSet) Sync(tickets []Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keep := make(map[string]bool, len(tickets))
	for _, t := range tickets {
		keep[t.OrderID] = true
		if _, running := s.clocks[t.OrderID]; running {
			continue
		}
		ctx, cancel := context.WithCancel(s.ctx)
		s.clocks[t.OrderID] = cancel
		clock := TicketClock{OrderID: t.OrderID, CreatedAt: t.CreatedAt, Every: s.every, LateAfter: s.lateAfter, Now: s.now}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			clock.Run(ctx, s.emit)
		}()
	}
	for id, cancel := range s.clocks {
		if !keep[id] {
			cancel()
			delete(s.clocks, id)
		}
	}
}

func (s *ClockSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clocks)
}

// Close stops every clock and waits for them to exit.
func (s *ClockSet) Close() {
	s.mu.Lock()
	for id, cancel := range s.clocks {
		cancel()
		delete(s.clocks, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
