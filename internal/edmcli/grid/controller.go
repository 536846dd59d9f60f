// Package grid drives the paginated member list: it owns the query state, discards
// superseded responses and runs per-row mutations without optimistic updates.
package grid

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dimasma0305/edmcli/internal/edmcli/edmapi"
	"github.com/dimasma0305/edmcli/internal/edmcli/errors"
	"github.com/dimasma0305/edmcli/internal/edmcli/member"
	"github.com/dimasma0305/edmcli/internal/log"
)

// State of the grid
type State string

const (
	StateIdle         State = "idle"
	StateQuerying     State = "querying"
	StateLoaded       State = "loaded"
	StateQueryFailed  State = "query_failed"
	StateMutating     State = "mutating"
	StateMutateFailed State = "mutate_failed"
)

// DefaultPageSize is used when Options leaves PageSize unset
const DefaultPageSize = 20

// Query holds the page, page size and filter values that drive the list request
type Query = edmapi.ListParams

// Backend is the part of the remote the grid talks to. *edmapi.Service satisfies it.
type Backend interface {
	ListMembers(ctx context.Context, params edmapi.ListParams) (*edmapi.MemberPage, error)
	EditMemberStatus(ctx context.Context, id member.ID, status member.Status) error
	EditMemberEmail(ctx context.Context, id member.ID, email string) error
	EditMemberMobile(ctx context.Context, id member.ID, mobile string) error
}

// Notice is a transient, non-destructive failure report for the user
type Notice struct {
	Action string
	Row    member.ID
	Err    error
}

func (n Notice) String() string {
	if n.Row == "" {
		return fmt.Sprintf("%s failed: %v", n.Action, n.Err)
	}
	return fmt.Sprintf("%s of member %s failed: %v", n.Action, n.Row, n.Err)
}

// Snapshot is a copy of what the grid currently displays
type Snapshot struct {
	State   State
	Query   Query
	Rows    []member.Member
	Total   int
	LastErr error
}

// Options tune a Controller
type Options struct {
	PageSize int
	Filters  map[string]string
	OnNotice func(Notice)
}

// Controller is the stateful list view over the remote member dataset
type Controller struct {
	backend  Backend
	onNotice func(Notice)

	mu    sync.Mutex
	state State
	// query is what the displayed rows were loaded with; next is what the latest request asked for
	query    Query
	next     Query
	rows     []member.Member
	total    int
	lastErr  error
	gen      uint64
	inflight int

	rowMutexes   map[member.ID]*sync.Mutex
	rowMutexesMu sync.Mutex
}

// New creates an idle Controller on page 1
func New(backend Backend, opts Options) *Controller {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	query := Query{Page: 1, PageSize: pageSize, Filters: opts.Filters}
	return &Controller{
		backend:    backend,
		onNotice:   opts.OnNotice,
		state:      StateIdle,
		query:      query.Clone(),
		next:       query.Clone(),
		rowMutexes: make(map[member.ID]*sync.Mutex),
	}
}

// Query re-runs the current query
func (c *Controller) Query(ctx context.Context) error {
	return c.run(ctx, func(*Query) error { return nil })
}

// Refresh is Query under the name the CLI uses after an import
func (c *Controller) Refresh(ctx context.Context) error {
	return c.Query(ctx)
}

// SetFilters replaces the filter values and goes back to the first page
func (c *Controller) SetFilters(ctx context.Context, filters map[string]string) error {
	return c.run(ctx, func(q *Query) error {
		q.Filters = Query{Filters: filters}.Clone().Filters
		q.Page = 1
		return nil
	})
}

// SetPage moves to page n keeping the filters
func (c *Controller) SetPage(ctx context.Context, n int) error {
	return c.run(ctx, func(q *Query) error {
		if n < 1 {
			return fmt.Errorf("%w: page %d", errors.ErrInvalidOption, n)
		}
		q.Page = n
		return nil
	})
}

// SetPageSize changes the page size and goes back to the first page
func (c *Controller) SetPageSize(ctx context.Context, n int) error {
	return c.run(ctx, func(q *Query) error {
		if n < 1 {
			return fmt.Errorf("%w: page size %d", errors.ErrInvalidOption, n)
		}
		q.PageSize = n
		q.Page = 1
		return nil
	})
}

// Close discards every in-flight query. Loaded rows are kept.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.next = c.query.Clone()
	c.state = StateIdle
}

// run applies update to the latest requested query and issues the list request. The
// displayed query only changes when the response arrives. A response that arrives after a
// newer query or Close returns ErrStaleResponse and changes nothing.
func (c *Controller) run(ctx context.Context, update func(*Query) error) error {
	c.mu.Lock()
	params := c.next.Clone()
	if err := update(&params); err != nil {
		c.mu.Unlock()
		return err
	}
	c.gen++
	gen := c.gen
	c.next = params.Clone()
	c.state = StateQuerying
	c.mu.Unlock()

	log.Debug("grid query #%d: page=%d size=%d filters=%v", gen, params.Page, params.PageSize, params.Filters)
	page, err := c.backend.ListMembers(ctx, params)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		log.Debug("grid query #%d superseded, dropping its response", gen)
		return errors.ErrStaleResponse
	}
	if err != nil {
		c.state = StateQueryFailed
		c.lastErr = err
		c.next = c.query.Clone()
		c.mu.Unlock()
		c.notify(Notice{Action: "query", Err: err})
		return err
	}
	c.query = params
	c.rows = slices.Clone(page.Items)
	c.total = page.Total
	c.lastErr = nil
	c.state = StateLoaded
	c.mu.Unlock()
	return nil
}

// ToggleStatus flips the confirmed status of row id
func (c *Controller) ToggleStatus(ctx context.Context, id member.ID) error {
	return c.mutate(ctx, id, "status change", func(cur member.Member) (func(context.Context) error, func(*member.Member)) {
		next := cur.Status.Toggle()
		return func(ctx context.Context) error {
				return c.backend.EditMemberStatus(ctx, id, next)
			}, func(m *member.Member) {
				m.Status = next
			}
	})
}

// SetStatus sets row id to status
func (c *Controller) SetStatus(ctx context.Context, id member.ID, status member.Status) error {
	if !status.Valid() {
		return c.reject(id, "status change", member.ValidationErrors{{
			Field: member.FieldStatus, Code: member.CodeInvalidStatus, Value: string(status), Message: "unknown status",
		}})
	}
	return c.mutate(ctx, id, "status change", func(member.Member) (func(context.Context) error, func(*member.Member)) {
		return func(ctx context.Context) error {
				return c.backend.EditMemberStatus(ctx, id, status)
			}, func(m *member.Member) {
				m.Status = status
			}
	})
}

// EditEmail changes the email of row id after checking its shape
func (c *Controller) EditEmail(ctx context.Context, id member.ID, email string) error {
	if verr := member.ValidateEmail(email); verr != nil {
		return c.reject(id, "email edit", member.ValidationErrors{*verr})
	}
	return c.mutate(ctx, id, "email edit", func(member.Member) (func(context.Context) error, func(*member.Member)) {
		return func(ctx context.Context) error {
				return c.backend.EditMemberEmail(ctx, id, email)
			}, func(m *member.Member) {
				m.Email = email
			}
	})
}

// EditMobile changes the mobile number of row id. An empty number clears it.
func (c *Controller) EditMobile(ctx context.Context, id member.ID, mobile string) error {
	if verr := member.ValidateMobile(mobile); verr != nil {
		return c.reject(id, "mobile edit", member.ValidationErrors{*verr})
	}
	return c.mutate(ctx, id, "mobile edit", func(member.Member) (func(context.Context) error, func(*member.Member)) {
		return func(ctx context.Context) error {
				return c.backend.EditMemberMobile(ctx, id, mobile)
			}, func(m *member.Member) {
				m.Mobile = mobile
			}
	})
}

// mutate runs one remote edit for row id while holding the row's mutex. build sees the
// last confirmed row and returns the request plus the change to apply once it succeeds.
// On failure the displayed row is left untouched.
func (c *Controller) mutate(ctx context.Context, id member.ID, action string, build func(cur member.Member) (func(context.Context) error, func(*member.Member))) error {
	mutex := c.rowMutex(id)
	mutex.Lock()
	defer mutex.Unlock()

	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", errors.ErrRowNotLoaded, id)
	}
	send, apply := build(c.rows[i])
	if c.state != StateQuerying {
		c.state = StateMutating
	}
	c.inflight++
	c.mu.Unlock()

	err := send(ctx)

	c.mu.Lock()
	c.inflight--
	if err != nil {
		c.lastErr = err
		if c.state == StateMutating {
			c.state = StateMutateFailed
		}
		c.mu.Unlock()
		c.notify(Notice{Action: action, Row: id, Err: err})
		return err
	}
	// a query may have replaced the rows while the request was out
	if i := c.indexOf(id); i >= 0 {
		apply(&c.rows[i])
	}
	if c.state == StateMutating && c.inflight == 0 {
		c.state = StateLoaded
	}
	c.mu.Unlock()
	return nil
}

func (c *Controller) reject(id member.ID, action string, err error) error {
	c.notify(Notice{Action: action, Row: id, Err: err})
	return err
}

func (c *Controller) rowMutex(id member.ID) *sync.Mutex {
	c.rowMutexesMu.Lock()
	defer c.rowMutexesMu.Unlock()
	if c.rowMutexes[id] == nil {
		c.rowMutexes[id] = &sync.Mutex{}
	}
	return c.rowMutexes[id]
}

// indexOf must be called with c.mu held
func (c *Controller) indexOf(id member.ID) int {
	return slices.IndexFunc(c.rows, func(m member.Member) bool { return m.ID == id })
}

func (c *Controller) notify(n Notice) {
	log.Debug("grid notice: %s", n)
	if c.onNotice != nil {
		c.onNotice(n)
	}
}

// Snapshot returns a copy of the current view
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:   c.state,
		Query:   c.query.Clone(),
		Rows:    slices.Clone(c.rows),
		Total:   c.total,
		LastErr: c.lastErr,
	}
}

// Row returns the displayed row with id
func (c *Controller) Row(id member.ID) (member.Member, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.rows[i], true
	}
	return member.Member{}, false
}

// Pages returns the number of pages for the current total and page size
func (c *Controller) Pages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pageCount(c.total, c.query.PageSize)
}

func pageCount(total, size int) int {
	if size <= 0 || total == 0 {
		return 1
	}
	return (total + size - 1) / size
}
