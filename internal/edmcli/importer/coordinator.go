package importer

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dimasma0305/edmcli/internal/edmcli/errors"
	"github.com/dimasma0305/edmcli/internal/edmcli/member"
	"github.com/dimasma0305/edmcli/internal/edmcli/sheet"
	"github.com/dimasma0305/edmcli/internal/log"
)

// Creator creates one member remotely. *edmapi.Service satisfies it.
type Creator interface {
	AddMember(ctx context.Context, groupID member.ID, m member.Member) (*member.Member, error)
}

// DefaultConcurrency is the number of creation calls in flight when Options leaves it unset
const DefaultConcurrency = 4

// Options tune a Coordinator
type Options struct {
	Concurrency int
	// OnResult is called once per submitted row as soon as its outcome is known.
	// Calls are serialized.
	OnResult func(Result)
}

// Coordinator submits members one creation call per record. Calls run concurrently up to
// the configured limit; results are always reported in source order.
type Coordinator struct {
	creator     Creator
	concurrency int
	onResult    func(Result)
	hookMu      sync.Mutex
}

// New creates a Coordinator that submits through creator
func New(creator Creator, opts Options) *Coordinator {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Coordinator{
		creator:     creator,
		concurrency: concurrency,
		onResult:    opts.OnResult,
	}
}

// Submit creates every record in group. A rejected record does not stop the others; the
// first transport failure stops dispatch and leaves the rest not attempted.
func (c *Coordinator) Submit(ctx context.Context, records []member.Member, groupID member.ID) *Batch {
	batch := &Batch{GroupID: groupID, Results: make([]Result, len(records))}
	pending := make([]int, 0, len(records))
	for i := range records {
		rec := records[i]
		batch.Results[i] = notAttempted(i, &rec)
		pending = append(pending, i)
	}

	c.dispatch(ctx, batch, pending)
	return batch
}

// Import normalizes rows with cm and submits the valid ones. Invalid rows are reported with
// their validation errors and never sent.
func (c *Coordinator) Import(ctx context.Context, rows []sheet.RawRow, cm member.ColumnMap, groupID member.ID) *Batch {
	batch := &Batch{GroupID: groupID, Results: make([]Result, len(rows))}
	pending := make([]int, 0, len(rows))

	for i, row := range rows {
		m, err := cm.Normalize(row)
		if err != nil {
			batch.Results[i] = Result{SourceRow: i, Outcome: OutcomeInvalid, Err: err}
			continue
		}
		batch.Results[i] = notAttempted(i, &m)
		pending = append(pending, i)
	}

	log.Info("Submitting %d of %d rows to group %s", len(pending), len(rows), groupID)
	c.dispatch(ctx, batch, pending)
	return batch
}

// Retry re-submits only the rejected and not attempted rows of prev. Rows that succeeded or
// failed validation are carried over unchanged, so indices still line up with the source.
func (c *Coordinator) Retry(ctx context.Context, prev *Batch) *Batch {
	batch := &Batch{GroupID: prev.GroupID, Results: make([]Result, len(prev.Results))}
	var pending []int

	for i, r := range prev.Results {
		if r.Retryable() {
			rec := *r.Record
			batch.Results[i] = notAttempted(r.SourceRow, &rec)
			pending = append(pending, i)
			continue
		}
		batch.Results[i] = r
	}

	log.Info("Retrying %d rows in group %s", len(pending), prev.GroupID)
	c.dispatch(ctx, batch, pending)
	return batch
}

func notAttempted(i int, rec *member.Member) Result {
	return Result{SourceRow: i, Record: rec, Outcome: OutcomeNotAttempted, Err: errors.ErrNotAttempted}
}

// dispatch sends the pending rows of batch, writing each outcome into its own slot
func (c *Coordinator) dispatch(ctx context.Context, batch *Batch, pending []int) {
	var (
		mu      sync.Mutex
		tripped error
	)
	isTripped := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return tripped != nil
	}

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for _, idx := range pending {
		if isTripped() || ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if isTripped() {
				return nil
			}

			res := c.submitOne(ctx, batch.GroupID, batch.Results[idx])
			if res.Outcome == OutcomeNotAttempted {
				mu.Lock()
				if tripped == nil {
					tripped = res.Err
					batch.Transport = res.Err
					log.Error("Remote unreachable, stopping the batch: %v", res.Err)
				}
				mu.Unlock()
			}
			batch.Results[idx] = res
			c.report(res)
			return nil
		})
	}
	_ = g.Wait()

	if batch.Transport == nil && ctx.Err() != nil {
		batch.Transport = ctx.Err()
	}
}

func (c *Coordinator) submitOne(ctx context.Context, groupID member.ID, res Result) Result {
	created, err := c.creator.AddMember(ctx, groupID, *res.Record)
	switch {
	case err == nil && (created == nil || created.ID == ""):
		res.Outcome = OutcomeRejected
		res.Err = fmt.Errorf("%w: %w", errors.ErrRemoteRejection, errors.ErrMissingID)
	case err == nil:
		rec := *created
		if rec.GroupID == "" {
			rec.GroupID = groupID
		}
		res.Record = &rec
		res.Outcome = OutcomeSuccess
		res.Err = nil
	case errors.IsTransport(err) || ctx.Err() != nil:
		res.Outcome = OutcomeNotAttempted
		res.Err = err
	default:
		res.Outcome = OutcomeRejected
		res.Err = err
	}
	return res
}

func (c *Coordinator) report(res Result) {
	if c.onResult == nil {
		return
	}
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.onResult(res)
}
