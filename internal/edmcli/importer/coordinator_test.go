package importer

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimasma0305/edmcli/internal/edmcli/errors"
	"github.com/dimasma0305/edmcli/internal/edmcli/member"
	"github.com/dimasma0305/edmcli/internal/edmcli/sheet"
)

// fakeCreator assigns sequential ids unless fail returns an error for the record
type fakeCreator struct {
	mu     sync.Mutex
	nextID int64
	calls  []string
	fail   func(m member.Member) error
	delay  func(m member.Member) time.Duration
}

func (f *fakeCreator) AddMember(ctx context.Context, groupID member.ID, m member.Member) (*member.Member, error) {
	f.mu.Lock()
	f.calls = append(f.calls, m.Email)
	f.mu.Unlock()

	if f.delay != nil {
		time.Sleep(f.delay(m))
	}
	if f.fail != nil {
		if err := f.fail(m); err != nil {
			return nil, err
		}
	}
	id := atomic.AddInt64(&f.nextID, 1)
	out := m
	out.ID = member.ID(strconv.FormatInt(id, 10))
	out.GroupID = groupID
	return &out, nil
}

func (f *fakeCreator) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func records(n int) []member.Member {
	out := make([]member.Member, n)
	for i := range out {
		out[i] = member.Member{
			Name:   fmt.Sprintf("user%d", i),
			Email:  fmt.Sprintf("user%d@example.com", i),
			Status: member.StatusActive,
		}
	}
	return out
}

func rejection(msg string) error {
	return &errors.HTTPError{Method: "POST", Path: "/edm/member/add", StatusCode: 200, Code: 1, Message: msg}
}

func TestSubmit_ResultsFollowSourceOrder(t *testing.T) {
	creator := &fakeCreator{
		// later rows finish first
		delay: func(m member.Member) time.Duration {
			var i int
			fmt.Sscanf(m.Email, "user%d@", &i)
			return time.Duration(10-i) * time.Millisecond
		},
	}
	c := New(creator, Options{Concurrency: 8})

	batch := c.Submit(context.Background(), records(10), "g1")

	require.Len(t, batch.Results, 10)
	for i, r := range batch.Results {
		assert.Equal(t, i, r.SourceRow)
		assert.Equal(t, OutcomeSuccess, r.Outcome)
		require.NotNil(t, r.Record)
		assert.Equal(t, fmt.Sprintf("user%d@example.com", i), r.Record.Email)
		assert.NotEmpty(t, r.Record.ID)
		assert.Equal(t, member.ID("g1"), r.Record.GroupID)
	}
	assert.NoError(t, batch.Err())
}

func TestSubmit_RejectionAffectsOnlyItsRow(t *testing.T) {
	creator := &fakeCreator{
		fail: func(m member.Member) error {
			if m.Email == "user1@example.com" {
				return rejection("duplicate email")
			}
			return nil
		},
	}
	c := New(creator, Options{Concurrency: 2})

	batch := c.Submit(context.Background(), records(3), "g1")

	assert.Equal(t, OutcomeSuccess, batch.Results[0].Outcome)
	assert.Equal(t, OutcomeRejected, batch.Results[1].Outcome)
	assert.True(t, errors.Is(batch.Results[1].Err, errors.ErrRemoteRejection))
	assert.Equal(t, OutcomeSuccess, batch.Results[2].Outcome)
	assert.Nil(t, batch.Transport)

	counts := batch.Counts()
	assert.Equal(t, 2, counts[OutcomeSuccess])
	assert.Equal(t, 1, counts[OutcomeRejected])
	assert.ErrorContains(t, batch.Err(), "duplicate email")
}

func TestSubmit_MissingIDIsRejection(t *testing.T) {
	c := New(creatorFunc(func(ctx context.Context, g member.ID, m member.Member) (*member.Member, error) {
		return &m, nil
	}), Options{})

	batch := c.Submit(context.Background(), records(1), "g1")

	r := batch.Results[0]
	assert.Equal(t, OutcomeRejected, r.Outcome)
	assert.True(t, errors.Is(r.Err, errors.ErrMissingID))
	assert.True(t, r.Retryable())
}

func TestSubmit_TransportFailureStopsBatch(t *testing.T) {
	creator := &fakeCreator{
		fail: func(m member.Member) error {
			if m.Email == "user2@example.com" {
				return fmt.Errorf("%w: connection refused", errors.ErrTransportFailure)
			}
			return nil
		},
	}
	c := New(creator, Options{Concurrency: 1})

	batch := c.Submit(context.Background(), records(5), "g1")

	assert.Equal(t, OutcomeSuccess, batch.Results[0].Outcome)
	assert.Equal(t, OutcomeSuccess, batch.Results[1].Outcome)
	assert.NotEmpty(t, batch.Results[1].Record.ID, "prior successes keep their ids")
	for _, r := range batch.Results[2:] {
		assert.Equal(t, OutcomeNotAttempted, r.Outcome)
		assert.True(t, r.Retryable())
	}
	assert.True(t, errors.IsTransport(batch.Transport))
	assert.True(t, errors.Is(batch.Results[3].Err, errors.ErrNotAttempted))
	assert.Equal(t, []string{"user0@example.com", "user1@example.com", "user2@example.com"}, creator.called())
}

func TestSubmit_CancelledContext(t *testing.T) {
	creator := &fakeCreator{}
	c := New(creator, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := c.Submit(ctx, records(3), "g1")

	assert.Empty(t, creator.called())
	for _, r := range batch.Results {
		assert.Equal(t, OutcomeNotAttempted, r.Outcome)
	}
	assert.ErrorIs(t, batch.Transport, context.Canceled)
}

func TestImport_InvalidRowsAreNotSent(t *testing.T) {
	rows := []sheet.RawRow{
		{"姓名": "Ann", "信箱": "ann@example.com"},
		{"姓名": "", "信箱": "blank@example.com"},
		{"姓名": "Cid", "信箱": "cid@example.com", "狀態": "已禁用"},
	}
	creator := &fakeCreator{}
	var seen []Result
	c := New(creator, Options{OnResult: func(r Result) { seen = append(seen, r) }})

	batch := c.Import(context.Background(), rows, member.DefaultColumnMap(), "g7")

	require.Len(t, batch.Results, 3)
	assert.Equal(t, OutcomeSuccess, batch.Results[0].Outcome)
	assert.Equal(t, OutcomeInvalid, batch.Results[1].Outcome)
	assert.Nil(t, batch.Results[1].Record)
	var verrs member.ValidationErrors
	require.True(t, errors.As(batch.Results[1].Err, &verrs))
	assert.True(t, verrs.Has(member.CodeEmptyName))
	assert.Equal(t, OutcomeSuccess, batch.Results[2].Outcome)
	assert.Equal(t, member.StatusInactive, batch.Results[2].Record.Status)

	assert.ElementsMatch(t, []string{"ann@example.com", "cid@example.com"}, creator.called())
	assert.Len(t, seen, 2, "hook fires only for submitted rows")
	assert.Len(t, batch.Succeeded(), 2)
	assert.Len(t, batch.Failed(), 1)
	assert.Empty(t, batch.Retryable(), "invalid rows are not retryable")
}

func TestRetry_ResubmitsOnlyFailedRows(t *testing.T) {
	down := true
	creator := &fakeCreator{
		fail: func(m member.Member) error {
			switch {
			case m.Email == "user1@example.com" && down:
				return rejection("temporarily unavailable")
			case m.Email == "user3@example.com" && down:
				return fmt.Errorf("%w: reset by peer", errors.ErrTransportFailure)
			}
			return nil
		},
	}
	c := New(creator, Options{Concurrency: 1})

	first := c.Submit(context.Background(), records(5), "g1")
	require.Len(t, first.Retryable(), 3)
	firstID := first.Results[0].Record.ID

	down = false
	creator.mu.Lock()
	creator.calls = nil
	creator.mu.Unlock()

	second := c.Retry(context.Background(), first)

	assert.Equal(t, []string{"user1@example.com", "user3@example.com", "user4@example.com"}, creator.called())
	for i, r := range second.Results {
		assert.Equal(t, i, r.SourceRow)
		assert.Equal(t, OutcomeSuccess, r.Outcome)
	}
	assert.Equal(t, firstID, second.Results[0].Record.ID, "earlier successes are carried over")
	assert.Nil(t, second.Transport)
	assert.NoError(t, second.Err())

	// the first batch is left as it was
	assert.Equal(t, OutcomeRejected, first.Results[1].Outcome)
}

type creatorFunc func(ctx context.Context, groupID member.ID, m member.Member) (*member.Member, error)

func (f creatorFunc) AddMember(ctx context.Context, groupID member.ID, m member.Member) (*member.Member, error) {
	return f(ctx, groupID, m)
}
