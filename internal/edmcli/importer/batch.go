// Package importer submits normalized members to the remote and reports every row's outcome
package importer

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/dimasma0305/edmcli/internal/edmcli/member"
)

// Outcome is the final state of one source row
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeInvalid      Outcome = "invalid"
	OutcomeRejected     Outcome = "rejected"
	OutcomeNotAttempted Outcome = "not_attempted"
)

// Result is the outcome of one source row. Record is set for every row that normalized;
// on success it carries the remote-assigned id.
type Result struct {
	SourceRow int
	Record    *member.Member
	Outcome   Outcome
	Err       error
}

// Retryable reports whether re-submitting the row can change its outcome
func (r Result) Retryable() bool {
	return r.Record != nil && (r.Outcome == OutcomeRejected || r.Outcome == OutcomeNotAttempted)
}

// Batch is the in-memory result of one import. Results[i].SourceRow == i.
type Batch struct {
	GroupID member.ID
	Results []Result
	// Transport is the first failure to reach the remote, reported once for the whole batch
	Transport error
}

// Counts tallies results by outcome
func (b *Batch) Counts() map[Outcome]int {
	counts := make(map[Outcome]int, 4)
	for _, r := range b.Results {
		counts[r.Outcome]++
	}
	return counts
}

// Succeeded returns the rows the remote accepted
func (b *Batch) Succeeded() []Result {
	return b.filter(func(r Result) bool { return r.Outcome == OutcomeSuccess })
}

// Failed returns every row that did not succeed
func (b *Batch) Failed() []Result {
	return b.filter(func(r Result) bool { return r.Outcome != OutcomeSuccess })
}

// Retryable returns the rejected and not attempted rows
func (b *Batch) Retryable() []Result {
	return b.filter(Result.Retryable)
}

func (b *Batch) filter(keep func(Result) bool) []Result {
	var out []Result
	for _, r := range b.Results {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Err aggregates every row failure, or returns nil when all rows succeeded
func (b *Batch) Err() error {
	var result *multierror.Error
	for _, r := range b.Failed() {
		result = multierror.Append(result, fmt.Errorf("row %d %s: %w", r.SourceRow, r.Outcome, r.Err))
	}
	return result.ErrorOrNil()
}
