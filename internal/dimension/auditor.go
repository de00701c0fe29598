package dimension

import (
	"sort"

	"github.com/l1jgo/dimension/internal/core/handle"
	"go.uber.org/zap"
)

// DefaultLeakThreshold is the number of consecutive audits a dangling world must
// survive before the first warning.
const DefaultLeakThreshold = 5

// LeakReport describes one world that is still reachable but no longer registered.
type LeakReport struct {
	Token  handle.Token
	Name   string
	Count  int  // consecutive audits this identity was seen dangling
	Warned bool // a warning was logged for this pass
}

type candidate struct {
	token handle.Token
	name  string
}

// auditor owns the leak occurrence counters. Only the manager touches it,
// under the manager's write lock.
type auditor struct {
	threshold int
	counts    map[handle.Token]int
	log       *zap.Logger
}

func newAuditor(threshold int, log *zap.Logger) *auditor {
	if threshold < 1 {
		threshold = DefaultLeakThreshold
	}
	return &auditor{
		threshold: threshold,
		counts:    make(map[handle.Token]int),
		log:       log,
	}
}

// observe counts one audit pass over the current candidates. Counters of
// identities that are no longer dangling are dropped.
func (a *auditor) observe(candidates []candidate) []LeakReport {
	seen := make(map[handle.Token]struct{}, len(candidates))
	reports := make([]LeakReport, 0, len(candidates))

	for _, c := range candidates {
		seen[c.token] = struct{}{}
		a.counts[c.token]++
		n := a.counts[c.token]

		r := LeakReport{Token: c.token, Name: c.name, Count: n}
		switch {
		case n == a.threshold:
			a.log.Warn("world may have leaked: first encounter",
				zap.Stringer("token", c.token),
				zap.String("name", c.name),
				zap.Int("count", n))
			r.Warned = true
		case n%a.threshold == 0:
			a.log.Warn("world may have leaked: seen again",
				zap.Stringer("token", c.token),
				zap.String("name", c.name),
				zap.Int("count", n))
			r.Warned = true
		}
		reports = append(reports, r)
	}

	for tok := range a.counts {
		if _, ok := seen[tok]; !ok {
			delete(a.counts, tok)
		}
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Token < reports[j].Token })
	return reports
}

func (a *auditor) forget(tokens []handle.Token) {
	for _, tok := range tokens {
		delete(a.counts, tok)
	}
}
