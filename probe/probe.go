package probe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/dagrha/piactl/catalog"
	"github.com/dagrha/piactl/common"
)

// Result holds the measured latencies in milliseconds, keyed by probe
// target. Targets that could not be reached are absent. Insertion order is
// preserved: ties in Fastest go to the first-inserted target.
type Result struct {
	mu        sync.Mutex
	order     []string
	latencies map[string]float64
}

// add records one measurement. Each target is written exactly once.
func (r *Result) add(target string, ms float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latencies == nil {
		r.latencies = make(map[string]float64)
	}
	if _, dup := r.latencies[target]; dup {
		return
	}
	r.latencies[target] = ms
	r.order = append(r.order, target)
}

// Len returns the number of measured targets.
func (r *Result) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Latency returns the measured latency for a target in milliseconds.
func (r *Result) Latency(target string) (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms, ok := r.latencies[target]
	return ms, ok
}

// Targets returns the measured targets in insertion order.
func (r *Result) Targets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Engine fans probes out over a catalog and aggregates the results.
type Engine struct {
	prober      Prober
	echoCount   int
	concurrency int
}

// NewEngine creates a probe engine. echoCount and concurrency fall back to
// the package defaults when non-positive.
func NewEngine(prober Prober, echoCount, concurrency int) *Engine {
	if echoCount <= 0 {
		echoCount = common.EchoCount
	}
	if concurrency <= 0 {
		concurrency = common.ProbeConcurrency
	}
	return &Engine{
		prober:      prober,
		echoCount:   echoCount,
		concurrency: concurrency,
	}
}

// ProbeAll probes every target in the catalog and blocks until all probes
// have terminated, success or failure. A failed probe leaves its target
// absent from the result and never disturbs the others.
func (e *Engine) ProbeAll(ctx context.Context, cat *catalog.Catalog) *Result {
	result := &Result{}
	sem := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup

	for _, entry := range cat.Entries() {
		wg.Add(1)
		go func(entry catalog.Entry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			samples, err := e.prober.Probe(ctx, entry.Target, e.echoCount)
			if err != nil {
				common.LogWarn("Probe failed for %s (%s): %v", entry.Profile, entry.Target, err)
				return
			}

			ms := make([]float64, 0, len(samples))
			for _, rtt := range samples {
				ms = append(ms, float64(rtt)/float64(time.Millisecond))
			}
			mean, err := stats.Mean(ms)
			if err != nil {
				common.LogWarn("Probe for %s returned no samples", entry.Target)
				return
			}

			result.add(entry.Target, mean)
			common.LogDebug("Probe %s (%s): %.2f ms over %d replies",
				entry.Profile, entry.Target, mean, len(samples))
		}(entry)
	}

	wg.Wait()
	return result
}

// Fastest returns the profile name whose target has the lowest measured
// latency. Ties go to the first-inserted target. Fails with
// common.ErrNoReachableServer when the result is empty.
func Fastest(r *Result, cat *catalog.Catalog) (string, error) {
	var (
		best   string
		bestMS float64
		found  bool
	)
	for _, target := range r.Targets() {
		ms, _ := r.Latency(target)
		if !found || ms < bestMS {
			best, bestMS, found = target, ms, true
		}
	}
	if !found {
		return "", common.ErrNoReachableServer
	}

	profile, ok := cat.ProfileFor(best)
	if !ok {
		return "", fmt.Errorf("no profile for target %s", best)
	}
	return profile, nil
}

// Render formats the result as a table sorted ascending by latency.
func Render(r *Result, cat *catalog.Catalog) string {
	type row struct {
		name   string
		target string
		ms     float64
	}

	rows := make([]row, 0, r.Len())
	for _, target := range r.Targets() {
		ms, _ := r.Latency(target)
		name := target
		if profile, ok := cat.ProfileFor(target); ok {
			name = catalog.DisplayName(profile)
		}
		rows = append(rows, row{name: name, target: target, ms: ms})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ms < rows[j].ms
	})

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTARGET\tPING (MS)")
	fmt.Fprintln(w, "----\t------\t---------")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%.2f\n", row.name, row.target, row.ms)
	}
	w.Flush()
	return sb.String()
}
