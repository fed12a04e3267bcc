package snapshot

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// missing marks the absent side of a one-sided difference (a key present in
// only one of the compared trees).
type missing struct{}

func (missing) String() string { return "<missing>" }

// Difference is a single location where recorded and observed values diverge.
type Difference struct {
	// Path is a collapsed JSONPath-style rendering of the location, e.g.
	// "$..Records..SomeKey".
	Path     string
	Recorded any
	Observed any
}

// MatchResult is the comparison outcome for one assertion key.
type MatchResult struct {
	Key         string
	Recorded    any
	Observed    any
	Differences []Difference
}

// Equal reports whether the recorded and observed values matched.
func (r *MatchResult) Equal() bool { return len(r.Differences) == 0 }

// String renders every collected difference, one line per location.
func (r *MatchResult) String() string {
	if r.Equal() {
		return fmt.Sprintf("%s: ok", r.Key)
	}
	var b strings.Builder
	for i := range r.Differences {
		d := &r.Differences[i]
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: mismatch at %q: recorded %s != observed %s",
			r.Key, d.Path, renderValue(d.Recorded), renderValue(d.Observed))
	}
	return b.String()
}

// compareStates diffs two trees structurally, collecting every difference
// instead of stopping at the first.
func compareStates(key string, recorded, observed any) MatchResult {
	res := MatchResult{Key: key, Recorded: recorded, Observed: observed}
	rep := &diffReporter{}
	cmp.Equal(recorded, observed, cmp.Reporter(rep))
	res.Differences = rep.diffs
	return res
}

// diffReporter collects differences with their concrete paths while go-cmp
// walks the two trees.
type diffReporter struct {
	path  cmp.Path
	diffs []Difference
}

func (r *diffReporter) PushStep(ps cmp.PathStep) { r.path = append(r.path, ps) }

func (r *diffReporter) PopStep() { r.path = r.path[:len(r.path)-1] }

func (r *diffReporter) Report(rs cmp.Result) {
	if rs.Equal() {
		return
	}
	vx, vy := r.path.Last().Values()
	d := Difference{Path: formatJSONPath(pathSegments(r.path))}
	if vx.IsValid() {
		d.Recorded = vx.Interface()
	} else {
		d.Recorded = missing{}
	}
	if vy.IsValid() {
		d.Observed = vy.Interface()
	} else {
		d.Observed = missing{}
	}
	r.diffs = append(r.diffs, d)
}

// pathSegments reduces a go-cmp path to plain map-key and list-index segments.
func pathSegments(p cmp.Path) []any {
	segs := make([]any, 0, len(p))
	for _, step := range p {
		switch s := step.(type) {
		case cmp.MapIndex:
			segs = append(segs, fmt.Sprint(s.Key().Interface()))
		case cmp.SliceIndex:
			i, j := s.SplitKeys()
			if i >= 0 {
				segs = append(segs, i)
			} else {
				segs = append(segs, j)
			}
		}
	}
	return segs
}

// formatJSONPath collapses a concrete segment chain into the $.. notation
// used in failure reports: list indices are dropped, and a key that followed
// a dropped index joins with ".." since its exact position is not stated.
func formatJSONPath(segs []any) string {
	out := "$.."
	lastWasIndex := false
	for _, seg := range segs {
		switch s := seg.(type) {
		case int:
			lastWasIndex = true
		case string:
			switch {
			case strings.HasSuffix(out, ".."):
				out += s
			case lastWasIndex:
				out += ".." + s
			default:
				out += "." + s
			}
			lastWasIndex = false
		}
	}
	return out
}

func renderValue(v any) string {
	if _, ok := v.(missing); ok {
		return "<missing>"
	}
	text, err := encodeState(v, "")
	if err != nil {
		return fmt.Sprint(v)
	}
	return text
}
