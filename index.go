package framez

import (
	"errors"
	"time"
)

// IndexKind identifies how the rows of a frame or series are indexed.
type IndexKind uint8

// Index variants. The variant is fixed at construction; derived values
// (concatenations, slices) keep the variant of their inputs.
const (
	// IndexOrdinal rows are numbered by arrival position.
	IndexOrdinal IndexKind = iota

	// IndexLabel rows are keyed by opaque labels (column names of a
	// per-column summary, group keys of a grouped table).
	IndexLabel

	// IndexTime rows carry timestamps. Required for duration windows.
	// Timestamps are assumed non-decreasing across batches; this is a
	// documented caller obligation and is not validated.
	IndexTime
)

// Index locates the rows of a frame or series. It is a closed variant:
// ordinal, label, or time.
type Index struct {
	kind   IndexKind
	n      int
	labels []string
	times  []time.Time
}

// OrdinalIndex returns an index of n position-numbered rows.
func OrdinalIndex(n int) Index {
	if n < 0 {
		n = 0
	}
	return Index{kind: IndexOrdinal, n: n}
}

// LabelIndex returns an index keyed by the given labels.
func LabelIndex(labels ...string) Index {
	ls := make([]string, len(labels))
	copy(ls, labels)
	return Index{kind: IndexLabel, labels: ls}
}

// TimeIndex returns an index keyed by the given timestamps.
func TimeIndex(times ...time.Time) Index {
	ts := make([]time.Time, len(times))
	copy(ts, times)
	return Index{kind: IndexTime, times: ts}
}

// Kind returns the index variant.
func (ix Index) Kind() IndexKind { return ix.kind }

// Len returns the number of rows the index covers.
func (ix Index) Len() int {
	switch ix.kind {
	case IndexLabel:
		return len(ix.labels)
	case IndexTime:
		return len(ix.times)
	default:
		return ix.n
	}
}

// Labels returns a copy of the labels of a label index (nil otherwise).
func (ix Index) Labels() []string {
	if ix.kind != IndexLabel {
		return nil
	}
	ls := make([]string, len(ix.labels))
	copy(ls, ix.labels)
	return ls
}

// Times returns a copy of the timestamps of a time index (nil otherwise).
func (ix Index) Times() []time.Time {
	if ix.kind != IndexTime {
		return nil
	}
	ts := make([]time.Time, len(ix.times))
	copy(ts, ix.times)
	return ts
}

// Time returns the timestamp at position i of a time index.
func (ix Index) Time(i int) time.Time {
	return ix.times[i]
}

// Label returns the label at position i of a label index.
func (ix Index) Label(i int) string {
	return ix.labels[i]
}

var errIndexKindMismatch = errors.New("cannot concatenate indexes of different kinds")

// concat appends other to ix, preserving arrival order.
func (ix Index) concat(other Index) (Index, error) {
	if ix.Len() == 0 {
		return other, nil
	}
	if other.Len() == 0 {
		return ix, nil
	}
	if ix.kind != other.kind {
		return Index{}, errIndexKindMismatch
	}
	switch ix.kind {
	case IndexLabel:
		return LabelIndex(append(ix.Labels(), other.labels...)...), nil
	case IndexTime:
		return TimeIndex(append(ix.Times(), other.times...)...), nil
	default:
		return OrdinalIndex(ix.n + other.n), nil
	}
}

// slice returns the suffix of the index starting at position from.
func (ix Index) slice(from int) Index {
	n := ix.Len()
	if from < 0 {
		from = 0
	}
	if from > n {
		from = n
	}
	switch ix.kind {
	case IndexLabel:
		return LabelIndex(ix.labels[from:]...)
	case IndexTime:
		return TimeIndex(ix.times[from:]...)
	default:
		return OrdinalIndex(n - from)
	}
}

// tail returns the last n rows of the index.
func (ix Index) tail(n int) Index {
	l := ix.Len()
	if n >= l {
		return ix
	}
	return ix.slice(l - n)
}

// maxTime returns the newest timestamp of a time index. Rows are assumed
// time-ordered, so this is the last entry.
func (ix Index) maxTime() time.Time {
	if ix.kind != IndexTime || len(ix.times) == 0 {
		return time.Time{}
	}
	return ix.times[len(ix.times)-1]
}

// sincePos returns the first position whose timestamp is at or after t.
func (ix Index) sincePos(t time.Time) int {
	for i, ts := range ix.times {
		if !ts.Before(t) {
			return i
		}
	}
	return len(ix.times)
}
