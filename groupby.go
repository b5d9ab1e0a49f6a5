package framez

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// GroupBy configures a grouped aggregation over a frame stream. The group
// key is either a fixed column of the stream itself or a second streaming
// key series paired batch-for-batch with the data stream. As with Rolling,
// choosing a verb wires the accumulator.
//
// Both grouped sum and grouped mean emit the complete running per-group
// table every step, so downstream consumers always see every group
// observed so far - groups untouched by the latest batch keep their
// previous aggregate. This costs O(distinct groups) per step regardless of
// batch size.
type GroupBy struct {
	sf     *StreamingFrame
	column string
	keys   *StreamingSeries
}

// Col narrows the grouped aggregation to a single numeric value column.
func (g *GroupBy) Col(name string) (*SeriesGroupBy, error) {
	field, ok := g.sf.schema.Field(name)
	if !ok || name == g.column {
		return nil, &UnknownColumnError{Column: name, Columns: g.valueColumns()}
	}
	if field.Kind != Float64 {
		return nil, errNotNumeric
	}
	return &SeriesGroupBy{g: g, col: name}, nil
}

// valueColumns returns the numeric columns the aggregation covers: every
// numeric column except a static grouping column.
func (g *GroupBy) valueColumns() []string {
	var cols []string
	for _, name := range g.sf.schema.NumericColumns() {
		if name != g.column {
			cols = append(cols, name)
		}
	}
	return cols
}

// Sum maintains a running per-group total for every value column. Groups
// absent from the running table are treated as zero when merged (outer
// union of group keys); groups absent from a batch are unchanged.
func (g *GroupBy) Sum() *StreamingFrame {
	cols := g.valueColumns()
	src := accumulate(g.keyed("groupby-sum"), "groupby-sum", newGroupTable(cols),
		func(state groupTable, kb keyedBatch) (groupTable, *Frame, error) {
			sums, _, err := groupBatch(kb.frame, kb.keys, cols)
			if err != nil {
				return state, nil, err
			}
			next := state.mergeAdd(sums)
			return next, next.frame(), nil
		})
	return derivedFrame(fieldsOf(cols), src)
}

// Mean maintains running per-group (sums, counts) for every value column
// and emits the full sums/counts table each step. Groups with a zero count
// in some column report NaN there.
func (g *GroupBy) Mean() *StreamingFrame {
	cols := g.valueColumns()
	start := groupedMeanState{sums: newGroupTable(cols), counts: newGroupTable(cols)}
	src := accumulate(g.keyed("groupby-mean"), "groupby-mean", start,
		func(state groupedMeanState, kb keyedBatch) (groupedMeanState, *Frame, error) {
			sums, counts, err := groupBatch(kb.frame, kb.keys, cols)
			if err != nil {
				return state, nil, err
			}
			next := groupedMeanState{
				sums:   state.sums.mergeAdd(sums),
				counts: state.counts.mergeAdd(counts),
			}
			return next, next.sums.divide(next.counts).frame(), nil
		})
	return derivedFrame(fieldsOf(cols), src)
}

// SeriesGroupBy is a GroupBy narrowed to one value column; its verbs emit
// series keyed by group.
type SeriesGroupBy struct {
	g   *GroupBy
	col string
}

// Sum maintains a running per-group total for the narrowed column.
func (sg *SeriesGroupBy) Sum() *StreamingSeries {
	cols := []string{sg.col}
	src := accumulate(sg.g.keyed("groupby-sum"), "groupby-sum:"+sg.col, newGroupTable(cols),
		func(state groupTable, kb keyedBatch) (groupTable, *Series, error) {
			sums, _, err := groupBatch(kb.frame, kb.keys, cols)
			if err != nil {
				return state, nil, err
			}
			next := state.mergeAdd(sums)
			return next, next.series(sg.col), nil
		})
	return derivedSeries(Field{Name: sg.col, Kind: Float64}, src)
}

// Mean maintains running per-group (sums, counts) for the narrowed column.
func (sg *SeriesGroupBy) Mean() *StreamingSeries {
	cols := []string{sg.col}
	start := groupedMeanState{sums: newGroupTable(cols), counts: newGroupTable(cols)}
	src := accumulate(sg.g.keyed("groupby-mean"), "groupby-mean:"+sg.col, start,
		func(state groupedMeanState, kb keyedBatch) (groupedMeanState, *Series, error) {
			sums, counts, err := groupBatch(kb.frame, kb.keys, cols)
			if err != nil {
				return state, nil, err
			}
			next := groupedMeanState{
				sums:   state.sums.mergeAdd(sums),
				counts: state.counts.mergeAdd(counts),
			}
			return next, next.sums.divide(next.counts).series(sg.col), nil
		})
	return derivedSeries(Field{Name: sg.col, Kind: Float64}, src)
}

// keyedBatch pairs the rows of one arriving batch with their group keys.
// An empty key marks a row with a missing group; such rows are dropped.
type keyedBatch struct {
	frame *Frame
	keys  []string
}

// keyed normalizes the two grouper forms into a single stream of keyed
// batches. A static grouper reads keys from the frame's own column; a
// streaming grouper zips the data stream with the key stream, pairing the
// two element-for-element in arrival order.
func (g *GroupBy) keyed(name string) *stream[keyedBatch] {
	if g.keys == nil {
		column := g.column
		return mapStream(g.sf.src, name, func(b *Frame) (keyedBatch, error) {
			col, ok := b.column(column)
			if !ok {
				return keyedBatch{}, &UnknownColumnError{Column: column, Columns: b.Columns()}
			}
			return keyedBatch{frame: b, keys: columnKeys(col)}, nil
		})
	}
	zipped := zip2(g.sf.src, g.keys.src, name)
	return mapStream(zipped, name, func(p pair[*Frame, *Series]) (keyedBatch, error) {
		if p.b.Len() != p.a.Len() {
			return keyedBatch{}, fmt.Errorf("grouper has %d rows, batch has %d", p.b.Len(), p.a.Len())
		}
		return keyedBatch{frame: p.a, keys: seriesKeys(p.b)}, nil
	})
}

// columnKeys renders a column's cells as group keys. Numeric keys use the
// shortest exact formatting; NaN cells become the missing-key marker.
func columnKeys(c Column) []string {
	if c.kind == String {
		keys := make([]string, len(c.strs))
		copy(keys, c.strs)
		return keys
	}
	keys := make([]string, len(c.floats))
	for i, v := range c.floats {
		if math.IsNaN(v) {
			keys[i] = ""
			continue
		}
		keys[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return keys
}

func seriesKeys(s *Series) []string {
	return columnKeys(Column{name: s.name, kind: s.kind, floats: s.floats, strs: s.strs})
}

// groupBatch groups one batch's rows by key and reduces them to per-group
// per-column sums and observation counts. Rows with a missing key or a
// missing cell do not contribute.
func groupBatch(b *Frame, keys []string, cols []string) (sums, counts groupTable, err error) {
	if len(keys) != b.Len() {
		return groupTable{}, groupTable{}, fmt.Errorf("got %d keys for %d rows", len(keys), b.Len())
	}
	sums = newGroupTable(cols)
	counts = newGroupTable(cols)
	for j, name := range cols {
		col, ok := b.column(name)
		if !ok {
			return groupTable{}, groupTable{}, &UnknownColumnError{Column: name, Columns: b.Columns()}
		}
		for i, v := range col.floats {
			key := keys[i]
			if key == "" || math.IsNaN(v) {
				continue
			}
			sums.row(key)[j] += v
			counts.row(key)[j]++
		}
	}
	return sums, counts, nil
}

// groupedMeanState carries the running (sums, counts) tables of a grouped
// mean accumulator.
type groupedMeanState struct {
	sums   groupTable
	counts groupTable
}

// groupTable is a per-group aggregate table: one row of per-column values
// for each distinct group key. Tables are merged additively with an outer
// union of keys, treating a key absent on either side as a row of zeros.
type groupTable struct {
	cols   []string
	groups map[string][]float64
}

func newGroupTable(cols []string) groupTable {
	return groupTable{cols: cols, groups: map[string][]float64{}}
}

// row returns the values row for key, creating a zero row on first touch.
func (t groupTable) row(key string) []float64 {
	r, ok := t.groups[key]
	if !ok {
		r = make([]float64, len(t.cols))
		t.groups[key] = r
	}
	return r
}

// mergeAdd returns a new table combining the receiver and other with the
// outer-unioned additive merge. Neither input is modified; accumulator
// state stays value-semantic.
func (t groupTable) mergeAdd(other groupTable) groupTable {
	out := newGroupTable(t.cols)
	for key, row := range t.groups {
		nr := make([]float64, len(row))
		copy(nr, row)
		out.groups[key] = nr
	}
	for key, row := range other.groups {
		dst := out.row(key)
		for j, v := range row {
			dst[j] += v
		}
	}
	return out
}

// divide returns sums/counts elementwise, NaN where the count is zero.
func (t groupTable) divide(counts groupTable) groupTable {
	out := newGroupTable(t.cols)
	for key, row := range t.groups {
		cr := counts.groups[key]
		nr := make([]float64, len(row))
		for j, v := range row {
			if cr == nil || cr[j] == 0 {
				nr[j] = math.NaN()
			} else {
				nr[j] = v / cr[j]
			}
		}
		out.groups[key] = nr
	}
	return out
}

func (t groupTable) sortedKeys() []string {
	keys := make([]string, 0, len(t.groups))
	for key := range t.groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// frame renders the table as a label-indexed frame, groups sorted by key.
func (t groupTable) frame() *Frame {
	keys := t.sortedKeys()
	cols := make([]Column, len(t.cols))
	for j, name := range t.cols {
		vs := make([]float64, len(keys))
		for i, key := range keys {
			vs[i] = t.groups[key][j]
		}
		cols[j] = Column{name: name, kind: Float64, floats: vs}
	}
	return &Frame{index: LabelIndex(keys...), cols: cols}
}

// series renders a single-column table as a label-indexed series.
func (t groupTable) series(name string) *Series {
	j := 0
	for i, c := range t.cols {
		if c == name {
			j = i
		}
	}
	keys := t.sortedKeys()
	vs := make([]float64, len(keys))
	for i, key := range keys {
		vs[i] = t.groups[key][j]
	}
	return &Series{name: name, kind: Float64, index: LabelIndex(keys...), floats: vs}
}

// fieldsOf builds a numeric schema from ordered column names.
func fieldsOf(cols []string) Schema {
	fields := make([]Field, len(cols))
	for i, name := range cols {
		fields[i] = Field{Name: name, Kind: Float64}
	}
	return NewSchema(fields...)
}
