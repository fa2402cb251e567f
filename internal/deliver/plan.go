package deliver

import (
	"slices"

	"github.com/soltixdb/roly/internal/layout"
)

// Plan lists the files and baskets one read touches
type Plan struct {
	Column      string
	ColumnIndex int
	Start       uint64
	Stop        uint64
	Files       []FilePlan
}

// FilePlan is the part of a read served by one file
type FilePlan struct {
	Index    int
	Location string
	Branch   *layout.Branch

	// EntryStart and EntryStop are file-local
	EntryStart uint64
	EntryStop  uint64
	Baskets    []BasketPlan
}

// BasketPlan is one touched basket and the basket-local entries read
// from it
type BasketPlan struct {
	layout.Basket
	LocalStart uint64
	LocalStop  uint64
}

// NumBaskets returns the number of touched baskets across all files
func (p *Plan) NumBaskets() int {
	n := 0
	for _, f := range p.Files {
		n += len(f.Baskets)
	}
	return n
}

// NumEntries returns the number of entries the read returns
func (p *Plan) NumEntries() uint64 {
	return p.Stop - p.Start
}

// normalizeRange applies negative indices relative to numEntries and
// checks 0 <= start < numEntries, 0 <= stop <= numEntries, start <= stop
func normalizeRange(start, stop int64, numEntries uint64) (uint64, uint64, error) {
	n := int64(numEntries)
	s, e := start, stop
	if s < 0 {
		s += n
	}
	if e < 0 {
		e += n
	}
	switch {
	case s < 0 || s >= n:
		return 0, 0, &RangeError{Start: start, Stop: stop, NumEntries: numEntries, Reason: "start out of bounds"}
	case e < 0 || e > n:
		return 0, 0, &RangeError{Start: start, Stop: stop, NumEntries: numEntries, Reason: "stop out of bounds"}
	case e < s:
		return 0, 0, &RangeError{Start: start, Stop: stop, NumEntries: numEntries, Reason: "stop before start"}
	}
	return uint64(s), uint64(e), nil
}

// partition returns the half-open index range of the partitions of
// offsets that overlap [start, stop), stepping back one partition when the
// insertion point of start lies past it.
func partition(offsets []uint64, start, stop uint64) (int, int) {
	first, _ := slices.BinarySearch(offsets, start)
	if first >= len(offsets) || offsets[first] > start {
		first--
	}
	last, _ := slices.BinarySearch(offsets, stop)
	return max(first, 0), last
}

// Resolve finds the files and baskets that hold entries [start, stop) of
// the named column. Negative indices count from the end.
func Resolve(ds *layout.Dataset, column string, start, stop int64) (*Plan, error) {
	col, ok := ds.ColumnIndex(column)
	if !ok {
		return nil, &UnknownColumnError{Column: column}
	}
	gStart, gStop, err := normalizeRange(start, stop, ds.NumEntries())
	if err != nil {
		return nil, err
	}

	plan := &Plan{Column: column, ColumnIndex: col, Start: gStart, Stop: gStop}
	if gStart == gStop {
		return plan, nil
	}

	global := ds.GlobalOffsets()
	fileStart, fileStop := partition(global, gStart, gStop)
	for i := fileStart; i < fileStop; i++ {
		fStart, fStop := ds.FileRange(i)
		localStart := max(gStart, fStart) - fStart
		localStop := min(gStop, fStop) - fStart
		if localStart >= localStop {
			continue
		}

		file, err := ds.File(i)
		if err != nil {
			return nil, err
		}
		branch, err := file.Branch(col)
		if err != nil {
			return nil, err
		}
		location := ds.FullLocation(file)
		if have := branch.NumEntries(); have < localStop {
			return nil, &MissingBranchDataError{Column: column, Location: location, Have: have, Need: fStop - fStart}
		}

		fp := FilePlan{Index: i, Location: location, Branch: branch, EntryStart: localStart, EntryStop: localStop}
		basketStart, basketStop := partition(branch.LocalOffsets(), localStart, localStop)
		for j := basketStart; j < basketStop; j++ {
			basket := branch.Basket(j)
			lo := max(localStart, basket.EntryStart) - basket.EntryStart
			hi := min(localStop, basket.EntryStop) - basket.EntryStart
			if lo >= hi {
				continue
			}
			fp.Baskets = append(fp.Baskets, BasketPlan{Basket: basket, LocalStart: lo, LocalStop: hi})
		}
		plan.Files = append(plan.Files, fp)
	}
	return plan, nil
}
