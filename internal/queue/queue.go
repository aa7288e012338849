// Package queue owns the ordered track list and the current-position
// pointer. Every mutation is all-or-nothing and re-clamps the current
// index, so the invariant holds after each operation: an empty queue keeps
// index 0 (never dereferenced), a non-empty queue keeps 0 <= index < len.
package queue

import (
	"math/rand/v2"
	"slices"

	"github.com/llehouerou/crest/internal/catalog"
)

// Queue holds an ordered collection of tracks and the current index.
// Duplicate ids are permitted; merge operations dedupe at the call site.
type Queue struct {
	tracks  []catalog.Track
	current int
}

// New creates a new empty queue.
func New() *Queue {
	return &Queue{tracks: make([]catalog.Track, 0)}
}

// Len returns the number of tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// CurrentIndex returns the current index (0 for an empty queue).
func (q *Queue) CurrentIndex() int {
	return q.current
}

// Current returns the current track. ok is false for an empty queue.
func (q *Queue) Current() (t catalog.Track, ok bool) {
	if len(q.tracks) == 0 {
		return catalog.Track{}, false
	}
	return q.tracks[q.current], true
}

// Tracks returns a copy of all tracks.
func (q *Queue) Tracks() []catalog.Track {
	out := make([]catalog.Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}

// At returns the track at index i. ok is false if out of bounds.
func (q *Queue) At(i int) (t catalog.Track, ok bool) {
	if i < 0 || i >= len(q.tracks) {
		return catalog.Track{}, false
	}
	return q.tracks[i], true
}

// ContainsID reports whether any track in the queue has the given id.
func (q *Queue) ContainsID(id string) bool {
	return slices.ContainsFunc(q.tracks, func(t catalog.Track) bool {
		return t.ID == id
	})
}

// RemainingAfterCurrent returns the number of tracks after the current one.
func (q *Queue) RemainingAfterCurrent() int {
	if len(q.tracks) == 0 {
		return 0
	}
	return len(q.tracks) - q.current - 1
}

// SetCurrent moves the current index. Returns false (no mutation) if the
// index is out of bounds.
func (q *Queue) SetCurrent(i int) bool {
	if i < 0 || i >= len(q.tracks) {
		return false
	}
	q.current = i
	return true
}

// Advance moves the current index forward by one. Returns false at the
// tail (no wraparound here; repeat policy lives above the queue).
func (q *Queue) Advance() bool {
	if q.current+1 >= len(q.tracks) {
		return false
	}
	q.current++
	return true
}

// Replace overwrites the queue and clamps startAt into the new bounds.
func (q *Queue) Replace(tracks []catalog.Track, startAt int) {
	q.tracks = make([]catalog.Track, len(tracks))
	copy(q.tracks, tracks)
	q.current = clampIndex(startAt, len(q.tracks))
}

// Append adds tracks to the end of the queue.
func (q *Queue) Append(tracks ...catalog.Track) {
	q.tracks = append(q.tracks, tracks...)
}

// InsertAfterCurrent inserts tracks right after the current one. On an
// empty queue the tracks become the whole queue with index 0.
func (q *Queue) InsertAfterCurrent(tracks []catalog.Track) {
	if len(tracks) == 0 {
		return
	}
	at := q.current + 1
	if at > len(q.tracks) {
		at = len(q.tracks)
	}
	if len(q.tracks) == 0 {
		at = 0
	}
	q.tracks = slices.Insert(q.tracks, at, tracks...)
}

// Remove deletes every track whose id is in ids. If the current track
// survives, the index follows it to its new position; otherwise the index
// is clamped into the remaining bounds.
func (q *Queue) Remove(ids map[string]struct{}) {
	if len(ids) == 0 || len(q.tracks) == 0 {
		return
	}

	kept := make([]catalog.Track, 0, len(q.tracks))
	newCurrent := -1
	removedBefore := 0
	for i, t := range q.tracks {
		if _, drop := ids[t.ID]; drop {
			if i < q.current {
				removedBefore++
			}
			continue
		}
		if i == q.current {
			newCurrent = len(kept)
		}
		kept = append(kept, t)
	}

	q.tracks = kept
	if newCurrent >= 0 {
		q.current = newCurrent
	} else {
		q.current = clampIndex(q.current-removedBefore, len(q.tracks))
	}
}

// ReorderByIDs rebuilds the queue in the given id order. Unknown ids are
// ignored; tracks absent from the order are dropped. The current track is
// re-resolved by id afterward, clamping if it was dropped.
func (q *Queue) ReorderByIDs(order []string) {
	if len(q.tracks) == 0 {
		return
	}

	currentID := q.tracks[q.current].ID

	// Duplicate ids are consumed front to back.
	remaining := make(map[string][]catalog.Track, len(q.tracks))
	for _, t := range q.tracks {
		remaining[t.ID] = append(remaining[t.ID], t)
	}

	rebuilt := make([]catalog.Track, 0, len(q.tracks))
	for _, id := range order {
		pool := remaining[id]
		if len(pool) == 0 {
			continue
		}
		rebuilt = append(rebuilt, pool[0])
		remaining[id] = pool[1:]
	}

	q.tracks = rebuilt
	q.current = q.resolveByID(currentID)
}

// Move performs a drag-style move of the tracks at indices to the given
// destination offset. The move is rejected (no mutation, returns false)
// when any moved index is the current index, when the destination equals
// the current index, or when any index is out of bounds.
func (q *Queue) Move(indices []int, to int) bool {
	if len(indices) == 0 {
		return false
	}
	if to < 0 || to > len(q.tracks) {
		return false
	}
	if to == q.current {
		return false
	}
	for _, i := range indices {
		if i < 0 || i >= len(q.tracks) {
			return false
		}
		if i == q.current {
			return false
		}
	}

	sorted := append([]int(nil), indices...)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	moving := make(map[int]struct{}, len(sorted))
	for _, i := range sorted {
		moving[i] = struct{}{}
	}

	moved := make([]catalog.Track, 0, len(sorted))
	rest := make([]catalog.Track, 0, len(q.tracks)-len(sorted))
	currentPos := -1
	insertAt := to
	for i, t := range q.tracks {
		if _, ok := moving[i]; ok {
			moved = append(moved, t)
			if i < to {
				insertAt--
			}
			continue
		}
		if i == q.current {
			currentPos = len(rest)
		}
		rest = append(rest, t)
	}

	if insertAt > len(rest) {
		insertAt = len(rest)
	}
	rebuilt := slices.Insert(rest, insertAt, moved...)

	// Re-resolve the current track's position after the splice.
	if currentPos >= insertAt {
		currentPos += len(moved)
	}

	q.tracks = rebuilt
	q.current = currentPos
	return true
}

// Shuffle randomly permutes the queue while pinning the current track at
// index 0, so "now playing" never moves during a user-invoked shuffle.
func (q *Queue) Shuffle(rng *rand.Rand) {
	if len(q.tracks) <= 1 {
		q.current = 0
		return
	}

	current := q.tracks[q.current]
	rest := make([]catalog.Track, 0, len(q.tracks)-1)
	rest = append(rest, q.tracks[:q.current]...)
	rest = append(rest, q.tracks[q.current+1:]...)

	rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})

	q.tracks = append([]catalog.Track{current}, rest...)
	q.current = 0
}

// ClearKeepingCurrent reduces the queue to just the current track, or to
// empty if there is none.
func (q *Queue) ClearKeepingCurrent() {
	if len(q.tracks) == 0 {
		q.current = 0
		return
	}
	q.tracks = []catalog.Track{q.tracks[q.current]}
	q.current = 0
}

// Clear removes all tracks and resets the index.
func (q *Queue) Clear() {
	q.tracks = q.tracks[:0]
	q.current = 0
}

// ReplaceAt swaps the track at index i for a richer copy. Returns false
// if out of bounds.
func (q *Queue) ReplaceAt(i int, t catalog.Track) bool {
	if i < 0 || i >= len(q.tracks) {
		return false
	}
	q.tracks[i] = t
	return true
}

// IndexOfID returns the first index holding the given id, or -1.
func (q *Queue) IndexOfID(id string) int {
	return slices.IndexFunc(q.tracks, func(t catalog.Track) bool {
		return t.ID == id
	})
}

// IDs returns the queue's track id sequence.
func (q *Queue) IDs() []string {
	ids := make([]string, len(q.tracks))
	for i, t := range q.tracks {
		ids[i] = t.ID
	}
	return ids
}

func (q *Queue) resolveByID(id string) int {
	if i := q.IndexOfID(id); i >= 0 {
		return i
	}
	return clampIndex(q.current, len(q.tracks))
}

func clampIndex(i, n int) int {
	if n == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
