package card

import (
	"fmt"

	"github.com/google/uuid"
)

// EntryKind classifies a worldbook entry by its role.
type EntryKind string

const (
	EntryStatus      EntryKind = "status"
	EntryUserSetting EntryKind = "user_setting"
	EntryWorldView   EntryKind = "world_view"
	EntrySupplement  EntryKind = "supplement"
	EntryUnknown     EntryKind = "unknown"
)

const (
	InsertOrderStatus      = 1
	InsertOrderUserSetting = 2
	InsertOrderWorldView   = 3
	// MinSupplementOrder is the floor for supplement insert_order values;
	// lower requests clamp up to it.
	MinSupplementOrder = 10

	PositionConstant   = 0
	PositionSupplement = 2

	// MinSupplements is the smallest number of supplement entries a complete
	// worldbook must carry.
	MinSupplements = 5
)

// WorldbookEntry is the worldbook export record consumed by downstream
// renderers. The kind of an entry is not stored; it is derived from the
// constant flag and insert_order (see Kind).
type WorldbookEntry struct {
	ID             string   `json:"id"`
	UID            int      `json:"uid"`
	Keys           []string `json:"keys"`
	KeySecondary   []string `json:"keysecondary"`
	Comment        string   `json:"comment"`
	Content        string   `json:"content"`
	Constant       bool     `json:"constant"`
	Selective      bool     `json:"selective"`
	InsertOrder    int      `json:"insert_order"`
	Position       int      `json:"position"`
	Disable        bool     `json:"disable"`
	Probability    int      `json:"probability"`
	UseProbability bool     `json:"useProbability"`
}

// Kind derives the entry kind from the invariant columns.
func (e WorldbookEntry) Kind() EntryKind {
	if e.Constant {
		switch e.InsertOrder {
		case InsertOrderStatus:
			return EntryStatus
		case InsertOrderUserSetting:
			return EntryUserSetting
		case InsertOrderWorldView:
			return EntryWorldView
		}
		return EntryUnknown
	}
	if e.InsertOrder >= MinSupplementOrder && e.Position == PositionSupplement {
		return EntrySupplement
	}
	return EntryUnknown
}

// Worldbook is an ordered collection of entries.
type Worldbook struct {
	Name    string           `json:"name"`
	Entries []WorldbookEntry `json:"entries"`
}

func (w *Worldbook) nextUID() int {
	max := 0
	for _, e := range w.Entries {
		if e.UID > max {
			max = e.UID
		}
	}
	return max + 1
}

// Find returns the first entry of the given kind, or nil.
func (w *Worldbook) Find(kind EntryKind) *WorldbookEntry {
	for i := range w.Entries {
		if w.Entries[i].Kind() == kind {
			return &w.Entries[i]
		}
	}
	return nil
}

// Count reports how many entries of the given kind exist.
func (w *Worldbook) Count(kind EntryKind) int {
	n := 0
	for i := range w.Entries {
		if w.Entries[i].Kind() == kind {
			n++
		}
	}
	return n
}

// SetConstant replaces (or inserts) the exactly-one entry for one of the
// three constant kinds. Calling it again with the same kind overwrites the
// previous content, keeping the cardinality invariant intact.
func (w *Worldbook) SetConstant(kind EntryKind, comment, content string) error {
	var order int
	switch kind {
	case EntryStatus:
		order = InsertOrderStatus
	case EntryUserSetting:
		order = InsertOrderUserSetting
	case EntryWorldView:
		order = InsertOrderWorldView
	default:
		return fmt.Errorf("kind %q is not a constant entry kind", kind)
	}

	if existing := w.Find(kind); existing != nil {
		existing.Comment = comment
		existing.Content = content
		return nil
	}

	w.Entries = append(w.Entries, WorldbookEntry{
		ID:             uuid.NewString(),
		UID:            w.nextUID(),
		Keys:           []string{},
		KeySecondary:   []string{},
		Comment:        comment,
		Content:        content,
		Constant:       true,
		Selective:      false,
		InsertOrder:    order,
		Position:       PositionConstant,
		Disable:        false,
		Probability:    100,
		UseProbability: true,
	})
	return nil
}

// AddSupplement appends a keyed supplement entry. insertOrder clamps up to
// MinSupplementOrder.
func (w *Worldbook) AddSupplement(keys []string, comment, content string, insertOrder int) (*WorldbookEntry, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("supplement entry requires at least one key")
	}
	if insertOrder < MinSupplementOrder {
		insertOrder = MinSupplementOrder
	}
	w.Entries = append(w.Entries, WorldbookEntry{
		ID:             uuid.NewString(),
		UID:            w.nextUID(),
		Keys:           keys,
		KeySecondary:   []string{},
		Comment:        comment,
		Content:        content,
		Constant:       false,
		Selective:      true,
		InsertOrder:    insertOrder,
		Position:       PositionSupplement,
		Disable:        false,
		Probability:    100,
		UseProbability: true,
	})
	return &w.Entries[len(w.Entries)-1], nil
}

// Validate checks the worldbook cardinality and column invariants.
func (w *Worldbook) Validate() error {
	for _, kind := range []EntryKind{EntryStatus, EntryUserSetting, EntryWorldView} {
		if n := w.Count(kind); n != 1 {
			return fmt.Errorf("worldbook must contain exactly 1 %s entry, found %d", kind, n)
		}
	}
	if n := w.Count(EntrySupplement); n < MinSupplements {
		return fmt.Errorf("worldbook must contain at least %d supplement entries, found %d", MinSupplements, n)
	}
	for _, e := range w.Entries {
		if e.Kind() == EntryUnknown {
			return fmt.Errorf("entry %q (uid %d) does not satisfy any entry kind invariant", e.Comment, e.UID)
		}
	}
	return nil
}
