package cpu

// UNKNOWN_TEXT is the disassembly of a word no entry matches.
const UNKNOWN_TEXT = "????"

// Behavior executes and disassembles one family of instructions.
type Behavior interface {
	// Execute the instruction against the machine. A returned error
	// halts the machine; the behavior must not have mutated it.
	Execute(m *Machine, w Word) error
	// Disassemble renders the instruction as assembler text.
	Disassemble(w Word) string
}

// Entry matches an instruction word when (word & Mask) == Value.
type Entry struct {
	Mask  uint16
	Value uint16
	Behavior
}

// Match reports if the entry applies to the word.
func (e *Entry) Match(w Word) bool {
	return uint16(w)&e.Mask == e.Value
}

// CatchAll is true for entries that match every word of their bucket.
func (e *Entry) CatchAll() bool {
	return e.Mask == 0
}

// Bucket is the ordered list of entries sharing one high nibble.
type Bucket struct {
	Key     uint8
	Entries []Entry
}

// Table is an immutable instruction decoder, safe for concurrent reads.
type Table struct {
	bucket [16][]Entry
}

// NewTableFrom builds a table from buckets. Entries are tried in the
// order given; a catch-all entry must be the last of its bucket.
func NewTableFrom(buckets ...Bucket) (table *Table, err error) {
	table = &Table{}
	for _, bucket := range buckets {
		if bucket.Key > 0xF {
			err = ErrTableBucket
			return
		}
		list := append(table.bucket[bucket.Key], bucket.Entries...)
		for n := range list {
			entry := &list[n]
			if entry.CatchAll() && n != len(list)-1 {
				err = ErrTableOrder
				return
			}
			if entry.Mask&0xF000 == 0xF000 && uint8(entry.Value>>12) != bucket.Key {
				err = ErrTableBucket
				return
			}
		}
		table.bucket[bucket.Key] = list
	}

	return
}

// NewTable builds the standard instruction table.
func NewTable() *Table {
	table, err := NewTableFrom(standardBuckets()...)
	if err != nil {
		panic(err)
	}

	return table
}

// Lookup finds the first entry matching the word.
func (t *Table) Lookup(w Word) (entry *Entry, ok bool) {
	list := t.bucket[w.Bucket()]
	for n := range list {
		if list[n].Match(w) {
			return &list[n], true
		}
	}

	return
}

// Disassemble renders a word as assembler text. Words matching no entry
// render as UNKNOWN_TEXT.
func (t *Table) Disassemble(w Word) string {
	entry, ok := t.Lookup(w)
	if !ok {
		return UNKNOWN_TEXT
	}

	return entry.Disassemble(w)
}

// Listing linearly disassembles an image loaded at base. An odd trailing
// byte is decoded as the high byte of a word.
func (t *Table) Listing(base uint16, image []byte) (lines []Line) {
	for offset := 0; offset < len(image); offset += 2 {
		w := Word(image[offset]) << 8
		if offset+1 < len(image) {
			w |= Word(image[offset+1])
		}
		lines = append(lines, Line{
			Address: base + uint16(offset),
			Word:    w,
			Text:    t.Disassemble(w),
		})
	}

	return
}
