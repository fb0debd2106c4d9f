package generator

import (
	"strconv"
)

// Constant pool tags
const (
	TagUtf8    = 1
	TagInteger = 3
	TagFloat   = 4
	TagLong    = 5
	TagDouble  = 6
	TagClass   = 7
	TagString  = 8
)

// PoolEntry is one constant pool slot. Value holds the text of Utf8 entries
// and the decimal form of numeric ones; Refs point at other entries.
type PoolEntry struct {
	Tag   int
	Value string
	Refs  []int
}

// ConstantPool assigns stable, deduplicated indexes starting at 1. Long and
// double entries take two slots.
type ConstantPool struct {
	entries []*PoolEntry
	index   map[string]int
	next    int
}

// NewConstantPool creates an empty pool
func NewConstantPool() *ConstantPool {
	return &ConstantPool{index: make(map[string]int), next: 1}
}

func (p *ConstantPool) add(e *PoolEntry) int {
	key := strconv.Itoa(e.Tag) + ":" + e.Value
	for _, r := range e.Refs {
		key += ":" + strconv.Itoa(r)
	}
	if i, ok := p.index[key]; ok {
		return i
	}
	i := p.next
	p.entries = append(p.entries, e)
	p.index[key] = i
	p.next++
	if e.Tag == TagLong || e.Tag == TagDouble {
		p.next++
	}
	return i
}

// Utf8 adds a modified-UTF-8 string
func (p *ConstantPool) Utf8(s string) int {
	return p.add(&PoolEntry{Tag: TagUtf8, Value: s})
}

// Class adds a class reference by internal name
func (p *ConstantPool) Class(internal string) int {
	return p.add(&PoolEntry{Tag: TagClass, Refs: []int{p.Utf8(internal)}})
}

// String adds a string constant
func (p *ConstantPool) String(s string) int {
	return p.add(&PoolEntry{Tag: TagString, Refs: []int{p.Utf8(s)}})
}

// Integer adds an int constant
func (p *ConstantPool) Integer(v int32) int {
	return p.add(&PoolEntry{Tag: TagInteger, Value: strconv.FormatInt(int64(v), 10)})
}

// Long adds a long constant
func (p *ConstantPool) Long(v int64) int {
	return p.add(&PoolEntry{Tag: TagLong, Value: strconv.FormatInt(v, 10)})
}

// Float adds a float constant
func (p *ConstantPool) Float(v float32) int {
	return p.add(&PoolEntry{Tag: TagFloat, Value: strconv.FormatFloat(float64(v), 'g', -1, 32)})
}

// Double adds a double constant
func (p *ConstantPool) Double(v float64) int {
	return p.add(&PoolEntry{Tag: TagDouble, Value: strconv.FormatFloat(v, 'g', -1, 64)})
}

// Count is the constant_pool_count of the class file: one more than the
// highest index in use
func (p *ConstantPool) Count() int { return p.next }

// Entries returns the entries in index order; the second slot of long and
// double entries has no entry of its own
func (p *ConstantPool) Entries() []*PoolEntry { return p.entries }
