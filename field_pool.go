package hashcode

import "github.com/delaneyj/toolbelt"

// fieldEntry pairs a map key with the code of its value while the
// entries wait to be sorted and folded.
type fieldEntry struct {
	key  string
	code uint32
}

var fieldEntryPool = toolbelt.New(func() []fieldEntry { return make([]fieldEntry, 0, 8) })

func getFieldEntries() []fieldEntry {
	return fieldEntryPool.Get()
}

func putFieldEntries(s []fieldEntry) {
	fieldEntryPool.Put(s[:0])
}
