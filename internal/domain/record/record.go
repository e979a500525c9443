package record

import (
	"fmt"

	"github.com/samber/lo"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultBatchSize is the maximum number of records sent in one remote write.
const DefaultBatchSize = 100

// Record is one data item (roster entry, stat line, schedule entry) keyed by field name.
// Key order is insertion order and survives JSON encoding.
type Record = *orderedmap.OrderedMap[string, any]

func New() Record {
	return orderedmap.New[string, any]()
}

// FromPairs builds a record from alternating key/value arguments.
func FromPairs(kv ...any) Record {
	out := orderedmap.New[string, any](len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		if i+1 >= len(kv) {
			out.Set(key, nil)
			break
		}
		out.Set(key, kv[i+1])
	}
	return out
}

// Select projects r onto columns in the requested order. Columns absent from r are skipped.
func Select(r Record, columns []string) Record {
	if r == nil {
		return New()
	}
	if len(columns) == 0 {
		return r
	}

	out := orderedmap.New[string, any](len(columns))
	for _, column := range columns {
		if value, ok := r.Get(column); ok {
			out.Set(column, value)
		}
	}
	return out
}

func Keys(r Record) []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, r.Len())
	for pair := r.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Batches splits records into consecutive groups of at most size entries.
// Concatenating the groups yields records unchanged.
func Batches(records []Record, size int) [][]Record {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if len(records) == 0 {
		return nil
	}
	return lo.Chunk(records, size)
}
