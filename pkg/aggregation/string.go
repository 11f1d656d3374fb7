package aggregation

import (
	"sync"

	"heapstore/pkg/dberr"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
	"heapstore/pkg/types"
)

// StringAggregator groups on an optional field and computes COUNT over a
// string field. Any other operator is rejected at construction.
type StringAggregator struct {
	mu sync.RWMutex

	groupByField   int
	groupFieldType types.FieldType
	aggField       int

	counts      map[string]int32
	groupValues map[string]types.Field
	order       []string

	tupleDesc *tuple.TupleDescription
}

// NewStringAggregator builds a StringAggregator. op must be Count; any
// other operator fails since string aggregation supports nothing else.
func NewStringAggregator(groupByField int, groupFieldType types.FieldType, aggField int, op Op) (*StringAggregator, error) {
	if op != Count {
		return nil, dberr.NewUnsupportedOperation("NewStringAggregator", "string aggregator supports only COUNT")
	}
	return &StringAggregator{
		groupByField:   groupByField,
		groupFieldType: groupFieldType,
		aggField:       aggField,
		counts:         make(map[string]int32),
		groupValues:    make(map[string]types.Field),
		tupleDesc:      buildTupleDesc(groupByField, groupFieldType),
	}, nil
}

// Merge increments t's group's count.
func (a *StringAggregator) Merge(t *tuple.Tuple) error {
	key, groupField, err := a.groupKey(t)
	if err != nil {
		return err
	}
	if _, ok := t.GetField(a.aggField).(*types.StringField); !ok {
		return dberr.NewIllegalArgument("Merge", "aggregate field is not a STRING field")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.counts[key]; !exists {
		a.groupValues[key] = groupField
		a.order = append(a.order, key)
	}
	a.counts[key]++
	return nil
}

func (a *StringAggregator) groupKey(t *tuple.Tuple) (string, types.Field, error) {
	if a.groupByField == NoGrouping {
		return NoGroupingKey, nil, nil
	}
	groupField := t.GetField(a.groupByField)
	if !groupField.Type().Equal(a.groupFieldType) {
		return "", nil, dberr.NewIllegalArgument("Merge", "group-by field type does not match configured type")
	}
	return groupField.String(), groupField, nil
}

func (a *StringAggregator) GetTupleDesc() *tuple.TupleDescription { return a.tupleDesc }

func (a *StringAggregator) Iterator() page.DbIterator {
	return newAggregatorIterator(a)
}

func (a *StringAggregator) rLock()   { a.mu.RLock() }
func (a *StringAggregator) rUnlock() { a.mu.RUnlock() }

func (a *StringAggregator) getGroups() []string {
	return append([]string{}, a.order...)
}

func (a *StringAggregator) getGroupValue(key string) types.Field {
	return a.groupValues[key]
}

func (a *StringAggregator) getAggregateValue(key string) int32 {
	return a.counts[key]
}

func (a *StringAggregator) isGrouped() bool {
	return a.groupByField != NoGrouping
}
