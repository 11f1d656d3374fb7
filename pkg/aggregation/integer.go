package aggregation

import (
	"math"
	"sync"

	"heapstore/pkg/dberr"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
	"heapstore/pkg/types"
)

type intGroupState struct {
	min, max, sum, count int32
}

func newIntGroupState() *intGroupState {
	return &intGroupState{min: math.MaxInt32, max: math.MinInt32}
}

// IntegerAggregator groups on an optional field and computes MIN, MAX, SUM,
// AVG or COUNT over an integer field.
type IntegerAggregator struct {
	mu sync.RWMutex

	groupByField   int
	groupFieldType types.FieldType
	aggField       int
	op             Op

	groups      map[string]*intGroupState
	groupValues map[string]types.Field
	order       []string

	tupleDesc *tuple.TupleDescription
}

// NewIntAggregator builds an IntegerAggregator. groupByField may be
// NoGrouping.
func NewIntAggregator(groupByField int, groupFieldType types.FieldType, aggField int, op Op) *IntegerAggregator {
	return &IntegerAggregator{
		groupByField:   groupByField,
		groupFieldType: groupFieldType,
		aggField:       aggField,
		op:             op,
		groups:         make(map[string]*intGroupState),
		groupValues:    make(map[string]types.Field),
		tupleDesc:      buildTupleDesc(groupByField, groupFieldType),
	}
}

// Merge folds t's aggregate field into its group's running state.
func (a *IntegerAggregator) Merge(t *tuple.Tuple) error {
	key, groupField, err := a.groupKey(t)
	if err != nil {
		return err
	}

	valueField, ok := t.GetField(a.aggField).(*types.IntField)
	if !ok {
		return dberr.NewIllegalArgument("Merge", "aggregate field is not an INT field")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	gs, exists := a.groups[key]
	if !exists {
		gs = newIntGroupState()
		a.groups[key] = gs
		a.groupValues[key] = groupField
		a.order = append(a.order, key)
	}

	switch a.op {
	case Min:
		if valueField.Value < gs.min {
			gs.min = valueField.Value
		}
	case Max:
		if valueField.Value > gs.max {
			gs.max = valueField.Value
		}
	case Sum:
		gs.sum += valueField.Value
	case Avg:
		gs.sum += valueField.Value
		gs.count++
	case Count:
		gs.count++
	}
	return nil
}

func (a *IntegerAggregator) groupKey(t *tuple.Tuple) (string, types.Field, error) {
	if a.groupByField == NoGrouping {
		return NoGroupingKey, nil, nil
	}
	groupField := t.GetField(a.groupByField)
	if !groupField.Type().Equal(a.groupFieldType) {
		return "", nil, dberr.NewIllegalArgument("Merge", "group-by field type does not match configured type")
	}
	return groupField.String(), groupField, nil
}

func (a *IntegerAggregator) aggregateValue(key string) int32 {
	gs := a.groups[key]
	switch a.op {
	case Min:
		return gs.min
	case Max:
		return gs.max
	case Sum:
		return gs.sum
	case Avg:
		if gs.count == 0 {
			return 0
		}
		return gs.sum / gs.count
	case Count:
		return gs.count
	default:
		return 0
	}
}

// GetTupleDesc returns the output schema: (groupVal, aggregateVal) or just
// (aggregateVal) when ungrouped.
func (a *IntegerAggregator) GetTupleDesc() *tuple.TupleDescription { return a.tupleDesc }

// Iterator returns one output tuple per group.
func (a *IntegerAggregator) Iterator() page.DbIterator {
	return newAggregatorIterator(a)
}

func (a *IntegerAggregator) rLock()   { a.mu.RLock() }
func (a *IntegerAggregator) rUnlock() { a.mu.RUnlock() }

func (a *IntegerAggregator) getGroups() []string {
	return append([]string{}, a.order...)
}

func (a *IntegerAggregator) getGroupValue(key string) types.Field {
	return a.groupValues[key]
}

func (a *IntegerAggregator) getAggregateValue(key string) int32 {
	return a.aggregateValue(key)
}

func (a *IntegerAggregator) isGrouped() bool {
	return a.groupByField != NoGrouping
}
