package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	// ErrNotFound is returned by Increment when the record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConditionFailed is returned by Transact when any condition does not hold.
	// Nothing is written in that case.
	ErrConditionFailed = errors.New("transaction condition failed")
)

// Key addresses one record: partition key + sort key.
type Key struct {
	PK string
	SK string
}

func (k Key) String() string {
	return k.PK + "|" + k.SK
}

// Item is a record with free-form attributes. Numeric attributes come back
// as float64 from every backend, use AttrInt to read them.
type Item struct {
	PK    string
	SK    string
	Attrs map[string]any
}

func (i Item) Key() Key {
	return Key{PK: i.PK, SK: i.SK}
}

// Store is the single-table key-value abstraction the booking core runs on.
type Store interface {
	// Get returns nil, nil when the record is absent.
	Get(ctx context.Context, key Key) (*Item, error)
	Put(ctx context.Context, item Item) error
	Query(ctx context.Context, pk string) ([]Item, error)
	// Increment atomically adds delta to an integer attribute and returns the new value.
	Increment(ctx context.Context, key Key, field string, delta int64) (int64, error)
	Delete(ctx context.Context, key Key) error
	// Transact applies all ops atomically or none of them.
	Transact(ctx context.Context, ops []Op) error
	Ping(ctx context.Context) error
	Close()
}

type OpKind string

const (
	OpPut       OpKind = "put"
	OpDelete    OpKind = "delete"
	OpIncrement OpKind = "incr"
)

// Bounds constrain the post-increment value: Min <= value, and when MaxField
// is set, value <= Attrs[MaxField] of the same record.
type Bounds struct {
	Min      int64
	MaxField string
}

// Expect requires Attrs[Field] of the current record to equal Value.
// A missing field reads as 0.
type Expect struct {
	Field string
	Value int64
}

type Op struct {
	Kind OpKind
	// Item is used by OpPut.
	Item Item
	// Key is used by OpDelete and OpIncrement.
	Key       Key
	Field     string
	Delta     int64
	Bounds    *Bounds
	MustExist bool
	Expect    *Expect
	// Bump names an integer field raised by one when an increment applies.
	Bump string
}

// Expecting returns a copy of op guarded by Attrs[field] == value.
func (op Op) Expecting(field string, value int64) Op {
	op.Expect = &Expect{Field: field, Value: value}
	return op
}

// Bumping returns a copy of op that also raises field by one.
func (op Op) Bumping(field string) Op {
	op.Bump = field
	return op
}

func PutOp(item Item) Op {
	return Op{Kind: OpPut, Item: item, Key: item.Key()}
}

// ReplaceOp is a put that fails when the record is gone.
func ReplaceOp(item Item) Op {
	op := PutOp(item)
	op.MustExist = true
	return op
}

func DeleteOp(key Key) Op {
	return Op{Kind: OpDelete, Key: key, MustExist: true}
}

func IncrementOp(key Key, field string, delta int64, bounds *Bounds) Op {
	return Op{Kind: OpIncrement, Key: key, Field: field, Delta: delta, Bounds: bounds, MustExist: true}
}

// ConditionKind tells which condition of an op did not hold.
type ConditionKind string

const (
	ConditionMissing ConditionKind = "missing"
	ConditionStale   ConditionKind = "stale"
	ConditionBounds  ConditionKind = "bounds"
)

// ConditionError tells which op of a transaction failed its condition.
type ConditionError struct {
	Index  int
	Key    Key
	Kind   ConditionKind
	Reason string
}

func (e *ConditionError) Error() string {
	return fmt.Sprintf("op %d on %s: %s", e.Index, e.Key, e.Reason)
}

func (e *ConditionError) Unwrap() error {
	return ErrConditionFailed
}

// AsConditionError extracts a *ConditionError from err, nil otherwise.
func AsConditionError(err error) *ConditionError {
	var condErr *ConditionError
	if errors.As(err, &condErr) {
		return condErr
	}
	return nil
}

// AttrInt reads an integer attribute regardless of how the backend decoded it.
func AttrInt(attrs map[string]any, field string) int64 {
	switch v := attrs[field].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(math.Round(v))
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

// EncodeAttrs flattens any JSON-tagged struct into an attribute map.
func EncodeAttrs(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal attrs: %w", err)
	}

	attrs := make(map[string]any)
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, fmt.Errorf("unmarshal attrs: %w", err)
	}
	return attrs, nil
}

// DecodeAttrs fills a JSON-tagged struct from an attribute map.
func DecodeAttrs(attrs map[string]any, v any) error {
	raw, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal attrs: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal attrs: %w", err)
	}
	return nil
}

// checkOp evaluates every condition of op against the current record.
// It returns nil when the op may apply.
func checkOp(index int, op Op, attrs map[string]any, exists bool) *ConditionError {
	fail := func(kind ConditionKind, format string, args ...any) *ConditionError {
		return &ConditionError{Index: index, Key: op.Key, Kind: kind, Reason: fmt.Sprintf(format, args...)}
	}

	if op.MustExist && !exists {
		return fail(ConditionMissing, "record does not exist")
	}
	if op.Expect != nil {
		if current := AttrInt(attrs, op.Expect.Field); current != op.Expect.Value {
			return fail(ConditionStale, "%s is %d, expected %d", op.Expect.Field, current, op.Expect.Value)
		}
	}
	if op.Kind != OpIncrement || op.Bounds == nil {
		return nil
	}

	next := AttrInt(attrs, op.Field) + op.Delta
	if next < op.Bounds.Min {
		return fail(ConditionBounds, "%s would drop to %d, below %d", op.Field, next, op.Bounds.Min)
	}
	if op.Bounds.MaxField != "" {
		ceiling := AttrInt(attrs, op.Bounds.MaxField)
		if next > ceiling {
			return fail(ConditionBounds, "%s would reach %d, above %s %d", op.Field, next, op.Bounds.MaxField, ceiling)
		}
	}
	return nil
}
