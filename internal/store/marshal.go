package store

import (
	"fmt"

	"github.com/roach88/motif/internal/ir"
)

// marshalAttrs converts a relation row to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalAttrs(row ir.IRObject) (string, error) {
	data, err := ir.MarshalCanonical(row)
	if err != nil {
		return "", fmt.Errorf("marshal attrs: %w", err)
	}
	return string(data), nil
}

// DecodeBundle parses an attrs value read back from SQLite into the row
// object it was written from. Integers keep full precision.
func DecodeBundle(raw any) (ir.IRObject, error) {
	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return nil, fmt.Errorf("decode bundle: expected TEXT, got %T", raw)
	}

	val, err := ir.UnmarshalIRValue(data)
	if err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	obj, ok := val.(ir.IRObject)
	if !ok {
		return nil, fmt.Errorf("decode bundle: expected object, got %s", ir.KindOf(val))
	}
	return obj, nil
}

// DecodeKey converts a raw key column value (id, src, dst, rid) to an
// IRValue. SQL NULL becomes IRNull.
func DecodeKey(raw any) (ir.IRValue, error) {
	switch v := raw.(type) {
	case nil:
		return ir.IRNull{}, nil
	case int64:
		return ir.IRInt(v), nil
	case string:
		return ir.IRString(v), nil
	case []byte:
		return ir.IRString(string(v)), nil
	default:
		return nil, fmt.Errorf("decode key: unsupported column type %T", raw)
	}
}
