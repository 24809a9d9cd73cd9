package telemetry

import (
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log"
	"golang.org/x/exp/constraints"
)

// Attr is a key/value pair attached to spans, measurements and log records.
type Attr struct {
	kv attribute.KeyValue
}

// String returns a string attribute.
func String[T ~string](k string, v T) Attr {
	return Attr{attribute.String(k, string(v))}
}

// Bool returns a boolean attribute.
func Bool[T ~bool](k string, v T) Attr {
	return Attr{attribute.Bool(k, bool(v))}
}

// Int returns an integer attribute.
func Int[T constraints.Integer](k string, v T) Attr {
	return Attr{attribute.Int64(k, int64(v))}
}

// Type returns a string attribute naming the dynamic type of v, without any
// pointer indirection.
func Type(k string, v any) Attr {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return String(k, fmt.Sprint(t))
}

// maxCypherOctets is the number of octets of an obfuscated value that
// [Cypher] renders.
const maxCypherOctets = 64

// Cypher returns a string attribute containing obfuscated bytes as
// space-separated uppercase hexadecimal octets.
//
// Longer values are cut short and "_truncated" is appended to the key.
func Cypher(k string, v []byte) Attr {
	if len(v) > maxCypherOctets {
		k += "_truncated"
		v = v[:maxCypherOctets]
	}
	return String(k, fmt.Sprintf("% X", v))
}

func spanAttrs(attrs []Attr) []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, len(attrs))
	for i, a := range attrs {
		kvs[i] = a.kv
	}
	return kvs
}

func logAttrs(attrs []Attr) []log.KeyValue {
	kvs := make([]log.KeyValue, len(attrs))

	for i, a := range attrs {
		k := string(a.kv.Key)

		switch a.kv.Value.Type() {
		case attribute.BOOL:
			kvs[i] = log.Bool(k, a.kv.Value.AsBool())
		case attribute.INT64:
			kvs[i] = log.Int64(k, a.kv.Value.AsInt64())
		default:
			kvs[i] = log.String(k, a.kv.Value.Emit())
		}
	}

	return kvs
}
