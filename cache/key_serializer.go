package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// maxSegmentLen bounds a single parameter segment. Longer segments are
// replaced with an xxhash digest so key equality stays deterministic
// without letting filter-heavy queries produce unbounded keys.
const maxSegmentLen = 128

// KeySerializer turns read-operation parameters into stable key segments.
// Implementations must produce identical segments for structurally equal
// inputs across calls.
type KeySerializer interface {
	// Key builds a full cache key from a resource tag, a qualifier, and
	// the read's identifying parameters.
	Key(resource, qualifier string, args ...any) Key

	// Segment serializes a single value the same way Key would, so
	// invalidation prefixes line up with read keys.
	Segment(v any) string
}

// defaultKeySerializer serializes parameters via reflection: basic types
// verbatim, structs by exported field, maps with sorted keys, slices in
// order, with a JSON fallback for anything else.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

func (s *defaultKeySerializer) Key(resource, qualifier string, args ...any) Key {
	params := make([]string, 0, len(args))
	for _, arg := range args {
		params = append(params, s.Segment(arg))
	}
	return NewKey(resource, qualifier, params...)
}

func (s *defaultKeySerializer) Segment(v any) string {
	return capSegment(s.serializeValue(v))
}

// capSegment replaces oversized segments with a fixed-width digest.
func capSegment(seg string) string {
	if len(seg) <= maxSegmentLen {
		return seg
	}
	return fmt.Sprintf("h:%016x", xxhash.Sum64String(seg))
}

// serializeValue handles individual value serialization based on type.
func (s *defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	rt := reflect.TypeOf(v)

	switch rt.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())

	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return s.serializeList("slice", rv)

	case reflect.Array:
		return s.serializeList("array", rv)

	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return s.serializeMap(rv)

	case reflect.Struct:
		return s.serializeStruct(rv, rt)

	case reflect.Interface:
		if rv.IsNil() {
			return "interface:nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	}

	if isBasicKind(rt.Kind()) {
		return fmt.Sprintf("%v", v)
	}

	return s.jsonFallback(v)
}

// serializeList handles slices and arrays element by element.
func (s *defaultKeySerializer) serializeList(tag string, rv reflect.Value) string {
	length := rv.Len()
	parts := make([]string, length)
	for i := 0; i < length; i++ {
		parts[i] = s.serializeValue(rv.Index(i).Interface())
	}
	return fmt.Sprintf("%s[%d]:{%s}", tag, length, strings.Join(parts, ","))
}

// serializeMap sorts serialized keys so map iteration order never leaks
// into the cache key.
func (s *defaultKeySerializer) serializeMap(rv reflect.Value) string {
	keys := rv.MapKeys()

	type pair struct {
		key   string
		value string
	}
	pairs := make([]pair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, pair{
			key:   s.serializeValue(k.Interface()),
			value: s.serializeValue(rv.MapIndex(k).Interface()),
		})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	rendered := make([]string, len(pairs))
	for i, p := range pairs {
		rendered[i] = fmt.Sprintf("%s=%s", p.key, p.value)
	}
	return fmt.Sprintf("map[%d]:{%s}", len(rendered), strings.Join(rendered, ","))
}

// serializeStruct renders exported fields as snake_case name:value pairs.
// Field names are normalized so a renamed-but-equivalent params struct
// does not silently split the cache.
func (s *defaultKeySerializer) serializeStruct(rv reflect.Value, rt reflect.Type) string {
	numFields := rv.NumField()
	parts := make([]string, 0, numFields)

	for i := 0; i < numFields; i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		fieldValue := rv.Field(i)
		if !fieldValue.CanInterface() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%s", toSnake(field.Name), s.serializeValue(fieldValue.Interface())))
	}

	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
}

func isBasicKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	default:
		return false
	}
}

// jsonFallback provides JSON serialization as a last resort.
func (s *defaultKeySerializer) jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Keys must never fail to build; fall back to the type name.
		return fmt.Sprintf("fallback:%s", reflect.TypeOf(v).String())
	}
	return fmt.Sprintf("json:%s", string(data))
}
