// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package decode maps a *jsonh.Node value tree onto Go values by
// reflection, the way encoding/json's Unmarshal maps a decoded value onto
// a struct, map, slice, or primitive.
package decode

import (
	"fmt"
	"reflect"

	"github.com/creachadair/jsonh"
)

// Into decodes n into v, which must be a non-nil pointer. Struct fields may
// use a `jsonh:"name"` tag to select the property name to read; a tag of
// "-" skips the field; an untagged field matches its Go name with the first
// letter lowercased ("Tags" reads "tags"). Matching is exact and
// case-sensitive.
func Into(n *jsonh.Node, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode: Into requires a non-nil pointer, got %T", v)
	}
	return decodeValue(n, rv.Elem())
}

func decodeValue(n *jsonh.Node, dst reflect.Value) error {
	if n == nil || n.IsNull() {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	if dst.Kind() == reflect.Interface && dst.NumMethod() == 0 {
		val, err := toAny(n)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(val))
		return nil
	}

	switch n.Kind() {
	case jsonh.KindBool:
		if dst.Kind() != reflect.Bool {
			return fmt.Errorf("decode: cannot assign bool into %s", dst.Type())
		}
		dst.SetBool(n.Bool())

	case jsonh.KindString:
		if dst.Kind() != reflect.String {
			return fmt.Errorf("decode: cannot assign string into %s", dst.Type())
		}
		dst.SetString(n.Str())

	case jsonh.KindNumber:
		return decodeNumber(n, dst)

	case jsonh.KindArray:
		return decodeArray(n, dst)

	case jsonh.KindObject:
		return decodeObject(n, dst)
	}
	return nil
}

func decodeNumber(n *jsonh.Node, dst reflect.Value) error {
	switch dst.Kind() {
	case reflect.Float32, reflect.Float64:
		dst.SetFloat(n.Float64())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		dst.SetInt(int64(n.Float64()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		dst.SetUint(uint64(n.Float64()))
	default:
		return fmt.Errorf("decode: cannot assign number into %s", dst.Type())
	}
	return nil
}

func decodeArray(n *jsonh.Node, dst reflect.Value) error {
	elems := n.Array()
	switch dst.Kind() {
	case reflect.Slice:
		out := reflect.MakeSlice(dst.Type(), len(elems), len(elems))
		for i, e := range elems {
			if err := decodeValue(e, out.Index(i)); err != nil {
				return fmt.Errorf("decode: index %d: %w", i, err)
			}
		}
		dst.Set(out)
	case reflect.Array:
		if dst.Len() != len(elems) {
			return fmt.Errorf("decode: array length mismatch: have %d, want %d", len(elems), dst.Len())
		}
		for i, e := range elems {
			if err := decodeValue(e, dst.Index(i)); err != nil {
				return fmt.Errorf("decode: index %d: %w", i, err)
			}
		}
	default:
		return fmt.Errorf("decode: cannot assign array into %s", dst.Type())
	}
	return nil
}

func decodeObject(n *jsonh.Node, dst reflect.Value) error {
	obj := n.Object()
	switch dst.Kind() {
	case reflect.Map:
		if dst.IsNil() {
			dst.Set(reflect.MakeMapWithSize(dst.Type(), obj.Len()))
		}
		valType := dst.Type().Elem()
		for i := 0; i < obj.Len(); i++ {
			key, v := obj.At(i)
			ev := reflect.New(valType).Elem()
			if err := decodeValue(v, ev); err != nil {
				return fmt.Errorf("decode: key %q: %w", key, err)
			}
			dst.SetMapIndex(reflect.ValueOf(key).Convert(dst.Type().Key()), ev)
		}
		return nil

	case reflect.Struct:
		fields := structFields(dst.Type())
		for i := 0; i < obj.Len(); i++ {
			key, v := obj.At(i)
			fi, ok := fields[key]
			if !ok {
				continue
			}
			if err := decodeValue(v, dst.Field(fi)); err != nil {
				return fmt.Errorf("decode: field %q: %w", key, err)
			}
		}
		return nil

	default:
		return fmt.Errorf("decode: cannot assign object into %s", dst.Type())
	}
}

// structFields maps a property name (tag-or-lowercased-field-name) to the
// struct field index it should populate.
func structFields(t reflect.Type) map[string]int {
	out := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Tag.Get("jsonh")
		if name == "-" {
			continue
		}
		if name == "" {
			name = lowerFirst(f.Name)
		}
		out[name] = i
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

// toAny converts n into its natural Go representation (nil, bool, string,
// float64, []any, map[string]any) for decoding into an interface{} slot.
func toAny(n *jsonh.Node) (any, error) {
	switch n.Kind() {
	case jsonh.KindNull:
		return nil, nil
	case jsonh.KindBool:
		return n.Bool(), nil
	case jsonh.KindString:
		return n.Str(), nil
	case jsonh.KindNumber:
		return n.Float64(), nil
	case jsonh.KindArray:
		elems := n.Array()
		out := make([]any, len(elems))
		for i, e := range elems {
			v, err := toAny(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case jsonh.KindObject:
		obj := n.Object()
		out := make(map[string]any, obj.Len())
		for i := 0; i < obj.Len(); i++ {
			key, v := obj.At(i)
			val, err := toAny(v)
			if err != nil {
				return nil, err
			}
			out[key] = val
		}
		return out, nil
	default:
		return nil, fmt.Errorf("decode: unknown node kind %v", n.Kind())
	}
}
