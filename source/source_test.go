// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package source_test

import (
	"testing"

	"github.com/creachadair/jsonh"
	"github.com/creachadair/jsonh/source"
)

func TestFromBytesUTF8(t *testing.T) {
	s, err := source.FromBytes([]byte(`{a: 1}`), source.Auto)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	n, err := jsonh.ParseNode(s, jsonh.DefaultOptions())
	if err != nil {
		t.Fatalf("ParseNode: %v", err)
	}
	if v, ok := n.Object().Get("a"); !ok || v.Float64() != 1 {
		t.Errorf("a = %v, %v; want 1, true", v, ok)
	}
}

func TestFromBytesUTF16LE(t *testing.T) {
	doc := `{a: 1}`
	var b []byte
	b = append(b, 0xFF, 0xFE) // BOM
	for _, r := range doc {
		b = append(b, byte(r), 0)
	}

	s, err := source.FromBytes(b, source.Auto)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	n, err := jsonh.ParseNode(s, jsonh.DefaultOptions())
	if err != nil {
		t.Fatalf("ParseNode: %v", err)
	}
	if v, ok := n.Object().Get("a"); !ok || v.Float64() != 1 {
		t.Errorf("a = %v, %v; want 1, true", v, ok)
	}
}

func TestFromBytesExplicitEncoding(t *testing.T) {
	doc := `"hi"`
	var b []byte
	for _, r := range doc {
		b = append(b, 0, byte(r))
	}
	s, err := source.FromBytes(b, source.UTF16BE)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	n, err := jsonh.ParseNode(s, jsonh.DefaultOptions())
	if err != nil {
		t.Fatalf("ParseNode: %v", err)
	}
	if n.Str() != "hi" {
		t.Errorf("Str() = %q, want hi", n.Str())
	}
}
