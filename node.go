// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsonh

import (
	"errors"
	"fmt"
	"io"
	"math/big"
)

// NodeKind identifies which alternative of the Node sum type is populated.
type NodeKind byte

const (
	KindNull NodeKind = iota
	KindBool
	KindString
	KindNumber
	KindArray
	KindObject
)

// A Node is a JSONH value: null, bool, string, number, array, or object.
// The zero Node is KindNull.
type Node struct {
	kind NodeKind

	boolVal bool
	strVal  string
	rat     *big.Rat // set when kind == KindNumber and Options.BigNumbers
	f64     float64  // set when kind == KindNumber and !Options.BigNumbers
	bigNum  bool

	arr []*Node
	obj *Object
}

// Kind reports which alternative n holds.
func (n *Node) Kind() NodeKind { return n.kind }

// IsNull reports whether n is the null value.
func (n *Node) IsNull() bool { return n.kind == KindNull }

// Bool returns n's boolean value. It panics if n is not KindBool.
func (n *Node) Bool() bool {
	if n.kind != KindBool {
		panic("jsonh: Bool called on non-bool Node")
	}
	return n.boolVal
}

// Str returns n's decoded string value. It panics if n is not KindString.
func (n *Node) Str() string {
	if n.kind != KindString {
		panic("jsonh: Str called on non-string Node")
	}
	return n.strVal
}

// Float64 returns n's number as a float64. It panics if n is not
// KindNumber. Overflow, when Options.BigNumbers was false at parse time,
// was already folded to ±Inf by the builder.
func (n *Node) Float64() float64 {
	if n.kind != KindNumber {
		panic("jsonh: Float64 called on non-number Node")
	}
	if n.bigNum {
		return ParseFloat64(n.rat)
	}
	return n.f64
}

// Rat returns n's number as an exact *big.Rat. It panics if n is not a
// KindNumber built with Options.BigNumbers set.
func (n *Node) Rat() *big.Rat {
	if n.kind != KindNumber || !n.bigNum {
		panic("jsonh: Rat called on a Node not built with BigNumbers")
	}
	return n.rat
}

// Array returns n's elements in order. It panics if n is not KindArray.
func (n *Node) Array() []*Node {
	if n.kind != KindArray {
		panic("jsonh: Array called on non-array Node")
	}
	return n.arr
}

// Object returns n's property mapping. It panics if n is not KindObject.
func (n *Node) Object() *Object {
	if n.kind != KindObject {
		panic("jsonh: Object called on non-object Node")
	}
	return n.obj
}

// An Object is an ordered key→Node mapping with last-write-wins duplicate
// key semantics: setting an existing key overwrites its value and moves it
// to the end of iteration order, matching JSONH's data model.
type Object struct {
	keys  []string
	vals  []*Node
	index map[string]int
}

func newObject() *Object { return &Object{index: make(map[string]int)} }

// Set installs key→v, overwriting and reordering to the end if key was
// already present.
func (o *Object) Set(key string, v *Node) {
	if i, ok := o.index[key]; ok {
		o.keys = append(o.keys[:i], o.keys[i+1:]...)
		o.vals = append(o.vals[:i], o.vals[i+1:]...)
		for k, idx := range o.index {
			if idx > i {
				o.index[k] = idx - 1
			}
		}
		delete(o.index, key)
	}
	o.index[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, v)
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (*Node, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.vals[i], true
}

// Len reports the number of distinct keys in o.
func (o *Object) Len() int { return len(o.keys) }

// At returns the key and value at iteration position i.
func (o *Object) At(i int) (string, *Node) { return o.keys[i], o.vals[i] }

// Keys returns o's keys in iteration order.
func (o *Object) Keys() []string { return o.keys }

// builderFrame is an open array or object awaiting more children.
type builderFrame struct {
	node          *Node
	pendingKey    string
	hasPendingKey bool
}

// ParseNode reads a single JSONH element from src and returns it as a Node
// tree. It drives a Tokenizer internally.
func ParseNode(src io.RuneScanner, opts Options) (*Node, error) {
	opts = opts.normalized()
	return BuildNode(NewTokenizer(NewCursor(src), opts), opts)
}

// BuildNode drives t to completion, assembling and returning the resulting
// value tree. It implements the Element Builder: null/true/false/string
// leaves are emitted directly, numbers are converted via ParseNumber,
// containers are assembled depth-first, duplicate object keys keep only
// the last write, and Comment tokens are ignored.
func BuildNode(t *Tokenizer, opts Options) (*Node, error) {
	var stack []*builderFrame
	var root *Node
	haveRoot := false

	for {
		tok, err := t.Next()
		if err == io.EOF {
			if !haveRoot {
				return nil, &SyntaxError{Kind: ErrUnexpectedEOF, Message: "no element in input"}
			}
			return root, nil
		} else if err != nil {
			return nil, err
		}

		switch tok.Kind {
		case Comment:
			continue

		case StartObject:
			stack = append(stack, &builderFrame{node: &Node{kind: KindObject, obj: newObject()}})

		case StartArray:
			stack = append(stack, &builderFrame{node: &Node{kind: KindArray}})

		case EndObject, EndArray:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if err := submitNode(stack, &root, &haveRoot, f.node); err != nil {
				return nil, err
			}

		case PropertyName:
			if len(stack) == 0 {
				return nil, errors.New("jsonh: property name outside any object")
			}
			f := stack[len(stack)-1]
			f.pendingKey, f.hasPendingKey = tok.Value, true

		default:
			leaf, err := leafNode(tok, opts)
			if err != nil {
				return nil, err
			}
			if err := submitNode(stack, &root, &haveRoot, leaf); err != nil {
				return nil, err
			}
		}
	}
}

func submitNode(stack []*builderFrame, root **Node, haveRoot *bool, v *Node) error {
	if len(stack) == 0 {
		*root, *haveRoot = v, true
		return nil
	}
	f := stack[len(stack)-1]
	switch f.node.kind {
	case KindArray:
		f.node.arr = append(f.node.arr, v)
	case KindObject:
		if !f.hasPendingKey {
			return errors.New("jsonh: object value without a preceding property name")
		}
		f.node.obj.Set(f.pendingKey, v)
		f.hasPendingKey = false
	}
	return nil
}

func leafNode(tok Token, opts Options) (*Node, error) {
	switch tok.Kind {
	case Null:
		return &Node{kind: KindNull}, nil
	case True:
		return &Node{kind: KindBool, boolVal: true}, nil
	case False:
		return &Node{kind: KindBool, boolVal: false}, nil
	case String:
		return &Node{kind: KindString, strVal: tok.Value}, nil
	case Number:
		r, err := ParseNumber(tok.Value, 0)
		if err != nil {
			return nil, wrapSyntaxError(tok.Pos, ErrNumberConversion, err)
		}
		if opts.BigNumbers {
			return &Node{kind: KindNumber, rat: r, bigNum: true}, nil
		}
		return &Node{kind: KindNumber, f64: ParseFloat64(r)}, nil
	default:
		return nil, fmt.Errorf("jsonh: unexpected token kind %v", tok.Kind)
	}
}
