/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package params holds the typed configuration of the decoders and the
// extract-or-default machinery that fills it from a JSON document.
package params

import (
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// ErrNotObject is returned when a document or path does not resolve to a
// JSON object.
var ErrNotObject = errors.New("params: not a JSON object")

// Lookup reports how a key was found in an Object.
type Lookup int

const (
	Found Lookup = iota
	Missing
	WrongType
)

// Object is a JSON object that extractors read and patch in place.
type Object map[string]any

// Document is a decoded configuration document.
type Document struct {
	root Object
}

// ParseDocument decodes raw, which must hold a JSON object.
func ParseDocument(raw []byte) (*Document, error) {
	var root map[string]any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	if root == nil {
		return nil, ErrNotObject
	}
	return &Document{root: root}, nil
}

// Root returns the top-level object.
func (d *Document) Root() Object { return d.root }

// Marshal serializes the document, including every patch applied so far.
func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(map[string]any(d.root))
}

// Object walks path from o and returns the object found there.
func (o Object) Object(path ...string) (Object, bool) {
	cur := o
	for _, key := range path {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, cur != nil
}

// Has reports whether key is present, whatever its type.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Number reads key as a finite number.
func (o Object) Number(key string) (float64, Lookup) {
	v, ok := o[key]
	if !ok {
		return 0, Missing
	}
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, WrongType
	}
	return f, Found
}

// Bool reads key as a boolean.
func (o Object) Bool(key string) (bool, Lookup) {
	v, ok := o[key]
	if !ok {
		return false, Missing
	}
	b, ok := v.(bool)
	if !ok {
		return false, WrongType
	}
	return b, Found
}

// String reads key as a string.
func (o Object) String(key string) (string, Lookup) {
	v, ok := o[key]
	if !ok {
		return "", Missing
	}
	s, ok := v.(string)
	if !ok {
		return "", WrongType
	}
	return s, Found
}

// Array reads key as an array.
func (o Object) Array(key string) ([]any, Lookup) {
	v, ok := o[key]
	if !ok {
		return nil, Missing
	}
	a, ok := v.([]any)
	if !ok {
		return nil, WrongType
	}
	return a, Found
}

// Set overwrites key.
func (o Object) Set(key string, v any) { o[key] = v }
