// Copyright (C) 2026 Opsmate, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla
// Public License, v. 2.0. If a copy of the MPL was not distributed
// with this file, You can obtain one at http://mozilla.org/MPL/2.0/.
//
// This software is distributed WITHOUT A WARRANTY OF ANY KIND.
// See the Mozilla Public License for details.

// Package pattern is a small abstract syntax for regular languages.
//
// A tree is built from Literal, Class, Sequence, Alternation, Repeat, Never
// and Anchored nodes.  It can be serialized to RE2 syntax (as accepted by
// the regexp package) with String, or evaluated directly with Matches,
// which does not depend on any regular expression engine.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Operator precedence, from loosest to tightest binding.
const (
	precAlternation = iota
	precSequence
	precRepeat
	precAtom
)

type Node interface {
	write(b *strings.Builder)
	prec() int
	match(s string, from positions) positions
}

// Literal matches its exact text.
type Literal string

// Range is an inclusive range of runes.
type Range struct {
	Lo, Hi rune
}

// Class matches exactly one rune that is (or, if Negated, is not) in one of Ranges.
type Class struct {
	Ranges  []Range
	Negated bool
}

// Sequence matches its elements one after another.
type Sequence []Node

// Alternation matches any one of its elements.
type Alternation []Node

// Repeat matches Node at least Min and at most Max times.  A negative Max means unbounded.
type Repeat struct {
	Node Node
	Min  int
	Max  int
}

// Never matches nothing, not even the empty string.
type Never struct{}

// Anchored matches only if Node matches the entire input.
type Anchored struct {
	Node Node
}

func Lit(text string) Literal { return Literal(text) }

// Seq returns the concatenation of nodes, flattening nested sequences and
// merging adjacent literals.
func Seq(nodes ...Node) Node {
	var seq Sequence
	add := func(node Node) {
		lit, isLit := node.(Literal)
		if isLit && lit == "" {
			return
		}
		if isLit && len(seq) > 0 {
			if prev, ok := seq[len(seq)-1].(Literal); ok {
				seq[len(seq)-1] = prev + lit
				return
			}
		}
		seq = append(seq, node)
	}
	for _, node := range nodes {
		if inner, ok := node.(Sequence); ok {
			for _, node := range inner {
				add(node)
			}
		} else {
			add(node)
		}
	}
	if len(seq) == 1 {
		return seq[0]
	}
	return seq
}

func Alt(nodes ...Node) Node {
	var alt Alternation
	for _, node := range nodes {
		switch node := node.(type) {
		case Alternation:
			alt = append(alt, node...)
		case Never:
		default:
			alt = append(alt, node)
		}
	}
	switch len(alt) {
	case 0:
		return Never{}
	case 1:
		return alt[0]
	}
	return alt
}

func Opt(node Node) Node  { return Repeat{Node: node, Min: 0, Max: 1} }
func Star(node Node) Node { return Repeat{Node: node, Min: 0, Max: -1} }
func Plus(node Node) Node { return Repeat{Node: node, Min: 1, Max: -1} }

func Times(node Node, min, max int) Node {
	return Repeat{Node: node, Min: min, Max: max}
}

// AnyOf returns a Class matching any of the given runes.
func AnyOf(runes ...rune) Class {
	class := Class{Ranges: make([]Range, len(runes))}
	for i, r := range runes {
		class.Ranges[i] = Range{r, r}
	}
	return class
}

// NoneOf returns a Class matching any rune except the given ones.
func NoneOf(runes ...rune) Class {
	class := AnyOf(runes...)
	class.Negated = true
	return class
}

// String returns node in RE2 syntax.
func String(node Node) string {
	var b strings.Builder
	node.write(&b)
	return b.String()
}

// Compile serializes node and compiles it with the regexp package.
func Compile(node Node) (*regexp.Regexp, error) {
	re, err := regexp.Compile(String(node))
	if err != nil {
		return nil, fmt.Errorf("error compiling pattern: %w", err)
	}
	return re, nil
}

func MustCompile(node Node) *regexp.Regexp {
	re, err := Compile(node)
	if err != nil {
		panic(err)
	}
	return re
}

func writeChild(b *strings.Builder, child Node, minPrec int) {
	if child.prec() < minPrec {
		b.WriteString("(?:")
		child.write(b)
		b.WriteString(")")
	} else {
		child.write(b)
	}
}

func (lit Literal) prec() int {
	if utf8.RuneCountInString(string(lit)) == 1 {
		return precAtom
	}
	return precSequence
}

func (lit Literal) write(b *strings.Builder) {
	if lit == "" {
		b.WriteString("(?:)")
		return
	}
	b.WriteString(regexp.QuoteMeta(string(lit)))
}

func (class Class) prec() int { return precAtom }

func writeClassRune(b *strings.Builder, r rune) {
	switch {
	case r == '\\' || r == ']' || r == '[' || r == '^' || r == '-':
		b.WriteByte('\\')
		b.WriteRune(r)
	case r < 0x20 || r >= 0x7f:
		fmt.Fprintf(b, `\x{%X}`, r)
	default:
		b.WriteRune(r)
	}
}

func (class Class) write(b *strings.Builder) {
	b.WriteByte('[')
	if class.Negated {
		b.WriteByte('^')
	}
	for _, rng := range class.Ranges {
		writeClassRune(b, rng.Lo)
		if rng.Hi != rng.Lo {
			b.WriteByte('-')
			writeClassRune(b, rng.Hi)
		}
	}
	b.WriteByte(']')
}

func (seq Sequence) prec() int {
	if len(seq) == 1 {
		return seq[0].prec()
	}
	return precSequence
}

func (seq Sequence) write(b *strings.Builder) {
	if len(seq) == 0 {
		b.WriteString("(?:)")
		return
	}
	for _, node := range seq {
		writeChild(b, node, precSequence)
	}
}

func (alt Alternation) prec() int {
	if len(alt) == 1 {
		return alt[0].prec()
	}
	return precAlternation
}

func (alt Alternation) write(b *strings.Builder) {
	if len(alt) == 0 {
		Never{}.write(b)
		return
	}
	for i, node := range alt {
		if i > 0 {
			b.WriteByte('|')
		}
		writeChild(b, node, precAlternation+1)
	}
}

func (rep Repeat) prec() int { return precRepeat }

func (rep Repeat) write(b *strings.Builder) {
	writeChild(b, rep.Node, precAtom)
	switch {
	case rep.Min == 0 && rep.Max == 1:
		b.WriteByte('?')
	case rep.Min == 0 && rep.Max < 0:
		b.WriteByte('*')
	case rep.Min == 1 && rep.Max < 0:
		b.WriteByte('+')
	case rep.Max < 0:
		fmt.Fprintf(b, "{%d,}", rep.Min)
	case rep.Min == rep.Max:
		fmt.Fprintf(b, "{%d}", rep.Min)
	default:
		fmt.Fprintf(b, "{%d,%d}", rep.Min, rep.Max)
	}
}

func (Never) prec() int { return precAtom }

// No input rune lies outside [\x00-\x{10FFFF}], so the negated class never matches.
func (Never) write(b *strings.Builder) {
	b.WriteString(`[^\x00-\x{10FFFF}]`)
}

func (anchored Anchored) prec() int { return precSequence }

func (anchored Anchored) write(b *strings.Builder) {
	b.WriteString("^(?:")
	anchored.Node.write(b)
	b.WriteString(")$")
}
