// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package objfile

import (
	"fmt"

	"github.com/tads3/tadsc/internal/symbols"
)

// DictEntry is the decoded form of one dict_table record (spec.md §6),
// returned alongside a Module for callers that want the pre-aggregated
// word list without recomputing it from the per-object Vocabulary fields.
type DictEntry struct {
	Name  string
	Words []dictWord
}

// ReadModule decodes a Module previously written by WriteModule. An
// unreadable stream (bad lengths, corrupted indices) returns a non-nil
// error; spec.md §4.4 requires this to abort the link rather than merge a
// partially-decoded module.
func ReadModule(r *Reader) (*Module, []DictEntry, error) {
	m := &Module{
		NextObjectID: r.Uint32(),
		NextPropID:   r.Uint32(),
		NextEnumID:   r.Uint32(),
		Flags:        r.Uint16(),
	}

	byName := map[string]*symbols.Symbol{}
	symCount := r.Uint32()
	m.Symbols = make([]*symbols.Symbol, 0, symCount)
	for i := uint32(0); i < symCount && r.Error() == nil; i++ {
		sym := readSymbolRecord(r)
		if sym != nil {
			m.Symbols = append(m.Symbols, sym)
			byName[sym.Name] = sym
		}
	}

	objs := objectsOf(m.Symbols)
	xrefCount := r.Uint32()
	for i := uint32(0); i < xrefCount && r.Error() == nil; i++ {
		readObjectXref(r, objs)
	}

	var dicts []DictEntry
	dictCount := r.Uint32()
	for i := uint32(0); i < dictCount && r.Error() == nil; i++ {
		dicts = append(dicts, readDictEntry(r))
	}

	grammarCount := r.Uint32()
	for i := uint32(0); i < grammarCount && r.Error() == nil; i++ {
		readGrammarEntry(r, byName)
	}

	readFixups(r, byName)

	if r.Error() != nil {
		return nil, nil, fmt.Errorf("objfile: corrupt module: %w", r.Error())
	}
	return m, dicts, nil
}

func readSymbolRecord(r *Reader) *symbols.Symbol {
	kind := symbols.Kind(r.Uint16())
	name := r.Str16()
	sym := &symbols.Symbol{Name: name, Kind: kind, Referenced: true}
	switch kind {
	case symbols.KindObject:
		sym.Object = readObjectPayload(r)
	case symbols.KindProperty:
		sym.Property = &symbols.PropertySymbol{PropID: r.Uint32(), Weak: r.Bool()}
	case symbols.KindFunction:
		sym.Function = readFunctionPayload(r)
	case symbols.KindEnum:
		sym.Enum = &symbols.EnumSymbol{EnumID: r.Uint32(), IsToken: r.Bool()}
	case symbols.KindMetaclass:
		mc := &symbols.MetaclassSymbol{MetaclassIndex: int(r.Int32()), ClassObjectID: r.Uint32()}
		n := r.Uint32()
		mc.Properties = make([]symbols.MetaclassProp, 0, n)
		for i := uint32(0); i < n; i++ {
			mc.Properties = append(mc.Properties, symbols.MetaclassProp{Name: r.Str16(), IsStatic: r.Bool()})
		}
		sym.Metaclass = mc
	case symbols.KindBuiltIn:
		sym.BuiltIn = &symbols.BuiltInSymbol{
			FuncSetID: int(r.Int32()),
			Index:     int(r.Int32()),
			MinArgc:   int(r.Int32()),
			MaxArgc:   int(r.Int32()),
			Varargs:   r.Bool(),
			HasRetval: r.Bool(),
		}
	default:
		r.SetError(fmt.Errorf("objfile: symbol %q has unrecognized kind %d", name, kind))
		return nil
	}
	return sym
}

func readObjectPayload(r *Reader) *symbols.ObjectSymbol {
	o := &symbols.ObjectSymbol{ObjectID: r.Uint32(), Metaclass: r.Str16()}
	scCount := r.Uint16()
	o.SuperClasses = make([]string, 0, scCount)
	for i := uint16(0); i < scCount; i++ {
		o.SuperClasses = append(o.SuperClasses, r.Str16())
	}
	flags := r.Uint16()
	o.IsClass = flags&(1<<0) != 0
	o.IsTransient = flags&(1<<1) != 0
	o.IsExtern = flags&(1<<2) != 0
	o.Modified = flags&(1<<3) != 0
	o.ExtModify = flags&(1<<4) != 0
	o.ExtReplace = flags&(1<<5) != 0
	o.Dictionary = r.Str16()
	tmplCount := r.Uint16()
	o.Templates = make([][]symbols.TemplateItem, 0, tmplCount)
	for i := uint16(0); i < tmplCount; i++ {
		itemCount := r.Uint16()
		items := make([]symbols.TemplateItem, 0, itemCount)
		for j := uint16(0); j < itemCount; j++ {
			items = append(items, symbols.TemplateItem{
				Property:  r.Str16(),
				TokenType: r.Str16(),
				IsAlt:     r.Bool(),
				IsOpt:     r.Bool(),
			})
		}
		o.Templates = append(o.Templates, items)
	}
	return o
}

func readFunctionPayload(r *Reader) *symbols.FunctionSymbol {
	return &symbols.FunctionSymbol{
		Argc:              int(r.Int32()),
		Varargs:           r.Bool(),
		HasRetval:         r.Bool(),
		IsMultiMethod:     r.Bool(),
		IsMultiMethodBase: r.Bool(),
		IsExtern:          r.Bool(),
		ExtReplace:        r.Bool(),
		CodeBodyOffset:    r.Int64(),
	}
}

func readObjectXref(r *Reader, objs []*symbols.Symbol) {
	idx := r.Uint32()
	scCount := r.Uint16()
	for i := uint16(0); i < scCount; i++ {
		r.Str16()
	}
	vocabCount := r.Uint16()
	var vocab []symbols.VocabWord
	for i := uint16(0); i < vocabCount; i++ {
		word := r.Str16()
		prop := r.Str16()
		vocab = append(vocab, symbols.VocabWord{Word: word, Property: prop})
	}
	if int(idx) < len(objs) {
		objs[idx].Object.Vocabulary = vocab
	}
}

func readDictEntry(r *Reader) DictEntry {
	d := DictEntry{Name: r.Str16()}
	n := r.Uint32()
	d.Words = make([]dictWord, 0, n)
	for i := uint32(0); i < n; i++ {
		d.Words = append(d.Words, dictWord{word: r.Str16(), property: r.Str16(), objectID: r.Uint32()})
	}
	return d
}

func readGrammarEntry(r *Reader, byName map[string]*symbols.Symbol) {
	name := r.Str16()
	altCount := r.Uint32()
	alts := make([]symbols.GrammarAltRecord, 0, altCount)
	for i := uint32(0); i < altCount; i++ {
		alt := symbols.GrammarAltRecord{Score: int(r.Int32()), Badness: int(r.Int32()), Processor: r.Str16()}
		tokCount := r.Uint16()
		alt.Tokens = make([]symbols.GrammarTokenRecord, 0, tokCount)
		for j := uint16(0); j < tokCount; j++ {
			tok := symbols.GrammarTokenRecord{Kind: r.Str16(), Text: r.Str16(), ArrowProp: r.Str16()}
			setCount := r.Uint16()
			tok.Set = make([]string, 0, setCount)
			for k := uint16(0); k < setCount; k++ {
				tok.Set = append(tok.Set, r.Str16())
			}
			alt.Tokens = append(alt.Tokens, tok)
		}
		alts = append(alts, alt)
	}
	if sym, ok := byName[name]; ok && sym.Object != nil {
		sym.Object.GrammarAlts = alts
	}
}

func readFixups(r *Reader, byName map[string]*symbols.Symbol) {
	n := r.Uint32()
	for i := uint32(0); i < n; i++ {
		name := r.Str16()
		count := r.Uint32()
		offsets := make([]int, 0, count)
		for j := uint32(0); j < count; j++ {
			offsets = append(offsets, int(r.Int64()))
		}
		sym, ok := byName[name]
		if !ok {
			continue
		}
		switch sym.Kind {
		case symbols.KindObject:
			sym.Object.SelfRefFixups = offsets
		case symbols.KindFunction:
			sym.Function.FixupOffsets = offsets
		}
	}
}
