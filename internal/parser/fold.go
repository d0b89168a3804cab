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

package parser

import (
	"math"
	"strconv"

	"github.com/tads3/tadsc/internal/ast"
	"github.com/tads3/tadsc/internal/diag"
)

// fold performs spec.md §4.3.3's constant folding: integer overflow
// promotes to float (tagging FloatLiteral.Promoted), and §8.2's
// demote_float law is applied on every subsequent arithmetic fold —
// foldAdd/foldSub/foldArith/foldUnary treat a Promoted float the same as a
// plain int (via intOrPromotedVal) rather than as a real float, so once a
// chain of folds brings the value back into int32 range makeIntOrPromote
// narrows it straight back to an IntLiteral; only a genuine source float
// literal (isGenuineFloat) forces the result to stay a FloatLiteral.
// div/mod by zero is a compile error, list "+"/"-" splice/remove elements,
// string "+" goes through cvt_to_str-equivalent stringification, "&&"/"||"
// short-circuit on a constant left operand, and a constant ternary
// condition collapses to its taken branch.
func (p *Parser) fold(n ast.Node) ast.Node {
	switch v := n.(type) {
	case *ast.UnaryOp:
		v.Operand = p.fold(v.Operand)
		return p.foldUnary(v)
	case *ast.BinaryOp:
		v.LHS = p.fold(v.LHS)
		v.RHS = p.fold(v.RHS)
		return p.foldBinary(v)
	case *ast.Ternary:
		v.Cond = p.fold(v.Cond)
		v.Then = p.fold(v.Then)
		v.Else = p.fold(v.Else)
		if b, ok := p.boolVal(v.Cond); ok {
			if b {
				return v.Then
			}
			return v.Else
		}
		return v
	case *ast.IfNil:
		v.LHS = p.fold(v.LHS)
		v.RHS = p.fold(v.RHS)
		if isConst(v.LHS) {
			if _, isNil := v.LHS.(*ast.NilLiteral); isNil {
				return v.RHS
			}
			return v.LHS
		}
		return v
	case *ast.Subscript:
		v.Object = p.fold(v.Object)
		v.Index = p.fold(v.Index)
		return p.foldSubscript(v)
	case *ast.ListLiteral:
		for i := range v.Elements {
			v.Elements[i] = p.fold(v.Elements[i])
		}
		return v
	case *ast.Comma:
		for i := range v.Elements {
			v.Elements[i] = p.fold(v.Elements[i])
		}
		return v
	case *ast.Assign:
		v.RHS = p.fold(v.RHS)
		return v
	case *ast.Call:
		for i := range v.Args {
			v.Args[i].Expr = p.fold(v.Args[i].Expr)
		}
		return v
	case *ast.IsIn:
		v.LHS = p.fold(v.LHS)
		for i := range v.Values {
			v.Values[i] = p.fold(v.Values[i])
		}
		return v
	default:
		return n
	}
}

func isConst(n ast.Node) bool {
	switch n.(type) {
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.SStringLiteral,
		*ast.NilLiteral, *ast.TrueLiteral, *ast.ListLiteral:
		return true
	}
	return false
}

// boolVal reports the constant truth value of n, per the language's
// nil-is-false/everything-else-is-true semantics.
func (p *Parser) boolVal(n ast.Node) (bool, bool) {
	switch n.(type) {
	case *ast.NilLiteral:
		return false, true
	case *ast.TrueLiteral, *ast.IntLiteral, *ast.FloatLiteral, *ast.SStringLiteral, *ast.ListLiteral:
		return true, true
	}
	return false, false
}

func boolLiteral(at diag.Location, b bool) ast.Node {
	if b {
		return &ast.TrueLiteral{Base: ast.Base{At: at}}
	}
	return &ast.NilLiteral{Base: ast.Base{At: at}}
}

func intVal(n ast.Node) (int64, bool) {
	if lit, ok := n.(*ast.IntLiteral); ok {
		return lit.Value, true
	}
	return 0, false
}

// floatVal reports n's value as a float64, accepting an IntLiteral too so
// mixed int/float arithmetic can be folded in one pass.
func (p *Parser) floatVal(n ast.Node) (float64, bool) {
	switch v := n.(type) {
	case *ast.FloatLiteral:
		f, err := strconv.ParseFloat(v.Text, 64)
		return f, err == nil
	case *ast.IntLiteral:
		return float64(v.Value), true
	}
	return 0, false
}

func isFloatConst(n ast.Node) bool {
	_, ok := n.(*ast.FloatLiteral)
	return ok
}

// isGenuineFloat reports whether n is a float literal that came from the
// source text (e.g. "3.14"), as opposed to one makeIntOrPromote produced by
// promoting an overflowing integer constant. Only a genuine float operand
// forces the result of an arithmetic fold to stay float; two promoted
// operands (or one promoted, one plain int) are still int-domain values
// that happen to be carried in a FloatLiteral, so further folding keeps
// them in the int64 domain and lets makeIntOrPromote apply spec.md §8.2's
// demote_float law, narrowing back to an IntLiteral if the new result fits
// int32 again.
func isGenuineFloat(n ast.Node) bool {
	f, ok := n.(*ast.FloatLiteral)
	return ok && !f.Promoted
}

// intOrPromotedVal reports n's value as an int64, accepting both a plain
// IntLiteral and a FloatLiteral that makeIntOrPromote produced by
// overflow-promoting an int constant (Promoted == true, Text holding the
// exact int64 value formatted by strconv.FormatInt).
func intOrPromotedVal(n ast.Node) (int64, bool) {
	switch v := n.(type) {
	case *ast.IntLiteral:
		return v.Value, true
	case *ast.FloatLiteral:
		if !v.Promoted {
			return 0, false
		}
		i, err := strconv.ParseInt(v.Text, 10, 64)
		return i, err == nil
	}
	return 0, false
}

func (p *Parser) makeFloat(at diag.Location, f float64) ast.Node {
	return &ast.FloatLiteral{Base: ast.Base{At: at}, Text: strconv.FormatFloat(f, 'g', -1, 64)}
}

// makeIntOrPromote implements the int32-overflow-promotes-to-float rule.
func makeIntOrPromote(at diag.Location, v int64) ast.Node {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return &ast.IntLiteral{Base: ast.Base{At: at}, Value: v}
	}
	return &ast.FloatLiteral{Base: ast.Base{At: at}, Text: strconv.FormatInt(v, 10), Promoted: true}
}

func (p *Parser) constToString(n ast.Node) (string, bool) {
	switch v := n.(type) {
	case *ast.SStringLiteral:
		return v.Value, true
	case *ast.IntLiteral:
		return strconv.FormatInt(v.Value, 10), true
	case *ast.FloatLiteral:
		return v.Text, true
	case *ast.NilLiteral:
		return "nil", true
	case *ast.TrueLiteral:
		return "true", true
	}
	return "", false
}

func constEqual(a, b ast.Node) bool {
	switch av := a.(type) {
	case *ast.IntLiteral:
		bv, ok := b.(*ast.IntLiteral)
		return ok && av.Value == bv.Value
	case *ast.SStringLiteral:
		bv, ok := b.(*ast.SStringLiteral)
		return ok && av.Value == bv.Value
	case *ast.NilLiteral:
		_, ok := b.(*ast.NilLiteral)
		return ok
	case *ast.TrueLiteral:
		_, ok := b.(*ast.TrueLiteral)
		return ok
	}
	return false
}

func (p *Parser) foldUnary(u *ast.UnaryOp) ast.Node {
	switch u.Operator {
	case "-":
		if iv, ok := intOrPromotedVal(u.Operand); ok {
			return makeIntOrPromote(u.At, -iv)
		}
		if fv, ok := p.floatVal(u.Operand); ok && isGenuineFloat(u.Operand) {
			return p.makeFloat(u.At, -fv)
		}
	case "+":
		if isConst(u.Operand) {
			if _, isList := u.Operand.(*ast.ListLiteral); !isList {
				if _, isStr := u.Operand.(*ast.SStringLiteral); !isStr {
					return u.Operand
				}
			}
		}
	case "~":
		if iv, ok := intVal(u.Operand); ok {
			return &ast.IntLiteral{Base: u.Base, Value: int64(int32(^iv))}
		}
	case "!":
		if b, ok := p.boolVal(u.Operand); ok {
			return boolLiteral(u.At, !b)
		}
	}
	return u
}

func (p *Parser) foldBinary(b *ast.BinaryOp) ast.Node {
	at := b.At
	switch b.Operator {
	case "+":
		return p.foldAdd(at, b)
	case "-":
		return p.foldSub(at, b)
	case "*", "/", "%":
		return p.foldArith(at, b)
	case "&", "|", "^", "<<", ">>", ">>>":
		return p.foldBitwise(at, b)
	case "==", "!=", "<", "<=", ">", ">=":
		return p.foldCompare(at, b)
	case "&&":
		if lb, ok := p.boolVal(b.LHS); ok {
			if !lb {
				return boolLiteral(at, false)
			}
			return b.RHS
		}
		return b
	case "||":
		if lb, ok := p.boolVal(b.LHS); ok {
			if lb {
				return b.LHS
			}
			return b.RHS
		}
		return b
	}
	return b
}

func (p *Parser) foldAdd(at diag.Location, b *ast.BinaryOp) ast.Node {
	if ls, ok := b.LHS.(*ast.SStringLiteral); ok {
		if rs, ok2 := p.constToString(b.RHS); ok2 {
			return &ast.SStringLiteral{Base: ast.Base{At: at}, Value: ls.Value + rs}
		}
		return b
	}
	if rs, ok := b.RHS.(*ast.SStringLiteral); ok {
		if ls, ok2 := p.constToString(b.LHS); ok2 {
			return &ast.SStringLiteral{Base: ast.Base{At: at}, Value: ls + rs.Value}
		}
		return b
	}
	if list, ok := b.LHS.(*ast.ListLiteral); ok {
		elems := append(append([]ast.Node{}, list.Elements...), splatList(b.RHS)...)
		return &ast.ListLiteral{Base: ast.Base{At: at}, Elements: elems}
	}
	if isGenuineFloat(b.LHS) || isGenuineFloat(b.RHS) {
		if lf, ok := p.floatVal(b.LHS); ok {
			if rf, ok2 := p.floatVal(b.RHS); ok2 {
				return p.makeFloat(at, lf+rf)
			}
		}
		return b
	}
	if li, ok := intOrPromotedVal(b.LHS); ok {
		if ri, ok2 := intOrPromotedVal(b.RHS); ok2 {
			return makeIntOrPromote(at, li+ri)
		}
	}
	return b
}

func splatList(n ast.Node) []ast.Node {
	if l, ok := n.(*ast.ListLiteral); ok {
		return l.Elements
	}
	return []ast.Node{n}
}

func (p *Parser) foldSub(at diag.Location, b *ast.BinaryOp) ast.Node {
	if list, ok := b.LHS.(*ast.ListLiteral); ok {
		toRemove := splatList(b.RHS)
		var out []ast.Node
		for _, e := range list.Elements {
			remove := false
			for _, r := range toRemove {
				if constEqual(e, r) {
					remove = true
					break
				}
			}
			if !remove {
				out = append(out, e)
			}
		}
		return &ast.ListLiteral{Base: ast.Base{At: at}, Elements: out}
	}
	if isGenuineFloat(b.LHS) || isGenuineFloat(b.RHS) {
		if lf, ok := p.floatVal(b.LHS); ok {
			if rf, ok2 := p.floatVal(b.RHS); ok2 {
				return p.makeFloat(at, lf-rf)
			}
		}
		return b
	}
	if li, ok := intOrPromotedVal(b.LHS); ok {
		if ri, ok2 := intOrPromotedVal(b.RHS); ok2 {
			return makeIntOrPromote(at, li-ri)
		}
	}
	return b
}

func (p *Parser) foldArith(at diag.Location, b *ast.BinaryOp) ast.Node {
	if isGenuineFloat(b.LHS) || isGenuineFloat(b.RHS) {
		lf, ok1 := p.floatVal(b.LHS)
		rf, ok2 := p.floatVal(b.RHS)
		if !ok1 || !ok2 {
			return b
		}
		switch b.Operator {
		case "*":
			return p.makeFloat(at, lf*rf)
		case "/":
			if rf == 0 {
				p.diags.Reportf(diag.Error, at, "/", "division by zero in constant expression")
				return b
			}
			return p.makeFloat(at, lf/rf)
		case "%":
			p.diags.Reportf(diag.Error, at, "%", "'%%' requires integer operands")
			return b
		}
	}
	li, ok1 := intOrPromotedVal(b.LHS)
	ri, ok2 := intOrPromotedVal(b.RHS)
	if !ok1 || !ok2 {
		return b
	}
	switch b.Operator {
	case "*":
		return makeIntOrPromote(at, li*ri)
	case "/":
		if ri == 0 {
			p.diags.Reportf(diag.Error, at, "/", "division by zero in constant expression")
			return b
		}
		return makeIntOrPromote(at, li/ri)
	case "%":
		if ri == 0 {
			p.diags.Reportf(diag.Error, at, "%", "division by zero in constant expression")
			return b
		}
		return makeIntOrPromote(at, li%ri)
	}
	return b
}

func (p *Parser) foldBitwise(at diag.Location, b *ast.BinaryOp) ast.Node {
	li, ok1 := intVal(b.LHS)
	ri, ok2 := intVal(b.RHS)
	if !ok1 || !ok2 {
		return b
	}
	l32, r32 := int32(li), int32(ri)
	switch b.Operator {
	case "&":
		return &ast.IntLiteral{Base: ast.Base{At: at}, Value: int64(l32 & r32)}
	case "|":
		return &ast.IntLiteral{Base: ast.Base{At: at}, Value: int64(l32 | r32)}
	case "^":
		return &ast.IntLiteral{Base: ast.Base{At: at}, Value: int64(l32 ^ r32)}
	case "<<":
		return &ast.IntLiteral{Base: ast.Base{At: at}, Value: int64(l32 << uint(r32&31))}
	case ">>":
		return &ast.IntLiteral{Base: ast.Base{At: at}, Value: int64(l32 >> uint(r32&31))}
	case ">>>":
		return &ast.IntLiteral{Base: ast.Base{At: at}, Value: int64(uint32(l32) >> uint(r32&31))}
	}
	return b
}

func (p *Parser) foldCompare(at diag.Location, b *ast.BinaryOp) ast.Node {
	if ls, ok := b.LHS.(*ast.SStringLiteral); ok {
		if rs, ok2 := b.RHS.(*ast.SStringLiteral); ok2 {
			return boolLiteral(at, stringCompare(b.Operator, ls.Value, rs.Value))
		}
		return b
	}
	if isFloatConst(b.LHS) || isFloatConst(b.RHS) {
		lf, ok1 := p.floatVal(b.LHS)
		rf, ok2 := p.floatVal(b.RHS)
		if !ok1 || !ok2 {
			return b
		}
		return boolLiteral(at, numCompare(b.Operator, lf, rf))
	}
	li, ok1 := intVal(b.LHS)
	ri, ok2 := intVal(b.RHS)
	if ok1 && ok2 {
		return boolLiteral(at, numCompare(b.Operator, float64(li), float64(ri)))
	}
	if b.Operator == "==" || b.Operator == "!=" {
		if isConst(b.LHS) && isConst(b.RHS) {
			eq := constEqual(b.LHS, b.RHS)
			if b.Operator == "!=" {
				eq = !eq
			}
			return boolLiteral(at, eq)
		}
	}
	return b
}

func stringCompare(op, a, bs string) bool {
	switch op {
	case "==":
		return a == bs
	case "!=":
		return a != bs
	case "<":
		return a < bs
	case "<=":
		return a <= bs
	case ">":
		return a > bs
	case ">=":
		return a >= bs
	}
	return false
}

func numCompare(op string, a, b float64) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

// foldSubscript implements spec.md §4.3.3's constant subscript folding:
// a literal list indexed by a literal in range collapses to the selected
// element; out-of-range is a compile error, left unfolded for the linker
// to surface at load time if it somehow survives (defensive: the language
// also allows this to be a runtime-only error when Object isn't constant).
func (p *Parser) foldSubscript(s *ast.Subscript) ast.Node {
	list, ok := s.Object.(*ast.ListLiteral)
	if !ok {
		return s
	}
	idx, ok := intVal(s.Index)
	if !ok {
		return s
	}
	if idx < 1 || int(idx) > len(list.Elements) {
		p.diags.Reportf(diag.Error, s.At, "[", "list index %d out of range (list has %d elements)", idx, len(list.Elements))
		return s
	}
	return list.Elements[idx-1]
}
