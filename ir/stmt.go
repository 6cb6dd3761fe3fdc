//  Copyright (c) 2023 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ir

import "strconv"

// Stmt is a statement of a method body. Statements are tagged variants:
// analyses discriminate them with a type switch or a Visitor. Index is the
// position of the statement within its method, assigned by Method.SetBody.
type Stmt interface {
	Index() int
	Container() *Method
	// Def returns the variable the statement assigns, if any.
	Def() (*Var, bool)
	// Uses returns the variables the statement reads.
	Uses() []*Var
	Accept(v Visitor)

	info() *stmtInfo
}

// Definition is implemented by statements that assign a value to a variable
// and can expose that value as an expression.
type Definition interface {
	Stmt
	RValue() Exp
}

type stmtInfo struct {
	index     int
	container *Method
}

func (s *stmtInfo) Index() int         { return s.index }
func (s *stmtInfo) Container() *Method { return s.container }
func (s *stmtInfo) info() *stmtInfo    { return s }

// New allocates an object and assigns it to Result. The *New statement
// itself is the allocation-site identity the heap model abstracts over.
type New struct {
	stmtInfo
	Result *Var
	Type   Type
}

func (s *New) Def() (*Var, bool) { return s.Result, true }
func (s *New) Uses() []*Var      { return nil }
func (s *New) RValue() Exp       { return NewExp{Type: s.Type} }
func (s *New) Accept(v Visitor)  { v.VisitNew(s) }

// AssignLiteral is `v = n`.
type AssignLiteral struct {
	stmtInfo
	Result *Var
	Value  IntLiteral
}

func (s *AssignLiteral) Def() (*Var, bool) { return s.Result, true }
func (s *AssignLiteral) Uses() []*Var      { return nil }
func (s *AssignLiteral) RValue() Exp       { return s.Value }
func (s *AssignLiteral) Accept(v Visitor)  { v.VisitAssignLiteral(s) }

// Copy is `v = u`.
type Copy struct {
	stmtInfo
	Result *Var
	RHS    *Var
}

func (s *Copy) Def() (*Var, bool) { return s.Result, true }
func (s *Copy) Uses() []*Var      { return []*Var{s.RHS} }
func (s *Copy) RValue() Exp       { return s.RHS }
func (s *Copy) Accept(v Visitor)  { v.VisitCopy(s) }

// Binary is `v = x op y`.
type Binary struct {
	stmtInfo
	Result *Var
	Op     BinaryOp
	X, Y   *Var
}

func (s *Binary) Def() (*Var, bool) { return s.Result, true }
func (s *Binary) Uses() []*Var      { return []*Var{s.X, s.Y} }
func (s *Binary) RValue() Exp       { return BinaryExp{Op: s.Op, X: s.X, Y: s.Y} }
func (s *Binary) Accept(v Visitor)  { v.VisitBinary(s) }

// Unary is `v = op x`.
type Unary struct {
	stmtInfo
	Result *Var
	Op     UnaryOp
	X      *Var
}

func (s *Unary) Def() (*Var, bool) { return s.Result, true }
func (s *Unary) Uses() []*Var      { return []*Var{s.X} }
func (s *Unary) RValue() Exp       { return UnaryExp{Op: s.Op, X: s.X} }
func (s *Unary) Accept(v Visitor)  { v.VisitUnary(s) }

// Cast is `v = (T) x`.
type Cast struct {
	stmtInfo
	Result *Var
	Target Type
	X      *Var
}

func (s *Cast) Def() (*Var, bool) { return s.Result, true }
func (s *Cast) Uses() []*Var      { return []*Var{s.X} }
func (s *Cast) RValue() Exp       { return CastExp{Target: s.Target, X: s.X} }
func (s *Cast) Accept(v Visitor)  { v.VisitCast(s) }

// LoadField is `v = x.f`, or `v = C.f` when Base is nil.
type LoadField struct {
	stmtInfo
	Result *Var
	Base   *Var // nil for static fields
	Field  *FieldRef
}

func (s *LoadField) IsStatic() bool { return s.Base == nil }

func (s *LoadField) Def() (*Var, bool) { return s.Result, true }

func (s *LoadField) Uses() []*Var {
	if s.Base == nil {
		return nil
	}
	return []*Var{s.Base}
}

func (s *LoadField) RValue() Exp      { return FieldAccess{Base: s.Base, Field: s.Field} }
func (s *LoadField) Accept(v Visitor) { v.VisitLoadField(s) }

// StoreField is `x.f = v`, or `C.f = v` when Base is nil.
type StoreField struct {
	stmtInfo
	Base  *Var // nil for static fields
	Field *FieldRef
	Value *Var
}

func (s *StoreField) IsStatic() bool { return s.Base == nil }

func (s *StoreField) Def() (*Var, bool) { return nil, false }

func (s *StoreField) Uses() []*Var {
	if s.Base == nil {
		return []*Var{s.Value}
	}
	return []*Var{s.Base, s.Value}
}

func (s *StoreField) Accept(v Visitor) { v.VisitStoreField(s) }

// LoadArray is `v = x[i]`.
type LoadArray struct {
	stmtInfo
	Result   *Var
	Base     *Var
	IndexVar *Var
}

func (s *LoadArray) Def() (*Var, bool) { return s.Result, true }
func (s *LoadArray) Uses() []*Var      { return []*Var{s.Base, s.IndexVar} }
func (s *LoadArray) RValue() Exp       { return ArrayAccess{Base: s.Base, Index: s.IndexVar} }
func (s *LoadArray) Accept(v Visitor)  { v.VisitLoadArray(s) }

// StoreArray is `x[i] = v`.
type StoreArray struct {
	stmtInfo
	Base     *Var
	IndexVar *Var
	Value    *Var
}

func (s *StoreArray) Def() (*Var, bool) { return nil, false }
func (s *StoreArray) Uses() []*Var      { return []*Var{s.Base, s.IndexVar, s.Value} }
func (s *StoreArray) Accept(v Visitor)  { v.VisitStoreArray(s) }

// If branches on a comparison. The true and false targets are not stored
// here; they are the IfTrue/IfFalse edges of the CFG.
type If struct {
	stmtInfo
	Cond BinaryExp
}

func (s *If) Def() (*Var, bool) { return nil, false }
func (s *If) Uses() []*Var      { return []*Var{s.Cond.X, s.Cond.Y} }
func (s *If) Accept(v Visitor)  { v.VisitIf(s) }

// Goto is an unconditional jump; its target is the single Normal edge out of
// it in the CFG.
type Goto struct {
	stmtInfo
}

func (s *Goto) Def() (*Var, bool) { return nil, false }
func (s *Goto) Uses() []*Var      { return nil }
func (s *Goto) Accept(v Visitor)  { v.VisitGoto(s) }

// Switch dispatches on Key. Case targets and the default target are the
// SwitchCase/SwitchDefault edges of the CFG; CaseValues records the case
// constants in edge order.
type Switch struct {
	stmtInfo
	Key        *Var
	CaseValues []int32
}

func (s *Switch) Def() (*Var, bool) { return nil, false }
func (s *Switch) Uses() []*Var      { return []*Var{s.Key} }
func (s *Switch) Accept(v Visitor)  { v.VisitSwitch(s) }

// Invoke is a call site.
type Invoke struct {
	stmtInfo
	Kind   CallKind
	Ref    *MethodRef
	Recv   *Var // nil for static calls
	Args   []*Var
	Result *Var // nil when the call's value is discarded
}

func (s *Invoke) IsStatic() bool { return s.Kind == Static }

func (s *Invoke) Def() (*Var, bool) { return s.Result, s.Result != nil }

func (s *Invoke) Uses() []*Var {
	var uses []*Var
	if s.Recv != nil {
		uses = append(uses, s.Recv)
	}
	return append(uses, s.Args...)
}

func (s *Invoke) RValue() Exp      { return InvokeExp{Call: s} }
func (s *Invoke) Accept(v Visitor) { v.VisitInvoke(s) }

func (s *Invoke) String() string {
	return s.Kind.String() + " " + s.Ref.String() + "/" + strconv.Itoa(s.index)
}

// Return leaves the method, yielding Vars (usually zero or one variable).
type Return struct {
	stmtInfo
	Vars []*Var
}

func (s *Return) Def() (*Var, bool) { return nil, false }
func (s *Return) Uses() []*Var      { return s.Vars }
func (s *Return) Accept(v Visitor)  { v.VisitReturn(s) }

// Nop does nothing. Synthetic CFG entry and exit nodes are Nops.
type Nop struct {
	stmtInfo
}

func (s *Nop) Def() (*Var, bool) { return nil, false }
func (s *Nop) Uses() []*Var      { return nil }
func (s *Nop) Accept(v Visitor)  { v.VisitNop(s) }
