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

package dataflow

import "strconv"

type valueKind uint8

const (
	undef valueKind = iota
	constant
	nac
)

// Value is an element of the flat constant lattice
//
//	       NAC
//	  /  /  |  \  \
//	.. -1   0   1 ..
//	  \  \  |  /  /
//	      Undef
//
// Undef means no value has reached the variable, a constant means exactly
// that value has, and NAC (Not A Constant) means conflicting values have.
// The zero Value is Undef.
type Value struct {
	kind valueKind
	num  int32
}

var (
	// Undef is the bottom element of the lattice.
	Undef = Value{kind: undef}
	// NAC is the top element of the lattice.
	NAC = Value{kind: nac}
)

// Const returns the lattice value of the constant n.
func Const(n int32) Value { return Value{kind: constant, num: n} }

// IsUndef reports whether v is Undef.
func (v Value) IsUndef() bool { return v.kind == undef }

// IsConst reports whether v is a constant.
func (v Value) IsConst() bool { return v.kind == constant }

// IsNAC reports whether v is NAC.
func (v Value) IsNAC() bool { return v.kind == nac }

// Constant returns the constant v holds. It panics if v is not a constant;
// callers must check IsConst first.
func (v Value) Constant() int32 {
	if v.kind != constant {
		panic("dataflow: Constant called on " + v.String())
	}
	return v.num
}

func (v Value) String() string {
	switch v.kind {
	case undef:
		return "Undef"
	case nac:
		return "NAC"
	}
	return strconv.FormatInt(int64(v.num), 10)
}

// MeetValue combines a and b into their least upper bound in the order drawn
// above: NAC absorbs
// everything, Undef yields the other operand, and two constants meet to
// themselves when equal and to NAC otherwise.
func MeetValue(a, b Value) Value {
	switch {
	case a.IsNAC() || b.IsNAC():
		return NAC
	case a.IsUndef():
		return b
	case b.IsUndef():
		return a
	case a.num == b.num:
		return a
	default:
		return NAC
	}
}
