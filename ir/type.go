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

// PrimKind enumerates the primitive kinds of the IR type system.
type PrimKind uint8

const (
	Boolean PrimKind = iota
	Byte
	Char
	Short
	Int
	Long
)

func (k PrimKind) String() string {
	switch k {
	case Boolean:
		return "boolean"
	case Byte:
		return "byte"
	case Char:
		return "char"
	case Short:
		return "short"
	case Int:
		return "int"
	case Long:
		return "long"
	}
	return "unknown"
}

// Type is implemented by all IR types.
type Type interface {
	String() string
	isType()
}

// PrimType is a primitive type.
type PrimType struct {
	Kind PrimKind
}

func (PrimType) isType() {}

func (t PrimType) String() string { return t.Kind.String() }

// ClassType is the reference type of a class or interface.
type ClassType struct {
	Class *Class
}

func (ClassType) isType() {}

func (t ClassType) String() string { return t.Class.Name }

// ArrayType is an array of Elem.
type ArrayType struct {
	Elem Type
}

func (ArrayType) isType() {}

func (t ArrayType) String() string { return t.Elem.String() + "[]" }

// IsIntLike reports whether t is a primitive type whose values live in the
// 32-bit integer constant lattice (boolean, byte, char, short and int).
// Constant propagation only tracks variables of these types.
func IsIntLike(t Type) bool {
	p, ok := t.(PrimType)
	if !ok {
		return false
	}
	switch p.Kind {
	case Boolean, Byte, Char, Short, Int:
		return true
	}
	return false
}
