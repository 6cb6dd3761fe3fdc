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

// Visitor visits statement variants. Embed BaseVisitor to get no-op defaults
// and override only the variants an analysis cares about.
type Visitor interface {
	VisitNew(*New)
	VisitAssignLiteral(*AssignLiteral)
	VisitCopy(*Copy)
	VisitBinary(*Binary)
	VisitUnary(*Unary)
	VisitCast(*Cast)
	VisitLoadField(*LoadField)
	VisitStoreField(*StoreField)
	VisitLoadArray(*LoadArray)
	VisitStoreArray(*StoreArray)
	VisitIf(*If)
	VisitGoto(*Goto)
	VisitSwitch(*Switch)
	VisitInvoke(*Invoke)
	VisitReturn(*Return)
	VisitNop(*Nop)
}

// BaseVisitor implements Visitor with a no-op for every variant.
type BaseVisitor struct{}

func (BaseVisitor) VisitNew(*New)                     {}
func (BaseVisitor) VisitAssignLiteral(*AssignLiteral) {}
func (BaseVisitor) VisitCopy(*Copy)                   {}
func (BaseVisitor) VisitBinary(*Binary)               {}
func (BaseVisitor) VisitUnary(*Unary)                 {}
func (BaseVisitor) VisitCast(*Cast)                   {}
func (BaseVisitor) VisitLoadField(*LoadField)         {}
func (BaseVisitor) VisitStoreField(*StoreField)       {}
func (BaseVisitor) VisitLoadArray(*LoadArray)         {}
func (BaseVisitor) VisitStoreArray(*StoreArray)       {}
func (BaseVisitor) VisitIf(*If)                       {}
func (BaseVisitor) VisitGoto(*Goto)                   {}
func (BaseVisitor) VisitSwitch(*Switch)               {}
func (BaseVisitor) VisitInvoke(*Invoke)               {}
func (BaseVisitor) VisitReturn(*Return)               {}
func (BaseVisitor) VisitNop(*Nop)                     {}
