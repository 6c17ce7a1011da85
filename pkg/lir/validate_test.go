package lir

import (
	"strings"
	"testing"
)

func validFunction() *Function {
	return &Function{
		Name:   "f",
		Params: []Param{{Name: "x", Typ: IntType{}}},
		RetTyp: IntType{},
		Locals: map[string]Type{"x": IntType{}, "_tmp0": IntType{}},
		Body: map[string]*BasicBlock{
			"f_entry": {
				Label: "f_entry",
				Insts: []Inst{Copy{Lhs: "_tmp0", Src: "x"}},
				Term:  Ret{Val: "_tmp0"},
			},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validFunction().Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate_NullOperand(t *testing.T) {
	fn := validFunction()
	fn.Body["f_entry"].Insts = []Inst{Copy{Lhs: "_tmp0", Src: NullName}}
	if err := fn.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil (__NULL is always in scope)", err)
	}
}

func TestValidate_MissingTerminator(t *testing.T) {
	fn := validFunction()
	fn.Body["f_entry"].Term = nil
	err := fn.Validate()
	if err == nil || !strings.Contains(err.Error(), "no terminator") {
		t.Errorf("Validate() = %v, want no-terminator error", err)
	}
}

func TestValidate_UnknownJumpTarget(t *testing.T) {
	fn := validFunction()
	fn.Body["f_entry"].Term = Jump{Target: "nowhere"}
	err := fn.Validate()
	if err == nil || !strings.Contains(err.Error(), "nowhere") {
		t.Errorf("Validate() = %v, want unknown-label error", err)
	}
}

func TestValidate_UndeclaredVariable(t *testing.T) {
	fn := validFunction()
	fn.Body["f_entry"].Insts = []Inst{Copy{Lhs: "_tmp0", Src: "ghost"}}
	err := fn.Validate()
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Errorf("Validate() = %v, want undeclared-variable error", err)
	}
}
