package ast

import (
	"errors"
	"reflect"
	"testing"
)

func TestDecodeType(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Type
	}{
		{"int", `"Int"`, IntType{}},
		{"nil", `"Nil"`, NilType{}},
		{"struct", `{"Struct": "Point"}`, StructType{Name: "Point"}},
		{"ptr", `{"Ptr": "Int"}`, PtrType{Elem: IntType{}}},
		{"array", `{"Array": {"Ptr": "Int"}}`, ArrayType{Elem: PtrType{Elem: IntType{}}}},
		{
			"fn",
			`{"Fn": [["Int", {"Ptr": "Int"}], "Nil"]}`,
			FnType{Params: []Type{IntType{}, PtrType{Elem: IntType{}}}, Ret: NilType{}},
		},
		{"fn no params", `{"Fn": [[], "Int"]}`, FnType{Ret: IntType{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeType([]byte(tt.json))
			if err != nil {
				t.Fatalf("decodeType(%s) error: %v", tt.json, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decodeType(%s) = %#v, want %#v", tt.json, got, tt.want)
			}
		})
	}
}

func TestDecodeType_Unknown(t *testing.T) {
	for _, bad := range []string{`"Float"`, `{"Union": "U"}`, `42`} {
		_, err := decodeType([]byte(bad))
		if !errors.Is(err, ErrMalformedAST) {
			t.Errorf("decodeType(%s) error = %v, want ErrMalformedAST", bad, err)
		}
	}
}

func TestDecodeStmt_BareStrings(t *testing.T) {
	got, err := decodeStmt([]byte(`"Break"`))
	if err != nil {
		t.Fatalf("decodeStmt error: %v", err)
	}
	if _, ok := got.(Break); !ok {
		t.Errorf("decodeStmt(\"Break\") = %T, want Break", got)
	}

	got, err = decodeStmt([]byte(`"Continue"`))
	if err != nil {
		t.Fatalf("decodeStmt error: %v", err)
	}
	if _, ok := got.(Continue); !ok {
		t.Errorf("decodeStmt(\"Continue\") = %T, want Continue", got)
	}
}

func TestDecodeStmt_TaggedBreakContinue(t *testing.T) {
	got, err := decodeStmt([]byte(`{"Break": null}`))
	if err != nil {
		t.Fatalf("decodeStmt error: %v", err)
	}
	if _, ok := got.(Break); !ok {
		t.Errorf("decodeStmt({Break}) = %T, want Break", got)
	}

	got, err = decodeStmt([]byte(`{"Continue": null}`))
	if err != nil {
		t.Fatalf("decodeStmt error: %v", err)
	}
	if _, ok := got.(Continue); !ok {
		t.Errorf("decodeStmt({Continue}) = %T, want Continue", got)
	}
}

func TestDecodeStmt_Return(t *testing.T) {
	got, err := decodeStmt([]byte(`{"Return": null}`))
	if err != nil {
		t.Fatalf("decodeStmt error: %v", err)
	}
	if ret, ok := got.(Return); !ok || ret.Exp != nil {
		t.Errorf("decodeStmt({Return: null}) = %#v, want bare Return", got)
	}

	got, err = decodeStmt([]byte(`{"Return": {"Num": 7}}`))
	if err != nil {
		t.Fatalf("decodeStmt error: %v", err)
	}
	ret, ok := got.(Return)
	if !ok || !reflect.DeepEqual(ret.Exp, Num{Value: 7}) {
		t.Errorf("decodeStmt({Return: 7}) = %#v, want Return(Num 7)", got)
	}
}

func TestDecodeStmt_IfWithoutElse(t *testing.T) {
	got, err := decodeStmt([]byte(`{"If": {"guard": {"Num": 1}, "tt": ["Break"]}}`))
	if err != nil {
		t.Fatalf("decodeStmt error: %v", err)
	}
	ifStmt, ok := got.(If)
	if !ok {
		t.Fatalf("decodeStmt = %T, want If", got)
	}
	if len(ifStmt.Then) != 1 || len(ifStmt.Else) != 0 {
		t.Errorf("If arms = %d/%d, want 1/0", len(ifStmt.Then), len(ifStmt.Else))
	}
}

func TestDecodeStmt_While(t *testing.T) {
	got, err := decodeStmt([]byte(`{"While": [{"Val": {"Id": "x"}}, ["Continue"]]}`))
	if err != nil {
		t.Fatalf("decodeStmt error: %v", err)
	}
	w, ok := got.(While)
	if !ok {
		t.Fatalf("decodeStmt = %T, want While", got)
	}
	if !reflect.DeepEqual(w.Guard, Val{Place: Id{Name: "x"}}) {
		t.Errorf("While guard = %#v", w.Guard)
	}
	if len(w.Body) != 1 {
		t.Errorf("While body length = %d, want 1", len(w.Body))
	}
}

func TestDecodeExp_BinOpBothForms(t *testing.T) {
	want := BinOp{Op: Add, Left: Num{Value: 1}, Right: Num{Value: 2}}

	listForm := `{"BinOp": ["Add", {"Num": 1}, {"Num": 2}]}`
	got, err := decodeExp([]byte(listForm))
	if err != nil {
		t.Fatalf("decodeExp(list form) error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("decodeExp(list form) = %#v, want %#v", got, want)
	}

	objForm := `{"BinOp": {"op": "Add", "left": {"Num": 1}, "right": {"Num": 2}}}`
	got, err = decodeExp([]byte(objForm))
	if err != nil {
		t.Fatalf("decodeExp(object form) error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("decodeExp(object form) = %#v, want %#v", got, want)
	}
}

func TestDecodeExp_UnOpBothForms(t *testing.T) {
	want := UnOp{Op: Neg, Exp: Num{Value: 3}}

	for _, form := range []string{
		`{"UnOp": ["Neg", {"Num": 3}]}`,
		`{"UnOp": {"op": "Neg", "exp": {"Num": 3}}}`,
	} {
		got, err := decodeExp([]byte(form))
		if err != nil {
			t.Fatalf("decodeExp(%s) error: %v", form, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("decodeExp(%s) = %#v, want %#v", form, got, want)
		}
	}
}

func TestDecodeExp_NilForms(t *testing.T) {
	for _, form := range []string{`"Nil"`, `{"Nil": null}`} {
		got, err := decodeExp([]byte(form))
		if err != nil {
			t.Fatalf("decodeExp(%s) error: %v", form, err)
		}
		if _, ok := got.(Nil); !ok {
			t.Errorf("decodeExp(%s) = %T, want Nil", form, got)
		}
	}
}

func TestDecodeExp_SelectAndCall(t *testing.T) {
	sel := `{"Select": {"guard": {"Val": {"Id": "c"}}, "tt": "Nil", "ff": {"Val": {"Id": "q"}}}}`
	got, err := decodeExp([]byte(sel))
	if err != nil {
		t.Fatalf("decodeExp(select) error: %v", err)
	}
	s, ok := got.(Select)
	if !ok {
		t.Fatalf("decodeExp(select) = %T, want Select", got)
	}
	if _, ok := s.TT.(Nil); !ok {
		t.Errorf("Select.TT = %#v, want Nil", s.TT)
	}

	call := `{"Call": [{"Val": {"Id": "f"}}, [{"Num": 1}, {"Num": 2}]]}`
	got, err = decodeExp([]byte(call))
	if err != nil {
		t.Fatalf("decodeExp(call) error: %v", err)
	}
	c, ok := got.(CallExp)
	if !ok {
		t.Fatalf("decodeExp(call) = %T, want CallExp", got)
	}
	if len(c.Call.Args) != 2 {
		t.Errorf("CallExp args = %d, want 2", len(c.Call.Args))
	}
}

func TestDecodePlace(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Place
	}{
		{"id", `{"Id": "x"}`, Id{Name: "x"}},
		{"deref", `{"Deref": {"Val": {"Id": "p"}}}`, Deref{Exp: Val{Place: Id{Name: "p"}}}},
		{
			"array access",
			`{"ArrayAccess": {"array": {"Val": {"Id": "a"}}, "idx": {"Num": 0}}}`,
			ArrayAccess{Array: Val{Place: Id{Name: "a"}}, Index: Num{Value: 0}},
		},
		{
			"field access",
			`{"FieldAccess": [{"Val": {"Id": "s"}}, "f"]}`,
			FieldAccess{Ptr: Val{Place: Id{Name: "s"}}, Field: "f"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodePlace([]byte(tt.json))
			if err != nil {
				t.Fatalf("decodePlace(%s) error: %v", tt.json, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decodePlace(%s) = %#v, want %#v", tt.json, got, tt.want)
			}
		})
	}
}

func TestDecodeProgram(t *testing.T) {
	src := `{
		"structs": [{"name": "Point", "fields": [
			{"name": "x", "typ": "Int"},
			{"name": "y", "typ": "Int"}
		]}],
		"externs": [{"name": "print", "prms": ["Int"], "rettyp": "Int"}],
		"functions": [{
			"name": "main",
			"prms": [],
			"rettyp": "Int",
			"locals": [{"name": "a", "typ": "Int"}],
			"stmts": [
				{"Assign": [{"Id": "a"}, {"Num": 2}]},
				{"Return": {"Val": {"Id": "a"}}}
			]
		}]
	}`

	prog, err := DecodeProgram([]byte(src))
	if err != nil {
		t.Fatalf("DecodeProgram error: %v", err)
	}

	if len(prog.Structs) != 1 || prog.Structs[0].Name != "Point" {
		t.Errorf("structs = %#v", prog.Structs)
	}
	if len(prog.Externs) != 1 || prog.Externs[0].Name != "print" {
		t.Errorf("externs = %#v", prog.Externs)
	}
	if len(prog.Functions) != 1 {
		t.Fatalf("functions = %#v", prog.Functions)
	}
	fn := prog.Functions[0]
	if fn.Name != "main" || len(fn.Locals) != 1 || len(fn.Stmts) != 2 {
		t.Errorf("function = %#v", fn)
	}
}

func TestDecodeProgram_BadJSON(t *testing.T) {
	_, err := DecodeProgram([]byte(`{`))
	if !errors.Is(err, ErrMalformedAST) {
		t.Errorf("DecodeProgram error = %v, want ErrMalformedAST", err)
	}
}
