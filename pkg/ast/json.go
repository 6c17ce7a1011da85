// JSON decoding for the serialized Cflat AST. The format is a tagged-union
// convention: types are strings ("Int", "Nil") or single-key objects
// ({"Ptr": T}); statements and expressions are tagged objects, with BinOp and
// UnOp accepted in both list form (["Add", l, r]) and object form
// ({"op": "Add", "left": l, "right": r}). Break, Continue, and Nil may appear
// as bare strings.
package ast

import (
	"encoding/json"

	"tlog.app/go/errors"
)

// ErrMalformedAST reports a structural mismatch while reading the AST.
var ErrMalformedAST = errors.New("malformed AST")

type rawDecl struct {
	Name string          `json:"name"`
	Typ  json.RawMessage `json:"typ"`
}

type rawStruct struct {
	Name   string    `json:"name"`
	Fields []rawDecl `json:"fields"`
}

type rawExtern struct {
	Name   string            `json:"name"`
	Prms   []json.RawMessage `json:"prms"`
	Rettyp json.RawMessage   `json:"rettyp"`
}

type rawFunction struct {
	Name   string            `json:"name"`
	Prms   []rawDecl         `json:"prms"`
	Rettyp json.RawMessage   `json:"rettyp"`
	Locals []rawDecl         `json:"locals"`
	Stmts  []json.RawMessage `json:"stmts"`
}

type rawProgram struct {
	Structs   []rawStruct   `json:"structs"`
	Externs   []rawExtern   `json:"externs"`
	Functions []rawFunction `json:"functions"`
}

// DecodeProgram decodes a serialized Cflat program.
func DecodeProgram(data []byte) (*Program, error) {
	var raw rawProgram
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(ErrMalformedAST, "%v", err)
	}

	prog := &Program{}
	for _, rs := range raw.Structs {
		sd := &StructDef{Name: rs.Name}
		for _, rf := range rs.Fields {
			decl, err := decodeDecl(rf)
			if err != nil {
				return nil, errors.Wrap(err, "struct %v", rs.Name)
			}
			sd.Fields = append(sd.Fields, decl)
		}
		prog.Structs = append(prog.Structs, sd)
	}

	for _, re := range raw.Externs {
		ext := Extern{Name: re.Name}
		for _, rp := range re.Prms {
			typ, err := decodeType(rp)
			if err != nil {
				return nil, errors.Wrap(err, "extern %v", re.Name)
			}
			ext.Params = append(ext.Params, typ)
		}
		ret, err := decodeType(re.Rettyp)
		if err != nil {
			return nil, errors.Wrap(err, "extern %v", re.Name)
		}
		ext.Ret = ret
		prog.Externs = append(prog.Externs, ext)
	}

	for _, rf := range raw.Functions {
		fn, err := decodeFunction(rf)
		if err != nil {
			return nil, errors.Wrap(err, "function %v", rf.Name)
		}
		prog.Functions = append(prog.Functions, fn)
	}

	return prog, nil
}

func decodeFunction(raw rawFunction) (*FunctionDef, error) {
	fn := &FunctionDef{Name: raw.Name}
	for _, rp := range raw.Prms {
		decl, err := decodeDecl(rp)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, decl)
	}
	ret, err := decodeType(raw.Rettyp)
	if err != nil {
		return nil, err
	}
	fn.Ret = ret
	for _, rl := range raw.Locals {
		decl, err := decodeDecl(rl)
		if err != nil {
			return nil, err
		}
		fn.Locals = append(fn.Locals, decl)
	}
	fn.Stmts, err = decodeStmts(raw.Stmts)
	if err != nil {
		return nil, err
	}
	return fn, nil
}

func decodeDecl(raw rawDecl) (Decl, error) {
	typ, err := decodeType(raw.Typ)
	if err != nil {
		return Decl{}, errors.Wrap(err, "decl %v", raw.Name)
	}
	return Decl{Name: raw.Name, Typ: typ}, nil
}

func decodeType(raw json.RawMessage) (Type, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch s {
		case "Int":
			return IntType{}, nil
		case "Nil":
			return NilType{}, nil
		}
		return nil, errors.Wrap(ErrMalformedAST, "unknown type string %q", s)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, errors.Wrap(ErrMalformedAST, "type: %v", err)
	}

	if inner, ok := obj["Ptr"]; ok {
		elem, err := decodeType(inner)
		if err != nil {
			return nil, err
		}
		return PtrType{Elem: elem}, nil
	}
	if inner, ok := obj["Array"]; ok {
		elem, err := decodeType(inner)
		if err != nil {
			return nil, err
		}
		return ArrayType{Elem: elem}, nil
	}
	if inner, ok := obj["Struct"]; ok {
		var name string
		if err := json.Unmarshal(inner, &name); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "struct type: %v", err)
		}
		return StructType{Name: name}, nil
	}
	if inner, ok := obj["Fn"]; ok {
		var parts [2]json.RawMessage
		if err := json.Unmarshal(inner, &parts); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "fn type: %v", err)
		}
		var rawParams []json.RawMessage
		if err := json.Unmarshal(parts[0], &rawParams); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "fn type params: %v", err)
		}
		fn := FnType{}
		for _, rp := range rawParams {
			p, err := decodeType(rp)
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, p)
		}
		ret, err := decodeType(parts[1])
		if err != nil {
			return nil, err
		}
		fn.Ret = ret
		return fn, nil
	}

	return nil, errors.Wrap(ErrMalformedAST, "unknown type format %s", compact(raw))
}

func decodeStmts(raws []json.RawMessage) ([]Stmt, error) {
	var stmts []Stmt
	for _, raw := range raws {
		s, err := decodeStmt(raw)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func decodeStmt(raw json.RawMessage) (Stmt, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch s {
		case "Break":
			return Break{}, nil
		case "Continue":
			return Continue{}, nil
		}
		return nil, errors.Wrap(ErrMalformedAST, "unknown statement string %q", s)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, errors.Wrap(ErrMalformedAST, "statement: %v", err)
	}

	if inner, ok := obj["Assign"]; ok {
		var parts [2]json.RawMessage
		if err := json.Unmarshal(inner, &parts); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "assign: %v", err)
		}
		place, err := decodePlace(parts[0])
		if err != nil {
			return nil, err
		}
		exp, err := decodeExp(parts[1])
		if err != nil {
			return nil, err
		}
		return Assign{Place: place, Exp: exp}, nil
	}
	if inner, ok := obj["Call"]; ok {
		call, err := decodeFunCall(inner)
		if err != nil {
			return nil, err
		}
		return CallStmt{Call: call}, nil
	}
	if inner, ok := obj["If"]; ok {
		var ifObj struct {
			Guard json.RawMessage   `json:"guard"`
			TT    []json.RawMessage `json:"tt"`
			FF    []json.RawMessage `json:"ff"`
		}
		if err := json.Unmarshal(inner, &ifObj); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "if: %v", err)
		}
		guard, err := decodeExp(ifObj.Guard)
		if err != nil {
			return nil, err
		}
		then, err := decodeStmts(ifObj.TT)
		if err != nil {
			return nil, err
		}
		els, err := decodeStmts(ifObj.FF)
		if err != nil {
			return nil, err
		}
		return If{Guard: guard, Then: then, Else: els}, nil
	}
	if inner, ok := obj["While"]; ok {
		var parts [2]json.RawMessage
		if err := json.Unmarshal(inner, &parts); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "while: %v", err)
		}
		guard, err := decodeExp(parts[0])
		if err != nil {
			return nil, err
		}
		var rawBody []json.RawMessage
		if err := json.Unmarshal(parts[1], &rawBody); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "while body: %v", err)
		}
		body, err := decodeStmts(rawBody)
		if err != nil {
			return nil, err
		}
		return While{Guard: guard, Body: body}, nil
	}
	if inner, ok := obj["Return"]; ok {
		if string(inner) == "null" {
			return Return{}, nil
		}
		exp, err := decodeExp(inner)
		if err != nil {
			return nil, err
		}
		return Return{Exp: exp}, nil
	}
	if _, ok := obj["Break"]; ok {
		return Break{}, nil
	}
	if _, ok := obj["Continue"]; ok {
		return Continue{}, nil
	}
	if inner, ok := obj["Stmts"]; ok {
		var rawList []json.RawMessage
		if err := json.Unmarshal(inner, &rawList); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "stmts: %v", err)
		}
		list, err := decodeStmts(rawList)
		if err != nil {
			return nil, err
		}
		return Stmts{List: list}, nil
	}

	return nil, errors.Wrap(ErrMalformedAST, "unknown statement format %s", compact(raw))
}

func decodeExp(raw json.RawMessage) (Exp, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "Nil" {
			return Nil{}, nil
		}
		return nil, errors.Wrap(ErrMalformedAST, "unknown expression string %q", s)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, errors.Wrap(ErrMalformedAST, "expression: %v", err)
	}

	if inner, ok := obj["Num"]; ok {
		var n int64
		if err := json.Unmarshal(inner, &n); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "num: %v", err)
		}
		return Num{Value: n}, nil
	}
	if _, ok := obj["Nil"]; ok {
		return Nil{}, nil
	}
	if inner, ok := obj["Val"]; ok {
		place, err := decodePlace(inner)
		if err != nil {
			return nil, err
		}
		return Val{Place: place}, nil
	}
	if inner, ok := obj["UnOp"]; ok {
		return decodeUnOp(inner)
	}
	if inner, ok := obj["BinOp"]; ok {
		return decodeBinOp(inner)
	}
	if inner, ok := obj["Select"]; ok {
		var sel struct {
			Guard json.RawMessage `json:"guard"`
			TT    json.RawMessage `json:"tt"`
			FF    json.RawMessage `json:"ff"`
		}
		if err := json.Unmarshal(inner, &sel); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "select: %v", err)
		}
		guard, err := decodeExp(sel.Guard)
		if err != nil {
			return nil, err
		}
		tt, err := decodeExp(sel.TT)
		if err != nil {
			return nil, err
		}
		ff, err := decodeExp(sel.FF)
		if err != nil {
			return nil, err
		}
		return Select{Guard: guard, TT: tt, FF: ff}, nil
	}
	if inner, ok := obj["Call"]; ok {
		call, err := decodeFunCall(inner)
		if err != nil {
			return nil, err
		}
		return CallExp{Call: call}, nil
	}
	if inner, ok := obj["NewArray"]; ok {
		var parts [2]json.RawMessage
		if err := json.Unmarshal(inner, &parts); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "new array: %v", err)
		}
		typ, err := decodeType(parts[0])
		if err != nil {
			return nil, err
		}
		amt, err := decodeExp(parts[1])
		if err != nil {
			return nil, err
		}
		return NewArray{Typ: typ, Amt: amt}, nil
	}
	if inner, ok := obj["NewSingle"]; ok {
		typ, err := decodeType(inner)
		if err != nil {
			return nil, err
		}
		return NewSingle{Typ: typ}, nil
	}

	return nil, errors.Wrap(ErrMalformedAST, "unknown expression format %s", compact(raw))
}

func decodeUnOp(raw json.RawMessage) (Exp, error) {
	var opStr string
	var expRaw json.RawMessage

	var parts [2]json.RawMessage
	if err := json.Unmarshal(raw, &parts); err == nil {
		if err := json.Unmarshal(parts[0], &opStr); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "unop op: %v", err)
		}
		expRaw = parts[1]
	} else {
		var obj struct {
			Op  string          `json:"op"`
			Exp json.RawMessage `json:"exp"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "unop: %v", err)
		}
		opStr = obj.Op
		expRaw = obj.Exp
	}

	var op UnaryOp
	switch opStr {
	case "Neg":
		op = Neg
	case "Not":
		op = Not
	default:
		return nil, errors.Wrap(ErrMalformedAST, "unknown unary operator %q", opStr)
	}
	exp, err := decodeExp(expRaw)
	if err != nil {
		return nil, err
	}
	return UnOp{Op: op, Exp: exp}, nil
}

var binOps = map[string]BinaryOp{
	"Add":   Add,
	"Sub":   Sub,
	"Mul":   Mul,
	"Div":   Div,
	"Eq":    Eq,
	"NotEq": NotEq,
	"Lt":    Lt,
	"Lte":   Lte,
	"Gt":    Gt,
	"Gte":   Gte,
	"And":   And,
	"Or":    Or,
}

func decodeBinOp(raw json.RawMessage) (Exp, error) {
	var opStr string
	var leftRaw, rightRaw json.RawMessage

	var parts [3]json.RawMessage
	if err := json.Unmarshal(raw, &parts); err == nil {
		if err := json.Unmarshal(parts[0], &opStr); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "binop op: %v", err)
		}
		leftRaw, rightRaw = parts[1], parts[2]
	} else {
		var obj struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "binop: %v", err)
		}
		opStr = obj.Op
		leftRaw, rightRaw = obj.Left, obj.Right
	}

	op, ok := binOps[opStr]
	if !ok {
		return nil, errors.Wrap(ErrMalformedAST, "unknown binary operator %q", opStr)
	}
	left, err := decodeExp(leftRaw)
	if err != nil {
		return nil, err
	}
	right, err := decodeExp(rightRaw)
	if err != nil {
		return nil, err
	}
	return BinOp{Op: op, Left: left, Right: right}, nil
}

func decodePlace(raw json.RawMessage) (Place, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, errors.Wrap(ErrMalformedAST, "place: %v", err)
	}

	if inner, ok := obj["Id"]; ok {
		var name string
		if err := json.Unmarshal(inner, &name); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "id: %v", err)
		}
		return Id{Name: name}, nil
	}
	if inner, ok := obj["Deref"]; ok {
		exp, err := decodeExp(inner)
		if err != nil {
			return nil, err
		}
		return Deref{Exp: exp}, nil
	}
	if inner, ok := obj["ArrayAccess"]; ok {
		var aa struct {
			Array json.RawMessage `json:"array"`
			Idx   json.RawMessage `json:"idx"`
		}
		if err := json.Unmarshal(inner, &aa); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "array access: %v", err)
		}
		arr, err := decodeExp(aa.Array)
		if err != nil {
			return nil, err
		}
		idx, err := decodeExp(aa.Idx)
		if err != nil {
			return nil, err
		}
		return ArrayAccess{Array: arr, Index: idx}, nil
	}
	if inner, ok := obj["FieldAccess"]; ok {
		var parts [2]json.RawMessage
		if err := json.Unmarshal(inner, &parts); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "field access: %v", err)
		}
		ptr, err := decodeExp(parts[0])
		if err != nil {
			return nil, err
		}
		var field string
		if err := json.Unmarshal(parts[1], &field); err != nil {
			return nil, errors.Wrap(ErrMalformedAST, "field name: %v", err)
		}
		return FieldAccess{Ptr: ptr, Field: field}, nil
	}

	return nil, errors.Wrap(ErrMalformedAST, "unknown place format %s", compact(raw))
}

func decodeFunCall(raw json.RawMessage) (*FunCall, error) {
	var parts [2]json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil, errors.Wrap(ErrMalformedAST, "call: %v", err)
	}
	callee, err := decodeExp(parts[0])
	if err != nil {
		return nil, err
	}
	var rawArgs []json.RawMessage
	if err := json.Unmarshal(parts[1], &rawArgs); err != nil {
		return nil, errors.Wrap(ErrMalformedAST, "call args: %v", err)
	}
	call := &FunCall{Callee: callee}
	for _, ra := range rawArgs {
		arg, err := decodeExp(ra)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}
	return call, nil
}

// compact truncates a raw JSON fragment for error messages.
func compact(raw json.RawMessage) string {
	s := string(raw)
	if len(s) > 60 {
		s = s[:60] + "..."
	}
	return s
}
