// Package types implements Rill's type checker: structural type-name
// parsing, class/struct/interface/enum registration, expression and
// statement checking, refcount-cycle rejection, and monomorphization of
// single-type-parameter generic functions.
package types

import "strings"

// KnownBaseTypes are the built-in scalar and void types, independent of
// any user declaration.
var KnownBaseTypes = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true,
	"u8": true, "u16": true, "u32": true, "u64": true,
	"f32": true, "f64": true,
	"bool": true, "str": true, "void": true,
}

var IntTypes = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true,
	"u8": true, "u16": true, "u32": true, "u64": true,
}

var FloatTypes = map[string]bool{"f32": true, "f64": true}

// hashableBase are the primitive types allowed as a Dict key.
var hashableBase = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true,
	"u8": true, "u16": true, "u32": true, "u64": true,
	"str": true, "bool": true,
}

func IsListType(ty string) bool {
	return strings.HasPrefix(ty, "List[") && strings.HasSuffix(ty, "]")
}

func ListElemType(ty string) string {
	return ty[5 : len(ty)-1]
}

func IsDictType(ty string) bool {
	return strings.HasPrefix(ty, "Dict[") && strings.HasSuffix(ty, "]")
}

// splitDictInner splits "K,V" into ("K", "V"), respecting nested [] and ().
func splitDictInner(inner string) (string, string) {
	depth := 0
	for i, ch := range inner {
		switch ch {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				return inner[:i], inner[i+1:]
			}
		}
	}
	return inner, ""
}

func DictKeyType(ty string) string {
	k, _ := splitDictInner(ty[5 : len(ty)-1])
	return k
}

func DictValType(ty string) string {
	_, v := splitDictInner(ty[5 : len(ty)-1])
	return v
}

func IsFnType(ty string) bool {
	return strings.HasPrefix(ty, "Fn(") && strings.Contains(ty, ")->")
}

func IsTupleType(ty string) bool {
	return len(ty) >= 5 && ty[0] == '(' && ty[len(ty)-1] == ')'
}

// splitTopLevel splits s on commas at nesting depth 0, for tuple elements
// and function parameter lists.
func splitTopLevel(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	depth := 0
	start := 0
	for i, ch := range s {
		switch ch {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func TupleElemTypes(ty string) []string {
	return splitTopLevel(ty[1 : len(ty)-1])
}

func FnParamTypes(ty string) []string {
	inner := ty[3:strings.Index(ty, ")->")]
	return splitTopLevel(inner)
}

func FnRetType(ty string) string {
	return ty[strings.Index(ty, ")->")+3:]
}

// PrimTag maps a primitive type name to the mangling tag used both for
// generic-function instantiation and for codegen's container/closure C
// symbol names, so the two agree byte-for-byte.
var PrimTag = map[string]string{
	"i64": "I64", "f64": "F64", "f32": "F32", "bool": "BOOL", "str": "STR",
	"i8": "I8", "i16": "I16", "i32": "I32",
	"u8": "U8", "u16": "U16", "u32": "U32", "u64": "U64",
}

// ElemTag produces the canonical mangling tag for a structural or nominal
// type name: primitives use their short tag, List/Dict/Fn/tuple shapes
// recurse into their element types, and nominal class/struct/enum/
// interface names pass through unchanged. Both the generic-call checker
// and codegen call this so a monomorphized function's checked name and
// its generated C symbol always match.
func ElemTag(ty string) string {
	if t, ok := PrimTag[ty]; ok {
		return t
	}
	if IsListType(ty) {
		return "List_" + ElemTag(ListElemType(ty))
	}
	if IsDictType(ty) {
		return "Dict_" + DictCombinedTag(ty)
	}
	if IsFnType(ty) {
		return FnTypedefName(ty)
	}
	if IsTupleType(ty) {
		elems := TupleElemTypes(ty)
		tags := make([]string, len(elems))
		for i, e := range elems {
			tags[i] = ElemTag(e)
		}
		return "Tuple_" + strings.Join(tags, "_")
	}
	return ty
}

// DictCombinedTag is the tag codegen uses for a Dict's container and
// entry-struct C symbol names: the key tag and value tag joined.
func DictCombinedTag(ty string) string {
	return ElemTag(DictKeyType(ty)) + "_" + ElemTag(DictValType(ty))
}

// FnTypedefName is the C typedef name codegen emits for a closure type,
// and the tag ElemTag uses for a Fn(...)->... type argument.
func FnTypedefName(ty string) string {
	params := FnParamTypes(ty)
	ret := FnRetType(ty)
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = ElemTag(p)
	}
	retTag := "VOID"
	if ret != "void" {
		retTag = ElemTag(ret)
	}
	if len(parts) == 0 {
		return "__lang_rt_Fn_VOID__" + retTag
	}
	return "__lang_rt_Fn_" + strings.Join(parts, "_") + "__" + retTag
}
