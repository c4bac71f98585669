// Package codegen lowers a type-checked, monomorphized program into a
// single self-contained C translation unit. Generic templates are skipped:
// by the time a *ast.Program reaches Generate, the type checker has
// appended one concrete instance per type argument and recorded that
// argument on each generic call, and codegen mangles the call's name with
// the argument's tag to reach the instance.
package codegen

import (
	"strings"

	"github.com/rill-lang/rillc/internal/types"
)

// primC maps a primitive Rill type name to its C type.
var primC = map[string]string{
	"i8": "int8_t", "i16": "int16_t", "i32": "int32_t", "i64": "int64_t",
	"u8": "uint8_t", "u16": "uint16_t", "u32": "uint32_t", "u64": "uint64_t",
	"f32": "float", "f64": "double",
	"bool": "bool",
	"str":  "__lang_rt_Str*",
	"void": "void",
}

// castTypes is the set of primitive types reachable via a cast-call
// expression such as i32(x).
var castTypes = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true,
	"u8": true, "u16": true, "u32": true, "u64": true,
	"f32": true, "f64": true,
}

// ci mangles a language identifier used as a C field, parameter, or
// member name so it can never collide with a C keyword.
func ci(name string) string {
	return name + "_"
}

// elemTag delegates to the type checker's own mangling tag builder so a
// monomorphized generic function's checked name and codegen's generated
// C symbol for it always agree byte-for-byte, even for compound type
// arguments like List[i64] or Dict[str,i64].
func elemTag(ty string) string {
	return types.ElemTag(ty)
}

func dictCombinedTag(ty string) string {
	return types.DictCombinedTag(ty)
}

func tupleStructName(ty string) string {
	elems := types.TupleElemTypes(ty)
	tags := make([]string, len(elems))
	for i, e := range elems {
		tags[i] = elemTag(e)
	}
	return "__lang_rt_Tuple_" + strings.Join(tags, "_")
}

func fnTypedefName(ty string) string {
	return types.FnTypedefName(ty)
}

// isRefType reports whether a value of the given type carries a
// refcounted C pointer that must be retained/released.
func (g *CodeGen) isRefType(ty string) bool {
	if ty == "str" {
		return true
	}
	if _, ok := g.ifaceDefs[ty]; ok {
		return true
	}
	if types.IsListType(ty) || types.IsDictType(ty) {
		return true
	}
	if types.IsFnType(ty) {
		return false
	}
	if types.IsTupleType(ty) {
		for _, et := range types.TupleElemTypes(ty) {
			if g.isRefType(et) {
				return true
			}
		}
		return false
	}
	if _, ok := g.classDefs[ty]; ok {
		return true
	}
	return false
}

// cType maps a Rill type name to its C spelling.
func (g *CodeGen) cType(ty string) string {
	if t, ok := primC[ty]; ok {
		return t
	}
	if _, ok := g.enumVariants[ty]; ok {
		return "int64_t"
	}
	if _, ok := g.structDefs[ty]; ok {
		return "__lang_rt_Struct_" + ty
	}
	if types.IsListType(ty) {
		return "__lang_rt_List_" + elemTag(types.ListElemType(ty)) + "*"
	}
	if types.IsDictType(ty) {
		return "__lang_rt_Dict_" + dictCombinedTag(ty) + "*"
	}
	if _, ok := g.ifaceDefs[ty]; ok {
		return "__lang_rt_Iface_" + ty
	}
	if types.IsFnType(ty) {
		return fnTypedefName(ty)
	}
	if types.IsTupleType(ty) {
		return tupleStructName(ty)
	}
	return "__lang_rt_Class_" + ty + "*"
}
