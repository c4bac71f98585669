package types

// VarInfo describes a declared local, parameter, or global binding.
type VarInfo struct {
	Ty      string
	IsConst bool
}

// ClassInfo is the checked signature surface of a class: field types and
// method signatures (excluding the implicit self parameter).
type ClassInfo struct {
	Name       string
	Fields     map[string]string
	Methods    map[string]FuncSig
	InitParams []string
}

// StructInfo mirrors ClassInfo for value types; FieldOrder preserves
// declaration order since struct construction is positional.
type StructInfo struct {
	Name       string
	Fields     map[string]string
	FieldOrder []string
	Methods    map[string]FuncSig
}

// InterfaceInfo is the method contract a class may claim to implement.
type InterfaceInfo struct {
	Name    string
	Methods map[string]FuncSig
}

// FuncSig is a checked function or method signature.
type FuncSig struct {
	Params []string
	Ret    string
}

// EnumVariantInfo resolves one enum variant to its backing i64 value.
type EnumVariantInfo struct {
	EnumName string
	Value    int64
}
