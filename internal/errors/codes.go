package errors

// Error code taxonomy, organized by compiler phase (SPEC_FULL.md §7).
const (
	// Preprocessor (PPC###)
	PPC001 = "PPC001" // @define requires a name
	PPC002 = "PPC002" // @if requires a name
	PPC007 = "PPC007" // unterminated @if block

	// Lexer (LEX###)
	LEX001 = "LEX001" // unterminated string literal
	LEX002 = "LEX002" // invalid character

	// Parser (PAR###)
	PAR001 = "PAR001" // unexpected token
	PAR002 = "PAR002" // missing closing delimiter

	// Manifest loader (MAN###)
	MAN001 = "MAN001" // malformed manifest entry
	MAN002 = "MAN002" // library not found

	// Import / extern resolver (IMP###)
	IMP001 = "IMP001" // module not found
	IMP002 = "IMP002" // circular import
	IMP003 = "IMP003" // unknown extern library

	// Type checker (TYP###)
	TYP001 = "TYP001" // type mismatch
	TYP002 = "TYP002" // unbound name / unknown type
	TYP003 = "TYP003" // implements-conformance failure
	TYP004 = "TYP004" // duplicate declaration
	TYP005 = "TYP005" // arity mismatch

	// Refcount-cycle check (CYC###)
	CYC001 = "CYC001" // multi-class reference cycle
	CYC002 = "CYC002" // struct-in-struct cycle

	// Code generator (GEN###)
	GEN001 = "GEN001" // codegen invariant violated (internal assert)

	// Emitted-runtime contract (RT###) — these never originate in Go code;
	// they document the codes the generated C's runtime helpers raise.
	RT001 = "RT001" // null dereference
	RT002 = "RT002" // index out of bounds
	RT003 = "RT003" // bad downcast
	RT004 = "RT004" // allocation failure
)
