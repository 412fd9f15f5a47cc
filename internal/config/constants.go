package config

// SchemaFileExtensions are all recognized schema file extensions.
var SchemaFileExtensions = []string{".yaml", ".yml", ".json"}

// ReturnKey is the reserved signature-table key holding the return
// value descriptor of a function.
const ReturnKey = "return"

// TagName is the struct tag consulted when deriving attribute
// descriptors from Go struct fields.
const TagName = "typefit"

// CompileCacheSize bounds the descriptor -> validator compile cache.
// Correctness does not depend on retention, only performance does, so
// the cache is simply reset when it grows past this bound.
const CompileCacheSize = 4096

// Built-in type names recognized by schema documents.
const (
	AnyTypeName      = "any"
	NilTypeName      = "nil"
	BoolTypeName     = "bool"
	IntTypeName      = "int"
	FloatTypeName    = "float"
	StringTypeName   = "string"
	BytesTypeName    = "bytes"
	CallableTypeName = "callable"
)
