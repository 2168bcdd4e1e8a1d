package pydiscover

// tree-sitter-python node type names this package matches against.
const (
	nodeFunctionDefinition  = "function_definition"
	nodeClassDefinition     = "class_definition"
	nodeDecoratedDefinition = "decorated_definition"
	nodeCall                = "call"
	nodeKeywordArgument     = "keyword_argument"
	nodeAttribute           = "attribute"
	nodeIdentifier          = "identifier"
	nodeString              = "string"
	nodeInteger             = "integer"
	nodeFloat               = "float"
	nodeTrue                = "true"
	nodeFalse               = "false"
	nodeNone                = "none"
	nodeUnaryOperator       = "unary_operator"
	nodeTuple               = "tuple"
	nodeList                = "list"
	nodeImportStatement     = "import_statement"
	nodeImportFromStatement = "import_from_statement"
	nodeDottedName          = "dotted_name"
	nodeAliasedImport       = "aliased_import"
	nodeRelativeImport      = "relative_import"
)
