package structure

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
)

// Registry resolves a LanguageID to its Adapter. Every adapter is built once,
// up front, in NewRegistry; each adapter creates its tree-sitter parsers on
// demand from a pool.
type Registry struct {
	adapters map[LanguageID]Adapter
}

// NewRegistry builds every adapter the module ships grammars for, plus the
// line-heuristic fallback for everything else.
func NewRegistry() *Registry {
	r := &Registry{adapters: make(map[LanguageID]Adapter)}

	r.adapters[Go] = newTSAdapter(tree_sitter.NewLanguage(tree_sitter_go.Language()), map[string]string{
		"function_declaration": "function",
		"method_declaration":   "method",
		"type_declaration":     "type",
		"func_literal":         "function",
	})
	r.adapters[Python] = newTSAdapter(tree_sitter.NewLanguage(tree_sitter_python.Language()), map[string]string{
		"function_definition": "function",
		"class_definition":    "class",
	})
	r.adapters[JavaScript] = newTSAdapter(tree_sitter.NewLanguage(tree_sitter_javascript.Language()), map[string]string{
		"function_declaration":           "function",
		"generator_function_declaration": "function",
		"method_definition":               "method",
		"class_declaration":               "class",
		"arrow_function":                  "function",
		"function_expression":             "function",
	})
	r.adapters[TypeScript] = newTSAdapter(tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()), map[string]string{
		"function_declaration":           "function",
		"generator_function_declaration": "function",
		"method_definition":               "method",
		"class_declaration":               "class",
		"interface_declaration":           "interface",
		"arrow_function":                  "function",
		"function_expression":             "function",
	})
	r.adapters[Rust] = newTSAdapter(tree_sitter.NewLanguage(tree_sitter_rust.Language()), map[string]string{
		"function_item": "function",
		"struct_item":   "struct",
		"enum_item":     "enum",
		"trait_item":    "interface",
		"impl_item":     "block",
		"mod_item":      "module",
	})
	r.adapters[Java] = newTSAdapter(tree_sitter.NewLanguage(tree_sitter_java.Language()), map[string]string{
		"method_declaration":      "method",
		"constructor_declaration": "method",
		"class_declaration":       "class",
		"record_declaration":      "class",
		"interface_declaration":   "interface",
		"enum_declaration":        "enum",
	})
	r.adapters[Cpp] = newTSAdapter(tree_sitter.NewLanguage(tree_sitter_cpp.Language()), map[string]string{
		"function_definition": "function",
		"class_specifier":     "class",
		"struct_specifier":    "struct",
		"enum_specifier":      "enum",
		"namespace_definition": "module",
	})
	r.adapters[CSharp] = newTSAdapter(tree_sitter.NewLanguage(tree_sitter_csharp.Language()), map[string]string{
		"method_declaration":      "method",
		"constructor_declaration": "method",
		"class_declaration":       "class",
		"interface_declaration":   "interface",
		"struct_declaration":      "struct",
		"record_declaration":      "class",
		"enum_declaration":        "enum",
	})
	r.adapters[PHP] = newTSAdapter(tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP()), map[string]string{
		"class_declaration":     "class",
		"interface_declaration": "interface",
		"trait_declaration":     "class",
		"enum_declaration":      "enum",
		"function_definition":   "function",
		"method_declaration":    "method",
	})
	r.adapters[Zig] = newTSAdapter(tree_sitter.NewLanguage(tree_sitter_zig.Language()), map[string]string{
		"function_declaration": "function",
		"struct_declaration":   "struct",
		"union_declaration":    "struct",
	})

	return r
}

// Adapter returns the adapter for lang, or the heuristic line-based
// fallback when the grammar isn't one the module ships.
func (r *Registry) Adapter(lang LanguageID) Adapter {
	if a, ok := r.adapters[lang]; ok {
		return a
	}
	return heuristicAdapter{}
}

// ParseBlocks resolves path's language and runs its adapter, falling back to
// the heuristic adapter both when the language is unknown and when the
// tree-sitter parse itself fails (§7 LanguageParseError policy).
func (r *Registry) ParseBlocks(path string, content []byte) ([]BlockRange, LanguageID, error) {
	lang := DetectLanguage(path)
	adapter := r.Adapter(lang)
	blocks, err := adapter.ParseBlocks(content)
	if err != nil {
		blocks, _ = heuristicAdapter{}.ParseBlocks(content)
		return blocks, lang, err
	}
	return blocks, lang, nil
}
