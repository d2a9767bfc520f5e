// Package structure adapts language-specific structural parsing to the core
// pipeline's needs: detecting a file's language, mapping hit lines to their
// smallest enclosing syntactic block, recognizing test files, and tokenizing
// block content for ranking.
package structure

import (
	"path/filepath"
	"strings"
)

// LanguageID names one of the adapters the registry knows about.
type LanguageID string

const (
	Go         LanguageID = "go"
	Python     LanguageID = "python"
	JavaScript LanguageID = "javascript"
	TypeScript LanguageID = "typescript"
	Rust       LanguageID = "rust"
	Java       LanguageID = "java"
	Cpp        LanguageID = "cpp"
	CSharp     LanguageID = "csharp"
	PHP        LanguageID = "php"
	Zig        LanguageID = "zig"
	Unknown    LanguageID = ""
)

var extToLanguage = map[string]LanguageID{
	".go":    Go,
	".py":    Python,
	".pyw":   Python,
	".js":    JavaScript,
	".jsx":   JavaScript,
	".mjs":   JavaScript,
	".cjs":   JavaScript,
	".ts":    TypeScript,
	".tsx":   TypeScript,
	".rs":    Rust,
	".java":  Java,
	".c":     Cpp,
	".h":     Cpp,
	".cc":    Cpp,
	".cpp":   Cpp,
	".cxx":   Cpp,
	".hpp":   Cpp,
	".cs":    CSharp,
	".php":   PHP,
	".zig":   Zig,
}

// DetectLanguage maps a file path to a LanguageID by extension, or Unknown.
func DetectLanguage(path string) LanguageID {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extToLanguage[ext]; ok {
		return lang
	}
	return Unknown
}

// IsTestFile applies the test-file heuristics named in §4.1 rule 3: a
// _test.* suffix, a tests/ or __tests__/ directory component, a test_
// prefix, or a handful of per-language conventions.
func IsTestFile(path string, lang LanguageID) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	if strings.HasSuffix(stem, "_test") || strings.HasSuffix(stem, ".test") || strings.HasSuffix(stem, ".spec") {
		return true
	}
	if strings.HasPrefix(stem, "test_") {
		return true
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		switch part {
		case "tests", "test", "__tests__", "spec":
			return true
		}
	}

	switch lang {
	case Java, CSharp:
		if strings.HasSuffix(stem, "Test") || strings.HasSuffix(stem, "Tests") || strings.HasSuffix(stem, "IT") {
			return true
		}
	case Python:
		if strings.HasSuffix(stem, "_test") || strings.HasPrefix(stem, "test") {
			return true
		}
	case Rust:
		if strings.Contains(filepath.ToSlash(path), "/tests/") {
			return true
		}
	}

	return false
}
