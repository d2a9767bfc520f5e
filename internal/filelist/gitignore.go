package filelist

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// patternKind classifies a compiled ignore pattern so the common cases
// (exact name, prefix, suffix) can be matched without a regex engine.
type patternKind int

const (
	kindExact patternKind = iota
	kindPrefix
	kindSuffix
	kindRegex
)

type ignorePattern struct {
	kind      patternKind
	literal   string
	re        *regexp.Regexp
	dirOnly   bool
	negate    bool
	anchored  bool // pattern contains a '/' other than a trailing one: match from ignore-file root
}

// ignoreSet is every compiled pattern contributed by one directory's ignore
// file, rooted at that directory.
type ignoreSet struct {
	root     string
	patterns []ignorePattern
}

var regexCache sync.Map // pattern string -> *regexp.Regexp

func compileIgnoreFile(path string) (*ignoreSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	set := &ignoreSet{root: filepath.Dir(path)}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if p, ok := compilePatternLine(line); ok {
			set.patterns = append(set.patterns, p)
		}
	}
	return set, scanner.Err()
}

func compilePatternLine(line string) (ignorePattern, bool) {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return ignorePattern{}, false
	}

	p := ignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if line == "" {
		return ignorePattern{}, false
	}

	slashIdx := strings.Index(line, "/")
	p.anchored = slashIdx >= 0 && slashIdx != len(line)-1
	line = strings.TrimPrefix(line, "/")

	switch {
	case !strings.ContainsAny(line, "*?[\\"):
		p.kind = kindExact
		p.literal = line
	case strings.HasPrefix(line, "*") && !strings.ContainsAny(line[1:], "*?[\\"):
		p.kind = kindSuffix
		p.literal = line[1:]
	case strings.HasSuffix(line, "*") && !strings.ContainsAny(line[:len(line)-1], "*?[\\"):
		p.kind = kindPrefix
		p.literal = line[:len(line)-1]
	default:
		p.kind = kindRegex
		p.re = compileGlobRegex(line)
	}

	return p, true
}

func compileGlobRegex(glob string) *regexp.Regexp {
	if cached, ok := regexCache.Load(glob); ok {
		return cached.(*regexp.Regexp)
	}
	var b strings.Builder
	b.WriteString("^")
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '.':
			b.WriteString("\\.")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re := regexp.MustCompile(b.String())
	regexCache.Store(glob, re)
	return re
}

// matches reports whether rel (slash-separated, relative to set.root) matches p.
func (p ignorePattern) matches(rel string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	name := rel
	if !p.anchored {
		name = filepath.Base(rel)
	}
	switch p.kind {
	case kindExact:
		return name == p.literal
	case kindPrefix:
		return strings.HasPrefix(name, p.literal)
	case kindSuffix:
		return strings.HasSuffix(name, p.literal)
	case kindRegex:
		return p.re.MatchString(name)
	}
	return false
}

// shouldIgnore evaluates all patterns in order, last match (honoring
// negation) wins, matching standard ignore-file semantics.
func (s *ignoreSet) shouldIgnore(path string, isDir bool) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	ignored := false
	for _, p := range s.patterns {
		if p.matches(rel, isDir) {
			ignored = !p.negate
		}
	}
	return ignored
}

// defaultIgnoreDirs are always skipped regardless of any ignore file,
// mirroring the "standard ... conventions" rule even on trees with no VCS.
var defaultIgnoreDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true,
}
