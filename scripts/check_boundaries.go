// Command check_boundaries enforces the hexagonal layering of contexts/:
// services never import each other, and domain, ports and application code
// stay free of adapters and runtime infrastructure.
package main

import (
	"flag"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// modulePath is the import path root declared in go.mod.
const modulePath = "communitypulse"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists what a layer may import beyond the standard library.
// Prefixes starting with "./" are relative to the owning service.
type layerRule struct {
	allowed    []string
	thirdParty bool
}

var layerRules = map[string]layerRule{
	"domain": {
		allowed: []string{"./domain"},
	},
	"ports": {
		allowed: []string{"./domain", "./ports", modulePath + "/contracts"},
	},
	"application": {
		allowed: []string{"./application", "./domain", "./ports", modulePath + "/contracts"},
	},
}

func main() {
	root := flag.String("root", "contexts", "directory holding <context>/<service> trees")
	flag.Parse()

	violations, err := collectViolations(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "walk %s: %v\n", *root, err)
		os.Exit(2)
	}
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) ([]violation, error) {
	var violations []violation
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 3 {
			return nil
		}
		servicePrefix := fmt.Sprintf("%s/contexts/%s/%s", modulePath, parts[0], parts[1])
		layer := ""
		if len(parts) > 3 {
			layer = parts[2]
		}
		found, err := validateFile(path, layer, servicePrefix)
		if err != nil {
			return err
		}
		violations = append(violations, found...)
		return nil
	})
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		if violations[i].Line != violations[j].Line {
			return violations[i].Line < violations[j].Line
		}
		return violations[i].Import < violations[j].Import
	})
	return violations, err
}

func validateFile(path string, layer string, servicePrefix string) ([]violation, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var violations []violation
	report := func(importPath string, line int, rule string) {
		violations = append(violations, violation{
			File:   filepath.ToSlash(path),
			Line:   line,
			Import: importPath,
			Rule:   rule,
		})
	}

	rule, layered := layerRules[layer]
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line

		if hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, servicePrefix) {
			report(importPath, line, "cross-service imports are forbidden")
			continue
		}
		if !layered || isStdlib(importPath) {
			continue
		}
		switch {
		case strings.Contains(importPath, "/adapters/") || strings.HasSuffix(importPath, "/adapters"):
			report(importPath, line, layer+" must not import adapters")
		case hasPrefix(importPath, modulePath+"/internal") || hasPrefix(importPath, modulePath+"/cmd"):
			report(importPath, line, layer+" must not import runtime infrastructure")
		case !isAllowed(importPath, rule, servicePrefix):
			report(importPath, line, layer+" import is outside explicit allowlist")
		}
	}
	return violations, nil
}

func isAllowed(importPath string, rule layerRule, servicePrefix string) bool {
	if !hasPrefix(importPath, modulePath) {
		return rule.thirdParty
	}
	for _, allowed := range rule.allowed {
		if strings.HasPrefix(allowed, "./") {
			allowed = servicePrefix + "/" + strings.TrimPrefix(allowed, "./")
		}
		if hasPrefix(importPath, allowed) {
			return true
		}
	}
	return false
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isStdlib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return first != modulePath && !strings.Contains(first, ".")
}
