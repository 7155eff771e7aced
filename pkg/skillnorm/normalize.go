// Package skillnorm canonicalizes skill tokens via a frozen alias map so
// vector-index filters stay stable across alias spellings.
package skillnorm

import "strings"

// aliasMap is built once at package init; each entry maps a lowercased
// alias to its canonical form. A representative subset; mechanical
// extension is noted in DESIGN.md.
var aliasMap = map[string]string{
	"react.js":     "react",
	"reactjs":      "react",
	"react js":     "react",
	"angularjs":    "angular",
	"angular.js":   "angular",
	"angular js":   "angular",
	"vue.js":       "vue",
	"vuejs":        "vue",
	"node.js":      "nodejs",
	"node":         "nodejs",
	"golang":       "go",
	"py":           "python",
	"python3":      "python",
	"k8s":          "kubernetes",
	"js":           "javascript",
	"ts":           "typescript",
	"postgres":     "postgresql",
	"psql":         "postgresql",
	"ms sql":       "sql server",
	"mssql":        "sql server",
	"aws ec2":      "aws",
	"amazon web services": "aws",
	"gcp":          "google cloud platform",
	"ml":           "machine learning",
	"ai":           "artificial intelligence",
	"ci/cd":        "ci-cd",
	"cicd":         "ci-cd",
	"rest api":     "rest",
	"restful":      "rest",
	"restful api":  "rest",
	"dotnet":       ".net",
	"asp.net":      ".net",
	"c sharp":      "c#",
	"csharp":       "c#",
}

// displayForm maps a canonical key back to its preferred display
// casing, used only when the canonical form itself needs a friendlier
// rendering than its lowercase map key.
var displayForm = map[string]string{
	"go":         "Go",
	"aws":        "AWS",
	"sql server": "SQL Server",
	".net":       ".NET",
	"c#":         "C#",
	"ci-cd":      "CI/CD",
}

// Normalize returns the canonical form of a single skill token. Unknown
// tokens are returned trimmed and lowercased; a canonical form listed in
// displayForm is returned in its display casing instead.
func Normalize(skill string) string {
	trimmed := strings.TrimSpace(skill)
	if trimmed == "" {
		return ""
	}

	key := strings.ToLower(trimmed)
	canonical, ok := aliasMap[key]
	if !ok {
		canonical = key
	}

	if display, ok := displayForm[canonical]; ok {
		return display
	}
	return canonical
}

// NormalizeList applies Normalize to each element and deduplicates,
// preserving first occurrence order.
func NormalizeList(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))

	for _, s := range skills {
		n := Normalize(s)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}
