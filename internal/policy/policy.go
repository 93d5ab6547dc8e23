// Package policy assembles the reviewer prompt from repository policy
// documents and the diff under review.
package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// GuidelinesFile is the root policy document, read from the repo root when
// present. Documents it references by markdown link are pulled into the
// prompt as additional context.
const GuidelinesFile = "REVIEW_GUIDELINES.md"

// defaultHeaderLines frame the task and pin the output contract. They are
// used whenever no header override is configured.
var defaultHeaderLines = []string{
	"You are reviewing a code change before it is committed.",
	"Judge only the diff below; the surrounding context is provided for reference.",
	"Block the change for correctness bugs, security problems, data loss, or clear policy violations.",
	"Do not block for style preferences or speculative improvements.",
	"Respond with a single JSON object and nothing else:",
	`{"status": "pass" | "fail", "summary": "<one sentence>", "findings": [{"severity": "...", "title": "...", "details": "...", "file": "...", "line": 0}]}`,
	`"findings" must be empty when the change is acceptable.`,
}

// HeaderLines resolves the configured prompt header. An empty override keeps
// the built-in lines; an override that parses as a JSON array of strings is
// used line by line; anything else is split on newlines.
func HeaderLines(override string) []string {
	trimmed := strings.TrimSpace(override)
	if trimmed == "" {
		return defaultHeaderLines
	}
	if strings.HasPrefix(trimmed, "[") {
		var lines []string
		if err := json.Unmarshal([]byte(trimmed), &lines); err == nil {
			return lines
		}
	}
	return strings.Split(trimmed, "\n")
}

// Doc is one policy document included in the prompt.
type Doc struct {
	Name    string
	Content string
}

// markdownLinkPattern matches the target of an inline markdown link.
var markdownLinkPattern = regexp.MustCompile(`\[[^\]]*\]\(([^)\s]+)\)`)

// ExtractRefs returns the local file references found in a policy document.
// External links and anchors are dropped; the order of first appearance is
// preserved and duplicates removed.
func ExtractRefs(markdown string) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, m := range markdownLinkPattern.FindAllStringSubmatch(markdown, -1) {
		target := m[1]
		if strings.Contains(target, "://") || strings.HasPrefix(target, "#") || strings.HasPrefix(target, "mailto:") {
			continue
		}
		// Drop any fragment, keep the file path.
		if i := strings.Index(target, "#"); i >= 0 {
			target = target[:i]
		}
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		refs = append(refs, target)
	}
	return refs
}

// ExpandRefs resolves references against the tracked file list. A reference
// containing a wildcard is matched as a glob pattern against every tracked
// path; a plain reference is kept only when tracked. Order is preserved,
// duplicates removed.
func ExpandRefs(refs []string, tracked []string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, ref := range refs {
		if !strings.Contains(ref, "*") {
			for _, file := range tracked {
				if file == ref {
					add(file)
					break
				}
			}
			continue
		}
		for _, file := range tracked {
			if ok, err := path.Match(ref, file); err == nil && ok {
				add(file)
			}
		}
	}
	return out
}

// LoadContext reads the root policy document and every document it
// references. A missing guidelines file yields no docs; individually
// unreadable references are skipped.
func LoadContext(repoRoot string, tracked []string) []Doc {
	data, err := os.ReadFile(filepath.Join(repoRoot, GuidelinesFile))
	if err != nil {
		return nil
	}

	docs := []Doc{{Name: GuidelinesFile, Content: string(data)}}
	refs := ExpandRefs(ExtractRefs(string(data)), tracked)
	for _, ref := range refs {
		if ref == GuidelinesFile {
			continue
		}
		content, err := os.ReadFile(filepath.Join(repoRoot, ref))
		if err != nil {
			continue
		}
		docs = append(docs, Doc{Name: ref, Content: string(content)})
	}
	return docs
}

// BuildPrompt assembles the final reviewer prompt: header lines, then each
// policy document under its own heading, then the diff in a fenced block.
func BuildPrompt(headerLines []string, docs []Doc, diff string) string {
	var b strings.Builder
	for _, line := range headerLines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	for _, doc := range docs {
		b.WriteString("\n## ")
		b.WriteString(doc.Name)
		b.WriteString("\n\n")
		b.WriteString(strings.TrimRight(doc.Content, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\n## Diff\n\n")
	fmt.Fprintf(&b, "```diff\n%s\n```\n", strings.TrimRight(diff, "\n"))
	return b.String()
}
