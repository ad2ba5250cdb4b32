package site

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Warning describes one soft finding from the HTML check. Warnings are
// reported but never fail the deploy.
type Warning struct {
	Path    string // Path relative to the staged root
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Message)
}

// Lint runs a superficial well-formedness check over every HTML file in the
// staged tree: each page should declare a DOCTYPE and close its html element.
// This catches truncated uploads and template rendering gone wrong, nothing
// more.
func Lint(dir string) ([]Warning, error) {
	var warnings []Warning

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isHTML(d.Name()) {
			return nil
		}

		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		content := strings.ToLower(string(b))
		if !strings.Contains(content, "<!doctype") {
			warnings = append(warnings, Warning{Path: rel, Message: "missing DOCTYPE declaration"})
		}
		if !strings.Contains(content, "</html>") {
			warnings = append(warnings, Warning{Path: rel, Message: "missing closing </html> tag"})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return warnings, nil
}

func isHTML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".html" || ext == ".htm"
}
