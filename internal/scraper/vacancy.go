package scraper

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var (
	paragraphPattern = regexp.MustCompile(`</w:p>`)
	tagPattern       = regexp.MustCompile(`<[^>]+>`)
)

// LoadVacancyText reads the vacancy description from a .docx or plain
// text file.
func LoadVacancyText(path string) (string, error) {
	if strings.ToLower(filepath.Ext(path)) != ".docx" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read vacancy file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("read vacancy docx: %w", err)
	}
	defer doc.Close()

	return cleanDocxContent(doc.Editable().GetContent()), nil
}

// DocxText extracts plain text from an in-memory .docx payload.
func DocxText(r io.ReaderAt, size int64) (string, error) {
	doc, err := docx.ReadDocxFromMemory(r, size)
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()

	return cleanDocxContent(doc.Editable().GetContent()), nil
}

// cleanDocxContent turns the raw document XML into plain text: paragraph
// boundaries become newlines, the remaining markup is stripped.
func cleanDocxContent(content string) string {
	content = paragraphPattern.ReplaceAllString(content, "\n")
	content = tagPattern.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	lines := make([]string, 0)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}
