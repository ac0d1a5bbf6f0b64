package repo

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"addonsmith/pkg/addon"
)

// branchWordPattern decides whether the trailing token of a README list
// item names a branch. Tokens with dots or slashes stay part of the
// subpath.
var branchWordPattern = regexp.MustCompile(`^\w+$`)

// SourcesFromReadme reads a repository README and returns one remote
// source per top-level list item of the form
// "- [Name](https://host/owner/repo) subpath branch", where subpath and
// branch are optional. The link URL is expanded to
// "url.git[#branch][:subpath]".
func SourcesFromReadme(path string) ([]addon.Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read readme: %w", err)
	}
	return parseReadmeSources(content), nil
}

func parseReadmeSources(content []byte) []addon.Source {
	document := goldmark.New().Parser().Parse(text.NewReader(content))

	var sources []addon.Source
	_ = ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || node.Kind() != ast.KindListItem {
			return ast.WalkContinue, nil
		}
		if ref, ok := sourceRefFromListItem(node, content); ok {
			sources = append(sources, addon.ParseSource(ref))
		}
		// Nested lists never contribute sources.
		return ast.WalkSkipChildren, nil
	})
	return sources
}

// sourceRefFromListItem matches items whose text begins with a link and
// builds a clonable source reference from it.
func sourceRefFromListItem(item ast.Node, content []byte) (string, bool) {
	block := item.FirstChild()
	if block == nil {
		return "", false
	}
	link, ok := block.FirstChild().(*ast.Link)
	if !ok || len(link.Destination) == 0 {
		return "", false
	}
	subpath, branch := splitReadmeRemainder(textAfter(link, content))

	ref := string(link.Destination) + ".git"
	if branch != "" {
		ref += "#" + branch
	}
	if subpath != "" {
		ref += ":" + subpath
	}
	return ref, true
}

// textAfter collects the plain text following a link within the same
// block.
func textAfter(link *ast.Link, content []byte) string {
	var out strings.Builder
	for sibling := link.NextSibling(); sibling != nil; sibling = sibling.NextSibling() {
		if textNode, ok := sibling.(*ast.Text); ok {
			out.Write(textNode.Segment.Value(content))
			if textNode.SoftLineBreak() || textNode.HardLineBreak() {
				out.WriteByte(' ')
			}
		}
	}
	return out.String()
}

// splitReadmeRemainder splits the text after the link into an add-on
// subpath and an optional trailing branch word.
func splitReadmeRemainder(remainder string) (subpath, branch string) {
	fields := strings.Fields(remainder)
	if len(fields) == 0 {
		return "", ""
	}
	last := fields[len(fields)-1]
	if branchWordPattern.MatchString(last) {
		return strings.Join(fields[:len(fields)-1], " "), last
	}
	return strings.Join(fields, " "), ""
}
