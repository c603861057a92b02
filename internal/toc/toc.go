// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toc translates the bookmark listing emitted by the metadata
// tool into the indented outline syntax the PDF assembly tool consumes.
//
// The metadata listing is flat: one record per line, a nesting depth as
// the first token, the title after it, and an optional "#N" destination
// page as the last token. The assembly syntax expresses nesting through
// leading indentation instead, two spaces per depth level, with the
// quoted title and quoted page on one line. Parse accepts either form,
// so serialized output parses back to an isomorphic tree.
package toc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed indicates the bookmark listing violates the nesting
// contract: a record is deeper than one level below every open
// ancestor, or a line cannot be split into depth, title, and page.
var ErrMalformed = errors.New("malformed table of contents")

// indentUnit is the indentation emitted per depth level.
const indentUnit = "  "

// Node is one bookmark entry: a title, a destination page, and the
// entries nested beneath it in document order. Page 0 means the entry
// has no destination.
type Node struct {
	Title    string
	Page     int
	Children []*Node
}

// Count returns the number of entries in the tree rooted at n,
// excluding the synthetic root itself.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 0
	for _, c := range n.Children {
		total += 1 + c.Count()
	}
	return total
}

// Parse builds a bookmark tree from a listing. The returned root is
// synthetic: its children are the top-level entries. Empty or blank
// input is not an error; it yields a root with no children.
//
// The tree is built with a stack of the currently open ancestors. Each
// record at depth d attaches as the last child of the open ancestor at
// depth d-1. A record more than one level deeper than the deepest open
// ancestor fails with ErrMalformed.
func Parse(text string) (*Node, error) {
	root := &Node{}
	lines := strings.Split(text, "\n")

	prefixed := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			prefixed = hasDepthPrefix(trimmed)
			break
		}
	}

	// stack[d] is the open ancestor for records at depth d; stack[0] is
	// the synthetic root.
	stack := []*Node{root}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		var depth int
		var record string
		var err error
		if prefixed {
			depth, record, err = splitDepthPrefix(line)
		} else {
			depth, record, err = splitIndent(line)
		}
		if err != nil {
			return nil, lineError(i, err)
		}

		title, page, err := parseEntry(record)
		if err != nil {
			return nil, lineError(i, err)
		}

		if depth+1 > len(stack) {
			return nil, lineError(i, fmt.Errorf(
				"depth %d jumps past deepest open level %d: %w",
				depth, len(stack)-1, ErrMalformed))
		}

		node := &Node{Title: title, Page: page}
		parent := stack[depth]
		parent.Children = append(parent.Children, node)
		stack = append(stack[:depth+1], node)
	}

	return root, nil
}

// Serialize emits the tree in the assembly tool's syntax: a depth-first
// pre-order walk, each entry indented two spaces per depth level, title
// and page double-quoted. Entries without a destination omit the page
// field. An empty tree serializes to the empty string.
func Serialize(root *Node) string {
	if root == nil {
		return ""
	}

	var b strings.Builder
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		for _, c := range n.Children {
			b.WriteString(strings.Repeat(indentUnit, depth))
			b.WriteString(strconv.Quote(c.Title))
			if c.Page > 0 {
				b.WriteByte(' ')
				b.WriteString(strconv.Quote(strconv.Itoa(c.Page)))
			}
			b.WriteByte('\n')
			walk(c, depth+1)
		}
	}
	walk(root, 0)
	return b.String()
}

func lineError(index int, err error) error {
	return fmt.Errorf("line %d: %w", index+1, err)
}

// hasDepthPrefix reports whether a trimmed line opens with an integer
// depth token, marking the flat metadata-listing form.
func hasDepthPrefix(trimmed string) bool {
	tok, _, _ := strings.Cut(trimmed, " ")
	if tok == trimmed {
		tok, _, _ = strings.Cut(trimmed, "\t")
	}
	if tok == "" {
		return false
	}
	_, err := strconv.Atoi(tok)
	return err == nil
}

// splitDepthPrefix splits a flat record into its depth and the rest.
func splitDepthPrefix(line string) (int, string, error) {
	trimmed := strings.TrimSpace(line)
	idx := strings.IndexAny(trimmed, " \t")
	if idx < 0 {
		return 0, "", fmt.Errorf("record %q has no title: %w", trimmed, ErrMalformed)
	}
	depth, err := strconv.Atoi(trimmed[:idx])
	if err != nil || depth < 0 {
		return 0, "", fmt.Errorf("bad depth %q: %w", trimmed[:idx], ErrMalformed)
	}
	return depth, strings.TrimSpace(trimmed[idx:]), nil
}

// splitIndent derives the depth of an indented record from its leading
// whitespace: each tab or two-space run is one level.
func splitIndent(line string) (int, string, error) {
	depth := 0
	i := 0
	for i < len(line) {
		switch {
		case line[i] == '\t':
			depth++
			i++
		case strings.HasPrefix(line[i:], indentUnit):
			depth++
			i += len(indentUnit)
		case line[i] == ' ':
			return 0, "", fmt.Errorf("odd indentation width: %w", ErrMalformed)
		default:
			return depth, strings.TrimRight(line[i:], " \t\r"), nil
		}
	}
	return 0, "", fmt.Errorf("blank record: %w", ErrMalformed)
}

// parseEntry extracts the title and optional destination page from the
// body of a record. Quoted titles follow the assembly syntax; bare
// titles follow the metadata listing, where the destination is a
// trailing "#N" token.
func parseEntry(record string) (string, int, error) {
	if strings.HasPrefix(record, `"`) {
		quoted, err := strconv.QuotedPrefix(record)
		if err != nil {
			return "", 0, fmt.Errorf("unterminated title quote in %q: %w", record, ErrMalformed)
		}
		title, err := strconv.Unquote(quoted)
		if err != nil {
			return "", 0, fmt.Errorf("bad title quoting in %q: %w", record, ErrMalformed)
		}
		rest := strings.TrimSpace(record[len(quoted):])
		if rest == "" {
			return title, 0, nil
		}
		page, err := parsePage(rest)
		if err != nil {
			return "", 0, err
		}
		return title, page, nil
	}

	// Bare title with an optional trailing destination token.
	if idx := strings.LastIndexAny(record, " \t"); idx >= 0 {
		last := record[idx+1:]
		if strings.HasPrefix(last, "#") {
			page, err := parsePage(last)
			if err != nil {
				return "", 0, err
			}
			return strings.TrimSpace(record[:idx]), page, nil
		}
	}
	return record, 0, nil
}

// parsePage accepts a destination written as #N, "N", or N.
func parsePage(tok string) (int, error) {
	if strings.HasPrefix(tok, `"`) {
		unquoted, err := strconv.Unquote(tok)
		if err != nil {
			return 0, fmt.Errorf("bad page quoting in %q: %w", tok, ErrMalformed)
		}
		tok = unquoted
	}
	tok = strings.TrimPrefix(tok, "#")
	page, err := strconv.Atoi(tok)
	if err != nil || page < 0 {
		return 0, fmt.Errorf("bad destination page %q: %w", tok, ErrMalformed)
	}
	return page, nil
}
