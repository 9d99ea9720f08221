package services

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Kind is the type of a cost-explorer node.
type Kind string

const (
	KindFolder  Kind = "folder"
	KindProject Kind = "project"
	KindPart    Kind = "part"
	KindTool    Kind = "tool"
)

// Prefix is the uniqueId prefix for the kind. Parts and tools share "part".
func (k Kind) Prefix() string {
	switch k {
	case KindFolder:
		return "f"
	case KindProject:
		return "p"
	default:
		return "part"
	}
}

const (
	recordDelimiter = "&~&"
	nameDelimiter   = "|"
)

// UniqueID composes the tree-unique id of a node.
func UniqueID(kind Kind, backendID string) string {
	return kind.Prefix() + "_" + backendID
}

// RecordParser decodes "<typeCode>&~&<backendId>&~&<locale>:<text>|..."
// records into tree nodes. Locales lists the preferred name locales in
// order; the zero value uses DefaultNameLocales.
type RecordParser struct {
	Locales []string
}

// DefaultNameLocales is the display-name preference used by the cost tree.
var DefaultNameLocales = []string{"en-US", "ko-KR"}

// NewRecordParser returns a parser preferring locale, then the defaults.
func NewRecordParser(locale string) RecordParser {
	locales := []string{}
	if locale != "" {
		locales = append(locales, locale)
	}
	for _, l := range DefaultNameLocales {
		if l != locale {
			locales = append(locales, l)
		}
	}
	return RecordParser{Locales: locales}
}

func (p RecordParser) locales() []string {
	if len(p.Locales) == 0 {
		return DefaultNameLocales
	}
	return p.Locales
}

// Parse decodes one record. The boolean is false when the record has fewer
// than three segments; such records are skipped by callers.
// Type codes other than "f" and "p" take the fallback kind (part when empty).
func (p RecordParser) Parse(raw string, depth int, fallback Kind) (TreeNode, bool) {
	segments := strings.Split(raw, recordDelimiter)
	if len(segments) < 3 {
		return TreeNode{}, false
	}

	kind := fallback
	if kind == "" {
		kind = KindPart
	}
	switch strings.ToLower(strings.TrimSpace(segments[0])) {
	case "f":
		kind = KindFolder
	case "p":
		kind = KindProject
	}

	backendID := segments[1]
	return TreeNode{
		UniqueID:    UniqueID(kind, backendID),
		BackendID:   backendID,
		Kind:        kind,
		DisplayName: ResolveDisplayName(segments[2], p.locales()...),
		Depth:       depth,
	}, true
}

// ParseAll decodes every record, dropping and logging malformed ones.
func (p RecordParser) ParseAll(raws []string, depth int, fallback Kind, log logrus.FieldLogger) []TreeNode {
	nodes := make([]TreeNode, 0, len(raws))
	for _, raw := range raws {
		node, ok := p.Parse(raw, depth, fallback)
		if !ok {
			if log != nil {
				log.WithField("record", raw).Debug("skipping malformed tree record")
			}
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// ResolveDisplayName picks the text of the first entry whose tag contains a
// preferred locale, trying locales in order. Only the first colon separates
// tag from text, but text that itself starts with a colon counts as empty:
// a preferred entry then resolves to the whole entry, the first-entry
// fallback to "". Without a preferred match the first entry's text is used,
// or the whole first entry when it has no colon.
func ResolveDisplayName(blob string, locales ...string) string {
	entries := strings.Split(blob, nameDelimiter)
	for _, loc := range locales {
		for _, entry := range entries {
			if strings.Contains(entry, loc) {
				if text, _ := entryText(entry); text != "" {
					return text
				}
				return entry
			}
		}
	}

	if text, ok := entryText(entries[0]); ok {
		return text
	}
	return entries[0]
}

// entryText returns what follows the tag of a "tag:text" entry and whether
// the entry has a colon at all. "en-US::x" has empty text.
func entryText(entry string) (string, bool) {
	_, text, ok := strings.Cut(entry, ":")
	if strings.HasPrefix(text, ":") {
		return "", ok
	}
	return text, ok
}
