package petango

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antchfx/xmlquery"
)

// Parser turns service XML into Records.
type Parser struct {
	logger Logger
}

// NewParser returns a parser reporting failures to logger (nil discards).
func NewParser(logger Logger) *Parser {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Parser{logger: logger}
}

// SelectorForEndpoint returns the XPath locating entity fragments in a
// response from endpoint, e.g. "AdoptableSearch" gives "//adoptableSearch".
func SelectorForEndpoint(endpoint string) string {
	return "//" + lowerFirst(endpoint)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// ParseOne builds a Record from the immediate element children of node,
// keyed by tag name with trimmed text values.
func (p *Parser) ParseOne(node *xmlquery.Node) *Record {
	rec := NewRecord()
	if node == nil {
		return rec
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		rec.Set(child.Data, strings.TrimSpace(child.InnerText()))
	}
	return rec
}

// ParseMany selects every fragment matching expr in doc, in document order.
// No match yields an empty slice; a malformed document or expression yields
// a ParseError.
func (p *Parser) ParseMany(doc []byte, expr string) ([]*Record, error) {
	nodes, err := p.selectNodes(doc, expr)
	if err != nil {
		return nil, err
	}
	records := make([]*Record, 0, len(nodes))
	for _, node := range nodes {
		records = append(records, p.ParseOne(node))
	}
	return records, nil
}

// ParseFirst returns the first fragment matching expr; ok is false when
// nothing matched.
func (p *Parser) ParseFirst(doc []byte, expr string) (rec *Record, ok bool, err error) {
	nodes, err := p.selectNodes(doc, expr)
	if err != nil {
		return nil, false, err
	}
	if len(nodes) == 0 {
		return nil, false, nil
	}
	return p.ParseOne(nodes[0]), true, nil
}

func (p *Parser) selectNodes(doc []byte, expr string) ([]*xmlquery.Node, error) {
	root, err := xmlquery.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, p.parseError("malformed XML document", expr, doc, err)
	}
	nodes, err := xmlquery.QueryAll(root, expr)
	if err != nil {
		return nil, p.parseError("invalid selector expression", expr, doc, err)
	}
	return nodes, nil
}

func (p *Parser) parseError(msg, expr string, doc []byte, cause error) *Error {
	p.logger.Error("there was an error selecting records", "reason", msg, "xpath", expr, "error", cause)
	return &Error{
		Kind:       ErrorKindParse,
		Message:    msg,
		Cause:      cause,
		Expression: expr,
		Document:   string(doc),
	}
}
