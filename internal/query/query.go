package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MethodEqual is the only predicate the document store understands.
const MethodEqual = "equal"

var (
	// ErrInvalidQuery indicates a query string that cannot be decoded.
	ErrInvalidQuery = errors.New("query: invalid query")
	// ErrUnsupportedMethod indicates a well-formed query with an unknown method.
	ErrUnsupportedMethod = errors.New("query: unsupported method")

	attributePattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_]*$`)
)

// Query is the decoded form of a single predicate.
type Query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute"`
	Values    []any  `json:"values"`
}

// Equal encodes an equality predicate on attribute. Values JSON cannot
// represent, such as NaN or a channel, are rejected.
func Equal(attribute string, value any) (string, error) {
	encoded, err := json.Marshal(Query{
		Method:    MethodEqual,
		Attribute: attribute,
		Values:    []any{value},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode %q: %v", ErrInvalidQuery, attribute, err)
	}
	return string(encoded), nil
}

// Parse decodes and validates a query string.
func Parse(raw string) (Query, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Query{}, fmt.Errorf("%w: empty", ErrInvalidQuery)
	}
	var decoded Query
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return Query{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if decoded.Method != MethodEqual {
		return Query{}, fmt.Errorf("%w: %q", ErrUnsupportedMethod, decoded.Method)
	}
	if !ValidAttribute(decoded.Attribute) {
		return Query{}, fmt.Errorf("%w: attribute %q", ErrInvalidQuery, decoded.Attribute)
	}
	if len(decoded.Values) == 0 {
		return Query{}, fmt.Errorf("%w: no values for %q", ErrInvalidQuery, decoded.Attribute)
	}
	return decoded, nil
}

// ParseAll decodes every query string, stopping at the first failure.
func ParseAll(raw []string) ([]Query, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	parsed := make([]Query, 0, len(raw))
	for _, entry := range raw {
		decoded, err := Parse(entry)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, decoded)
	}
	return parsed, nil
}

// ValidAttribute reports whether name is usable as a document attribute.
func ValidAttribute(name string) bool {
	return attributePattern.MatchString(name)
}
