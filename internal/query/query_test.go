package query

import (
	"errors"
	"math"
	"testing"
)

func TestEqualRoundTripsThroughParse(t *testing.T) {
	encoded, err := Equal("userId", "user-1")
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	decoded, err := Parse(encoded)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if decoded.Method != MethodEqual {
		t.Fatalf("unexpected method %q", decoded.Method)
	}
	if decoded.Attribute != "userId" {
		t.Fatalf("unexpected attribute %q", decoded.Attribute)
	}
	if len(decoded.Values) != 1 || decoded.Values[0] != "user-1" {
		t.Fatalf("unexpected values %#v", decoded.Values)
	}
}

func TestEqualRejectsUnencodableValues(t *testing.T) {
	for name, value := range map[string]any{
		"nan":     math.NaN(),
		"inf":     math.Inf(1),
		"channel": make(chan int),
	} {
		t.Run(name, func(t *testing.T) {
			encoded, err := Equal("score", value)
			if !errors.Is(err, ErrInvalidQuery) {
				t.Fatalf("expected invalid query error, got %v", err)
			}
			if encoded != "" {
				t.Fatalf("expected no encoded query, got %q", encoded)
			}
		})
	}
}

func TestParseRejectsMalformedQueries(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "empty", raw: "  ", wantErr: ErrInvalidQuery},
		{name: "not-json", raw: "equal(userId)", wantErr: ErrInvalidQuery},
		{name: "unknown-method", raw: `{"method":"search","attribute":"text","values":["milk"]}`, wantErr: ErrUnsupportedMethod},
		{name: "bad-attribute", raw: `{"method":"equal","attribute":"a') OR 1=1 --","values":["x"]}`, wantErr: ErrInvalidQuery},
		{name: "no-values", raw: `{"method":"equal","attribute":"userId","values":[]}`, wantErr: ErrInvalidQuery},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := Parse(testCase.raw)
			if !errors.Is(err, testCase.wantErr) {
				t.Fatalf("expected %v, got %v", testCase.wantErr, err)
			}
		})
	}
}

func TestParseAllStopsAtFirstFailure(t *testing.T) {
	encoded, err := Equal("userId", "user-1")
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	_, err = ParseAll([]string{encoded, "broken"})
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected invalid query error, got %v", err)
	}

	parsed, err := ParseAll(nil)
	if err != nil || parsed != nil {
		t.Fatalf("expected nil result for no queries, got %#v, %v", parsed, err)
	}
}
