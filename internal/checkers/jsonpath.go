// Package checkers provides quicktest checkers shared by tests.
package checkers

import (
	"encoding/json"
	"fmt"

	qt "github.com/frankban/quicktest"
	"github.com/yalp/jsonpath"
)

type jsonPathChecker struct {
	path string
}

// JSONPathEquals checks that the value at path in a JSON document equals the
// wanted value. The document may be a string, a []byte or an already decoded
// value. Numbers decode as float64.
//
//	c.Assert(out, checkers.JSONPathEquals("$.account.name"), "prod")
func JSONPathEquals(path string) qt.Checker {
	return &jsonPathChecker{path: path}
}

func (c *jsonPathChecker) ArgNames() []string {
	return []string{"got", "want"}
}

func (c *jsonPathChecker) Check(got any, args []any, note func(key string, value any)) error {
	var doc any
	switch v := got.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &doc); err != nil {
			return qt.BadCheckf("got is not valid JSON: %v", err)
		}
	case []byte:
		if err := json.Unmarshal(v, &doc); err != nil {
			return qt.BadCheckf("got is not valid JSON: %v", err)
		}
	default:
		doc = got
	}

	value, err := jsonpath.Read(doc, c.path)
	if err != nil {
		note("path", c.path)
		return fmt.Errorf("cannot read path: %w", err)
	}
	note("path", c.path)
	return qt.DeepEquals.Check(value, args, note)
}
