package testutils

import (
	"encoding/json"
	"fmt"

	"github.com/mcuadros/go-defaults"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// PresencePlaceholder in expected JSON matches any actual value. It
// keeps timestamps and generated identifiers out of assertions.
const PresencePlaceholder = "<<PRESENCE>>"

// MustJSON marshals v or panics.
func MustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// JSONAssertOptions control JSON comparison. Array order is always
// significant: discovery order and GATT database order are part of the
// behavior under test.
type JSONAssertOptions struct {
	IgnoreExtraKeys bool     `default:"true"`
	NilToEmptyArray bool     `default:"true"`
	IgnoredFields   []string `default:""`
}

// JSONOption mutates JSONAssertOptions.
type JSONOption func(*JSONAssertOptions)

// WithIgnoreExtraKeys sets whether keys present only in the actual
// document are tolerated.
func WithIgnoreExtraKeys(ignore bool) JSONOption {
	return func(opts *JSONAssertOptions) {
		opts.IgnoreExtraKeys = ignore
	}
}

// WithNilToEmptyArray sets whether null and [] compare equal.
func WithNilToEmptyArray(normalize bool) JSONOption {
	return func(opts *JSONAssertOptions) {
		opts.NilToEmptyArray = normalize
	}
}

// WithIgnoredFields names fields excluded from comparison everywhere in
// the document.
func WithIgnoredFields(fields ...string) JSONOption {
	return func(opts *JSONAssertOptions) {
		opts.IgnoredFields = fields
	}
}

// JSONAsserter compares JSON documents and reports a structural diff on
// mismatch.
type JSONAsserter struct {
	t       TestingT
	options JSONAssertOptions
}

// NewJSONAsserter creates a JSONAsserter with default options.
func NewJSONAsserter(t TestingT, opts ...JSONOption) *JSONAsserter {
	options := JSONAssertOptions{}
	defaults.SetDefaults(&options)
	for _, opt := range opts {
		opt(&options)
	}
	return &JSONAsserter{t: t, options: options}
}

// Assert fails the test when the two documents differ.
func (ja *JSONAsserter) Assert(actualJSON, expectedJSON string) {
	if diff := ja.diff(actualJSON, expectedJSON); diff != "" {
		ja.t.Errorf("JSON mismatch:\n%s", diff)
	}
}

func (ja *JSONAsserter) diff(actualJSON, expectedJSON string) string {
	var expected, actual interface{}
	if err := json.Unmarshal([]byte(expectedJSON), &expected); err != nil {
		return fmt.Sprintf("invalid expected JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(actualJSON), &actual); err != nil {
		return fmt.Sprintf("invalid actual JSON: %v", err)
	}

	// gojsondiff only compares objects, wrap root-level arrays
	if isArray(expected) && isArray(actual) {
		expected = map[string]interface{}{"array": expected}
		actual = map[string]interface{}{"array": actual}
	}

	resolvePlaceholders(expected, actual)
	if ja.options.NilToEmptyArray {
		alignEmptyArrays(expected, actual)
	}
	if len(ja.options.IgnoredFields) > 0 {
		dropFields(expected, actual, ja.options.IgnoredFields)
	}
	if ja.options.IgnoreExtraKeys {
		pruneExtraKeys(actual, expected)
	}

	expectedBytes, _ := json.Marshal(expected)
	actualBytes, _ := json.Marshal(actual)

	diff, err := gojsondiff.New().Compare(expectedBytes, actualBytes)
	if err != nil {
		return fmt.Sprintf("JSON comparison failed: %v", err)
	}
	if !diff.Modified() {
		return ""
	}

	rendered, _ := formatter.NewAsciiFormatter(expected, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
	}).Format(diff)
	return rendered
}

func isArray(v interface{}) bool {
	_, ok := v.([]interface{})
	return ok
}

// resolvePlaceholders copies actual values over PresencePlaceholder
// markers so they compare equal.
func resolvePlaceholders(expected, actual interface{}) {
	switch exp := expected.(type) {
	case map[string]interface{}:
		act, ok := actual.(map[string]interface{})
		if !ok {
			return
		}
		for k, v := range exp {
			if s, ok := v.(string); ok && s == PresencePlaceholder {
				exp[k] = act[k]
				continue
			}
			resolvePlaceholders(v, act[k])
		}
	case []interface{}:
		act, ok := actual.([]interface{})
		if !ok {
			return
		}
		for i := range exp {
			if i < len(act) {
				resolvePlaceholders(exp[i], act[i])
			}
		}
	}
}

// alignEmptyArrays makes null and [] interchangeable on both sides.
func alignEmptyArrays(expected, actual interface{}) {
	exp, expOk := expected.(map[string]interface{})
	act, actOk := actual.(map[string]interface{})
	if expOk && actOk {
		for k := range exp {
			if nilOrEmptyArray(exp[k]) && nilOrEmptyArray(act[k]) {
				exp[k] = []interface{}{}
				act[k] = []interface{}{}
				continue
			}
			alignEmptyArrays(exp[k], act[k])
		}
		return
	}

	expArr, expOk := expected.([]interface{})
	actArr, actOk := actual.([]interface{})
	if expOk && actOk {
		for i := range expArr {
			if i < len(actArr) {
				alignEmptyArrays(expArr[i], actArr[i])
			}
		}
	}
}

func nilOrEmptyArray(v interface{}) bool {
	if v == nil {
		return true
	}
	arr, ok := v.([]interface{})
	return ok && len(arr) == 0
}

// dropFields removes the named fields from both documents, at any
// nesting depth.
func dropFields(expected, actual interface{}, fields []string) {
	switch exp := expected.(type) {
	case map[string]interface{}:
		act, ok := actual.(map[string]interface{})
		if !ok {
			return
		}
		for _, field := range fields {
			delete(exp, field)
			delete(act, field)
		}
		for k, v := range exp {
			dropFields(v, act[k], fields)
		}
	case []interface{}:
		act, ok := actual.([]interface{})
		if !ok {
			return
		}
		for i := range exp {
			if i < len(act) {
				dropFields(exp[i], act[i], fields)
			}
		}
	}
}

// pruneExtraKeys deletes keys from actual that expected never mentions.
func pruneExtraKeys(actual, expected interface{}) {
	switch exp := expected.(type) {
	case map[string]interface{}:
		act, ok := actual.(map[string]interface{})
		if !ok {
			return
		}
		for k := range act {
			if _, exists := exp[k]; !exists {
				delete(act, k)
			}
		}
		for k := range exp {
			pruneExtraKeys(act[k], exp[k])
		}
	case []interface{}:
		act, ok := actual.([]interface{})
		if !ok {
			return
		}
		for i := range exp {
			if i < len(act) {
				pruneExtraKeys(act[i], exp[i])
			}
		}
	}
}
