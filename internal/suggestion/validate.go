package suggestion

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports the first place where model output broke the schema
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "invalid suggestions: " + e.Message
	}
	return fmt.Sprintf("invalid suggestions: %s: %s", e.Path, e.Message)
}

var validate = newValidator()

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate parses raw model output and checks it against the suggestion schema.
// The whole document is rejected if any element is invalid; types are never coerced.
// Keys are matched exactly and unknown keys are ignored.
func Validate(raw []byte) ([]Suggestion, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope == nil {
		return nil, &ValidationError{Message: "response is not a JSON object"}
	}

	list, ok := envelope["suggestions"]
	if !ok {
		return nil, &ValidationError{Path: "suggestions", Message: "is required"}
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(list, &items); err != nil || items == nil {
		return nil, &ValidationError{Path: "suggestions", Message: "must be an array of objects"}
	}

	out := make([]Suggestion, 0, len(items))
	for i, item := range items {
		s, err := decodeSuggestion(fmt.Sprintf("suggestions[%d]", i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeSuggestion(path string, item map[string]json.RawMessage) (Suggestion, error) {
	if item == nil {
		return Suggestion{}, &ValidationError{Path: path, Message: "must be an object"}
	}

	var s Suggestion
	var err error
	if s.Name, err = requiredString(path, item, "name"); err != nil {
		return Suggestion{}, err
	}
	if s.Category, err = requiredString(path, item, "category"); err != nil {
		return Suggestion{}, err
	}
	if s.Reason, err = requiredString(path, item, "reason"); err != nil {
		return Suggestion{}, err
	}
	priority, err := requiredString(path, item, "priority")
	if err != nil {
		return Suggestion{}, err
	}
	s.Priority = Priority(priority)

	if raw, ok := item["quantity"]; ok {
		q, err := positiveInt(raw)
		if err != nil {
			return Suggestion{}, &ValidationError{Path: path + ".quantity", Message: err.Error()}
		}
		s.Quantity = &q
	}
	if raw, ok := item["unit"]; ok {
		u, err := decodeString(raw)
		if err != nil {
			return Suggestion{}, &ValidationError{Path: path + ".unit", Message: err.Error()}
		}
		s.Unit = &u
	}

	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return Suggestion{}, &ValidationError{
				Path:    path + "." + fe.Field(),
				Message: fmt.Sprintf("%q is not one of [%s]", fe.Value(), fe.Param()),
			}
		}
		return Suggestion{}, &ValidationError{Path: path, Message: err.Error()}
	}
	return s, nil
}

func requiredString(path string, item map[string]json.RawMessage, key string) (string, error) {
	raw, ok := item[key]
	if !ok {
		return "", &ValidationError{Path: path + "." + key, Message: "is required"}
	}
	s, err := decodeString(raw)
	if err != nil {
		return "", &ValidationError{Path: path + "." + key, Message: err.Error()}
	}
	return s, nil
}

func decodeString(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", errors.New("must be a string")
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", errors.New("must be a string")
	}
	return s, nil
}

// maxExactInteger is the largest integer a JSON number holds without loss (2^53)
const maxExactInteger = 1 << 53

// positiveInt accepts JSON numbers with an integral value of at least 1 (2 and 2.0 alike)
func positiveInt(raw json.RawMessage) (int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !(trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9')) {
		return 0, errors.New("must be a number")
	}
	f, err := strconv.ParseFloat(string(trimmed), 64)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	if f != math.Trunc(f) {
		return 0, errors.New("must be an integer")
	}
	if f < 1 {
		return 0, errors.New("must be at least 1")
	}
	if f > maxExactInteger {
		return 0, errors.New("is too large")
	}
	return int(f), nil
}
