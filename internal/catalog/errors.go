package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrCommodityNotFound = errors.New("commodity not found")
	ErrEmptySearch       = errors.New("search term is empty")
	ErrUnknownCategory   = errors.New("unknown category")
)

// ValidationError reports input that failed validation before any write.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, name := range sortedKeys(e.Fields) {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnknownCategoryError lists category ids that do not exist. It is a
// validation failure: the transaction that found it is rolled back.
type UnknownCategoryError struct {
	IDs []int64
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category ids %v", e.IDs)
}

func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}

// IsValidation reports whether err is caused by invalid caller input.
func IsValidation(err error) bool {
	var ve *ValidationError
	var ue *UnknownCategoryError
	return errors.As(err, &ve) || errors.As(err, &ue)
}
