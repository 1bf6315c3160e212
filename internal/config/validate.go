package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// structValidator is a single shared go-playground/validator instance.
// validator.Validate is safe for concurrent use once built, the same
// way the pack's alert-history config validator constructs one
// instance and reuses it across requests.
var structValidator = validator.New()

// decodeStrict unmarshals raw JSON into T, rejecting unknown top-level
// fields (spec.md §4.1: "unknown keys in custom JSON must error").
func decodeStrict[T any](raw string) (T, error) {
	var doc T
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return doc, fmt.Errorf("decoding override: %w", err)
	}
	return doc, nil
}

// ValidationResult is the outcome of validating a custom JSON override
// in isolation, used by admin endpoints (spec.md §4.1 validate()).
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// ValidateResilienceOverride checks a resilience custom JSON override
// for structural validity without building a full RuntimeConfig.
func (r *Resolver) ValidateResilienceOverride(raw string) ValidationResult {
	return validateOverride[overrideDoc](raw)
}

// ValidateCacheOverride checks a cache custom JSON override for
// structural validity without building a full RuntimeConfig.
func (r *Resolver) ValidateCacheOverride(raw string) ValidationResult {
	return validateOverride[cacheOverrideDoc](raw)
}

func validateOverride[T any](raw string) ValidationResult {
	doc, err := decodeStrict[T](raw)
	if err != nil {
		return ValidationResult{Valid: false, Errors: []string{err.Error()}}
	}
	if err := structValidator.Struct(doc); err != nil {
		var errs []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, e := range verrs {
				errs = append(errs, fmt.Sprintf("%s: failed %q constraint", e.Namespace(), e.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
		return ValidationResult{Valid: false, Errors: errs}
	}
	return ValidationResult{Valid: true}
}
