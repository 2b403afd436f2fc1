package config

import (
	validator "github.com/go-playground/validator/v10"
)

//go:generate go tool go-enum --marshal --names --nocase --mustparse

// What to do when reference target is not defined by any loaded fragment.
// ENUM(fail, warn)
type ResolvePolicy int

// How to treat reference target defined by several fragments.
// ENUM(first, report)
type AmbiguityPolicy int

// Fatal reports whether unresolved references should stop processing.
func (p ResolvePolicy) Fatal() bool {
	return p != ResolvePolicyWarn
}

// checkEnums catches enum values set outside of yaml decoding.
func checkEnums(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	if !cfg.Resolving.Unresolved.IsValid() {
		sl.ReportError(cfg.Resolving.Unresolved, "Unresolved", "Unresolved", "enum", cfg.Resolving.Unresolved.String())
	}
	if !cfg.Resolving.Ambiguous.IsValid() {
		sl.ReportError(cfg.Resolving.Ambiguous, "Ambiguous", "Ambiguous", "enum", cfg.Resolving.Ambiguous.String())
	}
}
