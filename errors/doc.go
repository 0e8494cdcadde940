// Package errors provides standardized error handling patterns for Gestalt.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary, retryable by the caller), Invalid (bad input,
// non-retryable), and Fatal (unrecoverable, stop processing). Classification
// lets callers make informed decisions about retries and failure recovery
// without hardcoded error string matching.
//
// Orthogonal to classification is the Kind taxonomy: Kind records *why* a
// decode, merge, or substitution failed (KindDecodingExpectedArray,
// KindSubstitutionCycle, KindMergeConflict, and so on), for attaching to
// result.ValidationError so a caller can switch on the failure reason
// instead of parsing messages.
//
// # Error Classification
//
// Errors are classified based on their type or message content:
//
//   - Transient: network timeouts, temporary unavailability (caller may retry)
//   - Invalid: malformed input, validation failures (do not retry)
//   - Fatal: unrecoverable configuration/build failures (stop processing)
//
// The classification system integrates with Go's standard error handling
// patterns, supporting errors.Is(), errors.As(), and wrapping chains.
//
// # Quick Start
//
// Return standard error variables for common conditions:
//
//	if len(b.sources) == 0 {
//	    return errors.ErrNoSources
//	}
//
// Wrap errors with component context:
//
//	if err := source.Load(); err != nil {
//	    return errors.WrapTransient(err, "Core", "LoadConfigs", "load source")
//	}
//
// Check classification for handling decisions:
//
//	if err := g.LoadConfigs(); err != nil {
//	    if errors.IsFatal(err) {
//	        log.Fatalf("unrecoverable config error: %v", err)
//	    }
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// This format enables consistent log parsing across the codebase. Three
// wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Component", "Method", "action")
//	errors.WrapInvalid(err, "Component", "Method", "action")
//	errors.WrapFatal(err, "Component", "Method", "action")
//
// WrapKind additionally tags the result with a taxonomy Kind, for use sites
// that build a result.ValidationError from the classified error:
//
//	ce := errors.WrapKind(errors.ErrorInvalid, errors.KindDecodingExpectedArray,
//	    "decoder", "DecodeNode", "expected array, got leaf")
//
// # Standard Error Variables
//
// The package provides pre-defined error variables for lifecycle and
// build-time conditions outside the ValidationError/Kind taxonomy:
// ErrNoSources, ErrNoDecoders, ErrAlreadyStarted, ErrNotLoaded,
// ErrInvalidConfig, ErrSourceDuplicate, ErrInvalidData.
//
// # Integration with errors.As/Is
//
// All classified errors support standard library inspection:
//
//	var ce *errors.ClassifiedError
//	if errors.As(err, &ce) {
//	    log.Printf("component=%s kind=%s class=%s", ce.Component, ce.Kind, ce.Class)
//	}
//
// Classification is preserved through wrapping chains:
//
//	wrapped := errors.WrapTransient(errors.ErrNoSources, "Core", "LoadConfigs", "load")
//	errors.IsTransient(wrapped) // true
//
// # Thread Safety
//
// Classification and wrapping operations are thread-safe; error variables
// are immutable and safe for concurrent access. ClassifiedError is safe to
// share across goroutines after creation.
package errors
