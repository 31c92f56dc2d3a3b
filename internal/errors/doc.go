// Package errors provides the structured error handling used across the
// card battle engine.
//
// This package provides:
//   - Structured errors with codes, messages, and metadata
//   - User-friendly error messages
//   - Error context preservation through wrapping
//   - Validation error helpers
//   - Type-safe error checking
//
// # Basic Usage
//
// Creating errors:
//
//	err := errors.NotFound("card not found")
//	err := errors.InvalidArgumentf("invalid deck size: %d", size)
//
// Adding metadata:
//
//	err := errors.NotFound("player not found").
//	    WithMeta("player_id", playerID)
//
// Wrapping errors:
//
//	if err := repo.Get(ctx, id); err != nil {
//	    return errors.Wrap(err, "failed to get player")
//	}
//
// Changing error semantics:
//
//	if err := store.Load(); err != nil {
//	    return errors.WrapWithCode(err, errors.CodeUnavailable, "player store unreachable")
//	}
//
// # Error Checking
//
// Type checking:
//
//	if errors.IsAlreadyExists(err) {
//	    // a pending challenge already exists for this target
//	}
//
// Extracting information:
//
//	code := errors.GetCode(err)
//	message := errors.GetMessage(err)
//	meta := errors.GetMeta(err)
//
// # Validation Errors
//
// Using the validation builder:
//
//	vb := errors.NewValidationBuilder()
//	if c.PlayerRepo == nil {
//	    vb.RequiredField("PlayerRepo")
//	}
//	if err := vb.Build(); err != nil {
//	    return err
//	}
//
// # Layer-Specific Guidelines
//
// Repository layer:
//   - Return domain-specific errors (NotFound, AlreadyExists)
//   - Include relevant IDs in metadata
//   - Wrap storage errors with context
//
// Orchestrator layer:
//   - Validate inputs and return InvalidArgument errors
//   - Check preconditions and return FailedPrecondition errors
//   - Wrap repository errors with business context
//
// Handler layer:
//   - Map errors to HTTP status codes via Code.HTTPStatus
//   - Extract user-friendly messages
//   - Log internal errors for debugging
package errors
