// Package swagerrors provides structured error types for the swaggen build pipeline.
//
// Import path: github.com/erraggy/swaggen/swagerrors
//
// Every pipeline stage reports failures with one of these types so callers can
// tell them apart with [errors.Is] and [errors.As].
//
// # Error Types
//
//   - [DiscoveryError]: the source root is missing or unreadable (fatal for the run)
//   - [ParseError]: a definition file could not be decoded or has the wrong shape
//   - [ResolutionError]: a reference is unresolved or ambiguous, a cycle was
//     found, or two sources claim the same identifier
//   - [ValidationError]: a resolved specification breaks a structural rule
//   - [WriteError]: an artifact could not be written
//   - [CancelledError]: the run was cancelled (fatal for the run)
//   - [ConfigError]: invalid build options
//
// # Sentinel Errors
//
//   - [ErrDiscovery], [ErrParse], [ErrValidation], [ErrWrite], [ErrCancelled], [ErrConfig]
//   - [ErrResolution]: matches any [ResolutionError]
//   - [ErrUnresolved], [ErrAmbiguous], [ErrCycle], [ErrDuplicateIdentifier]: match a
//     [ResolutionError] of the corresponding [ResolutionKind]
//
// # Usage
//
//	result, err := builder.Build(ctx, "spec", "target/classes", "2.3.0")
//	if err != nil {
//	    // fatal: discovery failure, cancellation or bad options
//	}
//	for _, outcome := range result.Failed() {
//	    for _, e := range outcome.Errors {
//	        var resErr *swagerrors.ResolutionError
//	        if errors.As(e, &resErr) && resErr.Kind == swagerrors.KindCycle {
//	            fmt.Println(strings.Join(resErr.Chain, " -> "))
//	        }
//	    }
//	}
package swagerrors
