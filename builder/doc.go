// Package builder runs the whole swaggen pipeline over a source tree.
//
// [Build] discovers every definition file under a source root, parses the
// files on a bounded worker pool, resolves references across all documents,
// and then assembles, validates and renders each specification before
// writing its Swagger 2.0 artifacts:
//
//	result, err := builder.Build(ctx, "api", "dist", "2.3.0",
//		builder.WithFormats(writer.FormatJSON, writer.FormatYAML),
//		builder.WithPolicy(builder.PolicyPartial),
//	)
//	if err != nil {
//		// configuration error, unreadable source root or cancellation
//	}
//	for _, d := range result.Diagnostics() {
//		fmt.Println(d)
//	}
//
// # Failure policy
//
// A failure is owned by the specification it occurs in. Under
// [PolicyPartial] every specification that passed on its own is written and
// the others keep whatever artifact they had before. Under
// [PolicyAllOrNothing] a single failure withholds every artifact of the run.
//
// # Filtering
//
// [WithSpecs] and [WithProfiles] restrict which specifications are written.
// Every document is still parsed and resolved, so a selected specification
// can reference one that was filtered out.
//
// # Aggregate artifact
//
// [WithAggregate] additionally merges every written specification into one
// document, headed by the root info.yaml of the source tree.
package builder
