// Package swaggen compiles a tree of fragmentary API definition files into
// Swagger 2.0 documents, one per specification.
//
// # Source layout
//
// Every .yaml, .yml or .json file below the source root is a definition
// document. Its path without extension is its document identifier, and the
// directory it lives in (or the file itself, at the top level) names the
// specification it belongs to:
//
//	api/
//	  info.yaml                 root info, used by the aggregate artifact
//	  store.yaml                specification "store"
//	  petstore/
//	    info.yaml               info block of "petstore"
//	    pets.yaml               operations, schemas and parameters
//	    actions/createPet.yaml  one operation per file
//	    models/Owner.yaml       one schema per file
//
// Documents refer to each other with short reference tokens ("Pet",
// "petstore#Pet", "petstore/pets.yaml#Pet") that are looked up in the
// document itself, then its specification, then the whole tree.
//
// # Packages
//
//   - discovery: enumerate the source tree and group documents into specifications
//   - parser: decode one document, with source positions for every node
//   - resolver: index every declaration, resolve references, detect cycles,
//     and assemble self-contained specifications
//   - validator: check a resolved specification against Swagger 2.0 rules
//   - writer: render, serialize and atomically write the artifacts
//   - builder: run the whole pipeline with a failure policy
//   - swagerrors: the typed errors shared by every stage
//
// # Quick Start
//
//	result, err := builder.Build(ctx, "api", "dist", "2.3.0")
//	if err != nil {
//		log.Fatal(err) // configuration, unreadable source root or cancellation
//	}
//	for _, d := range result.Diagnostics() {
//		fmt.Println(d)
//	}
//
// # Command-Line Interface
//
// The swaggen command wraps builder.Build:
//
//	swaggen build --version 2.3.0 api dist
//	swaggen build --policy all-or-nothing --format yaml api dist
//	swaggen mcp
//
// Flag defaults come from SWAGGEN_* environment variables.
package swaggen
