// Package resolver links the references of parsed definition documents and
// assembles one self-contained model per specification.
//
// Resolution happens in three steps:
//
//  1. [NewNamespace] indexes every schema, parameter and operation declared by
//     any document. The namespace is read-only once built.
//  2. [Resolve] looks up every reference token in parallel and records the
//     result as an edge between declarations. Declarations are addressed by
//     their index in the namespace, so the reference graph is plain data and
//     illegal cycles are found by a graph traversal.
//  3. [Assemble] collects a specification's declarations plus every foreign
//     schema and parameter they reach, gives each a unique output name and
//     rewrites references to "#/definitions/<name>" and "#/parameters/<name>".
//
// # Lookup
//
// A bare token such as "Error" is searched in the document that contains it,
// then in the other documents of the same specification, then everywhere.
// The first level with a match decides, and that level must have exactly one
// match. A qualified token such as "petstore/common#Error" or "petstore#Error"
// names the document, or failing that the specification, to search.
//
// # Cycles
//
// A schema may reach itself through properties or items; such recursion is
// emitted as links. Cycles made of allOf members or aliases, and cycles of
// operation prerequisites, are reported as errors of kind cycle on every
// specification that owns a declaration of the cycle.
//
// # Materialization
//
// [RefModeLink], the default, keeps references as links. [RefModeInline]
// replaces them with deep copies of their targets, except for recursive
// schemas, which stay linked. [WithRelocateResponses] additionally moves named
// inline response schemas into definitions.
package resolver
