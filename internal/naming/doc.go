// Package naming derives display names and output names from identifiers.
//
// Specification identifiers are slash-separated paths such as "petstore" or
// "billing/invoices". Title turns them into human-readable titles for
// specifications that declare none, and Qualify builds the output name used
// when two declarations with the same name end up in one artifact.
package naming
