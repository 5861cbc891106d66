// Package parser turns swaggen definition files into typed SpecDefinitions.
//
// Each discovered file is parsed on its own: no file may depend on another
// file's content at parse time. Parsing runs in four steps:
//
//  1. The file is read with a per-file timeout and a maximum size.
//  2. The YAML or JSON content is decoded into a yaml.Node and a [SourceMap]
//     is built so every diagnostic carries a line and column.
//  3. The document is checked against an embedded JSON Schema for its kind
//     (definition, info, action or model).
//  4. The node is decoded into typed structs, generator defaults are applied
//     and every reference token is collected as a [Reference].
//
// # Definition documents
//
//	info:
//	  title: Petstore
//	  version: "2.0.0"
//	  profiles: [public]
//	operations:
//	  - name: listPets
//	    method: get
//	    path: /pets
//	    parameters:
//	      - $ref: PageSize
//	    responses:
//	      "200":
//	        schema:
//	          type: array
//	          items:
//	            $ref: Pet
//	schemas:
//	  Pet:
//	    type: object
//	parameters:
//	  PageSize:
//	    name: pageSize
//	    in: query
//	    type: integer
//
// An action document (parent directory "actions") is a single operation whose
// name defaults to the file stem. A model document (parent directory "models")
// is a single schema named after the file. An info document holds the info
// object alone.
//
// # Reference tokens
//
// A token is either bare ("Pet") or qualified with a document or specification
// identifier ("petstore#Pet", "petstore/common#Error"). The Swagger forms
// "#/definitions/Pet" and "#/parameters/PageSize" are accepted as bare tokens.
// See [ParseToken].
//
// # Defaults
//
// Operations default to method post, path "/<spec>/actions/<name>", summary
// equal to the name, the specification identifier as tag, and
// application/json for consumes and produces. A "response" entry is shorthand
// for responses["200"], whose relocation name defaults to "<name>Result". A
// request body is named "<name>Request" unless named explicitly.
package parser
