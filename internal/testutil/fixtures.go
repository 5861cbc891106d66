// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTree writes files (slash-separated relative path -> content) under a
// fresh temporary directory and returns its path.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	WriteFiles(t, root, files)
	return root
}

// WriteFiles writes files under an existing root, creating directories as needed.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o600); err != nil {
			t.Fatalf("Failed to write fixture %s: %v", rel, err)
		}
	}
}

// ReadFile reads a file and fails the test on error.
func ReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return data
}

// PetstoreTree returns a small, reference-complete source tree: the pets
// document references the Error schema declared in common.yaml without a
// qualifier, an action file and a model file use the directory layout, and a
// second specification references petstore across specifications.
func PetstoreTree() map[string]string {
	return map[string]string{
		"info.yaml": `title: All Services
description: Every service in one document
`,
		"petstore/info.yaml": `title: Petstore
description: Pets and their owners
version: "2.0.0"
profiles: [public]
`,
		"petstore/pets.yaml": `operations:
  - name: listPets
    method: get
    path: /pets
    parameters:
      - $ref: PageSize
    responses:
      "200":
        description: A page of pets
        schema:
          type: array
          items:
            $ref: Pet
      default:
        description: Unexpected error
        model: Error
schemas:
  Pet:
    type: object
    required: [id, name]
    properties:
      id:
        type: integer
        format: int64
      name:
        type: string
      tag:
        type: string
      parent:
        $ref: Pet
parameters:
  PageSize:
    name: pageSize
    in: query
    type: integer
    format: int32
`,
		"petstore/common.yaml": `schemas:
  Error:
    type: object
    required: [code, message]
    properties:
      code:
        type: integer
        format: int32
      message:
        type: string
`,
		"petstore/actions/createPet.yaml": `description: Create a pet
request:
  model: Pet
response:
  description: The created pet
  model: Pet
`,
		"petstore/models/Owner.yaml": `type: object
properties:
  name:
    type: string
  pets:
    type: array
    items:
      $ref: Pet
`,
		"store.yaml": `info:
  title: Store
  profiles: [internal]
operations:
  - name: placeOrder
    path: /store/orders
    request:
      schema:
        type: object
        properties:
          pet:
            $ref: petstore#Pet
    responses:
      "201":
        description: Order placed
`,
	}
}
