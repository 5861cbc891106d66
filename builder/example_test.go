package builder_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/erraggy/swaggen/builder"
	"github.com/erraggy/swaggen/writer"
)

// writeExampleTree lays out a two-file specification and returns the source root.
func writeExampleTree() string {
	root, err := os.MkdirTemp("", "swaggen-example-*")
	if err != nil {
		log.Fatal(err)
	}
	files := map[string]string{
		"pets/info.yaml": "title: Pets\ndescription: Pet registry\n",
		"pets/pets.yaml": `operations:
  - name: listPets
    method: get
    path: /pets
    description: List every pet
    responses:
      "200":
        description: The pets
        schema:
          type: array
          items:
            $ref: Pet
schemas:
  Pet:
    type: object
    properties:
      name:
        type: string
`,
	}
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o600); err != nil {
			log.Fatal(err)
		}
	}
	return root
}

// Example builds a source tree and reports the outcome of each specification.
func Example() {
	src := writeExampleTree()
	defer func() { _ = os.RemoveAll(src) }()
	out := filepath.Join(src, "dist")

	result, err := builder.Build(context.Background(), src, out, "1.4.0",
		builder.WithFormats(writer.FormatJSON))
	if err != nil {
		log.Fatal(err)
	}

	for _, o := range result.Specs {
		fmt.Printf("%s: %s, %d operation\n", o.Spec, o.Status, o.Operations)
		for _, a := range o.Artifacts {
			rel, _ := filepath.Rel(out, a)
			fmt.Println("wrote", rel)
		}
	}
	fmt.Println("success:", result.Success())
	// Output:
	// pets: written, 1 operation
	// wrote pets.json
	// success: true
}

// Example_diagnostics shows how failures are reported per specification.
func Example_diagnostics() {
	src := writeExampleTree()
	defer func() { _ = os.RemoveAll(src) }()
	if err := os.WriteFile(filepath.Join(src, "broken.yaml"), []byte("schemas:\n  Alias:\n    $ref: Missing\n"), 0o600); err != nil {
		log.Fatal(err)
	}

	result, err := builder.Build(context.Background(), src, filepath.Join(src, "dist"), "1.4.0",
		builder.WithPolicy(builder.PolicyAllOrNothing))
	if err != nil {
		log.Fatal(err)
	}

	for _, o := range result.Specs {
		fmt.Printf("%s: %s\n", o.Spec, o.Status)
	}
	for _, d := range result.Diagnostics() {
		fmt.Println(d.Stage, d.Spec, d.Location.Line)
	}
	// Output:
	// broken: failed
	// pets: withheld
	// resolve broken 3
}
