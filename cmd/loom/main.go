// Command loom builds wiring harness documents into graph descriptions,
// rendered diagrams and bills of materials.
package main

import "github.com/loomworks/loom/cmd/loom/cmd"

func main() {
	cmd.Execute()
}
