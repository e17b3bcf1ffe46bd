// Command gitid asks which git identity to use for each commit.
package main

import (
	"os"

	"github.com/ksteinfeldt/gitid/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
