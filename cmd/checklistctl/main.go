package main

import (
	"fmt"
	"os"
)

func main() {
	app := &App{}
	err := NewRootCmd(app).Execute()
	// PersistentPostRunE is skipped when a command fails
	app.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
