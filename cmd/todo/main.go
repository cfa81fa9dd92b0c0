package main

import (
	"fmt"
	"os"

	"blog-todo/internal/app"
)

func main() {
	if err := app.Run("todo"); err != nil {
		fmt.Fprintln(os.Stderr, "todo:", err)
		os.Exit(1)
	}
}
