package main

import (
	"fmt"
	"os"

	"blog-todo/internal/app"
)

func main() {
	if err := app.Run("blog"); err != nil {
		fmt.Fprintln(os.Stderr, "blog:", err)
		os.Exit(1)
	}
}
