package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	var selected []Demo
	if args := os.Args[1:]; len(args) == 0 {
		selected = demos
	} else {
		for _, slug := range args {
			demo, ok := demoBySlug(slug)
			if !ok {
				fmt.Fprintf(os.Stderr, "unknown demo %q\n\n", slug)
				printAvailable(os.Stderr)
				os.Exit(1)
			}
			selected = append(selected, demo)
		}
	}

	for i, demo := range selected {
		if i > 0 {
			fmt.Println()
		}
		if err := runDemo(os.Stdout, demo); err != nil {
			fmt.Fprintf(os.Stderr, "showcase: %v\n", err)
			os.Exit(1)
		}
	}
}

// printAvailable lists the registered demos grouped by category.
func printAvailable(w io.Writer) {
	fmt.Fprintln(w, "Available demos:")
	for _, category := range []string{CategoryBasics, CategoryDynamic} {
		fmt.Fprintf(w, "  [%s]\n", category)
		for _, demo := range demosForCategory(category) {
			fmt.Fprintf(w, "    %-10s %s\n", demo.Slug, demo.Subtitle)
		}
	}
}
