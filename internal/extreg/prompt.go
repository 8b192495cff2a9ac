package extreg

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptResolver asks the operator on out/in which category an unknown
// extension belongs to, re-asking until one of image, video or other
// is entered.
func PromptResolver(in io.Reader, out io.Writer) Resolver {
	reader := bufio.NewReader(in)
	return func(ext string) (Category, error) {
		for {
			fmt.Fprintf(out, "Unknown extension %q - category (image/video/other): ", ext)
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return "", fmt.Errorf("read category for %q: %w", ext, err)
			}
			category := Category(strings.ToLower(strings.TrimSpace(line)))
			if category.Known() {
				return category, nil
			}
			fmt.Fprintln(out, "Please enter image, video or other.")
		}
	}
}

// StaticResolver assigns every unknown extension the same category.
// Used for unattended runs.
func StaticResolver(category Category) Resolver {
	return func(string) (Category, error) {
		return category, nil
	}
}
