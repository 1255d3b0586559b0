package flow

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strconv"
)

// SelectSnapshot lists paths (newest first) and prompts the operator for
// a 1-indexed choice, re-prompting until the input is a number in range.
// Returns an error only when the input stream closes first.
func (r *Runner) SelectSnapshot(paths []string) (string, error) {
	r.printf("Multiple credential snapshots found:")
	for i, p := range paths {
		r.printf("  [%d] %s", i+1, filepath.Base(p))
	}

	scanner := bufio.NewScanner(r.In)
	for {
		fmt.Fprintf(r.Out, "Select a snapshot (1-%d): ", len(paths))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("flow: read selection: %w", err)
			}
			return "", fmt.Errorf("flow: input closed before a snapshot was selected")
		}
		n, err := strconv.Atoi(scanner.Text())
		if err != nil || n < 1 || n > len(paths) {
			r.printf("Invalid selection %q. Enter a number between 1 and %d.", scanner.Text(), len(paths))
			continue
		}
		return paths[n-1], nil
	}
}
