package output

import (
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"
)

// ShouldPage returns true if output should be piped through a pager.
// This checks if stdout is a terminal and the content exceeds terminal height.
func ShouldPage(content string, termHeight int) bool {
	if !isTerminal() {
		return false
	}
	lines := strings.Count(content, "\n")
	return lines > termHeight
}

// Page pipes content through the user's preferred pager (PAGER env, or "less").
func Page(content string) error {
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = "less"
	}

	cmd := exec.Command(pager)
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// Show writes content to stdout, through the pager when it is longer than
// termHeight lines and stdout is a terminal.
func Show(content string, termHeight int) error {
	if termHeight > 0 && ShouldPage(content, termHeight) {
		if err := Page(content); err == nil {
			return nil
		}
	}
	_, err := os.Stdout.WriteString(content)
	return err
}

func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}
