package completion

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func testRootCmd() *cobra.Command {
	root := &cobra.Command{Use: "kpi"}
	root.AddCommand(&cobra.Command{Use: "analyze", Short: "Analyze a KPI column"})
	root.AddCommand(&cobra.Command{Use: "columns", Short: "List columns"})
	root.AddCommand(NewCommand(root))
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := testRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCompletionScripts(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "__start_kpi"},
		{"zsh", "#compdef kpi"},
		{"fish", "complete -c kpi"},
		{"powershell", "Register-ArgumentCompleter"},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			out, err := execute(t, "completion", tt.shell)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(out, "# kpi "+tt.shell+" completion\n# Install: kpi completion "+tt.shell) {
				t.Errorf("missing install header:\n%.120s", out)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("%s script should contain %q", tt.shell, tt.want)
			}
		})
	}
}

func TestShells(t *testing.T) {
	got := strings.Join(Shells(), ",")
	if got != "bash,fish,powershell,zsh" {
		t.Errorf("Shells() = %s", got)
	}
}

func TestHelpListsInstallLines(t *testing.T) {
	cmd := NewCommand(testRootCmd())
	for _, shell := range Shells() {
		if !strings.Contains(cmd.Long, generators[shell].install) {
			t.Errorf("help is missing the %s install line", shell)
		}
	}
}

func TestUnsupportedShell(t *testing.T) {
	_, err := execute(t, "completion", "tcsh")
	if err == nil || !strings.Contains(err.Error(), "unsupported shell") {
		t.Errorf("expected unsupported shell error, got %v", err)
	}
}
