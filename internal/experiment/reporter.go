package experiment

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/mwiater/shotclass/internal/classifier"
	"github.com/mwiater/shotclass/internal/prompt"
)

// Reporter prints run progress for humans.
type Reporter struct {
	out      io.Writer
	banner   lipgloss.Style
	scenario *color.Color
	ok       *color.Color
	failed   *color.Color
}

// NewReporter writes progress to out.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{
		out:      out,
		banner:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		scenario: color.New(color.FgCyan, color.Bold),
		ok:       color.New(color.FgGreen),
		failed:   color.New(color.FgRed),
	}
}

// ExperimentStarted announces an experiment directory.
func (r *Reporter) ExperimentStarted(name string) {
	line := fmt.Sprintf("%s RUNNING EXPERIMENT: %s %s", strings.Repeat("=", 20), name, strings.Repeat("=", 20))
	fmt.Fprintf(r.out, "\n%s\n", r.banner.Render(line))
}

// ExperimentSkipped explains why an experiment did not run.
func (r *Reporter) ExperimentSkipped(name string, err error) {
	r.failed.Fprintf(r.out, "Skipping experiment %s: %v\n", name, err)
}

// ScenarioStarted announces a scenario pass.
func (r *Reporter) ScenarioStarted(s prompt.Scenario) {
	r.scenario.Fprintf(r.out, "\n--- Running Scenario: %s ---\n", strings.ToUpper(s.String()))
}

// MessageClassified prints one message and its predicted labels.
func (r *Reporter) MessageClassified(message string, labels []string) {
	quoted := make([]string, len(labels))
	for i, label := range labels {
		quoted[i] = fmt.Sprintf("%q", label)
	}
	c := r.ok
	if len(labels) == 1 && labels[0] == classifier.FailureLabel {
		c = r.failed
	}
	fmt.Fprintf(r.out, "Message: %q -> ", message)
	c.Fprintf(r.out, "Categories: [%s]\n", strings.Join(quoted, ", "))
}

// ScenarioSaved reports where a scenario's results were written.
func (r *Reporter) ScenarioSaved(path string) {
	r.ok.Fprintf(r.out, "Successfully saved results to %s\n", path)
}

// ScenarioSaveFailed reports a results file that could not be written.
func (r *Reporter) ScenarioSaveFailed(path string, err error) {
	r.failed.Fprintf(r.out, "Could not save results to %s: %v\n", path, err)
}
