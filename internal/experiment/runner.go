// Package experiment runs classification experiments: every message of every
// experiment directory is classified once per prompting scenario and the
// results of each scenario are written to their own JSON file.
package experiment

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mwiater/shotclass/internal/appconfig"
	"github.com/mwiater/shotclass/internal/classifier"
	"github.com/mwiater/shotclass/internal/logging"
	"github.com/mwiater/shotclass/internal/prompt"
	"github.com/mwiater/shotclass/internal/storage"
)

// Runner drives experiments sequentially: experiments, then scenarios, then messages.
type Runner struct {
	cfg        *appconfig.Config
	classifier classifier.Classifier
	reporter   *Reporter
}

// NewRunner returns a Runner classifying with clf and printing progress to out.
func NewRunner(cfg *appconfig.Config, clf classifier.Classifier, out io.Writer) *Runner {
	return &Runner{
		cfg:        cfg,
		classifier: clf,
		reporter:   NewReporter(out),
	}
}

// Run executes every experiment under the configured experiments root, or
// only those named. A failing experiment is reported and skipped; Run only
// returns an error when the root cannot be read or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, names ...string) error {
	dirs, err := Discover(r.cfg.ExperimentsDir)
	if err != nil {
		return err
	}
	dirs = filterByName(dirs, names)
	if len(dirs) == 0 {
		logging.LogWarn("no experiments to run under %s", r.cfg.ExperimentsDir)
		return nil
	}

	for _, dir := range dirs {
		name := filepath.Base(dir)
		r.reporter.ExperimentStarted(name)
		if err := r.RunExperiment(ctx, dir); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.LogError(err, "experiment %s skipped", name)
			r.reporter.ExperimentSkipped(name, err)
		}
	}
	return nil
}

// RunExperiment runs all scenarios for one experiment directory. The
// directory's results location is cleared before the first scenario.
func (r *Runner) RunExperiment(ctx context.Context, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("experiment directory %s not found: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("experiment path %s is not a directory", dir)
	}

	input, err := LoadInput(r.cfg, dir)
	if err != nil {
		return err
	}

	resultsDir := r.cfg.ResultsPath(dir)
	if err := storage.ResetDir(resultsDir); err != nil {
		return fmt.Errorf("reset results: %w", err)
	}

	for _, scenario := range prompt.Scenarios() {
		if err := r.runScenario(ctx, input, scenario, resultsDir); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runScenario(ctx context.Context, input Input, scenario prompt.Scenario, resultsDir string) error {
	builder := r.builder(input, scenario)
	r.reporter.ScenarioStarted(builder.Scenario())
	results := NewResults()
	for _, message := range input.Messages {
		if err := ctx.Err(); err != nil {
			return err
		}
		labels := r.classifier.Classify(ctx, builder.Build(message))
		results.Set(message, labels)
		r.reporter.MessageClassified(message, labels)
	}

	logging.LogEvent("%s/%s: classified %d messages", input.Name, scenario, results.Len())
	path := filepath.Join(resultsDir, fmt.Sprintf("%s_results.json", scenario))
	if err := storage.WriteJSON(results, path); err != nil {
		r.reporter.ScenarioSaveFailed(path, err)
		return nil
	}
	r.reporter.ScenarioSaved(path)
	return nil
}

// ClassifyMessage classifies a single message with an experiment's
// categories and examples under scenario. Nothing is written to disk.
func (r *Runner) ClassifyMessage(ctx context.Context, input Input, scenario prompt.Scenario, message string) []string {
	return r.classifier.Classify(ctx, r.builder(input, scenario).Build(message))
}

func (r *Runner) builder(input Input, scenario prompt.Scenario) *prompt.Builder {
	template := storage.ReadText(r.cfg.SystemPromptPath())
	if template == "" {
		logging.LogWarn("system prompt %s is empty; continuing without instructions", r.cfg.SystemPromptPath())
	}
	return prompt.NewBuilder(scenario, prompt.SystemPrompt(template, input.Categories), input.Examples)
}

func filterByName(dirs, names []string) []string {
	if len(names) == 0 {
		return dirs
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	var out []string
	for _, dir := range dirs {
		name := filepath.Base(dir)
		if wanted[name] {
			out = append(out, dir)
			delete(wanted, name)
		}
	}
	for name := range wanted {
		logging.LogWarn("experiment %s not found", name)
	}
	return out
}
