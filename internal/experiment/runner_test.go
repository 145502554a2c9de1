package experiment

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/shotclass/internal/appconfig"
	"github.com/mwiater/shotclass/internal/classifier"
	"github.com/mwiater/shotclass/internal/logging"
	"github.com/mwiater/shotclass/internal/providers"
)

type fakeClassifier struct {
	labels map[string][]string
	calls  [][]providers.ChatMessage
	onCall func()
}

func (f *fakeClassifier) Classify(ctx context.Context, turns []providers.ChatMessage) []string {
	f.calls = append(f.calls, turns)
	if f.onCall != nil {
		f.onCall()
	}
	target := turns[len(turns)-1].Content
	if labels, ok := f.labels[target]; ok {
		return labels
	}
	return []string{classifier.FailureLabel}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newWorkspace(t *testing.T) *appconfig.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &appconfig.Config{
		ExperimentsDir: filepath.Join(root, "examples"),
		PromptsDir:     filepath.Join(root, "prompts"),
	}
	cfg.ApplyDefaults()
	writeFile(t, cfg.SystemPromptPath(), "Choose from: {categories}")
	return cfg
}

func readResults(t *testing.T, path string) map[string][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string][]string
	require.NoError(t, json.Unmarshal(data, &got))
	return got
}

func TestRunExperimentWritesEveryScenario(t *testing.T) {
	cfg := newWorkspace(t)
	dir := filepath.Join(cfg.ExperimentsDir, "1")
	writeFile(t, cfg.MessagesPath(dir), `{"messages":["Win a prize!","Meeting at 3"],"categories":["spam","work"]}`)
	writeFile(t, cfg.ShotExamplesPath(dir), `{"examples":[{"message":"Free money","categories":"spam"},{"message":"Standup moved","categories":"work"}]}`)

	clf := &fakeClassifier{labels: map[string][]string{
		"Win a prize!": {"spam"},
		"Meeting at 3": {"work"},
	}}
	var out bytes.Buffer
	runner := NewRunner(cfg, clf, &out)

	require.NoError(t, runner.RunExperiment(context.Background(), dir))

	for _, name := range []string{"zero_shot", "one_shot", "few_shot"} {
		got := readResults(t, filepath.Join(cfg.ResultsPath(dir), name+"_results.json"))
		assert.Equal(t, map[string][]string{"Win a prize!": {"spam"}, "Meeting at 3": {"work"}}, got, name)
	}

	require.Len(t, clf.calls, 6)
	assert.Len(t, clf.calls[0], 2)
	assert.Len(t, clf.calls[2], 4)
	assert.Len(t, clf.calls[4], 6)
	assert.Equal(t, "Choose from: spam, work", clf.calls[0][0].Content)

	assert.Contains(t, out.String(), "--- Running Scenario: ZERO_SHOT ---")
	assert.Contains(t, out.String(), "--- Running Scenario: FEW_SHOT ---")
	assert.Contains(t, out.String(), "Successfully saved results to")
}

func TestRunExperimentClearsStaleResults(t *testing.T) {
	cfg := newWorkspace(t)
	dir := filepath.Join(cfg.ExperimentsDir, "1")
	writeFile(t, cfg.MessagesPath(dir), `{"messages":["hello"],"categories":["greeting"]}`)
	stale := filepath.Join(cfg.ResultsPath(dir), "stale.txt")
	writeFile(t, stale, "old")

	runner := NewRunner(cfg, &fakeClassifier{}, &bytes.Buffer{})
	require.NoError(t, runner.RunExperiment(context.Background(), dir))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, filepath.Join(cfg.ResultsPath(dir), "zero_shot_results.json"))
}

func TestRunExperimentInvalidInputKeepsResults(t *testing.T) {
	cfg := newWorkspace(t)
	dir := filepath.Join(cfg.ExperimentsDir, "1")
	writeFile(t, cfg.MessagesPath(dir), `{"messages":["hello"]}`)
	previous := filepath.Join(cfg.ResultsPath(dir), "zero_shot_results.json")
	writeFile(t, previous, "{}")

	clf := &fakeClassifier{}
	runner := NewRunner(cfg, clf, &bytes.Buffer{})
	err := runner.RunExperiment(context.Background(), dir)

	require.ErrorIs(t, err, ErrInvalidInput)
	assert.FileExists(t, previous)
	assert.Empty(t, clf.calls)
}

func TestRunExperimentMissingDirectory(t *testing.T) {
	cfg := newWorkspace(t)
	runner := NewRunner(cfg, &fakeClassifier{}, &bytes.Buffer{})
	assert.Error(t, runner.RunExperiment(context.Background(), filepath.Join(cfg.ExperimentsDir, "missing")))
}

func TestRunSkipsBrokenExperimentAndContinues(t *testing.T) {
	cfg := newWorkspace(t)
	broken := filepath.Join(cfg.ExperimentsDir, "1")
	good := filepath.Join(cfg.ExperimentsDir, "2")
	writeFile(t, cfg.MessagesPath(broken), `{"messages":["x"],"categories":[]}`)
	writeFile(t, cfg.MessagesPath(good), `{"messages":["ping"],"categories":["test"]}`)

	clf := &fakeClassifier{labels: map[string][]string{"ping": {"test"}}}
	var out bytes.Buffer
	runner := NewRunner(cfg, clf, &out)

	require.NoError(t, runner.Run(context.Background()))

	assert.NoDirExists(t, cfg.ResultsPath(broken))
	assert.FileExists(t, filepath.Join(cfg.ResultsPath(good), "few_shot_results.json"))
	assert.Contains(t, out.String(), "RUNNING EXPERIMENT: 1")
	assert.Contains(t, out.String(), "Skipping experiment 1")
	assert.Contains(t, out.String(), "RUNNING EXPERIMENT: 2")
}

func TestRunFiltersByName(t *testing.T) {
	cfg := newWorkspace(t)
	for _, name := range []string{"a", "b"} {
		writeFile(t, cfg.MessagesPath(filepath.Join(cfg.ExperimentsDir, name)), `{"messages":["m"],"categories":["c"]}`)
	}

	runner := NewRunner(cfg, &fakeClassifier{}, &bytes.Buffer{})
	require.NoError(t, runner.Run(context.Background(), "b", "missing"))

	assert.NoDirExists(t, cfg.ResultsPath(filepath.Join(cfg.ExperimentsDir, "a")))
	assert.DirExists(t, cfg.ResultsPath(filepath.Join(cfg.ExperimentsDir, "b")))
}

func TestRunMissingRoot(t *testing.T) {
	cfg := newWorkspace(t)
	cfg.ExperimentsDir = filepath.Join(t.TempDir(), "nope")
	runner := NewRunner(cfg, &fakeClassifier{}, &bytes.Buffer{})
	assert.Error(t, runner.Run(context.Background()))
}

func TestFailedClassificationIsRecorded(t *testing.T) {
	cfg := newWorkspace(t)
	dir := filepath.Join(cfg.ExperimentsDir, "1")
	writeFile(t, cfg.MessagesPath(dir), `{"messages":["first","second"],"categories":["c"]}`)

	clf := &fakeClassifier{labels: map[string][]string{"second": {"c"}}}
	var out bytes.Buffer
	runner := NewRunner(cfg, clf, &out)
	require.NoError(t, runner.RunExperiment(context.Background(), dir))

	got := readResults(t, filepath.Join(cfg.ResultsPath(dir), "zero_shot_results.json"))
	assert.Equal(t, []string{classifier.FailureLabel}, got["first"])
	assert.Equal(t, []string{"c"}, got["second"])
	assert.Len(t, clf.calls, 6)
}

func TestResultsFileKeepsOrderAndUnicode(t *testing.T) {
	cfg := newWorkspace(t)
	dir := filepath.Join(cfg.ExperimentsDir, "1")
	writeFile(t, cfg.MessagesPath(dir), `{"messages":["zürich <b>&","alpha"],"categories":["ort"]}`)

	clf := &fakeClassifier{labels: map[string][]string{
		"zürich <b>&": {"ort"},
		"alpha":       {"ort", ""},
	}}
	runner := NewRunner(cfg, clf, &bytes.Buffer{})
	require.NoError(t, runner.RunExperiment(context.Background(), dir))

	data, err := os.ReadFile(filepath.Join(cfg.ResultsPath(dir), "zero_shot_results.json"))
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `"zürich <b>&"`)
	assert.Contains(t, text, "\n    \"alpha\": [\n        \"ort\",\n        \"\"\n    ]")
	assert.Less(t, strings.Index(text, "zürich"), strings.Index(text, "alpha"))
}

func TestRunStopsWhenCancelled(t *testing.T) {
	cfg := newWorkspace(t)
	dir := filepath.Join(cfg.ExperimentsDir, "1")
	writeFile(t, cfg.MessagesPath(dir), `{"messages":["one","two","three"],"categories":["c"]}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clf := &fakeClassifier{onCall: cancel}
	runner := NewRunner(cfg, clf, &bytes.Buffer{})

	err := runner.Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, clf.calls, 1)
	assert.NoFileExists(t, filepath.Join(cfg.ResultsPath(dir), "zero_shot_results.json"))
}

func TestClassifyMessage(t *testing.T) {
	cfg := newWorkspace(t)
	clf := &fakeClassifier{labels: map[string][]string{"hi": {"greeting"}}}
	runner := NewRunner(cfg, clf, &bytes.Buffer{})

	input := Input{Categories: []string{"greeting"}}
	got := runner.ClassifyMessage(context.Background(), input, "one_shot", "hi")

	assert.Equal(t, []string{"greeting"}, got)
	require.Len(t, clf.calls, 1)
	assert.Len(t, clf.calls[0], 2)
}

func TestRunExperimentLogsScenarioCounts(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, logging.Init(logPath, false))
	t.Cleanup(func() { _ = logging.Close() })

	cfg := newWorkspace(t)
	dir := filepath.Join(cfg.ExperimentsDir, "7")
	writeFile(t, cfg.MessagesPath(dir), `{"messages":["a","b","a"],"categories":["c"]}`)

	runner := NewRunner(cfg, &fakeClassifier{}, &bytes.Buffer{})
	require.NoError(t, runner.RunExperiment(context.Background(), dir))
	require.NoError(t, logging.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "7/zero_shot: classified 2 messages")
	assert.Contains(t, string(data), "7/few_shot: classified 2 messages")
}
