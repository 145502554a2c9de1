package experiment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mwiater/shotclass/internal/appconfig"
	"github.com/mwiater/shotclass/internal/logging"
	"github.com/mwiater/shotclass/internal/prompt"
	"github.com/mwiater/shotclass/internal/storage"
)

// ErrInvalidInput marks an experiment whose messages file cannot be used.
var ErrInvalidInput = errors.New("invalid experiment input")

// Input is everything an experiment needs besides the prompt template.
type Input struct {
	Name       string
	Dir        string
	Messages   []string
	Categories []string
	Examples   []prompt.Example
}

// Discover returns the experiment directories directly under root, sorted by
// name. Entries that are not directories are ignored.
func Discover(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read experiments root %s: %w", root, err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(root, entry.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// LoadInput reads an experiment's messages and worked examples. It fails with
// ErrInvalidInput when messages or categories are missing or empty; problems
// with the examples file only produce a warning and an empty example set.
func LoadInput(cfg *appconfig.Config, dir string) (Input, error) {
	input := Input{Name: filepath.Base(dir), Dir: dir}

	messagesPath := cfg.MessagesPath(dir)
	doc := storage.ReadJSON(messagesPath)
	if problems := storage.Validate(storage.MessagesSchema, doc); len(problems) > 0 {
		return input, fmt.Errorf("%w: %s: %s", ErrInvalidInput, messagesPath, strings.Join(problems, "; "))
	}
	if err := doc.Decode("messages", &input.Messages); err != nil {
		return input, fmt.Errorf("%w: %s: %v", ErrInvalidInput, messagesPath, err)
	}
	if err := doc.Decode("categories", &input.Categories); err != nil {
		return input, fmt.Errorf("%w: %s: %v", ErrInvalidInput, messagesPath, err)
	}

	input.Examples = loadExamples(cfg.ShotExamplesPath(dir))
	return input, nil
}

func loadExamples(path string) []prompt.Example {
	doc := storage.ReadJSON(path)
	if problems := storage.Validate(storage.ShotExamplesSchema, doc); len(problems) > 0 {
		logging.LogWarn("no usable worked examples in %s (%s); one_shot and few_shot fall back to zero examples", path, strings.Join(problems, "; "))
		return nil
	}

	var examples []prompt.Example
	if err := doc.Decode("examples", &examples); err != nil {
		logging.LogWarn("could not decode worked examples in %s: %v", path, err)
		return nil
	}
	return examples
}
