package dataset

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"confwatch/internal/logging"
)

// FilePattern selects dataset documents below the dataset root.
const FilePattern = "**/*.yml"

// Loader reads conference series definitions from YAML documents.
type Loader struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewLoader constructs a loader. A nil logger discards output.
func NewLoader(logger *slog.Logger) *Loader {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("yaml")
		if tag == "-" || tag == "" {
			return fld.Name
		}
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		return tag
	})
	return &Loader{
		logger:   logging.NewComponentLogger(logger, "dataset"),
		validate: v,
	}
}

// LoadDir walks root for dataset documents. Files are visited in lexicographic
// path order and records keep their declaration order within a file. A file that
// fails to parse is logged and skipped.
func (l *Loader) LoadDir(root string) ([]Series, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("dataset dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset dir %s is not a directory", root)
	}

	matches, err := doublestar.Glob(os.DirFS(root), FilePattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob dataset: %w", err)
	}
	sort.Strings(matches)

	var all []Series
	for _, rel := range matches {
		path := filepath.Join(root, filepath.FromSlash(rel))
		series, err := l.LoadFile(path)
		if err != nil {
			logging.WarnWithContext(l.logger, "dataset file skipped", "dataset_load_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "conferences in this file are not tracked this run"),
				logging.String(logging.FieldErrorHint, "fix the YAML syntax in the dataset file"),
			)
			continue
		}
		all = append(all, series...)
	}
	l.logger.Debug("dataset loaded",
		logging.String("root", root),
		logging.Int("files", len(matches)),
		logging.Int("series", len(all)),
	)
	return all, nil
}

// LoadFile parses a single dataset document. The document may hold one series
// mapping or a list of them.
func (l *Loader) LoadFile(path string) ([]Series, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	raw, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	out := make([]Series, 0, len(raw))
	for idx, series := range raw {
		if series.Title == "" && len(series.Editions) == 0 {
			continue
		}
		series.Source = path
		if err := l.validate.Struct(series); err != nil {
			logging.WarnWithContext(l.logger, "dataset record skipped", "dataset_record_invalid",
				logging.String("path", path),
				logging.Int("index", idx),
				logging.Error(err),
				logging.String(logging.FieldImpact, "conference is not tracked"),
				logging.String(logging.FieldErrorHint, "every record needs a title"),
			)
			continue
		}
		series.Editions = l.validEditions(series)
		if len(series.Editions) == 0 {
			continue
		}
		out = append(out, series)
	}
	return out, nil
}

func (l *Loader) validEditions(series Series) []Edition {
	editions := make([]Edition, 0, len(series.Editions))
	for _, edition := range series.Editions {
		if err := l.validate.Struct(edition); err != nil {
			logging.WarnWithContext(l.logger, "dataset edition skipped", "dataset_edition_invalid",
				logging.String("title", series.Title),
				logging.String("path", series.Source),
				logging.Error(err),
				logging.String(logging.FieldImpact, "edition is not tracked"),
				logging.String(logging.FieldErrorHint, "every edition needs an id and a year"),
			)
			continue
		}
		editions = append(editions, edition)
	}
	return editions
}

func decodeDocument(data []byte) ([]Series, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var list []Series
		if err := root.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	case yaml.MappingNode:
		var single Series
		if err := root.Decode(&single); err != nil {
			return nil, err
		}
		return []Series{single}, nil
	case yaml.ScalarNode:
		if root.Tag == "!!null" {
			return nil, nil
		}
	}
	return nil, errors.New("document must be a mapping or a list of mappings")
}
