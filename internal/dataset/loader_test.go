package dataset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confwatch/internal/dataset"
)

const listDocument = `
- title: AAAI
  description: AAAI Conference on Artificial Intelligence
  sub: AI
  rank:
    ccf: A
  dblp: aaai
  confs:
    - year: 2024
      id: aaai24
      link: https://aaai.org/aaai-conference/
      timeline:
        - deadline: '2023-08-15 23:59:59'
          abstract_deadline: '2023-08-08 23:59:59'
      timezone: UTC-12
      date: February 20-27, 2024
      place: Vancouver, Canada
    - year: 2025
      id: 2025001
      timeline:
        - deadline: TBD
      timezone: AoE
`

const mappingDocument = `
title: Middleware
description: ACM/IFIP International Middleware Conference
sub: DS
rank:
  ccf: B
confs:
  - year: 2023
    id: middleware23
    timeline:
      - deadline: '2023-05-26 23:59:59'
`

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadFileDecodesListDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aaai.yml")
	writeFile(t, path, listDocument)

	series, err := dataset.NewLoader(nil).LoadFile(path)
	require.NoError(t, err)
	require.Len(t, series, 1)

	aaai := series[0]
	assert.Equal(t, "AAAI", aaai.Title)
	assert.Equal(t, "AI", aaai.Subject)
	assert.Equal(t, "A", aaai.Rank.CCF)
	assert.Equal(t, "aaai", aaai.VenueKey())
	assert.Equal(t, 2025, aaai.MaxYear())
	assert.Equal(t, path, aaai.Source)
	require.Len(t, aaai.Editions, 2)
	assert.Equal(t, dataset.EditionID("aaai24"), aaai.Editions[0].ID)
	assert.Equal(t, dataset.EditionID("2025001"), aaai.Editions[1].ID)
	assert.Equal(t, "2023-08-15 23:59:59", aaai.Editions[0].FirstTimeline().Deadline)
	assert.Equal(t, "2023-08-08 23:59:59", aaai.Editions[0].FirstTimeline().AbstractDeadline)
	assert.Equal(t, "TBD", aaai.Editions[1].FirstTimeline().Deadline)
}

func TestLoadFileDecodesSingleMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "middleware.yml")
	writeFile(t, path, mappingDocument)

	series, err := dataset.NewLoader(nil).LoadFile(path)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, "middleware", series[0].VenueKey(), "venue key falls back to lowercased title")
}

func TestLoadFileSkipsInvalidRecordsAndEditions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.yml")
	writeFile(t, path, `
- description: no title here
  confs:
    - year: 2024
      id: x24
- title: SIGCOMM
  sub: NW
  confs:
    - year: 2024
    - year: 2024
      id: sigcomm24
-
`)

	series, err := dataset.NewLoader(nil).LoadFile(path)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, "SIGCOMM", series[0].Title)
	require.Len(t, series[0].Editions, 1)
	assert.Equal(t, dataset.EditionID("sigcomm24"), series[0].Editions[0].ID)
}

func TestLoadDirOrdersFilesAndSkipsBrokenOnes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "conference", "NW", "sigcomm.yml"), `
- title: SIGCOMM
  sub: NW
  confs:
    - year: 2024
      id: sigcomm24
`)
	writeFile(t, filepath.Join(root, "conference", "AI", "aaai.yml"), listDocument)
	writeFile(t, filepath.Join(root, "conference", "AI", "broken.yml"), "title: [unterminated\n")
	writeFile(t, filepath.Join(root, "conference", "README.md"), "# not a dataset file\n")

	series, err := dataset.NewLoader(nil).LoadDir(root)
	require.NoError(t, err)

	titles := make([]string, 0, len(series))
	for _, s := range series {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"AAAI", "SIGCOMM"}, titles)
}

func TestLoadDirMissingRoot(t *testing.T) {
	_, err := dataset.NewLoader(nil).LoadDir(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestSubjectLabel(t *testing.T) {
	assert.Equal(t, "人工智能 (AI)", dataset.SubjectLabel("AI"))
	assert.Equal(t, "ZZ", dataset.SubjectLabel("ZZ"))
}

func TestVenueKeyTrimsPaddedTitle(t *testing.T) {
	assert.Equal(t, "neurips", dataset.Series{Title: "NeurIPS "}.VenueKey())
	assert.Equal(t, "icml", dataset.Series{Title: " ICML", DBLP: "  "}.VenueKey())
	assert.Equal(t, "nips", dataset.Series{Title: "NeurIPS ", DBLP: " nips "}.VenueKey())
}
