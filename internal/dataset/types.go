package dataset

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// TimelineEntry is one deadline milestone of an edition. Any field may hold "TBD".
type TimelineEntry struct {
	Deadline         string `yaml:"deadline" json:"deadline,omitempty"`
	AbstractDeadline string `yaml:"abstract_deadline" json:"abstract_deadline,omitempty"`
	Comment          string `yaml:"comment" json:"comment,omitempty"`
}

// IsZero reports whether the entry carries no fields.
func (e TimelineEntry) IsZero() bool {
	return e == TimelineEntry{}
}

// EditionID is the dataset-wide edition identifier. The dataset writes it as
// either a bare number or a string, so it decodes from any scalar.
type EditionID string

// UnmarshalYAML implements yaml.Unmarshaler for EditionID.
func (id *EditionID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("edition id must be a scalar (line %d)", value.Line)
	}
	*id = EditionID(strings.TrimSpace(value.Value))
	return nil
}

func (id EditionID) String() string { return string(id) }

// Rank holds the ranking labels attached to a series.
type Rank struct {
	CCF string `yaml:"ccf"`
}

// Edition is one year's instance of a conference series.
type Edition struct {
	ID       EditionID       `yaml:"id" validate:"required"`
	Year     int             `yaml:"year" validate:"required,gt=0"`
	Link     string          `yaml:"link"`
	Timezone string          `yaml:"timezone"`
	Date     string          `yaml:"date"`
	Place    string          `yaml:"place"`
	Timeline []TimelineEntry `yaml:"timeline"`
}

// FirstTimeline returns the first timeline entry, or the zero entry when the
// edition has no timeline.
func (e Edition) FirstTimeline() TimelineEntry {
	if len(e.Timeline) == 0 {
		return TimelineEntry{}
	}
	return e.Timeline[0]
}

// Series is a named academic venue together with its editions.
type Series struct {
	Title       string    `yaml:"title" validate:"required"`
	Description string    `yaml:"description"`
	Subject     string    `yaml:"sub"`
	Rank        Rank      `yaml:"rank"`
	DBLP        string    `yaml:"dblp"`
	Editions    []Edition `yaml:"confs"`

	// Source is the dataset file the series was read from.
	Source string `yaml:"-"`
}

var lowerCaser = cases.Lower(language.Und)

// VenueKey returns the bibliographic lookup key: the explicit dblp id when set,
// otherwise the lowercased display title. Surrounding whitespace is dropped.
func (s Series) VenueKey() string {
	if key := strings.TrimSpace(s.DBLP); key != "" {
		return key
	}
	return lowerCaser.String(strings.TrimSpace(s.Title))
}

// MaxYear returns the largest edition year, or 0 when there are no editions.
func (s Series) MaxYear() int {
	maxYear := 0
	for _, edition := range s.Editions {
		if edition.Year > maxYear {
			maxYear = edition.Year
		}
	}
	return maxYear
}

var subjectNames = map[string]string{
	"AI": "人工智能 (AI)",
	"NW": "计算机网络 (NW)",
	"SE": "软件工程/系统软件/程序设计语言 (SE)",
	"DB": "数据库/数据挖掘/内容检索 (DB)",
	"CT": "计算机科学理论 (CT)",
	"SC": "网络与信息安全 (SC)",
	"CG": "计算机图形学与多媒体 (CG)",
	"HI": "人机交互/普适计算 (HI)",
	"MX": "交叉/综合/新兴 (MX)",
	"DS": "计算机体系结构/并行与分布计算/存储系统 (DS)",
}

// SubjectLabel maps a subject code to its display label. Unknown codes are
// returned unchanged.
func SubjectLabel(code string) string {
	if label, ok := subjectNames[code]; ok {
		return label
	}
	return code
}
