// Package areamodels holds the immutable table of tuned model orders per area. Names are
// matched after folding case, diacritics and whitespace, then resolved through aliases.
package areamodels

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/bfp-analytics/go-firecast/models"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

const memoSize = 512

var (
	ErrInvalidTable = errors.New("invalid area model table")
	ErrDuplicate    = errors.New("duplicate area name")
)

//go:embed models.yaml
var embedded []byte

var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Parse(embedded)
})

// Default returns the table compiled into the binary. It is parsed once per process.
func Default() (*Table, error) {
	return loadDefault()
}

type specDoc struct {
	Order         []int `yaml:"order"`
	SeasonalOrder []int `yaml:"seasonal_order"`
}

type areaDoc struct {
	Name    string   `yaml:"name"`
	Spec    specDoc  `yaml:",inline"`
	Aliases []string `yaml:"aliases"`
}

type tableDoc struct {
	Default specDoc   `yaml:"default"`
	Areas   []areaDoc `yaml:"areas"`
}

func (d specDoc) spec() (models.Spec, error) {
	if len(d.Order) != 3 {
		return models.Spec{}, fmt.Errorf("order needs 3 values, got %d, %w", len(d.Order), ErrInvalidTable)
	}
	spec := models.ARIMASpec(d.Order[0], d.Order[1], d.Order[2])
	switch len(d.SeasonalOrder) {
	case 0:
	case 4:
		so := d.SeasonalOrder
		spec = models.SeasonalSpec(d.Order[0], d.Order[1], d.Order[2], so[0], so[1], so[2], so[3])
	default:
		return models.Spec{}, fmt.Errorf(
			"seasonal order needs 4 values, got %d, %w", len(d.SeasonalOrder), ErrInvalidTable,
		)
	}
	if err := spec.Validate(); err != nil {
		return models.Spec{}, err
	}
	return spec, nil
}

// Entry is a single area in the table
type Entry struct {
	Name    string
	Spec    models.Spec
	Aliases []string
}

// Match is the result of a lookup. Default is set when the name was not found and the table's
// default specification was returned.
type Match struct {
	Name    string
	Spec    models.Spec
	Default bool
}

// Table maps normalized area names and aliases to tuned model specifications. It is never
// mutated after Parse returns and is safe for concurrent lookups.
type Table struct {
	entries map[string]*Entry
	keys    map[string]string
	names   []string
	def     models.Spec
	memo    *lru.Cache[string, Match]
}

func Load(r io.Reader) (*Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read area model table, %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Table, error) {
	var doc tableDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("unable to parse area model table, %s, %w", err.Error(), ErrInvalidTable)
	}

	def, err := doc.Default.spec()
	if err != nil {
		return nil, fmt.Errorf("default entry, %w", err)
	}

	memo, err := lru.New[string, Match](memoSize)
	if err != nil {
		return nil, err
	}
	t := &Table{
		entries: make(map[string]*Entry, len(doc.Areas)),
		keys:    make(map[string]string),
		names:   make([]string, 0, len(doc.Areas)),
		def:     def,
		memo:    memo,
	}

	for _, a := range doc.Areas {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return nil, fmt.Errorf("area without a name, %w", ErrInvalidTable)
		}
		spec, err := a.Spec.spec()
		if err != nil {
			return nil, fmt.Errorf("area %q, %w", name, err)
		}
		entry := &Entry{
			Name:    name,
			Spec:    spec,
			Aliases: append([]string(nil), a.Aliases...),
		}
		for _, key := range append([]string{name}, a.Aliases...) {
			k := Normalize(key)
			if existing, ok := t.keys[k]; ok {
				return nil, fmt.Errorf("%q already maps to %q, %w", key, existing, ErrDuplicate)
			}
			t.keys[k] = name
		}
		t.entries[name] = entry
		t.names = append(t.names, name)
	}
	sort.Strings(t.names)
	return t, nil
}

// Normalize folds an area name for matching. Diacritics are stripped, case is folded,
// hyphens count as spaces and runs of whitespace collapse to one space.
func Normalize(name string) string {
	tr := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(tr, name)
	if err != nil {
		folded = name
	}
	folded = cases.Fold().String(folded)
	folded = strings.ReplaceAll(folded, "-", " ")
	return strings.Join(strings.Fields(folded), " ")
}

// Lookup resolves a name to its tuned specification, or the table default when absent.
func (t *Table) Lookup(name string) Match {
	key := Normalize(name)
	if m, ok := t.memo.Get(key); ok {
		return copyMatch(m)
	}

	m := Match{Name: name, Spec: t.def, Default: true}
	if canonical, ok := t.keys[key]; ok {
		e := t.entries[canonical]
		m = Match{Name: e.Name, Spec: e.Spec}
	}
	t.memo.Add(key, m)
	return copyMatch(m)
}

// Entry returns the canonical entry for a name or alias
func (t *Table) Entry(name string) (Entry, bool) {
	canonical, ok := t.keys[Normalize(name)]
	if !ok {
		return Entry{}, false
	}
	e := t.entries[canonical]
	return Entry{
		Name:    e.Name,
		Spec:    copySpec(e.Spec),
		Aliases: append([]string(nil), e.Aliases...),
	}, true
}

// DefaultSpec is returned for names missing from the table
func (t *Table) DefaultSpec() models.Spec {
	return copySpec(t.def)
}

// Names lists canonical area names in sorted order
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

func (t *Table) Len() int {
	return len(t.entries)
}

func copyMatch(m Match) Match {
	m.Spec = copySpec(m.Spec)
	return m
}

func copySpec(s models.Spec) models.Spec {
	if s.Seasonal != nil {
		so := *s.Seasonal
		s.Seasonal = &so
	}
	return s
}
