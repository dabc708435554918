package emotion

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	Neutral = "Neutral"
	Mixed   = "Mixed"

	NeutralGlyph = "😐"
	MixedGlyph   = "🤔"
	MixedLabel   = "Mixed / Ambiguous"
	NeutralColor = "#6c757d"
)

var ErrInvalidTable = errors.New("invalid emotion table")

//go:embed profiles.yaml
var defaultProfilesYAML []byte

var validate = validator.New(validator.WithRequiredStructEnabled())

// Profile is one emotion category.
type Profile struct {
	Name     string   `json:"name" yaml:"name" validate:"required"`
	Glyph    string   `json:"glyph" yaml:"glyph" validate:"required"`
	Color    string   `json:"color" yaml:"color" validate:"required,hexcolor"`
	Keywords []string `json:"keywords" yaml:"keywords" validate:"min=1,unique,dive,required,lowercase"`
}

type tableFile struct {
	Profiles []Profile `yaml:"profiles" validate:"len=6,dive"`
}

// Table is the ordered set of emotion profiles. It is never mutated after
// construction and is safe to share between goroutines.
type Table struct {
	profiles []Profile
	index    map[string]int
	keywords []map[string]struct{}
}

var defaultTable *Table

func init() {
	t, err := ParseTable(defaultProfilesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded profiles.yaml: %v", err))
	}
	defaultTable = t
}

// DefaultTable returns the built-in six-emotion table.
func DefaultTable() *Table {
	return defaultTable
}

func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles %s: %w", path, err)
	}
	return ParseTable(data)
}

func ParseTable(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidTable, err)
	}
	return NewTable(file.Profiles)
}

func NewTable(profiles []Profile) (*Table, error) {
	if err := validate.Struct(tableFile{Profiles: profiles}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	t := &Table{
		profiles: make([]Profile, 0, len(profiles)),
		index:    make(map[string]int, len(profiles)),
		keywords: make([]map[string]struct{}, 0, len(profiles)),
	}
	owner := make(map[string]string)
	for i, p := range profiles {
		name := strings.TrimSpace(p.Name)
		if name == Neutral || name == Mixed {
			return nil, fmt.Errorf("%w: profile name %q is reserved", ErrInvalidTable, name)
		}
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate profile %q", ErrInvalidTable, name)
		}
		set := make(map[string]struct{}, len(p.Keywords))
		for _, kw := range p.Keywords {
			if prev, taken := owner[kw]; taken {
				return nil, fmt.Errorf("%w: keyword %q in both %s and %s", ErrInvalidTable, kw, prev, name)
			}
			owner[kw] = name
			set[kw] = struct{}{}
		}
		t.index[name] = i
		t.keywords = append(t.keywords, set)
		t.profiles = append(t.profiles, Profile{
			Name:     name,
			Glyph:    p.Glyph,
			Color:    p.Color,
			Keywords: append([]string(nil), p.Keywords...),
		})
	}
	return t, nil
}

func (t *Table) Len() int {
	return len(t.profiles)
}

// Profiles returns a copy of the profiles in declaration order.
func (t *Table) Profiles() []Profile {
	out := make([]Profile, len(t.profiles))
	for i, p := range t.profiles {
		p.Keywords = append([]string(nil), p.Keywords...)
		out[i] = p
	}
	return out
}

func (t *Table) Names() []string {
	out := make([]string, len(t.profiles))
	for i, p := range t.profiles {
		out[i] = p.Name
	}
	return out
}

func (t *Table) Colors() []string {
	out := make([]string, len(t.profiles))
	for i, p := range t.profiles {
		out[i] = p.Color
	}
	return out
}

func (t *Table) Lookup(name string) (Profile, bool) {
	i, ok := t.index[name]
	if !ok {
		return Profile{}, false
	}
	p := t.profiles[i]
	p.Keywords = append([]string(nil), p.Keywords...)
	return p, true
}

// Keywords returns every keyword of every profile.
func (t *Table) Keywords() []string {
	var out []string
	for _, p := range t.profiles {
		out = append(out, p.Keywords...)
	}
	return out
}

func (t *Table) matches(i int, token string) bool {
	_, ok := t.keywords[i][token]
	return ok
}
