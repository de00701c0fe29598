package data

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// WorldDef describes one world the host can construct, loaded from world_list.yaml.
type WorldDef struct {
	ID       int32  `yaml:"id"`
	Name     string `yaml:"name"`
	Autoload bool   `yaml:"autoload"` // register at startup
}

// WorldTable provides lookups of world definitions by id.
type WorldTable struct {
	worlds map[int32]*WorldDef
}

// LoadWorldTable loads world_list.yaml.
func LoadWorldTable(path string) (*WorldTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world list: %w", err)
	}
	return parseWorldTable(raw)
}

func parseWorldTable(raw []byte) (*WorldTable, error) {
	var entries []WorldDef
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse world list: %w", err)
	}
	t := &WorldTable{
		worlds: make(map[int32]*WorldDef, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		// Names end up in logs and hook scripts; keep one canonical form.
		e.Name = norm.NFC.String(strings.TrimSpace(e.Name))
		if e.Name == "" {
			return nil, fmt.Errorf("world list entry %d: empty name", i)
		}
		if prev, ok := t.worlds[e.ID]; ok {
			return nil, fmt.Errorf("world list entry %d: id %d already used by %q", i, e.ID, prev.Name)
		}
		t.worlds[e.ID] = e
	}
	return t, nil
}

// Get returns the definition for id, or nil if none.
func (t *WorldTable) Get(id int32) *WorldDef {
	return t.worlds[id]
}

// All returns every definition ordered by id.
func (t *WorldTable) All() []*WorldDef {
	out := make([]*WorldDef, 0, len(t.worlds))
	for _, d := range t.worlds {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the total number of world definitions loaded.
func (t *WorldTable) Count() int {
	return len(t.worlds)
}
