package wizard

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"deales/pkg/domain"
)

// Draft is the persisted form of an in-progress wizard.
type Draft struct {
	Role   string            `yaml:"role"`
	Step   int               `yaml:"step"`
	Fields map[string]string `yaml:"fields"`
}

// Snapshot captures the wizard state. The password is never included.
func (w *Wizard) Snapshot() Draft {
	d := Draft{
		Role:   w.role.String(),
		Step:   w.step,
		Fields: make(map[string]string, len(w.fields)),
	}
	for k, v := range w.fields {
		if k == FieldPassword {
			continue
		}
		d.Fields[string(k)] = v
	}
	return d
}

// Restore rebuilds a wizard from a draft. The step is clamped into range;
// defaults are applied first so drafts written by older versions still get
// them.
func Restore(d Draft) (*Wizard, error) {
	w, err := New(domain.ResolveRole(d.Role))
	if err != nil {
		return nil, err
	}
	for k, v := range d.Fields {
		w.fields[Field(k)] = v
	}
	w.step = min(max(d.Step, 1), len(w.flow.Steps))
	return w, nil
}

// DraftStore keeps one draft per role as YAML files in a directory.
type DraftStore struct {
	dir string
}

func NewDraftStore(dir string) *DraftStore {
	return &DraftStore{dir: dir}
}

func (s *DraftStore) path(role domain.Role) string {
	return filepath.Join(s.dir, "signup-"+role.String()+".yaml")
}

// Save writes the wizard snapshot for its role.
func (s *DraftStore) Save(w *Wizard) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create draft dir: %w", err)
	}
	raw, err := yaml.Marshal(w.Snapshot())
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := os.WriteFile(s.path(w.role), raw, 0o600); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}

// Load returns the saved wizard for role, or ok=false when none exists.
func (s *DraftStore) Load(role domain.Role) (*Wizard, bool, error) {
	raw, err := os.ReadFile(s.path(role))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read draft: %w", err)
	}
	var d Draft
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, false, fmt.Errorf("decode draft: %w", err)
	}
	if d.Fields == nil {
		d.Fields = map[string]string{}
	}
	d.Role = role.String()
	w, err := Restore(d)
	if err != nil {
		return nil, false, err
	}
	return w, true, nil
}

// Discard removes the draft for role. Missing drafts are not an error.
func (s *DraftStore) Discard(role domain.Role) error {
	err := os.Remove(s.path(role))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove draft: %w", err)
	}
	return nil
}
