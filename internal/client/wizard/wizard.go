package wizard

import (
	"errors"
	"fmt"
	"maps"

	"deales/pkg/domain"
)

var (
	// ErrInvalidRole is returned when a wizard is built for an unknown role.
	ErrInvalidRole = errors.New("wizard: invalid role")
	// ErrIncomplete is returned when advancing or submitting with required
	// fields still empty.
	ErrIncomplete = errors.New("wizard: required fields missing")
	// ErrNotFinalStep is returned by Submit before the last step.
	ErrNotFinalStep = errors.New("wizard: submit is only allowed from the final step")
)

// Wizard holds the in-progress signup for one role. It is not safe for
// concurrent use; a single caller drives it.
type Wizard struct {
	role   domain.Role
	flow   flow
	step   int
	fields map[Field]string
}

// Submission is the validated field set handed to the orchestrator.
type Submission struct {
	Role   domain.Role
	Fields map[Field]string
}

// Get returns a submitted field value, "" if unset.
func (s Submission) Get(name Field) string {
	return s.Fields[name]
}

// New starts a wizard at step 1 with the role's default fields.
func New(role domain.Role) (*Wizard, error) {
	f, ok := flows[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	w := &Wizard{
		role:   role,
		flow:   f,
		step:   1,
		fields: make(map[Field]string, len(f.Defaults)),
	}
	maps.Copy(w.fields, f.Defaults)
	return w, nil
}

func (w *Wizard) Role() domain.Role { return w.role }
func (w *Wizard) Step() int         { return w.step }
func (w *Wizard) MaxStep() int      { return len(w.flow.Steps) }
func (w *Wizard) IsLast() bool      { return w.step == len(w.flow.Steps) }

// Title is the heading of the current step.
func (w *Wizard) Title() string {
	return w.flow.Steps[w.step-1].Title
}

// Fields returns the current step's required fields followed by its
// optional ones, in prompt order.
func (w *Wizard) Fields() (required, optional []Field) {
	s := w.flow.Steps[w.step-1]
	return s.Required, s.Optional
}

// Value returns the current value of a field.
func (w *Wizard) Value(name Field) string {
	return w.fields[name]
}

// SetField records a value. Changing the province also refreshes the issuing
// authority; that is the only write the wizard makes on its own.
func (w *Wizard) SetField(name Field, value string) {
	w.fields[name] = value
	if name != FieldProvince {
		return
	}
	ia := IssuingAuthorityFor(value)
	if ia == "" && w.flow.KeepAuthorityOnUnknownProvince {
		return
	}
	w.fields[FieldIssuingAuthority] = ia
}

// CanContinue reports whether the current step's required fields are filled.
func (w *Wizard) CanContinue() bool {
	return CanContinue(w.role, w.step, w.fields)
}

// Missing lists the required fields of the current step that are empty.
func (w *Wizard) Missing() []Field {
	var out []Field
	for _, name := range Required(w.role, w.step) {
		if w.fields[name] == "" {
			out = append(out, name)
		}
	}
	return out
}

// MissingAll lists required fields of every step that are empty. A wizard
// restored from a draft lacks the password even on a later step.
func (w *Wizard) MissingAll() []Field {
	var out []Field
	for i := range w.flow.Steps {
		for _, name := range Required(w.role, i+1) {
			if w.fields[name] == "" {
				out = append(out, name)
			}
		}
	}
	return out
}

// GoNext advances one step. It is a no-op on the last step.
func (w *Wizard) GoNext() error {
	if !w.CanContinue() {
		return ErrIncomplete
	}
	if w.step < len(w.flow.Steps) {
		w.step++
	}
	return nil
}

// GoBack steps back. At step 1 it reports exit=true and leaves the state
// untouched; the caller leaves the wizard.
func (w *Wizard) GoBack() (exit bool) {
	if w.step == 1 {
		return true
	}
	w.step--
	return false
}

// Submit returns the collected fields once the final step is reached and
// every step's required fields are filled. A wizard restored from a draft
// reaches the last step without the password, so earlier steps are checked
// too. The wizard keeps its state so a failed submission can be retried.
func (w *Wizard) Submit() (Submission, error) {
	if !w.IsLast() {
		return Submission{}, ErrNotFinalStep
	}
	if missing := w.MissingAll(); len(missing) > 0 {
		return Submission{}, fmt.Errorf("%w: %v", ErrIncomplete, missing)
	}
	return Submission{Role: w.role, Fields: maps.Clone(w.fields)}, nil
}
