package wizard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deales/pkg/domain"
)

func TestSnapshotRestore(t *testing.T) {
	w, err := New(domain.RoleSalesperson)
	require.NoError(t, err)
	fillStep(w, map[Field]string{
		FieldFullName: "Sam", FieldProvince: "Ontario", FieldEmail: "s@example.com", FieldPassword: "pw",
	})
	require.NoError(t, w.GoNext())

	d := w.Snapshot()
	assert.Equal(t, "salesperson", d.Role)
	assert.Equal(t, 2, d.Step)
	assert.NotContains(t, d.Fields, string(FieldPassword))

	restored, err := Restore(d)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Step())
	assert.Equal(t, "OMVIC", restored.Value(FieldIssuingAuthority))
	assert.Empty(t, restored.Value(FieldPassword))
	assert.Equal(t, []Field{FieldPassword}, restored.MissingAll())

	t.Run("step is clamped", func(t *testing.T) {
		r, err := Restore(Draft{Role: "dealership", Step: 9})
		require.NoError(t, err)
		assert.Equal(t, 4, r.Step())

		r, err = Restore(Draft{Role: "dealership", Step: -3})
		require.NoError(t, err)
		assert.Equal(t, 1, r.Step())
		assert.Equal(t, DefaultTimezone, r.Value(FieldTimezone))
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := Restore(Draft{Role: "manager", Step: 1})
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestSubmitAfterRestoreChecksEveryStep(t *testing.T) {
	t.Run("empty draft on the last step", func(t *testing.T) {
		w, err := Restore(Draft{Role: "dealership", Step: 4, Fields: map[string]string{}})
		require.NoError(t, err)
		require.True(t, w.IsLast())

		_, err = w.Submit()
		assert.ErrorIs(t, err, ErrIncomplete)
	})

	t.Run("password dropped from the snapshot", func(t *testing.T) {
		w, err := New(domain.RoleSalesperson)
		require.NoError(t, err)
		fillStep(w, map[Field]string{
			FieldFullName: "Sam", FieldProvince: "Alberta", FieldEmail: "s@example.com", FieldPassword: "pw",
		})
		require.NoError(t, w.GoNext())

		restored, err := Restore(w.Snapshot())
		require.NoError(t, err)
		_, err = restored.Submit()
		assert.ErrorIs(t, err, ErrIncomplete)

		restored.SetField(FieldPassword, "pw")
		sub, err := restored.Submit()
		require.NoError(t, err)
		assert.Equal(t, "s@example.com", sub.Get(FieldEmail))
		assert.Equal(t, "AMVIC", sub.Get(FieldIssuingAuthority))
	})
}

func TestDraftStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "drafts")
	store := NewDraftStore(dir)

	_, ok, err := store.Load(domain.RoleDealership)
	require.NoError(t, err)
	assert.False(t, ok)

	w, err := New(domain.RoleDealership)
	require.NoError(t, err)
	w.SetField(FieldLegalName, "Acme Motors")
	w.SetField(FieldPassword, "secret")
	require.NoError(t, store.Save(w))

	raw, err := os.ReadFile(filepath.Join(dir, "signup-dealership.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Acme Motors")
	assert.NotContains(t, string(raw), "secret")

	loaded, ok, err := store.Load(domain.RoleDealership)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Acme Motors", loaded.Value(FieldLegalName))

	require.NoError(t, store.Discard(domain.RoleDealership))
	require.NoError(t, store.Discard(domain.RoleDealership))
	_, ok, err = store.Load(domain.RoleDealership)
	require.NoError(t, err)
	assert.False(t, ok)
}
