package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/medrex/onco-portal/pkg/calendar"
	"github.com/medrex/onco-portal/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
patients:
  - id: p-1
    first_name: Ana
    last_name: Ruiz
    care_team:
      - name: Dr. Lee
        role: oncologist
  - id: p-2
    first_name: Ben
    last_name: Cole
events:
  - id: e-1
    patient_id: p-1
    title: Infusion
    date: "2024-11-15"
    type: treatment
    status: scheduled
  - id: e-2
    patient_id: p-2
    title: CT scan
    date: "2024-11-20"
    type: test
    status: pending
  - id: e-3
    patient_id: p-1
    title: Broken
    date: "someday"
    type: appointment
    status: confirmed
timeline:
  - patient_id: p-1
    date: "2024-10-01"
    kind: treatment
    title: Cycle 2
  - patient_id: p-1
    date: "2024-09-01"
    kind: diagnosis
    title: Diagnosis
`

func TestLoad_Embedded(t *testing.T) {
	store, err := Load("")
	require.NoError(t, err)

	counts := store.Counts()
	assert.Equal(t, 3, counts["patients"])
	assert.Equal(t, 14, counts["events"])
	assert.Equal(t, 6, counts["biomarkers"])
	assert.Equal(t, 8, counts["timeline"])
	assert.NotEmpty(t, store.Version())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o600))

	store, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Counts()["patients"])

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, types.ErrorTypeInternal, types.ErrorTypeOf(err))
}

func TestParse_VersionTracksContent(t *testing.T) {
	a, err := Parse([]byte(minimal))
	require.NoError(t, err)
	b, err := Parse([]byte(minimal))
	require.NoError(t, err)
	c, err := Parse([]byte(minimal + "\n# edited\n"))
	require.NoError(t, err)

	assert.Equal(t, a.Version(), b.Version())
	assert.NotEqual(t, a.Version(), c.Version())
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed yaml", body: "patients: [\n"},
		{name: "duplicate patient", body: "patients:\n  - id: p-1\n  - id: p-1\n"},
		{name: "missing patient id", body: "patients:\n  - first_name: Ana\n"},
		{name: "unknown patient", body: "events:\n  - id: e-1\n    patient_id: p-9\n    type: test\n    status: pending\n"},
		{name: "bad type", body: "patients:\n  - id: p-1\nevents:\n  - id: e-1\n    patient_id: p-1\n    type: surgery\n    status: pending\n"},
		{name: "bad status", body: "patients:\n  - id: p-1\nevents:\n  - id: e-1\n    patient_id: p-1\n    type: test\n    status: lost\n"},
		{name: "duplicate event", body: "patients:\n  - id: p-1\nevents:\n  - id: e-1\n    patient_id: p-1\n    type: test\n    status: pending\n  - id: e-1\n    patient_id: p-1\n    type: test\n    status: pending\n"},
		{name: "orphan biomarker", body: "biomarkers:\n  - patient_id: p-9\n    name: CEA\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			require.Error(t, err)
		})
	}
}

func TestPatientRepo(t *testing.T) {
	store, err := Parse([]byte(minimal))
	require.NoError(t, err)
	repo := store.Patients()
	ctx := context.Background()

	p, err := repo.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Ruiz", p.FullName())

	// mutations of the returned copy never reach the store
	p.FirstName = "Changed"
	p.CareTeam[0].Name = "Changed"
	again, err := repo.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", again.FirstName)
	assert.Equal(t, "Dr. Lee", again.CareTeam[0].Name)

	_, err = repo.Get(ctx, "p-404")
	require.Error(t, err)
	assert.True(t, types.IsNotFound(err))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "p-1", all[0].ID)
	assert.Equal(t, "p-2", all[1].ID)
}

func TestEventRepo(t *testing.T) {
	store, err := Parse([]byte(minimal))
	require.NoError(t, err)
	repo := store.Events()
	ctx := context.Background()

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := repo.ListByPatient(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "e-1", mine[0].ID)
	assert.Equal(t, "e-3", mine[1].ID)

	_, err = repo.ListByPatient(ctx, "p-404")
	assert.True(t, types.IsNotFound(err))

	from := calendar.MustParseDate("2024-11-01")
	to := calendar.MustParseDate("2024-11-16")
	between, err := repo.ListBetween(ctx, "", from, to)
	require.NoError(t, err)
	require.Len(t, between, 1)
	assert.Equal(t, "e-1", between[0].ID)

	between, err = repo.ListBetween(ctx, "p-2", from, calendar.MustParseDate("2024-11-30"))
	require.NoError(t, err)
	require.Len(t, between, 1)
	assert.Equal(t, "e-2", between[0].ID)
}

func TestTimelineRepo_SortedOldestFirst(t *testing.T) {
	store, err := Parse([]byte(minimal))
	require.NoError(t, err)

	entries, err := store.Timeline().ListByPatient(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Diagnosis", entries[0].Title)
	assert.Equal(t, "Cycle 2", entries[1].Title)

	empty, err := store.Timeline().ListByPatient(context.Background(), "p-2")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestBiomarkerRepo(t *testing.T) {
	store, err := Load("")
	require.NoError(t, err)

	markers, err := store.Biomarkers().ListByPatient(context.Background(), "p-1001")
	require.NoError(t, err)
	assert.Len(t, markers, 3)

	_, err = store.Biomarkers().ListByPatient(context.Background(), "p-404")
	assert.True(t, types.IsNotFound(err))
}

func TestRepos_CancelledContext(t *testing.T) {
	store, err := Parse([]byte(minimal))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Patients().Get(ctx, "p-1")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Events().ListAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Events().ListBetween(ctx, "p-1", calendar.MustParseDate("2024-01-01"), calendar.MustParseDate("2024-12-31"))
	assert.ErrorIs(t, err, context.Canceled)
}
