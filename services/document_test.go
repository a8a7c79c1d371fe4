package services

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fyp-management-api/models"
)

func TestDocumentVersionsAssignedSequentially(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedUser(t, models.RoleStudent)
	project := env.seedProject(t, nil, member)

	first, err := env.documents.Create(member, DocumentInput{
		ProjectID: project.ProjectID,
		Name:      "final-report",
		Type:      models.DocumentTypeReport,
		FilePath:  "documents/a.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)

	second, err := env.documents.Create(member, DocumentInput{
		ProjectID: project.ProjectID,
		Name:      "final-report",
		Type:      models.DocumentTypeReport,
		FilePath:  "documents/b.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)

	// Another name starts its own version sequence.
	other, err := env.documents.Create(member, DocumentInput{
		ProjectID: project.ProjectID,
		Name:      "slides",
		Type:      models.DocumentTypePresentation,
		FilePath:  "documents/c.pptx",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, other.Version)

	// Earlier versions stay readable.
	kept, err := env.documents.Get(member, first.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "documents/a.pdf", kept.FilePath)
}

func TestConcurrentUploadsGetDistinctVersions(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedUser(t, models.RoleStudent)
	project := env.seedProject(t, nil, member)

	const uploads = 6
	versions := make([]int, uploads)
	errs := make([]error, uploads)

	var wg sync.WaitGroup
	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := env.documents.Create(member, DocumentInput{
				ProjectID: project.ProjectID,
				Name:      "final-report",
				Type:      models.DocumentTypeReport,
				FilePath:  "documents/x.pdf",
			})
			errs[i] = err
			if err == nil {
				versions[i] = d.Version
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	sort.Ints(versions)
	for i, v := range versions {
		assert.Equal(t, i+1, v)
	}
}

func TestDocumentTypeDefaultsToOther(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedUser(t, models.RoleStudent)
	project := env.seedProject(t, nil, member)

	d, err := env.documents.Create(member, DocumentInput{
		ProjectID: project.ProjectID,
		Name:      "notes",
		FilePath:  "documents/notes.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentTypeOther, d.Type)

	_, err = env.documents.Create(member, DocumentInput{
		ProjectID: project.ProjectID,
		Name:      "notes",
		Type:      "spreadsheet",
		FilePath:  "documents/notes.xlsx",
	})
	assert.True(t, IsValidation(err))
}

func TestDocumentUploadNeedsVisibleProject(t *testing.T) {
	env := newTestEnv(t)
	outsider := env.seedUser(t, models.RoleStudent)
	project := env.seedProject(t, nil)

	_, err := env.documents.Create(outsider, DocumentInput{
		ProjectID: project.ProjectID,
		Name:      "sneaky",
		FilePath:  "documents/sneaky.pdf",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentListFilters(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, models.RoleAdmin)
	member := env.seedUser(t, models.RoleStudent)
	projectA := env.seedProject(t, nil, member)
	projectB := env.seedProject(t, nil)

	_, err := env.documents.Create(admin, DocumentInput{
		ProjectID: projectA.ProjectID, Name: "report", Type: models.DocumentTypeReport, FilePath: "documents/r.pdf",
	})
	require.NoError(t, err)
	_, err = env.documents.Create(admin, DocumentInput{
		ProjectID: projectB.ProjectID, Name: "code", Type: models.DocumentTypeCode, FilePath: "documents/c.zip",
	})
	require.NoError(t, err)

	all, err := env.documents.List(admin, nil, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	reports, err := env.documents.List(admin, nil, models.DocumentTypeReport)
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	onlyA, err := env.documents.List(admin, &projectA.ProjectID, "")
	require.NoError(t, err)
	assert.Len(t, onlyA, 1)

	// A member only reaches their own project's documents.
	scoped, err := env.documents.List(member, nil, "")
	require.NoError(t, err)
	assert.Len(t, scoped, 1)
}
