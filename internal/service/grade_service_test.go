package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/pkg/jobs"
)

type fakeGradeStore struct {
	grades  map[string]*models.Grade
	created *models.Grade
	updated *models.Grade
	deleted string
}

func (f *fakeGradeStore) List(_ context.Context, _ models.GradeFilter) ([]models.GradeDetail, int, error) {
	return nil, 0, nil
}

func (f *fakeGradeStore) FindByID(_ context.Context, id string) (*models.Grade, error) {
	if g, ok := f.grades[id]; ok {
		return g, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeGradeStore) Create(_ context.Context, grade *models.Grade) error {
	grade.ID = "g-new"
	f.created = grade
	return nil
}

func (f *fakeGradeStore) Update(_ context.Context, grade *models.Grade) error {
	f.updated = grade
	return nil
}

func (f *fakeGradeStore) Delete(_ context.Context, id string) error {
	f.deleted = id
	return nil
}

type fakeQueue struct {
	jobs []jobs.Job
}

func (f *fakeQueue) Enqueue(job jobs.Job) error {
	f.jobs = append(f.jobs, job)
	return nil
}

type recordingObserver struct {
	events []EntityEvent
}

func (r *recordingObserver) Notify(_ context.Context, event EntityEvent) {
	r.events = append(r.events, event)
}

func newGradeService(store *fakeGradeStore, queue *fakeQueue, observer *recordingObserver) *GradeService {
	students := &fakeStudentIdentity{byID: map[string]*models.Student{
		"stu-1": {ID: "stu-1"},
	}}
	return NewGradeService(store, students, queue, observer, zap.NewNop())
}

func TestGradeCreateDerivesLetter(t *testing.T) {
	store := &fakeGradeStore{grades: map[string]*models.Grade{}}
	queue := &fakeQueue{}
	svc := newGradeService(store, queue, &recordingObserver{})

	created, err := svc.Create(context.Background(), &models.Grade{
		StudentID:  "stu-1",
		SubjectID:  "sub-1",
		GradeValue: 83,
		GradeType:  models.GradeTypeExam,
	})
	require.NoError(t, err)
	assert.Equal(t, "B", created.LetterGrade)
}

func TestGradeCreateKeepsFineLetter(t *testing.T) {
	store := &fakeGradeStore{grades: map[string]*models.Grade{}}
	svc := newGradeService(store, &fakeQueue{}, &recordingObserver{})

	created, err := svc.Create(context.Background(), &models.Grade{
		StudentID:   "stu-1",
		SubjectID:   "sub-1",
		GradeValue:  83,
		LetterGrade: "B+",
		GradeType:   models.GradeTypeQuiz,
	})
	require.NoError(t, err)
	assert.Equal(t, "B+", created.LetterGrade)
}

func TestGradeCreateRejectsOutOfRange(t *testing.T) {
	svc := newGradeService(&fakeGradeStore{grades: map[string]*models.Grade{}}, &fakeQueue{}, &recordingObserver{})

	_, err := svc.Create(context.Background(), &models.Grade{
		StudentID:  "stu-1",
		GradeValue: 101,
		GradeType:  models.GradeTypeExam,
	})
	assert.Error(t, err)
}

func TestGradeWriteEnqueuesRecompute(t *testing.T) {
	store := &fakeGradeStore{grades: map[string]*models.Grade{}}
	queue := &fakeQueue{}
	observer := &recordingObserver{}
	svc := newGradeService(store, queue, observer)

	_, err := svc.Create(context.Background(), &models.Grade{
		StudentID:  "stu-1",
		SubjectID:  "sub-1",
		GradeValue: 90,
		GradeType:  models.GradeTypeFinal,
	})
	require.NoError(t, err)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobTypeRecomputeGPA, queue.jobs[0].Type)
	assert.Equal(t, "stu-1", queue.jobs[0].Payload)

	require.Len(t, observer.events, 1)
	assert.Equal(t, "grade", observer.events[0].Entity)
	assert.Equal(t, "created", observer.events[0].Action)
}

func TestGradeUpdateRefreshesLetterAndEnqueues(t *testing.T) {
	store := &fakeGradeStore{grades: map[string]*models.Grade{
		"g1": {ID: "g1", StudentID: "stu-1", SubjectID: "sub-1", GradeValue: 60, LetterGrade: "D", GradeType: models.GradeTypeExam},
	}}
	queue := &fakeQueue{}
	svc := newGradeService(store, queue, &recordingObserver{})

	updated, err := svc.Update(context.Background(), "g1", &models.Grade{
		GradeValue: 92,
		GradeType:  models.GradeTypeExam,
	})
	require.NoError(t, err)
	assert.Equal(t, "A", updated.LetterGrade)
	assert.Equal(t, "stu-1", updated.StudentID)
	require.Len(t, queue.jobs, 1)
}

func TestGradeDeleteEnqueuesRecomputeForOwner(t *testing.T) {
	store := &fakeGradeStore{grades: map[string]*models.Grade{
		"g1": {ID: "g1", StudentID: "stu-1", GradeValue: 75, GradeType: models.GradeTypeQuiz},
	}}
	queue := &fakeQueue{}
	svc := newGradeService(store, queue, &recordingObserver{})

	require.NoError(t, svc.Delete(context.Background(), "g1"))
	assert.Equal(t, "g1", store.deleted)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "stu-1", queue.jobs[0].Payload)
}
