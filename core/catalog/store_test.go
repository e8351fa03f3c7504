package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/catalog/core"
	"github.com/trezcool/catalog/core/catalog"
	"github.com/trezcool/catalog/core/course"
	"github.com/trezcool/catalog/core/user"
	"github.com/trezcool/catalog/storage/flatfile"
	"github.com/trezcool/catalog/tests"
)

// seed creates teacher 7, students 1 to 5 and course C1 (capacity 2).
func seed(t *testing.T, store *catalog.Store) {
	testutil.CreateUser(t, store, user.RoleTeacher, 7, "Tina", "tina", "pwd")
	for id := 1; id <= 5; id++ {
		testutil.CreateUser(t, store, user.RoleStudent, id, "Student", "student", "pwd")
	}
	testutil.CreateCourse(t, store, "C1", "Intro", 2)
}

// reload opens a second Store over the same files.
func reload(t *testing.T, db *flatfile.DB) *catalog.Store {
	store := testutil.NewStore(db, &testutil.Logger{})
	require.NoError(t, store.LoadAll())
	return store
}

func TestStore_EnrollStudent(t *testing.T) {
	store, _, _ := testutil.PrepareStore(t)
	seed(t, store)

	require.NoError(t, store.EnrollStudent("C1", 1))
	require.NoError(t, store.EnrollStudent("C1", 3))

	err := store.EnrollStudent("C1", 5)
	assert.True(t, core.IsCapacity(err))
	assert.True(t, errors.Is(err, course.ErrCourseFull))

	c, err := store.Course("C1")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, c.StudentIDs())

	tests := []struct {
		name      string
		courseID  string
		studentID int
		is        func(error) bool
		sentinel  error
	}{
		{name: "duplicate", courseID: "C1", studentID: 1, is: core.IsConflict, sentinel: course.ErrAlreadyEnrolled},
		{name: "unknown course", courseID: "C9", studentID: 2, is: core.IsNotFound, sentinel: course.ErrNotFound},
		{name: "unknown student", courseID: "C1", studentID: 99, is: core.IsNotFound, sentinel: user.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.EnrollStudent(tt.courseID, tt.studentID)
			assert.True(t, tt.is(err), "EnrollStudent() error = %v", err)
			assert.True(t, errors.Is(err, tt.sentinel))
		})
	}
	assert.Equal(t, []int{1, 3}, c.StudentIDs())
}

func TestStore_SetGrade_FinalGrade(t *testing.T) {
	store, db, _ := testutil.PrepareStore(t)
	seed(t, store)
	require.NoError(t, store.EnrollStudent("C1", 1))
	require.NoError(t, store.EnrollStudent("C1", 3))

	added, err := store.AddAssignment("C1", catalog.NewAssignment{ID: "A1", Title: "Essay"})
	require.NoError(t, err)
	assert.True(t, added)
	require.NoError(t, store.SetGrade("C1", catalog.NewGrade{AssignmentID: "A1", StudentID: 1, Score: 90}))
	require.NoError(t, store.SetGrade("C1", catalog.NewGrade{AssignmentID: "A1", StudentID: 3, Score: 70}))

	for _, s := range []*catalog.Store{store, reload(t, db)} {
		fg, err := s.FinalGrade("C1", 1)
		require.NoError(t, err)
		assert.Equal(t, 90.0, fg)

		fg, err = s.FinalGrade("C1", 2)
		require.NoError(t, err)
		assert.Equal(t, course.NoGrade, fg)

		score, ok, err := s.Grade("C1", "A1", 3)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 70, score)
	}

	tests := []struct {
		name string
		ng   catalog.NewGrade
		is   func(error) bool
	}{
		{name: "score too high", ng: catalog.NewGrade{AssignmentID: "A1", StudentID: 1, Score: 101}, is: core.IsValidation},
		{name: "negative score", ng: catalog.NewGrade{AssignmentID: "A1", StudentID: 1, Score: -5}, is: core.IsValidation},
		{name: "blank assignment", ng: catalog.NewGrade{AssignmentID: " ", StudentID: 1, Score: 50}, is: core.IsValidation},
		{name: "unknown assignment", ng: catalog.NewGrade{AssignmentID: "A9", StudentID: 1, Score: 50}, is: core.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SetGrade("C1", tt.ng)
			assert.True(t, tt.is(err), "SetGrade() error = %v", err)
		})
	}
	fg, err := store.FinalGrade("C1", 1)
	require.NoError(t, err)
	assert.Equal(t, 90.0, fg)
}

func TestStore_LoadAll_teacherResolution(t *testing.T) {
	store, db, _ := testutil.PrepareStore(t)
	seed(t, store)
	testutil.CreateCourse(t, store, "C2", "Algebra", 10)
	require.NoError(t, store.AssignTeacher("C2", 7))

	loaded := reload(t, db)
	c2, err := loaded.Course("C2")
	require.NoError(t, err)
	require.NotNil(t, c2.Teacher())
	assert.Equal(t, 7, c2.Teacher().ID)
	assert.Equal(t, "Tina", c2.Teacher().Name)
	assert.Len(t, loaded.CoursesForTeacher(7), 1)

	// same course persisted with a teacher id nobody has
	path := filepath.Join(db.Root(), "courses", "C2.csv")
	require.NoError(t, os.WriteFile(path, []byte("C2,Algebra,10,99,\n"), 0o644))

	loaded = reload(t, db)
	c2, err = loaded.Course("C2")
	require.NoError(t, err)
	assert.Nil(t, c2.Teacher())
	_, ok := c2.TeacherID()
	assert.False(t, ok)
}

func TestStore_AssignTeacher_notFound(t *testing.T) {
	store, _, _ := testutil.PrepareStore(t)
	seed(t, store)

	err := store.AssignTeacher("C1", 1) // a student id, not a teacher
	assert.True(t, core.IsNotFound(err))
	assert.True(t, errors.Is(err, user.ErrNotFound))

	err = store.AssignTeacher("nope", 7)
	assert.True(t, errors.Is(err, course.ErrNotFound))
}

func TestStore_CreateCourse(t *testing.T) {
	store, db, _ := testutil.PrepareStore(t)

	_, err := store.CreateCourse(catalog.NewCourse{ID: "C1", Title: "Intro", MaxCapacity: 2})
	require.NoError(t, err)
	_, err = store.CreateCourse(catalog.NewCourse{ID: "C1", Title: "Other", MaxCapacity: 9})
	assert.True(t, core.IsConflict(err))
	assert.True(t, errors.Is(err, course.ErrExists))

	entries, err := os.ReadDir(filepath.Join(db.Root(), "courses"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "C1.csv", entries[0].Name())

	c, err := store.Course("C1")
	require.NoError(t, err)
	assert.Equal(t, "Intro", c.Title())

	for _, nc := range []catalog.NewCourse{
		{ID: "", Title: "x", MaxCapacity: 1},
		{ID: "C2", Title: "  ", MaxCapacity: 1},
		{ID: "C3", Title: "x", MaxCapacity: -1},
	} {
		_, err = store.CreateCourse(nc)
		assert.True(t, core.IsValidation(err), "CreateCourse(%+v) error = %v", nc, err)
	}
	assert.Len(t, store.Courses(), 1)
}

func TestStore_MarkSubmitted(t *testing.T) {
	store, db, _ := testutil.PrepareStore(t)
	seed(t, store)
	_, err := store.AddAssignment("C1", catalog.NewAssignment{ID: "A1"})
	require.NoError(t, err)

	require.NoError(t, store.MarkSubmitted("C1", "A1", 1))
	require.NoError(t, store.MarkSubmitted("C1", "A1", 1))

	ok, err := store.HasSubmitted("C1", "A1", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	content, err := os.ReadFile(filepath.Join(db.Root(), "submissions", "C1.csv"))
	require.NoError(t, err)
	assert.Equal(t, "A1,1\n", string(content))

	c, err := reload(t, db).Course("C1")
	require.NoError(t, err)
	assert.Equal(t, []course.SubmissionEntry{{AssignmentID: "A1", StudentID: 1}}, c.Submissions())

	err = store.MarkSubmitted("C1", "A9", 1)
	assert.True(t, core.IsNotFound(err))
	assert.True(t, errors.Is(err, course.ErrAssignmentNotFound))
}

func TestStore_AddAssignment(t *testing.T) {
	store, db, _ := testutil.PrepareStore(t)
	seed(t, store)

	added, err := store.AddAssignment("C1", catalog.NewAssignment{ID: "A1", Title: "  "})
	require.NoError(t, err)
	assert.True(t, added)
	added, err = store.AddAssignment("C1", catalog.NewAssignment{ID: "A1", Title: "Again"})
	require.NoError(t, err)
	assert.False(t, added)

	c, err := reload(t, db).Course("C1")
	require.NoError(t, err)
	assert.Equal(t, []course.Assignment{{ID: "A1", Title: course.DefaultAssignmentTitle}}, c.Assignments())

	_, err = store.AddAssignment("C1", catalog.NewAssignment{ID: ""})
	assert.True(t, core.IsValidation(err))
	_, err = store.AddAssignment("C9", catalog.NewAssignment{ID: "A1"})
	assert.True(t, core.IsNotFound(err))
}

func TestStore_roundTrip(t *testing.T) {
	store, db, _ := testutil.PrepareStore(t)
	seed(t, store)
	title := `Intro, "the real one"`
	testutil.CreateCourse(t, store, "CS 101", title, 4)
	require.NoError(t, store.AssignTeacher("CS 101", 7))
	for _, sid := range []int{4, 2, 5} {
		require.NoError(t, store.EnrollStudent("CS 101", sid))
	}
	require.NoError(t, store.SaveAll())

	loaded := reload(t, db)
	c, err := loaded.Course("CS 101")
	require.NoError(t, err)
	assert.Equal(t, "CS 101", c.ID())
	assert.Equal(t, title, c.Title())
	assert.Equal(t, 4, c.MaxCapacity())
	tid, ok := c.TeacherID()
	assert.True(t, ok)
	assert.Equal(t, 7, tid)
	assert.Equal(t, []int{4, 2, 5}, c.StudentIDs())

	var ids []string
	for _, c := range loaded.Courses() {
		ids = append(ids, c.ID())
	}
	assert.Equal(t, []string{"C1", "CS 101"}, ids)
	assert.Len(t, loaded.CoursesForStudent(2), 1)
	assert.Empty(t, loaded.CoursesForStudent(1))
	assert.Len(t, loaded.Users(user.RoleStudent), 5)
}

func TestStore_LoadAll_corruptFile(t *testing.T) {
	store, db, _ := testutil.PrepareStore(t)
	seed(t, store)
	testutil.CreateCourse(t, store, "C2", "Other", 1)

	dir := filepath.Join(db.Root(), "courses")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.csv"), []byte("bad,Title,not-a-number\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(db.Root(), "students", "bad.csv"), []byte("x,Nope,nope,pwd\n"), 0o644))

	logger := &testutil.Logger{}
	loaded := testutil.NewStore(db, logger)
	require.NoError(t, loaded.LoadAll())
	assert.Len(t, loaded.Courses(), 2)
	assert.Len(t, loaded.Users(user.RoleStudent), 5)
	assert.Len(t, logger.Entries("warn"), 2)
}

func TestStore_DeleteUser_keepsReferences(t *testing.T) {
	store, db, _ := testutil.PrepareStore(t)
	seed(t, store)
	require.NoError(t, store.EnrollStudent("C1", 1))
	_, err := store.AddAssignment("C1", catalog.NewAssignment{ID: "A1"})
	require.NoError(t, err)
	require.NoError(t, store.SetGrade("C1", catalog.NewGrade{AssignmentID: "A1", StudentID: 1, Score: 80}))

	require.NoError(t, store.DeleteUser(user.RoleStudent, 1))
	_, err = os.Stat(filepath.Join(db.Root(), "students", "1.csv"))
	assert.True(t, os.IsNotExist(err))

	c, err := reload(t, db).Course("C1")
	require.NoError(t, err)
	assert.Empty(t, c.StudentIDs())
	fg := c.FinalGrade(1)
	assert.Equal(t, 80.0, fg)
}

func TestStore_ResetAllData(t *testing.T) {
	store, db, _ := testutil.PrepareStore(t)
	seed(t, store)

	require.NoError(t, store.ResetAllData())
	assert.Empty(t, store.Courses())
	assert.Empty(t, store.Users(user.RoleStudent))
	_, err := os.Stat(db.Root())
	assert.True(t, os.IsNotExist(err))

	// the store is usable again
	testutil.CreateCourse(t, store, "C1", "Intro", 2)
	loaded := reload(t, db)
	assert.Len(t, loaded.Courses(), 1)
}

func TestStore_Authenticate(t *testing.T) {
	store, _, _ := testutil.PrepareStore(t)
	_, err := store.CreateAdmin(1, "Root", "root", "toor")
	require.NoError(t, err)
	_, err = store.CreateStudent(1, "Sam", "sam", "pwd")
	require.NoError(t, err)

	usr, err := store.Authenticate("sam", "pwd")
	require.NoError(t, err)
	assert.True(t, usr.IsStudent())

	_, err = store.Authenticate("root", "nope")
	assert.True(t, errors.Is(err, user.ErrInvalidCredentials))
}

func TestStore_UpdateUser(t *testing.T) {
	store, db, _ := testutil.PrepareStore(t)
	_, err := store.CreateTeacher(7, "Tina", "tina", "pwd")
	require.NoError(t, err)

	_, err = store.UpdateUser(user.RoleTeacher, 7, user.UpdateUser{Name: "Tina T"})
	require.NoError(t, err)

	usr, err := reload(t, db).User(user.RoleTeacher, 7)
	require.NoError(t, err)
	assert.Equal(t, "Tina T", usr.Name)
	assert.Equal(t, "tina", usr.Username)
}

func TestStore_SaveAll_storageError(t *testing.T) {
	store, db, logger := testutil.PrepareStore(t)
	seed(t, store)

	// replace the grades directory with a file so that writes below it fail
	require.NoError(t, os.WriteFile(filepath.Join(db.Root(), "grades"), nil, 0o644))

	err := store.SaveAll()
	require.Error(t, err)
	assert.Len(t, logger.Entries("error"), 1)

	// the other files of the course were still written
	_, err = os.Stat(filepath.Join(db.Root(), "submissions", "C1.csv"))
	assert.NoError(t, err)

	err = store.SetGrade("C1", catalog.NewGrade{AssignmentID: "A1", StudentID: 1, Score: 1})
	assert.True(t, core.IsNotFound(err))
	_, err = store.AddAssignment("C1", catalog.NewAssignment{ID: "A1"})
	require.NoError(t, err)
	err = store.SetGrade("C1", catalog.NewGrade{AssignmentID: "A1", StudentID: 1, Score: 1})
	assert.True(t, core.IsStorage(err))
	score, ok, _ := store.Grade("C1", "A1", 1)
	assert.True(t, ok)
	assert.Equal(t, 1, score)
}
