package flatfile

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/catalog/core/course"
)

// row: id,title,maxCapacity,teacherId,studentId1;studentId2;...
var courseCodec = rowCodec[course.Record]{
	columns: 5,
	encode: func(rec course.Record) []string {
		teacherID := ""
		if rec.TeacherID.Valid {
			teacherID = strconv.Itoa(rec.TeacherID.Int)
		}
		students := make([]string, len(rec.StudentIDs))
		for i, id := range rec.StudentIDs {
			students[i] = strconv.Itoa(id)
		}
		return []string{rec.ID, rec.Title, strconv.Itoa(rec.MaxCapacity), teacherID, joinList(students)}
	},
	decode: func(f []string) (course.Record, error) {
		rec := course.Record{ID: f[0], Title: f[1]}
		if rec.ID == "" {
			return rec, errors.New("course id is empty")
		}

		var err error
		if rec.MaxCapacity, err = strconv.Atoi(f[2]); err != nil {
			return rec, errors.Wrap(err, "max capacity")
		}
		if f[3] != "" {
			tid, err := parseID(f[3])
			if err != nil {
				return rec, errors.Wrap(err, "teacher id")
			}
			rec.TeacherID = null.IntFrom(tid)
		}
		for _, s := range splitList(f[4]) {
			sid, err := parseID(s)
			if err != nil {
				return rec, errors.Wrap(err, "student id")
			}
			rec.StudentIDs = append(rec.StudentIDs, sid)
		}
		return rec, nil
	},
}

// row: assignmentId,title
var assignmentCodec = rowCodec[course.Assignment]{
	columns: 2,
	encode: func(a course.Assignment) []string {
		return []string{a.ID, a.Title}
	},
	decode: func(f []string) (course.Assignment, error) {
		if f[0] == "" {
			return course.Assignment{}, errors.New("assignment id is empty")
		}
		return course.Assignment{ID: f[0], Title: f[1]}, nil
	},
}

// row: assignmentId,studentId,score
var gradeCodec = rowCodec[course.GradeEntry]{
	columns: 3,
	encode: func(g course.GradeEntry) []string {
		return []string{g.AssignmentID, strconv.Itoa(g.StudentID), strconv.Itoa(g.Score)}
	},
	decode: func(f []string) (course.GradeEntry, error) {
		g := course.GradeEntry{AssignmentID: f[0]}
		if g.AssignmentID == "" {
			return g, errors.New("assignment id is empty")
		}
		var err error
		if g.StudentID, err = parseID(f[1]); err != nil {
			return g, errors.Wrap(err, "student id")
		}
		if g.Score, err = strconv.Atoi(f[2]); err != nil {
			return g, errors.Wrap(err, "score")
		}
		return g, nil
	},
}

// row: assignmentId,studentId
var submissionCodec = rowCodec[course.SubmissionEntry]{
	columns: 2,
	encode: func(s course.SubmissionEntry) []string {
		return []string{s.AssignmentID, strconv.Itoa(s.StudentID)}
	},
	decode: func(f []string) (course.SubmissionEntry, error) {
		s := course.SubmissionEntry{AssignmentID: f[0]}
		if s.AssignmentID == "" {
			return s, errors.New("assignment id is empty")
		}
		var err error
		if s.StudentID, err = parseID(f[1]); err != nil {
			return s, errors.Wrap(err, "student id")
		}
		return s, nil
	},
}

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

// LoadCourses parses every course file and joins the per-course assignment, grade and
// submission files through the sanitized course id. Nothing is linked.
func (repo *courseRepository) LoadCourses() ([]course.Record, error) {
	records, err := repo.db.courses.List()
	if err != nil {
		return nil, errors.Wrap(err, "loading courses")
	}
	assignments, err := repo.db.assignments.ListRows()
	if err != nil {
		return nil, errors.Wrap(err, "loading assignments")
	}
	grades, err := repo.db.grades.ListRows()
	if err != nil {
		return nil, errors.Wrap(err, "loading grades")
	}
	submissions, err := repo.db.submissions.ListRows()
	if err != nil {
		return nil, errors.Wrap(err, "loading submissions")
	}

	for i := range records {
		key := SanitizeID(records[i].ID)
		records[i].Assignments = assignments[key]
		records[i].Grades = grades[key]
		records[i].Submissions = submissions[key]
	}
	return records, nil
}

func (repo *courseRepository) SaveCourse(c *course.Course) error {
	return repo.db.courses.Put(c.ID(), course.RecordOf(c))
}

func (repo *courseRepository) SaveAssignments(c *course.Course) error {
	return repo.db.assignments.PutRows(c.ID(), c.Assignments())
}

func (repo *courseRepository) SaveGrades(c *course.Course) error {
	return repo.db.grades.PutRows(c.ID(), c.Grades())
}

func (repo *courseRepository) SaveSubmissions(c *course.Course) error {
	return repo.db.submissions.PutRows(c.ID(), c.Submissions())
}

// DeleteCourse removes the four files of a course. Every file is attempted; the first error is returned.
func (repo *courseRepository) DeleteCourse(id string) error {
	var firstErr error
	for _, del := range []func(string) error{
		repo.db.courses.Delete,
		repo.db.assignments.Delete,
		repo.db.grades.Delete,
		repo.db.submissions.Delete,
	} {
		if err := del(id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
