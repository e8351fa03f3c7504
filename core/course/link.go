package course

import (
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/catalog/core/user"
)

type (
	// Record is a course as parsed from storage: references are raw ids, nothing is linked yet.
	Record struct {
		ID          string
		Title       string
		MaxCapacity int
		TeacherID   null.Int
		StudentIDs  []int

		Assignments []Assignment
		Grades      []GradeEntry
		Submissions []SubmissionEntry
	}

	// Repository persists a Course across four independently written files.
	// There is no commit spanning them.
	Repository interface {
		LoadCourses() ([]Record, error)
		SaveCourse(c *Course) error
		SaveAssignments(c *Course) error
		SaveGrades(c *Course) error
		SaveSubmissions(c *Course) error
		DeleteCourse(id string) error
	}
)

// RecordOf flattens a Course back into its raw form.
func RecordOf(c *Course) Record {
	rec := Record{
		ID:          c.id,
		Title:       c.title,
		MaxCapacity: c.maxCapacity,
		StudentIDs:  c.StudentIDs(),
		Assignments: c.Assignments(),
		Grades:      c.Grades(),
		Submissions: c.Submissions(),
	}
	if tid, ok := c.TeacherID(); ok {
		rec.TeacherID = null.IntFrom(tid)
	}
	return rec
}

// Link resolves raw records against the loaded teachers and students.
// An unknown teacher id leaves the course without teacher; unknown student ids are dropped,
// known ones go through Enroll so capacity and duplicate rules still apply.
// Grades and submissions are restored as stored, even when they reference deleted ids.
func Link(records []Record, teachers, students map[int]*user.User) []*Course {
	courses := make([]*Course, 0, len(records))
	for _, rec := range records {
		c := New(rec.ID, rec.Title, rec.MaxCapacity)

		if rec.TeacherID.Valid {
			if t, ok := teachers[rec.TeacherID.Int]; ok {
				c.SetTeacher(t)
			}
		}
		for _, sid := range rec.StudentIDs {
			if _, ok := students[sid]; ok {
				_ = c.Enroll(sid)
			}
		}
		for _, a := range rec.Assignments {
			c.AddAssignment(a)
		}
		for _, g := range rec.Grades {
			if checkScore(g.Score) == nil {
				c.setGrade(g.AssignmentID, g.StudentID, g.Score)
			}
		}
		for _, s := range rec.Submissions {
			c.MarkSubmitted(s.AssignmentID, s.StudentID)
		}
		courses = append(courses, c)
	}
	return courses
}
