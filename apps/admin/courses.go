package main

import (
	"fmt"
	"strings"

	"github.com/trezcool/catalog/core/catalog"
	"github.com/trezcool/catalog/core/course"
)

func (cli *commandLine) addCourseCmd(args []string) error {
	fs := cli.newFlagSet("addcourse")
	id := fs.String("id", "", "The course id.")
	title := fs.String("title", "", "The course title.")
	capacity := fs.Int("capacity", 0, "Maximum number of enrolled students.")
	if err := cli.parse(fs, args, "id", "title", "capacity"); err != nil {
		return err
	}

	c, err := cli.store.CreateCourse(catalog.NewCourse{ID: *id, Title: *title, MaxCapacity: *capacity})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created course %s\n", c.ID())
	return nil
}

func (cli *commandLine) assignCmd(args []string) error {
	fs := cli.newFlagSet("assign")
	courseID := fs.String("course", "", "The course id.")
	teacherID := fs.Int("teacher", -1, "The teacher id.")
	if err := cli.parse(fs, args, "course", "teacher"); err != nil {
		return err
	}
	return cli.store.AssignTeacher(*courseID, *teacherID)
}

func (cli *commandLine) enrollCmd(args []string) error {
	fs := cli.newFlagSet("enroll")
	courseID := fs.String("course", "", "The course id.")
	studentID := fs.Int("student", -1, "The student id.")
	if err := cli.parse(fs, args, "course", "student"); err != nil {
		return err
	}
	return cli.store.EnrollStudent(*courseID, *studentID)
}

func (cli *commandLine) addAssignmentCmd(args []string) error {
	fs := cli.newFlagSet("addassignment")
	courseID := fs.String("course", "", "The course id.")
	id := fs.String("id", "", "The assignment id.")
	title := fs.String("title", "", "The assignment title (default "+course.DefaultAssignmentTitle+").")
	if err := cli.parse(fs, args, "course", "id"); err != nil {
		return err
	}

	added, err := cli.store.AddAssignment(*courseID, catalog.NewAssignment{ID: *id, Title: *title})
	if err != nil {
		return err
	}
	if !added {
		fmt.Fprintf(cli.out, "assignment %s already exists in %s\n", *id, *courseID)
	}
	return nil
}

func (cli *commandLine) gradeCmd(args []string) error {
	fs := cli.newFlagSet("grade")
	courseID := fs.String("course", "", "The course id.")
	assignmentID := fs.String("assignment", "", "The assignment id.")
	studentID := fs.Int("student", -1, "The student id.")
	score := fs.Int("score", -1, "The score, from 0 to 100.")
	if err := cli.parse(fs, args, "course", "assignment", "student", "score"); err != nil {
		return err
	}
	return cli.store.SetGrade(*courseID, catalog.NewGrade{AssignmentID: *assignmentID, StudentID: *studentID, Score: *score})
}

func (cli *commandLine) submitCmd(args []string) error {
	fs := cli.newFlagSet("submit")
	courseID := fs.String("course", "", "The course id.")
	assignmentID := fs.String("assignment", "", "The assignment id.")
	studentID := fs.Int("student", -1, "The student id.")
	if err := cli.parse(fs, args, "course", "assignment", "student"); err != nil {
		return err
	}
	return cli.store.MarkSubmitted(*courseID, *assignmentID, *studentID)
}

func (cli *commandLine) finalGradeCmd(args []string) error {
	fs := cli.newFlagSet("finalgrade")
	courseID := fs.String("course", "", "The course id.")
	studentID := fs.Int("student", -1, "The student id.")
	if err := cli.parse(fs, args, "course", "student"); err != nil {
		return err
	}

	fg, err := cli.store.FinalGrade(*courseID, *studentID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, formatGrade(fg))
	return nil
}

func formatGrade(fg float64) string {
	if fg == course.NoGrade {
		return "no grade"
	}
	return fmt.Sprintf("%.2f", fg)
}

func (cli *commandLine) listCoursesCmd(args []string) error {
	fs := cli.newFlagSet("listcourses")
	teacherID := fs.Int("teacher", -1, "Only the courses of this teacher.")
	studentID := fs.Int("student", -1, "Only the courses this student is enrolled in.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}

	var courses []*course.Course
	switch {
	case *teacherID >= 0 && *studentID >= 0:
		fs.Usage()
		return errHelp
	case *teacherID >= 0:
		courses = cli.store.CoursesForTeacher(*teacherID)
	case *studentID >= 0:
		courses = cli.store.CoursesForStudent(*studentID)
	default:
		courses = cli.store.Courses()
	}
	for _, c := range courses {
		fmt.Fprintf(cli.out, "%s\t%s\t%d/%d\tteacher: %s\n",
			c.ID(), c.Title(), len(c.StudentIDs()), c.MaxCapacity(), teacherName(c))
	}
	return nil
}

func teacherName(c *course.Course) string {
	if t := c.Teacher(); t != nil {
		return t.Name
	}
	return "-"
}

func (cli *commandLine) showCourseCmd(args []string) error {
	fs := cli.newFlagSet("showcourse")
	id := fs.String("id", "", "The course id.")
	if err := cli.parse(fs, args, "id"); err != nil {
		return err
	}

	c, err := cli.store.Course(*id)
	if err != nil {
		return err
	}
	students := make([]string, 0, len(c.StudentIDs()))
	for _, sid := range c.StudentIDs() {
		students = append(students, fmt.Sprint(sid))
	}

	fmt.Fprintf(cli.out, "%s - %s\n", c.ID(), c.Title())
	fmt.Fprintf(cli.out, "teacher: %s\n", teacherName(c))
	fmt.Fprintf(cli.out, "students (%d/%d): %s\n", len(students), c.MaxCapacity(), strings.Join(students, ", "))
	for _, a := range c.Assignments() {
		fmt.Fprintf(cli.out, "assignment %s: %s\n", a.ID, a.Title)
		for _, sid := range c.StudentIDs() {
			score := "-"
			if s, ok := c.Grade(a.ID, sid); ok {
				score = fmt.Sprint(s)
			}
			fmt.Fprintf(cli.out, "  %d\tscore: %s\tsubmitted: %t\n", sid, score, c.HasSubmitted(a.ID, sid))
		}
	}
	for _, sid := range c.StudentIDs() {
		fmt.Fprintf(cli.out, "final grade of %d: %s\n", sid, formatGrade(c.FinalGrade(sid)))
	}
	return nil
}
