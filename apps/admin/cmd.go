package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/catalog/core/catalog"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	store *catalog.Store
	in    io.Reader // confirmations
	out   io.Writer

	purged bool // resetdata ran: nothing left to save
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  adduser -role ROLE -id ID -name NAME -username USERNAME - create a user, the password is prompted")
	fmt.Fprintln(cli.out, "  updateuser -role ROLE -id ID [-name NAME] [-username USERNAME] - update a user")
	fmt.Fprintln(cli.out, "  resetpassword -role ROLE -id ID - reset a user's password, the password is prompted")
	fmt.Fprintln(cli.out, "  deluser -role ROLE -id ID - delete a user")
	fmt.Fprintln(cli.out, "  listusers -role ROLE - list the users of a role")
	fmt.Fprintln(cli.out, "  login -username USERNAME - check credentials, the password is prompted")
	fmt.Fprintln(cli.out, "  addcourse -id ID -title TITLE -capacity N - create a course")
	fmt.Fprintln(cli.out, "  assign -course ID -teacher ID - assign a teacher to a course")
	fmt.Fprintln(cli.out, "  enroll -course ID -student ID - enroll a student in a course")
	fmt.Fprintln(cli.out, "  addassignment -course ID -id ID [-title TITLE] - add an assignment to a course")
	fmt.Fprintln(cli.out, "  grade -course ID -assignment ID -student ID -score N - record a score (0-100)")
	fmt.Fprintln(cli.out, "  submit -course ID -assignment ID -student ID - mark an assignment as submitted")
	fmt.Fprintln(cli.out, "  finalgrade -course ID -student ID - print a student's final grade")
	fmt.Fprintln(cli.out, "  listcourses [-teacher ID | -student ID] - list courses")
	fmt.Fprintln(cli.out, "  showcourse -id ID - print a course with its roster, assignments and grades")
	fmt.Fprintln(cli.out, "  resetdata [-yes] - delete ALL data")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	cmds := map[string]func([]string) error{
		"adduser":       cli.addUserCmd,
		"updateuser":    cli.updateUserCmd,
		"resetpassword": cli.resetPasswordCmd,
		"deluser":       cli.delUserCmd,
		"listusers":     cli.listUsersCmd,
		"login":         cli.loginCmd,
		"addcourse":     cli.addCourseCmd,
		"assign":        cli.assignCmd,
		"enroll":        cli.enrollCmd,
		"addassignment": cli.addAssignmentCmd,
		"grade":         cli.gradeCmd,
		"submit":        cli.submitCmd,
		"finalgrade":    cli.finalGradeCmd,
		"listcourses":   cli.listCoursesCmd,
		"showcourse":    cli.showCourseCmd,
		"resetdata":     cli.resetDataCmd,
	}
	cmd, ok := cmds[args[1]]
	if !ok {
		cli.printUsage()
		return errHelp
	}
	return cmd(args[2:])
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse parses `args` and checks that every flag in `required` was set.
func (cli *commandLine) parse(fs *flag.FlagSet, args []string, required ...string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, name := range required {
		if !set[name] {
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
