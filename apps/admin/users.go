package main

import (
	"fmt"

	"github.com/trezcool/catalog/core/user"
)

func (cli *commandLine) addUserCmd(args []string) error {
	fs := cli.newFlagSet("adduser")
	role := fs.String("role", "", "admin, teacher or student")
	id := fs.Int("id", -1, "The user's id, unique within its role.")
	name := fs.String("name", "", "The user's full name.")
	uname := fs.String("username", "", "The user's username. The password will be prompted next.")
	if err := cli.parse(fs, args, "role", "id", "name", "username"); err != nil {
		return err
	}

	r, err := user.ParseRole(*role)
	if err != nil {
		return err
	}
	pwd, err := cli.promptPassword()
	if err != nil {
		return err
	}
	if pwd == "" {
		fs.Usage()
		return errHelp
	}

	usr, err := cli.store.CreateUser(user.NewUser{
		ID:       *id,
		Role:     r,
		Name:     *name,
		Username: *uname,
		Password: pwd,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created %s\n", usr)
	return nil
}

func (cli *commandLine) updateUserCmd(args []string) error {
	fs := cli.newFlagSet("updateuser")
	role := fs.String("role", "", "admin, teacher or student")
	id := fs.Int("id", -1, "The user's id.")
	name := fs.String("name", "", "The new full name.")
	uname := fs.String("username", "", "The new username.")
	if err := cli.parse(fs, args, "role", "id"); err != nil {
		return err
	}
	if *name == "" && *uname == "" {
		fs.Usage()
		return errHelp
	}

	r, err := user.ParseRole(*role)
	if err != nil {
		return err
	}
	usr, err := cli.store.UpdateUser(r, *id, user.UpdateUser{Name: *name, Username: *uname})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "updated %s\n", usr)
	return nil
}

func (cli *commandLine) delUserCmd(args []string) error {
	fs := cli.newFlagSet("deluser")
	role := fs.String("role", "", "admin, teacher or student")
	id := fs.Int("id", -1, "The user's id.")
	if err := cli.parse(fs, args, "role", "id"); err != nil {
		return err
	}

	r, err := user.ParseRole(*role)
	if err != nil {
		return err
	}
	if err = cli.store.DeleteUser(r, *id); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "deleted %s %d\n", r, *id)
	return nil
}

func (cli *commandLine) listUsersCmd(args []string) error {
	fs := cli.newFlagSet("listusers")
	role := fs.String("role", "", "admin, teacher or student")
	if err := cli.parse(fs, args, "role"); err != nil {
		return err
	}

	r, err := user.ParseRole(*role)
	if err != nil {
		return err
	}
	for _, usr := range cli.store.Users(r) {
		fmt.Fprintf(cli.out, "%d\t%s\t%s\n", usr.ID, usr.Name, usr.Username)
	}
	return nil
}

func (cli *commandLine) loginCmd(args []string) error {
	fs := cli.newFlagSet("login")
	uname := fs.String("username", "", "The username. The password will be prompted next.")
	if err := cli.parse(fs, args, "username"); err != nil {
		return err
	}

	pwd, err := cli.promptPassword()
	if err != nil {
		return err
	}
	usr, err := cli.store.Authenticate(*uname, pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "logged in as %s\n", usr)
	return nil
}
