package main

import (
	"fmt"

	"github.com/trezcool/catalog/core/user"
)

func (cli *commandLine) resetPasswordCmd(args []string) error {
	fs := cli.newFlagSet("resetpassword")
	role := fs.String("role", "", "admin, teacher or student")
	id := fs.Int("id", -1, "The user's id. The password will be prompted next.")
	if err := cli.parse(fs, args, "role", "id"); err != nil {
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
	return cli.resetPassword(r, *id, pwd)
}

func (cli *commandLine) resetPassword(role user.Role, id int, pwd string) error {
	usr, err := cli.store.UpdateUser(role, id, user.UpdateUser{Password: pwd})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "password updated for %s\n", usr)
	return nil
}
