package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

func (cli *commandLine) resetDataCmd(args []string) error {
	fs := cli.newFlagSet("resetdata")
	yes := fs.Bool("yes", false, "Do not ask for confirmation.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}

	if !*yes {
		fmt.Fprint(cli.out, "This deletes ALL users, courses, grades and submissions. Type yes to confirm: ")
		answer, err := bufio.NewReader(cli.in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if strings.ToLower(strings.TrimSpace(answer)) != "yes" {
			fmt.Fprintln(cli.out, "aborted")
			return nil
		}
	}

	if err := cli.store.ResetAllData(); err != nil {
		return err
	}
	cli.purged = true
	fmt.Fprintln(cli.out, "all data deleted")
	return nil
}
