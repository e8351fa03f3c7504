package logsvc

import (
	"strconv"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/catalog/core"
	"github.com/trezcool/catalog/core/user"
)

const header = `${time_rfc3339} ${level} ${prefix} ${short_file}:${line}`

// RollbarLogger prints to the console and reports to Rollbar when enabled.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewConsole returns the console logger used by RollbarLogger, prefixed with the app name.
func NewConsole(conf *core.Config) *log.Logger {
	std := log.New(strings.ToUpper(conf.AppName))
	std.SetHeader(header)
	std.SetLevel(parseLevel(conf.LogLevel))
	return std
}

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	l := &RollbarLogger{std: std}
	l.Enable(!conf.Debug && !conf.TestMode && conf.RollbarToken != "")
	return l
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

func parseLevel(s string) log.Lvl {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// expected fmt: msg | error, map[string]interface{}, user.User
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var usrSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		var usr *user.User
		switch v := arg.(type) {
		case user.User:
			usr = &v
		case *user.User:
			usr = v
		}
		if usr == nil {
			newArgs = append(newArgs, arg)
			continue
		}
		// one person per item
		if !usrSet {
			rollbar.SetPerson(strconv.Itoa(usr.ID), usr.Username, "")
			usrSet = true
		}
	}
	if !usrSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

// console output only carries the message and errors
func details(args []interface{}) []interface{} {
	out := make([]interface{}, 0, len(args))
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			out = append(out, " | ", err)
		}
	}
	return out
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.std.Debug(append([]interface{}{msg}, details(args)...)...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.std.Info(append([]interface{}{msg}, details(args)...)...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.std.Warn(append([]interface{}{msg}, details(args)...)...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.std.Error(append([]interface{}{msg}, details(args)...)...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	rollbar.Wait()
	l.std.Fatal(append([]interface{}{msg}, details(args)...)...)
}
