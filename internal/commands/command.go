// Package commands parses and dispatches agenda palette input such as
// "goto 2025-11-10" or "/export ~/schedule.ics".
package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/studyd/internal/dates"
)

type Type string

const (
	TypeGoto   Type = "goto"
	TypeToday  Type = "today"
	TypeNext   Type = "next"
	TypePrev   Type = "prev"
	TypeExport Type = "export"
	TypeDone   Type = "done"
	TypeDigest Type = "digest"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type GotoArgs struct {
	Date dates.Date
}

// StepArgs moves the visible window by Weeks (one if omitted).
type StepArgs struct {
	Weeks int
}

type ExportArgs struct {
	Path string
}

type DoneArgs struct {
	TaskID string
}

type Command struct {
	Type   Type
	Raw    string
	Goto   *GotoArgs
	Step   *StepArgs
	Export *ExportArgs
	Done   *DoneArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeGoto:
		return parseGoto(input, args)
	case TypeToday, TypeDigest:
		if len(args) > 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: head + " takes no arguments"}
		}
		return Command{Type: Type(head), Raw: input}, nil
	case TypeNext, TypePrev:
		return parseStep(input, Type(head), args)
	case TypeExport:
		return parseExport(input, args)
	case TypeDone:
		if len(args) != 1 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "done requires one task id"}
		}
		return Command{Type: TypeDone, Raw: input, Done: &DoneArgs{TaskID: args[0]}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseGoto(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "goto requires a YYYY-MM-DD date"}
	}
	d, ok := dates.Parse(args[0])
	if !ok {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("not a date: %s", args[0])}
	}
	return Command{Type: TypeGoto, Raw: raw, Goto: &GotoArgs{Date: d}}, nil
}

func parseStep(raw string, typ Type, args []string) (Command, error) {
	weeks := 1
	switch len(args) {
	case 0:
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes a positive week count", typ)}
		}
		weeks = n
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes at most one argument", typ)}
	}
	return Command{Type: typ, Raw: raw, Step: &StepArgs{Weeks: weeks}}, nil
}

func parseExport(raw string, args []string) (Command, error) {
	path := strings.TrimSpace(strings.Join(args, " "))
	if path == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "export requires a file path"}
	}
	return Command{Type: TypeExport, Raw: raw, Export: &ExportArgs{Path: path}}, nil
}
