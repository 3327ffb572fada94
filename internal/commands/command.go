package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeDone     Type = "done"
	TypeSubtask  Type = "subtask"
	TypeReset    Type = "reset"
	TypeForceDue Type = "forcedue"
	TypeShow     Type = "show"
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

type AddArgs struct {
	Name string
}

type DoneArgs struct {
	Target string
	By     string
}

// SubtaskArgs covers the subtask subcommands: "add <chore> <name>" and
// "done <chore> <name>".
type SubtaskArgs struct {
	Action string
	Target string
	Name   string
	By     string
}

type ResetArgs struct {
	Target string
}

type ForceDueArgs struct {
	Target string
}

type ShowArgs struct {
	Subject string
	Person  string
}

type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Done     *DoneArgs
	Subtask  *SubtaskArgs
	Reset    *ResetArgs
	ForceDue *ForceDueArgs
	Show     *ShowArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone:
		return parseDone(input, args)
	case TypeSubtask:
		return parseSubtask(input, args)
	case TypeReset:
		return parseReset(input, args)
	case TypeForceDue:
		return parseForceDue(input, args)
	case TypeShow:
		return parseShow(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// splitByOption strips a trailing "by:<person>" token and returns the
// remaining args plus the person.
func splitByOption(args []string) ([]string, string) {
	by := ""
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		if strings.HasPrefix(strings.ToLower(arg), "by:") {
			by = strings.TrimSpace(arg[len("by:"):])
			continue
		}
		rest = append(rest, arg)
	}
	return rest, by
}

func parseAdd(raw string, args []string) (Command, error) {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a chore name"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Name: name}}, nil
}

func parseDone(raw string, args []string) (Command, error) {
	args, by := splitByOption(args)
	target := strings.TrimSpace(strings.Join(args, " "))
	if target == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "done requires a chore"}
	}
	return Command{Type: TypeDone, Raw: raw, Done: &DoneArgs{Target: target, By: by}}, nil
}

func parseSubtask(raw string, args []string) (Command, error) {
	args, by := splitByOption(args)
	if len(args) < 3 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "subtask requires an action, a chore, and a name"}
	}
	action := strings.ToLower(args[0])
	if action != "add" && action != "done" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unsupported subtask action: %s", action)}
	}
	return Command{Type: TypeSubtask, Raw: raw, Subtask: &SubtaskArgs{
		Action: action,
		Target: args[1],
		Name:   strings.TrimSpace(strings.Join(args[2:], " ")),
		By:     by,
	}}, nil
}

func parseReset(raw string, args []string) (Command, error) {
	target := strings.TrimSpace(strings.Join(args, " "))
	if target == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "reset requires a chore"}
	}
	return Command{Type: TypeReset, Raw: raw, Reset: &ResetArgs{Target: target}}, nil
}

func parseForceDue(raw string, args []string) (Command, error) {
	target := strings.TrimSpace(strings.Join(args, " "))
	if target == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "forcedue requires a chore"}
	}
	return Command{Type: TypeForceDue, Raw: raw, ForceDue: &ForceDueArgs{Target: target}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a subject"}
	}
	subject := strings.ToLower(args[0])
	person := ""
	for _, arg := range args[1:] {
		if strings.HasPrefix(strings.ToLower(arg), "person:") {
			person = strings.TrimSpace(arg[len("person:"):])
		}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject, Person: person}}, nil
}
