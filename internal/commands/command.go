package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeDone    Type = "done"
	TypeArchive Type = "archive"
	TypeDelete  Type = "delete"
	TypeShow    Type = "show"
	TypeExport  Type = "export"
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

// AddArgs carries the raw "add <title> @ <when>" split. When stays a string
// here; datetime parsing belongs to the handler, which knows the user's
// formats.
type AddArgs struct {
	Title string
	When  string
}

type DoneArgs struct {
	Target string
}

type ArchiveArgs struct {
	Target string
}

type DeleteArgs struct {
	Target string
}

type ShowArgs struct {
	Subject string
}

type ExportArgs struct {
	Path string
}

type Command struct {
	Type    Type
	Raw     string
	Add     *AddArgs
	Done    *DoneArgs
	Archive *ArchiveArgs
	Delete  *DeleteArgs
	Show    *ShowArgs
	Export  *ExportArgs
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
		return Command{Type: TypeDone, Raw: input, Done: &DoneArgs{Target: targetOrSelected(args)}}, nil
	case TypeArchive:
		return Command{Type: TypeArchive, Raw: input, Archive: &ArchiveArgs{Target: targetOrSelected(args)}}, nil
	case TypeDelete:
		return Command{Type: TypeDelete, Raw: input, Delete: &DeleteArgs{Target: targetOrSelected(args)}}, nil
	case TypeShow:
		return parseShow(input, args)
	case TypeExport:
		return parseExport(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	joined := strings.TrimSpace(strings.Join(args, " "))
	title := joined
	when := ""
	if at := strings.LastIndex(joined, "@"); at >= 0 {
		title = strings.TrimSpace(joined[:at])
		when = strings.TrimSpace(joined[at+1:])
	}
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title, When: when}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a view"}
	}
	subject := strings.ToLower(args[0])
	switch subject {
	case "today", "next", "past", "archived":
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown view: %s", subject)}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject}}, nil
}

func parseExport(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "export requires a file path"}
	}
	return Command{Type: TypeExport, Raw: raw, Export: &ExportArgs{Path: strings.Join(args, " ")}}, nil
}

func targetOrSelected(args []string) string {
	if len(args) == 0 {
		return "selected"
	}
	return strings.ToLower(args[0])
}
