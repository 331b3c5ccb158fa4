package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Goto   func(GotoArgs) (Result, error)
	Today  func() (Result, error)
	Step   func(weeks int) (Result, error)
	Export func(ExportArgs) (Result, error)
	Done   func(DoneArgs) (Result, error)
	Digest func() (Result, error)
}

// Execute dispatches cmd. prev is routed to Step with a negative week count.
func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeGoto:
		if handlers.Goto == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Goto(*cmd.Goto)
	case TypeToday:
		if handlers.Today == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Today()
	case TypeNext, TypePrev:
		if handlers.Step == nil {
			return Result{}, missing(cmd.Type)
		}
		weeks := 1
		if cmd.Step != nil {
			weeks = cmd.Step.Weeks
		}
		if cmd.Type == TypePrev {
			weeks = -weeks
		}
		return handlers.Step(weeks)
	case TypeExport:
		if handlers.Export == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Export(*cmd.Export)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Done(*cmd.Done)
	case TypeDigest:
		if handlers.Digest == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Digest()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
