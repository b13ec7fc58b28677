package diag

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrorUnknownLine    = Error("Unknown line")
	ErrorLineBusy       = Error("Line is claimed as input or reserved")
	ErrorReadback       = Error("Read back level does not match")
	ErrorUnknownProgram = Error("Unknown program")
	ErrorBadArgument    = Error("Bad program argument")
)
