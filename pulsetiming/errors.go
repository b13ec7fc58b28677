package pulsetiming

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrorUnknownModel = Error("Unknown timing model")
	ErrorNoRevision   = Error("No Revision line in cpuinfo")
	ErrorBadRevision  = Error("Revision in cpuinfo is not a hex number")
	ErrorUnsupported  = Error("Core affinity is not supported on this platform")
)
