package pinpulser

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrorNoSpecs      = Error("No pulse lengths given")
	ErrorNegativeSpec = Error("Pulse length is negative")
)
