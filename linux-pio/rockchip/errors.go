package rockchip

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrorUnknownTarget  = Error("Unknown target")
	ErrorNotInitialized = Error("Bank table not initialized")
)
