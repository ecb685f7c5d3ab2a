package context

type Key string

const (
	Claims  Key = "claims"
	Profile Key = "profile"
	Params  Key = "params"
)
