package defs

type RequestContext struct {
	TraceID string
}

const (
	PathPrefix  string = "/api/v1"
	EmptyString string = ""
	StdinSource string = "-"
)

var ConnectionState = struct {
	Closed string
	Open   string
}{
	Closed: "CLOSED",
	Open:   "OPEN",
}
