package core

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Character < o.Character
}

// Range is half-open: [Start, End).
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func (r Range) IsEmpty() bool { return r.Start == r.End }

type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

type Drift string

const (
	DriftNone     Drift = ""
	DriftNotFound Drift = "notFound"
)
