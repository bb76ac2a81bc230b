package keyword

// Kind classifies an extraction attempt.
type Kind int

const (
	// Found means the attempt produced keywords.
	Found Kind = iota
	// Empty means the attempt succeeded without usable keywords.
	Empty
	// Failed means the attempt errored.
	Failed
)

// String returns the metric label of the kind.
func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of one extraction tier.
type Outcome struct {
	kind     Kind
	keywords []string
	err      error
}

// FoundOutcome wraps extracted keywords. An empty list yields an Empty outcome.
func FoundOutcome(keywords []string) Outcome {
	if len(keywords) == 0 {
		return Outcome{kind: Empty}
	}
	return Outcome{kind: Found, keywords: keywords}
}

// EmptyOutcome reports a successful attempt without keywords.
func EmptyOutcome() Outcome { return Outcome{kind: Empty} }

// FailedOutcome reports an errored attempt.
func FailedOutcome(err error) Outcome { return Outcome{kind: Failed, err: err} }

// Kind returns the outcome classification.
func (o Outcome) Kind() Kind { return o.kind }

// Keywords returns the keywords of a Found outcome.
func (o Outcome) Keywords() []string { return o.keywords }

// Err returns the error of a Failed outcome.
func (o Outcome) Err() error { return o.err }
