package bds

import "strings"

// Candidate is the verdict for one register hypothesis
type Candidate struct {
	Register  Register
	Plausible bool
	Reason    string // why the hypothesis was rejected
	Payload   Payload
}

// Hypotheses holds one candidate per supported register
type Hypotheses struct {
	Candidates [NumRegisters]Candidate
}

// Plausible returns the registers whose hypothesis survived
func (h Hypotheses) Plausible() []Register {
	var out []Register
	for _, c := range h.Candidates {
		if c.Plausible {
			out = append(out, c.Register)
		}
	}
	return out
}

// String lists the plausible registers, e.g. "4,0 6,0"
func (h Hypotheses) String() string {
	regs := h.Plausible()
	names := make([]string, len(regs))
	for i, r := range regs {
		names[i] = r.String()
	}
	return strings.Join(names, " ")
}

// Verdict classifies the outcome of resolving hypotheses
type Verdict int

const (
	// VerdictDecided means exactly one register is plausible
	VerdictDecided Verdict = iota
	// VerdictNone means no register is plausible
	VerdictNone
	// VerdictAmbiguous means more than one register is plausible
	VerdictAmbiguous
)

func (v Verdict) String() string {
	switch v {
	case VerdictDecided:
		return "decided"
	case VerdictNone:
		return "none"
	case VerdictAmbiguous:
		return "ambiguous"
	}
	return "unknown"
}

// Resolve accepts the payload of the single plausible register
func (h Hypotheses) Resolve() (Payload, Verdict) {
	var found Payload
	n := 0
	for _, c := range h.Candidates {
		if c.Plausible {
			found = c.Payload
			n++
		}
	}
	switch n {
	case 0:
		return nil, VerdictNone
	case 1:
		return found, VerdictDecided
	}
	return nil, VerdictAmbiguous
}

// Evaluate decodes mb under every supported register. It has no side effects
// and the same inputs always yield the same hypotheses.
func Evaluate(mb []byte, prior Prior, tol Tolerances) Hypotheses {
	var h Hypotheses
	zero := isZero(mb)

	for r := Register(0); r < NumRegisters; r++ {
		c := Candidate{Register: r}
		switch {
		case len(mb) != MBBytes:
			c.Reason = "length"
		case zero:
			c.Reason = "all zero"
		default:
			c.Payload, c.Reason = decoders[r](mb, prior, tol)
		}
		c.Plausible = c.Reason == ""
		if !c.Plausible {
			c.Payload = nil
		}
		h.Candidates[r] = c
	}
	return h
}

// Disambiguator evaluates MB fields with fixed tolerances
type Disambiguator struct {
	tol Tolerances
}

// NewDisambiguator creates a disambiguator
func NewDisambiguator(tol Tolerances) *Disambiguator {
	return &Disambiguator{tol: tol}
}

// Evaluate decodes mb under every supported register
func (d *Disambiguator) Evaluate(mb []byte, prior Prior) Hypotheses {
	return Evaluate(mb, prior, d.tol)
}

// Decode evaluates mb and resolves the hypotheses
func (d *Disambiguator) Decode(mb []byte, prior Prior) (Payload, Verdict, Hypotheses) {
	h := d.Evaluate(mb, prior)
	p, v := h.Resolve()
	return p, v, h
}
