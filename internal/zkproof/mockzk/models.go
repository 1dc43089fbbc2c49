package mockzk

// Protocol tags every proof this package produces.
const Protocol = "groth16-mock"

// Proof mirrors the snarkjs Groth16 JSON layout.
type Proof struct {
	PiA        []string   `json:"pi_a"`
	PiB        [][]string `json:"pi_b"`
	PiC        []string   `json:"pi_c"`
	Protocol   string     `json:"protocol"`
	Commitment string     `json:"commitment,omitempty"`
}

// Result is what every generator returns. Verified means "proof object
// constructed", not "claim checked".
type Result struct {
	Proof         Proof    `json:"proof"`
	PublicSignals []string `json:"publicSignals"`
	Verified      bool     `json:"verified"`
}

// Public-signal bounds accepted by VerifyAgeProof.
const (
	MinYear      = 1900
	MaxYear      = 2100
	MinThreshold = 0
	MaxThreshold = 150

	// DefaultAgeThreshold is used when callers pass no threshold.
	DefaultAgeThreshold = 18
)

// Clone returns a deep copy. A nil proof clones to nil.
func (p *Proof) Clone() *Proof {
	if p == nil {
		return nil
	}
	cp := *p
	cp.PiA = append([]string(nil), p.PiA...)
	cp.PiC = append([]string(nil), p.PiC...)
	if p.PiB != nil {
		cp.PiB = make([][]string, len(p.PiB))
		for i, row := range p.PiB {
			cp.PiB[i] = append([]string(nil), row...)
		}
	}
	return &cp
}
