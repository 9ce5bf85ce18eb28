package diffusion

import "fmt"

// Record is the tagged, serialisable shape of a Variant's parameters
// (§6 checkpoint format: "the wrapped function's tagged parameters").
type Record struct {
	Tag Family `json:"tag"`
	M   uint64 `json:"m,omitempty"`
	M1  uint64 `json:"m1,omitempty"`
	M2  uint64 `json:"m2,omitempty"`
	S   uint32 `json:"s,omitempty"`
	S1  uint32 `json:"s1,omitempty"`
	S2  uint32 `json:"s2,omitempty"`
}

// ToRecord converts a Variant into its tagged serialisable form.
func ToRecord(v Variant) Record {
	switch p := v.(type) {
	case MXR:
		return Record{Tag: FamilyMXR, M: p.M, S: p.S}
	case MRXR:
		return Record{Tag: FamilyMRXR, M: p.M, S1: p.S1, S2: p.S2}
	case MRXS:
		return Record{Tag: FamilyMRXS, M: p.M, S1: p.S1, S2: p.S2}
	case RXSM:
		return Record{Tag: FamilyRXSM, M: p.M, S1: p.S1, S2: p.S2}
	case MRXSM:
		return Record{Tag: FamilyMRXSM, M1: p.M1, M2: p.M2, S1: p.S1, S2: p.S2}
	default:
		panic(fmt.Sprintf("diffusion: unknown variant type %T", v))
	}
}

// FromRecord reconstructs a Variant from its tagged form, re-clamping
// parameters through each family's constructor so a malformed
// checkpoint can never produce an out-of-invariant Variant.
func FromRecord(r Record) (Variant, error) {
	switch r.Tag {
	case FamilyMXR:
		return NewMXR(r.M, r.S), nil
	case FamilyMRXR:
		return NewMRXR(r.M, r.S1, r.S2), nil
	case FamilyMRXS:
		return NewMRXS(r.M, r.S1, r.S2), nil
	case FamilyRXSM:
		return NewRXSM(r.M, r.S1, r.S2), nil
	case FamilyMRXSM:
		return NewMRXSM(r.M1, r.M2, r.S1, r.S2), nil
	default:
		return nil, fmt.Errorf("diffusion: unknown record tag %q", r.Tag)
	}
}
