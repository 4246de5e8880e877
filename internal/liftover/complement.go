package liftover

var complement [256]byte

func init() {
	for _, p := range [][2]byte{{'A', 'T'}, {'C', 'G'}, {'G', 'C'}, {'T', 'A'}, {'N', 'N'}} {
		complement[p[0]] = p[1]
	}
}

// ValidAllele reports whether s is a non-empty sequence over A, C, G, T and N.
func ValidAllele(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if complement[s[i]] == 0 {
			return false
		}
	}
	return true
}

// ReverseComplement returns the reverse complement of a sequence over
// A, C, G, T and N. Other bytes yield an *InvalidAlleleError.
func ReverseComplement(s string) (string, error) {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := complement[s[i]]
		if c == 0 {
			return "", &InvalidAlleleError{Allele: s}
		}
		out[len(s)-1-i] = c
	}
	return string(out), nil
}
