package vcf

import (
	"errors"
	"testing"
)

func TestParseVariantID(t *testing.T) {
	tests := []struct {
		input string
		chrom string
		pos   int64
		ref   string
		alt   string
	}{
		{"chr8-140300615-C-G", "8", 140300615, "C", "G"},
		{"8-140300615-C-G", "8", 140300615, "C", "G"},
		{"8:140300615:C:G", "8", 140300615, "C", "G"},
		{"8 140300615 C G", "8", 140300615, "C", "G"},
		{"chr8:140300615 C>G", "8", 140300615, "C", "G"},
		{"8:140300615:C>G", "8", 140300615, "C", "G"},
		{"8\t140300615\tC\tG", "8", 140300615, "C", "G"},
		{"8 -- 140300615 :: C -> G", "8", 140300615, "C", "G"},
		{"  chr8-140300615-C-G  ", "8", 140300615, "C", "G"},
		{"chrX-100-A-T", "X", 100, "A", "T"},
		{"Y-100-A-T", "Y", 100, "A", "T"},
		{"chrM-100-A-T", "M", 100, "A", "T"},
		{"MT-100-A-T", "MT", 100, "A", "T"},
		{"T-100-A-G", "T", 100, "A", "G"},
		{"chrT:100:A:G", "T", 100, "A", "G"},
		{"22-100-A-T", "22", 100, "A", "T"},
		{"1-739023-C-CT", "1", 739023, "C", "CT"},
		{"17-41276045-CT-C", "17", 41276045, "CT", "C"},
		{"2-179415988-AT-GC", "2", 179415988, "AT", "GC"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseVariantID(tt.input)
			if err != nil {
				t.Fatalf("ParseVariantID(%q) error: %v", tt.input, err)
			}
			if v.Chrom != tt.chrom || v.Pos != tt.pos || v.Ref != tt.ref || v.Alt != tt.alt {
				t.Errorf("ParseVariantID(%q) = %s, want %s-%d-%s-%s",
					tt.input, v, tt.chrom, tt.pos, tt.ref, tt.alt)
			}
		})
	}
}

func TestParseVariantID_SeparatorsEquivalent(t *testing.T) {
	inputs := []string{"chr8-140300615-C-G", "8:140300615:C:G", "8 140300615 C G"}

	first, err := ParseVariantID(inputs[0])
	if err != nil {
		t.Fatal(err)
	}
	for _, in := range inputs[1:] {
		v, err := ParseVariantID(in)
		if err != nil {
			t.Fatalf("ParseVariantID(%q) error: %v", in, err)
		}
		if *v != *first {
			t.Errorf("ParseVariantID(%q) = %+v, want %+v", in, v, first)
		}
	}
}

func TestParseVariantID_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"chr8",
		"8-140300615-C",
		"8-140300615-c-g",
		"8-140300615-C-N",
		"23-100-A-T",
		"chrZ-100-A-T",
		"8-0-C-G",
		"8-1234567890-C-G",
		"8-abc-C-G",
		"8_140300615_C_G",
		"8-140300615-C-G-extra",
		"rs12345",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := ParseVariantID(in)
			if err == nil {
				t.Fatalf("ParseVariantID(%q) expected error", in)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if pe.Error() != "Unable to parse variant: "+in {
				t.Errorf("unexpected message %q", pe.Error())
			}
		})
	}
}
