package domain

import (
	"testing"
	"unicode/utf8"
)

// Path parameters reach these parsers unfiltered.
func FuzzParseQuestionID(f *testing.F) {
	for _, seed := range []string{
		"",
		"550e8400-e29b-41d4-a716-446655440000",
		"00000000-0000-0000-0000-000000000000",
		"{550e8400-e29b-41d4-a716-446655440000}",
		"urn:uuid:550e8400-e29b-41d4-a716-446655440000",
		"question-1",
		"550e8400-e29b-41d4-a716-446655440000\x00",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		qid, err := ParseQuestionID(input)
		if err != nil {
			return
		}
		if !utf8.ValidString(input) {
			t.Fatalf("accepted non-UTF8 input %q", input)
		}
		again, err := ParseQuestionID(qid.String())
		if err != nil || again != qid {
			t.Fatalf("canonical form %q did not parse back: %v", qid.String(), err)
		}
	})
}

func FuzzParsersAgree(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("section")

	f.Fuzz(func(t *testing.T, input string) {
		_, errQuestion := ParseQuestionID(input)
		_, errSection := ParseSectionID(input)
		_, errForm := ParseFormID(input)
		_, errCandidate := ParseFormCandidateID(input)

		accepted := errQuestion == nil
		for _, err := range []error{errSection, errForm, errCandidate} {
			if (err == nil) != accepted {
				t.Fatalf("parsers disagree on %q", input)
			}
		}
	})
}
