package flow

import "testing"

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"a@b.c", true},
		{"ivanov@example.com", true},
		{"@abc.com", false},
		{"abc.com", false},
		{"abc@com", false},
	}
	for _, tc := range cases {
		if got := validateEmail(tc.value); got != tc.ok {
			t.Fatalf("validateEmail(%q) = %v, want %v", tc.value, got, tc.ok)
		}
	}
}

func TestFieldOrder(t *testing.T) {
	if len(fields) != 15 {
		t.Fatalf("expected 15 form fields, got %d", len(fields))
	}
	if prevKey(fields[0].Key) != "" {
		t.Fatalf("first field must have no previous key")
	}
	for i := 1; i < len(fields); i++ {
		if prevKey(fields[i].Key) != fields[i-1].Key {
			t.Fatalf("prevKey(%q) = %q, want %q", fields[i].Key, prevKey(fields[i].Key), fields[i-1].Key)
		}
	}
	if nextKey(fields[len(fields)-1].Key) != "" {
		t.Fatalf("last field must have no next key")
	}
}

func TestProfileAnswersRoundTrip(t *testing.T) {
	answers := sampleAnswers()
	profile := profileFromAnswers(answers)
	back := answersFromProfile(profile)
	for key, want := range answers {
		if back[key] != want {
			t.Fatalf("field %q: got %q, want %q", key, back[key], want)
		}
	}
}

func TestChoiceOptions(t *testing.T) {
	red := choiceOptions("redDiploma")
	science := choiceOptions("scienceInterest")
	if len(red) != 3 || len(science) != 3 {
		t.Fatalf("choice fields must offer exactly 3 options")
	}
	if red[2].Value != "undecided" || science[2].Value != "maybe" {
		t.Fatalf("unexpected third options: %q, %q", red[2].Value, science[2].Value)
	}
	if choiceOptions("email") != nil {
		t.Fatalf("text fields must have no options")
	}
}
