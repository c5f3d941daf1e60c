package card

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Card
		wantErr  bool
	}{
		{name: "zero", input: "0", expected: NewNumber("", 0)},
		{name: "twelve", input: "12", expected: NewNumber("", 12)},
		{name: "bonus", input: "+8", expected: NewPlus("", 8)},
		{name: "multiplier", input: "x2", expected: NewMultiply("")},
		{name: "multiplier upper", input: "X2", expected: NewMultiply("")},
		{name: "freeze", input: "F", expected: NewAction("", Freeze)},
		{name: "flip three", input: "f3", expected: NewAction("", FlipThree)},
		{name: "second chance", input: "SC", expected: NewAction("", SecondChance)},
		{name: "padded", input: " 7 ", expected: NewNumber("", 7)},
		{name: "too high", input: "13", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "zero bonus", input: "+0", wantErr: true},
		{name: "garbage", input: "joker", wantErr: true},
		{name: "bad bonus", input: "+x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMustParseHandPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustParseHand("7", "nope")
}
