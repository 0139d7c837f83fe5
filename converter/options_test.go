package converter

import "testing"

func TestPolymorphismText(t *testing.T) {
	tests := []struct {
		in      string
		want    Polymorphism
		wantErr bool
	}{
		{"disabled", PolymorphismDisabled, false},
		{"Enabled", PolymorphismEnabled, false},
		{" forced ", PolymorphismForced, false},
		{"sometimes", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			var p Polymorphism
			err := p.UnmarshalText([]byte(tc.in))
			if (err != nil) != tc.wantErr {
				t.Fatalf("UnmarshalText() error = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && p != tc.want {
				t.Errorf("UnmarshalText() = %v, want %v", p, tc.want)
			}
		})
	}

	out, err := PolymorphismForced.MarshalText()
	if err != nil || string(out) != "forced" {
		t.Errorf("MarshalText() = %q, %v", out, err)
	}
	if _, err := Polymorphism(7).MarshalText(); err == nil {
		t.Error("MarshalText() of an invalid value should fail")
	}
}

func TestValidationFlagsText(t *testing.T) {
	tests := []struct {
		in      string
		want    ValidationFlags
		wantErr bool
	}{
		{"none", ValidationNone, false},
		{"", ValidationNone, false},
		{"extra", NoExtraProperties, false},
		{"extra|all", FullPropertyValidation, false},
		{"full, strict", FullValidation, false},
		{"StrictBasicTypes", StrictBasicTypes, false},
		{"bogus", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			var v ValidationFlags
			err := v.UnmarshalText([]byte(tc.in))
			if (err != nil) != tc.wantErr {
				t.Fatalf("UnmarshalText() error = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && v != tc.want {
				t.Errorf("UnmarshalText() = %v, want %v", v, tc.want)
			}
		})
	}

	if got := FullValidation.String(); got != "extra|all|strict" {
		t.Errorf("String() = %q", got)
	}
	if got := ValidationNone.String(); got != "none" {
		t.Errorf("String() = %q", got)
	}
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.Polymorphism != PolymorphismEnabled {
		t.Errorf("Polymorphism = %v, want enabled", o.Polymorphism)
	}
	if o.Validation != ValidationNone || o.Strict() {
		t.Errorf("Validation = %v, want none", o.Validation)
	}
}
