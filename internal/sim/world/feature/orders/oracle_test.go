package orders

import "testing"

func TestValidate_IdenticalAlwaysAccepted(t *testing.T) {
	sets := []IngredientSet{
		SetOf(Soda),
		SetOf(Soda, Rum, LimeJuice, SimpleSyrup),
		SetOf(Gin, Tonic, Lime),
	}
	for _, s := range sets {
		if !Validate(s, s, Rules{}, 0) {
			t.Fatalf("validate(%v,%v) rejected", s, s)
		}
	}
}

func TestValidate_LenientSubstitution(t *testing.T) {
	req := SetOf(Soda, Rum, LimeJuice, SimpleSyrup)
	lenient := Rules{LenientSubstitution: true}

	cases := []struct {
		name  string
		rules Rules
		got   IngredientSet
		want  bool
	}{
		{"missing one spirit", lenient, SetOf(Soda, LimeJuice, SimpleSyrup), true},
		{"swapped spirit", lenient, SetOf(Soda, Gin, LimeJuice, SimpleSyrup), true},
		{"two missing", lenient, SetOf(Soda, LimeJuice), false},
		{"missing mixer", lenient, SetOf(Soda, Rum, LimeJuice), false},
		{"strict", Rules{}, SetOf(Soda, LimeJuice, SimpleSyrup), false},
	}
	for _, tc := range cases {
		if got := Validate(req, tc.got, tc.rules, 0); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestValidate_DrunkTolerance(t *testing.T) {
	req := SetOf(Soda, Rum, LimeJuice, SimpleSyrup)
	served := SetOf(Soda, LimeJuice)
	rules := Rules{DrunkTolerance: true}
	if Validate(req, served, rules, 2) {
		t.Fatalf("2 differences with 2 drinks should be rejected")
	}
	if !Validate(req, served, rules, 3) {
		t.Fatalf("2 differences with 3 drinks should be accepted")
	}
}

func TestValidate_LenientFailureFallsThroughToTolerance(t *testing.T) {
	req := SetOf(Soda, Rum)
	served := SetOf(Water, Rum)
	rules := Rules{LenientSubstitution: true, DrunkTolerance: true}
	if !Validate(req, served, rules, 2) {
		t.Fatalf("expected tolerance to accept a non-spirit swap")
	}
}

func TestValidate_Skip(t *testing.T) {
	if !Validate(SetOf(Rum), SetOf(Water), Rules{SkipIngredientMatch: true}, 0) {
		t.Fatalf("skip must accept")
	}
}

func TestParseSet(t *testing.T) {
	s, err := ParseSet([]string{"Soda", "rum"})
	if err != nil || s != SetOf(Soda, Rum) {
		t.Fatalf("ParseSet=%v,%v", s, err)
	}
	if _, err := ParseSet([]string{"Absinthe"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestIsAlcohol_SingleBottleSet(t *testing.T) {
	for _, it := range []Ingredient{Rum, Tequila, Vodka, Whiskey, Gin, TripleSec, Bitters} {
		if !it.IsAlcohol() {
			t.Fatalf("%v should count as alcohol", it)
		}
	}
	for _, it := range []Ingredient{Cointreau, Soda, SimpleSyrup, Lemon, IceCubes} {
		if it.IsAlcohol() {
			t.Fatalf("%v should not count as alcohol", it)
		}
	}
}

func TestValidate_LenientAcceptsMissingBitters(t *testing.T) {
	req := SetOf(Whiskey, Bitters, SimpleSyrup)
	got := SetOf(Whiskey, SimpleSyrup)
	if !Validate(req, got, Rules{LenientSubstitution: true}, 0) {
		t.Fatalf("old fashioned without bitters rejected under lenient substitution")
	}
	if Validate(SetOf(Tequila, Cointreau, LimeJuice), SetOf(Tequila, LimeJuice), Rules{LenientSubstitution: true}, 0) {
		t.Fatalf("missing cointreau accepted under lenient substitution")
	}
}
