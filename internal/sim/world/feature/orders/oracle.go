package orders

// Rules are the switches the oracle honours. They come from round settings
// and unlocked upgrades.
type Rules struct {
	// SkipIngredientMatch accepts anything. Debug only.
	SkipIngredientMatch bool
	// LenientSubstitution accepts exactly one differing ingredient when the
	// difference is only spirits.
	LenientSubstitution bool
	// DrunkTolerance forgives fewer differences than drinks already consumed.
	DrunkTolerance bool
}

// Mismatch is the symmetric difference between a request and a served drink.
type Mismatch struct {
	Missing IngredientSet
	Extra   IngredientSet
}

func Compare(requested, served IngredientSet) Mismatch {
	return Mismatch{Missing: requested &^ served, Extra: served &^ requested}
}

// Differing counts substitutions: a missing spirit replaced by another one
// is a single difference.
func (m Mismatch) Differing() int {
	a, b := m.Missing.Count(), m.Extra.Count()
	if a > b {
		return a
	}
	return b
}

func (m Mismatch) AllAlcohol() bool { return (m.Missing | m.Extra).AllAlcohol() }

// Validate decides whether served is an acceptable fulfilment of requested.
func Validate(requested, served IngredientSet, rules Rules, alcoholicConsumed int) bool {
	if requested == served {
		return true
	}
	if rules.SkipIngredientMatch {
		return true
	}
	m := Compare(requested, served)
	if rules.LenientSubstitution && m.Differing() == 1 && m.AllAlcohol() {
		return true
	}
	if rules.DrunkTolerance && m.Differing() < alcoholicConsumed {
		return true
	}
	return false
}
