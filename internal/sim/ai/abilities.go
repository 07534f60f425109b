package ai

// Abilities gates optional behaviours. A handler whose ability is missing
// returns without doing anything.
type Abilities struct {
	UseBathroom bool `json:"use_bathroom"`
	PlayJukebox bool `json:"play_jukebox"`
	CleanVomit  bool `json:"clean_vomit"`
}

func AllAbilities() Abilities {
	return Abilities{UseBathroom: true, PlayJukebox: true, CleanVomit: true}
}
