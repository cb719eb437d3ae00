package ttsengine

// Profile is a named speaking-rate/pitch pair passed to the synthesizer
// (spec §4.6).
type Profile struct {
	Name  string
	Rate  int
	Pitch int
}

var profiles = map[string]Profile{
	"standard":   {Name: "standard", Rate: 170, Pitch: 50},
	"natural":    {Name: "natural", Rate: 175, Pitch: 50},
	"slow":       {Name: "slow", Rate: 120, Pitch: 50},
	"expressive": {Name: "expressive", Rate: 185, Pitch: 60},
	"clear":      {Name: "clear", Rate: 160, Pitch: 55},
}

// ResolveProfile returns the named profile, falling back to "natural" for
// any unknown name (spec §4.6).
func ResolveProfile(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	return profiles["natural"]
}

// Profiles returns every named profile in a stable order, for the
// GET /tts/profiles endpoint.
func Profiles() []Profile {
	order := []string{"standard", "natural", "slow", "expressive", "clear"}
	out := make([]Profile, 0, len(order))
	for _, name := range order {
		out = append(out, profiles[name])
	}
	return out
}
