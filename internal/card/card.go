package card

import "strings"

// RequiredFields lists the character fields that must be non-empty before a
// session's output counts as complete. The order is also the order they are
// reported back to the model when some are still missing.
var RequiredFields = []string{
	"name",
	"description",
	"personality",
	"scenario",
	"first_mes",
	"mes_example",
	"creator_notes",
	"tags",
}

// Character is the character card export record.
type Character struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Personality        string   `json:"personality"`
	Scenario           string   `json:"scenario"`
	FirstMes           string   `json:"first_mes"`
	MesExample         string   `json:"mes_example"`
	CreatorNotes       string   `json:"creator_notes"`
	Tags               []string `json:"tags"`
	AlternateGreetings []string `json:"alternate_greetings"`
}

// Field returns the value of a required field by its wire name. Tags report
// as a joined string so callers can treat every field uniformly.
func (c *Character) Field(name string) string {
	switch name {
	case "name":
		return c.Name
	case "description":
		return c.Description
	case "personality":
		return c.Personality
	case "scenario":
		return c.Scenario
	case "first_mes":
		return c.FirstMes
	case "mes_example":
		return c.MesExample
	case "creator_notes":
		return c.CreatorNotes
	case "tags":
		return strings.Join(c.Tags, ", ")
	}
	return ""
}

// SetField assigns a required field by its wire name. Returns false for an
// unknown name. The tags field is not settable through here; it is an array.
func (c *Character) SetField(name, value string) bool {
	switch name {
	case "name":
		c.Name = value
	case "description":
		c.Description = value
	case "personality":
		c.Personality = value
	case "scenario":
		c.Scenario = value
	case "first_mes":
		c.FirstMes = value
	case "mes_example":
		c.MesExample = value
	case "creator_notes":
		c.CreatorNotes = value
	default:
		return false
	}
	return true
}

// MissingFields reports which required fields are still empty.
func (c *Character) MissingFields() []string {
	var missing []string
	for _, name := range RequiredFields {
		if strings.TrimSpace(c.Field(name)) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Complete reports whether all required fields are populated.
func (c *Character) Complete() bool {
	return len(c.MissingFields()) == 0
}
