package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullCharacter() Character {
	return Character{
		Name:         "Mira",
		Description:  "A wandering cartographer.",
		Personality:  "Curious, dry-witted.",
		Scenario:     "You meet at a border crossing.",
		FirstMes:     "Lost, are you?",
		MesExample:   "<START>{{user}}: hello\n{{char}}: Maps first, greetings later.",
		CreatorNotes: "Keep her clipped and practical.",
		Tags:         []string{"fantasy", "adventure"},
	}
}

func TestCharacterSetField(t *testing.T) {
	var c Character

	require.True(t, c.SetField("name", "Mira"))
	assert.Equal(t, "Mira", c.Name)

	require.True(t, c.SetField("first_mes", "Hello."))
	assert.Equal(t, "Hello.", c.FirstMes)

	assert.False(t, c.SetField("not_a_field", "x"))
}

func TestCharacterField_TagsJoined(t *testing.T) {
	c := Character{Tags: []string{"a", "b"}}
	assert.Equal(t, "a, b", c.Field("tags"))
	assert.Equal(t, "", c.Field("unknown"))
}

func TestCharacterMissingFields(t *testing.T) {
	var c Character
	missing := c.MissingFields()
	assert.Len(t, missing, len(RequiredFields))
	assert.False(t, c.Complete())

	c = fullCharacter()
	assert.Empty(t, c.MissingFields())
	assert.True(t, c.Complete())
}

func TestCharacterMissingFields_PartialOrder(t *testing.T) {
	c := fullCharacter()
	c.Scenario = ""
	c.Tags = nil

	missing := c.MissingFields()
	assert.Equal(t, []string{"scenario", "tags"}, missing)
	assert.False(t, c.Complete())
}
