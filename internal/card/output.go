package card

// GenerationOutput bundles the two linked artifacts a session produces.
type GenerationOutput struct {
	Character Character `json:"character"`
	Worldbook Worldbook `json:"worldbook"`
}

func NewGenerationOutput() *GenerationOutput {
	return &GenerationOutput{
		Character: Character{Tags: []string{}, AlternateGreetings: []string{}},
		Worldbook: Worldbook{Entries: []WorldbookEntry{}},
	}
}

// Complete reports whether the output satisfies both the character field
// requirement and every worldbook invariant.
func (o *GenerationOutput) Complete() bool {
	if o == nil {
		return false
	}
	return o.Character.Complete() && o.Worldbook.Validate() == nil
}

// Clone returns a deep copy. The engine hands copies to callers so a live
// session's in-progress output cannot be mutated from outside.
func (o *GenerationOutput) Clone() *GenerationOutput {
	if o == nil {
		return nil
	}
	out := &GenerationOutput{Character: o.Character, Worldbook: Worldbook{Name: o.Worldbook.Name}}
	out.Character.Tags = append([]string(nil), o.Character.Tags...)
	out.Character.AlternateGreetings = append([]string(nil), o.Character.AlternateGreetings...)
	out.Worldbook.Entries = make([]WorldbookEntry, len(o.Worldbook.Entries))
	for i, e := range o.Worldbook.Entries {
		e.Keys = append([]string(nil), e.Keys...)
		e.KeySecondary = append([]string(nil), e.KeySecondary...)
		out.Worldbook.Entries[i] = e
	}
	return out
}
