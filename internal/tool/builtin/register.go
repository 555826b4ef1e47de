package toolbuiltin

import (
	"github.com/stellarlinkco/lorewright/internal/search"
	"github.com/stellarlinkco/lorewright/internal/tool"
)

// RegisterAll installs every builtin tool into the registry. Called once at
// process start; re-registration replaces the earlier tools.
func RegisterAll(reg *tool.Registry, searchClient search.Client) error {
	tools := []tool.Tool{
		NewCharacterTool(),
		NewStatusTool(),
		NewUserSettingTool(),
		NewWorldViewTool(),
		NewSupplementTool(),
		NewSearchTool(searchClient),
		NewAskUserTool(),
		NewCompleteTool(),
	}
	for _, t := range tools {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}
