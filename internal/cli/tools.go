package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ytmcp/internal/schema"
)

var toolsJSON bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools this server exposes",
	RunE:  runTools,
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "emit the full definition set as JSON")
}

func runTools(_ *cobra.Command, _ []string) error {
	store, err := schema.Load()
	if err != nil {
		return fmt.Errorf("tool definitions: %w", err)
	}
	if toolsJSON {
		type entry struct {
			Name        string          `json:"name"`
			Description string          `json:"description"`
			InputSchema json.RawMessage `json:"inputSchema"`
		}
		out := make([]entry, 0, store.Len())
		for _, name := range store.Names() {
			tool, _ := store.Get(name)
			out = append(out, entry{Name: tool.Name, Description: tool.Description, InputSchema: tool.RawInput})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, name := range store.Names() {
		tool, _ := store.Get(name)
		fmt.Printf("%-16s %s\n", tool.Name, tool.Description)
	}
	return nil
}
