package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ramkansal/docfang/internal/profile"
)

// NewProfilesCmd creates the profiles command.
func NewProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the extraction profiles",
		Long: `List the platform keys docfang knows and the selectors each profile uses.

Profiles from the configuration file are included and replace built-in
profiles with the same key.`,
		Args: cobra.NoArgs,
		RunE: runProfilesCmd,
	}
}

func runProfilesCmd(cmd *cobra.Command, _ []string) error {
	noColor, _ := cmd.Flags().GetBool("no-color")

	file, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	registry, err := profile.NewRegistry(file.Profiles)
	if err != nil {
		return errors.Wrap(err, "configuration error")
	}

	out := cmd.OutOrStdout()
	for _, key := range registry.Keys() {
		def := registry.Lookup(key).Definition()
		name := key
		if key == profile.Generic {
			name += " (fallback)"
		}
		fmt.Fprintf(out, "  %s\n", clr(!noColor, "cyan", name))
		fmt.Fprintf(out, "    content:    %s\n", def.Content)
		fmt.Fprintf(out, "    title:      %s\n", def.Title)
		fmt.Fprintf(out, "    code:       %s\n", def.Code)
		fmt.Fprintf(out, "    navigation: %s\n", def.Nav)
		if def.API != "" {
			fmt.Fprintf(out, "    api:        %s\n", def.API)
		}
	}
	return nil
}
