// Package versioncmder
package versioncmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/dispatch/pkg/utils"
)

type VersionCommander struct{}

func NewVersionCmd() *cobra.Command {
	cmder := &VersionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the version of this CLI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	return cmd
}

func (c *VersionCommander) run(cmd *cobra.Command) error {
	_, err := fmt.Fprint(cmd.OutOrStdout(), utils.BuildInfo())
	return err
}
