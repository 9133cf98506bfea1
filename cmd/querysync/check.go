package main

import (
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration file",
		Long:  `Load querysync.json, validate the declared schema and defaults, and report the result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			sch, err := cfg.Schema()
			if err != nil {
				return err
			}
			if _, err := cfg.DecodedDefaults(sch); err != nil {
				return err
			}

			success("%s is valid", cfg.Path())
			for _, name := range sch.Names() {
				kind, _ := sch.Kind(name)
				info("%s: %s", name, kind)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to querysync.json (default: search from cwd)")

	return cmd
}
