package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/foodshare/internal/catalog"
	"github.com/xiaot623/gogo/foodshare/internal/study"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the catalog and study configuration without serving",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			studyCfg, err := study.LoadConfig(cfg.StudyConfig)
			if err != nil {
				return err
			}

			loader := catalog.NewLoader(catalog.NewSource(cfg.CatalogSource), cfg.BaseLocation, nil)
			c, err := loader.Load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "catalog: %d listings, %d tags\n", c.Len(), len(c.Tags()))

			if err := studyCfg.Validate(c); err != nil {
				return err
			}
			trials, boundaries, err := studyCfg.Plan()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "study: participant %q, %d trials, methods %v, breaks before %v\n",
				studyCfg.Participant, len(trials), studyCfg.MethodOrder, boundaries)
			return nil
		},
	}
}
