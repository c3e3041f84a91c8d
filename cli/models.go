package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mic/provider"
)

var modelsInstalled bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the supported models",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		providers := provider.InitializeProviders(cfg)
		registry := provider.NewModelRegistry(cfg.Models, providers)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tPROVIDER\tAVAILABLE")
		for _, m := range registry.Models() {
			marker := ""
			if m.ID == cfg.DefaultModel {
				marker = " (default)"
			}
			_, ok := providers[m.Provider]
			fmt.Fprintf(w, "%s%s\t%s\t%t\n", m.ID, marker, m.Provider, ok)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if !modelsInstalled {
			return nil
		}
		ids := make([]string, 0, len(providers))
		for id := range providers {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			list, err := providers[id].ListModels(cmd.Context())
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", id, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s (%d models)\n", id, len(list))
			for _, m := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", m.Name)
			}
		}
		return nil
	},
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Check that the configured providers are reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		providers := provider.InitializeProviders(cfg)

		ids := make([]string, 0, len(providers))
		for id := range providers {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tMODEL\tSTATUS")
		for _, id := range ids {
			status := "ok"
			if err := providers[id].Ping(cmd.Context()); err != nil {
				status = err.Error()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", id, providers[id].GetModel(), status)
		}
		return w.Flush()
	},
}

func init() {
	modelsCmd.Flags().BoolVar(&modelsInstalled, "installed", false, "also list the models each provider reports")
	rootCmd.AddCommand(modelsCmd, providersCmd)
}
