package main

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/clients"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/tui"
)

func watchCmd() *cobra.Command {
	var (
		serverURL string
		interval  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the live dashboard of a running server in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if serverURL == "" {
				serverURL = fmt.Sprintf("http://localhost:%s", viper.GetString("port"))
			}
			client := clients.NewDashboardClient(serverURL, interval)

			p := tea.NewProgram(tui.NewModel(client.State, interval),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("watch failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "url", "", "dashboard server URL (default http://localhost:<port>)")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "refresh interval")
	return cmd
}
