package cmd

import (
	"fmt"
	"net/http"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
)

// monitorCmd renders live hub stats from a running server in the terminal.
func monitorCmd() *cli.Command {
	return &cli.Command{
		Name:    "monitor",
		Aliases: []string{"m"},
		Usage:   "Watch connection and presence stats of a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: "http://localhost:8087",
				Usage: "Base URL of the server to watch",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Value: 2 * time.Second,
				Usage: "Polling interval",
			},
		},
		Action: func(c *cli.Context) error {
			return runMonitor(c.String("addr"), c.Duration("interval"))
		},
	}
}

func runMonitor(baseURL string, interval time.Duration) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("monitor: init terminal: %w", err)
	}
	defer ui.Close()

	summary := widgets.NewParagraph()
	summary.Title = " awtc-realtime "
	summary.SetRect(0, 0, 60, 6)

	online := widgets.NewList()
	online.Title = " online users "
	online.SetRect(0, 6, 60, 20)

	client := &http.Client{Timeout: 5 * time.Second}

	refresh := func() {
		stats, err := fetchStats(client, baseURL)
		if err != nil {
			summary.Text = fmt.Sprintf("unreachable: %v", err)
			online.Rows = nil
		} else {
			summary.Text = fmt.Sprintf(
				"connections: %d\nonline (messaging): %d\nuptime: %s",
				stats.TotalConnections, stats.OnlineUsers, stats.Uptime.Round(time.Second))
			rows := make([]string, 0, len(stats.UserIDs))
			for _, id := range stats.UserIDs {
				rows = append(rows, fmt.Sprintf("user %d", id))
			}
			online.Rows = rows
		}
		ui.Render(summary, online)
	}
	refresh()

	events := ui.PollEvents()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case e := <-events:
			if e.ID == "q" || e.ID == "<C-c>" {
				return nil
			}
		case <-ticker.C:
			refresh()
		}
	}
}

func fetchStats(client *http.Client, baseURL string) (*model.HubStats, error) {
	resp, err := client.Get(baseURL + "/api/v1/stats")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var stats model.HubStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
