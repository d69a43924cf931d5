package main

import (
	"conquest/domain"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

type Config struct {
	// VIEWER_SERVER_URL points at the debug server of a running instance
	ServerURL string `envconfig:"VIEWER_SERVER_URL" default:"http://localhost:8081"`
	// VIEWER_COLOURS enables colorized output for better readability
	Colours bool `envconfig:"VIEWER_COLOURS" default:"true"`
}

func main() {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	stats, err := fetch[map[string]any](cfg.ServerURL + "/stats")
	if err != nil {
		log.Fatalf("Failed to fetch stats: %v", err)
	}
	rooms, err := fetch[[]domain.Snapshot](cfg.ServerURL + "/rooms")
	if err != nil {
		log.Fatalf("Failed to fetch rooms: %v", err)
	}

	header := fmt.Sprintf("  ====== conquest @ %s ======", cfg.ServerURL)
	if cfg.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Println(header)
	fmt.Printf("sessions=%v rooms=%v pendingBids=%v ticks=%v uptime=%v\n\n",
		stats["sessions"], stats["rooms"], stats["pendingBids"], stats["ticks"], stats["uptime"])

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Room", "Size", "Users", "Occupied", "Value", "Turns Left", "Completed"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	rows := lo.Map(rooms, func(room domain.Snapshot, _ int) []string {
		occupied := lo.CountBy(room.Cells, func(c domain.Cell) bool { return c.Occupied })
		return []string{
			string(room.ID),
			fmt.Sprintf("%dx%d", room.Width, room.Height),
			strconv.Itoa(len(room.Users)),
			fmt.Sprintf("%d/%d", occupied, len(room.Cells)),
			strconv.Itoa(room.Value),
			strconv.Itoa(room.TurnsLeft),
			strconv.FormatBool(room.Completed),
		}
	})
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
}

func fetch[T any](url string) (T, error) {
	var out T
	resp, err := http.Get(url)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("unexpected status %s", resp.Status)
	}
	err = json.NewDecoder(resp.Body).Decode(&out)
	return out, err
}
