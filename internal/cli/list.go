package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/recyc-cli/recyc/internal/trash"
)

const timeFormat = "2006-01-02 15:04:05"

// List shows the files currently in the recycle bin
func (c *CLI) List() error {
	slog.Debug("cli.list started")
	defer slog.Debug("cli.list finished")

	files, err := c.manager.List()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("the recycle bin is empty")
		return nil
	}

	switch c.config.List.Format {
	case "plain":
		c.printPlain(files)
	default:
		c.printTable(files)
	}
	return nil
}

func (c *CLI) printTable(files []*trash.File) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Deleted From", "Deleted At"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, file := range files {
		table.Append([]string{file.Name, file.OriginalPath, c.formatTime(file.DeletedAt)})
	}
	table.Render()
}

func (c *CLI) printPlain(files []*trash.File) {
	header := color.New(color.FgHiGreen).SprintfFunc()
	row := color.New(color.FgWhite).SprintfFunc()

	fmt.Printf("%s %s %s\n",
		header("%-25s", "Name"),
		header("%-40s", "Deleted From"),
		header("%-20s", "Deleted At"),
	)
	for _, file := range files {
		fmt.Printf("%s %s %s\n",
			row("%-25s", file.Name),
			row("%-40s", file.OriginalPath),
			row("%-20s", c.formatTime(file.DeletedAt)),
		)
	}
}

func (c *CLI) formatTime(t time.Time) string {
	if c.config.List.RelativeTime {
		return humanize.Time(t)
	}
	return t.Local().Format(timeFormat)
}
