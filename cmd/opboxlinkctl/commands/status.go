package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/osu-uwrt/opboxlink/cmd/opboxlinkctl/cmdutil"
	"github.com/osu-uwrt/opboxlink/internal/cli/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the link's connection state and Field Store snapshot",
	Long: `Query a running opboxlinkd's diagnostic HTTP surface for its
connection state (/healthz) and current Field Store values (/status).

Examples:
  # Check status of the local daemon
  opboxlinkctl status

  # Check a remote daemon, as JSON
  opboxlinkctl status --address http://robot.local:8090 -o json`,
	RunE: runStatus,
}

// fieldRow mirrors internal/httpapi's /status response entry: Value is
// already the field's decoded semantic value (e.g. "KILLED", "WARN"), not
// raw wire bytes.
type fieldRow struct {
	Field     string    `json:"field" yaml:"field"`
	Value     string    `json:"value" yaml:"value"`
	WriteTime time.Time `json:"write_time" yaml:"write_time"`
}

// fieldTable adapts a /status response into output.TableRenderer.
type fieldTable struct {
	connected bool
	fields    []fieldRow
}

func (t fieldTable) Headers() []string { return []string{"FIELD", "VALUE", "WRITE TIME"} }

func (t fieldTable) Rows() [][]string {
	rows := make([][]string, 0, len(t.fields))
	for _, f := range t.fields {
		rows = append(rows, []string{f.Field, f.Value, f.WriteTime.Format(time.RFC3339)})
	}
	return rows
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	connected, err := fetchConnected(client, cmdutil.Flags.Address)
	if err != nil {
		return fmt.Errorf("fetch /healthz: %w", err)
	}

	var fields []fieldRow
	if err := fetchJSON(client, cmdutil.Flags.Address+"/status", &fields); err != nil {
		return fmt.Errorf("fetch /status: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, map[string]any{"connected": connected, "fields": fields})
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, map[string]any{"connected": connected, "fields": fields})
	default:
		printer := output.NewPrinter(os.Stdout, output.FormatTable, !cmdutil.Flags.NoColor)
		if connected {
			printer.Success(fmt.Sprintf("connected: %v", connected))
		} else {
			printer.Error(fmt.Sprintf("connected: %v", connected))
		}
		return printer.Print(fieldTable{connected: connected, fields: fields})
	}
}

func fetchConnected(client *http.Client, address string) (bool, error) {
	var body struct {
		Connected bool `json:"connected"`
	}
	if err := fetchJSON(client, address+"/healthz", &body); err != nil {
		return false, err
	}
	return body.Connected, nil
}

func fetchJSON(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
