// Package casper is the Jamf/Casper device feed. It pulls one or more
// saved computer reports over HTTP and merges them into one snapshot.
package casper

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"github.com/agentstation/assetsync/internal/transport"
	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/errors"
	"github.com/agentstation/assetsync/pkg/logging"
)

// Service is the name the feed carries in errors.
const Service = "casper"

// DefaultReportIDs are the saved computer reports read when none are configured.
var DefaultReportIDs = []int{38, 45}

// Config configures the Casper client.
type Config struct {
	// URL is the report endpoint prefix; the report ID is appended to it,
	// e.g. https://casper.example.edu:8443/JSSResource/computerreports/id/
	URL                string
	Username           string
	Password           string
	ReportIDs          []int
	InsecureSkipVerify bool
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.URL == "" {
		return errors.NewConfigError(Service, "url is required", nil)
	}
	if len(c.ReportIDs) == 0 {
		return errors.NewConfigError(Service, "at least one report id is required", nil)
	}
	return nil
}

// Client fetches device records from Casper.
type Client struct {
	cfg  Config
	http *transport.Client
}

// New creates a Casper client.
func New(cfg Config, opts ...transport.Option) (*Client, error) {
	if len(cfg.ReportIDs) == 0 {
		cfg.ReportIDs = DefaultReportIDs
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := []transport.Option{
		transport.WithService(Service),
		transport.WithInsecureSkipVerify(cfg.InsecureSkipVerify),
	}
	auth := &transport.BasicAuth{Username: cfg.Username, Password: cfg.Password}
	return &Client{
		cfg:  cfg,
		http: transport.New(auth, append(base, opts...)...),
	}, nil
}

// Feed implements sources.Source.
func (c *Client) Feed() assets.Feed { return assets.FeedCasper }

// Cleanup implements sources.Source.
func (c *Client) Cleanup() error { return nil }

// Fetch pulls every configured report and merges the rows. A device that
// appears in more than one report is kept once, from the first report.
func (c *Client) Fetch(ctx context.Context) ([]assets.SourceRecord, error) {
	logger := logging.Ctx(ctx)

	var out []assets.SourceRecord
	seen := make(map[string]bool)
	for _, id := range c.cfg.ReportIDs {
		records, err := c.FetchReport(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if rec.ExternalID != "" && seen[rec.ExternalID] {
				continue
			}
			seen[rec.ExternalID] = true
			out = append(out, rec)
		}
		logger.Debug().Int("report_id", id).Int("records", len(records)).Msg("fetched casper report")
	}
	return out, nil
}

// FetchReport pulls a single saved report.
func (c *Client) FetchReport(ctx context.Context, id int) ([]assets.SourceRecord, error) {
	var resp reportResponse
	if err := c.http.GetJSON(ctx, c.cfg.URL+strconv.Itoa(id), &resp); err != nil {
		return nil, errors.WrapResource("fetch", "casper report", strconv.Itoa(id), err)
	}

	out := make([]assets.SourceRecord, 0, len(resp.Computers))
	for _, row := range resp.Computers {
		out = append(out, row.record())
	}
	return out, nil
}

type reportResponse struct {
	Computers []computer `json:"computer_reports"`
}

// computer is one row of a saved computer report. Column names follow the
// report's display names with spaces replaced by underscores.
type computer struct {
	JSSComputerID      flexString `json:"JSS_Computer_ID"`
	SerialNumber       flexString `json:"Serial_Number"`
	ComputerName       flexString `json:"Computer_Name"`
	ProcessorType      flexString `json:"Processor_Type"`
	TotalRAMMB         flexString `json:"Total_RAM_MB"`
	MACAddress         flexString `json:"MAC_Address"`
	OperatingSystem    flexString `json:"Operating_System"`
	EmailAddress       flexString `json:"Email_Address"`
	WarrantyExpiration flexString `json:"Warranty_Expiration"`
	Make               flexString `json:"Make"`
	ModelIdentifier    flexString `json:"Model_Identifier"`
	Model              flexString `json:"Model"`
}

func (c computer) record() assets.SourceRecord {
	rec := assets.SourceRecord{
		Feed:            assets.FeedCasper,
		ExternalID:      string(c.JSSComputerID),
		SerialNumber:    string(c.SerialNumber),
		Hostname:        string(c.ComputerName),
		CPU:             string(c.ProcessorType),
		Memory:          string(c.TotalRAMMB),
		OperatingSystem: string(c.OperatingSystem),
		PrimaryUser:     string(c.EmailAddress),
		Vendor:          string(c.Make),
		Model:           string(c.ModelIdentifier),
		ModelName:       string(c.Model),
		Warranty:        string(c.WarrantyExpiration),
	}
	if mac := string(c.MACAddress); mac != "" {
		rec.Adapters = []assets.Adapter{{MAC: mac}}
	}
	return rec
}

// flexString decodes a JSON string, number, or null into a string.
// Report columns are typed by the server and IDs and RAM come back as numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(data)
	}
	return nil
}
