package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kinreport/pkg/config"
	"github.com/matzehuels/kinreport/pkg/errors"
	"github.com/matzehuels/kinreport/pkg/history"
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	var (
		filter history.Filter
		server string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent renders",
		Long: `History lists render records newest first.

Records are read from the configured history backend. The memory backend
only lives inside a running server, so point --server at one to list its
records instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				recs []history.Record
				err  error
			)
			if server != "" {
				recs, err = fetchHistory(ctx, server, filter)
			} else {
				recs, err = c.listHistory(ctx, filter)
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(recs)
			}
			printHistory(recs)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.DNI, "dni", "", "only renders of this DNI")
	cmd.Flags().IntVarP(&filter.Limit, "limit", "n", history.DefaultLimit, "maximum records")
	cmd.Flags().StringVar(&server, "server", "", "base URL of a running kinreport server")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")

	return cmd
}

func (c *CLI) listHistory(ctx context.Context, f history.Filter) ([]history.Record, error) {
	if c.Config.History.Backend != config.HistoryMongo {
		printWarning("history backend is %q; nothing is kept between CLI runs (use --server)", c.Config.History.Backend)
		return nil, nil
	}
	store, err := newHistory(ctx, c.Config.History)
	if err != nil {
		return nil, err
	}
	defer store.Close(context.WithoutCancel(ctx))
	return store.List(ctx, f)
}

// fetchHistory reads GET /v1/history from a running server.
func fetchHistory(ctx context.Context, base string, f history.Filter) ([]history.Record, error) {
	if err := errors.ValidateURL(base); err != nil {
		return nil, err
	}
	q := url.Values{}
	if f.DNI != "" {
		q.Set("dni", f.DNI)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	u := strings.TrimRight(base, "/") + "/v1/history"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUpstreamUnavailable, err, "query %s", u)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrCodeUpstreamUnavailable, "query %s: status %d", u, resp.StatusCode)
	}

	var body struct {
		Records []history.Record `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUpstreamUnavailable, err, "decode history")
	}
	return body.Records, nil
}

func printHistory(recs []history.Record) {
	rows := historyRows(recs)
	printTable(fmt.Sprintf("Renders (%d)", len(recs)),
		[]string{"When", "DNI", "Artifact", "Relatives", "Size", "Time", "Result"},
		rows,
		func(row int) lipgloss.Style {
			if row < len(recs) && recs[row].Failed() {
				return StyleError
			}
			return lipgloss.NewStyle()
		})
}

func historyRows(recs []history.Record) [][]string {
	rows := make([][]string, len(recs))
	for i, r := range recs {
		result := "ok"
		switch {
		case r.Failed():
			result = r.ErrorCode
		case r.CacheHit:
			result = iconCached
		}
		rows[i] = []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.DNI,
			r.Kind + "/" + r.Format,
			strconv.Itoa(r.Relatives),
			formatBytes(r.Bytes),
			time.Duration(r.Duration).Round(time.Millisecond).String(),
			result,
		}
	}
	return rows
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
