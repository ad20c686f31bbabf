package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	fantasy11 "github.com/MrEthical07/fantasy11"
	otelexport "github.com/MrEthical07/fantasy11/metrics/export/otel"
	"github.com/MrEthical07/fantasy11/metrics/export/prometheus"
)

func money(v float64) string {
	return "₹" + strconv.FormatFloat(v, 'f', 2, 64)
}

func printProfile(w io.Writer, p *fantasy11.UserProfile) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id\t%s\n", p.ID)
	fmt.Fprintf(tw, "name\t%s\n", p.Name)
	fmt.Fprintf(tw, "email\t%s\n", p.Email)
	fmt.Fprintf(tw, "mobile\t%s\n", p.Mobile)
	fmt.Fprintf(tw, "wallet\t%s\n", money(p.WalletBalance))
	_ = tw.Flush()
}

func printMatches(w io.Writer, matches []fantasy11.Match) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matches")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFIXTURE\tDATE\tSTATUS\tSCORE")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%s vs %s\t%s\t%s\t%s\n", m.ID, m.Team1, m.Team2, m.MatchDate, m.Status, m.Score)
	}
	_ = tw.Flush()
}

func printLeagues(w io.Writer, leagues []fantasy11.League) {
	if len(leagues) == 0 {
		fmt.Fprintln(w, "No leagues")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRIZE\tENTRY\tTEAMS")
	for _, l := range leagues {
		entry := "Free"
		if l.EntryFee > 0 {
			entry = money(l.EntryFee)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\n", l.ID, l.Name, money(l.PrizePool), entry, l.TeamsCount, l.MaxTeams)
	}
	_ = tw.Flush()
}

func printTransactions(w io.Writer, txs []fantasy11.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "No transactions")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tDESCRIPTION")
	for _, t := range txs {
		sign := "+"
		if t.Type == fantasy11.TransactionDebit {
			sign = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s%s\t%s\n", t.CreatedAt, t.Type, sign, money(t.Amount), t.Description)
	}
	_ = tw.Flush()
}

func printMetrics(ctx context.Context, w io.Writer, format string, client *fantasy11.Client) error {
	switch format {
	case "prom", "prometheus":
		_, err := io.WriteString(w, prometheus.NewPrometheusExporter(client).Render())
		return err
	case "otel":
		return printOTel(ctx, w, client)
	}
	return fmt.Errorf("unknown metrics format %q", format)
}

func printOTel(ctx context.Context, w io.Writer, client *fantasy11.Client) error {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(ctx) }()

	exp, err := otelexport.NewOTelExporter(provider.Meter("fantasy11/cli"), client)
	if err != nil {
		return err
	}
	defer func() { _ = exp.Close() }()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return err
	}

	var lines []string
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					lines = append(lines, fmt.Sprintf("%s %d", m.Name, dp.Value))
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					label := ""
					if le, ok := dp.Attributes.Value("le"); ok {
						label = "{le=" + le.Emit() + "}"
					}
					lines = append(lines, fmt.Sprintf("%s%s %d", m.Name, label, dp.Value))
				}
			}
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
