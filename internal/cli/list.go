package cli

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/studiowebux/marketcli/internal/catalog"
	"github.com/studiowebux/marketcli/internal/converter"
	"github.com/studiowebux/marketcli/internal/highlight"
	"github.com/studiowebux/marketcli/internal/output"
	"github.com/studiowebux/marketcli/internal/session"
)

// ListOptions contains options for listing the catalog
type ListOptions struct {
	Search string // fuzzy match on endpoint names
	Market string // spot, futures or empty for both
	Output string // table, json, yaml
}

// endpointList renders as a table of the catalog
type endpointList []catalog.Endpoint

func (l endpointList) TableData() output.Data {
	caser := cases.Title(language.English)
	rows := make([][]string, 0, len(l))
	for _, ep := range l {
		rows = append(rows, []string{ep.Name, caser.String(string(ep.Market)), ep.Method, ep.Path, paramSummary(ep)})
	}
	return output.Data{
		Headers: []string{"Name", "Market", "Method", "Path", "Params"},
		Rows:    rows,
	}
}

// paramSummary lists parameter names, marking required ones with *
func paramSummary(ep catalog.Endpoint) string {
	if len(ep.Params) == 0 {
		return "-"
	}
	names := make([]string, 0, len(ep.Params))
	for _, p := range ep.Params {
		if p.Required {
			names = append(names, p.Name+"*")
		} else {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}

func parseMarket(market string) (catalog.Market, error) {
	switch m := catalog.Market(strings.ToLower(market)); m {
	case "", catalog.MarketSpot, catalog.MarketFutures:
		return m, nil
	default:
		return "", fmt.Errorf("unknown market %q (use spot or futures)", market)
	}
}

// List prints the catalog, optionally narrowed by market and fuzzy search
func List(env *Env, opts ListOptions) error {
	format, err := env.format(opts.Output)
	if err != nil {
		return err
	}
	market, err := parseMarket(opts.Market)
	if err != nil {
		return err
	}

	endpoints := catalog.All()
	if market != "" {
		endpoints = catalog.ByMarket(market)
	}
	if opts.Search != "" {
		endpoints = catalog.SearchIn(endpoints, opts.Search)
	}

	if format == output.FormatTable {
		return env.write(format, endpointList(endpoints))
	}
	return env.write(format, endpoints)
}

// Show prints one endpoint with its parameters and default request
func Show(env *Env, name, format string) error {
	f, err := env.format(format)
	if err != nil {
		return err
	}
	ep, err := catalog.Find(name)
	if err != nil {
		return err
	}

	entry := converter.NewDocument(env.Settings.BaseURL, []catalog.Endpoint{ep}).Endpoints[0]
	if f != output.FormatTable {
		return env.write(f, entry)
	}

	fmt.Fprintf(env.Out, "%s (%s)\n", ep.Name, ep.Market)
	fmt.Fprintf(env.Out, "%s %s\n\n", ep.Method, ep.Path)
	fmt.Fprintf(env.Out, "%s\n\n", ep.Description)

	if len(ep.Params) > 0 {
		rows := make([][]string, 0, len(ep.Params))
		for _, p := range ep.Params {
			required := "no"
			if p.Required {
				required = "yes"
			}
			def := p.Default
			if def == "" {
				def = "-"
			}
			rows = append(rows, []string{p.Name, string(p.Kind), required, def, p.Description})
		}
		if err := env.write(output.FormatTable, output.Data{
			Headers: []string{"Param", "Kind", "Required", "Default", "Description"},
			Rows:    rows,
		}); err != nil {
			return err
		}
		fmt.Fprintln(env.Out)
	}

	fmt.Fprintf(env.Out, "URL:  %s\n", entry.URL)
	fmt.Fprintf(env.Out, "curl: %s\n", env.command(entry.Curl))
	return nil
}

// Curl prints the curl command for an endpoint with overrides applied
func Curl(env *Env, name string, sets []string) error {
	s := session.New(env.Settings.BaseURL)
	if err := s.Select(name); err != nil {
		return err
	}
	if err := applySets(s, sets); err != nil {
		return err
	}
	fmt.Fprintln(env.Out, env.command(s.Command()))
	return nil
}

func (e *Env) command(cmd string) string {
	if !e.Color {
		return cmd
	}
	return highlight.Command(cmd, e.Settings.Theme)
}
