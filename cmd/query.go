package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/boulevard/internal/delivery"
)

var queryCmd = &cobra.Command{
	Use:   "query [type]",
	Short: "List content items from the configured content source",
	Long: `Runs one listing query against the content source and prints the matching
items. Filters use the Delivery API form, e.g. --filter elements.url_slug=booking-trends
or --filter "system.codename[in]=home,blog".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringArray("filter", nil, "filter in field=value form (repeatable)")
	queryCmd.Flags().String("lang", "", "language codename (defaults to config)")
	queryCmd.Flags().StringSlice("collection", nil, "restrict to collections")
	queryCmd.Flags().Int("limit", 0, "maximum number of items")
	queryCmd.Flags().Int("depth", 1, "linked item depth")
	queryCmd.Flags().Bool("preview", false, "read unpublished content")
	queryCmd.Flags().Bool("json", false, "output items as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rawFilters, _ := cmd.Flags().GetStringArray("filter")
	lang, _ := cmd.Flags().GetString("lang")
	collections, _ := cmd.Flags().GetStringSlice("collection")
	limit, _ := cmd.Flags().GetInt("limit")
	depth, _ := cmd.Flags().GetInt("depth")
	preview, _ := cmd.Flags().GetBool("preview")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if lang == "" {
		lang = cfg.DefaultLanguage
	}

	q := delivery.Query{
		Language:    lang,
		Collections: collections,
		Limit:       limit,
		Depth:       depth,
		Preview:     preview,
	}
	if len(args) == 1 {
		q.Type = args[0]
	}
	for _, raw := range rawFilters {
		f, err := delivery.ParseFilter(raw)
		if err != nil {
			return err
		}
		q.Filters = append(q.Filters, f)
	}

	client, _, err := createQuerierFromConfig(cfg, zap.NewNop())
	if err != nil {
		return err
	}

	items, err := client.Query(ctx, q)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if jsonOutput {
		return printItemsJSON(items)
	}

	if len(items) == 0 {
		fmt.Println("No items found.")
		return nil
	}
	printItemsTable(items)
	return nil
}

type itemJSON struct {
	System   delivery.System             `json:"system"`
	Elements map[string]delivery.Element `json:"elements"`
	Linked   []string                    `json:"linked,omitempty"`
}

func printItemsJSON(items []*delivery.Item) error {
	out := make([]itemJSON, 0, len(items))
	for _, it := range items {
		linked := make([]string, 0, len(it.Linked))
		for codename := range it.Linked {
			linked = append(linked, codename)
		}
		sort.Strings(linked)
		out = append(out, itemJSON{System: it.System, Elements: it.Elements, Linked: linked})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printItemsTable(items []*delivery.Item) {
	fmt.Printf("Found %d items:\n\n", len(items))
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODENAME\tTYPE\tLANGUAGE\tCOLLECTION\tMODIFIED\tNAME")
	for _, it := range items {
		s := it.System
		modified := "-"
		if !s.LastModified.IsZero() {
			modified = s.LastModified.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Codename, s.Type, s.Language, s.Collection, modified, truncate(s.Name, 40))
	}
	tw.Flush()

	var elements []string
	for name := range items[0].Elements {
		elements = append(elements, name)
	}
	sort.Strings(elements)
	if len(elements) > 0 {
		fmt.Printf("\nElements of %s: %s\n", items[0].System.Codename, strings.Join(elements, ", "))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
