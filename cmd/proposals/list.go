package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/proposal-tracker/cmd"
	"github.com/cristianoliveira/proposal-tracker/internal/config"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/format"
	"github.com/cristianoliveira/proposal-tracker/internal/view"
)

type listClient interface {
	Proposals(ctx context.Context) ([]domain.Proposal, error)
	Now() time.Time
	ItemsPerPage() int
	SortPreference() domain.SortOptions
}

const listCommandLong = `List proposals with filters, sorting and pagination.

USAGE:
    proposals list [OPTIONS]

OPTIONS:
    --archived           List archived proposals instead of active ones
    --search <text>      Match client names (case insensitive)
    --period <preset>    all, today, last-7, last-30, last-3-months, last-12-months,
                         this-month, mtd, qtd or ytd
    --from <date>        Sent on or after date (YYYY-MM-DD)
    --to <date>          Sent on or before date
    --min <value>        Value at least, as 1234.56 or 1.234,56
    --max <value>        Value at most
    --sort <field>       clientName, sentDate, value, status, lastFollowUp, expectedReturnDate
    --order <order>      asc or desc (default asc)
    --page <n>           Page to show (default 1)
    --format <format>    table (default), simple or json
    -h, --help           Show this help

Without --sort the last sort chosen in the TUI is used.`

// ListOptions are the flags of the list command.
type ListOptions struct {
	Archived bool
	Search   string
	Period   string
	From     string
	To       string
	Min      string
	Max      string
	Sort     string
	Order    string
	Page     int
	Format   string
}

// NewListCmd creates the list command with explicit dependencies.
func NewListCmd(client listClient) *cobra.Command {
	if client == nil {
		panic("NewListCmd: client dependency cannot be nil")
	}

	var opts ListOptions
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List proposals with filters and formats",
		Long:  listCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return PrintList(cmd.Context(), cmd.OutOrStdout(), client, opts)
		},
	}

	flags := listCmd.Flags()
	flags.BoolVar(&opts.Archived, "archived", false, "List archived proposals")
	flags.StringVar(&opts.Search, "search", "", "Match client names")
	flags.StringVar(&opts.Period, "period", "", "Period preset")
	flags.StringVar(&opts.From, "from", "", "Sent on or after date")
	flags.StringVar(&opts.To, "to", "", "Sent on or before date")
	flags.StringVar(&opts.Min, "min", "", "Minimum value")
	flags.StringVar(&opts.Max, "max", "", "Maximum value")
	flags.StringVar(&opts.Sort, "sort", "", "Sort field")
	flags.StringVar(&opts.Order, "order", "", "Sort order: asc or desc")
	flags.IntVar(&opts.Page, "page", 1, "Page to show")
	flags.StringVar(&opts.Format, "format", string(format.FormatterTypeTable), "Output format: table, simple or json")
	return listCmd
}

// PrintList fetches the proposals and writes the requested page.
func PrintList(ctx context.Context, w io.Writer, client listClient, opts ListOptions) error {
	formatterType, err := format.ParseFormatterType(opts.Format)
	if err != nil {
		return err
	}
	now := client.Now()
	pipeline, err := buildPipeline(opts, client.ItemsPerPage(), client.SortPreference(), now)
	if err != nil {
		return err
	}

	proposals, err := client.Proposals(ctx)
	if err != nil {
		return err
	}
	result := pipeline.Apply(proposals)

	formatter := format.NewFormatter(formatterType, now, config.Get("table_format", format.TableStyleDefault))
	if err := formatter.FormatProposals(result.Rows, w); err != nil {
		return err
	}
	if formatterType == format.FormatterTypeTable && len(result.Ordered) > 0 {
		_, err = fmt.Fprintf(w, "Page %d of %d (%d proposals)\n", result.Page, result.TotalPages, len(result.Ordered))
	}
	return err
}

func buildPipeline(opts ListOptions, itemsPerPage int, sort domain.SortOptions, now time.Time) (*view.Pipeline, error) {
	if opts.Sort != "" {
		field, err := domain.ParseSortByField(opts.Sort)
		if err != nil {
			return nil, err
		}
		sort.Field = field
		sort.Order = domain.SortOrderAsc
	}
	if opts.Order != "" {
		order, err := domain.ParseSortOrder(strings.ToLower(opts.Order))
		if err != nil {
			return nil, err
		}
		sort.Order = order
	}

	p := view.New(itemsPerPage, sort)
	p.SetArchived(opts.Archived)
	if opts.Period != "" {
		preset, err := domain.ParsePeriodPreset(opts.Period)
		if err != nil {
			return nil, err
		}
		if err := p.ApplyPeriod(preset, now); err != nil {
			return nil, err
		}
	}
	if opts.From != "" {
		p.SetDateStart(opts.From)
	}
	if opts.To != "" {
		p.SetDateEnd(opts.To)
	}
	p.SetValueMin(opts.Min)
	p.SetValueMax(opts.Max)
	if err := p.Filter.Validate(); err != nil {
		return nil, err
	}
	p.SetSearch(opts.Search)
	p.GoTo(opts.Page)
	return p, nil
}

func init() {
	cmd.RootCmd.AddCommand(NewListCmd(client))
}
