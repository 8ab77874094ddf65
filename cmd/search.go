package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rubiojr/amosearch/pkg/config"
	"github.com/rubiojr/amosearch/pkg/search"
	"github.com/urfave/cli/v3"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Load the results for a search page URL or query string",
		ArgsUsage: "<url|query>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "app",
				Usage: "Client application to search for (overrides client_app)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the view props as JSON",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return searchLocation(ctx, c.String("config"), c.Args().First(), c.String("app"), c.Bool("json"))
		},
	}
}

// searchLocation loads a location once and prints what a search page would show
func searchLocation(ctx context.Context, configPath, rawLocation, app string, asJSON bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if app != "" {
		cfg.ClientApp = app
	}

	loc, err := parseLocation(rawLocation)
	if err != nil {
		return err
	}

	sess, err := newSession(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout.Duration)
	defer cancel()
	outcome, err := search.Wait(ctx, search.LoadIfNeeded(ctx, loc, sess.store.State(), sess.dispatcher))
	if err != nil {
		return fmt.Errorf("waiting for search: %w", err)
	}

	props := search.DeriveViewProps(sess.store.State(), loc.Query)
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(props)
	}

	switch {
	case outcome == search.OutcomeSkipped:
		fmt.Println(noDataStyle.Render("Nothing to search for"))
	case !props.HasSearchParams:
		fmt.Println(noDataStyle.Render("No search parameters given"))
	case props.Search == nil:
		fmt.Println(noDataStyle.Render("The loaded results do not match this location"))
		fmt.Println(formatFilters(sess.store.State().Search.Filters))
	default:
		fmt.Println(formatSearch(*props.Search))
	}

	if outcome == search.OutcomeFailed {
		return fmt.Errorf("search failed for %s", formatFilters(sess.store.State().Search.Filters))
	}
	return nil
}

// BrowseCommand creates the browse command
func BrowseCommand() *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Load a category page",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "app",
				Usage: "Client application of the category page",
				Value: config.DefaultClientApp,
			},
			&cli.StringFlag{
				Name:     "type",
				Usage:    "Add-on type, e.g. extension or statictheme",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "category",
				Usage:    "Category slug",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "page",
				Usage: "Result page",
				Value: 1,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			params := search.RouteParams{
				Application: c.String("app"),
				AddonType:   c.String("type"),
				Slug:        c.String("category"),
			}
			return browseCategory(ctx, c.String("config"), params, c.Int("page"))
		},
	}
}

// browseCategory loads and prints one category page
func browseCategory(ctx context.Context, configPath string, params search.RouteParams, page int) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sess, err := newSession(cfg)
	if err != nil {
		return err
	}

	loc, err := parseLocation(fmt.Sprintf("page=%d", page))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout.Duration)
	defer cancel()
	ch := search.LoadByCategoryIfNeeded(ctx, loc, params, sess.store.State(), sess.dispatcher)
	outcome, err := search.Wait(ctx, ch)
	if err != nil {
		return fmt.Errorf("waiting for category: %w", err)
	}

	fmt.Println(formatSearch(sess.store.State().Search))
	if outcome == search.OutcomeFailed {
		return fmt.Errorf("loading category %s/%s failed", params.AddonType, params.Slug)
	}
	return nil
}
