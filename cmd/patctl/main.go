package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/stevnnyee/thinkStruct-search-engine/internal/corpus"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/search/filter"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/search/query"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/domain/search/result"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/index"
	searchuc "github.com/stevnnyee/thinkStruct-search-engine/internal/usecase/search"
)

func main() {
	app := &cli.App{
		Name:  "patctl",
		Usage: "Query a patent corpus from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Directory containing patents_ipa*.json batch files",
				Value:   "data",
			},
			&cli.IntFlag{
				Name:  "ngram-max",
				Usage: "Largest n-gram to index (1 or 2)",
				Value: 2,
			},
			&cli.IntFlag{
				Name:  "min-doc-freq",
				Usage: "Drop terms appearing in fewer documents",
				Value: 2,
			},
			&cli.IntFlag{
				Name:  "max-features",
				Usage: "Vocabulary size cap (0 = unlimited)",
				Value: 3000,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log corpus loading and index construction",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Rank patents against a free-text query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of results to return",
						Value:   5,
					},
				},
			},
			{
				Name:      "similar",
				Usage:     "Find patents similar to an existing one",
				ArgsUsage: "<patent-id>",
				Action:    similarCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of results to return",
						Value:   5,
					},
				},
			},
			{
				Name:      "hybrid",
				Usage:     "Rank patents against a query, then filter by metadata",
				ArgsUsage: "<query>",
				Action:    hybridCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of results to return",
						Value:   5,
					},
					&cli.StringFlag{
						Name:  "classification",
						Usage: "Keep only patents whose classification starts with this prefix",
					},
					&cli.StringFlag{
						Name:  "title-keywords",
						Usage: "Keep only patents whose title contains every word",
					},
					&cli.StringFlag{
						Name:  "specific-title",
						Usage: "Keep only patents whose title contains this phrase",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Print corpus and index statistics",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newService loads the corpus and builds the index in-process.
func newService(c *cli.Context) (*searchuc.Service, error) {
	logger := zap.NewNop()
	if c.Bool("verbose") {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
	}

	loader := corpus.NewLoader(c.String("data"), corpus.WithLogger(logger))
	svc := searchuc.New(loader,
		index.Config{
			NGramMax:    c.Int("ngram-max"),
			MinDocFreq:  c.Int("min-doc-freq"),
			MaxFeatures: c.Int("max-features"),
		},
		searchuc.WithLogger(logger),
	)
	if err := svc.Reload(context.Background()); err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return svc, nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: patctl search <query>")
	}

	svc, err := newService(c)
	if err != nil {
		return err
	}

	q, err := query.NewText(c.Args().First(), c.Int("top-k"))
	if err != nil {
		return err
	}
	hits, err := svc.SearchText(context.Background(), q)
	if err != nil {
		return err
	}

	printHits(hits)
	return nil
}

func similarCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: patctl similar <patent-id>")
	}

	svc, err := newService(c)
	if err != nil {
		return err
	}

	q, err := query.NewSimilar(c.Args().First(), c.Int("top-k"))
	if err != nil {
		return err
	}
	hits, err := svc.FindSimilar(context.Background(), q)
	if err != nil {
		return err
	}

	printHits(hits)
	return nil
}

func hybridCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: patctl hybrid <query>")
	}

	svc, err := newService(c)
	if err != nil {
		return err
	}

	filters := filter.NewExpression(
		c.String("classification"),
		c.String("title-keywords"),
		c.String("specific-title"),
	)
	q, err := query.NewHybrid(c.Args().First(), c.Int("top-k"), filters)
	if err != nil {
		return err
	}
	hits, err := svc.HybridSearch(context.Background(), q)
	if err != nil {
		return err
	}

	printHits(hits)
	return nil
}

func statsCommand(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("documents:        %d\n", stats.Documents)
	fmt.Printf("vocabulary terms: %d\n", stats.VocabularyTerms)
	fmt.Println("field coverage:")
	for field, ratio := range stats.FieldCoverage {
		fmt.Printf("  %-24s %.1f%%\n", field, ratio*100)
	}
	return nil
}

func printHits(hits []result.ScoredResult) {
	if len(hits) == 0 {
		fmt.Println("no results")
		return
	}
	for _, h := range hits {
		fmt.Printf("%-6s %s (%.4f) %s\n", h.Risk().String()+":", h.ID(), h.Score(), h.Title())
	}
}
