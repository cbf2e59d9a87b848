package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/truemoder/truemoder/automod/keyword"
	"github.com/truemoder/truemoder/automod/setstore"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:  "kw-cli",
		Usage: "informal debugging CLI tool for word list matching",
	}
	app.Commands = []*cli.Command{
		&cli.Command{
			Name:   "tokens",
			Usage:  "reads lines of text from stdin, prints the tokens each line is split in to",
			Action: runTokens,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "skip-masks",
					Usage: "join words broken up by masking characters",
				},
			},
		},
		&cli.Command{
			Name:   "classify",
			Usage:  "reads lines of text from stdin, runs the word list classifier, outputs matches",
			Action: runClassify,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "json-set-file",
					Usage:    "path to JSON file containing word sets",
					Required: true,
				},
				&cli.BoolFlag{
					Name:  "block-links",
					Usage: "whether links count as matches",
				},
			},
		},
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(h))
	if err := app.Run(os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(-1)
	}
}

func runTokens(cctx *cli.Context) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		var tokens []string
		if cctx.Bool("skip-masks") {
			tokens = keyword.TokenizeTextSkippingMasks(line)
		} else {
			tokens = keyword.TokenizeText(line)
		}
		fmt.Printf("%s\t%s\n", strings.Join(tokens, " "), line)
	}
	return scanner.Err()
}

func runClassify(cctx *cli.Context) error {
	sets := setstore.NewMemSetStore()
	sets.Normalize = keyword.NormalizeToken
	if err := sets.LoadFromFileJSON(cctx.String("json-set-file")); err != nil {
		return err
	}
	c := keyword.NewClassifier(sets)
	c.BlockLinks = cctx.Bool("block-links")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if tok := c.Match(line); tok != "" {
			fmt.Printf("MATCH\t%s\t%s\n", tok, line)
		}
	}
	return scanner.Err()
}
