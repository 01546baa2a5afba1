// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/poiesic/infobot"
	"github.com/poiesic/infobot/config"
	"github.com/urfave/cli/v2"
)

const defaultQuestion = "Tell me the history of IIUC."

func main() {
	app := newApp(&runner{stdout: os.Stdout, stderr: os.Stderr})
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// runner carries state shared by the commands of one invocation.
type runner struct {
	stdout  io.Writer
	stderr  io.Writer
	cfg     config.Config
	options []infobot.Option
}

func newApp(r *runner) *cli.App {
	return &cli.App{
		Name:      "infobot",
		Usage:     "Question answering over an indexed text corpus",
		Writer:    r.stdout,
		ErrWriter: r.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML or YAML config file",
				EnvVars: []string{"INFOBOT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log output format (text, json)",
			},
			&cli.StringFlag{
				Name:    "working-dir",
				Aliases: []string{"w"},
				Usage:   "Directory holding the index",
			},
		},
		Before: r.setup,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the query API over HTTP",
				Action: r.serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
					},
					&cli.StringFlag{
						Name:  "ingest-file",
						Usage: "Ingest this file before serving",
					},
					&cli.IntFlag{
						Name:  "max-async",
						Usage: "Maximum concurrent model calls",
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Split documents into chunks and index them",
				Action: r.ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "File to ingest (.txt, .md or .pdf)",
					},
					&cli.StringFlag{
						Name:  "glob",
						Usage: "Ingest every file under --root matching this pattern (e.g. \"**/*.md\")",
					},
					&cli.StringFlag{
						Name:  "root",
						Usage: "Directory searched by --glob",
						Value: ".",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk size in characters",
					},
					&cli.DurationFlag{
						Name:  "delay",
						Usage: "Pause after each inserted chunk",
					},
					&cli.IntFlag{
						Name:  "max-async",
						Usage: "Maximum concurrent model calls",
					},
				},
			},
			{
				Name:   "query",
				Usage:  "Ask one question and print the response envelope",
				Action: r.queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "question",
						Aliases: []string{"q"},
						Usage:   "Question to ask",
						Value:   defaultQuestion,
					},
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "Query mode (naive, local, global, hybrid)",
						Value:   "global",
					},
					&cli.BoolFlag{
						Name:  "sources",
						Usage: "Include the chunks used to answer",
					},
				},
			},
			{
				Name:   "modes",
				Usage:  "List the supported query modes",
				Action: r.modesCommand,
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate stored embeddings with the configured embedding model",
				Action: r.reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "target",
						Usage: "What to reembed (chunks, concepts, all)",
						Value: "all",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}
}
