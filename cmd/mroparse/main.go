package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"mroparse/internal"
	"mroparse/internal/config"
	"mroparse/internal/connectors"
	gmailconnector "mroparse/internal/connectors/gmail"
	imapconnector "mroparse/internal/connectors/imap"
	"mroparse/internal/dataset"
	"mroparse/internal/lexicon"
	"mroparse/internal/listener"
	"mroparse/internal/pipeline"
	"mroparse/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path (html may be raw markup)")
		inType := fs.String("type", "", "xlsx|csv|html|pdf (default: by extension)")
		output := fs.String("output", "", "output path (.xlsx or .csv)")
		instruction := fs.String("instruction", "", "free-text processing instruction")
		simSep := fs.String("sim-separator", "", "space|dash|compact")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		processor, err := makeProcessor(db, cfg)
		must(err)
		opts := pipeline.ProcessOptions{
			Instruction: *instruction,
			OutputPath:  *output,
			SimStyle:    simStyleFlag(*simSep),
		}

		var res *pipeline.FileResult
		if strings.TrimSpace(*inType) == "" {
			res, err = processor.ProcessFile(*input, opts)
		} else {
			res, err = processor.ProcessInput(*inType, *input, opts)
		}
		must(err)

		run := res.Run
		fmt.Printf("instruction: %s\n", run.Instruction.Explanation)
		if run.Schema.Template != "" {
			fmt.Printf("layout template=%s archetype=%s threshold=%.3f\n",
				run.Schema.Template, run.Content.Archetype, run.Stats.Threshold)
		}
		fmt.Printf("run done job=%d rows=%d mfg_filled=%d pn_filled=%d sim_filled=%d corrections=%d low_confidence=%d issues=%d\n",
			res.JobID, run.Stats.Rows, run.Stats.Mfg.Filled, run.Stats.PN.Filled, run.Stats.SimFilled,
			len(run.Corrections), len(run.LowConfidence), len(run.Issues))
		fmt.Printf("output=%s qa=%s\n", res.OutputPath, res.QAPath)
	case "profile":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		processor, err := makeProcessor(db, cfg)
		must(err)
		report, err := processor.ProfileFile(*input)
		must(err)
		fmt.Println(report)
	case "train":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dir := fs.String("dir", "", "directory of completed workbooks")
		out := fs.String("out", cfg.TrainingPath, "training data output path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*dir) == "" {
			must(fmt.Errorf("--dir is required"))
		}

		existing, err := lexicon.LoadTraining(*out)
		must(err)
		lex := lexicon.Build(existing)
		miner := &lexicon.Miner{
			MapColumns: func(ds *dataset.Dataset) internal.RoleMap { return pipeline.MapColumns(ds, lex) },
			ReadFile:   pipeline.ReadDatasetFile,
		}
		trained, err := miner.MineDirectory(*dir, existing)
		must(err)
		must(lexicon.SaveTraining(trained, *out))
		fmt.Printf("training done files=%d rows=%d manufacturers=%d out=%s\n",
			trained.FilesProcessed, trained.TotalRowsAnalyzed, len(trained.KnownManufacturers), *out)
	case "lexicon:sync":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		mode := fs.String("mode", "delta", "full|delta")
		_ = fs.Parse(os.Args[2:])
		svc := lexicon.NewSyncService(db, cfg)
		var count int
		switch *mode {
		case "full":
			count, err = svc.FullSync(context.Background())
		case "delta":
			count, err = svc.DeltaSync(context.Background())
		default:
			err = fmt.Errorf("unsupported sync mode: %s", *mode)
		}
		must(err)
		fmt.Printf("lexicon sync complete mode=%s entries=%d\n", *mode, count)
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "imap", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d attachments=%d\n",
			*provider, result.Fetched, result.Stored, result.Attachments)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "imap", "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		processor, err := makeProcessor(db, cfg)
		must(err)
		if strings.TrimSpace(*messageID) != "" {
			res, err := processor.ProcessMailByProviderMessageID(*provider, *messageID)
			must(err)
			fmt.Printf("processed mail id=%d datasets=%d skipped=%t\n", res.MailID, res.Datasets, res.Skipped)
			return
		}
		mails, datasets, err := processor.ProcessPendingMail(*batch, *provider)
		must(err)
		fmt.Printf("processed pending mails=%d datasets=%d\n", mails, datasets)
	case "mail:listen":
		svc, err := listener.NewService(db, cfg)
		must(err)
		must(svc.Run(context.Background()))
	case "history:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max jobs")
		_ = fs.Parse(os.Args[2:])
		jobs, err := db.ListRecentJobs(*limit)
		must(err)
		for _, job := range jobs {
			fmt.Printf("job=%d at=%s file=%s pipeline=%s rows=%d mfg=%d pn=%d sim=%d issues=%d status=%s output=%s\n",
				job.ID, job.Timestamp, job.Filename, job.Pipeline, job.TotalRows,
				job.MfgFilled, job.PNFilled, job.SimFilled, job.IssuesCount, job.Status, job.OutputPath)
		}
	case "config:save":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("name", "", "configuration name")
		instruction := fs.String("instruction", "", "instruction text to save")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*name) == "" || strings.TrimSpace(*instruction) == "" {
			must(fmt.Errorf("--name and --instruction are required"))
		}
		parsed := pipeline.ParseInstruction(*instruction, nil)
		must(db.SaveConfig(*name, *instruction, string(parsed.Pipeline)))
		fmt.Printf("config saved name=%s pipeline=%s\n", *name, parsed.Pipeline)
	case "config:list":
		configs, err := db.ListConfigs()
		must(err)
		for _, c := range configs {
			fmt.Printf("config=%s pipeline=%s created=%s instruction=%q\n", c.Name, c.Pipeline, c.CreatedAt, c.Instruction)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func makeProcessor(db *storage.DB, cfg config.Config) (*pipeline.ProcessingService, error) {
	training, err := lexicon.LoadTraining(cfg.TrainingPath)
	if err != nil {
		return nil, err
	}
	return pipeline.NewProcessingService(db, cfg, lexicon.Build(training)), nil
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func simStyleFlag(value string) internal.SimStyle {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dash":
		return internal.SimDash
	case "compact":
		return internal.SimCompact
	case "space":
		return internal.SimSpace
	default:
		return ""
	}
}

func usage() {
	fmt.Println("usage: mroparse <command>")
	fmt.Println("commands:")
	fmt.Println("  run --input=... [--type=xlsx|csv|html|pdf] [--output=...] [--instruction=\"...\"] [--sim-separator=space|dash|compact]")
	fmt.Println("  profile --input=...")
	fmt.Println("  train --dir=./completed [--out=./data/training_data.json]")
	fmt.Println("  lexicon:sync --mode=full|delta")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  mail:process --provider=gmail|imap [--messageId=...] [--batch=20]")
	fmt.Println("  mail:listen")
	fmt.Println("  history:list [--limit=20]")
	fmt.Println("  config:save --name=... --instruction=\"...\"")
	fmt.Println("  config:list")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
