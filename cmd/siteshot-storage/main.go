package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/semmidev/siteshot-storage/internal/app"
	"github.com/semmidev/siteshot-storage/internal/config"
	"github.com/semmidev/siteshot-storage/internal/domain"
)

const usage = `Usage: siteshot-storage [-config path] <command> [flags]

Commands:
  setup                 ensure the storage container exists
  upload -job file      upload a job's output folder
  fetch  -job file      stage previous scan images and print the prepared job
  cat    -key key       write a stored object to stdout
  run                   ensure the container and run scheduled cache cleanup
`

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v\n", err)
	}
}

func run() error {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return errors.New("missing command")
	}
	command, args := flag.Arg(0), flag.Args()[1:]

	cmdFlags := flag.NewFlagSet(command, flag.ContinueOnError)
	jobPath := cmdFlags.String("job", "", "path to job JSON file")
	key := cmdFlags.String("key", "", "object key")
	if err := cmdFlags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	defer application.Shutdown()

	switch command {
	case "setup":
		return application.Setup(ctx)

	case "upload":
		job, err := loadJob(*jobPath)
		if err != nil {
			return err
		}
		report, err := application.UploadJob(ctx, job)
		if err != nil {
			return err
		}
		fmt.Printf("%d/%d file(s) uploaded\n", report.Uploaded(), len(report.Results))
		return report.Err()

	case "fetch":
		job, err := loadJob(*jobPath)
		if err != nil {
			return err
		}
		prepared, fetchErr := application.FetchFilesForJob(ctx, job)
		if err := app.WriteJob(os.Stdout, prepared); err != nil {
			return err
		}
		return fetchErr

	case "cat":
		if *key == "" {
			return errors.New("cat: -key is required")
		}
		return application.StreamFile(ctx, *key, os.Stdout)

	case "run":
		return application.Run(ctx)

	default:
		flag.Usage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func loadJob(path string) (domain.Job, error) {
	if path == "" {
		return domain.Job{}, errors.New("-job is required")
	}
	return app.LoadJob(path)
}
