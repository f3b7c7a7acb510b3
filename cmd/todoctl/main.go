// Command todoctl exports, imports and cleans up the task collection of a
// todoList deployment, using the same config as the API server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"todoList/internal/app"
	"todoList/internal/config"
	"todoList/internal/logger"
	"todoList/internal/service"
	"todoList/internal/worker"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

const usage = `usage: todoctl <command> [flags]

commands:
  export   write tasks as YAML (--user EMAIL, --out FILE)
  import   bulk-save tasks from a YAML export (--file FILE)
  sweep    delete photos no task refers to

common flags:
  -c, --config FILE   config file (default ./config.yml)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "todoctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("missing command")
	}

	cmd, rest := args[0], args[1:]
	flags := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "config file")
	verbose := flags.BoolP("verbose", "v", false, "log to stderr")

	var (
		user, out, file string
		batch           int
	)
	switch cmd {
	case "export":
		flags.StringVarP(&user, "user", "u", "", "only tasks of this email")
		flags.StringVarP(&out, "out", "o", "", "output file (default stdout)")
	case "import":
		flags.StringVarP(&file, "file", "f", "", "YAML export to read")
	case "sweep":
		flags.IntVar(&batch, "batch", 0, "max photos to delete (default from config)")
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err := flags.Parse(rest); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *verbose {
		if err := logger.Init(true); err != nil {
			return err
		}
		defer logger.Sync()
	}

	fs := afero.NewOsFs()
	repo, closeRepo, err := app.OpenTaskStore(ctx, cfg.Storage, fs)
	if err != nil {
		return err
	}
	defer closeRepo()

	photos, err := app.OpenPhotoStore(ctx, cfg.Photos, fs)
	if err != nil {
		return err
	}
	svc := service.NewTaskService(repo, photos)

	switch cmd {
	case "export":
		w := stdout
		if out != "" {
			f, err := fs.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			defer f.Close()
			w = f
		}
		n, err := exportTasks(ctx, svc, user, w)
		if err != nil {
			return err
		}
		if out != "" {
			fmt.Fprintf(stdout, "exported %d tasks to %s\n", n, out)
		}

	case "import":
		if file == "" {
			return fmt.Errorf("--file is required")
		}
		f, err := fs.Open(file)
		if err != nil {
			return fmt.Errorf("opening %s: %w", file, err)
		}
		defer f.Close()
		n, err := importTasks(ctx, svc, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "imported %d tasks\n", n)

	case "sweep":
		if batch <= 0 {
			batch = cfg.Sweeper.BatchSize
		}
		res, err := worker.NewPhotoSweeper(repo, photos, nil, &cfg.Sweeper.MinAge, &batch).Sweep(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "checked %d photos, %d orphaned, %d too young, %d deleted, %d failed\n",
			res.Checked, res.Orphans, res.Young, res.Deleted, res.Failed)
	}
	return nil
}
