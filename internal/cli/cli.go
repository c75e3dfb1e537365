package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/akhdanfadh/momosync/internal/config"
	"github.com/akhdanfadh/momosync/internal/lock"
	"github.com/akhdanfadh/momosync/internal/logger"
	"github.com/akhdanfadh/momosync/internal/maimemo"
	"github.com/akhdanfadh/momosync/internal/syncer"
	"github.com/akhdanfadh/momosync/internal/wordlist"
)

// Version and Commit are set by main from build info.
var (
	Version = "dev"
	Commit  = "none"
)

// ErrNotepadNotFound is returned by commands that need an existing notepad.
var ErrNotepadNotFound = errors.New("notepad not found")

// app carries the state shared by all subcommands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	token      string
	notepad    string
	baseURL    string
	timeout    time.Duration
	verbose    bool

	cfg *config.Config
	log *logger.SlogLogger
}

// Run executes the CLI with the process arguments and standard streams.
func Run(ctx context.Context) error {
	return Execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// Execute runs the CLI with the given arguments and streams.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "momosync",
		Short: "Merge local word lists into a Maimemo notepad",
		Long: `momosync keeps a Maimemo cloud notepad in sync with a local word list.
It finds the notepad by title (creating it when missing), reads its words and
writes back the union with your words. Nothing is written when every word is
already there.`,
		SilenceUsage:  true,
		SilenceErrors: true, // main prints the error
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.token, "token", "", "Maimemo API token (default $MAIMEMO_TOKEN)")
	pf.StringVarP(&a.notepad, "notepad", "n", "", "notepad title (default $MAIMEMO_NOTEPAD)")
	pf.StringVar(&a.baseURL, "base-url", "", "Maimemo API base URL")
	pf.DurationVar(&a.timeout, "timeout", 0, "HTTP timeout per request (default 10s)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.syncCmd(),
		a.findCmd(),
		a.createCmd(),
		a.wordsCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads config, applies flags and builds the logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	// flags override file and environment
	if a.token != "" {
		cfg.Token = a.token
	}
	if a.notepad != "" {
		cfg.Notepad = a.notepad
	}
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	if a.timeout != 0 {
		cfg.Timeout = a.timeout
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(a.stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	a.cfg, a.log = cfg, log
	return nil
}

// client builds a Maimemo client from the loaded config.
func (a *app) client(policy maimemo.ReadFailurePolicy) *maimemo.Client {
	return maimemo.NewClient(a.cfg.Token, a.cfg.Notepad,
		maimemo.WithBaseURL(a.cfg.BaseURL),
		maimemo.WithTimeout(a.cfg.Timeout),
		maimemo.WithReadFailurePolicy(policy),
		maimemo.WithLogger(a.log),
	)
}

// locker returns the Redis locker when one is configured, the in-process
// locker when local is set, or nil. The returned close func is never nil.
func (a *app) locker(ctx context.Context, local bool) (lock.Locker, func(), error) {
	if a.cfg.LockRedisURL != "" {
		r, err := lock.DialRedis(ctx, a.cfg.LockRedisURL,
			lock.WithTTL(a.cfg.LockTTL),
			lock.WithLogger(a.log),
		)
		if err != nil {
			return nil, func() {}, err
		}
		a.log.Debug("using redis lock")
		return r, func() { _ = r.Close() }, nil
	}
	if local {
		a.log.Debug("using local lock")
		return lock.NewLocal(), func() {}, nil
	}
	return nil, func() {}, nil
}

// readWords collects words from args, the input file, or stdin, in that order.
func (a *app) readWords(args []string, inputPath string) ([]string, error) {
	if len(args) > 0 {
		return wordlist.Parse(strings.Join(args, "\n"))
	}

	var r io.Reader = a.stdin // fallback
	if inputPath != "" && inputPath != "-" {
		f, err := os.Open(inputPath)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }() // ignore error, less critical for read
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return wordlist.Parse(string(data))
}

// stdinIsTTY reports whether stdin is an interactive terminal.
func (a *app) stdinIsTTY() bool {
	f, ok := a.stdin.(*os.File)
	return ok && logger.IsTTY(f)
}

func (a *app) syncCmd() *cobra.Command {
	var inputPath string
	var dryRun, strict, useLock bool

	cmd := &cobra.Command{
		Use:   "sync [words...]",
		Short: "Add words to the notepad, creating it if needed",
		Long: `Add words to the notepad. Words come from the arguments, from --input,
or from stdin. Plain text (one word per line or comma separated, # for comments)
and YAML (a list, or a "words:" list) are accepted.

With --lock, runs against the same notepad are serialised. The lock lives in
Redis when MOMOSYNC_REDIS_URL is set, and in this process otherwise. A
configured Redis URL always enables the Redis lock.`,
		Example: `  momosync sync -n "GRE" abandon abate
  momosync sync -n "GRE" -i words.yaml
  cat words.txt | momosync sync -n "GRE" --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// no words given and nobody piping: show usage instead of waiting on the terminal
			if len(args) == 0 && inputPath == "" && a.stdinIsTTY() {
				return cmd.Help()
			}
			if err := a.setup(); err != nil {
				return err
			}
			ctx := cmd.Context()

			start := time.Now()
			words, err := a.readWords(args, inputPath)
			if err != nil {
				return fmt.Errorf("reading words: %w", err)
			}
			a.log.Debug("read %d word(s)", len(words))

			policy, _ := a.cfg.ReadFailurePolicy() // validated in setup
			if strict {
				policy = maimemo.Propagate
			}

			opts := []syncer.Option{syncer.WithLogger(a.log)}
			if !dryRun {
				locker, closeLocker, err := a.locker(ctx, useLock)
				if err != nil {
					return fmt.Errorf("connecting lock backend: %w", err)
				}
				defer closeLocker()
				if locker != nil {
					opts = append(opts, syncer.WithLocker(locker))
				}
			}
			s := syncer.New(a.client(policy), opts...)

			if dryRun {
				plan, err := s.Plan(ctx, words)
				if err != nil {
					return err
				}
				printPlan(a.stdout, a.cfg.Notepad, len(words), plan)
				return nil
			}

			res, err := s.SyncResult(ctx, words)
			if err != nil {
				return err
			}
			printSyncSummary(a.stdout, syncStats{
				notepad:  a.cfg.Notepad,
				input:    len(words),
				result:   res,
				duration: time.Since(start),
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "word list file (default stdin)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be added without creating or writing anything")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when the current words cannot be read instead of treating the notepad as empty")
	cmd.Flags().BoolVar(&useLock, "lock", false, "serialise runs on the same notepad (redis when MOMOSYNC_REDIS_URL is set)")
	return cmd
}

func (a *app) findCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find",
		Short: "Print the ID of the notepad",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			id, found, err := a.client(maimemo.Propagate).FindNotepad(cmd.Context())
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: %q", ErrNotepadNotFound, a.cfg.Notepad)
			}
			fmt.Fprintln(a.stdout, id)
			return nil
		},
	}
}

func (a *app) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create the notepad and print its ID",
		Long: `Create a published notepad with the configured title and print its ID.
No lookup is made first: running it twice creates two notepads with the same title.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			id, err := a.client(maimemo.Propagate).CreateNotepad(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, id)
			return nil
		},
	}
}

func (a *app) wordsCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "words",
		Short: "Print the words of the notepad, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			policy, _ := a.cfg.ReadFailurePolicy()
			if strict {
				policy = maimemo.Propagate
			}
			client := a.client(policy)

			id, found, err := client.FindNotepad(cmd.Context())
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: %q", ErrNotepadNotFound, a.cfg.Notepad)
			}
			words, err := client.ListWords(cmd.Context(), id)
			if err != nil {
				return err
			}
			for _, w := range words {
				fmt.Fprintln(a.stdout, w)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when the words cannot be read instead of printing nothing")
	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "momosync %s (commit %s)\n", Version, Commit)
		},
	}
}
