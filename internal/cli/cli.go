// Package cli implements the image-tagger command-line interface.
//
// The CLI is built with cobra. Every command shares the configuration loaded
// in the root PersistentPreRunE: defaults, then the --config TOML file, then
// IMAGE_TAGGER_* variables, then flags.
//
// # Commands
//
//   - serve: HTTP API and image browser for a folder
//   - mcp: MCP server over stdin/stdout for a folder
//   - redact: blur and label regions of one image
//   - restore: put an image back from its backup
//   - suggest: propose regions from text found by OCR
//   - migrate: backfill the data file and optionally copy it to Badger
//
// # Logging
//
// Logs go to stderr through zerolog at the configured level; --verbose
// forces debug. Command results go to stdout as JSON so they can be piped.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-tagger/internal/config"
	"github.com/ironsheep/image-tagger/internal/library"
	"github.com/ironsheep/image-tagger/internal/logging"
	"github.com/ironsheep/image-tagger/internal/redact"
	"github.com/ironsheep/image-tagger/internal/store"
)

const appName = "image-tagger"

var (
	version = "dev"     // semantic version
	commit  = "unknown" // git commit SHA
	date    = "unknown" // build timestamp
)

// SetVersion sets the version information displayed by --version. main calls
// it with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// CLI holds state shared by all commands.
type CLI struct {
	out    io.Writer
	errOut io.Writer
	cfg    config.Config

	configPath string
	logLevel   string
	logJSON    bool
	verbose    bool
}

// New creates a CLI that prints results to out and logs to errOut.
func New(out, errOut io.Writer) *CLI {
	return &CLI{out: out, errOut: errOut, cfg: config.Default()}
}

// RootCommand builds the command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Tag images and redact regions of them",
		Long: `image-tagger manages a folder of images: tags, stored redaction regions,
and in-place redaction that blurs each region and draws a label over it.
The first redaction of an image keeps a .bak copy of the original.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "TOML config file (default $"+config.EnvPrefix+"CONFIG)")
	pf.StringVar(&c.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	pf.BoolVar(&c.logJSON, "log-json", false, "log JSON lines instead of console output")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.mcpCommand())
	root.AddCommand(c.redactCommand())
	root.AddCommand(c.restoreCommand())
	root.AddCommand(c.suggestCommand())
	root.AddCommand(c.migrateCommand())

	return root
}

// setup loads the configuration and configures logging.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	path := c.configPath
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.verbose {
		cfg.LogLevel = "debug"
	}

	setupLog := logging.Setup
	if c.logJSON {
		setupLog = logging.SetupJSON
	}
	if err := setupLog(c.errOut, cfg.LogLevel); err != nil {
		return err
	}

	c.cfg = cfg
	log.Debug().Str("config", path).Str("store", cfg.Store.Backend).Msg("Configuration loaded")
	return nil
}

// folder picks the image folder from the first argument or the configuration.
func (c *CLI) folder(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return c.cfg.Folder
}

// openLibrary wires the configured store, engine and OCR options over folder.
// The caller closes the returned library.
func (c *CLI) openLibrary(folder string) (*library.Library, error) {
	engineOpts, err := c.cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	ocrOpts, err := c.cfg.OCROptions()
	if err != nil {
		return nil, err
	}

	s, err := store.Open(c.cfg.Store.Backend, c.cfg.StorePath(folder))
	if err != nil {
		return nil, err
	}

	lib, err := library.New(folder, s, redact.New(engineOpts...), library.WithOCROptions(ocrOpts))
	if err != nil {
		s.Close()
		return nil, err
	}
	return lib, nil
}

// openImage splits an image path into its folder and name and opens the
// library over that folder.
func (c *CLI) openImage(path string) (*library.Library, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	lib, err := c.openLibrary(filepath.Dir(abs))
	if err != nil {
		return nil, "", err
	}
	return lib, filepath.Base(abs), nil
}

// closeLibrary closes lib and logs a failure instead of masking the
// command's own error.
func closeLibrary(lib *library.Library) {
	if err := lib.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close store")
	}
}

// printJSON writes v to the command output, indented.
func (c *CLI) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
