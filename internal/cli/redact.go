package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-tagger/internal/logging"
	"github.com/ironsheep/image-tagger/internal/redact"
)

func (c *CLI) redactCommand() *cobra.Command {
	var regionsFile string

	cmd := &cobra.Command{
		Use:   "redact IMAGE",
		Short: "Blur and label regions of an image in place",
		Long: `Redact IMAGE with the regions read from --regions, or with the regions
stored for it when the flag is omitted. The file holds either a JSON array
of {"region": [...], "label": "..."} objects or {"regions": [...]}; use "-"
for stdin. The first redaction keeps the original as IMAGE.bak.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reqs []redact.Request
			if regionsFile != "" {
				var err error
				reqs, err = readRegions(cmd.InOrStdin(), regionsFile)
				if err != nil {
					return err
				}
			}

			lib, name, err := c.openImage(args[0])
			if err != nil {
				return err
			}
			defer closeLibrary(lib)

			p := logging.Start()
			res, err := lib.Redact(cmd.Context(), name, reqs)
			if err != nil {
				return err
			}
			p.Done(fmt.Sprintf("Redacted %s", name))
			return c.printJSON(res)
		},
	}

	cmd.Flags().StringVar(&regionsFile, "regions", "", `JSON file with regions ("-" for stdin)`)
	return cmd
}

func (c *CLI) restoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore IMAGE",
		Short: "Replace an image with its backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, name, err := c.openImage(args[0])
			if err != nil {
				return err
			}
			defer closeLibrary(lib)

			if err := lib.Restore(cmd.Context(), name); err != nil {
				return err
			}
			return c.printJSON(map[string]any{"name": name, "restored": true})
		},
	}
}

func (c *CLI) suggestCommand() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "suggest IMAGE",
		Short: "Suggest redaction regions from text found by OCR",
		Long: `Run Tesseract over IMAGE and print every confident text box as an
unlabeled region. With --save the suggestions replace the image's stored
regions, ready for "redact IMAGE".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, name, err := c.openImage(args[0])
			if err != nil {
				return err
			}
			defer closeLibrary(lib)

			reqs, err := lib.Suggest(cmd.Context(), name)
			if err != nil {
				return err
			}
			if save {
				if err := lib.SetRegions(cmd.Context(), name, reqs); err != nil {
					return err
				}
			}
			return c.printJSON(map[string]any{"name": name, "regions": reqs, "saved": save})
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "store the suggestions as the image's regions")
	return cmd
}

// readRegions loads requests from path, or from stdin when path is "-".
func readRegions(stdin io.Reader, path string) ([]redact.Request, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read regions: %w", err)
	}
	return parseRegions(raw)
}

// parseRegions accepts a bare array of requests or an object with a
// "regions" array.
func parseRegions(raw []byte) ([]redact.Request, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, fmt.Errorf("regions file is empty")
	}

	reqs := []redact.Request{}
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &reqs); err != nil {
			return nil, fmt.Errorf("invalid regions: %w", err)
		}
		return reqs, nil
	}

	var doc struct {
		Regions []redact.Request `json:"regions"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid regions: %w", err)
	}
	if doc.Regions != nil {
		reqs = doc.Regions
	}
	return reqs, nil
}
