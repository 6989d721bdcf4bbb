package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-tagger/internal/store"
)

// migrateResult is printed by migrate.
type migrateResult struct {
	DataFile string `json:"data_file"`
	Updated  bool   `json:"updated"`
	Target   string `json:"target,omitempty"`
	Imported int    `json:"imported,omitempty"`
}

func (c *CLI) migrateCommand() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "migrate [FOLDER]",
		Short: "Backfill the data file and optionally copy it to Badger",
		Long: `Add the fileName back-reference to every record of FOLDER's JSON data file
that lacks one. The file is only rewritten when something changed, so the
command is safe to repeat.

With --to badger the records are then copied into the Badger store of the
folder (or the configured store path when the configured backend is badger).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if to != "" && to != store.BackendBadger {
				return fmt.Errorf("%w: cannot migrate to %q", store.ErrUnknownBackend, to)
			}
			folder := c.folder(args)

			src := c.cfg
			if src.Store.Backend != store.BackendJSON {
				src.Store.Backend = store.BackendJSON
				src.Store.Path = ""
			}
			data, err := store.OpenJSONFile(src.StorePath(folder))
			if err != nil {
				return err
			}
			defer data.Close()

			res := migrateResult{DataFile: data.Path()}
			if res.Updated, err = data.Migrate(cmd.Context()); err != nil {
				return err
			}

			if to == store.BackendBadger {
				dst := c.cfg
				if dst.Store.Backend != store.BackendBadger {
					dst.Store.Backend = store.BackendBadger
					dst.Store.Path = ""
				}
				res.Target = dst.StorePath(folder)

				db, err := store.OpenBadger(res.Target)
				if err != nil {
					return err
				}
				defer func() {
					if err := db.Close(); err != nil {
						log.Error().Err(err).Msg("Failed to close badger store")
					}
				}()

				if res.Imported, err = db.Import(cmd.Context(), data); err != nil {
					return err
				}
				log.Info().Str("target", res.Target).Int("images", res.Imported).Msg("Copied records to badger")
			}

			return c.printJSON(res)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", `copy records into another backend ("badger")`)
	return cmd
}
