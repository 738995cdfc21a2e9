package cli

import (
	"fmt"

	"github.com/studiowebux/marketcli/internal/converter"
)

// Export writes the catalog to disk as .http files or a single document
func Export(env *Env, opts converter.ExportOptions) error {
	if opts.BaseURL == "" {
		opts.BaseURL = env.Settings.BaseURL
	}
	written, err := converter.Export(opts)
	if err != nil {
		return err
	}
	env.Log.Debug().Strs("files", written).Msg("catalog exported")
	fmt.Fprintf(env.Out, "Exported %d file(s) to %s\n", len(written), opts.OutputDir)
	return nil
}
