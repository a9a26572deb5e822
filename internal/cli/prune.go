package cli

import (
	"fmt"
	"path/filepath"

	"github.com/vburojevic/rnrun/internal/buildlog"
	"github.com/vburojevic/rnrun/internal/output"
)

// PruneCmd deletes old build logs
type PruneCmd struct {
	Keep int `help:"Number of logs to keep (default: logs.max_logs from config, 10)"`
}

// Run executes the prune command
func (c *PruneCmd) Run(globals *Globals) error {
	store := globals.Store()
	if c.Keep < 0 {
		return outputErrorCommon(globals, "prune", "INVALID_FLAGS", "--keep must not be negative", "")
	}
	if c.Keep > 0 {
		store = buildlog.NewStore(buildlog.Options{Dir: store.Dir(), MaxLogs: c.Keep})
	}

	removed, err := store.Rotate()
	if err != nil {
		return outputErrorCommon(globals, "prune", "PRUNE_ERROR", err.Error(), hintForStorage(err, store.Dir()))
	}
	globals.Debug("pruned %d log(s), keeping %d", len(removed), store.MaxLogs())

	if globals.Format == "ndjson" {
		if removed == nil {
			removed = []string{}
		}
		return output.NewNDJSONWriter(globals.Stdout).WriteResult("prune", output.PruneOutput{
			Directory: store.Dir(),
			Keep:      store.MaxLogs(),
			Removed:   removed,
		})
	}

	if len(removed) == 0 {
		fmt.Fprintf(globals.Stdout, "Nothing to prune (keeping %d)\n", store.MaxLogs())
		return nil
	}
	fmt.Fprintf(globals.Stdout, "Deleted %d log(s):\n", len(removed))
	for _, p := range removed {
		fmt.Fprintf(globals.Stdout, "  %s\n", filepath.Base(p))
	}
	return nil
}
