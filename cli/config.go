// ABOUTME: Config subcommands: show the effective settings and persist changes
// ABOUTME: Writes only the YAML file, never environment or flag overrides
package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/smscrm/config"
)

// ConfigShowCommand prints the effective configuration.
func ConfigShowCommand(cfg *config.Config) error {
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "file\t%s\n", cfg.Path())
	_, _ = fmt.Fprintf(w, "api-url\t%s\n", cfg.APIURL)
	_, _ = fmt.Fprintf(w, "timeout\t%s\n", cfg.Timeout)
	_, _ = fmt.Fprintf(w, "log-level\t%s\n", cfg.LogLevel)
	_, _ = fmt.Fprintf(w, "log-file\t%s\n", cfg.LogFile)
	return w.Flush()
}

// ConfigSetCommand changes one key in the config file at path.
func ConfigSetCommand(path string, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: config set <key> <value>")
	}

	cfg, err := config.ReadFile(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Set %s = %s in %s\n", args[0], args[1], cfg.Path())
	return nil
}
