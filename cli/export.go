// ABOUTME: Export and data hygiene CLI commands
// ABOUTME: Writes every collection as JSON or YAML and lists dangling references
package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/immo/crm"
)

// ExportCommand writes all collections keyed by their storage key.
func ExportCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "json", "json or yaml")
	output := fs.String("output", "", "Output file (default: stdout)")
	_ = fs.Parse(args)

	var out io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", *output, err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	return Export(ws, *format, out)
}

// Export encodes the workspace. YAML keys follow the JSON field names.
func Export(ws *crm.Workspace, format string, out io.Writer) error {
	data, err := json.MarshalIndent(ws.Store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}

	switch format {
	case "json":
		_, err = out.Write(append(data, '\n'))
		return err
	case "yaml", "yml":
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to re-read export: %w", err)
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (want json or yaml)", format)
}

// OrphansCommand lists records that point at a missing contact or mandat.
func OrphansCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("orphans", flag.ExitOnError)
	_ = fs.Parse(args)

	orphans := ws.OrphanReferences()
	if len(orphans) == 0 {
		fmt.Println("✓ No orphan references")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ENTITY\tID\tFIELD\tMISSING")
	_, _ = fmt.Fprintln(w, "------\t--\t-----\t-------")
	for _, o := range orphans {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.Entity, o.ID, o.Field, o.MissingID)
	}
	_ = w.Flush()
	fmt.Printf("\nTotal: %d orphan reference(s)\n", len(orphans))
	return nil
}
