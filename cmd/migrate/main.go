// ABOUTME: Imports a browser localStorage dump of the legacy web CRM into immo storage
// ABOUTME: Provides dry-run and backup capabilities for a safe one-shot migration

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/immo/cli"
	"github.com/harperreed/immo/config"
	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/store"
)

// legacyKeys maps localStorage keys of the web CRM to storage keys.
var legacyKeys = map[string]string{
	"crm_contacts":       store.KeyContacts,
	"crm_mandats":        store.KeyMandats,
	"crm_buyers":         store.KeyBuyers,
	"crm_seller_leads":   store.KeySellerLeads,
	"crm_calendar_tasks": store.KeyCalendarTasks,
	"crm_annonces":       store.KeyAnnonces,
	"crm_stages":         store.KeyPipelineStages,
	"crm_deals":          store.KeyDeals,
	"crm_annual_goal":    store.KeyAnnualGoal,
}

func main() {
	input := flag.String("input", "", "Path to the localStorage JSON dump (required)")
	backend := flag.String("backend", "", "Target backend (default: $IMMO_BACKEND)")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Export current data before migration")
	flag.Parse()

	if *input == "" {
		log.Fatal("-input flag is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	if *backend != "" {
		cfg.Backend = *backend
		if err := cfg.Validate(); err != nil {
			log.Fatal("invalid configuration", "err", err)
		}
	}
	cfg.ApplyLogging()

	if err := migrate(cfg, *input, *dryRun, *backup); err != nil {
		log.Fatal("migration failed", "err", err)
	}
}

func migrate(cfg *config.Config, input string, dryRun, backup bool) error {
	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}
	collections, skipped, err := parseDump(raw)
	if err != nil {
		return err
	}
	for _, key := range skipped {
		log.Warn("ignoring unknown key", "key", key)
	}

	b, err := cli.OpenBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	if dryRun {
		return plan(b.Workspace, collections)
	}

	if backup {
		path, err := writeBackup(b.Workspace, cfg.DataDir)
		if err != nil {
			return err
		}
		log.Info("backup written", "path", path)
	}

	return apply(b.Workspace, collections)
}

// parseDump returns the known collections of a localStorage dump keyed by storage key.
// Values may be JSON documents or the JSON-encoded strings localStorage holds.
func parseDump(raw []byte) (map[string][]byte, []string, error) {
	var dump map[string]json.RawMessage
	if err := json.Unmarshal(raw, &dump); err != nil {
		return nil, nil, fmt.Errorf("failed to parse dump: %w", err)
	}

	out := make(map[string][]byte)
	var skipped []string
	for legacy, value := range dump {
		key, ok := legacyKeys[legacy]
		if !ok {
			if _, known := storeKey(legacy); known {
				key = legacy
			} else {
				skipped = append(skipped, legacy)
				continue
			}
		}
		var text string
		if err := json.Unmarshal(value, &text); err == nil {
			value = json.RawMessage(text)
		}
		out[key] = value
	}
	sort.Strings(skipped)
	return out, skipped, nil
}

func storeKey(key string) (string, bool) {
	for _, k := range store.Keys {
		if k == key {
			return k, true
		}
	}
	return "", false
}

func plan(ws *crm.Workspace, collections map[string][]byte) error {
	current := ws.Store.Export()
	fmt.Println("DRY RUN - no changes will be made")
	for _, key := range sortedKeys(collections) {
		var items []json.RawMessage
		count := 1
		if err := json.Unmarshal(collections[key], &items); err == nil {
			count = len(items)
		}
		existing := 0
		if v, ok := current[key]; ok {
			if data, err := json.Marshal(v); err == nil {
				var cur []json.RawMessage
				if json.Unmarshal(data, &cur) == nil {
					existing = len(cur)
				} else {
					existing = 1
				}
			}
		}
		fmt.Printf("  %-16s %4d record(s) replacing %d\n", key, count, existing)
	}
	return nil
}

func apply(ws *crm.Workspace, collections map[string][]byte) error {
	for _, key := range sortedKeys(collections) {
		n, err := ws.Store.Restore(key, collections[key])
		if err != nil {
			return fmt.Errorf("failed to restore %s: %w", key, err)
		}
		log.Info("restored", "collection", key, "records", n)
	}

	if orphans := ws.OrphanReferences(); len(orphans) > 0 {
		log.Warn("migrated data has dangling references", "count", len(orphans))
	}
	return nil
}

func writeBackup(ws *crm.Workspace, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("backup-%s.json", time.Now().Format("20060102-150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := cli.Export(ws, "json", f); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return path, nil
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
