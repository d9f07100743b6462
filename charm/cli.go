// ABOUTME: CLI commands for Charm KV sync operations
// ABOUTME: SSH key auth is handled by charm, so there is no login/logout

package charm

import (
	"flag"
	"fmt"

	"github.com/harperreed/immo/store"
)

// SyncLinkCommand links this device to a Charm account.
func SyncLinkCommand(args []string) error {
	fs := flag.NewFlagSet("sync link", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("Linking to Charm Cloud (%s)...\n\n", cfg.Host)

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to initialize client: %w", err)
	}
	if err := c.Sync(); err != nil {
		return fmt.Errorf("link failed: %w", err)
	}

	if id, err := c.ID(); err != nil {
		fmt.Println("✓ Device linked (ID unavailable)")
	} else {
		fmt.Printf("✓ Linked to account: %s\n", id)
	}
	fmt.Printf("✓ Auto-sync: %v\n", cfg.AutoSync)
	return nil
}

// SyncStatusCommand shows the sync configuration and the stored collections.
func SyncStatusCommand(args []string) error {
	fs := flag.NewFlagSet("sync status", flag.ExitOnError)
	_ = fs.Parse(args)

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to initialize client: %w", err)
	}
	return ShowStatus(c)
}

// ShowStatus prints host, account and one line per persisted collection.
func ShowStatus(c *Client) error {
	cfg := c.Config()
	fmt.Println("immo sync status")
	fmt.Printf("  Host:      %s\n", cfg.Host)
	fmt.Printf("  Auto-sync: %v\n", cfg.AutoSync)
	if id, err := c.ID(); err == nil {
		fmt.Printf("  Account:   %s\n", id)
	}

	st := c.Storage()
	fmt.Println("\nCollections:")
	for _, key := range store.Keys {
		data, ok, err := st.Load(key)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}
		if !ok {
			fmt.Printf("  %-16s (empty)\n", key)
			continue
		}
		fmt.Printf("  %-16s %6d bytes  schema v%d\n", key, len(data), store.SnapshotVersion(data))
	}
	return nil
}

// SyncUnlinkCommand disables auto-sync; local data is kept.
func SyncUnlinkCommand(args []string) error {
	fs := flag.NewFlagSet("sync unlink", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.SetAutoSync(false); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Println("✓ Auto-sync disabled. Local data is untouched.")
	return nil
}

// SyncWipeCommand deletes every key. Requires --confirm.
func SyncWipeCommand(args []string) error {
	fs := flag.NewFlagSet("sync wipe", flag.ExitOnError)
	confirm := fs.Bool("confirm", false, "confirm deletion of all CRM data")
	_ = fs.Parse(args)

	if !*confirm {
		fmt.Println("This deletes all contacts, leads, mandats, buyers, tasks and goals.")
		fmt.Println("Run again with --confirm to proceed.")
		return nil
	}

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to initialize client: %w", err)
	}
	if err := c.Reset(); err != nil {
		return fmt.Errorf("failed to wipe data: %w", err)
	}
	fmt.Println("✓ All immo data wiped")
	return nil
}

// SyncNowCommand forces a sync with the server.
func SyncNowCommand(args []string) error {
	fs := flag.NewFlagSet("sync now", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "show collection summary after sync")
	_ = fs.Parse(args)

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to initialize client: %w", err)
	}
	fmt.Println("Syncing...")
	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Println("✓ Sync complete")
	if *verbose {
		return ShowStatus(c)
	}
	return nil
}

// SetAutoSyncCommand toggles auto-sync.
func SetAutoSyncCommand(args []string) error {
	fs := flag.NewFlagSet("sync auto", flag.ExitOnError)
	enable := fs.Bool("enable", false, "enable auto-sync")
	disable := fs.Bool("disable", false, "disable auto-sync")
	_ = fs.Parse(args)

	if *enable == *disable {
		return fmt.Errorf("specify exactly one of --enable or --disable")
	}
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.SetAutoSync(*enable); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("✓ Auto-sync: %v\n", *enable)
	return nil
}
