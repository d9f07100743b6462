// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for managing contacts
package cli

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/models"
)

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// optional returns a pointer to the flag value when the flag was set on the command line.
func optional(fs *flag.FlagSet, name string, value *string) *string {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	if !set {
		return nil
	}
	return value
}

// AddContactCommand adds a new contact.
func AddContactCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("add-contact", flag.ExitOnError)
	first := fs.String("first", "", "First name")
	last := fs.String("last", "", "Last name")
	name := fs.String("name", "", "Full name, split into first and last name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	notes := fs.String("notes", "", "Notes about the contact")
	_ = fs.Parse(args)

	if *name != "" && *first == "" && *last == "" {
		*first, *last = crm.SplitName(*name)
	}
	if *first == "" && *last == "" {
		return fmt.Errorf("--name or --first/--last is required")
	}

	contact, err := ws.Store.Contacts.Add(models.Contact{
		FirstName: *first,
		LastName:  *last,
		Email:     *email,
		Phone:     *phone,
		Notes:     *notes,
	})
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	fmt.Printf("✓ Contact created: %s (ID: %s)\n", contact.FullName(), contact.ID)
	if contact.Email != "" {
		fmt.Printf("  Email: %s\n", contact.Email)
	}
	if contact.Phone != "" {
		fmt.Printf("  Phone: %s\n", contact.Phone)
	}
	return nil
}

// ListContactsCommand lists contacts, optionally filtered by an accent-insensitive query.
func ListContactsCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("list-contacts", flag.ExitOnError)
	query := fs.String("query", "", "Search by name, email or phone")
	_ = fs.Parse(args)

	contacts := ws.Store.Contacts.Search(*query)
	if len(contacts) == 0 {
		fmt.Println("No contacts found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEMAIL\tPHONE\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t-----\t--")
	for _, c := range contacts {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.FullName(), dash(c.Email), dash(c.Phone), c.ID)
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d contact(s)\n", len(contacts))
	return nil
}

// UpdateContactCommand updates an existing contact. Only flags that are set change.
func UpdateContactCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("update-contact", flag.ExitOnError)
	first := fs.String("first", "", "First name")
	last := fs.String("last", "", "Last name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	notes := fs.String("notes", "", "Notes about the contact")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("contact ID is required")
	}
	id := fs.Arg(0)

	updated, found, err := ws.Store.Contacts.Update(id, models.ContactPatch{
		FirstName: optional(fs, "first", first),
		LastName:  optional(fs, "last", last),
		Email:     optional(fs, "email", email),
		Phone:     optional(fs, "phone", phone),
		Notes:     optional(fs, "notes", notes),
	})
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: %s", crm.ErrContactNotFound, id)
	}

	fmt.Printf("✓ Contact updated: %s (ID: %s)\n", updated.FullName(), updated.ID)
	return nil
}

// DeleteContactCommand deletes a contact. References to it become orphans.
func DeleteContactCommand(ws *crm.Workspace, args []string) error {
	fs := flag.NewFlagSet("delete-contact", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("contact ID is required")
	}
	found, err := ws.Store.Contacts.Delete(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: %s", crm.ErrContactNotFound, fs.Arg(0))
	}
	fmt.Printf("✓ Contact deleted: %s\n", fs.Arg(0))
	return nil
}
