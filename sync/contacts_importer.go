// ABOUTME: Google Contacts importer
// ABOUTME: Creates CRM contacts from People API connections, filling gaps on known ones
package sync

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/immo/models"
)

const contactsService = "contacts"

type GoogleContact struct {
	ResourceName string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Notes        string
}

func (gc GoogleContact) FullName() string {
	return models.Contact{FirstName: gc.FirstName, LastName: gc.LastName}.FullName()
}

// ImportContact creates a contact or completes an existing match. It reports whether one was created.
func (im *Importer) ImportContact(gc GoogleContact) (bool, error) {
	if existing, found := im.matcher.FindMatch(gc.Email, gc.FullName()); found {
		var patch models.ContactPatch
		changed := false
		if gc.Phone != "" && existing.Phone == "" {
			patch.Phone, changed = &gc.Phone, true
		}
		if gc.Email != "" && existing.Email == "" {
			patch.Email, changed = &gc.Email, true
		}
		if gc.Notes != "" && existing.Notes == "" {
			patch.Notes, changed = &gc.Notes, true
		}
		if changed {
			updated, _, err := im.contacts.Update(existing.ID, patch)
			if err != nil {
				return false, fmt.Errorf("failed to update contact: %w", err)
			}
			im.matcher.AddContact(updated)
		}
		if err := im.log.Record(contactsService, gc.ResourceName, "contact", existing.ID); err != nil {
			return false, fmt.Errorf("failed to log sync: %w", err)
		}
		return false, nil
	}

	contact, err := im.contacts.Add(models.Contact{
		FirstName: gc.FirstName,
		LastName:  gc.LastName,
		Email:     gc.Email,
		Phone:     gc.Phone,
		Notes:     gc.Notes,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create contact: %w", err)
	}
	if err := im.log.Record(contactsService, gc.ResourceName, "contact", contact.ID); err != nil {
		return false, fmt.Errorf("failed to log sync: %w", err)
	}
	im.matcher.AddContact(contact)
	return true, nil
}

// ImportPeople imports one page of People API connections.
func (im *Importer) ImportPeople(persons []*people.Person, sum *Summary) {
	for _, person := range persons {
		sum.Fetched++
		gc := convertPerson(person)
		if gc.FullName() == "" || (gc.Email == "" && gc.Phone == "") {
			sum.Skipped["incomplete"]++
			continue
		}

		done, err := im.log.Imported(contactsService, gc.ResourceName)
		if err != nil {
			log.Warn("failed to check sync log", "contact", gc.FullName(), "err", err)
			continue
		}
		if done {
			sum.Skipped["already imported"]++
			continue
		}

		created, err := im.ImportContact(gc)
		if err != nil {
			log.Warn("failed to import contact", "contact", gc.FullName(), "err", err)
			continue
		}
		if created {
			sum.Created++
		} else {
			sum.Updated++
		}
	}
}

// ImportContacts pages through every connection of the signed-in account.
func (im *Importer) ImportContacts(ctx context.Context, client *people.Service) (Summary, error) {
	sum := newSummary()
	if err := im.log.SetStatus(contactsService, "syncing", ""); err != nil {
		return sum, fmt.Errorf("failed to update sync status: %w", err)
	}

	pageToken := ""
	for {
		call := client.People.Connections.List("people/me").
			Context(ctx).
			PageSize(1000).
			PersonFields("names,emailAddresses,phoneNumbers,biographies")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return sum, im.fail(contactsService, fmt.Errorf("failed to fetch contacts: %w", err))
		}
		if resp == nil {
			break
		}
		im.ImportPeople(resp.Connections, &sum)
		log.Debug("contacts page imported", "fetched", sum.Fetched, "created", sum.Created)

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if err := im.log.Finish(contactsService, ""); err != nil {
		return sum, fmt.Errorf("failed to update sync status: %w", err)
	}
	return sum, nil
}

// convertPerson extracts names, primary email and phone, and the biography.
func convertPerson(person *people.Person) GoogleContact {
	gc := GoogleContact{ResourceName: person.ResourceName}

	if len(person.Names) > 0 {
		n := person.Names[0]
		gc.FirstName, gc.LastName = n.GivenName, n.FamilyName
		if gc.FirstName == "" && gc.LastName == "" && n.DisplayName != "" {
			gc.FirstName = n.DisplayName
		}
	}

	for _, email := range person.EmailAddresses {
		if email.Value == "" {
			continue
		}
		if gc.Email == "" {
			gc.Email = email.Value
		}
		if email.Metadata != nil && email.Metadata.Primary {
			gc.Email = email.Value
			break
		}
	}

	for _, phone := range person.PhoneNumbers {
		if phone.Value == "" {
			continue
		}
		if gc.Phone == "" {
			gc.Phone = phone.Value
		}
		if phone.Metadata != nil && phone.Metadata.Primary {
			gc.Phone = phone.Value
			break
		}
	}

	if len(person.Biographies) > 0 {
		gc.Notes = person.Biographies[0].Value
	}
	return gc
}
