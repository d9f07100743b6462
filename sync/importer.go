// ABOUTME: Shared importer state: target stores, import log and contact matcher
// ABOUTME: One Importer handles both Google Contacts and Google Calendar runs
package sync

import (
	"github.com/harperreed/immo/db"
	"github.com/harperreed/immo/store"
)

// ImportLog tracks sync progress and which source records were already imported.
// *db.SyncLog implements it.
type ImportLog interface {
	State(service string) (*db.SyncState, error)
	SetStatus(service, status, errMsg string) error
	Finish(service, token string) error
	Imported(service, sourceID string) (bool, error)
	Record(service, sourceID, entityType, entityID string) error
}

// Summary counts what one import run did.
type Summary struct {
	Fetched int
	Created int
	Updated int
	Skipped map[string]int
}

func newSummary() Summary {
	return Summary{Skipped: make(map[string]int)}
}

// TotalSkipped sums the skip reasons.
func (s Summary) TotalSkipped() int {
	n := 0
	for _, c := range s.Skipped {
		n += c
	}
	return n
}

type Importer struct {
	contacts *store.Contacts
	tasks    *store.CalendarTasks
	log      ImportLog
	matcher  *ContactMatcher
}

func NewImporter(s *store.Store, log ImportLog) *Importer {
	return &Importer{
		contacts: s.Contacts,
		tasks:    s.Tasks,
		log:      log,
		matcher:  NewContactMatcher(s.Contacts.All()),
	}
}

// fail records an error state and returns err unchanged.
func (im *Importer) fail(service string, err error) error {
	_ = im.log.SetStatus(service, "error", err.Error())
	return err
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
