package crm

import "errors"

// ErrOrphanedLead is returned when a listed lead points at a contact that no
// longer exists.
var ErrOrphanedLead = errors.New("crm: lead references a missing contact")
