package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/threadline/warehouse-backend/pkg/types"
)

// appendAuditHeader prefixes free-form notes with a permanent human-readable
// audit line naming the actor and the moment of the change.
func appendAuditHeader(notes *string, actor types.Actor, at time.Time, justification string) *string {
	header := fmt.Sprintf("[audit] %s (%s) at %s", actor.Email, actor.Role, at.UTC().Format(time.RFC3339))
	if j := strings.TrimSpace(justification); j != "" {
		header = header + ": " + j
	}

	if notes == nil || strings.TrimSpace(*notes) == "" {
		return &header
	}
	combined := header + "\n" + *notes
	return &combined
}
