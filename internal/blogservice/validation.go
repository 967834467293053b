package blogservice

import (
	"time"

	"github.com/inkwell-app/inkwell/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 1, 200), "title", "must not be more than 200 characters long")
}

func validateContent(v *common.Validator, content string) {
	v.Check(content != "", "content", "must be provided")
}

func validateUserID(v *common.Validator, userID string) {
	v.Check(userID != "", "user_id", "must be provided")
}

func validateStatus(v *common.Validator, status BlogStatus) {
	v.Check(common.In(status, StatusDraft, StatusPublished, StatusScheduled), "status", "must be one of draft, published, or scheduled")
}

func validateScheduledAt(v *common.Validator, at *time.Time) {
	v.Check(at != nil, "scheduled_at", "must be provided for scheduled posts")
}
