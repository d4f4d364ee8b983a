package validation

import (
	"github.com/studyhub/collab/ecode"
	"github.com/studyhub/collab/structs"
)

const MaxMessageTextLength = 10000

// ValidateMessage checks an outgoing chat message.
func (v *Validator) ValidateMessage(m structs.Message) Result {
	c := &collector{entity: "message"}
	checkTags(c, m)

	if !m.HasContent() {
		c.add(ecode.ContentRequired("message"))
	}
	for _, a := range m.Attachments() {
		if !v.isHosted(a.URL) {
			c.add(ecode.FieldNotHosted(a.Field))
		}
	}
	v.checkFresh(c, "timestamp", m.Timestamp)
	return c.result()
}
