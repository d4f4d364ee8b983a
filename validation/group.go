package validation

import (
	"github.com/studyhub/collab/ecode"
	"github.com/studyhub/collab/structs"
)

const (
	MaxGroupNameLength        = 200
	MaxGroupDescriptionLength = 2000
	MinGroupMembers           = 1
	MaxGroupMembers           = 100
	JoinCodeLength            = 6
)

// ValidateGroup checks a group before it is written.
func (v *Validator) ValidateGroup(g structs.Group) Result {
	c := &collector{entity: "group"}
	checkTags(c, g)

	if !isBlank(g.Owner) && len(g.MemberIDs) > 0 && !contains(g.MemberIDs, g.Owner) {
		c.add(ecode.FieldMustContain("memberIds", "the owner"))
	}

	// The detailed list is optional, but once present it mirrors memberIds.
	if len(g.Members) > 0 && !sameMembers(g.MemberIDs, g.Members) {
		c.add(ecode.FieldMustMatch("members", "memberIds"))
	}
	return c.result()
}

func sameMembers(ids []string, members []structs.GroupMember) bool {
	if len(ids) != len(members) {
		return false
	}
	want := make(map[string]int, len(ids))
	for _, id := range ids {
		want[id]++
	}
	for _, m := range members {
		if want[m.UserID] == 0 {
			return false
		}
		want[m.UserID]--
	}
	return true
}
