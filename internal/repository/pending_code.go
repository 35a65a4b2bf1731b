package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// pendingCodeGroup names the bson fields that form one nullable pending-code
// group on a user document. The three flows (email verification, email
// change, password reset) share the same issue/confirm shape and differ only
// in which fields they touch.
type pendingCodeGroup struct {
	codeField   string
	expiryField string
	extraFields []string
}

var (
	verificationGroup = pendingCodeGroup{
		codeField:   "verification_code",
		expiryField: "verification_code_expires_at",
	}
	emailChangeGroup = pendingCodeGroup{
		codeField:   "email_change_code",
		expiryField: "email_change_code_expires_at",
		extraFields: []string{"pending_email"},
	}
	passwordResetGroup = pendingCodeGroup{
		codeField:   "password_reset_code",
		expiryField: "password_reset_expires_at",
	}
)

// issueSet builds the $set document storing a new code. Writing over the
// group replaces any previous pending operation of this kind.
func (g pendingCodeGroup) issueSet(code string, expiresAt time.Time, extra bson.M) bson.M {
	set := bson.M{
		g.codeField:   code,
		g.expiryField: expiresAt,
		"updated_at":  time.Now(),
	}
	for field, value := range extra {
		set[field] = value
	}

	return set
}

// matchFilter extends filter so a confirm update only applies while the
// group still holds the given code and the expiry window is open. Expiry is
// exclusive: the code is valid only while now < expiry.
func (g pendingCodeGroup) matchFilter(filter bson.M, code string, now time.Time) bson.M {
	filter[g.codeField] = code
	filter[g.expiryField] = bson.M{"$gt": now}

	return filter
}

// clearUnset builds the $unset document removing the whole group.
func (g pendingCodeGroup) clearUnset() bson.M {
	unset := bson.M{
		g.codeField:   "",
		g.expiryField: "",
	}
	for _, field := range g.extraFields {
		unset[field] = ""
	}

	return unset
}
