// Package user serves user profiles. Accounts are created by the auth
// package; here they are listed, read, edited and deleted.
package user

import (
	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/query"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/resource"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/user/entity"
)

// Table is the users registry. Identity fields are managed by register.
var Table = query.MustTable[entity.User]("users", query.ReadOnly("email", "role", "registeredAt"))

func NewService(db *sqlx.DB) *resource.Service[entity.User] {
	return resource.NewService(resource.NewRepo(db, Table))
}
