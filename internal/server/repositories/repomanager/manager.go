// Package repomanager vends repositories bound to a database handle and
// applies the embedded schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/lessonbook/internal/dbx"
	"github.com/dmitrijs2005/lessonbook/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/lessonbook/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
