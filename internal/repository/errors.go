// Package repository holds the MySQL data access layer.  The sentinel
// values below let services and handlers distinguish failure scenarios
// without inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a row does not exist or is outside the
// caller's scope.  Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrConflict signals that a unique constraint rejected the write, for
// example a second monthly calculation for the same period.  Handlers
// translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrUsernameExists is returned when the credentials username key is taken.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when a credentials or profiles email key is taken.
var ErrEmailExists = errors.New("email already exists")

const mysqlDuplicateEntry = 1062

// duplicateKey reports whether err is a MySQL duplicate-entry error and, if
// so, returns the name of the key that collided.  The duplicated value is
// never part of the result.
func duplicateKey(err error) (string, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return keyName(me.Message), true
	}
	return "", false
}

// keyName extracts the key from "Duplicate entry '...' for key 'table.key'".
func keyName(msg string) string {
	i := strings.LastIndex(msg, " for key '")
	if i < 0 {
		return ""
	}
	key := strings.TrimSuffix(msg[i+len(" for key '"):], "'")
	if j := strings.LastIndex(key, "."); j >= 0 {
		key = key[j+1:]
	}
	return key
}

// normalizeEmail lower-cases and trims an email so every store compares the
// same representation.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
