package service

import (
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/crewpay/internal/model"
)

func profileFor(id, email string) model.Profile {
	now := time.Now().UTC()
	return model.Profile{ID: id, Email: email, Airline: "EK", Position: model.PositionCCM, CreatedAt: now, UpdatedAt: now}
}

func duplicateEntry(key string) error {
	return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key '" + key + "'"}
}

func ptr[T any](v T) *T { return &v }

func crewProfile(id, email, airline, position string) model.Profile {
	p := profileFor(id, email)
	p.Airline = airline
	p.Position = position
	return p
}
