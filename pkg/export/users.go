package export

import (
	"time"

	"github.com/hirepath/admin-console/internal/models"
)

// User table columns, in render order.
const (
	colName       = "Name"
	colEmail      = "Email"
	colRole       = "Role"
	colStatus     = "Status"
	colCountry    = "Country"
	colCity       = "City"
	colUniversity = "University"
	colJoined     = "Joined"
	colLastLogin  = "Last Login"
)

// UserDataset builds the export table for a list of accounts. Status comes
// from the caller because it is derived, not stored.
func UserDataset(title string, records []models.UserRecord, status func(models.UserRecord) models.ActivityStatus) Dataset {
	data := Dataset{
		Title: title,
		Headers: []string{
			colName, colEmail, colRole, colStatus,
			colCountry, colCity, colUniversity,
			colJoined, colLastLogin,
		},
	}
	for _, record := range records {
		row := map[string]string{
			colName:   record.FullName(),
			colEmail:  record.Email,
			colRole:   string(record.Role),
			colStatus: string(status(record)),
			colJoined: record.CreatedAt.Format(time.DateOnly),
		}
		if record.Location != nil {
			row[colCountry] = record.Location.Country
			row[colCity] = record.Location.City
			row[colUniversity] = record.Location.University
		}
		if record.LastLogin != nil {
			row[colLastLogin] = record.LastLogin.Format(time.DateOnly)
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}
