package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// DatabaseDetail carries the driver-level fields of a postgres failure so a
// settlement write that trips a constraint can be traced to the exact
// column without raising the database log level.
type DatabaseDetail struct {
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ErrorDump is the loggable shape of an error: the typed code and its
// retryability when present, the unwrap chain, and any database detail
// buried in it.
type ErrorDump struct {
	TopMessage string          `json:"top_message"`
	Code       Code            `json:"code,omitempty"`
	Retryable  bool            `json:"retryable,omitempty"`
	Chain      []string        `json:"chain,omitempty"`
	Database   *DatabaseDetail `json:"database,omitempty"`
}

// Dump flattens an error for structured logging.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}

	if typed := As(err); typed != nil {
		d.Code = typed.Code()
		d.Retryable = MetadataFor(typed.Code()).Retryable
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	d.Database = databaseDetail(err)
	return d
}

// databaseDetail pulls the postgres fields out of the chain, whichever
// driver produced the error.
func databaseDetail(err error) *DatabaseDetail {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &DatabaseDetail{
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &DatabaseDetail{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}
	return nil
}
