// Package database is the Postgres layer: a pgx pool wrapper, a query
// builder with positional placeholders, and a serializer between row maps
// and record structs.
package database

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/google/uuid"
)

// Field is one column value. The supported set is nil, string, uuid.UUID,
// int16, int32, int64 and float32; Pack rejects anything else. The query
// builder does not check values and passes them through as given.
type Field any

// RowFields maps column names to values, one row at a time.
type RowFields map[string]Field

// Stringify renders a field the way it would read in a SQL literal. Used
// for logging only; queries always go through placeholders.
func Stringify(field Field) string {
	switch v := field.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + v + "'"
	case uuid.UUID:
		return "'" + v.String() + "'::uuid"
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	}
	return fmt.Sprintf("%v", field)
}

func validField(field Field) bool {
	switch field.(type) {
	case nil, string, uuid.UUID, int16, int32, int64, float32:
		return true
	}
	return false
}

// Pack turns a record struct into a row map. Columns come from `db` struct
// tags; fields without a tag are skipped.
func Pack(record any) (RowFields, error) {
	v := reflect.ValueOf(record)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("pack: %T is not a struct", record)
	}

	t := v.Type()
	fields := make(RowFields, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		column := t.Field(i).Tag.Get("db")
		if column == "" {
			continue
		}

		value := v.Field(i).Interface()
		if !validField(value) {
			return nil, fmt.Errorf("pack: unsupported type %T for column %q", value, column)
		}
		fields[column] = value
	}

	return fields, nil
}

// Unpack fills a record struct from a row map. Every `db`-tagged field must
// have a column of the right type, and the row must not carry extra
// columns.
func Unpack[T any](fields RowFields) (T, error) {
	var record T

	v := reflect.ValueOf(&record).Elem()
	if v.Kind() != reflect.Struct {
		return record, fmt.Errorf("unpack: %T is not a struct", record)
	}

	t := v.Type()
	tagged := 0

	for i := 0; i < t.NumField(); i++ {
		column := t.Field(i).Tag.Get("db")
		if column == "" {
			continue
		}
		tagged++

		value, ok := fields[column]
		if !ok {
			return record, fmt.Errorf("unpack: missing column %q", column)
		}

		fv := v.Field(i)
		rv := reflect.ValueOf(value)
		if value == nil || !rv.Type().AssignableTo(fv.Type()) {
			return record, fmt.Errorf("unpack: column %q has type %T, want %s", column, value, fv.Type())
		}
		fv.Set(rv)
	}

	if tagged != len(fields) {
		return record, fmt.Errorf("unpack: row has %d columns, record wants %d", len(fields), tagged)
	}

	return record, nil
}
