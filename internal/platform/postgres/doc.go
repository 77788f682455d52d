// Package postgres implements the store interfaces on PostgreSQL using
// database/sql with the pgx driver. All queries are fully parameterized;
// the only identifiers spliced into query text are sort-field names validated
// against the fixed allow-list in the store package.
package postgres
